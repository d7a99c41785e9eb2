// Package corpus walks a dataset directory and streams parsed scores.
package corpus

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jsphweid/kernprep/midi"
	"github.com/jsphweid/kernprep/model"
	"github.com/pkg/errors"
)

var ErrNoDataset = errors.New("dataset directory not found")

// Entry is one file from the corpus. Exactly one of Score and Err is set.
type Entry struct {
	Num   uint32
	Path  string
	Score *model.Score
	Err   error
}

type ParseFunc func(path string) (*model.Score, error)

type Loader struct {
	Root       string
	Extensions []string
	// MaxFiles of 0 means no limit.
	MaxFiles int
	Parse    ParseFunc
}

func NewLoader(root string, extensions []string, maxFiles int) *Loader {
	return &Loader{Root: root, Extensions: extensions, MaxFiles: maxFiles, Parse: midi.LoadScore}
}

func (l *Loader) matches(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range l.Extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

// CheckRoot fails when the dataset directory is missing or not a directory.
func (l *Loader) CheckRoot() error {
	info, err := os.Stat(l.Root)
	if err != nil {
		return errors.Wrapf(ErrNoDataset, "%s: %v", l.Root, err)
	}
	if !info.IsDir() {
		return errors.Wrapf(ErrNoDataset, "%s is not a directory", l.Root)
	}
	return nil
}

// GatherPaths lists matching files under the root in lexical order.
// Unreadable subdirectories are skipped rather than failing the walk.
func (l *Loader) GatherPaths() ([]string, error) {
	if err := l.CheckRoot(); err != nil {
		return nil, err
	}
	var res []string
	walk := func(s string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && s != l.Root {
				return filepath.SkipDir
			}
			return err
		}
		if !d.IsDir() && l.matches(d.Name()) {
			if l.MaxFiles == 0 || len(res) < l.MaxFiles {
				res = append(res, s)
			}
		}
		return nil
	}
	if err := filepath.WalkDir(l.Root, walk); err != nil {
		return nil, errors.Wrap(err, "error walking dataset")
	}
	return res, nil
}

// Load parses files one at a time and sends them on the returned channel,
// which is closed when the corpus is exhausted or ctx is done. The sequence
// is single pass; call Load again for a second run.
func (l *Loader) Load(ctx context.Context, paths []string) <-chan Entry {
	parse := l.Parse
	if parse == nil {
		parse = midi.LoadScore
	}
	out := make(chan Entry)
	go func() {
		defer close(out)
		for i, path := range paths {
			if ctx.Err() != nil {
				return
			}
			entry := Entry{Num: uint32(i), Path: path}
			entry.Score, entry.Err = parse(path)
			select {
			case out <- entry:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
