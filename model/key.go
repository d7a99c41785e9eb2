package model

import (
	"fmt"
	"strings"

	"github.com/jsphweid/kernprep/pitch"
	"github.com/pkg/errors"
)

type Mode string

const (
	Major Mode = "major"
	Minor Mode = "minor"
)

func (m Mode) Known() bool {
	return m == Major || m == Minor
}

type Key struct {
	Tonic pitch.Name
	Mode  Mode
}

func (k Key) String() string {
	return fmt.Sprintf("%s %s", k.Tonic, k.Mode)
}

// ParseKey reads "D major", "f# minor" or "Bb". A missing mode means major.
// Unknown modes are kept so callers can reject them explicitly.
func ParseKey(s string) (Key, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 || len(fields) > 2 {
		return Key{}, errors.Errorf("could not parse key %q", s)
	}
	tonic, err := pitch.ParseName(fields[0])
	if err != nil {
		return Key{}, errors.Wrapf(err, "could not parse key %q", s)
	}
	mode := Major
	if len(fields) == 2 {
		mode = Mode(strings.ToLower(fields[1]))
	}
	return Key{Tonic: tonic, Mode: mode}, nil
}

var majorBySharps = []string{"Cb", "Gb", "Db", "Ab", "Eb", "Bb", "F", "C", "G", "D", "A", "E", "B", "F#", "C#"}
var minorBySharps = []string{"Ab", "Eb", "Bb", "F", "C", "G", "D", "A", "E", "B", "F#", "C#", "G#", "D#", "A#"}

// KeyFromSignature converts a sharps/flats count (-7..7) and mode into a Key.
func KeyFromSignature(sharps int, mode Mode) (Key, error) {
	if sharps < -7 || sharps > 7 {
		return Key{}, errors.Errorf("key signature out of range: %d", sharps)
	}
	names := majorBySharps
	if mode == Minor {
		names = minorBySharps
	}
	return Key{Tonic: pitch.MustName(names[sharps+7]), Mode: mode}, nil
}
