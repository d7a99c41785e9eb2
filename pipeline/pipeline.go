package pipeline

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jsphweid/kernprep/corpus"
	"github.com/jsphweid/kernprep/duration"
	"github.com/jsphweid/kernprep/logger"
	"github.com/jsphweid/kernprep/model"
	"github.com/jsphweid/kernprep/pitch"
	"github.com/jsphweid/kernprep/tonality"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

type Status string

const (
	StatusNormalized           Status = "normalized"
	StatusLoadFailed           Status = "load_failed"
	StatusUnacceptableDuration Status = "unacceptable_duration"
	StatusKeyUnresolvable      Status = "key_unresolvable"
	StatusUnrecognizedMode     Status = "unrecognized_mode"
	StatusFailed               Status = "failed"
)

// Statuses in report order.
var Statuses = []Status{
	StatusNormalized,
	StatusUnacceptableDuration,
	StatusKeyUnresolvable,
	StatusUnrecognizedMode,
	StatusLoadFailed,
	StatusFailed,
}

type Outcome struct {
	Num       uint32
	Path      string
	Status    Status
	Key       model.Key
	KeySource tonality.KeySource
	Interval  pitch.Interval
	// Score is the normalized score, nil unless Status is StatusNormalized.
	Score     *model.Score
	NumEvents int
	Err       error
}

type Processor struct {
	Whitelist  duration.Whitelist
	Normalizer *tonality.Normalizer
}

// Process runs one score through the duration filter and key normalizer.
func (p *Processor) Process(ctx context.Context, path string, s *model.Score) Outcome {
	o := Outcome{Path: path, NumEvents: len(s.NotesAndRests())}
	if evt, found := duration.FirstUnacceptable(s, p.Whitelist); found {
		o.Status = StatusUnacceptableDuration
		o.Err = errors.Wrapf(duration.ErrUnacceptableDuration, "%s quarter lengths at offset %s",
			evt.Duration().RatString(), evt.Offset().RatString())
		return o
	}

	res, err := p.Normalizer.Normalize(ctx, s)
	o.Key, o.KeySource = res.Key, res.KeySource
	if err != nil {
		o.Err = err
		switch {
		case errors.Is(err, tonality.ErrUnrecognizedMode):
			o.Status = StatusUnrecognizedMode
		case errors.Is(err, tonality.ErrKeyUnresolvable):
			o.Status = StatusKeyUnresolvable
		default:
			o.Status = StatusFailed
		}
		return o
	}
	o.Status = StatusNormalized
	o.Interval = res.Interval
	o.Score = res.Score
	return o
}

type Report struct {
	RunID     string
	Total     int
	ByStatus  map[Status]int
	ByKey     map[string]int
	Cancelled bool
}

func (r *Report) add(o Outcome) {
	r.Total++
	r.ByStatus[o.Status]++
	if o.Status == StatusNormalized {
		r.ByKey[o.Key.String()]++
	}
}

// Loaded is the number of entries that parsed into a score.
func (r *Report) Loaded() int {
	return r.Total - r.ByStatus[StatusLoadFailed]
}

type Runner struct {
	Processor *Processor
	Workers   int
	Log       logger.Logger
	// OnOutcome is called once per entry, never concurrently.
	OnOutcome func(Outcome)
	// ProgressEvery logs a progress line after this many entries, 0 disables.
	ProgressEvery int
}

// Run drains entries through a bounded worker pool. It stops taking new
// entries once ctx is done and returns ctx's error in that case.
func (r *Runner) Run(ctx context.Context, entries <-chan corpus.Entry) (Report, error) {
	report := Report{
		RunID:    uuid.New().String(),
		ByStatus: make(map[Status]int),
		ByKey:    make(map[string]int),
	}
	log := r.Log
	if log == nil {
		log = logger.Discard()
	}
	log = log.With("run", report.RunID)
	workers := r.Workers
	if workers < 1 {
		workers = 1
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(workers)

	record := func(o Outcome) {
		mu.Lock()
		defer mu.Unlock()
		report.add(o)
		logOutcome(log, o)
		if r.OnOutcome != nil {
			r.OnOutcome(o)
		}
		if r.ProgressEvery > 0 && report.Total%r.ProgressEvery == 0 {
			log.Info("progress", "processed", report.Total, "normalized", report.ByStatus[StatusNormalized])
		}
	}

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case entry, ok := <-entries:
			if !ok {
				break loop
			}
			if ctx.Err() != nil {
				break loop
			}
			g.Go(func() error {
				if entry.Err != nil {
					record(Outcome{Num: entry.Num, Path: entry.Path, Status: StatusLoadFailed, Err: entry.Err})
					return nil
				}
				o := r.Processor.Process(ctx, entry.Path, entry.Score)
				o.Num = entry.Num
				record(o)
				return nil
			})
		}
	}

	// workers never return errors; outcomes carry them
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		report.Cancelled = true
		log.Warn("run cancelled", "processed", report.Total)
		return report, err
	}
	return report, nil
}

func logOutcome(log logger.Logger, o Outcome) {
	switch o.Status {
	case StatusNormalized:
		log.Debug("normalized", "path", o.Path, "key", o.Key, "source", o.KeySource, "interval", o.Interval)
	case StatusUnrecognizedMode, StatusFailed:
		log.Error("score failed", "path", o.Path, "status", o.Status, "err", o.Err)
	default:
		log.Warn("skipped score", "path", o.Path, "status", o.Status, "err", o.Err)
	}
}
