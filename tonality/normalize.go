package tonality

import (
	"context"

	"github.com/jsphweid/kernprep/model"
	"github.com/jsphweid/kernprep/pitch"
	"github.com/pkg/errors"
)

type KeySource string

const (
	SourceExplicit  KeySource = "explicit"
	SourceEstimated KeySource = "estimated"
)

// Targets are the canonical tonics scores are moved to.
type Targets struct {
	Major pitch.Name
	Minor pitch.Name
}

func DefaultTargets() Targets {
	return Targets{Major: pitch.MustName("C"), Minor: pitch.MustName("A")}
}

type Normalizer struct {
	Explicit  ExplicitKeyReader
	Estimator Estimator
	Targets   Targets
}

type Result struct {
	Key       model.Key
	KeySource KeySource
	Interval  pitch.Interval
	Score     *model.Score
}

// ResolveKey prefers an explicit key and only estimates when none is found.
func (n *Normalizer) ResolveKey(ctx context.Context, s *model.Score) (model.Key, KeySource, error) {
	if n.Explicit != nil {
		if k, ok := n.Explicit.ExplicitKey(ctx, s); ok {
			return k, SourceExplicit, nil
		}
	}
	if n.Estimator == nil {
		return model.Key{}, "", errors.Wrap(ErrKeyUnresolvable, "no explicit key and no estimator")
	}
	k, err := n.Estimator.Estimate(ctx, s)
	if err != nil {
		return model.Key{}, SourceEstimated, errors.Wrapf(ErrKeyUnresolvable, "estimation failed: %v", err)
	}
	return k, SourceEstimated, nil
}

// ComputeInterval maps major keys onto the major target and minor keys onto
// the minor target.
func ComputeInterval(k model.Key, t Targets) (pitch.Interval, error) {
	switch k.Mode {
	case model.Major:
		return pitch.Between(k.Tonic, t.Major), nil
	case model.Minor:
		return pitch.Between(k.Tonic, t.Minor), nil
	}
	return pitch.Interval{}, &UnrecognizedModeError{Key: k}
}

// Transpose returns a shifted copy of s. Key signatures move with the notes.
func Transpose(s *model.Score, i pitch.Interval) *model.Score {
	res := s.Clone()
	for pi := range res.Parts {
		for mi := range res.Parts[pi].Measures {
			for _, el := range res.Parts[pi].Measures[mi].Elements {
				switch e := el.(type) {
				case *model.Note:
					e.Pitch = i.Transpose(e.Pitch)
				case *model.Chord:
					for ci := range e.Pitches {
						e.Pitches[ci] = i.Transpose(e.Pitches[ci])
					}
				case *model.KeySignature:
					e.Key.Tonic = i.TransposeName(e.Key.Tonic)
					if sig, ok := signatureOf(e.Key); ok {
						e.Sharps = sig
					}
				}
			}
		}
	}
	return res
}

func signatureOf(k model.Key) (int, bool) {
	for sharps := -7; sharps <= 7; sharps++ {
		candidate, err := model.KeyFromSignature(sharps, k.Mode)
		if err == nil && candidate.Tonic == k.Tonic {
			return sharps, true
		}
	}
	return 0, false
}

func (n *Normalizer) targets() Targets {
	if n.Targets == (Targets{}) {
		return DefaultTargets()
	}
	return n.Targets
}

// Normalize resolves the key, computes the interval and returns the
// transposed score. The input score is left untouched.
func (n *Normalizer) Normalize(ctx context.Context, s *model.Score) (Result, error) {
	k, source, err := n.ResolveKey(ctx, s)
	if err != nil {
		return Result{KeySource: source}, err
	}
	interval, err := ComputeInterval(k, n.targets())
	if err != nil {
		return Result{Key: k, KeySource: source}, err
	}
	return Result{
		Key:       k,
		KeySource: source,
		Interval:  interval,
		Score:     Transpose(s, interval),
	}, nil
}
