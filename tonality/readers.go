package tonality

import (
	"context"

	"github.com/jsphweid/kernprep/model"
)

// ExplicitKeyReader finds a key encoded in a score's metadata.
type ExplicitKeyReader interface {
	ExplicitKey(ctx context.Context, s *model.Score) (model.Key, bool)
}

// Estimator guesses a key from pitch content.
type Estimator interface {
	Estimate(ctx context.Context, s *model.Score) (model.Key, error)
}

// PositionalReader expects the key at a fixed element index of the first
// measure of the first part.
type PositionalReader struct {
	Index int
}

func (r PositionalReader) ExplicitKey(_ context.Context, s *model.Score) (model.Key, bool) {
	m, ok := s.FirstMeasure()
	if !ok || r.Index < 0 || r.Index >= len(m.Elements) {
		return model.Key{}, false
	}
	ks, ok := m.Elements[r.Index].(*model.KeySignature)
	if !ok {
		return model.Key{}, false
	}
	return ks.Key, true
}

// ScanReader takes the first key signature in the first measure of the first part.
type ScanReader struct{}

func (ScanReader) ExplicitKey(_ context.Context, s *model.Score) (model.Key, bool) {
	m, ok := s.FirstMeasure()
	if !ok {
		return model.Key{}, false
	}
	for _, el := range m.Elements {
		if ks, ok := el.(*model.KeySignature); ok {
			return ks.Key, true
		}
	}
	return model.Key{}, false
}

// Chain tries each reader in turn.
type Chain []ExplicitKeyReader

func (c Chain) ExplicitKey(ctx context.Context, s *model.Score) (model.Key, bool) {
	for _, r := range c {
		if k, ok := r.ExplicitKey(ctx, s); ok {
			return k, true
		}
	}
	return model.Key{}, false
}
