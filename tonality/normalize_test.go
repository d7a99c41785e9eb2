package tonality

import (
	"context"
	"testing"

	"github.com/jsphweid/kernprep/estimate"
	"github.com/jsphweid/kernprep/model"
	"github.com/jsphweid/kernprep/model/modeltest"
	"github.com/jsphweid/kernprep/pitch"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEstimator struct {
	key   model.Key
	err   error
	calls int
}

func (s *stubEstimator) Estimate(context.Context, *model.Score) (model.Key, error) {
	s.calls++
	return s.key, s.err
}

func mustKey(t *testing.T, s string) model.Key {
	k, err := model.ParseKey(s)
	require.NoError(t, err)
	return k
}

func dMajorTune() *model.Score {
	return modeltest.Melody(
		[]model.Element{&model.TrackName{Name: "tune"}, modeltest.KeySig("D major")},
		"D4:1", "F#4:1", "A4:1", "D5:1", "C#5+E5:2", "r:2",
	)
}

func TestExplicitKeyIsTransposedDownAMajorSecond(t *testing.T) {
	est := &stubEstimator{key: mustKey(t, "E minor")}
	n := &Normalizer{Explicit: ScanReader{}, Estimator: est}

	s := dMajorTune()
	before := modeltest.MIDINumbers(s)
	res, err := n.Normalize(context.Background(), s)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(0, est.calls)
	assert.Equal(SourceExplicit, res.KeySource)
	assert.Equal("D major", res.Key.String())
	assert.Equal(pitch.Interval{Steps: -1, Semitones: -2}, res.Interval)

	after := modeltest.MIDINumbers(res.Score)
	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(before[i]-2, after[i])
	}
	assert.Equal([]int{62, 66, 69, 74, 73, 76}, modeltest.MIDINumbers(s), "input must not change")

	k, ok := ScanReader{}.ExplicitKey(context.Background(), res.Score)
	require.True(t, ok)
	assert.Equal("C major", k.String())
	assert.Equal("E4", res.Score.Parts[0].Measures[0].Elements[3].(*model.Note).Pitch.String())
}

func TestEstimatedKeyIsTransposedUpAPerfectFourth(t *testing.T) {
	est := &stubEstimator{key: mustKey(t, "E minor")}
	n := &Normalizer{Explicit: ScanReader{}, Estimator: est}

	s := modeltest.Melody(nil, "E4:2", "G4:1", "B4:1")
	res, err := n.Normalize(context.Background(), s)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(1, est.calls)
	assert.Equal(SourceEstimated, res.KeySource)
	assert.Equal(5, res.Interval.Semitones)
	assert.Equal([]int{69, 72, 76}, modeltest.MIDINumbers(res.Score))
}

func TestEstimatorFailureIsKeyUnresolvable(t *testing.T) {
	n := &Normalizer{Explicit: ScanReader{}, Estimator: &stubEstimator{err: estimate.ErrInconclusive}}
	res, err := n.Normalize(context.Background(), modeltest.Melody(nil, "r:4"))
	assert.ErrorIs(t, err, ErrKeyUnresolvable)
	assert.Nil(t, res.Score)
	assert.Equal(t, SourceEstimated, res.KeySource)

	n = &Normalizer{Explicit: ScanReader{}}
	_, err = n.Normalize(context.Background(), modeltest.Melody(nil, "C4:4"))
	assert.ErrorIs(t, err, ErrKeyUnresolvable)
}

func TestUnknownModeIsAnError(t *testing.T) {
	s := modeltest.Melody([]model.Element{modeltest.KeySig("D dorian")}, "D4:4")
	n := &Normalizer{Explicit: ScanReader{}, Estimator: &stubEstimator{key: mustKey(t, "C major")}}
	res, err := n.Normalize(context.Background(), s)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnrecognizedMode)
	var modeErr *UnrecognizedModeError
	require.True(t, errors.As(err, &modeErr))
	assert.Equal(t, model.Mode("dorian"), modeErr.Key.Mode)
	assert.Nil(t, res.Score)
}

func TestCanonicalKeysAreIdentity(t *testing.T) {
	for _, k := range []string{"C major", "A minor"} {
		t.Run(k, func(t *testing.T) {
			s := modeltest.Melody([]model.Element{modeltest.KeySig(k)}, "C4:1", "E4:1", "A4:2")
			n := &Normalizer{Explicit: ScanReader{}}
			res, err := n.Normalize(context.Background(), s)
			require.NoError(t, err)
			assert.True(t, res.Interval.IsZero())
			assert.Equal(t, modeltest.MIDINumbers(s), modeltest.MIDINumbers(res.Score))
			assert.Equal(t, s, res.Score)
		})
	}
}

func TestRoundTripLandsOnCanonicalKey(t *testing.T) {
	n := &Normalizer{Explicit: ScanReader{}}
	for sharps := -7; sharps <= 7; sharps++ {
		for _, mode := range []model.Mode{model.Major, model.Minor} {
			k, err := model.KeyFromSignature(sharps, mode)
			require.NoError(t, err)
			s := modeltest.Melody([]model.Element{&model.KeySignature{Key: k, Sharps: sharps}}, "C4:1")

			res, err := n.Normalize(context.Background(), s)
			require.NoError(t, err)

			got, err := n.Normalize(context.Background(), res.Score)
			require.NoError(t, err)
			want := "C major"
			if mode == model.Minor {
				want = "A minor"
			}
			assert.Equal(t, want, got.Key.String(), "from %s", k)
			assert.True(t, got.Interval.IsZero(), "from %s", k)
			assert.Equal(t, 0, res.Score.Parts[0].Measures[0].Elements[0].(*model.KeySignature).Sharps)
		}
	}
}

func TestEstimatedRoundTrip(t *testing.T) {
	n := &Normalizer{Explicit: ScanReader{}, Estimator: estimate.KrumhanslKessler{}}
	s := modeltest.Melody(nil, "E4:4", "G4:2", "B4:2", "A4:1", "F#4:1", "C5:1/2", "D5:1/2")
	res, err := n.Normalize(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "E minor", res.Key.String())

	again, err := n.Normalize(context.Background(), res.Score)
	require.NoError(t, err)
	assert.Equal(t, "A minor", again.Key.String())
	assert.True(t, again.Interval.IsZero())
}

func TestCustomTargets(t *testing.T) {
	n := &Normalizer{
		Explicit: ScanReader{},
		Targets:  Targets{Major: pitch.MustName("G"), Minor: pitch.MustName("E")},
	}
	res, err := n.Normalize(context.Background(), dMajorTune())
	require.NoError(t, err)
	assert.Equal(t, "P4 up", res.Interval.Name())
}

func TestComputeInterval(t *testing.T) {
	targets := DefaultTargets()
	i, err := ComputeInterval(mustKey(t, "D major"), targets)
	require.NoError(t, err)
	assert.Equal(t, -2, i.Semitones)

	i, err = ComputeInterval(mustKey(t, "E minor"), targets)
	require.NoError(t, err)
	assert.Equal(t, 5, i.Semitones)

	_, err = ComputeInterval(model.Key{Tonic: pitch.MustName("C"), Mode: "mi=3"}, targets)
	assert.ErrorIs(t, err, ErrUnrecognizedMode)
}
