// Package estimate guesses a score's key from its pitch content.
package estimate

import (
	"context"
	"math"
	"sort"

	"github.com/jsphweid/kernprep/model"
	"github.com/jsphweid/kernprep/pitch"
	"github.com/jsphweid/kernprep/util"
	"github.com/pkg/errors"
)

var (
	ErrInconclusive   = errors.New("key estimation inconclusive")
	ErrNoPitchContent = errors.Wrap(ErrInconclusive, "no pitched events")
)

// Krumhansl-Kessler probe tone ratings, index 0 is the tonic.
var (
	majorProfile = []float64{6.35, 2.23, 3.48, 2.33, 4.38, 4.09, 2.52, 5.19, 2.39, 3.66, 2.29, 2.88}
	minorProfile = []float64{6.33, 2.68, 3.52, 5.38, 2.60, 3.53, 2.54, 4.75, 3.98, 2.69, 3.34, 3.17}
)

// tie tolerance between the two best candidates
const epsilon = 1e-9

type Candidate struct {
	Key   model.Key
	Score float64
}

// KrumhanslKessler correlates a duration weighted pitch class histogram with
// the 24 rotated major and minor profiles.
type KrumhanslKessler struct{}

func (KrumhanslKessler) Estimate(ctx context.Context, s *model.Score) (model.Key, error) {
	if err := ctx.Err(); err != nil {
		return model.Key{}, err
	}
	candidates, err := Candidates(s)
	if err != nil {
		return model.Key{}, err
	}
	if candidates[0].Score-candidates[1].Score < epsilon {
		return model.Key{}, errors.Wrapf(ErrInconclusive, "%s and %s tie", candidates[0].Key, candidates[1].Key)
	}
	return candidates[0].Key, nil
}

// Histogram sums sounding time per pitch class.
func Histogram(s *model.Score) []float64 {
	hist := make([]float64, 12)
	pitches, durations := s.Pitches()
	for i, p := range pitches {
		d, _ := durations[i].Float64()
		hist[p.PitchClass()] += d
	}
	return hist
}

// Candidates returns all 24 keys ranked best first.
func Candidates(s *model.Score) ([]Candidate, error) {
	hist := Histogram(s)
	if util.Sum(hist) == 0 {
		return nil, ErrNoPitchContent
	}

	var res []Candidate
	for root := 0; root < 12; root++ {
		majR := correlate(hist, rotate(majorProfile, root))
		minR := correlate(hist, rotate(minorProfile, root))
		if math.IsNaN(majR) || math.IsNaN(minR) {
			return nil, errors.Wrap(ErrInconclusive, "pitch class histogram has no variance")
		}
		res = append(res,
			Candidate{Key: model.Key{Tonic: majorSpelling(root), Mode: model.Major}, Score: majR},
			Candidate{Key: model.Key{Tonic: minorSpelling(root), Mode: model.Minor}, Score: minR},
		)
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Score > res[j].Score
	})
	return res, nil
}

func rotate(profile []float64, root int) []float64 {
	res := make([]float64, 12)
	for i := range res {
		res[i] = profile[(i-root+12)%12]
	}
	return res
}

// correlate is Pearson's r. It returns NaN when either side is constant.
func correlate(a, b []float64) float64 {
	meanA := util.Sum(a) / float64(len(a))
	meanB := util.Sum(b) / float64(len(b))
	var cov, varA, varB float64
	for i := range a {
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return math.NaN()
	}
	return cov / math.Sqrt(varA*varB)
}

// Spell estimated tonics the way key signatures usually do.
func majorSpelling(pc int) pitch.Name {
	// F# rather than Gb, otherwise flats
	if pc == 6 {
		return pitch.MustName("F#")
	}
	return pitch.NameForPitchClass(pc, true)
}

func minorSpelling(pc int) pitch.Name {
	switch pc {
	case 1, 6, 8:
		return pitch.NameForPitchClass(pc, false)
	}
	return pitch.NameForPitchClass(pc, true)
}
