// Package modeltest builds small scores for tests.
package modeltest

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/jsphweid/kernprep/model"
	"github.com/jsphweid/kernprep/pitch"
)

// N is a note or rest given as "D4:1/2", "r:1" or "C4+E4+G4:2" (a chord).
type N string

// Melody lays out events back to back in one 4/4 measure per four quarters.
// Leading elements (key signatures etc) go first in measure one.
func Melody(leading []model.Element, notes ...N) *model.Score {
	var elements []model.Element
	offset := new(big.Rat)
	for _, n := range notes {
		tok, dur, _ := strings.Cut(string(n), ":")
		length, ok := new(big.Rat).SetString(dur)
		if !ok {
			panic("bad duration in " + string(n))
		}
		timing := model.Timing{Start: new(big.Rat).Set(offset), Length: length}
		switch {
		case tok == "r":
			elements = append(elements, &model.Rest{Timing: timing})
		case strings.Contains(tok, "+"):
			var ps []pitch.Pitch
			for _, p := range strings.Split(tok, "+") {
				ps = append(ps, P(p))
			}
			elements = append(elements, &model.Chord{Timing: timing, Pitches: ps})
		default:
			elements = append(elements, &model.Note{Timing: timing, Pitch: P(tok)})
		}
		offset = new(big.Rat).Add(offset, length)
	}

	var measures []model.Measure
	barLength := big.NewRat(4, 1)
	for i, el := range elements {
		bar := 0
		if evt, ok := el.(model.Event); ok {
			q := new(big.Rat).Quo(evt.Offset(), barLength)
			bar = int(new(big.Int).Quo(q.Num(), q.Denom()).Int64())
		}
		for len(measures) <= bar {
			measures = append(measures, model.Measure{Number: len(measures) + 1})
		}
		if i == 0 && len(leading) > 0 {
			measures[0].Elements = append(measures[0].Elements, leading...)
		}
		measures[bar].Elements = append(measures[bar].Elements, el)
	}
	if len(elements) == 0 && len(leading) > 0 {
		measures = append(measures, model.Measure{Number: 1, Elements: leading})
	}
	return &model.Score{Source: "test", Parts: []model.Part{{Name: "melody", Measures: measures}}}
}

// P parses "F#4" or "Bb3".
func P(s string) pitch.Pitch {
	i := strings.IndexAny(s, "0123456789")
	octave, err := strconv.Atoi(s[i:])
	if err != nil {
		panic(err)
	}
	return pitch.Pitch{Name: pitch.MustName(s[:i]), Octave: octave}
}

func KeySig(k string) *model.KeySignature {
	key, err := model.ParseKey(k)
	if err != nil {
		panic(err)
	}
	return &model.KeySignature{Key: key}
}

// MIDINumbers lists every sounding MIDI number in event order.
func MIDINumbers(s *model.Score) []int {
	var res []int
	ps, _ := s.Pitches()
	for _, p := range ps {
		res = append(res, p.MIDI())
	}
	return res
}
