package model

import (
	"math/big"
	"sort"

	"github.com/jsphweid/kernprep/pitch"
)

// Element is anything that can sit inside a Measure.
type Element interface {
	isElement()
}

// Event is a Note, Chord or Rest.
type Event interface {
	Element
	Duration() *big.Rat
	Offset() *big.Rat
}

type Timing struct {
	// Both in quarter lengths. Offset is relative to the start of the part.
	Start  *big.Rat
	Length *big.Rat
}

func (t Timing) Duration() *big.Rat { return t.Length }
func (t Timing) Offset() *big.Rat   { return t.Start }

type Note struct {
	Timing
	Pitch    pitch.Pitch
	Velocity uint8
	Channel  uint8
}

type Chord struct {
	Timing
	Pitches  []pitch.Pitch
	Velocity uint8
	Channel  uint8
}

type Rest struct {
	Timing
}

type KeySignature struct {
	Key Key
	// Sharps is the raw sharps (+) / flats (-) count, when known.
	Sharps int
}

type TimeSignature struct {
	Numerator   uint8
	Denominator uint8
}

type Tempo struct {
	BPM float64
}

type TrackName struct {
	Name string
}

func (*Note) isElement()          {}
func (*Chord) isElement()         {}
func (*Rest) isElement()          {}
func (*KeySignature) isElement()  {}
func (*TimeSignature) isElement() {}
func (*Tempo) isElement()         {}
func (*TrackName) isElement()     {}

type Measure struct {
	Number   int
	Elements []Element
}

type Part struct {
	Name     string
	Measures []Measure
}

type Score struct {
	Source string
	Title  string
	Parts  []Part
}

// NotesAndRests flattens the score into one chronological sequence of events,
// ignoring part and measure grouping. Events with equal offsets keep part order.
func (s *Score) NotesAndRests() []Event {
	var res []Event
	for _, part := range s.Parts {
		for _, m := range part.Measures {
			for _, el := range m.Elements {
				if evt, ok := el.(Event); ok {
					res = append(res, evt)
				}
			}
		}
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Offset().Cmp(res[j].Offset()) < 0
	})
	return res
}

// Pitches returns every sounding pitch along with the duration it sounds for.
func (s *Score) Pitches() ([]pitch.Pitch, []*big.Rat) {
	var ps []pitch.Pitch
	var ds []*big.Rat
	for _, evt := range s.NotesAndRests() {
		switch e := evt.(type) {
		case *Note:
			ps = append(ps, e.Pitch)
			ds = append(ds, e.Length)
		case *Chord:
			for _, p := range e.Pitches {
				ps = append(ps, p)
				ds = append(ds, e.Length)
			}
		}
	}
	return ps, ds
}

// Clone deep copies the score. Rationals are shared; nothing mutates them.
func (s *Score) Clone() *Score {
	res := &Score{Source: s.Source, Title: s.Title}
	for _, part := range s.Parts {
		np := Part{Name: part.Name}
		for _, m := range part.Measures {
			nm := Measure{Number: m.Number, Elements: make([]Element, 0, len(m.Elements))}
			for _, el := range m.Elements {
				nm.Elements = append(nm.Elements, cloneElement(el))
			}
			np.Measures = append(np.Measures, nm)
		}
		res.Parts = append(res.Parts, np)
	}
	return res
}

func cloneElement(el Element) Element {
	switch e := el.(type) {
	case *Note:
		c := *e
		return &c
	case *Chord:
		c := *e
		c.Pitches = append([]pitch.Pitch(nil), e.Pitches...)
		return &c
	case *Rest:
		c := *e
		return &c
	case *KeySignature:
		c := *e
		return &c
	case *TimeSignature:
		c := *e
		return &c
	case *Tempo:
		c := *e
		return &c
	case *TrackName:
		c := *e
		return &c
	}
	return el
}

// FirstMeasure returns the first measure of the first part.
func (s *Score) FirstMeasure() (*Measure, bool) {
	if len(s.Parts) == 0 || len(s.Parts[0].Measures) == 0 {
		return nil, false
	}
	return &s.Parts[0].Measures[0], true
}

// QL builds a quarter length from a fraction.
func QL(num, den int64) *big.Rat {
	return big.NewRat(num, den)
}
