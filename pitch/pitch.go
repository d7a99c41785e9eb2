package pitch

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// semitone offsets of the natural steps from C
var naturalSemitones = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

const steps = "CDEFGAB"

var ErrBadName = errors.New("bad pitch name")

// Name is a spelled pitch class, e.g. F# or Bb.
type Name struct {
	Step  byte
	Alter int
}

// MaxAlter bounds the accidentals a spelling may carry.
const MaxAlter = 2

// Pitch is a spelled pitch with octave. Middle C is C4 (MIDI 60).
type Pitch struct {
	Name
	Octave int
}

func stepIndex(step byte) int {
	return strings.IndexByte(steps, step)
}

func mod(a, n int) int {
	return ((a % n) + n) % n
}

// floorDiv rounds toward negative infinity so octaves stay right below C-1.
func floorDiv(a, n int) int {
	return (a - mod(a, n)) / n
}

func ParseName(s string) (Name, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Name{}, errors.Wrap(ErrBadName, "empty")
	}
	step := strings.ToUpper(s[:1])[0]
	if stepIndex(step) < 0 {
		return Name{}, errors.Wrapf(ErrBadName, "%q", s)
	}
	n := Name{Step: step}
	for _, r := range s[1:] {
		switch r {
		case '#':
			n.Alter++
		case 'b', '-':
			n.Alter--
		default:
			return Name{}, errors.Wrapf(ErrBadName, "%q", s)
		}
	}
	if n.Alter < -MaxAlter || n.Alter > MaxAlter {
		return Name{}, errors.Wrapf(ErrBadName, "%q has too many accidentals", s)
	}
	return n, nil
}

func MustName(s string) Name {
	n, err := ParseName(s)
	if err != nil {
		panic(err)
	}
	return n
}

// PitchClass returns 0..11 with C = 0.
func (n Name) PitchClass() int {
	return mod(naturalSemitones[n.Step]+n.Alter, 12)
}

func (n Name) String() string {
	acc := ""
	switch {
	case n.Alter > 0:
		acc = strings.Repeat("#", n.Alter)
	case n.Alter < 0:
		acc = strings.Repeat("b", -n.Alter)
	}
	return string(n.Step) + acc
}

// MIDI returns the MIDI note number; it may fall outside 0..127 after
// transposition of extreme pitches.
func (p Pitch) MIDI() int {
	return (p.Octave+1)*12 + naturalSemitones[p.Step] + p.Alter
}

func (p Pitch) String() string {
	return fmt.Sprintf("%s%d", p.Name, p.Octave)
}

// absStep counts diatonic steps from C-1.
func (p Pitch) absStep() int {
	return (p.Octave+1)*7 + stepIndex(p.Step)
}

func fromAbsStep(abs int) (byte, int) {
	return steps[mod(abs, 7)], floorDiv(abs, 7) - 1
}

var sharpSpellings = []Name{
	{'C', 0}, {'C', 1}, {'D', 0}, {'D', 1}, {'E', 0}, {'F', 0},
	{'F', 1}, {'G', 0}, {'G', 1}, {'A', 0}, {'A', 1}, {'B', 0},
}

var flatSpellings = []Name{
	{'C', 0}, {'D', -1}, {'D', 0}, {'E', -1}, {'E', 0}, {'F', 0},
	{'G', -1}, {'G', 0}, {'A', -1}, {'A', 0}, {'B', -1}, {'B', 0},
}

// FromMIDI spells a MIDI note number using sharps, or flats when preferFlats
// is set.
func FromMIDI(num int, preferFlats bool) Pitch {
	names := sharpSpellings
	if preferFlats {
		names = flatSpellings
	}
	return Pitch{Name: names[mod(num, 12)], Octave: floorDiv(num, 12) - 1}
}

// NameForPitchClass returns the conventional spelling of a pitch class.
func NameForPitchClass(pc int, preferFlats bool) Name {
	return FromMIDI(pc, preferFlats).Name
}
