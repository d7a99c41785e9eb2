package pitch

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseName(t *testing.T) {
	cases := map[string]Name{
		"C":   {'C', 0},
		"f#":  {'F', 1},
		"Bb":  {'B', -1},
		"E-":  {'E', -1},
		"G##": {'G', 2},
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			got, err := ParseName(in)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	for _, bad := range []string{"", "H", "C+", "Cbbb"} {
		_, err := ParseName(bad)
		assert.ErrorIs(t, err, ErrBadName, bad)
	}
}

func TestPitchClassAndMIDI(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(0, MustName("B#").PitchClass())
	assert.Equal(11, MustName("Cb").PitchClass())
	assert.Equal(60, Pitch{Name: MustName("C"), Octave: 4}.MIDI())
	assert.Equal(69, Pitch{Name: MustName("A"), Octave: 4}.MIDI())
	assert.Equal("Eb5", FromMIDI(75, true).String())
	assert.Equal("D#5", FromMIDI(75, false).String())
}

func TestBetweenIsMinimalDisplacement(t *testing.T) {
	cases := []struct {
		from, to string
		want     Interval
		name     string
	}{
		{"D", "C", Interval{Steps: -1, Semitones: -2}, "M2 down"},
		{"E", "A", Interval{Steps: 3, Semitones: 5}, "P4 up"},
		{"C", "C", Interval{}, "P1"},
		{"A", "A", Interval{}, "P1"},
		{"G", "C", Interval{Steps: 3, Semitones: 5}, "P4 up"},
		{"F", "C", Interval{Steps: -3, Semitones: -5}, "P4 down"},
		{"Bb", "C", Interval{Steps: 1, Semitones: 2}, "M2 up"},
		{"F#", "A", Interval{Steps: 2, Semitones: 3}, "m3 up"},
		{"C#", "C", Interval{Steps: 0, Semitones: -1}, "A1 down"},
		{"F#", "C", Interval{Steps: -3, Semitones: -6}, "A4 down"},
	}
	for _, c := range cases {
		t.Run(fmt.Sprintf("%s->%s", c.from, c.to), func(t *testing.T) {
			got := Between(MustName(c.from), MustName(c.to))
			assert.Equal(t, c.want, got)
			assert.Equal(t, c.name, got.Name())
		})
	}
}

func TestBetweenMapsEveryTonicOntoTarget(t *testing.T) {
	for _, target := range []string{"C", "A"} {
		to := MustName(target)
		for pc := 0; pc < 12; pc++ {
			for _, flats := range []bool{false, true} {
				from := NameForPitchClass(pc, flats)
				i := Between(from, to)
				assert.Equal(t, to, i.TransposeName(from), "%s -> %s", from, to)
				assert.LessOrEqual(t, i.Semitones, 6)
				assert.GreaterOrEqual(t, i.Semitones, -6)
			}
		}
	}
}

func TestTransposeRespells(t *testing.T) {
	assert := assert.New(t)
	down := Between(MustName("D"), MustName("C"))

	fs := Pitch{Name: MustName("F#"), Octave: 4}
	assert.Equal("E4", down.Transpose(fs).String())

	c := Pitch{Name: MustName("C"), Octave: 5}
	assert.Equal("Bb4", down.Transpose(c).String())

	up := Between(MustName("E"), MustName("A"))
	b := Pitch{Name: MustName("B"), Octave: 3}
	got := up.Transpose(b)
	assert.Equal("E4", got.String())
	assert.Equal(b.MIDI()+5, got.MIDI())
}

func TestOctavesBelowMidiZero(t *testing.T) {
	assert := assert.New(t)
	b := FromMIDI(-1, false)
	assert.Equal("B-2", b.String())
	assert.Equal(-1, b.MIDI())

	down := Interval{Steps: -1, Semitones: -2}
	got := down.Transpose(FromMIDI(0, false))
	assert.Equal("Bb-2", got.String())
	assert.Equal(-2, got.MIDI())
}

func TestTransposeNeverExceedsDoubleAccidentals(t *testing.T) {
	assert := assert.New(t)
	// Fbb major to C major is down a diminished fourth
	i := Between(MustName("Fbb"), MustName("C"))
	assert.Equal(Interval{Steps: -3, Semitones: -3}, i)
	assert.Equal("C", i.TransposeName(MustName("Fbb")).String())

	gs := Pitch{Name: MustName("G#"), Octave: 4}
	got := i.Transpose(gs)
	assert.Equal("F4", got.String())
	assert.Equal(gs.MIDI()-3, got.MIDI())

	for _, name := range []string{"C", "C#", "Db", "E#", "Gb", "A#", "B"} {
		p := i.Transpose(Pitch{Name: MustName(name), Octave: 4})
		_, err := ParseName(p.Name.String())
		assert.NoError(err, "%s transposes to %s", name, p)
	}
}
