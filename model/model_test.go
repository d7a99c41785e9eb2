package model

import (
	"testing"

	"github.com/jsphweid/kernprep/pitch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func note(start, length int64, name string, octave int) *Note {
	return &Note{
		Timing: Timing{Start: QL(start, 4), Length: QL(length, 4)},
		Pitch:  pitch.Pitch{Name: pitch.MustName(name), Octave: octave},
	}
}

func TestNotesAndRestsIsChronologicalAcrossParts(t *testing.T) {
	s := &Score{Parts: []Part{
		{Measures: []Measure{{Number: 1, Elements: []Element{
			&TimeSignature{Numerator: 4, Denominator: 4},
			note(0, 4, "C", 4),
			note(8, 4, "E", 4),
		}}}},
		{Measures: []Measure{{Number: 1, Elements: []Element{
			&Rest{Timing: Timing{Start: QL(0, 1), Length: QL(1, 1)}},
			note(4, 4, "G", 3),
		}}}},
	}}

	events := s.NotesAndRests()
	require.Len(t, events, 4)
	assert := assert.New(t)
	assert.Equal(0, events[0].Offset().Cmp(QL(0, 1)))
	assert.IsType(&Note{}, events[0])
	assert.IsType(&Rest{}, events[1])
	assert.Equal("G3", events[2].(*Note).Pitch.String())
	assert.Equal("E4", events[3].(*Note).Pitch.String())
}

func TestCloneIsDeep(t *testing.T) {
	orig := &Score{Source: "a.mid", Parts: []Part{{Measures: []Measure{{Elements: []Element{
		note(0, 4, "C", 4),
		&Chord{Timing: Timing{Start: QL(1, 1), Length: QL(1, 1)}, Pitches: []pitch.Pitch{{Name: pitch.MustName("E"), Octave: 4}}},
	}}}}}}

	c := orig.Clone()
	c.Parts[0].Measures[0].Elements[0].(*Note).Pitch.Octave = 5
	c.Parts[0].Measures[0].Elements[1].(*Chord).Pitches[0].Octave = 5

	assert.Equal(t, 4, orig.Parts[0].Measures[0].Elements[0].(*Note).Pitch.Octave)
	assert.Equal(t, 4, orig.Parts[0].Measures[0].Elements[1].(*Chord).Pitches[0].Octave)
	assert.Equal(t, "a.mid", c.Source)
}

func TestParseKey(t *testing.T) {
	k, err := ParseKey("D major")
	require.NoError(t, err)
	assert.Equal(t, Key{Tonic: pitch.MustName("D"), Mode: Major}, k)

	k, err = ParseKey("f# Minor")
	require.NoError(t, err)
	assert.Equal(t, "F# minor", k.String())

	k, err = ParseKey("Bb")
	require.NoError(t, err)
	assert.Equal(t, Major, k.Mode)

	k, err = ParseKey("D dorian")
	require.NoError(t, err)
	assert.False(t, k.Mode.Known())

	_, err = ParseKey("")
	assert.Error(t, err)
	_, err = ParseKey("X major")
	assert.Error(t, err)
}

func TestKeyFromSignature(t *testing.T) {
	cases := []struct {
		sharps int
		mode   Mode
		want   string
	}{
		{0, Major, "C major"},
		{0, Minor, "A minor"},
		{2, Major, "D major"},
		{1, Minor, "E minor"},
		{-3, Major, "Eb major"},
		{-7, Minor, "Ab minor"},
	}
	for _, c := range cases {
		k, err := KeyFromSignature(c.sharps, c.mode)
		require.NoError(t, err)
		assert.Equal(t, c.want, k.String())
	}
	_, err := KeyFromSignature(8, Major)
	assert.Error(t, err)
}
