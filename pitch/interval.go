package pitch

import "fmt"

// Interval is a directed displacement. Steps counts diatonic letter steps
// (0 = unison, 1 = second ...), Semitones the exact chromatic distance.
type Interval struct {
	Steps     int
	Semitones int
}

func (i Interval) IsZero() bool {
	return i.Steps == 0 && i.Semitones == 0
}

// Between returns the smallest directed interval that moves pitch class from
// onto pitch class to. The letter distance is folded into -3..+3, so a fourth
// up is preferred over a fifth down and a second down over a seventh up.
func Between(from, to Name) Interval {
	d := mod(stepIndex(to.Step)-stepIndex(from.Step), 7)
	if d > 3 {
		d -= 7
	}
	src := Pitch{Name: from, Octave: 4}
	step, octave := fromAbsStep(src.absStep() + d)
	dst := Pitch{Name: Name{Step: step, Alter: to.Alter}, Octave: octave}
	return Interval{Steps: d, Semitones: dst.MIDI() - src.MIDI()}
}

// Transpose moves p by the interval and respells it so the letter moves by
// exactly i.Steps. When that spelling would need more than a double
// accidental the result is spelled enharmonically instead.
func (i Interval) Transpose(p Pitch) Pitch {
	step, octave := fromAbsStep(p.absStep() + i.Steps)
	target := p.MIDI() + i.Semitones
	natural := Pitch{Name: Name{Step: step}, Octave: octave}
	alter := target - natural.MIDI()
	if alter < -MaxAlter || alter > MaxAlter {
		return FromMIDI(target, alter < 0)
	}
	return Pitch{Name: Name{Step: step, Alter: alter}, Octave: octave}
}

// TransposeName is Transpose without octave.
func (i Interval) TransposeName(n Name) Name {
	return i.Transpose(Pitch{Name: n, Octave: 4}).Name
}

var qualityBySemitones = map[int]map[int]string{
	0: {-1: "d1", 0: "P1", 1: "A1"},
	1: {0: "d2", 1: "m2", 2: "M2", 3: "A2"},
	2: {2: "d3", 3: "m3", 4: "M3", 5: "A3"},
	3: {4: "d4", 5: "P4", 6: "A4"},
}

// Name returns a short interval name such as "M2 down" or "P4 up".
func (i Interval) Name() string {
	steps, semis, dir := i.Steps, i.Semitones, "up"
	if steps < 0 || (steps == 0 && semis < 0) {
		steps, semis, dir = -steps, -semis, "down"
	}
	if i.IsZero() {
		return "P1"
	}
	if q, ok := qualityBySemitones[steps][semis]; ok {
		return q + " " + dir
	}
	return fmt.Sprintf("%d steps/%d semitones", i.Steps, i.Semitones)
}

func (i Interval) String() string {
	return fmt.Sprintf("%s (%+d)", i.Name(), i.Semitones)
}
