package chord

import (
	"fmt"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"
)

// Span is one sounding note in ticks.
type Span struct {
	Start    uint64
	End      uint64
	Key      uint8
	Channel  uint8
	Velocity uint8
}

type reducedEvent struct {
	Tick      uint64
	IsNoteOff bool
	Key       uint8
	Channel   uint8
	Velocity  uint8
}

func CreateChordKey(notes []uint8) string {
	sorted := append([]uint8(nil), notes...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})
	var res string
	for i, note := range sorted {
		res += fmt.Sprintf("%v", note)
		if i < len(sorted)-1 {
			res += "-"
		}
	}
	return res
}

// GetSpans pairs note on and note off messages of a track. Notes left
// hanging at the end are closed at the last tick of the track.
func GetSpans(track smf.Track) []Span {
	var reducedEvents []reducedEvent
	var absTicks uint64
	for _, event := range track {
		absTicks += uint64(event.Delta)
		var channel, key, velocity uint8
		switch {
		case event.Message.GetNoteOn(&channel, &key, &velocity):
			reducedEvents = append(reducedEvents, reducedEvent{
				Tick:      absTicks,
				IsNoteOff: velocity == 0,
				Key:       key,
				Channel:   channel,
				Velocity:  velocity,
			})
		case event.Message.GetNoteOff(&channel, &key, &velocity):
			reducedEvents = append(reducedEvents, reducedEvent{
				Tick:      absTicks,
				IsNoteOff: true,
				Key:       key,
				Channel:   channel,
			})
		}
	}

	// prioritize smaller ticks then note off
	sort.SliceStable(reducedEvents, func(i, j int) bool {
		if reducedEvents[i].Tick != reducedEvents[j].Tick {
			return reducedEvents[i].Tick < reducedEvents[j].Tick
		}
		return reducedEvents[i].IsNoteOff && !reducedEvents[j].IsNoteOff
	})

	type voiceKey struct{ channel, key uint8 }
	pressed := make(map[voiceKey]reducedEvent)
	var spans []Span
	for _, evt := range reducedEvents {
		vk := voiceKey{evt.Channel, evt.Key}
		on, isPressed := pressed[vk]
		if evt.IsNoteOff {
			if isPressed {
				spans = append(spans, Span{Start: on.Tick, End: evt.Tick, Key: on.Key, Channel: on.Channel, Velocity: on.Velocity})
				delete(pressed, vk)
			}
			continue
		}
		if isPressed {
			// retrigger without note off
			spans = append(spans, Span{Start: on.Tick, End: evt.Tick, Key: on.Key, Channel: on.Channel, Velocity: on.Velocity})
		}
		pressed[vk] = evt
	}
	for _, on := range pressed {
		spans = append(spans, Span{Start: on.Tick, End: absTicks, Key: on.Key, Channel: on.Channel, Velocity: on.Velocity})
	}

	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].Start != spans[j].Start {
			return spans[i].Start < spans[j].Start
		}
		return spans[i].Key < spans[j].Key
	})
	return filterEmpty(spans)
}

func filterEmpty(spans []Span) []Span {
	var res []Span
	for _, s := range spans {
		if s.End > s.Start {
			res = append(res, s)
		}
	}
	return res
}

// Group puts spans that start and end together into one group. A group of
// one is a plain note, more is a chord. Input must be sorted by start.
func Group(spans []Span) [][]Span {
	var res [][]Span
	index := make(map[[2]uint64]int)
	for _, s := range spans {
		k := [2]uint64{s.Start, s.End}
		if i, ok := index[k]; ok {
			res[i] = append(res[i], s)
			continue
		}
		index[k] = len(res)
		res = append(res, []Span{s})
	}
	return res
}

// Gaps returns the silent stretches between 0 and the last note end.
func Gaps(spans []Span) [][2]uint64 {
	var res [][2]uint64
	var covered uint64
	for _, s := range spans {
		if s.Start > covered {
			res = append(res, [2]uint64{covered, s.Start})
		}
		if s.End > covered {
			covered = s.End
		}
	}
	return res
}
