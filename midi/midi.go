package midi

import (
	"bytes"
	"fmt"
	"math"
	"math/big"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jsphweid/kernprep/chord"
	"github.com/jsphweid/kernprep/model"
	"github.com/jsphweid/kernprep/pitch"
	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2/smf"
)

func ReadMidiFile(path string) (*smf.SMF, error) {
	dat, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "error reading midi file")
	}
	return ReadMidi(dat)
}

func ReadMidi(dat []byte) (s *smf.SMF, e error) {
	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r := recover(); r != nil {
			s = nil
			e = errors.Errorf("error parsing midi file... %v", r)
		}
	}()

	res, err := smf.ReadFrom(bytes.NewReader(dat))
	if err != nil {
		return nil, errors.Wrap(err, "error parsing midi file")
	}
	return res, nil
}

// LoadScore reads a MIDI file from disk into a Score.
func LoadScore(path string) (*model.Score, error) {
	mf, err := ReadMidiFile(path)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	score, err := ToScore(mf, path)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return score, nil
}

// ParseScore is LoadScore for bytes already in memory.
func ParseScore(dat []byte, source string) (*model.Score, error) {
	mf, err := ReadMidi(dat)
	if err != nil {
		return nil, err
	}
	return ToScore(mf, source)
}

type annotation struct {
	tick    uint64
	element model.Element
}

type meterChange struct {
	tick uint64
	sig  model.TimeSignature
}

type trackData struct {
	annotations []annotation
	spans       []chord.Span
	name        string
}

// keySigData returns the raw sharps and mode bytes of a key signature.
// GetMetaKeySig folds every mode other than 0 into minor, which would hide
// corrupt or modal metadata.
func keySigData(msg smf.Message) (int8, byte, bool) {
	if !msg.Is(smf.MetaKeySigMsg) {
		return 0, 0, false
	}
	raw := msg.Bytes()
	if len(raw) != 5 || raw[2] != 2 {
		return 0, 0, false
	}
	return int8(raw[3]), raw[4], true
}

func readAnnotations(track smf.Track) ([]annotation, string) {
	var res []annotation
	var name string
	var absTicks uint64
	for _, event := range track {
		absTicks += uint64(event.Delta)
		msg := event.Message
		if !msg.IsMeta() || len(msg) < 3 {
			continue
		}
		var text string
		var bpm float64
		var num, denom uint8
		switch {
		case msg.GetMetaTrackName(&text):
			if text == "" {
				continue
			}
			if name == "" {
				name = text
			}
			res = append(res, annotation{absTicks, &model.TrackName{Name: text}})
		case msg.GetMetaTempo(&bpm):
			if bpm > 0 && !math.IsInf(bpm, 0) {
				res = append(res, annotation{absTicks, &model.Tempo{BPM: bpm}})
			}
		case msg.GetMetaMeter(&num, &denom):
			// denominators past 2^7 overflow to 0
			if num > 0 && denom > 0 {
				res = append(res, annotation{absTicks, &model.TimeSignature{Numerator: num, Denominator: denom}})
			}
		default:
			if sharps, mode, ok := keySigData(msg); ok {
				if ks, ok := keySignature(sharps, mode); ok {
					res = append(res, annotation{absTicks, ks})
				}
			}
		}
	}
	return res, name
}

// keySignature keeps unknown mode bytes so they can be rejected later.
// An out of range sharps count is not a key at all.
func keySignature(sharps int8, mode byte) (*model.KeySignature, bool) {
	m := model.Major
	switch mode {
	case 0:
	case 1:
		m = model.Minor
	default:
		m = model.Mode(fmt.Sprintf("mode(%d)", mode))
	}
	k, err := model.KeyFromSignature(int(sharps), m)
	if err != nil {
		return nil, false
	}
	return &model.KeySignature{Key: k, Sharps: int(sharps)}, true
}

func ticksPerQuarter(mf *smf.SMF) (uint64, error) {
	if tf, ok := mf.TimeFormat.(smf.MetricTicks); ok && uint64(tf) > 0 {
		return uint64(tf), nil
	}
	return 0, errors.New("only metric time formats are supported")
}

// barStarts lays bars over [0, end) following the meter changes.
func barStarts(meters []meterChange, tpq uint64, end uint64) []uint64 {
	sig := model.TimeSignature{Numerator: 4, Denominator: 4}
	next := 0
	var res []uint64
	var tick uint64
	for {
		for next < len(meters) && meters[next].tick <= tick {
			sig = meters[next].sig
			next++
		}
		res = append(res, tick)
		barLength := uint64(sig.Numerator) * tpq * 4 / uint64(sig.Denominator)
		if barLength == 0 {
			barLength = tpq * 4
		}
		tick += barLength
		if tick >= end {
			return res
		}
	}
}

func barIndex(starts []uint64, tick uint64) int {
	return sort.Search(len(starts), func(i int) bool { return starts[i] > tick }) - 1
}

func ql(ticks, tpq uint64) *big.Rat {
	return new(big.Rat).SetFrac(new(big.Int).SetUint64(ticks), new(big.Int).SetUint64(tpq))
}

// ToScore turns every track that plays notes into a Part. Meta events from
// tracks without notes (the usual conductor track) are shared by all parts.
func ToScore(mf *smf.SMF, source string) (*model.Score, error) {
	tpq, err := ticksPerQuarter(mf)
	if err != nil {
		return nil, err
	}

	var tracks []trackData
	var shared []annotation
	var meters []meterChange
	var end uint64
	preferFlats := false
	sawKey := false
	for _, track := range mf.Tracks {
		annotations, name := readAnnotations(track)
		spans := chord.GetSpans(track)
		for _, a := range annotations {
			switch e := a.element.(type) {
			case *model.TimeSignature:
				meters = append(meters, meterChange{a.tick, *e})
			case *model.KeySignature:
				if !sawKey {
					preferFlats = e.Sharps < 0
					sawKey = true
				}
			}
		}
		for _, s := range spans {
			if s.End > end {
				end = s.End
			}
		}
		if len(spans) == 0 {
			shared = append(shared, annotations...)
			continue
		}
		tracks = append(tracks, trackData{annotations: annotations, spans: spans, name: name})
	}
	sort.SliceStable(meters, func(i, j int) bool { return meters[i].tick < meters[j].tick })

	score := &model.Score{Source: source, Title: title(shared, source)}
	starts := barStarts(meters, tpq, end)
	for _, td := range tracks {
		part := model.Part{Name: td.name}
		for i := range starts {
			part.Measures = append(part.Measures, model.Measure{Number: i + 1})
		}

		annotations := append(append([]annotation(nil), shared...), td.annotations...)
		sort.SliceStable(annotations, func(i, j int) bool { return annotations[i].tick < annotations[j].tick })
		for _, a := range annotations {
			if a.tick >= end && a.tick > 0 {
				continue
			}
			m := &part.Measures[barIndex(starts, a.tick)]
			m.Elements = append(m.Elements, a.element)
		}

		for _, te := range events(td.spans, tpq, preferFlats) {
			m := &part.Measures[barIndex(starts, te.tick)]
			m.Elements = append(m.Elements, te.event)
		}
		score.Parts = append(score.Parts, part)
	}
	return score, nil
}

type tickedEvent struct {
	tick  uint64
	event model.Event
}

func events(spans []chord.Span, tpq uint64, preferFlats bool) []tickedEvent {
	var res []tickedEvent
	for _, gap := range chord.Gaps(spans) {
		res = append(res, tickedEvent{gap[0], &model.Rest{Timing: model.Timing{
			Start:  ql(gap[0], tpq),
			Length: ql(gap[1]-gap[0], tpq),
		}}})
	}
	for _, group := range chord.Group(spans) {
		first := group[0]
		timing := model.Timing{Start: ql(first.Start, tpq), Length: ql(first.End-first.Start, tpq)}
		if len(group) == 1 {
			res = append(res, tickedEvent{first.Start, &model.Note{
				Timing:   timing,
				Pitch:    pitch.FromMIDI(int(first.Key), preferFlats),
				Velocity: first.Velocity,
				Channel:  first.Channel,
			}})
			continue
		}
		c := &model.Chord{Timing: timing, Velocity: first.Velocity, Channel: first.Channel}
		for _, s := range group {
			c.Pitches = append(c.Pitches, pitch.FromMIDI(int(s.Key), preferFlats))
		}
		res = append(res, tickedEvent{first.Start, c})
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].tick < res[j].tick
	})
	return res
}

func title(shared []annotation, source string) string {
	for _, a := range shared {
		if tn, ok := a.element.(*model.TrackName); ok && tn.Name != "" {
			return tn.Name
		}
	}
	return strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
}
