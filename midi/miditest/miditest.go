// Package miditest writes small Standard MIDI Files byte by byte for tests.
package miditest

import (
	"bytes"
	"encoding/binary"
	"math"
)

type Event struct {
	Delta uint32
	Data  []byte
}

func vlq(v uint32) []byte {
	res := []byte{byte(v & 0x7F)}
	for v >>= 7; v > 0; v >>= 7 {
		res = append([]byte{byte(v&0x7F) | 0x80}, res...)
	}
	return res
}

func meta(typ byte, data []byte) []byte {
	res := []byte{0xFF, typ}
	res = append(res, vlq(uint32(len(data)))...)
	return append(res, data...)
}

func NoteOn(channel, key, velocity uint8) []byte {
	return []byte{0x90 | channel, key, velocity}
}

func NoteOff(channel, key uint8) []byte {
	return []byte{0x80 | channel, key, 0}
}

func TrackName(name string) []byte {
	return meta(0x03, []byte(name))
}

// Meter takes the denominator as a note value (4 = quarter).
func Meter(num, denom uint8) []byte {
	power := byte(math.Log2(float64(denom)))
	return meta(0x58, []byte{num, power, 24, 8})
}

func KeySig(sharps int8, mode byte) []byte {
	return meta(0x59, []byte{byte(sharps), mode})
}

func Tempo(bpm float64) []byte {
	uspq := uint32(60000000 / bpm)
	return meta(0x51, []byte{byte(uspq >> 16), byte(uspq >> 8), byte(uspq)})
}

// File builds a format 1 SMF. End of track markers are appended.
func File(ticksPerQuarter uint16, tracks ...[]Event) []byte {
	var buf bytes.Buffer
	buf.WriteString("MThd")
	binary.Write(&buf, binary.BigEndian, uint32(6))
	binary.Write(&buf, binary.BigEndian, uint16(1))
	binary.Write(&buf, binary.BigEndian, uint16(len(tracks)))
	binary.Write(&buf, binary.BigEndian, ticksPerQuarter)

	for _, track := range tracks {
		var data bytes.Buffer
		for _, evt := range track {
			data.Write(vlq(evt.Delta))
			data.Write(evt.Data)
		}
		data.Write(vlq(0))
		data.Write(meta(0x2F, nil))

		buf.WriteString("MTrk")
		binary.Write(&buf, binary.BigEndian, uint32(data.Len()))
		buf.Write(data.Bytes())
	}
	return buf.Bytes()
}

// Melody writes back to back notes on channel 0. Durations are in ticks,
// a key of 0 is a rest.
func Melody(keys []uint8, durations []uint32, leading ...[]byte) []Event {
	var res []Event
	for _, l := range leading {
		res = append(res, Event{Data: l})
	}
	var pendingRest uint32
	for i, k := range keys {
		if k == 0 {
			pendingRest += durations[i]
			continue
		}
		res = append(res,
			Event{Delta: pendingRest, Data: NoteOn(0, k, 90)},
			Event{Delta: durations[i], Data: NoteOff(0, k)},
		)
		pendingRest = 0
	}
	return res
}
