// Package midiread loads a standard MIDI file into the pipeline's own
// score representation, re-timing whatever pulses-per-quarter-note the
// file carries onto the fixed 24 ticks/quarter this compiler works in.
package midiread

import (
	"math"

	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2/smf"

	"midi2agb/internal/score"
)

const targetPPQN = 24

// Read parses path and returns a MidiScore with every track re-timed to
// 24 ticks per quarter note.
func Read(path string) (*score.MidiScore, error) {
	smfFile, err := smf.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	ticks, ok := smfFile.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, errors.Errorf("%s: only metric (PPQN) timing is supported", path)
	}
	scale := float64(targetPPQN) / float64(ticks)

	sc := &score.MidiScore{Tracks: make([]score.MidiTrack, len(smfFile.Tracks))}
	for ti, smfTrack := range smfFile.Tracks {
		sc.Tracks[ti] = convertTrack(smfTrack, scale)
	}
	return sc, nil
}

func convertTrack(track smf.Track, scale float64) score.MidiTrack {
	out := make(score.MidiTrack, 0, len(track))
	var nativeTick uint64

	for _, ev := range track {
		nativeTick += uint64(ev.Delta)
		tick := int64(math.Round(float64(nativeTick) * scale))

		if converted, ok := convertEvent(tick, ev.Message); ok {
			out = append(out, converted)
		}
	}
	return out
}

func convertEvent(tick int64, msg smf.Message) (score.MidiEvent, bool) {
	var ch, key, vel, prog, num, denom, cpt, dsqpq uint8
	var bendRel int16
	var bendAbs uint16
	var bpm float64
	var text string

	switch {
	case msg.GetNoteOn(&ch, &key, &vel):
		if vel == 0 {
			return score.MidiEvent{Tick: tick, Kind: score.NoteOff, Channel: ch, Key: key, Value: score.NoteOffInit}, true
		}
		return score.MidiEvent{Tick: tick, Kind: score.NoteOn, Channel: ch, Key: key, Value: int32(vel)}, true
	case msg.GetNoteOff(&ch, &key, &vel):
		return score.MidiEvent{Tick: tick, Kind: score.NoteOff, Channel: ch, Key: key, Value: score.NoteOffInit}, true
	case msg.GetControlChange(&ch, &num, &vel):
		return score.MidiEvent{Tick: tick, Kind: score.Controller, Channel: ch, Controller: num, Value: int32(vel)}, true
	case msg.GetProgramChange(&ch, &prog):
		return score.MidiEvent{Tick: tick, Kind: score.Program, Channel: ch, Program: prog}, true
	case msg.GetPitchBend(&ch, &bendRel, &bendAbs):
		return score.MidiEvent{Tick: tick, Kind: score.PitchBend, Channel: ch, Value: int32(bendRel)}, true
	case msg.GetMetaTempo(&bpm):
		if bpm <= 0 {
			return score.MidiEvent{}, false
		}
		return score.MidiEvent{Tick: tick, Kind: score.Tempo, Value: int32(math.Round(60000000.0 / bpm))}, true
	case msg.GetMetaTimeSig(&num, &denom, &cpt, &dsqpq):
		return score.MidiEvent{Tick: tick, Kind: score.TimeSig, TimeSigNum: num, TimeSigDenomLog2: denomLog2(denom)}, true
	case msg.GetMetaLyric(&text), msg.GetMetaText(&text):
		return score.MidiEvent{Tick: tick, Kind: score.Text, Text: text}, true
	case msg.GetMetaMarker(&text):
		return score.MidiEvent{Tick: tick, Kind: score.Marker, Text: text}, true
	case msg.GetMetaCuepoint(&text):
		return score.MidiEvent{Tick: tick, Kind: score.Cuepoint, Text: text}, true
	}
	return score.MidiEvent{}, false
}

// denomLog2 converts the library's decoded denominator (4, 8, ...) back
// into the log2 exponent the bar-length formula wants, mirroring the raw
// "dd" byte the MIDI time-signature meta event carries on the wire.
func denomLog2(denom uint8) uint8 {
	if denom == 0 {
		return 2 // default to 4/4
	}
	return uint8(math.Round(math.Log2(float64(denom))))
}
