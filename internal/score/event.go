// Package score holds the MIDI-side and AGB-side data model the compiler
// pipeline mutates in place: MidiEvent/MidiTrack/MidiScore before bar
// lowering, AgbEvent/AgbBar/AgbTrack/AgbSong after it.
package score

// EventKind tags the variant carried by a MidiEvent. Every pass switches
// on this exhaustively instead of using a dynamic type check.
type EventKind uint8

const (
	Dummy EventKind = iota
	Tempo
	TimeSig
	Text
	Marker
	Cuepoint
	Program
	Controller
	PitchBend
	NoteOn
	NoteOff
)

// Note-off velocity is repurposed as a three-valued parse marker once the
// Event Interpreter has run. INIT means "not yet resolved by Bar Lowering",
// SHORT means the matching note-on emitted a bounded NOTE and this
// note-off contributes nothing, TIE means the matching note-on emitted a
// TIE and this note-off must emit an EOT.
const (
	NoteOffInit  int32 = 0
	NoteOffShort int32 = 1
	NoteOffTie   int32 = 2
)

// Standard MIDI controller numbers this pipeline cares about.
const (
	CCModulation = 1
	CCDataEntry  = 6
	CCVolume     = 7
	CCPan        = 10
	CCExpression = 11
	CCRPNLSB     = 100
	CCRPNMSB     = 101
)

// Private controller numbers used by the Event Interpreter to carry
// synthetic state outside the standard MIDI controller namespace. No pass
// downstream of the interpreter treats a text/marker/cuepoint event as
// anything but one of these.
const (
	CCBendRange = 20
	CCLFOSpeed  = 21
	CCModType   = 22
	CCTune      = 24
	CCLFODelay  = 26
	CCLoop      = 30
	CCPriority  = 33

	LoopStartPayload = 100
	LoopEndPayload   = 101
)

// MidiEvent is a flat tagged variant: only the fields relevant to Kind are
// meaningful. Channel, Value, Key and Text are reused across variants the
// way the reference implementation reuses the note-off velocity byte;
// each pass documents which fields it reads for which Kind.
type MidiEvent struct {
	Tick    int64
	Kind    EventKind
	Channel uint8

	// Program: program number (Program).
	Program uint8

	// Controller: controller number (Controller).
	Controller uint8

	// Value carries: tempo in microseconds per quarter note (Tempo);
	// pitch-bend value -8192..8191 (PitchBend); controller value 0..127
	// (Controller); note-on velocity 1..127 or note-off marker (NoteOn,
	// NoteOff).
	Value int32

	// Key: MIDI key number 0..127 (NoteOn, NoteOff).
	Key uint8

	// TimeSigNum/TimeSigDenomLog2: time signature payload (TimeSig).
	TimeSigNum      uint8
	TimeSigDenomLog2 uint8

	// Text: raw payload of a text/marker/cuepoint event. The Event
	// Interpreter removes events whose payload is a recognised directive;
	// other payloads are left as they are.
	Text string
}

// MidiTrack is an ordered, tick-sorted sequence of events. Sort stability
// (insertion order preserved at equal ticks) is an invariant every pass
// must maintain; use InsertLowerBound/InsertUpperBound rather than
// appending and re-sorting so that invariant never has to be re-derived.
type MidiTrack []MidiEvent

// InsertLowerBound inserts ev before any existing event at the same tick,
// used by the Event Interpreter for LOOP_START so it precedes concurrent
// state resets (spec ordering rule, §4.1).
func (t MidiTrack) InsertLowerBound(ev MidiEvent) MidiTrack {
	i := 0
	for i < len(t) && t[i].Tick < ev.Tick {
		i++
	}
	return insertAt(t, i, ev)
}

// InsertUpperBound inserts ev after any existing event at the same tick,
// used for LOOP_END, global defaults, and tail dummies (spec §4.1).
func (t MidiTrack) InsertUpperBound(ev MidiEvent) MidiTrack {
	i := 0
	for i < len(t) && t[i].Tick <= ev.Tick {
		i++
	}
	return insertAt(t, i, ev)
}

func insertAt(t MidiTrack, i int, ev MidiEvent) MidiTrack {
	t = append(t, MidiEvent{})
	copy(t[i+1:], t[i:])
	t[i] = ev
	return t
}

// MidiScore is the ordered sequence of tracks the pipeline owns and
// mutates pass by pass.
type MidiScore struct {
	Tracks []MidiTrack
}

// MaxTick returns the greatest tick present across every track, or 0 for
// an empty score.
func (s *MidiScore) MaxTick() int64 {
	var max int64
	for _, tr := range s.Tracks {
		for _, ev := range tr {
			if ev.Tick > max {
				max = ev.Tick
			}
		}
	}
	return max
}
