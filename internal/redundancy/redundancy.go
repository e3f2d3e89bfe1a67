// Package redundancy implements the Redundancy Eliminator pass (spec
// §4.5): per controller stream, it drops events equal to the current
// running value, or shadowed by a later event of the same kind at the
// same tick. Dropped events become dummies rather than being erased, so
// the scan's own indices stay valid mid-pass (spec §3 Lifecycle).
package redundancy

import (
	"midi2agb/internal/score"
)

type runningState struct {
	tempo, pan, bend, bendr, mod, modt, tune, prio, lfos, lfodl int32
	voice                                                       int32
	volume                                                      int32
	seenVoice, seenVolume                                       bool
}

func defaultRunning() runningState {
	return runningState{
		tempo: 60, pan: 0x40, bend: 0, bendr: 2, mod: 0, modt: 0, tune: 0x40, prio: 0, lfos: 0, lfodl: 0,
	}
}

// Run mutates sc in place.
func Run(sc *score.MidiScore) {
	for ti := range sc.Tracks {
		sc.Tracks[ti] = runTrack(sc.Tracks[ti])
	}
}

func runTrack(track score.MidiTrack) score.MidiTrack {
	st := defaultRunning()
	for i, ev := range track {
		if ev.Kind == score.Dummy {
			continue
		}
		if shadowedBySameTick(track, i) {
			track[i] = score.MidiEvent{Tick: ev.Tick, Kind: score.Dummy}
			continue
		}
		if !keepEvent(&st, ev) {
			track[i] = score.MidiEvent{Tick: ev.Tick, Kind: score.Dummy}
		}
	}
	return track
}

// shadowedBySameTick reports whether a later event of the same kind (and,
// for controllers, same controller number) exists at track[i]'s tick.
func shadowedBySameTick(track score.MidiTrack, i int) bool {
	ev := track[i]
	if !isEliminable(ev) {
		return false
	}
	for j := i + 1; j < len(track) && track[j].Tick == ev.Tick; j++ {
		other := track[j]
		if other.Kind != ev.Kind {
			continue
		}
		if ev.Kind == score.Controller && other.Controller != ev.Controller {
			continue
		}
		return true
	}
	return false
}

func isEliminable(ev score.MidiEvent) bool {
	switch ev.Kind {
	case score.Tempo, score.Program, score.PitchBend:
		return true
	case score.Controller:
		return true
	}
	return false
}

// keepEvent applies the running-value elimination rule and, for the
// events it decides to keep, updates the running state. It returns false
// when the event should become a dummy.
func keepEvent(st *runningState, ev score.MidiEvent) bool {
	switch ev.Kind {
	case score.TimeSig, score.NoteOn, score.NoteOff:
		return true
	case score.Text, score.Marker, score.Cuepoint:
		return false
	case score.Tempo:
		encoded := score.EncodeTempo(ev.Value)
		if encoded == st.tempo {
			return false
		}
		st.tempo = encoded
		return true
	case score.Program:
		v := int32(ev.Program)
		if st.seenVoice && v == st.voice {
			return false
		}
		st.voice = v
		st.seenVoice = true
		return true
	case score.PitchBend:
		encoded := score.EncodeBend(ev.Value)
		if encoded == st.bend {
			return false
		}
		st.bend = encoded
		return true
	case score.Controller:
		return keepController(st, ev)
	}
	return true
}

func keepController(st *runningState, ev score.MidiEvent) bool {
	switch ev.Controller {
	case score.CCVolume:
		if st.seenVolume && ev.Value == st.volume {
			return false
		}
		st.volume = ev.Value
		st.seenVolume = true
		return true
	case score.CCPan:
		if ev.Value == st.pan {
			return false
		}
		st.pan = ev.Value
		return true
	case score.CCBendRange:
		if ev.Value == st.bendr {
			return false
		}
		st.bendr = ev.Value
		return true
	case score.CCModulation:
		if ev.Value == st.mod {
			return false
		}
		st.mod = ev.Value
		return true
	case score.CCModType:
		if ev.Value == st.modt {
			return false
		}
		st.modt = ev.Value
		return true
	case score.CCTune:
		if ev.Value == st.tune {
			return false
		}
		st.tune = ev.Value
		return true
	case score.CCPriority:
		if ev.Value == st.prio {
			return false
		}
		st.prio = ev.Value
		return true
	case score.CCLFOSpeed:
		if ev.Value == st.lfos {
			return false
		}
		st.lfos = ev.Value
		return true
	case score.CCLFODelay:
		if ev.Value == st.lfodl {
			return false
		}
		st.lfodl = ev.Value
		return true
	case score.CCLoop:
		return ev.Value == score.LoopStartPayload || ev.Value == score.LoopEndPayload
	default:
		// Any other controller number (RPN scaffolding, expression
		// already folded away by the filter pass, etc.) never reaches
		// here in a well-formed score; erase it defensively.
		return false
	}
}
