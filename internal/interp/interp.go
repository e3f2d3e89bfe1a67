// Package interp implements the Event Interpreter pass (spec §4.1): it
// recognises in-file text directives and RPN controller sequences and
// rewrites them into synthetic controller events in a private namespace,
// so every downstream pass only ever has to understand score.Controller
// events, never raw text payloads.
package interp

import "midi2agb/internal/score"

type rpnState struct {
	msb, lsb int32
}

// globals collects the *_global directives seen anywhere in the score;
// they are applied to every track once the per-event scan is complete.
type globals struct {
	modt, lfos, lfodl *int
	modscale          *float64
}

// Overrides carries the CLI's --modt/--lfos/--lfodl/--modsc flags (spec
// §6). Any non-nil field here wins over the matching in-file *_global
// directive, the same "explicit flag beats in-file default" rule the CLI
// applies everywhere else.
type Overrides struct {
	Modt, Lfos, Lfodl *int
	Modscale          *float64
}

// Run mutates sc in place. On return, every track ends at the same tick
// (the score's global max) and no recognised text/marker/cuepoint event
// remains (spec §8 invariant).
func Run(sc *score.MidiScore, overrides Overrides) *float64 {
	var loopStartTick, loopEndTick int64 = -1, -1
	var g globals

	for ti := range sc.Tracks {
		sc.Tracks[ti] = interpretTrack(sc.Tracks[ti], ti, &loopStartTick, &loopEndTick, &g)
	}

	if overrides.Modt != nil {
		g.modt = overrides.Modt
	}
	if overrides.Lfos != nil {
		g.lfos = overrides.Lfos
	}
	if overrides.Lfodl != nil {
		g.lfodl = overrides.Lfodl
	}
	if overrides.Modscale != nil {
		g.modscale = overrides.Modscale
	}

	maxTick := sc.MaxTick()
	for ti := range sc.Tracks {
		sc.Tracks[ti] = sc.Tracks[ti].InsertUpperBound(score.MidiEvent{Tick: maxTick, Kind: score.Dummy})
	}

	for ti := range sc.Tracks {
		track := sc.Tracks[ti]
		channel := detectChannel(track)

		if loopStartTick >= 0 {
			track = track.InsertLowerBound(score.MidiEvent{
				Tick: loopStartTick, Kind: score.Controller,
				Controller: score.CCLoop, Value: score.LoopStartPayload, Channel: channelOrZero(channel),
			})
		}
		if loopEndTick >= 0 {
			track = track.InsertUpperBound(score.MidiEvent{
				Tick: loopEndTick, Kind: score.Controller,
				Controller: score.CCLoop, Value: score.LoopEndPayload, Channel: channelOrZero(channel),
			})
		}
		if channel >= 0 {
			if g.modt != nil {
				track = track.InsertUpperBound(score.MidiEvent{
					Tick: 0, Kind: score.Controller, Channel: uint8(channel),
					Controller: score.CCModType, Value: int32(score.ClampInt(*g.modt, 0, 2)),
				})
			}
			if g.lfos != nil {
				track = track.InsertUpperBound(score.MidiEvent{
					Tick: 0, Kind: score.Controller, Channel: uint8(channel),
					Controller: score.CCLFOSpeed, Value: int32(score.ClampInt(*g.lfos, 0, 127)),
				})
			}
			if g.lfodl != nil {
				track = track.InsertUpperBound(score.MidiEvent{
					Tick: 0, Kind: score.Controller, Channel: uint8(channel),
					Controller: score.CCLFODelay, Value: int32(score.ClampInt(*g.lfodl, 0, 127)),
				})
			}
			if !hasVolume(track) {
				track = track.InsertUpperBound(score.MidiEvent{
					Tick: 0, Kind: score.Controller, Channel: uint8(channel),
					Controller: score.CCVolume, Value: 127,
				})
			}
		}

		sc.Tracks[ti] = track
	}

	return g.modscale
}

func interpretTrack(track score.MidiTrack, trackIdx int, loopStartTick, loopEndTick *int64, g *globals) score.MidiTrack {
	channel := detectChannel(track)
	rpn := make(map[uint8]*rpnState)

	out := make(score.MidiTrack, 0, len(track))
	for _, ev := range track {
		switch ev.Kind {
		case score.Text, score.Marker, score.Cuepoint:
			d, recognised := parseDirective(ev.Text)
			if !recognised {
				out = append(out, ev)
				continue
			}
			if rewritten, keep := applyDirective(d, ev, channel, loopStartTick, loopEndTick, g); keep {
				out = append(out, rewritten)
			}
			// a recognised directive with no channel to attach to (or a
			// pure side-effect directive) is consumed silently.
		case score.Controller:
			out = append(out, interpretRPN(ev, rpn))
		case score.NoteOff:
			ev.Value = score.NoteOffInit
			out = append(out, ev)
		default:
			out = append(out, ev)
		}
	}
	return out
}

// applyDirective turns an already-recognised directive into either a
// synthetic controller event (keep=true) or a side effect on the score's
// loop ticks / globals (keep=false, nothing emitted in its place).
func applyDirective(d directive, ev score.MidiEvent, channel int, loopStartTick, loopEndTick *int64, g *globals) (score.MidiEvent, bool) {
	switch d.kind {
	case "loopStart":
		if *loopStartTick < 0 {
			*loopStartTick = ev.Tick
		}
		return score.MidiEvent{}, false
	case "loopEnd":
		if *loopEndTick < 0 {
			*loopEndTick = ev.Tick
		}
		return score.MidiEvent{}, false
	case "modt_global":
		n := d.intVal
		g.modt = &n
		return score.MidiEvent{}, false
	case "lfos_global":
		n := d.intVal
		g.lfos = &n
		return score.MidiEvent{}, false
	case "lfodl_global":
		n := d.intVal
		g.lfodl = &n
		return score.MidiEvent{}, false
	case "modscale_global":
		v := d.floatVal
		if v < 0.0 {
			v = 0.0
		}
		if v > 16.0 {
			v = 16.0
		}
		g.modscale = &v
		return score.MidiEvent{}, false
	case "modt", "tune", "lfos", "lfodl", "prio":
		if channel < 0 {
			return score.MidiEvent{}, false
		}
		return score.MidiEvent{
			Tick: ev.Tick, Kind: score.Controller, Channel: uint8(channel),
			Controller: directiveController(d.kind),
			Value:      int32(clampDirective(d.kind, d.intVal)),
		}, true
	}
	return score.MidiEvent{}, false
}

func directiveController(kind string) uint8 {
	switch kind {
	case "modt":
		return score.CCModType
	case "tune":
		return score.CCTune
	case "lfos":
		return score.CCLFOSpeed
	case "lfodl":
		return score.CCLFODelay
	case "prio":
		return score.CCPriority
	}
	return 0
}

func clampDirective(kind string, n int) int {
	switch kind {
	case "modt":
		return score.ClampInt(n, 0, 2)
	case "tune":
		return score.ClampInt(n, -64, 63)
	case "lfos", "lfodl", "prio":
		return score.ClampInt(n, 0, 127)
	}
	return n
}

// interpretRPN tracks the running (MSB_RPN, LSB_RPN) pair per channel and
// rewrites a data-entry event into a synthetic BENDR controller when both
// halves of the currently-selected RPN are zero (pitch-bend sensitivity,
// spec §4.1).
func interpretRPN(ev score.MidiEvent, rpn map[uint8]*rpnState) score.MidiEvent {
	st := rpn[ev.Channel]
	if st == nil {
		st = &rpnState{}
		rpn[ev.Channel] = st
	}
	switch ev.Controller {
	case score.CCRPNMSB:
		st.msb = ev.Value
	case score.CCRPNLSB:
		st.lsb = ev.Value
	case score.CCDataEntry:
		if st.msb == 0 && st.lsb == 0 {
			ev.Controller = score.CCBendRange
		}
	}
	return ev
}

// detectChannel returns the channel of the first message (channel-voice)
// event in the track, or -1 if the track carries none yet — the dead path
// spec §9 names; this pipeline resolves it by silently skipping the
// dependent insertion (see DESIGN.md, Open Questions).
func detectChannel(track score.MidiTrack) int {
	for _, ev := range track {
		switch ev.Kind {
		case score.Program, score.Controller, score.PitchBend, score.NoteOn, score.NoteOff:
			return int(ev.Channel)
		}
	}
	return -1
}

func channelOrZero(channel int) uint8 {
	if channel < 0 {
		return 0
	}
	return uint8(channel)
}

func hasVolume(track score.MidiTrack) bool {
	for _, ev := range track {
		if ev.Kind == score.Controller && ev.Controller == score.CCVolume {
			return true
		}
	}
	return false
}
