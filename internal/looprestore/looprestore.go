// Package looprestore implements the Loop/State Restorer pass (spec
// §4.4): it snapshots per-track controller state at the loop-start tick
// and re-emits that snapshot at the loop-end tick, so the second loop
// iteration begins with the state the first iteration had at its start
// rather than whatever was left over at its end.
package looprestore

import (
	"math"

	"midi2agb/internal/score"
)

type snapshot struct {
	tempo, vol, pan, bend, bendr, mod, modt, tune, prio int32
	voice                                               uint8
}

func defaultSnapshot() snapshot {
	return snapshot{tempo: 500000, voice: 0, vol: 100, pan: 0x40, bend: 0, bendr: 2, mod: 0, modt: 0, tune: 0x40, prio: 0}
}

// Run mutates sc in place.
func Run(sc *score.MidiScore) {
	for ti := range sc.Tracks {
		sc.Tracks[ti] = runTrack(sc.Tracks[ti])
	}
}

func runTrack(track score.MidiTrack) score.MidiTrack {
	snap := defaultSnapshot()
	var loopStartTick int64 = math.MaxInt64
	var channel uint8

	for i := 0; i < len(track); i++ {
		ev := track[i]

		if ev.Tick <= loopStartTick {
			switch {
			case ev.Kind == score.Tempo:
				snap.tempo = ev.Value
			case ev.Kind == score.Program:
				snap.voice = ev.Program
				channel = ev.Channel
			case ev.Kind == score.Controller && ev.Controller == score.CCVolume:
				snap.vol = ev.Value
				channel = ev.Channel
			case ev.Kind == score.Controller && ev.Controller == score.CCPan:
				snap.pan = ev.Value
				channel = ev.Channel
			case ev.Kind == score.PitchBend:
				snap.bend = ev.Value
				channel = ev.Channel
			case ev.Kind == score.Controller && ev.Controller == score.CCBendRange:
				snap.bendr = ev.Value
				channel = ev.Channel
			case ev.Kind == score.Controller && ev.Controller == score.CCModulation:
				snap.mod = ev.Value
				channel = ev.Channel
			case ev.Kind == score.Controller && ev.Controller == score.CCModType:
				snap.modt = ev.Value
				channel = ev.Channel
			case ev.Kind == score.Controller && ev.Controller == score.CCTune:
				snap.tune = ev.Value
				channel = ev.Channel
			case ev.Kind == score.Controller && ev.Controller == score.CCPriority:
				snap.prio = ev.Value
				channel = ev.Channel
			}
		}

		if ev.Kind == score.Controller && ev.Controller == score.CCLoop {
			switch ev.Value {
			case score.LoopStartPayload:
				if loopStartTick == math.MaxInt64 {
					loopStartTick = ev.Tick
				}
			case score.LoopEndPayload:
				if ev.Tick > loopStartTick {
					restore := []score.MidiEvent{
						{Tick: ev.Tick, Kind: score.Tempo, Value: snap.tempo},
						{Tick: ev.Tick, Kind: score.Program, Channel: channel, Program: snap.voice},
						{Tick: ev.Tick, Kind: score.Controller, Channel: channel, Controller: score.CCVolume, Value: snap.vol},
						{Tick: ev.Tick, Kind: score.Controller, Channel: channel, Controller: score.CCPan, Value: snap.pan},
						{Tick: ev.Tick, Kind: score.PitchBend, Channel: channel, Value: snap.bend},
						{Tick: ev.Tick, Kind: score.Controller, Channel: channel, Controller: score.CCBendRange, Value: snap.bendr},
						{Tick: ev.Tick, Kind: score.Controller, Channel: channel, Controller: score.CCModulation, Value: snap.mod},
						{Tick: ev.Tick, Kind: score.Controller, Channel: channel, Controller: score.CCModType, Value: snap.modt},
						{Tick: ev.Tick, Kind: score.Controller, Channel: channel, Controller: score.CCTune, Value: snap.tune},
						{Tick: ev.Tick, Kind: score.Controller, Channel: channel, Controller: score.CCPriority, Value: snap.prio},
					}
					track = spliceBefore(track, i, restore)
					i += len(restore)
				}
			}
		}
	}
	return track
}

func spliceBefore(track score.MidiTrack, at int, events []score.MidiEvent) score.MidiTrack {
	out := make(score.MidiTrack, 0, len(track)+len(events))
	out = append(out, track[:at]...)
	out = append(out, events...)
	out = append(out, track[at:]...)
	return out
}
