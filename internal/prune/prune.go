// Package prune implements the Track Pruner pass (spec §4.2): it hoists
// tempo and time-signature meta events onto track 0 and removes tracks
// that never turned out to carry a note.
package prune

import (
	"sort"

	"midi2agb/internal/score"
)

// Run prunes sc in place and reports whether any track survived. If none
// did, ok is false and the caller should short-circuit to a header-only
// emission (spec §4.2 Failure case).
func Run(sc *score.MidiScore) (ok bool) {
	var tempos, timeSigs score.MidiTrack

	for ti := range sc.Tracks {
		track := sc.Tracks[ti]
		kept := make(score.MidiTrack, 0, len(track))
		for _, ev := range track {
			switch ev.Kind {
			case score.Tempo:
				tempos = append(tempos, ev)
				kept = append(kept, score.MidiEvent{Tick: ev.Tick, Kind: score.Dummy})
			case score.TimeSig:
				timeSigs = append(timeSigs, ev)
				kept = append(kept, score.MidiEvent{Tick: ev.Tick, Kind: score.Dummy})
			default:
				kept = append(kept, ev)
			}
		}
		sc.Tracks[ti] = kept
	}

	sort.SliceStable(tempos, func(i, j int) bool { return tempos[i].Tick < tempos[j].Tick })
	sort.SliceStable(timeSigs, func(i, j int) bool { return timeSigs[i].Tick < timeSigs[j].Tick })
	timeSigs = collapseTimeSigDuplicates(timeSigs)

	var surviving []score.MidiTrack
	for _, track := range sc.Tracks {
		if hasNoteOn(track) {
			surviving = append(surviving, track)
		}
	}
	sc.Tracks = surviving

	if len(sc.Tracks) == 0 {
		return false
	}

	track0 := sc.Tracks[0]
	for _, ev := range tempos {
		track0 = track0.InsertLowerBound(ev)
	}
	for _, ev := range timeSigs {
		track0 = track0.InsertLowerBound(ev)
	}
	sc.Tracks[0] = track0

	return true
}

// collapseTimeSigDuplicates keeps only the last time-signature event at
// each distinct tick (spec §4.2: "duplicates at the same tick are
// collapsed to the last-wins occurrence").
func collapseTimeSigDuplicates(in score.MidiTrack) score.MidiTrack {
	out := make(score.MidiTrack, 0, len(in))
	for i, ev := range in {
		if i+1 < len(in) && in[i+1].Tick == ev.Tick {
			continue
		}
		out = append(out, ev)
	}
	return out
}

func hasNoteOn(track score.MidiTrack) bool {
	for _, ev := range track {
		if ev.Kind == score.NoteOn {
			return true
		}
	}
	return false
}
