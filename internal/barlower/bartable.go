// Package barlower implements Bar Lowering (spec §4.6): it builds a bar
// table from the timing-master track, then lowers every track's flat
// event stream into AgbBar sequences, pairing note-on/note-off into
// bounded NOTE or unbounded TIE/EOT events.
package barlower

import "midi2agb/internal/score"

// BarSpec is one entry of the bar table: the number of ticks the bar
// spans. Grounded on other_examples/divVerent-midiconverser__bars.go's
// findBars, which walks track 0 accumulating length against a running
// time-signature-derived bar length exactly this way.
type BarSpec struct {
	NumTicks int64
}

const defaultBarLen = 96

// BuildBarTable walks track0 (the timing master) accumulating ticks per
// bar and re-partitioning on each time-signature change (spec §4.6).
func BuildBarTable(track0 score.MidiTrack) []BarSpec {
	var bars []BarSpec
	barLen := int64(defaultBarLen)
	var numTicks int64
	var lastTick int64

	for _, ev := range track0 {
		numTicks += ev.Tick - lastTick
		lastTick = ev.Tick

		if ev.Kind == score.TimeSig {
			if numTicks > 0 {
				bars = append(bars, BarSpec{NumTicks: numTicks})
				numTicks = 0
			}
			barLen = int64(ev.TimeSigNum) * 96 / (int64(1) << ev.TimeSigDenomLog2)
		}

		for numTicks >= barLen {
			bars = append(bars, BarSpec{NumTicks: barLen})
			numTicks -= barLen
		}
	}

	if numTicks > 0 || len(bars) == 0 {
		bars = append(bars, BarSpec{NumTicks: barLen})
	}

	return bars
}

func barStart(bars []BarSpec, idx int) int64 {
	var start int64
	for i := 0; i < idx; i++ {
		start += bars[i].NumTicks
	}
	return start
}
