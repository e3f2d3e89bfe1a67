package barlower

import (
	"github.com/pkg/errors"

	"midi2agb/internal/score"
)

// Run builds the bar table from the timing-master track (track 0) and
// lowers every track against it (spec §4.6).
func Run(sc *score.MidiScore) (score.AgbSong, error) {
	if len(sc.Tracks) == 0 {
		return score.AgbSong{}, nil
	}

	bars := BuildBarTable(sc.Tracks[0])

	song := score.AgbSong{Tracks: make([]score.AgbTrack, len(sc.Tracks))}
	for ti, track := range sc.Tracks {
		lowered, err := LowerTrack(track, bars)
		if err != nil {
			return score.AgbSong{}, errors.Wrapf(err, "lowering track %d", ti)
		}
		song.Tracks[ti] = lowered
	}
	return song, nil
}

// LowerTrack walks track in tick order, slicing it into bars per the bar
// table and translating each MIDI event into its AGB counterpart. Note-on
// events resolve their matching note-off here, choosing a bounded NOTE or
// an unbounded TIE/EOT pair depending on whether the held length exceeds
// 96 ticks, whatever the current bar length (spec §4.6).
func LowerTrack(track score.MidiTrack, bars []BarSpec) (score.AgbTrack, error) {
	l := &lowerer{bars: bars}
	if len(bars) > 0 {
		l.barRemaining = bars[0].NumTicks
	}

	for i := 0; i < len(track); i++ {
		ev := track[i]
		if ev.Kind == score.Dummy {
			// Dummies mark positions earlier passes emptied out (a hoisted
			// tempo/time-sig, a redundancy-eliminated controller); only the
			// trailing dummy at the end of the track should move the
			// cursor, and the advance after this loop already covers it.
			continue
		}
		l.advance(ev.Tick)

		switch ev.Kind {
		case score.Tempo:
			l.emit(score.AgbEvent{Kind: score.AgbTempo, Value: int16(score.EncodeTempo(ev.Value))})
		case score.Program:
			l.emit(score.AgbEvent{Kind: score.AgbVoice, Value: int16(ev.Program)})
		case score.PitchBend:
			l.emit(score.AgbEvent{Kind: score.AgbBend, Value: int16(score.EncodeBend(ev.Value))})
		case score.Controller:
			if agbEv, ok := translateController(ev); ok {
				l.emit(agbEv)
			}
		case score.NoteOn:
			if err := l.emitNoteOn(track, i, ev); err != nil {
				return nil, err
			}
		case score.NoteOff:
			if err := l.emitNoteOff(ev); err != nil {
				return nil, err
			}
		case score.TimeSig, score.Text, score.Marker, score.Cuepoint:
			// carry no AGB payload; bar boundaries were already derived
			// from TimeSig by BuildBarTable.
		}
	}

	l.advance(barStart(bars, len(bars)))
	l.flush()
	return l.out, nil
}

type lowerer struct {
	bars         []BarSpec
	barIdx       int
	barRemaining int64
	cursor       int64
	curBar       []score.AgbEvent
	out          score.AgbTrack
}

// advance emits WAIT events, splitting across bar boundaries as needed,
// until the cursor reaches tick.
func (l *lowerer) advance(tick int64) {
	delta := tick - l.cursor
	for delta > 0 {
		if l.barIdx >= len(l.bars) {
			// Past the last bar the table accounted for: fold the
			// remainder into one final WAIT rather than lose it.
			l.curBar = append(l.curBar, score.AgbEvent{Kind: score.AgbWait, Wait: int(delta)})
			l.cursor += delta
			return
		}
		step := delta
		if step > l.barRemaining {
			step = l.barRemaining
		}
		if step > 0 {
			l.curBar = append(l.curBar, score.AgbEvent{Kind: score.AgbWait, Wait: int(step)})
			l.barRemaining -= step
			delta -= step
			l.cursor += step
		}
		if l.barRemaining == 0 {
			l.out = append(l.out, score.AgbBar{Events: l.curBar})
			l.curBar = nil
			l.barIdx++
			if l.barIdx < len(l.bars) {
				l.barRemaining = l.bars[l.barIdx].NumTicks
			}
		}
	}
}

func (l *lowerer) emit(ev score.AgbEvent) {
	l.curBar = append(l.curBar, ev)
}

// flush closes out the track. Events sitting exactly on the final bar line
// (an EOT or LOOP_END at the score's last tick) are appended to the last
// bar rather than opening a bar the table has no entry for.
func (l *lowerer) flush() {
	if len(l.curBar) == 0 {
		return
	}
	if n := len(l.out); n > 0 && l.barIdx >= len(l.bars) {
		l.out[n-1].Events = append(l.out[n-1].Events, l.curBar...)
	} else {
		l.out = append(l.out, score.AgbBar{Events: l.curBar})
	}
	l.curBar = nil
}

func (l *lowerer) emitNoteOn(track score.MidiTrack, i int, ev score.MidiEvent) error {
	j, ok := findMatchingNoteOff(track, i, ev)
	if !ok {
		return errors.Errorf("note-on at tick %d (key %d, channel %d) has no matching note-off", ev.Tick, ev.Key, ev.Channel)
	}
	length := track[j].Tick - ev.Tick
	if length > 96 {
		l.emit(score.AgbEvent{Kind: score.AgbTie, Key: ev.Key, Velocity: uint8(ev.Value)})
		track[j].Value = score.NoteOffTie
	} else {
		l.emit(score.AgbEvent{Kind: score.AgbNote, Key: ev.Key, Velocity: uint8(ev.Value), Len: int(length)})
		track[j].Value = score.NoteOffShort
	}
	return nil
}

func (l *lowerer) emitNoteOff(ev score.MidiEvent) error {
	switch ev.Value {
	case score.NoteOffTie:
		l.emit(score.AgbEvent{Kind: score.AgbEot, Key: ev.Key})
	case score.NoteOffShort:
		// the note-on already emitted a bounded NOTE; nothing to do.
	case score.NoteOffInit:
		return errors.Errorf("note-off at tick %d (key %d, channel %d) was never matched to a note-on", ev.Tick, ev.Key, ev.Channel)
	}
	return nil
}

// findMatchingNoteOff returns the index of the first not-yet-resolved
// note-off for ev's channel/key after position i.
func findMatchingNoteOff(track score.MidiTrack, i int, ev score.MidiEvent) (int, bool) {
	for j := i + 1; j < len(track); j++ {
		o := track[j]
		if o.Kind == score.NoteOff && o.Channel == ev.Channel && o.Key == ev.Key && o.Value == score.NoteOffInit {
			return j, true
		}
	}
	return 0, false
}

// translateController maps a post-interpreter Controller event to its AGB
// counterpart. PAN and TUNE carry a -64 bias from the MIDI 0..127 domain
// into the engine's signed byte.
func translateController(ev score.MidiEvent) (score.AgbEvent, bool) {
	switch ev.Controller {
	case score.CCVolume:
		return score.AgbEvent{Kind: score.AgbVol, Value: int16(ev.Value)}, true
	case score.CCPan:
		return score.AgbEvent{Kind: score.AgbPan, Value: int16(ev.Value - 0x40)}, true
	case score.CCBendRange:
		return score.AgbEvent{Kind: score.AgbBendr, Value: int16(ev.Value)}, true
	case score.CCLFOSpeed:
		return score.AgbEvent{Kind: score.AgbLfos, Value: int16(ev.Value)}, true
	case score.CCModType:
		return score.AgbEvent{Kind: score.AgbModt, Modt: score.ModtTarget(ev.Value)}, true
	case score.CCTune:
		return score.AgbEvent{Kind: score.AgbTune, Value: int16(ev.Value - 0x40)}, true
	case score.CCLFODelay:
		return score.AgbEvent{Kind: score.AgbLfodl, Value: int16(ev.Value)}, true
	case score.CCPriority:
		return score.AgbEvent{Kind: score.AgbPrio, Value: int16(ev.Value)}, true
	case score.CCModulation:
		return score.AgbEvent{Kind: score.AgbMod, Value: int16(ev.Value)}, true
	case score.CCLoop:
		switch ev.Value {
		case score.LoopStartPayload:
			return score.AgbEvent{Kind: score.AgbLoopStart}, true
		case score.LoopEndPayload:
			return score.AgbEvent{Kind: score.AgbLoopEnd}, true
		}
		return score.AgbEvent{}, false
	default:
		return score.AgbEvent{}, false
	}
}
