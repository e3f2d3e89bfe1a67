package prune

import (
	"testing"

	"midi2agb/internal/score"
)

func hasKind(track score.MidiTrack, kind score.EventKind) bool {
	for _, ev := range track {
		if ev.Kind == kind {
			return true
		}
	}
	return false
}

func TestRun_TempoAndTimeSigHoistedToTrackZero(t *testing.T) {
	sc := &score.MidiScore{Tracks: []score.MidiTrack{
		{
			{Tick: 0, Kind: score.NoteOn, Key: 60, Value: 90},
			{Tick: 24, Kind: score.NoteOff, Key: 60},
		},
		{
			{Tick: 5, Kind: score.Tempo, Value: 500000},
			{Tick: 5, Kind: score.TimeSig, TimeSigNum: 4, TimeSigDenomLog2: 2},
			{Tick: 10, Kind: score.NoteOn, Key: 64, Value: 90},
			{Tick: 30, Kind: score.NoteOff, Key: 64},
		},
	}}

	ok := Run(sc)
	if !ok {
		t.Fatal("Run should report a surviving track")
	}

	if !hasKind(sc.Tracks[0], score.Tempo) {
		t.Error("tempo event should be hoisted onto track 0")
	}
	if !hasKind(sc.Tracks[0], score.TimeSig) {
		t.Error("time signature event should be hoisted onto track 0")
	}
	if hasKind(sc.Tracks[1], score.Tempo) || hasKind(sc.Tracks[1], score.TimeSig) {
		t.Error("meta events should not remain on their original track")
	}
}

func TestRun_MetaEventLeavesADummyBehind(t *testing.T) {
	sc := &score.MidiScore{Tracks: []score.MidiTrack{
		{
			{Tick: 0, Kind: score.NoteOn, Key: 60, Value: 90},
			{Tick: 5, Kind: score.Tempo, Value: 500000},
			{Tick: 24, Kind: score.NoteOff, Key: 60},
		},
	}}

	Run(sc)

	found := false
	for _, ev := range sc.Tracks[0] {
		if ev.Tick == 5 && ev.Kind == score.Dummy {
			found = true
		}
	}
	if !found {
		t.Error("the tempo event's original position should be replaced with a Dummy")
	}
}

func TestRun_TracksWithoutNoteOnAreDropped(t *testing.T) {
	sc := &score.MidiScore{Tracks: []score.MidiTrack{
		{
			{Tick: 0, Kind: score.NoteOn, Key: 60, Value: 90},
			{Tick: 24, Kind: score.NoteOff, Key: 60},
		},
		{
			{Tick: 0, Kind: score.Controller, Controller: score.CCVolume, Value: 100},
		},
	}}

	Run(sc)

	if len(sc.Tracks) != 1 {
		t.Fatalf("expected exactly 1 surviving track, got %d", len(sc.Tracks))
	}
}

func TestRun_NoSurvivingTracksReturnsFalse(t *testing.T) {
	sc := &score.MidiScore{Tracks: []score.MidiTrack{
		{
			{Tick: 0, Kind: score.Controller, Controller: score.CCVolume, Value: 100},
		},
	}}

	if ok := Run(sc); ok {
		t.Error("Run should report false when no track carries a note")
	}
}

func TestRun_DuplicateTimeSigAtSameTickCollapsesToLastWins(t *testing.T) {
	sc := &score.MidiScore{Tracks: []score.MidiTrack{
		{
			{Tick: 0, Kind: score.TimeSig, TimeSigNum: 4, TimeSigDenomLog2: 2},
			{Tick: 0, Kind: score.TimeSig, TimeSigNum: 3, TimeSigDenomLog2: 2},
			{Tick: 0, Kind: score.NoteOn, Key: 60, Value: 90},
			{Tick: 24, Kind: score.NoteOff, Key: 60},
		},
	}}

	Run(sc)

	count := 0
	var last score.MidiEvent
	for _, ev := range sc.Tracks[0] {
		if ev.Kind == score.TimeSig {
			count++
			last = ev
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 surviving TimeSig at tick 0, got %d", count)
	}
	if last.TimeSigNum != 3 {
		t.Errorf("surviving TimeSig should be the last-wins occurrence (num=3), got num=%d", last.TimeSigNum)
	}
}
