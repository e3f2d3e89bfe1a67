package redundancy

import (
	"reflect"
	"testing"

	"midi2agb/internal/score"
)

func TestRunTrack_RepeatedTempoIsEliminated(t *testing.T) {
	track := score.MidiTrack{
		{Tick: 0, Kind: score.Tempo, Value: 500000},  // encodes to 60, same as the default running tempo
		{Tick: 10, Kind: score.Tempo, Value: 1000000}, // encodes to 30, changes
		{Tick: 20, Kind: score.Tempo, Value: 1000000}, // no change, eliminated
	}
	out := runTrack(track)

	if out[0].Kind != score.Dummy {
		t.Error("tempo equal to the default running value should be eliminated")
	}
	if out[1].Kind != score.Tempo {
		t.Error("tempo that changes the running value should survive")
	}
	if out[2].Kind != score.Dummy {
		t.Error("tempo repeating the just-set running value should be eliminated")
	}
}

func TestRunTrack_ProgramChangeElidedOnRepeat(t *testing.T) {
	track := score.MidiTrack{
		{Tick: 0, Kind: score.Program, Program: 5},
		{Tick: 10, Kind: score.Program, Program: 5},
		{Tick: 20, Kind: score.Program, Program: 6},
	}
	out := runTrack(track)

	if out[0].Kind != score.Program {
		t.Error("first program change should always survive")
	}
	if out[1].Kind != score.Dummy {
		t.Error("repeated identical program change should be eliminated")
	}
	if out[2].Kind != score.Program {
		t.Error("program change to a new voice should survive")
	}
}

func TestRunTrack_PitchBendElidedOnEncodedRepeat(t *testing.T) {
	track := score.MidiTrack{
		{Tick: 0, Kind: score.PitchBend, Value: 0},
		{Tick: 10, Kind: score.PitchBend, Value: 1},
	}
	out := runTrack(track)

	if out[0].Kind != score.Dummy {
		t.Error("pitch bend of 0 matches the default running bend and should be eliminated")
	}
	if out[1].Kind != score.Dummy {
		t.Error("pitch bend of 1 encodes to 0, the running bend, and should be eliminated")
	}
}

func TestRunTrack_ControllerRunningValueElimination(t *testing.T) {
	track := score.MidiTrack{
		{Tick: 0, Kind: score.Controller, Controller: score.CCPan, Value: 0x40},
		{Tick: 10, Kind: score.Controller, Controller: score.CCPan, Value: 0x50},
		{Tick: 20, Kind: score.Controller, Controller: score.CCPan, Value: 0x50},
	}
	out := runTrack(track)

	if out[0].Kind != score.Dummy {
		t.Error("pan equal to the default running value should be eliminated")
	}
	if out[1].Kind != score.Controller {
		t.Error("pan change should survive")
	}
	if out[2].Kind != score.Dummy {
		t.Error("pan repeated at the same value should be eliminated")
	}
}

func TestRunTrack_LfosAndLfodlSurviveWhenTheyChange(t *testing.T) {
	track := score.MidiTrack{
		{Tick: 0, Kind: score.Controller, Controller: score.CCLFOSpeed, Value: 40},
		{Tick: 10, Kind: score.Controller, Controller: score.CCLFOSpeed, Value: 40},
		{Tick: 0, Kind: score.Controller, Controller: score.CCLFODelay, Value: 5},
		{Tick: 10, Kind: score.Controller, Controller: score.CCLFODelay, Value: 5},
	}
	out := runTrack(track)

	if out[0].Kind != score.Controller {
		t.Error("LFOS changing from the default running value should survive")
	}
	if out[1].Kind != score.Dummy {
		t.Error("LFOS repeated at the same value should be eliminated")
	}
	if out[2].Kind != score.Controller {
		t.Error("LFODL changing from the default running value should survive")
	}
	if out[3].Kind != score.Dummy {
		t.Error("LFODL repeated at the same value should be eliminated")
	}
}

func TestRunTrack_VolumeHasNoImplicitDefault(t *testing.T) {
	track := score.MidiTrack{
		{Tick: 0, Kind: score.Controller, Controller: score.CCVolume, Value: 100},
	}
	out := runTrack(track)

	if out[0].Kind != score.Controller {
		t.Error("the first volume event should always survive since volume has no seeded running value")
	}
}

func TestRunTrack_SameTickShadowingKeepsOnlyTheLastOfSameKind(t *testing.T) {
	track := score.MidiTrack{
		{Tick: 10, Kind: score.Controller, Controller: score.CCPan, Value: 0x50},
		{Tick: 10, Kind: score.Controller, Controller: score.CCPan, Value: 0x60},
	}
	out := runTrack(track)

	if out[0].Kind != score.Dummy {
		t.Error("the earlier same-tick, same-controller event should be shadowed")
	}
	if out[1].Kind != score.Controller || out[1].Value != 0x60 {
		t.Errorf("the later same-tick event should survive, got %+v", out[1])
	}
}

func TestRunTrack_SameTickDifferentControllersDoNotShadowEachOther(t *testing.T) {
	track := score.MidiTrack{
		{Tick: 10, Kind: score.Controller, Controller: score.CCPan, Value: 0x50},
		{Tick: 10, Kind: score.Controller, Controller: score.CCModulation, Value: 20},
	}
	out := runTrack(track)

	if out[0].Kind == score.Dummy {
		t.Error("distinct controller numbers at the same tick should not shadow each other")
	}
	if out[1].Kind == score.Dummy {
		t.Error("distinct controller numbers at the same tick should not shadow each other")
	}
}

func TestRunTrack_NoteEventsAlwaysSurvive(t *testing.T) {
	track := score.MidiTrack{
		{Tick: 0, Kind: score.NoteOn, Key: 60, Value: 90},
		{Tick: 24, Kind: score.NoteOff, Key: 60},
		{Tick: 24, Kind: score.TimeSig, TimeSigNum: 4, TimeSigDenomLog2: 2},
	}
	out := runTrack(track)

	for i, ev := range out {
		if ev.Kind == score.Dummy {
			t.Errorf("event %d should never be eliminated, got Dummy", i)
		}
	}
}

func TestRunTrack_TextMarkerCuepointAreAlwaysDropped(t *testing.T) {
	track := score.MidiTrack{
		{Tick: 0, Kind: score.Text, Text: "leftover"},
		{Tick: 0, Kind: score.Marker, Text: "leftover"},
		{Tick: 0, Kind: score.Cuepoint, Text: "leftover"},
	}
	out := runTrack(track)

	for i, ev := range out {
		if ev.Kind != score.Dummy {
			t.Errorf("event %d should be dropped, got %+v", i, ev)
		}
	}
}

func TestRunTrack_LoopMarkersAlwaysSurviveRegardlessOfRunningState(t *testing.T) {
	track := score.MidiTrack{
		{Tick: 10, Kind: score.Controller, Controller: score.CCLoop, Value: score.LoopStartPayload},
		{Tick: 90, Kind: score.Controller, Controller: score.CCLoop, Value: score.LoopEndPayload},
	}
	out := runTrack(track)

	if out[0].Kind != score.Controller || out[1].Kind != score.Controller {
		t.Error("loop markers must never be eliminated as redundant")
	}
}

func TestRunTrack_UnknownControllerIsDroppedDefensively(t *testing.T) {
	track := score.MidiTrack{
		{Tick: 0, Kind: score.Controller, Controller: score.CCExpression, Value: 100},
	}
	out := runTrack(track)

	if out[0].Kind != score.Dummy {
		t.Error("a controller number with no running-state slot should be dropped")
	}
}

func TestRunTrack_IsIdempotent(t *testing.T) {
	track := score.MidiTrack{
		{Tick: 0, Kind: score.Tempo, Value: 1000000},
		{Tick: 0, Kind: score.Controller, Controller: score.CCPan, Value: 0x50},
		{Tick: 10, Kind: score.NoteOn, Key: 60, Value: 90},
		{Tick: 34, Kind: score.NoteOff, Key: 60},
	}
	once := runTrack(append(score.MidiTrack{}, track...))
	twice := runTrack(append(score.MidiTrack{}, once...))

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("running the pass twice should be a no-op the second time:\nonce=%+v\ntwice=%+v", once, twice)
	}
}
