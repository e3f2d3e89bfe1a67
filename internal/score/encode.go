package score

import "math"

// EncodeTempo converts microseconds-per-quarter-note into the AGB engine's
// halved-BPM byte (spec §4.5/§4.6: "tempo → round(bpm/2) clamped 0..255").
// Both the Redundancy Eliminator (to compare against a running value) and
// Bar Lowering (to produce the emitted TEMPO operand) need exactly this
// mapping, so it lives here rather than being duplicated per pass.
func EncodeTempo(usPerBeat int32) int32 {
	if usPerBeat <= 0 {
		return 0
	}
	bpm := 60000000.0 / float64(usPerBeat)
	return ClampInt32(int32(math.Round(bpm/2.0)), 0, 255)
}

// EncodeBend converts a 14-bit-domain pitch-bend value (-8192..8191) into
// the AGB engine's signed BEND byte (spec §4.5/§4.6:
// "pitch-bend → round(pitch/128) clamped −64..+63").
func EncodeBend(pitch int32) int32 {
	return ClampInt32(int32(math.Round(float64(pitch)/128.0)), -64, 63)
}
