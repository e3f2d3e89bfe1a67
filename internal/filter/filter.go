// Package filter implements the Volume/Velocity Filter pass (spec §4.3):
// it folds expression into volume, scales by a master value and an
// optional perceptual curve, and clamps note velocities away from zero.
package filter

import (
	"math"

	"midi2agb/internal/score"
)

// trackState is the per-track running (volume, expression) pair spec
// §4.3 describes, initialised to (100, 127).
type trackState struct {
	volume, expression int
}

// Run mutates sc in place. mvl is the master volume 0..128 (spec §6's
// -m), natural selects the gamma-10/6 curve, modscale multiplies
// modulation controller values before clamping.
func Run(sc *score.MidiScore, mvl int, natural bool, modscale float64) {
	for ti := range sc.Tracks {
		st := trackState{volume: 100, expression: 127}
		track := sc.Tracks[ti]
		for i, ev := range track {
			switch {
			case ev.Kind == score.Controller && ev.Controller == score.CCVolume:
				st.volume = int(ev.Value)
				track[i].Value = int32(scaleVolume(st.volume, st.expression, mvl, natural))
			case ev.Kind == score.Controller && ev.Controller == score.CCExpression:
				st.expression = int(ev.Value)
				track[i].Controller = score.CCVolume
				track[i].Value = int32(scaleVolume(st.volume, st.expression, mvl, natural))
			case ev.Kind == score.Controller && ev.Controller == score.CCModulation:
				v := int(math.Round(float64(ev.Value) * modscale))
				track[i].Value = int32(score.ClampInt(v, 0, 127))
			case ev.Kind == score.NoteOn:
				v := scaleVelocity(int(ev.Value), natural)
				track[i].Value = int32(score.ClampInt(v, 1, 127))
			}
		}
		sc.Tracks[ti] = track
	}
}

// scaleVolume implements the two curves spec §4.3 gives, in double
// precision, rounded and clamped to 0..127.
func scaleVolume(vol, expr, mvl int, natural bool) int {
	var out float64
	if natural {
		ratio := float64(vol) * float64(expr) * float64(mvl) / (127.0 * 127.0 * 128.0)
		out = 127.0 * math.Pow(ratio, 10.0/6.0)
	} else {
		out = float64(vol) * float64(expr) * float64(mvl) / (127.0 * 128.0)
	}
	return score.ClampInt(int(math.Round(out)), 0, 127)
}

// scaleVelocity applies the matching per-note velocity scaler: identity
// for the linear curve, round(127·(vel/127)^(10/6)) for the natural one.
func scaleVelocity(vel int, natural bool) int {
	if !natural {
		return vel
	}
	out := 127.0 * math.Pow(float64(vel)/127.0, 10.0/6.0)
	return int(math.Round(out))
}
