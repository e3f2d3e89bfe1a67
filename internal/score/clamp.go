package score

// ClampInt clamps v to [lo, hi]. Every range clamp in this pipeline (modt,
// tune, lfos, lfodl, prio, tempo, modulation scaling, velocity) is silent
// and deliberate per spec §7 — the input is treated as advisory, so this
// helper never logs or errors.
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func ClampInt32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
