// Package dedup implements the Pattern Deduplicator half of spec §4.8:
// a first-seen-wins structural hash over candidate bars, grounded on
// tools/forge/encode/pattern_dedup.go's sigToCanon map[string]int trick.
package dedup

import "midi2agb/internal/score"

// minByteSize is the dedup candidacy threshold (spec §4.8): a bar must be
// larger than this to be worth replacing with a PATT reference.
const minByteSize = 5

type barRef struct {
	track, bar int
}

// Run mutates song in place. On first sight of a candidate bar's signature
// nothing is marked; only once a later bar collides with it does the
// origin bar retroactively become IsReferenced, and the colliding bar
// becomes DoesReference (spec §4.8: a unique bar is emitted inline, never
// given a label of its own).
func Run(song *score.AgbSong) {
	canon := make(map[string]barRef)

	for ti, track := range song.Tracks {
		for bi := range track {
			bar := &song.Tracks[ti][bi]
			if !candidate(*bar) {
				continue
			}
			sig := bar.Signature()
			ref, seen := canon[sig]
			if !seen {
				canon[sig] = barRef{track: ti, bar: bi}
				continue
			}
			bar.DoesReference = true
			bar.RefTrack = ref.track
			bar.RefBar = ref.bar
			song.Tracks[ref.track][ref.bar].IsReferenced = true
		}
	}
}

// candidate reports whether a bar is eligible for deduplication: nonempty,
// large enough to be worth referencing, and carrying no loop marker (spec
// §4.8 and §3's "never both true" note on IsReferenced/DoesReference).
func candidate(bar score.AgbBar) bool {
	return len(bar.Events) > 0 && bar.ByteSize() > minByteSize && !bar.HasLoopMarker()
}
