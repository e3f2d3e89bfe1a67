// Package pipeline runs the compiler's eight passes in sequence over a
// score loaded by internal/midiread, producing assembly text ready to
// write to disk. Passes never run concurrently and never re-enter one
// another (spec §5): each mutates the score (or, past Bar Lowering, the
// song) in place before the next begins.
package pipeline

import (
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"midi2agb/internal/barlower"
	"midi2agb/internal/config"
	"midi2agb/internal/dedup"
	"midi2agb/internal/emit"
	"midi2agb/internal/filter"
	"midi2agb/internal/fixup"
	"midi2agb/internal/interp"
	"midi2agb/internal/looprestore"
	"midi2agb/internal/prune"
	"midi2agb/internal/redundancy"
	"midi2agb/internal/score"
)

// Run drives every pass over sc and writes the resulting assembly to w.
func Run(w io.Writer, sc *score.MidiScore, cfg *config.Config, log *logrus.Logger) error {
	log.WithField("tracks", len(sc.Tracks)).Debug("event interpreter")
	modscale := interp.Run(sc, interp.Overrides{
		Modt:     cfg.ModtGlobal,
		Lfos:     cfg.LfosGlobal,
		Lfodl:    cfg.LfodlGlobal,
		Modscale: cfg.ModscaleGlobal,
	})
	scale := 1.0
	if modscale != nil {
		scale = *modscale
	}

	log.Debug("track pruner")
	if !prune.Run(sc) {
		log.Warn("no tracks survived pruning; emitting header-only output")
		return emit.Song(w, score.AgbSong{}, cfg)
	}

	log.Debug("volume/velocity filter")
	filter.Run(sc, cfg.MasterVol, cfg.Natural, scale)

	log.Debug("loop/state restorer")
	looprestore.Run(sc)

	log.Debug("redundancy eliminator")
	redundancy.Run(sc)

	log.Debug("bar lowering")
	song, err := barlower.Run(sc)
	if err != nil {
		return errors.Wrap(err, "bar lowering")
	}

	log.Debug("note-order fixup")
	fixup.Run(&song)

	log.Debug("pattern deduplicator")
	dedup.Run(&song)

	log.WithField("tracks", len(song.Tracks)).Debug("emitting assembly")
	if err := emit.Song(w, song, cfg); err != nil {
		return errors.Wrap(err, "emitting assembly")
	}
	return nil
}
