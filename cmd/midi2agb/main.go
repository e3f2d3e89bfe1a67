// Command midi2agb compiles a standard MIDI file into GNU-assembler
// source for the m4a sound engine.
package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"midi2agb/internal/config"
	"midi2agb/internal/midiread"
	"midi2agb/internal/pipeline"
	"midi2agb/internal/symbols"
)

var (
	flagSymbol     string
	flagMasterVol  int
	flagVoicegroup string
	flagPriority   int
	flagReverb     int
	flagNatural    bool
	flagVerbose    bool
	flagExactGate  bool
	flagModt       int
	flagModsc      float64
	flagLfos       int
	flagLfodl      int
)

var root = cobra.Command{
	Use:           "midi2agb <input.mid> [<output.s>]",
	Short:         "midi2agb compiles a MIDI file into m4a assembly source.",
	Args:          cobra.RangeArgs(1, 2),
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          run,
}

func main() {
	f := root.Flags()
	f.StringVarP(&flagSymbol, "symbol", "s", "", "song symbol (default: derived from output filename)")
	f.IntVarP(&flagMasterVol, "mvl", "m", 128, "master volume 0..128")
	f.StringVarP(&flagVoicegroup, "voicegroup", "g", "voicegroup000", "voicegroup symbol")
	f.IntVarP(&flagPriority, "priority", "p", 0, "track priority 0..127")
	f.IntVarP(&flagReverb, "reverb", "r", 0, "reverb 0..127")
	f.BoolVarP(&flagNatural, "natural", "n", false, "use the natural (gamma) volume/velocity curve")
	f.BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	f.BoolVarP(&flagExactGate, "exact-gate", "e", false, "never quantise note lengths; keep raw tick counts")
	f.IntVar(&flagModt, "modt", -1, "global modulation target 0..2")
	f.Float64Var(&flagModsc, "modsc", -1, "global modulation scale 0.0..16.0")
	f.IntVar(&flagLfos, "lfos", -1, "global LFO speed 0..127")
	f.IntVar(&flagLfodl, "lfodl", -1, "global LFO delay 0..127")

	if err := root.Execute(); err != nil {
		if flagVerbose {
			logrus.Errorf("%+v", err)
		} else {
			logrus.Error(err)
		}
		os.Exit(1)
	}
}

func run(_ *cobra.Command, args []string) error {
	inputPath := args[0]
	outputPath := ""
	if len(args) == 2 {
		outputPath = args[1]
	} else {
		outputPath = strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".s"
	}

	log := logrus.New()
	if flagVerbose {
		log.SetLevel(logrus.DebugLevel)
	}

	cfg := config.Default()
	cfg.Symbol = flagSymbol
	if cfg.Symbol == "" {
		cfg.Symbol = symbols.FromOutputPath(outputPath)
	}
	cfg.MasterVol = flagMasterVol
	cfg.Voicegroup = symbols.Fix(flagVoicegroup)
	cfg.Priority = flagPriority
	cfg.Reverb = flagReverb
	cfg.Natural = flagNatural
	cfg.Verbose = flagVerbose
	cfg.ExactGate = flagExactGate
	if flagModt >= 0 {
		cfg.ModtGlobal = &flagModt
	}
	if flagModsc >= 0 {
		cfg.ModscaleGlobal = &flagModsc
	}
	if flagLfos >= 0 {
		cfg.LfosGlobal = &flagLfos
	}
	if flagLfodl >= 0 {
		cfg.LfodlGlobal = &flagLfodl
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	log.WithField("input", inputPath).Debug("reading MIDI file")
	sc, err := midiread.Read(inputPath)
	if err != nil {
		return errors.Wrap(err, "reading MIDI input")
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return errors.Wrapf(err, "creating %s", outputPath)
	}
	defer out.Close()

	if err := pipeline.Run(out, sc, cfg, log); err != nil {
		return errors.Wrap(err, "compiling")
	}
	if err := out.Sync(); err != nil {
		return errors.Wrapf(err, "flushing %s", outputPath)
	}

	log.WithField("output", outputPath).Info("wrote assembly")
	return nil
}
