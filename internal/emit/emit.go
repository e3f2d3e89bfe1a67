// Package emit renders a lowered, deduplicated, fixed-up AgbSong as
// GNU-assembler source for the m4a sound engine (spec §4.8). It carries a
// running emitter state across events so repeated controller values and
// unchanged note key/velocity can be elided per MPlayDef convention.
package emit

import (
	"fmt"
	"io"

	"midi2agb/internal/agbfmt"
	"midi2agb/internal/config"
	"midi2agb/internal/score"
)

// Song writes song's assembly rendering to w. cfg supplies the song
// symbol, voicegroup, priority, reverb and exact-gate settings that
// belong to the header/footer and the note-length quantisation choice.
func Song(w io.Writer, song score.AgbSong, cfg *config.Config) error {
	if err := writeHeader(w, cfg); err != nil {
		return err
	}
	for ti, track := range song.Tracks {
		if err := writeTrack(w, track, ti, cfg); err != nil {
			return err
		}
	}
	return writeFooter(w, song, cfg)
}

func writeHeader(w io.Writer, cfg *config.Config) error {
	rev := cfg.Reverb
	if rev != 0 {
		rev |= 0x80
	}
	_, err := fmt.Fprintf(w,
		"\t.include \"MPlayDef.s\"\n\n"+
			"\t.equ\t%s_grp, %s\n"+
			"\t.equ\t%s_pri, %d\n"+
			"\t.equ\t%s_rev, %d\n"+
			"\t.equ\t%s_key, 0\n\n",
		cfg.Symbol, cfg.Voicegroup,
		cfg.Symbol, cfg.Priority,
		cfg.Symbol, rev,
		cfg.Symbol)
	return err
}

func writeFooter(w io.Writer, song score.AgbSong, cfg *config.Config) error {
	rev := cfg.Reverb
	if rev != 0 {
		rev |= 0x80
	}
	if _, err := fmt.Fprintf(w, "\n%s:\n", cfg.Symbol); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "\t.byte\t%d, 0, %d, %d\n", len(song.Tracks), cfg.Priority, rev); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "\t.word\t%s_grp\n", cfg.Symbol); err != nil {
		return err
	}
	for ti := range song.Tracks {
		if _, err := fmt.Fprintf(w, "\t.word\t%s_%d\n", cfg.Symbol, ti); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\t.end\n")
	return err
}

func writeTrack(w io.Writer, track score.AgbTrack, trackIdx int, cfg *config.Config) error {
	if _, err := fmt.Fprintf(w, "%s_%d:\n\tKEYSH\t%s_key+0\n", cfg.Symbol, trackIdx, cfg.Symbol); err != nil {
		return err
	}

	st := newState()
	for bi, bar := range track {
		if err := writeBar(w, bar, trackIdx, bi, cfg, &st); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "\tFINE\n\n")
	return err
}

func writeBar(w io.Writer, bar score.AgbBar, trackIdx, barIdx int, cfg *config.Config, st *state) error {
	switch {
	case bar.IsReferenced:
		if _, err := fmt.Fprintf(w, "%s:\n", barLabel(cfg.Symbol, trackIdx, barIdx)); err != nil {
			return err
		}
		*st = newState()
		if err := writeEvents(w, bar.Events, trackIdx, cfg, st); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "\tPEND\n")
		return err
	case bar.DoesReference:
		_, err := fmt.Fprintf(w, "\tPATT\t.word %s\n", barLabel(cfg.Symbol, bar.RefTrack, bar.RefBar))
		*st = newState()
		return err
	default:
		return writeEvents(w, bar.Events, trackIdx, cfg, st)
	}
}

func barLabel(symbol string, trackIdx, barIdx int) string {
	return fmt.Sprintf("%s_%d_%d", symbol, trackIdx, barIdx)
}

// state is the emitter's running memory: the last command kind seen, the
// last note's key/velocity/length, and whether the next occurrence of
// cmdKind may elide its opcode.
type state struct {
	cmdKind   score.AgbKind
	hasCmd    bool
	mayRepeat bool
	lastKey   uint8
	hasKey    bool
	lastVel   uint8
	hasVel    bool
	lastLen   int
	hasLen    bool
}

func newState() state {
	return state{}
}

func writeEvents(w io.Writer, events []score.AgbEvent, trackIdx int, cfg *config.Config, st *state) error {
	for _, ev := range events {
		if err := writeEvent(w, ev, trackIdx, cfg, st); err != nil {
			return err
		}
	}
	return nil
}

func writeEvent(w io.Writer, ev score.AgbEvent, trackIdx int, cfg *config.Config, st *state) error {
	switch ev.Kind {
	case score.AgbWait:
		return writeWait(w, ev.Wait, st)
	case score.AgbLoopStart:
		if _, err := fmt.Fprintf(w, "%s_%d_LOOP:\n", cfg.Symbol, trackIdx); err != nil {
			return err
		}
		*st = newState()
		return nil
	case score.AgbLoopEnd:
		_, err := fmt.Fprintf(w, "\tGOTO\t.word %s_%d_LOOP\n", cfg.Symbol, trackIdx)
		return err
	case score.AgbPrio:
		_, err := fmt.Fprintf(w, "\tPRIO\t%d\n", ev.Value)
		st.mayRepeat = false
		return err
	case score.AgbTempo:
		_, err := fmt.Fprintf(w, "\tTEMPO\t%d\n", ev.Value)
		st.mayRepeat = false
		return err
	case score.AgbKeysh:
		_, err := fmt.Fprintf(w, "\tKEYSH\t%d\n", ev.Value)
		st.mayRepeat = false
		return err
	case score.AgbVoice, score.AgbVol, score.AgbPan, score.AgbBend, score.AgbBendr,
		score.AgbLfos, score.AgbLfodl, score.AgbMod, score.AgbModt, score.AgbTune, score.AgbXcmd:
		return writeStatefulController(w, ev, st)
	case score.AgbEot:
		return writeEot(w, ev, st)
	case score.AgbTie:
		return writeTie(w, ev, st)
	case score.AgbNote:
		return writeNote(w, ev, cfg, st)
	}
	return nil
}

func writeWait(w io.Writer, n int, st *state) error {
	q := agbfmt.LenLower(n)
	if _, err := fmt.Fprintf(w, "\t%s\n", agbfmt.WaitMnemonic(q)); err != nil {
		return err
	}
	if rem := n - q; rem > 0 {
		if err := writeWait(w, rem, st); err != nil {
			return err
		}
	}
	st.mayRepeat = true
	return nil
}

var controllerMnemonic = map[score.AgbKind]string{
	score.AgbVoice: "VOICE",
	score.AgbVol:   "VOL",
	score.AgbPan:   "PAN",
	score.AgbBend:  "BEND",
	score.AgbBendr: "BENDR",
	score.AgbLfos:  "LFOS",
	score.AgbLfodl: "LFODL",
	score.AgbMod:   "MOD",
	score.AgbModt:  "MODT",
	score.AgbTune:  "TUNE",
	score.AgbXcmd:  "XCMD",
}

func writeStatefulController(w io.Writer, ev score.AgbEvent, st *state) error {
	operand := controllerOperand(ev)
	elide := st.mayRepeat && st.hasCmd && st.cmdKind == ev.Kind
	var err error
	if elide {
		_, err = fmt.Fprintf(w, "\t%s\n", operand)
	} else {
		_, err = fmt.Fprintf(w, "\t%s\t%s\n", controllerMnemonic[ev.Kind], operand)
	}
	st.cmdKind = ev.Kind
	st.hasCmd = true
	st.mayRepeat = true
	return err
}

func controllerOperand(ev score.AgbEvent) string {
	switch ev.Kind {
	case score.AgbPan, score.AgbBend, score.AgbTune:
		return agbfmt.Signed(ev.Value)
	case score.AgbModt:
		return fmt.Sprintf("%d", ev.Modt)
	case score.AgbXcmd:
		return fmt.Sprintf("%d, %d", ev.XcmdType, ev.XcmdPar)
	default:
		return fmt.Sprintf("%d", ev.Value)
	}
}

func writeEot(w io.Writer, ev score.AgbEvent, st *state) error {
	var err error
	if st.hasKey && st.lastKey == ev.Key {
		_, err = fmt.Fprintf(w, "\tEOT\n")
	} else {
		_, err = fmt.Fprintf(w, "\tEOT\t%s\n", agbfmt.NoteName(ev.Key))
		st.lastKey = ev.Key
		st.hasKey = true
	}
	st.mayRepeat = true
	return err
}

func writeTie(w io.Writer, ev score.AgbEvent, st *state) error {
	sameKey := st.hasKey && st.lastKey == ev.Key
	sameVel := st.hasVel && st.lastVel == ev.Velocity

	var err error
	if sameKey && sameVel {
		_, err = fmt.Fprintf(w, "\tTIE\n")
	} else {
		_, err = fmt.Fprintf(w, "\tTIE\t%s, %s\n", agbfmt.NoteName(ev.Key), agbfmt.Velocity(ev.Velocity))
	}
	st.lastKey, st.hasKey = ev.Key, true
	st.lastVel, st.hasVel = ev.Velocity, true
	st.mayRepeat = false
	return err
}

func writeNote(w io.Writer, ev score.AgbEvent, cfg *config.Config, st *state) error {
	length := ev.Len
	base := length
	gate := 0
	if !cfg.ExactGate {
		base = agbfmt.LenLower(length)
		gate = length - base
		if gate > 3 {
			gate = 3
		}
	}

	sameKey := st.hasKey && st.lastKey == ev.Key
	sameVel := st.hasVel && st.lastVel == ev.Velocity
	sameLen := st.hasLen && st.lastLen == base

	mnemonic := agbfmt.NoteMnemonic(base)
	var operand string
	switch {
	case sameLen && sameKey && sameVel && gate == 0:
		operand = ""
	case sameLen && gate == 0:
		operand = fmt.Sprintf("%s, %s", agbfmt.NoteName(ev.Key), agbfmt.Velocity(ev.Velocity))
	default:
		operand = fmt.Sprintf("%s, %s", agbfmt.NoteName(ev.Key), agbfmt.Velocity(ev.Velocity))
		if gate > 0 {
			operand = fmt.Sprintf("%s, gtp%d", operand, gate)
		}
	}

	var err error
	if operand == "" {
		_, err = fmt.Fprintf(w, "\t%s\n", mnemonic)
	} else {
		_, err = fmt.Fprintf(w, "\t%s\t%s\n", mnemonic, operand)
	}

	st.lastKey, st.hasKey = ev.Key, true
	st.lastVel, st.hasVel = ev.Velocity, true
	st.lastLen, st.hasLen = base, true
	st.mayRepeat = true
	return err
}
