package score

import "strconv"

// AgbKind tags an AgbEvent variant. See spec §3 for the full mapping to
// emitted mnemonics and byte sizes.
type AgbKind uint8

const (
	AgbWait AgbKind = iota
	AgbLoopStart
	AgbLoopEnd
	AgbPrio
	AgbTempo
	AgbKeysh
	AgbVoice
	AgbVol
	AgbPan
	AgbBend
	AgbBendr
	AgbLfos
	AgbLfodl
	AgbMod
	AgbModt
	AgbTune
	AgbXcmd
	AgbEot
	AgbTie
	AgbNote
)

// ModtTarget is the payload of a MODT event.
type ModtTarget uint8

const (
	ModtVib ModtTarget = 0
	ModtTre ModtTarget = 1
	ModtPan ModtTarget = 2
)

// AgbEvent is a flat tagged variant mirroring MidiEvent's approach. Only
// the fields relevant to Kind carry meaning; see the field comments for
// which Kind reads which field.
type AgbEvent struct {
	Kind AgbKind

	// Wait: length 1.. (AgbWait).
	Wait int

	// Value carries the single signed/unsigned operand for PRIO
	// (0..127), TEMPO (halved bpm 0..255), KEYSH (signed semitones),
	// VOICE (0..127), VOL (0..127), PAN (-64..63), BEND (-64..63),
	// BENDR (0..127), LFOS (0..127), LFODL (0..127), MOD (0..127), TUNE
	// (-64..63).
	Value int16

	// Modt: MODT payload.
	Modt ModtTarget

	// XcmdType/XcmdPar: XCMD payload.
	XcmdType uint8
	XcmdPar  uint8

	// Key: EOT/TIE/NOTE key 0..127.
	Key uint8
	// Velocity: TIE/NOTE velocity 1..127.
	Velocity uint8
	// Len: NOTE length 1..96, raw tick count (undecomposed).
	Len int
}

// ByteSize returns the fixed emitted size used by the pattern-size
// heuristic (spec §3).
func (e AgbEvent) ByteSize() int {
	switch e.Kind {
	case AgbWait:
		return 1
	case AgbLoopStart:
		return 0
	case AgbLoopEnd:
		return 5
	case AgbNote:
		return 4
	case AgbTie, AgbXcmd:
		return 3
	default:
		return 2
	}
}

// signature renders a structural, per-variant-exact key suitable for
// equality and hashing (via map[string]...) — the same "serialize to a
// string, use it as a map key" trick the pattern deduplicator's dictionary
// build uses for MIDI rows.
func (e AgbEvent) signature() string {
	b := make([]byte, 0, 16)
	b = append(b, byte(e.Kind))
	switch e.Kind {
	case AgbWait:
		b = appendInt(b, e.Wait)
	case AgbLoopStart:
		// no payload
	case AgbLoopEnd:
		// no payload
	case AgbPrio, AgbTempo, AgbKeysh, AgbVoice, AgbVol, AgbPan, AgbBend,
		AgbBendr, AgbLfos, AgbLfodl, AgbMod, AgbTune:
		b = appendInt(b, int(e.Value))
	case AgbModt:
		b = append(b, byte(e.Modt))
	case AgbXcmd:
		b = append(b, e.XcmdType, e.XcmdPar)
	case AgbEot:
		b = append(b, e.Key)
	case AgbTie:
		b = append(b, e.Key, e.Velocity)
	case AgbNote:
		b = appendInt(b, e.Len)
		b = append(b, e.Key, e.Velocity)
	}
	return string(b)
}

func appendInt(b []byte, v int) []byte {
	return append(b, []byte(strconv.Itoa(v))...)
}

// Equal reports structural equality, per-variant, as required for pattern
// deduplication (spec §3).
func (e AgbEvent) Equal(o AgbEvent) bool {
	return e.signature() == o.signature()
}

// AgbBar is an ordered sequence of AgbEvent plus the two deduplication
// flags. IsReferenced and DoesReference are never both true; a bar
// carrying a LOOP_START or LOOP_END must have neither set (spec §3).
type AgbBar struct {
	Events        []AgbEvent
	IsReferenced  bool
	DoesReference bool
	// RefTrack/RefBar identify the origin bar when DoesReference is set.
	RefTrack int
	RefBar   int
}

// Signature returns a structural key for the whole bar, used by the
// deduplicator's first-seen map.
func (b AgbBar) Signature() string {
	var sb []byte
	for _, ev := range b.Events {
		sb = append(sb, ev.signature()...)
		sb = append(sb, 0)
	}
	return string(sb)
}

// ByteSize sums the fixed per-event byte sizes (spec §4.8's dedup
// candidacy check: byte-size > 5).
func (b AgbBar) ByteSize() int {
	total := 0
	for _, ev := range b.Events {
		total += ev.ByteSize()
	}
	return total
}

// HasLoopMarker reports whether the bar contains a LOOP_START or
// LOOP_END, which excludes it from deduplication.
func (b AgbBar) HasLoopMarker() bool {
	for _, ev := range b.Events {
		if ev.Kind == AgbLoopStart || ev.Kind == AgbLoopEnd {
			return true
		}
	}
	return false
}

// AgbTrack is an ordered sequence of bars.
type AgbTrack []AgbBar

// AgbSong is an ordered sequence of tracks, one per surviving MIDI track.
type AgbSong struct {
	Tracks []AgbTrack
}
