// Package agbfmt renders the operand and mnemonic strings the m4a
// assembler macros expect (spec §6's grammar): note names, velocity and
// signed operands, and the WAIT/NOTE length quantisation table shared by
// both.
package agbfmt

import "fmt"

// lenTable rounds a raw tick length down to the nearest length the
// MPlayDef W##/N## macros can express directly.
var lenTable = [97]int{}

func init() {
	representable := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,
		16, 17, 18, 19, 20, 21, 22, 23, 24,
		28, 30, 32, 36, 40, 42, 44, 48, 52, 54, 56, 60, 64, 66, 68, 72, 76, 78, 80, 84, 88, 90, 92, 96}
	ri := 0
	for n := 0; n <= 96; n++ {
		for ri+1 < len(representable) && representable[ri+1] <= n {
			ri++
		}
		lenTable[n] = representable[ri]
	}
}

// LenLower quantises n (1..96) down to the nearest representable wait or
// note-base length (spec §4.8).
func LenLower(n int) int {
	if n < 0 {
		return 0
	}
	if n > 96 {
		n = 96
	}
	return lenTable[n]
}

// noteLetters maps a pitch class (0=C..11=B) to the MPlayDef letter/
// accidental pair, e.g. "Cn" or "Fs".
var noteLetters = [12]string{"Cn", "Cs", "Dn", "Ds", "En", "Fn", "Fs", "Gn", "Gs", "An", "As", "Bn"}

// NoteName renders a MIDI key number as MPlayDef's <letter><n|s><octave>
// form. MIDI key 60 (middle C) is octave 3, "Cn3"; keys 0..127 span
// octaves M2, M1, 0..8, so key 0 is "CnM2" and key 127 is "Gn8".
func NoteName(key uint8) string {
	pitchClass := int(key) % 12
	octave := int(key)/12 - 2
	return noteLetters[pitchClass] + octaveName(octave)
}

func octaveName(o int) string {
	switch o {
	case -1:
		return "M1"
	case -2:
		return "M2"
	default:
		return fmt.Sprintf("%d", o)
	}
}

// Velocity renders a 1..127 velocity as MPlayDef's fixed-width v000..v127
// operand.
func Velocity(v uint8) string {
	return fmt.Sprintf("v%03d", v)
}

// Signed renders a signed byte operand (PAN, BEND, TUNE) as MPlayDef's
// c_v<sign><magnitude> macro name.
func Signed(v int16) string {
	if v < 0 {
		return fmt.Sprintf("c_v-%d", -v)
	}
	return fmt.Sprintf("c_v+%d", v)
}

// WaitMnemonic renders a quantised wait length as a W## mnemonic.
func WaitMnemonic(n int) string {
	return fmt.Sprintf("W%02d", n)
}

// NoteMnemonic renders a quantised note base length as an N## mnemonic.
func NoteMnemonic(n int) string {
	return fmt.Sprintf("N%02d", n)
}
