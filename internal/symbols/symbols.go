// Package symbols derives GNU-assembler-safe symbol names from filenames
// and CLI input, grounded on the reference tool's fix_str: non-
// alphanumeric characters become underscores, letter case is kept, and a
// leading digit (illegal at the start of an assembler symbol) gets an
// underscore prefixed.
package symbols

import (
	"path/filepath"
	"strings"

	"github.com/kennygrant/sanitize"
)

// FromOutputPath derives the default song symbol from an output file's
// basename (spec §6: "-s <sym> ... default: derived from output filename
// stem").
func FromOutputPath(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Fix(stem)
}

// Fix sanitizes an arbitrary string into a legal assembler symbol: letters,
// digits and underscores only, never starting with a digit.
func Fix(s string) string {
	cleaned := sanitize.Accents(s)
	var b strings.Builder
	for _, r := range cleaned {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := b.String()
	if out == "" {
		return "_"
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = "_" + out
	}
	return out
}
