package interp

import (
	"strconv"
	"strings"
)

// directive is a parsed in-file text/marker/cuepoint payload (spec §4.1).
type directive struct {
	kind    string
	intVal  int
	floatVal float64
	isFloat bool
}

// parseDirective recognises the key=value and bare-token prefixes spec §4.1
// lists. ok is false for payloads that are not a recognised directive at
// all (the event is left untouched in that case).
func parseDirective(payload string) (d directive, ok bool) {
	switch payload {
	case "[", "loopStart":
		return directive{kind: "loopStart"}, true
	case "]", "loopEnd":
		return directive{kind: "loopEnd"}, true
	}

	eq := strings.IndexByte(payload, '=')
	if eq < 0 {
		return directive{}, false
	}
	key := payload[:eq]
	val := payload[eq+1:]

	switch key {
	case "modt", "tune", "lfos", "lfodl", "prio",
		"modt_global", "lfos_global", "lfodl_global":
		n, err := strconv.Atoi(val)
		if err != nil {
			return directive{}, false
		}
		return directive{kind: key, intVal: n}, true
	case "modscale_global":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return directive{}, false
		}
		return directive{kind: key, floatVal: f, isFloat: true}, true
	}
	return directive{}, false
}
