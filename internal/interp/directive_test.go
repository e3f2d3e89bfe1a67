package interp

import "testing"

func TestParseDirective_LoopMarkers(t *testing.T) {
	cases := []string{"[", "loopStart", "]", "loopEnd"}
	for _, payload := range cases {
		if _, ok := parseDirective(payload); !ok {
			t.Errorf("parseDirective(%q) should be recognised", payload)
		}
	}
}

func TestParseDirective_KeyValueInt(t *testing.T) {
	cases := []struct {
		payload  string
		wantKind string
		wantInt  int
	}{
		{"modt=2", "modt", 2},
		{"tune=-10", "tune", -10},
		{"lfos=40", "lfos", 40},
		{"lfodl=5", "lfodl", 5},
		{"prio=1", "prio", 1},
		{"modt_global=1", "modt_global", 1},
		{"lfos_global=30", "lfos_global", 30},
		{"lfodl_global=12", "lfodl_global", 12},
	}
	for _, c := range cases {
		d, ok := parseDirective(c.payload)
		if !ok {
			t.Fatalf("parseDirective(%q) not recognised", c.payload)
		}
		if d.kind != c.wantKind || d.intVal != c.wantInt {
			t.Errorf("parseDirective(%q) = %+v, want kind=%s intVal=%d", c.payload, d, c.wantKind, c.wantInt)
		}
	}
}

func TestParseDirective_ModscaleGlobalFloat(t *testing.T) {
	d, ok := parseDirective("modscale_global=1.5")
	if !ok {
		t.Fatal("modscale_global=1.5 not recognised")
	}
	if !d.isFloat || d.floatVal != 1.5 {
		t.Errorf("got %+v, want isFloat=true floatVal=1.5", d)
	}
}

func TestParseDirective_UnrecognisedPayloads(t *testing.T) {
	cases := []string{
		"",
		"hello world",
		"Verse 1",
		"modt=notanumber",
		"modscale_global=notafloat",
		"unknownkey=5",
	}
	for _, payload := range cases {
		if _, ok := parseDirective(payload); ok {
			t.Errorf("parseDirective(%q) should not be recognised", payload)
		}
	}
}
