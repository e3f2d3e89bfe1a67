package config

import "testing"

func TestValidate_DefaultsAreValid(t *testing.T) {
	c := Default()
	c.Symbol = "song"
	if err := c.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestValidate_MasterVolumeOutOfRange(t *testing.T) {
	c := Default()
	c.Symbol = "song"
	c.MasterVol = 200
	if err := c.Validate(); err == nil {
		t.Error("expected an error for master volume out of range")
	}
}

func TestValidate_EmptySymbol(t *testing.T) {
	c := Default()
	if err := c.Validate(); err == nil {
		t.Error("expected an error for an empty symbol")
	}
}

func TestValidate_ModscaleGlobalOutOfRange(t *testing.T) {
	c := Default()
	c.Symbol = "song"
	bad := 17.0
	c.ModscaleGlobal = &bad
	if err := c.Validate(); err == nil {
		t.Error("expected an error for --modsc out of range")
	}
}
