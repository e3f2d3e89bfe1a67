// Package config holds the single record threaded explicitly through every
// pass, replacing the module-wide globals spec.md §9 flags as an
// anti-pattern in the reference implementation.
package config

import "github.com/pkg/errors"

// Config is produced once from CLI flags and never mutated by a pass.
type Config struct {
	Symbol      string
	MasterVol   int // 0..128
	Voicegroup  string
	Priority    int // 0..127
	Reverb      int // 0..127
	Natural     bool
	Verbose     bool
	ExactGate   bool

	ModtGlobal     *int
	ModscaleGlobal *float64
	LfosGlobal     *int
	LfodlGlobal    *int
}

// Default returns the option defaults named in spec §6.
func Default() *Config {
	return &Config{
		MasterVol:  128,
		Voicegroup: "voicegroup000",
	}
}

// Validate range-checks the option values that spec §7 treats as
// input-validation failures (out of range ⇒ report and exit 1), as
// opposed to the silent clamps §7 reserves for values discovered inside
// the score itself (in-file directives, RPN payloads).
func (c *Config) Validate() error {
	if c.MasterVol < 0 || c.MasterVol > 128 {
		return errors.Errorf("-m: master volume %d out of range 0..128", c.MasterVol)
	}
	if c.Priority < 0 || c.Priority > 127 {
		return errors.Errorf("-p: priority %d out of range 0..127", c.Priority)
	}
	if c.Reverb < 0 || c.Reverb > 127 {
		return errors.Errorf("-r: reverb %d out of range 0..127", c.Reverb)
	}
	if c.ModtGlobal != nil && (*c.ModtGlobal < 0 || *c.ModtGlobal > 2) {
		return errors.Errorf("--modt: %d out of range 0..2", *c.ModtGlobal)
	}
	if c.LfosGlobal != nil && (*c.LfosGlobal < 0 || *c.LfosGlobal > 127) {
		return errors.Errorf("--lfos: %d out of range 0..127", *c.LfosGlobal)
	}
	if c.LfodlGlobal != nil && (*c.LfodlGlobal < 0 || *c.LfodlGlobal > 127) {
		return errors.Errorf("--lfodl: %d out of range 0..127", *c.LfodlGlobal)
	}
	if c.ModscaleGlobal != nil && (*c.ModscaleGlobal < 0.0 || *c.ModscaleGlobal > 16.0) {
		return errors.Errorf("--modsc: %v out of range 0.0..16.0", *c.ModscaleGlobal)
	}
	if c.Symbol == "" {
		return errors.New("song symbol must not be empty")
	}
	return nil
}
