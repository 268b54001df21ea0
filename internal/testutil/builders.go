// Package testutil carries the small builders shared by tests across
// packages: exact rationals from literals and configs assembled from
// the defaults plus targeted mutations.
package testutil

import (
	"github.com/rigbyspace/operation-goldenrod/internal/config"
	"github.com/rigbyspace/operation-goldenrod/internal/rational"
)

// Rat builds a rational from a "N/D" or bare integer literal. It
// panics on a malformed literal; test literals are authored constants.
func Rat(s string) *rational.Rational {
	return rational.MustParse(s)
}

// Cfg returns the default config with the given mutations applied in
// order, keeping table-driven setups to one line per case.
func Cfg(mutate ...func(*config.Config)) *config.Config {
	cfg := config.Default()
	for _, m := range mutate {
		m(cfg)
	}
	return cfg
}

// Ticks sets the run length.
func Ticks(n uint64) func(*config.Config) {
	return func(c *config.Config) {
		c.TickCount = n
	}
}

// Seeds sets all three register seeds from literals.
func Seeds(upsilon, beta, koppa string) func(*config.Config) {
	return func(c *config.Config) {
		c.UpsilonSeed = rational.MustParse(upsilon)
		c.BetaSeed = rational.MustParse(beta)
		c.KoppaSeed = rational.MustParse(koppa)
	}
}

// Engine sets the engine propagation mode.
func Engine(mode config.EngineMode) func(*config.Config) {
	return func(c *config.Config) {
		c.Engine = mode
	}
}

// Psi sets the transform mode.
func Psi(mode config.PsiMode) func(*config.Config) {
	return func(c *config.Config) {
		c.Psi = mode
	}
}
