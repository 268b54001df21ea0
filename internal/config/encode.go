package config

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/rigbyspace/operation-goldenrod/internal/rational"
)

// CanonicalDocument renders cfg as a flat key/value YAML document with a
// fixed key order and every key present. Equal configs produce identical
// bytes, and the output parses back to an equal config, so the document
// doubles as the fingerprint payload and the stored-run config format.
func (c *Config) CanonicalDocument() []byte {
	var b bytes.Buffer
	writeInt := func(key string, v int64) { fmt.Fprintf(&b, "%s: %d\n", key, v) }
	writeBool := func(key string, v bool) { fmt.Fprintf(&b, "%s: %t\n", key, v) }
	writeRat := func(key string, v *rational.Rational) { fmt.Fprintf(&b, "%s: %s\n", key, v) }

	writeInt("psi_mode", int64(c.Psi))
	writeInt("koppa_mode", int64(c.Koppa))
	writeInt("engine_mode", int64(c.Engine))
	writeInt("upsilon_track", int64(c.UpsilonTrack))
	writeInt("beta_track", int64(c.BetaTrack))
	writeInt("koppa_trigger", int64(c.KoppaTrigger))
	writeInt("mt10_behavior", int64(c.Mt10))
	writeInt("ratio_trigger_mode", int64(c.RatioTrigger))
	writeInt("prime_target", int64(c.PrimeTarget))
	writeInt("sign_flip_mode", int64(c.SignFlip))

	writeBool("dual_track_symmetry", c.DualTrackSymmetry)
	writeBool("triple_psi", c.TriplePsi)
	writeBool("multi_level_koppa", c.MultiLevelKoppa)
	writeBool("asymmetric_cascade", c.AsymmetricCascade)
	writeBool("conditional_triple_psi", c.ConditionalTriplePsi)
	writeBool("koppa_gated_engine", c.KoppaGatedEngine)
	writeBool("delta_cross_propagation", c.DeltaCrossPropagation)
	writeBool("delta_koppa_offset", c.DeltaKoppaOffset)
	writeBool("ratio_threshold_psi", c.RatioThresholdPsi)
	writeBool("stack_depth_modes", c.StackDepthModes)
	writeBool("epsilon_phi_triangle", c.EpsilonPhiTriangle)
	writeBool("modular_wrap", c.ModularWrap)
	writeBool("psi_strength_parameter", c.PsiStrengthParameter)
	writeBool("ratio_custom_range", c.RatioCustomRange)
	writeBool("twin_prime_trigger", c.TwinPrimeTrigger)
	writeBool("fibonacci_trigger", c.FibonacciTrigger)
	writeBool("perfect_power_trigger", c.PerfectPowerTrigger)

	writeInt("tick_count", int64(c.TickCount))
	writeInt("koppa_wrap_threshold", int64(c.KoppaWrapThreshold))
	// Quoted so arbitrarily large bounds survive the YAML round trip as
	// strings rather than lossy numeric scalars.
	fmt.Fprintf(&b, "modulus_bound: %q\n", c.ModulusBound.String())

	writeRat("upsilon_seed", c.UpsilonSeed)
	writeRat("beta_seed", c.BetaSeed)
	writeRat("koppa_seed", c.KoppaSeed)
	writeRat("ratio_custom_lower", c.RatioCustomLower)
	writeRat("ratio_custom_upper", c.RatioCustomUpper)

	return b.Bytes()
}

// Fingerprint returns the hex SHA-256 of the canonical document.
// Configs with equal effective settings share a fingerprint.
func (c *Config) Fingerprint() string {
	sum := sha256.Sum256(c.CanonicalDocument())
	return hex.EncodeToString(sum[:])
}
