package config

import (
	"fmt"
	"math/big"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rigbyspace/operation-goldenrod/internal/rational"
)

// Load reads a flat key/value YAML document from path and applies it
// over Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse applies a flat key/value document over Default and returns the
// result.
//
// Unknown keys, out-of-range mode codes, and wrongly typed values are
// ignored, so documents from newer or older writers still load. The
// exception is malformed rational and modulus strings: a value that was
// clearly intended as a seed or bound but does not parse fails the
// whole load, and nothing of the document is applied.
func Parse(data []byte) (*Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config document: %w", err)
	}
	cfg := Default()
	if err := Apply(cfg, raw); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Apply overlays a flat key/value document onto cfg in place, with the
// same tolerant key handling as Parse. Callers with documents from
// sources other than YAML (experiment files, stored runs) decode to a
// map and come through here.
func Apply(cfg *Config, raw map[string]any) error {
	applyEnum(raw, "psi_mode", int64(PsiInhibitRho), func(v int64) { cfg.Psi = PsiMode(v) })
	applyEnum(raw, "koppa_mode", int64(KoppaAccumulate), func(v int64) { cfg.Koppa = KoppaMode(v) })
	applyEnum(raw, "engine_mode", int64(EngineDeltaAdd), func(v int64) { cfg.Engine = EngineMode(v) })
	applyEnum(raw, "upsilon_track", int64(TrackSlide), func(v int64) { cfg.UpsilonTrack = TrackMode(v) })
	applyEnum(raw, "beta_track", int64(TrackSlide), func(v int64) { cfg.BetaTrack = TrackMode(v) })
	applyEnum(raw, "koppa_trigger", int64(TriggerEveryMicrotick), func(v int64) { cfg.KoppaTrigger = KoppaTrigger(v) })
	applyEnum(raw, "mt10_behavior", int64(Mt10ForcedKoppa), func(v int64) { cfg.Mt10 = Mt10Behavior(v) })
	applyEnum(raw, "ratio_trigger_mode", int64(RatioCustom), func(v int64) { cfg.RatioTrigger = RatioTriggerMode(v) })
	applyEnum(raw, "prime_target", int64(TargetNewUpsilon), func(v int64) { cfg.PrimeTarget = PrimeTarget(v) })
	applyEnum(raw, "sign_flip_mode", int64(FlipAlternate), func(v int64) { cfg.SignFlip = SignFlipMode(v) })

	applyBool(raw, "dual_track_symmetry", &cfg.DualTrackSymmetry)
	applyBool(raw, "triple_psi", &cfg.TriplePsi)
	applyBool(raw, "multi_level_koppa", &cfg.MultiLevelKoppa)
	applyBool(raw, "asymmetric_cascade", &cfg.AsymmetricCascade)
	applyBool(raw, "conditional_triple_psi", &cfg.ConditionalTriplePsi)
	applyBool(raw, "koppa_gated_engine", &cfg.KoppaGatedEngine)
	applyBool(raw, "delta_cross_propagation", &cfg.DeltaCrossPropagation)
	applyBool(raw, "delta_koppa_offset", &cfg.DeltaKoppaOffset)
	applyBool(raw, "ratio_threshold_psi", &cfg.RatioThresholdPsi)
	applyBool(raw, "stack_depth_modes", &cfg.StackDepthModes)
	applyBool(raw, "epsilon_phi_triangle", &cfg.EpsilonPhiTriangle)
	applyBool(raw, "modular_wrap", &cfg.ModularWrap)
	applyBool(raw, "psi_strength_parameter", &cfg.PsiStrengthParameter)
	applyBool(raw, "ratio_custom_range", &cfg.RatioCustomRange)
	applyBool(raw, "twin_prime_trigger", &cfg.TwinPrimeTrigger)
	applyBool(raw, "fibonacci_trigger", &cfg.FibonacciTrigger)
	applyBool(raw, "perfect_power_trigger", &cfg.PerfectPowerTrigger)

	if v, ok := intField(raw, "tick_count"); ok && v > 0 {
		cfg.TickCount = uint64(v)
	}
	if v, ok := intField(raw, "koppa_wrap_threshold"); ok && v >= 0 {
		cfg.KoppaWrapThreshold = uint64(v)
	}
	if err := applyModulus(cfg, raw); err != nil {
		return err
	}

	if err := applyRational(raw, "upsilon_seed", &cfg.UpsilonSeed); err != nil {
		return err
	}
	if err := applyRational(raw, "beta_seed", &cfg.BetaSeed); err != nil {
		return err
	}
	if err := applyRational(raw, "koppa_seed", &cfg.KoppaSeed); err != nil {
		return err
	}
	if err := applyRational(raw, "ratio_custom_lower", &cfg.RatioCustomLower); err != nil {
		return err
	}
	if err := applyRational(raw, "ratio_custom_upper", &cfg.RatioCustomUpper); err != nil {
		return err
	}
	return nil
}

// applyEnum assigns a small integer mode code if present and within
// [0, max]. Out-of-range codes are skipped, keeping the default.
func applyEnum(raw map[string]any, key string, max int64, assign func(int64)) {
	v, ok := intField(raw, key)
	if !ok || v < 0 || v > max {
		return
	}
	assign(v)
}

func applyBool(raw map[string]any, key string, dst *bool) {
	v, ok := raw[key]
	if !ok {
		return
	}
	switch b := v.(type) {
	case bool:
		*dst = b
	case int:
		*dst = b != 0
	}
}

func applyRational(raw map[string]any, key string, dst **rational.Rational) error {
	s, ok := stringField(raw, key)
	if !ok {
		return nil
	}
	r, err := rational.ParseRational(s)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = r
	return nil
}

func applyModulus(cfg *Config, raw map[string]any) error {
	v, ok := raw["modulus_bound"]
	if !ok {
		return nil
	}
	switch b := v.(type) {
	case string:
		bound, ok := new(big.Int).SetString(b, 10)
		if !ok {
			return fmt.Errorf("invalid modulus_bound: %q is not a decimal integer", b)
		}
		cfg.ModulusBound = bound
	case int:
		cfg.ModulusBound = big.NewInt(int64(b))
	case int64:
		cfg.ModulusBound = big.NewInt(b)
	case uint64:
		cfg.ModulusBound = new(big.Int).SetUint64(b)
	}
	return nil
}

func intField(raw map[string]any, key string) (int64, bool) {
	v, ok := raw[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		if n <= 1<<62 {
			return int64(n), true
		}
	}
	return 0, false
}

func stringField(raw map[string]any, key string) (string, bool) {
	v, ok := raw[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
