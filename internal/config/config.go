package config

import (
	"fmt"
	"math/big"

	"github.com/rigbyspace/operation-goldenrod/internal/rational"
)

// Config holds every knob of a propagation run. The zero value is not
// usable; start from Default and overlay.
type Config struct {
	Engine       EngineMode
	UpsilonTrack TrackMode
	BetaTrack    TrackMode
	Psi          PsiMode
	Koppa        KoppaMode
	KoppaTrigger KoppaTrigger
	PrimeTarget  PrimeTarget
	Mt10         Mt10Behavior
	SignFlip     SignFlipMode
	RatioTrigger RatioTriggerMode

	// DualTrackSymmetry propagates upsilon and beta with their own
	// track modes instead of the single engine mode.
	DualTrackSymmetry bool
	// TriplePsi makes every transform fire the three-register rotation.
	TriplePsi bool
	// MultiLevelKoppa retains accrued kappa values on a four-deep FIFO
	// and samples from it at fixed microticks.
	MultiLevelKoppa bool
	// AsymmetricCascade overrides the per-register track modes on
	// engine microticks with a fixed per-microtick table.
	AsymmetricCascade bool
	// ConditionalTriplePsi upgrades a transform fire to the
	// three-register rotation when enough registers carry prime
	// numerators.
	ConditionalTriplePsi bool
	// KoppaGatedEngine overrides track modes by kappa numerator
	// magnitude bands.
	KoppaGatedEngine bool
	// DeltaCrossPropagation feeds each register's previous delta into
	// the other register's propagation result.
	DeltaCrossPropagation bool
	// DeltaKoppaOffset adds kappa into both registers after the delta
	// cross feed.
	DeltaKoppaOffset bool
	// RatioThresholdPsi requests the transform when the upsilon/beta
	// ratio leaves the [0.5, 2.0] magnitude band.
	RatioThresholdPsi bool
	// StackDepthModes overrides track modes by kappa stack depth and
	// gates transform fires at depths 2 and 4.
	StackDepthModes bool
	// EpsilonPhiTriangle maintains the three auxiliary ratios between
	// epsilon, phi, and the previous upsilon.
	EpsilonPhiTriangle bool
	// ModularWrap reduces kappa modulo beta past the wrap threshold and
	// clamps numerator magnitudes to the modulus bound.
	ModularWrap bool
	// PsiStrengthParameter scales transform fire count by the number of
	// prime register numerators while a rho event is pending.
	PsiStrengthParameter bool
	// RatioCustomRange enables the custom ratio window bounds.
	RatioCustomRange bool
	// TwinPrimeTrigger extends numerator pattern checks to twin primes.
	TwinPrimeTrigger bool
	// FibonacciTrigger extends pattern checks to Fibonacci membership.
	FibonacciTrigger bool
	// PerfectPowerTrigger extends pattern checks to perfect powers.
	PerfectPowerTrigger bool

	// TickCount is the number of 11-microtick ticks a run executes.
	TickCount uint64
	// KoppaWrapThreshold arms the modular wrap of kappa by beta once
	// the kappa numerator magnitude exceeds it. Zero disarms.
	KoppaWrapThreshold uint64
	// ModulusBound clamps register numerator magnitudes after each
	// successful engine step when ModularWrap is on. Zero or negative
	// disarms.
	ModulusBound *big.Int

	UpsilonSeed *rational.Rational
	BetaSeed    *rational.Rational
	KoppaSeed   *rational.Rational

	// RatioCustomLower and RatioCustomUpper bound the custom ratio
	// window. Only read under RatioCustom with RatioCustomRange set.
	RatioCustomLower *rational.Rational
	RatioCustomUpper *rational.Rational
}

// Default returns the baseline configuration: additive propagation,
// transform on every memory microtick, accumulating accrual on every
// memory microtick, forced rho on microtick 10, seeds 1/1, 1/1 and an
// undefined kappa, ten ticks, every toggle off.
func Default() *Config {
	return &Config{
		Engine:       EngineAdd,
		UpsilonTrack: TrackAdd,
		BetaTrack:    TrackAdd,
		Psi:          PsiEveryMemory,
		Koppa:        KoppaAccumulate,
		KoppaTrigger: TriggerEveryMemory,
		PrimeTarget:  TargetMemory,
		Mt10:         Mt10ForcedPsi,
		SignFlip:     FlipNone,
		RatioTrigger: RatioNone,

		TickCount:          10,
		KoppaWrapThreshold: 0,
		ModulusBound:       new(big.Int),

		UpsilonSeed: rational.New(1, 1),
		BetaSeed:    rational.New(1, 1),
		KoppaSeed:   rational.New(0, 0),

		RatioCustomLower: rational.New(0, 0),
		RatioCustomUpper: rational.New(0, 0),
	}
}

// Clone returns a deep copy. Mutating the copy's seeds or bounds never
// touches the original.
func (c *Config) Clone() *Config {
	out := *c
	out.ModulusBound = new(big.Int).Set(c.ModulusBound)
	out.UpsilonSeed = c.UpsilonSeed.Clone()
	out.BetaSeed = c.BetaSeed.Clone()
	out.KoppaSeed = c.KoppaSeed.Clone()
	out.RatioCustomLower = c.RatioCustomLower.Clone()
	out.RatioCustomUpper = c.RatioCustomUpper.Clone()
	return &out
}

// Validate checks structural completeness: every pointer field present
// and every mode code within range. Configs built through Default and
// the loader always validate; direct construction can miss fields.
func (c *Config) Validate() error {
	if c.UpsilonSeed == nil || c.BetaSeed == nil || c.KoppaSeed == nil {
		return fmt.Errorf("config missing register seeds")
	}
	if c.RatioCustomLower == nil || c.RatioCustomUpper == nil {
		return fmt.Errorf("config missing custom ratio bounds")
	}
	if c.ModulusBound == nil {
		return fmt.Errorf("config missing modulus bound")
	}
	switch {
	case c.Engine < EngineAdd || c.Engine > EngineDeltaAdd:
		return fmt.Errorf("engine mode %d out of range", c.Engine)
	case c.UpsilonTrack < TrackAdd || c.UpsilonTrack > TrackSlide:
		return fmt.Errorf("upsilon track mode %d out of range", c.UpsilonTrack)
	case c.BetaTrack < TrackAdd || c.BetaTrack > TrackSlide:
		return fmt.Errorf("beta track mode %d out of range", c.BetaTrack)
	case c.Psi < PsiEveryMemory || c.Psi > PsiInhibitRho:
		return fmt.Errorf("psi mode %d out of range", c.Psi)
	case c.Koppa < KoppaDump || c.Koppa > KoppaAccumulate:
		return fmt.Errorf("koppa mode %d out of range", c.Koppa)
	case c.KoppaTrigger < TriggerOnPsi || c.KoppaTrigger > TriggerEveryMicrotick:
		return fmt.Errorf("koppa trigger %d out of range", c.KoppaTrigger)
	case c.PrimeTarget < TargetMemory || c.PrimeTarget > TargetNewUpsilon:
		return fmt.Errorf("prime target %d out of range", c.PrimeTarget)
	case c.Mt10 < Mt10EmissionOnly || c.Mt10 > Mt10ForcedKoppa:
		return fmt.Errorf("mt10 behavior %d out of range", c.Mt10)
	case c.SignFlip < FlipNone || c.SignFlip > FlipAlternate:
		return fmt.Errorf("sign flip mode %d out of range", c.SignFlip)
	case c.RatioTrigger < RatioNone || c.RatioTrigger > RatioCustom:
		return fmt.Errorf("ratio trigger mode %d out of range", c.RatioTrigger)
	}
	if c.TickCount == 0 {
		return fmt.Errorf("tick count must be positive")
	}
	return nil
}
