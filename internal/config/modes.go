package config

// EngineMode selects the propagation formula applied to both value
// registers when dual-track symmetry is off.
type EngineMode int

const (
	EngineAdd EngineMode = iota
	EngineMulti
	EngineSlide
	EngineDeltaAdd
)

func (m EngineMode) String() string {
	switch m {
	case EngineAdd:
		return "add"
	case EngineMulti:
		return "multi"
	case EngineSlide:
		return "slide"
	case EngineDeltaAdd:
		return "delta_add"
	}
	return "unknown"
}

// Track converts an engine mode to the per-register track mode it
// implies. DeltaAdd has no track counterpart and falls back to Add.
func (m EngineMode) Track() TrackMode {
	switch m {
	case EngineMulti:
		return TrackMulti
	case EngineSlide:
		return TrackSlide
	}
	return TrackAdd
}

// TrackMode is the per-register propagation formula used under
// dual-track symmetry and after per-microtick modulation overrides.
type TrackMode int

const (
	TrackAdd TrackMode = iota
	TrackMulti
	TrackSlide
)

func (m TrackMode) String() string {
	switch m {
	case TrackAdd:
		return "add"
	case TrackMulti:
		return "multi"
	case TrackSlide:
		return "slide"
	}
	return "unknown"
}

// PsiMode selects when a memory-phase microtick requests the psi
// transform.
type PsiMode int

const (
	// PsiEveryMemory requests the transform on every memory microtick.
	PsiEveryMemory PsiMode = iota
	// PsiRhoOnly requests only while a rho event is pending.
	PsiRhoOnly
	// PsiMemoryOrRho requests on every memory microtick and on pending
	// rho events alike.
	PsiMemoryOrRho
	// PsiInhibitRho requests only while no rho event is pending. A
	// pending rho still gates the transform internals, so this mode
	// requests without firing whenever rho fires first.
	PsiInhibitRho
)

func (m PsiMode) String() string {
	switch m {
	case PsiEveryMemory:
		return "mstep"
	case PsiRhoOnly:
		return "rho_only"
	case PsiMemoryOrRho:
		return "mstep_rho"
	case PsiInhibitRho:
		return "inhibit_rho"
	}
	return "unknown"
}

// KoppaMode selects the accrual operation applied to the kappa register
// when an accrual triggers.
type KoppaMode int

const (
	// KoppaDump clears kappa to the undefined value before the shared
	// accumulate step.
	KoppaDump KoppaMode = iota
	// KoppaPop replaces kappa with the epsilon snapshot.
	KoppaPop
	// KoppaAccumulate folds the epsilon snapshot into kappa.
	KoppaAccumulate
)

func (m KoppaMode) String() string {
	switch m {
	case KoppaDump:
		return "dump"
	case KoppaPop:
		return "pop"
	case KoppaAccumulate:
		return "accumulate"
	}
	return "unknown"
}

// KoppaTrigger selects which microticks run the kappa accrual.
type KoppaTrigger int

const (
	// TriggerOnPsi accrues only on microticks where the psi transform
	// fired.
	TriggerOnPsi KoppaTrigger = iota
	// TriggerAfterPsi accrues on the first memory microtick after a
	// successful psi fire, one-shot.
	TriggerAfterPsi
	// TriggerEveryMemory accrues on every memory microtick.
	TriggerEveryMemory
	// TriggerEveryMicrotick accrues at every accrual site regardless of
	// phase.
	TriggerEveryMicrotick
)

func (m KoppaTrigger) String() string {
	switch m {
	case TriggerOnPsi:
		return "on_psi"
	case TriggerAfterPsi:
		return "after_psi"
	case TriggerEveryMemory:
		return "all_mu"
	case TriggerEveryMicrotick:
		return "every_microtick"
	}
	return "unknown"
}

// PrimeTarget selects which register feeds the prime pattern detector.
type PrimeTarget int

const (
	// TargetMemory checks the beta register on memory microticks,
	// numerator and denominator both.
	TargetMemory PrimeTarget = iota
	// TargetNewUpsilon checks the freshly propagated upsilon numerator
	// on engine microticks.
	TargetNewUpsilon
)

func (m PrimeTarget) String() string {
	switch m {
	case TargetMemory:
		return "memory"
	case TargetNewUpsilon:
		return "new_upsilon"
	}
	return "unknown"
}

// Mt10Behavior selects the extra action taken on microtick 10, the
// engine microtick that closes each tick's engine work. Forced emission
// is marked on microtick 10 under every behavior.
type Mt10Behavior int

const (
	// Mt10EmissionOnly marks forced emission and nothing else.
	Mt10EmissionOnly Mt10Behavior = iota
	// Mt10ForcedPsi latches a rho event so the following memory
	// microtick requests the transform.
	Mt10ForcedPsi
	// Mt10ForcedEngine runs a second engine step.
	Mt10ForcedEngine
	// Mt10ForcedKoppa runs an accrual step outside the memory phase.
	Mt10ForcedKoppa
)

func (m Mt10Behavior) String() string {
	switch m {
	case Mt10EmissionOnly:
		return "emission_only"
	case Mt10ForcedPsi:
		return "forced_psi"
	case Mt10ForcedEngine:
		return "forced_engine"
	case Mt10ForcedKoppa:
		return "forced_koppa"
	}
	return "unknown"
}

// SignFlipMode selects post-propagation numerator sign flipping.
type SignFlipMode int

const (
	FlipNone SignFlipMode = iota
	FlipAlways
	FlipAlternate
)

func (m SignFlipMode) String() string {
	switch m {
	case FlipNone:
		return "none"
	case FlipAlways:
		return "always"
	case FlipAlternate:
		return "alternate"
	}
	return "unknown"
}

// RatioTriggerMode selects the upsilon/beta ratio window that requests
// the psi transform on memory microticks.
type RatioTriggerMode int

const (
	RatioNone RatioTriggerMode = iota
	RatioGolden
	RatioSqrt2
	RatioPlastic
	RatioCustom
)

func (m RatioTriggerMode) String() string {
	switch m {
	case RatioNone:
		return "none"
	case RatioGolden:
		return "golden"
	case RatioSqrt2:
		return "sqrt2"
	case RatioPlastic:
		return "plastic"
	case RatioCustom:
		return "custom"
	}
	return "unknown"
}
