package engine

import (
	"math/big"

	"github.com/rigbyspace/operation-goldenrod/internal/config"
	"github.com/rigbyspace/operation-goldenrod/internal/rational"
)

// trackModes resolves the per-register propagation modes for one engine
// microtick. Modulations apply in fixed order: asymmetric cascade
// table, then stack depth, then kappa gate. A later modulation replaces
// the mode outright; stack depth and the gate resolve to one mode for
// both registers.
func trackModes(cfg *config.Config, st *State, microtick int) (ups, beta config.TrackMode) {
	if cfg.DualTrackSymmetry {
		ups, beta = cfg.UpsilonTrack, cfg.BetaTrack
	} else {
		ups = cfg.Engine.Track()
		beta = ups
	}

	if cfg.AsymmetricCascade {
		switch microtick {
		case 1:
			ups, beta = config.TrackMulti, config.TrackAdd
		case 4:
			ups, beta = config.TrackAdd, config.TrackSlide
		case 7:
			ups, beta = config.TrackSlide, config.TrackMulti
		case 10:
			ups, beta = config.TrackAdd, config.TrackAdd
		}
	}
	if cfg.StackDepthModes {
		ups = stackDepthMode(st)
		beta = ups
	}
	if cfg.KoppaGatedEngine {
		ups = koppaGateMode(st)
		beta = ups
	}
	return ups, beta
}

// stackDepthMode maps kappa stack depth to a track mode: shallow stacks
// add, mid-depth stacks multiply, a full stack slides.
func stackDepthMode(st *State) config.TrackMode {
	switch depth := st.KoppaStackSize; {
	case depth <= 1:
		return config.TrackAdd
	case depth <= 3:
		return config.TrackMulti
	case depth == 4:
		return config.TrackSlide
	}
	return config.TrackAdd
}

// koppaGateMode maps kappa numerator magnitude bands to a track mode.
func koppaGateMode(st *State) config.TrackMode {
	mag := new(big.Int).Abs(st.Koppa.Num())
	switch {
	case mag.Cmp(big.NewInt(10)) < 0:
		return config.TrackSlide
	case mag.Cmp(big.NewInt(100)) < 0:
		return config.TrackMulti
	}
	return config.TrackAdd
}

// applyTrack computes one register's propagation into result and
// reports success. Add and Multi always succeed. Slide fails when kappa
// cannot divide or the operand sum is undefined, leaving result
// untouched.
func applyTrack(mode config.TrackMode, result, current, counterpart, koppa *rational.Rational) bool {
	switch mode {
	case config.TrackMulti:
		var sum rational.Rational
		sum.Add(counterpart, koppa)
		result.Mul(current, &sum)
	case config.TrackSlide:
		if koppa.IsZero() || koppa.Undefined() {
			return false
		}
		var sum rational.Rational
		sum.Add(current, counterpart)
		if sum.Undefined() {
			return false
		}
		return result.Div(&sum, koppa)
	default:
		result.Add(current, counterpart)
		result.Add(result, koppa)
	}
	return true
}

// applyDeltaCross feeds each register's pre-step delta into the other
// register's result, with an optional kappa offset on both.
func applyDeltaCross(cfg *config.Config, st *State, newUpsilon, newBeta *rational.Rational) {
	if !cfg.DeltaCrossPropagation {
		return
	}
	newUpsilon.Add(newUpsilon, &st.DeltaBeta)
	newBeta.Add(newBeta, &st.DeltaUpsilon)
	if cfg.DeltaKoppaOffset {
		newUpsilon.Add(newUpsilon, &st.Koppa)
		newBeta.Add(newBeta, &st.Koppa)
	}
}

// applySignFlip negates both result numerators per the flip mode and
// records the polarity. Polarity advances even when the surrounding
// step fails.
func applySignFlip(cfg *config.Config, st *State, newUpsilon, newBeta *rational.Rational) {
	if cfg.SignFlip == config.FlipNone {
		st.SignFlipPolarity = false
		return
	}

	flip := false
	switch cfg.SignFlip {
	case config.FlipAlways:
		flip = true
	case config.FlipAlternate:
		flip = !st.SignFlipPolarity
	}
	if flip {
		newUpsilon.Neg(newUpsilon)
		newBeta.Neg(newBeta)
	}

	switch cfg.SignFlip {
	case config.FlipAlways:
		st.SignFlipPolarity = true
	case config.FlipAlternate:
		st.SignFlipPolarity = flip
	}
}

// updateTriangle refreshes the three auxiliary ratios. A zero divisor
// clears the ratio instead of failing the step.
func updateTriangle(cfg *config.Config, st *State) {
	if !cfg.EpsilonPhiTriangle {
		return
	}
	if !st.Epsilon.IsZero() {
		st.TrianglePhiOverEpsilon.Div(&st.Phi, &st.Epsilon)
	} else {
		st.TrianglePhiOverEpsilon.SetInt64(0, 0)
	}
	if !st.Phi.IsZero() {
		st.TrianglePrevOverPhi.Div(&st.PrevUpsilon, &st.Phi)
	} else {
		st.TrianglePrevOverPhi.SetInt64(0, 0)
	}
	if !st.PrevUpsilon.IsZero() {
		st.TriangleEpsilonOverPrev.Div(&st.Epsilon, &st.PrevUpsilon)
	} else {
		st.TriangleEpsilonOverPrev.SetInt64(0, 0)
	}
}

// applyModularWrap bounds register growth after a committed step. Kappa
// wraps modulo beta once its numerator magnitude passes the threshold;
// then every register numerator reduces modulo the bound, sign
// preserved, denominator untouched.
func applyModularWrap(cfg *config.Config, st *State) {
	if !cfg.ModularWrap {
		return
	}
	if cfg.KoppaWrapThreshold > 0 {
		mag := new(big.Int).Abs(st.Koppa.Num())
		if mag.Cmp(new(big.Int).SetUint64(cfg.KoppaWrapThreshold)) > 0 {
			st.Koppa.Mod(&st.Koppa, &st.Beta)
		}
	}
	if cfg.ModulusBound.Sign() > 0 {
		wrapNumerator(&st.Upsilon, cfg.ModulusBound)
		wrapNumerator(&st.Beta, cfg.ModulusBound)
		wrapNumerator(&st.Koppa, cfg.ModulusBound)
	}
}

// wrapNumerator replaces the numerator with |num| mod bound, restoring
// the original sign. A numerator wrapped to zero takes the whole value
// to undefined under the zero invariant.
func wrapNumerator(v *rational.Rational, bound *big.Int) {
	sign := v.Sign()
	rem := new(big.Int).Abs(v.Num())
	rem.Mod(rem, bound)
	if sign < 0 {
		rem.Neg(rem)
	}
	v.SetComponents(rem, v.Den())
}

// EngineStep runs one propagation step at the given microtick and
// reports whether the new values committed. Deltas, flip polarity and
// the triangle ratios are written to state even when propagation fails;
// the value registers commit only on success.
func EngineStep(cfg *config.Config, st *State, microtick int) bool {
	var upsBefore, betaBefore rational.Rational
	upsBefore.Set(&st.Upsilon)
	betaBefore.Set(&st.Beta)

	upsMode, betaMode := trackModes(cfg, st, microtick)

	var newUpsilon, newBeta rational.Rational
	newUpsilon.Set(&st.Upsilon)
	newBeta.Set(&st.Beta)

	// Pre-step deltas measure drift since the last commit. They feed
	// delta-add and the cross feed below, and they persist when the
	// step fails.
	st.DeltaUpsilon.Delta(&st.Upsilon, &st.PrevUpsilon)
	st.DeltaBeta.Delta(&st.Beta, &st.PrevBeta)

	success := true
	if !cfg.DualTrackSymmetry && cfg.Engine == config.EngineDeltaAdd {
		newUpsilon.Add(&st.Upsilon, &st.DeltaUpsilon)
		newBeta.Add(&st.Beta, &st.DeltaBeta)
	} else {
		upsOK := applyTrack(upsMode, &newUpsilon, &st.Upsilon, &st.Beta, &st.Koppa)
		betaOK := applyTrack(betaMode, &newBeta, &st.Beta, &st.Upsilon, &st.Koppa)
		success = upsOK && betaOK
	}

	applyDeltaCross(cfg, st, &newUpsilon, &newBeta)
	applySignFlip(cfg, st, &newUpsilon, &newBeta)
	updateTriangle(cfg, st)

	if !success {
		st.DualEngineLastStep = false
		return false
	}

	st.Upsilon.Set(&newUpsilon)
	st.Beta.Set(&newBeta)
	st.DualEngineLastStep = cfg.DualTrackSymmetry

	// Post-commit deltas record the actual movement of this step.
	st.DeltaUpsilon.Delta(&st.Upsilon, &upsBefore)
	st.DeltaBeta.Delta(&st.Beta, &betaBefore)
	st.PrevUpsilon.Set(&upsBefore)
	st.PrevBeta.Set(&betaBefore)

	applyModularWrap(cfg, st)
	return true
}
