package engine

import (
	"math"

	"github.com/rigbyspace/operation-goldenrod/internal/config"
	"github.com/rigbyspace/operation-goldenrod/internal/rational"
)

// ratioBounds returns the window for a predefined trigger mode. None
// and custom resolve to undefined bounds, which no ratio strictly
// exceeds, so they match nothing here.
func ratioBounds(mode config.RatioTriggerMode) (lower, upper *rational.Rational) {
	switch mode {
	case config.RatioGolden:
		return rational.New(3, 2), rational.New(17, 10)
	case config.RatioSqrt2:
		return rational.New(13, 10), rational.New(3, 2)
	case config.RatioPlastic:
		return rational.New(6, 5), rational.New(7, 5)
	}
	return rational.New(0, 0), rational.New(0, 0)
}

// ratioInRange reports whether upsilon/beta falls strictly inside the
// configured window. Custom bounds apply only with the custom-range
// toggle on. Evaluation only; registers are never written.
func ratioInRange(cfg *config.Config, st *State) bool {
	if cfg.RatioTrigger == config.RatioNone {
		return false
	}
	if st.Beta.IsZero() {
		return false
	}

	var ratio rational.Rational
	if !ratio.Div(&st.Upsilon, &st.Beta) {
		return false
	}

	if cfg.RatioTrigger == config.RatioCustom && cfg.RatioCustomRange {
		return ratio.Cmp(cfg.RatioCustomLower) > 0 && ratio.Cmp(cfg.RatioCustomUpper) < 0
	}
	lower, upper := ratioBounds(cfg.RatioTrigger)
	return ratio.Cmp(lower) > 0 && ratio.Cmp(upper) < 0
}

// ratioThresholdOutside reports whether the float snapshot of
// upsilon/beta leaves the [0.5, 2.0] magnitude band. An undefined
// quotient snapshots to zero, which counts as outside.
func ratioThresholdOutside(cfg *config.Config, st *State) bool {
	if !cfg.RatioThresholdPsi {
		return false
	}
	if st.Beta.IsZero() {
		return false
	}

	var ratio rational.Rational
	if !ratio.Div(&st.Upsilon, &st.Beta) {
		return false
	}

	mag := math.Abs(ratio.Float64())
	return mag < 0.5 || mag > 2.0
}
