package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rigbyspace/operation-goldenrod/internal/config"
	"github.com/rigbyspace/operation-goldenrod/internal/rational"
)

// ratioState builds a state whose upsilon/beta quotient is under test.
func ratioState(t *testing.T, cfg *config.Config, ups, beta *rational.Rational) *State {
	t.Helper()
	return newTestState(t, cfg, ups, beta, rational.New(1, 1))
}

// TestRatioInRange_Windows checks each named window with a value
// inside and one on the exclusive boundary.
func TestRatioInRange_Windows(t *testing.T) {
	tests := []struct {
		name    string
		mode    config.RatioTriggerMode
		ups     *rational.Rational
		beta    *rational.Rational
		inRange bool
	}{
		{name: "golden inside", mode: config.RatioGolden, ups: rational.New(8, 1), beta: rational.New(5, 1), inRange: true},
		{name: "golden lower bound excluded", mode: config.RatioGolden, ups: rational.New(3, 1), beta: rational.New(2, 1), inRange: false},
		{name: "golden upper bound excluded", mode: config.RatioGolden, ups: rational.New(17, 1), beta: rational.New(10, 1), inRange: false},
		{name: "sqrt2 inside", mode: config.RatioSqrt2, ups: rational.New(7, 1), beta: rational.New(5, 1), inRange: true},
		{name: "sqrt2 outside", mode: config.RatioSqrt2, ups: rational.New(2, 1), beta: rational.New(1, 1), inRange: false},
		{name: "plastic inside", mode: config.RatioPlastic, ups: rational.New(13, 1), beta: rational.New(10, 1), inRange: true},
		{name: "plastic outside", mode: config.RatioPlastic, ups: rational.New(3, 1), beta: rational.New(2, 1), inRange: false},
		{name: "none never matches", mode: config.RatioNone, ups: rational.New(8, 1), beta: rational.New(5, 1), inRange: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.RatioTrigger = tt.mode
			st := ratioState(t, cfg, tt.ups, tt.beta)
			assert.Equal(t, tt.inRange, ratioInRange(cfg, st))
		})
	}
}

// TestRatioInRange_UnreducedComponents compares by cross-
// multiplication, so unreduced operands land in the same window.
func TestRatioInRange_UnreducedComponents(t *testing.T) {
	cfg := config.Default()
	cfg.RatioTrigger = config.RatioGolden
	st := ratioState(t, cfg, rational.New(16, 2), rational.New(10, 2))

	assert.True(t, ratioInRange(cfg, st), "16/2 over 10/2 is still 1.6")
}

// TestRatioInRange_ZeroBeta cannot form the quotient.
func TestRatioInRange_ZeroBeta(t *testing.T) {
	cfg := config.Default()
	cfg.RatioTrigger = config.RatioGolden
	st := ratioState(t, cfg, rational.New(8, 1), rational.New(0, 0))

	assert.False(t, ratioInRange(cfg, st))
}

// TestRatioInRange_CustomWindow reads the configured bounds only when
// the range toggle is armed; without it the custom mode matches
// nothing.
func TestRatioInRange_CustomWindow(t *testing.T) {
	cfg := config.Default()
	cfg.RatioTrigger = config.RatioCustom
	cfg.RatioCustomRange = true
	cfg.RatioCustomLower = rational.New(1, 1)
	cfg.RatioCustomUpper = rational.New(2, 1)

	st := ratioState(t, cfg, rational.New(3, 1), rational.New(2, 1))
	assert.True(t, ratioInRange(cfg, st))

	st = ratioState(t, cfg, rational.New(5, 1), rational.New(2, 1))
	assert.False(t, ratioInRange(cfg, st))

	cfg.RatioCustomRange = false
	st = ratioState(t, cfg, rational.New(3, 1), rational.New(2, 1))
	assert.False(t, ratioInRange(cfg, st), "unarmed custom window has undefined bounds")
}

// TestRatioThresholdOutside flags quotient magnitudes below a half or
// above two.
func TestRatioThresholdOutside(t *testing.T) {
	tests := []struct {
		name    string
		ups     *rational.Rational
		beta    *rational.Rational
		outside bool
	}{
		{name: "far above", ups: rational.New(5, 1), beta: rational.New(1, 1), outside: true},
		{name: "far below", ups: rational.New(1, 1), beta: rational.New(3, 1), outside: true},
		{name: "in band", ups: rational.New(1, 1), beta: rational.New(1, 1), outside: false},
		{name: "negative magnitude above", ups: rational.New(-5, 1), beta: rational.New(1, 1), outside: true},
		{name: "negative in band", ups: rational.New(-1, 1), beta: rational.New(1, 1), outside: false},
		{name: "upper edge inclusive", ups: rational.New(2, 1), beta: rational.New(1, 1), outside: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.RatioThresholdPsi = true
			st := ratioState(t, cfg, tt.ups, tt.beta)
			assert.Equal(t, tt.outside, ratioThresholdOutside(cfg, st))
		})
	}
}

// TestRatioThresholdOutside_Disarmed never fires without the toggle.
func TestRatioThresholdOutside_Disarmed(t *testing.T) {
	cfg := config.Default()
	st := ratioState(t, cfg, rational.New(5, 1), rational.New(1, 1))

	assert.False(t, ratioThresholdOutside(cfg, st))
}

// TestRatioThresholdOutside_ZeroBeta skips the quotient entirely.
func TestRatioThresholdOutside_ZeroBeta(t *testing.T) {
	cfg := config.Default()
	cfg.RatioThresholdPsi = true
	st := ratioState(t, cfg, rational.New(5, 1), rational.New(0, 0))

	assert.False(t, ratioThresholdOutside(cfg, st))
}
