// Package analyze collects run statistics through the observer
// interface. Everything here is read-only over the propagation state;
// float snapshots exist for reporting and never feed back into the
// exact arithmetic.
package analyze

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/rigbyspace/operation-goldenrod/internal/config"
	"github.com/rigbyspace/operation-goldenrod/internal/engine"
	"github.com/rigbyspace/operation-goldenrod/internal/rational"
)

// Constant is a named reference value for convergence detection.
type Constant struct {
	Name  string
	Value float64
}

// KnownConstants are the reference values the ratio trajectory is
// matched against. The plastic constant appears twice under both of
// its common names; matching reports whichever the search hits first.
var KnownConstants = []Constant{
	{Name: "phi", Value: 1.6180339887498948482},
	{Name: "rho", Value: 1.3247179572447458000},
	{Name: "delta_s", Value: 1.4655712318767680267},
	{Name: "tribonacci", Value: 1.8392867552141611326},
	{Name: "plastic", Value: 1.3247179572447458000},
	{Name: "sqrt2", Value: 1.4142135623730950488},
	{Name: "silver", Value: 2.4142135623730950488},
}

// ConstantValue looks up a known constant by name.
func ConstantValue(name string) (float64, bool) {
	for _, c := range KnownConstants {
		if c.Name == name {
			return c.Value, true
		}
	}
	return 0, false
}

// PsiTypeLabel names the transform arity for display.
func PsiTypeLabel(cfg *config.Config) string {
	if cfg.TriplePsi {
		return "3-way"
	}
	return "2-way"
}

// stackHistogramSize covers depths zero through the stack capacity.
const stackHistogramSize = 5

// Summary holds the statistics of one complete run.
type Summary struct {
	TotalTicks   uint64
	TotalSamples uint64

	PsiEvents    uint64
	RhoEvents    uint64
	MuZeroEvents uint64

	// RatioDefined reports whether the upsilon/beta quotient was ever
	// computable. All ratio statistics below are zero when it is not.
	RatioDefined       bool
	FinalRatio         *rational.Rational
	FinalRatioText     string
	FinalRatioSnapshot float64
	RatioMean          float64
	RatioVariance      float64
	RatioStddev        float64
	RatioRange         float64

	PsiSpacingMean   float64
	PsiSpacingStddev float64

	ClosestConstant string
	ClosestDelta    float64
	// ConvergenceTick is the first tick whose ratio snapshot came
	// within 1e-5 of any known constant; zero if none did.
	ConvergenceTick uint64

	Pattern        string
	Classification string

	StackHistogram    [stackHistogramSize]uint64
	AverageStackDepth float64
	StackSummary      string

	MaxNumeratorMagnitude   *big.Int
	MaxDenominatorMagnitude *big.Int
}

// Collector accumulates statistics microtick by microtick. Plug
// Observe into Simulator.Run, then call Summarize once the run ends.
// Welford's algorithm keeps the mean and variance stable over long
// runs.
type Collector struct {
	lastTick     uint64
	totalSamples uint64
	psiEvents    uint64
	rhoEvents    uint64
	muZeroEvents uint64

	ratioDefined bool
	finalRatio   rational.Rational

	ratioCount uint64
	ratioMean  float64
	ratioM2    float64
	ratioMin   float64
	ratioMax   float64

	havePreviousRatio bool
	previousRatio     float64
	maxDelta          float64
	signChanges       uint64

	bestDelta    float64
	bestConstant int

	haveLastPsi  bool
	lastPsiIndex uint64
	spacingCount uint64
	spacingMean  float64
	spacingM2    float64

	convergenceTick uint64

	stackHistogram [stackHistogramSize]uint64
	stackSum       uint64

	maxMagNum *big.Int
	maxMagDen *big.Int
}

// NewCollector returns a collector ready to observe a run.
func NewCollector() *Collector {
	return &Collector{
		bestDelta:    math.Inf(1),
		bestConstant: -1,
		maxMagNum:    new(big.Int),
		maxMagDen:    new(big.Int),
	}
}

// Observe records one microtick. It never mutates the state.
func (c *Collector) Observe(ev engine.StepEvent, st *engine.State) {
	if ev.Tick > c.lastTick {
		c.lastTick = ev.Tick
	}

	if ev.PsiFired {
		c.psiEvents++
		index := engine.LinearIndex(ev.Tick, ev.Microtick)
		if c.haveLastPsi {
			spacing := float64(index - c.lastPsiIndex)
			c.spacingCount++
			delta := spacing - c.spacingMean
			c.spacingMean += delta / float64(c.spacingCount)
			c.spacingM2 += delta * (spacing - c.spacingMean)
		}
		c.lastPsiIndex = index
		c.haveLastPsi = true
	}
	if ev.RhoEvent {
		c.rhoEvents++
	}
	if ev.MuZero {
		c.muZeroEvents++
	}

	depth := st.KoppaStackSize
	if depth >= stackHistogramSize {
		depth = stackHistogramSize - 1
	}
	c.stackHistogram[depth]++
	c.stackSum += uint64(depth)
	c.totalSamples++

	c.updateMagnitude(c.maxMagNum, st.Upsilon.Num())
	c.updateMagnitude(c.maxMagDen, st.Upsilon.Den())
	c.updateMagnitude(c.maxMagNum, st.Beta.Num())
	c.updateMagnitude(c.maxMagDen, st.Beta.Den())

	if st.Beta.IsZero() {
		return
	}
	var ratio rational.Rational
	ratio.Div(&st.Upsilon, &st.Beta)
	if ratio.Undefined() {
		return
	}
	snapshot := ratio.Float64()

	c.ratioDefined = true
	c.finalRatio.Set(&ratio)

	// A quotient beyond float64 range contributes nothing usable to the
	// float statistics. The exact components are still recorded above,
	// and such runs classify as chaotic through the magnitude caps.
	if math.IsInf(snapshot, 0) {
		return
	}

	c.ratioCount++
	if c.ratioCount == 1 {
		c.ratioMean = snapshot
		c.ratioM2 = 0
		c.ratioMin = snapshot
		c.ratioMax = snapshot
	} else {
		c.ratioMin = math.Min(c.ratioMin, snapshot)
		c.ratioMax = math.Max(c.ratioMax, snapshot)
		delta := snapshot - c.ratioMean
		c.ratioMean += delta / float64(c.ratioCount)
		c.ratioM2 += delta * (snapshot - c.ratioMean)
	}

	if c.havePreviousRatio {
		diff := math.Abs(snapshot - c.previousRatio)
		if diff > c.maxDelta {
			c.maxDelta = diff
		}
		if (snapshot > 0 && c.previousRatio < 0) || (snapshot < 0 && c.previousRatio > 0) {
			c.signChanges++
		}
	}
	c.previousRatio = snapshot
	c.havePreviousRatio = true

	for i, known := range KnownConstants {
		delta := math.Abs(snapshot - known.Value)
		if delta < c.bestDelta {
			c.bestDelta = delta
			c.bestConstant = i
		}
		if delta < 1e-5 && c.convergenceTick == 0 {
			c.convergenceTick = ev.Tick
		}
	}
}

func (c *Collector) updateMagnitude(max *big.Int, candidate *big.Int) {
	abs := new(big.Int).Abs(candidate)
	if max.Cmp(abs) < 0 {
		max.Set(abs)
	}
}

// Summarize finalizes the collected statistics and classifies the
// trajectory.
func (c *Collector) Summarize() *Summary {
	s := &Summary{
		TotalTicks:              c.lastTick,
		TotalSamples:            c.totalSamples,
		PsiEvents:               c.psiEvents,
		RhoEvents:               c.rhoEvents,
		MuZeroEvents:            c.muZeroEvents,
		RatioDefined:            c.ratioDefined,
		ConvergenceTick:         c.convergenceTick,
		StackHistogram:          c.stackHistogram,
		MaxNumeratorMagnitude:   new(big.Int).Set(c.maxMagNum),
		MaxDenominatorMagnitude: new(big.Int).Set(c.maxMagDen),
	}

	if c.ratioCount > 0 {
		s.RatioMean = c.ratioMean
		if c.ratioCount > 1 {
			s.RatioVariance = c.ratioM2 / float64(c.ratioCount-1)
			s.RatioStddev = math.Sqrt(s.RatioVariance)
		}
		s.RatioRange = c.ratioMax - c.ratioMin
	}
	if c.ratioDefined {
		s.FinalRatio = c.finalRatio.Clone()
		s.FinalRatioText = c.finalRatio.String()
		s.FinalRatioSnapshot = c.finalRatio.Float64()
	}

	if c.spacingCount > 0 {
		s.PsiSpacingMean = c.spacingMean
	}
	if c.spacingCount > 1 {
		s.PsiSpacingStddev = math.Sqrt(c.spacingM2 / float64(c.spacingCount-1))
	}

	if c.totalSamples > 0 {
		s.AverageStackDepth = float64(c.stackSum) / float64(c.totalSamples)
	}
	s.StackSummary = formatStackSummary(s)

	if c.bestConstant >= 0 {
		s.ClosestConstant = KnownConstants[c.bestConstant].Name
		s.ClosestDelta = c.bestDelta
	} else {
		s.ClosestConstant = "None"
		s.ClosestDelta = math.Inf(1)
	}

	c.classify(s)
	return s
}

// divergenceMagnitude caps component magnitudes before a run counts as
// chaotic.
var divergenceMagnitude = big.NewInt(1_000_000_000)

func (c *Collector) classify(s *Summary) {
	if !s.RatioDefined {
		s.Pattern = "null"
		s.Classification = "Null"
		return
	}

	divergent := s.RatioRange > 1e6 ||
		c.maxMagNum.Cmp(divergenceMagnitude) > 0 ||
		c.maxMagDen.Cmp(divergenceMagnitude) > 0
	if divergent {
		s.Pattern = "divergent"
		s.Classification = "Chaotic"
		return
	}

	if s.RatioRange < 1e-9 && c.maxDelta < 1e-12 {
		s.Pattern = "fixed point"
		s.Classification = "FixedPoint"
		return
	}

	if s.RatioRange < 100 && c.signChanges > c.ratioCount/3 {
		s.Pattern = "oscillating"
		s.Classification = "Oscillating"
		return
	}

	s.Pattern = "stable"
	if c.bestConstant >= 0 && c.bestDelta < 1e-4 {
		s.Classification = fmt.Sprintf("Convergent(%s)", KnownConstants[c.bestConstant].Name)
	} else {
		s.Classification = "Stable"
	}
}

func formatStackSummary(s *Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "avg=%.2f [", s.AverageStackDepth)
	for depth, count := range s.StackHistogram {
		if depth > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d:%d", depth, count)
	}
	b.WriteByte(']')
	return b.String()
}

// Run executes a complete simulation under a fresh collector and
// returns the summary.
func Run(ctx context.Context, cfg *config.Config) (*Summary, error) {
	sim, err := engine.NewSimulator(cfg)
	if err != nil {
		return nil, err
	}
	collector := NewCollector()
	if err := sim.Run(ctx, collector.Observe); err != nil {
		return nil, err
	}
	return collector.Summarize(), nil
}
