package engine

import (
	"github.com/rigbyspace/operation-goldenrod/internal/config"
	"github.com/rigbyspace/operation-goldenrod/internal/rational"
)

// State is the complete mutable state of one propagation run.
//
// INVARIANTS:
// - Every rational field obeys the zero invariant (0/0 is the only zero).
// - Rational fields are exclusively owned by their slot. Assignments
//   between slots deep-copy (rational.Set); shared big.Int backing
//   across slots is a bug.
// - KoppaStack slots at index >= KoppaStackSize are cleared, never
//   stale.
//
// Thread-safety: none. One goroutine owns a State for the whole run.
// State contains big.Int values and must not be copied; pass *State.
type State struct {
	// Value registers.
	Upsilon rational.Rational
	Beta    rational.Rational
	Koppa   rational.Rational

	// Epsilon snapshots upsilon at the start of every engine
	// microtick. Phi is reserved alongside it for the triangle ratios;
	// nothing propagates into it, so it stays undefined.
	Epsilon rational.Rational
	Phi     rational.Rational

	// Previous committed values and the deltas against them.
	PrevUpsilon  rational.Rational
	PrevBeta     rational.Rational
	DeltaUpsilon rational.Rational
	DeltaBeta    rational.Rational

	// Auxiliary triangle ratios, maintained only under the
	// epsilon-phi-triangle toggle.
	TrianglePhiOverEpsilon  rational.Rational
	TrianglePrevOverPhi     rational.Rational
	TriangleEpsilonOverPrev rational.Rational

	// Kappa history: a FIFO of at most four accrued values. Pushing at
	// capacity evicts index 0; index KoppaStackSize-1 is the newest.
	KoppaStack     [4]rational.Rational
	KoppaStackSize int

	// KoppaSample is the per-microtick sample emitted to observers;
	// KoppaSampleIndex records which stack slot it came from, -1 for
	// the live kappa register.
	KoppaSample      rational.Rational
	KoppaSampleIndex int

	// Transform bookkeeping flags.
	RhoPending         bool
	RhoLatched         bool
	PsiRecent          bool
	PsiTripleRecent    bool
	PsiStrengthApplied bool

	// Per-microtick observation flags.
	RatioTriggeredRecent bool
	RatioThresholdRecent bool
	DualEngineLastStep   bool
	SignFlipPolarity     bool

	// Tick is the 1-based tick currently executing.
	Tick uint64
}

// Reset loads the configured seeds and returns every other field to
// its run-start value. Seeds are deep-copied; a run never aliases its
// config. Reset makes replay exact: two runs of the same config from
// the same State produce identical trajectories.
func (s *State) Reset(cfg *config.Config) {
	s.Upsilon.Set(cfg.UpsilonSeed)
	s.Beta.Set(cfg.BetaSeed)
	s.Koppa.Set(cfg.KoppaSeed)

	s.Epsilon.SetInt64(0, 0)
	s.Phi.SetInt64(0, 0)

	s.PrevUpsilon.Set(&s.Upsilon)
	s.PrevBeta.Set(&s.Beta)
	s.DeltaUpsilon.SetInt64(0, 0)
	s.DeltaBeta.SetInt64(0, 0)

	s.TrianglePhiOverEpsilon.SetInt64(0, 0)
	s.TrianglePrevOverPhi.SetInt64(0, 0)
	s.TriangleEpsilonOverPrev.SetInt64(0, 0)

	for i := range s.KoppaStack {
		s.KoppaStack[i].SetInt64(0, 0)
	}
	s.KoppaStackSize = 0
	s.KoppaSample.SetInt64(0, 0)
	s.KoppaSampleIndex = -1

	s.RhoPending = false
	s.RhoLatched = false
	s.PsiRecent = false
	s.PsiTripleRecent = false
	s.PsiStrengthApplied = false
	s.RatioTriggeredRecent = false
	s.RatioThresholdRecent = false
	s.DualEngineLastStep = false
	s.SignFlipPolarity = false

	s.Tick = 0
}
