package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rigbyspace/operation-goldenrod/internal/config"
	"github.com/rigbyspace/operation-goldenrod/internal/rational"
)

// TestTransformStep_StandardFormula checks the two-register swap
// against the literal cross-multiplied quotients, including the second
// application, which squares the ratio rather than restoring the seed.
func TestTransformStep_StandardFormula(t *testing.T) {
	cfg := config.Default()
	st := newTestState(t, cfg, rational.New(2, 1), rational.New(3, 1), rational.New(1, 1))

	require.True(t, TransformStep(cfg, st))
	assert.Equal(t, "3/2", st.Upsilon.String())
	assert.Equal(t, "2/3", st.Beta.String())
	assert.True(t, st.PsiRecent)

	require.True(t, TransformStep(cfg, st))
	assert.Equal(t, "4/9", st.Upsilon.String(), "second application squares, components unreduced")
	assert.Equal(t, "9/4", st.Beta.String())
}

// TestTransformStep_FailurePreservesState leaves every register and the
// pending rho event untouched when an input is zero.
func TestTransformStep_FailurePreservesState(t *testing.T) {
	cfg := config.Default()
	st := newTestState(t, cfg, rational.New(0, 0), rational.New(3, 1), rational.New(1, 1))
	st.RhoPending = true

	ok := TransformStep(cfg, st)

	require.False(t, ok)
	assert.True(t, st.Upsilon.IsZero())
	assert.Equal(t, "3/1", st.Beta.String())
	assert.True(t, st.RhoPending, "a failed fire does not consume the rho event")
	assert.False(t, st.PsiRecent)
}

// TestTransformStep_RhoOnlyGating requires a pending rho event and
// clears the recency flags on entry even when nothing fires.
func TestTransformStep_RhoOnlyGating(t *testing.T) {
	cfg := config.Default()
	cfg.Psi = config.PsiRhoOnly
	st := newTestState(t, cfg, rational.New(2, 1), rational.New(3, 1), rational.New(1, 1))
	st.PsiRecent = true
	st.PsiTripleRecent = true

	ok := TransformStep(cfg, st)

	require.False(t, ok)
	assert.False(t, st.PsiRecent, "entry clears recency before the gate")
	assert.False(t, st.PsiTripleRecent)
	assert.Equal(t, "2/1", st.Upsilon.String())

	st.RhoPending = true
	require.True(t, TransformStep(cfg, st))
	assert.False(t, st.RhoPending, "a successful fire consumes the event")
	assert.Equal(t, "3/2", st.Upsilon.String())
}

// TestTransformStep_TripleFormula rotates all three registers.
func TestTransformStep_TripleFormula(t *testing.T) {
	cfg := config.Default()
	cfg.TriplePsi = true
	st := newTestState(t, cfg, rational.New(2, 1), rational.New(3, 1), rational.New(5, 1))

	require.True(t, TransformStep(cfg, st))

	assert.Equal(t, "3/5", st.Upsilon.String(), "beta over kappa")
	assert.Equal(t, "5/2", st.Beta.String(), "kappa over upsilon")
	assert.Equal(t, "5/3", st.Koppa.String(), "kappa over beta")
	assert.True(t, st.PsiTripleRecent)
}

// TestTransformStep_TripleFailsOnZeroKoppa falls back to no fire; the
// standard path is not attempted once the triple is requested.
func TestTransformStep_TripleFailsOnZeroKoppa(t *testing.T) {
	cfg := config.Default()
	cfg.TriplePsi = true
	st := newTestState(t, cfg, rational.New(2, 1), rational.New(3, 1), rational.New(0, 0))

	require.False(t, TransformStep(cfg, st))
	assert.Equal(t, "2/1", st.Upsilon.String())
	assert.Equal(t, "3/1", st.Beta.String())
	assert.False(t, st.PsiTripleRecent)
}

// TestTransformStep_ConditionalTriple upgrades to the rotation when all
// three numerators are prime, without the blanket toggle.
func TestTransformStep_ConditionalTriple(t *testing.T) {
	cfg := config.Default()
	cfg.ConditionalTriplePsi = true
	st := newTestState(t, cfg, rational.New(2, 1), rational.New(3, 1), rational.New(5, 1))

	require.True(t, TransformStep(cfg, st))
	assert.Equal(t, "3/5", st.Upsilon.String())
	assert.True(t, st.PsiTripleRecent)

	// One composite numerator keeps the standard swap.
	st = newTestState(t, cfg, rational.New(4, 1), rational.New(3, 1), rational.New(5, 1))
	require.True(t, TransformStep(cfg, st))
	assert.Equal(t, "3/4", st.Upsilon.String())
	assert.False(t, st.PsiTripleRecent)
}

// TestTransformStep_StrengthBurst fires once per prime numerator, and a
// burst of three rotates on every fire.
func TestTransformStep_StrengthBurst(t *testing.T) {
	cfg := config.Default()
	cfg.PsiStrengthParameter = true
	st := newTestState(t, cfg, rational.New(2, 1), rational.New(3, 1), rational.New(5, 1))
	st.RhoPending = true

	require.True(t, TransformStep(cfg, st))

	assert.Equal(t, "375/90", st.Upsilon.String())
	assert.Equal(t, "100/225", st.Beta.String())
	assert.Equal(t, "90/375", st.Koppa.String())
	assert.True(t, st.PsiStrengthApplied)
	assert.True(t, st.PsiTripleRecent)
	assert.False(t, st.RhoPending, "consumed on the first successful fire")
}

// TestTransformStep_StrengthFloor keeps a single standard fire when no
// numerator is prime.
func TestTransformStep_StrengthFloor(t *testing.T) {
	cfg := config.Default()
	cfg.PsiStrengthParameter = true
	st := newTestState(t, cfg, rational.New(4, 1), rational.New(6, 1), rational.New(8, 1))
	st.RhoPending = true

	require.True(t, TransformStep(cfg, st))

	assert.Equal(t, "6/4", st.Upsilon.String())
	assert.Equal(t, "4/6", st.Beta.String())
	assert.False(t, st.PsiStrengthApplied)
	assert.False(t, st.PsiTripleRecent)
}

// TestTransformStep_StrengthRequiresPending scales only for rho-driven
// fires; a plain memory fire stays single even with prime registers.
func TestTransformStep_StrengthRequiresPending(t *testing.T) {
	cfg := config.Default()
	cfg.PsiStrengthParameter = true
	st := newTestState(t, cfg, rational.New(2, 1), rational.New(3, 1), rational.New(5, 1))

	require.True(t, TransformStep(cfg, st))

	assert.Equal(t, "3/2", st.Upsilon.String(), "single standard swap")
	assert.False(t, st.PsiStrengthApplied)
}

// TestPrimeRegisterCount counts prime numerators across the three
// registers, sign ignored.
func TestPrimeRegisterCount(t *testing.T) {
	cfg := config.Default()

	st := newTestState(t, cfg, rational.New(2, 1), rational.New(-3, 1), rational.New(5, 1))
	assert.Equal(t, 3, primeRegisterCount(st))

	st = newTestState(t, cfg, rational.New(4, 1), rational.New(3, 1), rational.New(9, 1))
	assert.Equal(t, 1, primeRegisterCount(st))

	st = newTestState(t, cfg, rational.New(0, 0), rational.New(1, 1), rational.New(4, 1))
	assert.Equal(t, 0, primeRegisterCount(st))
}
