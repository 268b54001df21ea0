package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rigbyspace/operation-goldenrod/internal/config"
	"github.com/rigbyspace/operation-goldenrod/internal/rational"
)

// TestState_Reset_SeedsRegisters loads seeds and zeroes everything else.
func TestState_Reset_SeedsRegisters(t *testing.T) {
	cfg := config.Default()
	cfg.UpsilonSeed = rational.New(5, 8)
	cfg.BetaSeed = rational.New(-3, 2)
	cfg.KoppaSeed = rational.New(7, 7)

	var st State
	st.Reset(cfg)

	assert.True(t, st.Upsilon.Equal(rational.New(5, 8)))
	assert.True(t, st.Beta.Equal(rational.New(-3, 2)))
	assert.True(t, st.Koppa.Equal(rational.New(7, 7)))

	assert.True(t, st.PrevUpsilon.Equal(rational.New(5, 8)), "previous values start at the seeds")
	assert.True(t, st.PrevBeta.Equal(rational.New(-3, 2)))

	assert.True(t, st.Epsilon.IsZero())
	assert.True(t, st.Phi.IsZero())
	assert.True(t, st.DeltaUpsilon.IsZero())
	assert.True(t, st.DeltaBeta.IsZero())
	assert.True(t, st.KoppaSample.IsZero())

	assert.Equal(t, 0, st.KoppaStackSize)
	assert.Equal(t, -1, st.KoppaSampleIndex)
	assert.Equal(t, uint64(0), st.Tick)

	assert.False(t, st.RhoPending)
	assert.False(t, st.PsiRecent)
	assert.False(t, st.SignFlipPolarity)
}

// TestState_Reset_DoesNotAliasSeeds verifies that mutating the run's
// registers never reaches back into the config.
func TestState_Reset_DoesNotAliasSeeds(t *testing.T) {
	cfg := config.Default()
	cfg.UpsilonSeed = rational.New(3, 4)

	var st State
	st.Reset(cfg)

	st.Upsilon.Add(&st.Upsilon, rational.New(1, 1))
	assert.True(t, cfg.UpsilonSeed.Equal(rational.New(3, 4)), "seed must be unchanged")
}

// TestState_Reset_ClearsStackSlots runs a pushing scenario, resets, and
// checks that no stale stack contents can leak into a fresh run.
func TestState_Reset_ClearsStackSlots(t *testing.T) {
	cfg := config.Default()

	var st State
	st.Reset(cfg)

	pushKoppa(&st, rational.New(9, 4))
	pushKoppa(&st, rational.New(11, 4))
	require.Equal(t, 2, st.KoppaStackSize)

	st.Reset(cfg)
	assert.Equal(t, 0, st.KoppaStackSize)
	for i := range st.KoppaStack {
		assert.True(t, st.KoppaStack[i].IsZero(), "slot %d", i)
		assert.True(t, st.KoppaStack[i].Undefined(), "slot %d", i)
	}
}

// TestState_Reset_Replayable verifies reset returns a mutated state to
// run-start values.
func TestState_Reset_Replayable(t *testing.T) {
	cfg := config.Default()
	cfg.KoppaSeed = rational.New(1, 1)

	var st State
	st.Reset(cfg)

	EngineStep(cfg, &st, 1)
	TransformStep(cfg, &st)
	AccrualStep(cfg, &st, true, true, 2)
	require.False(t, st.Upsilon.Equal(cfg.UpsilonSeed), "state should have moved")

	st.Reset(cfg)
	assert.True(t, st.Upsilon.Equal(cfg.UpsilonSeed))
	assert.True(t, st.Beta.Equal(cfg.BetaSeed))
	assert.True(t, st.Koppa.Equal(cfg.KoppaSeed))
	assert.False(t, st.PsiRecent)
}
