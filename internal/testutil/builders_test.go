package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rigbyspace/operation-goldenrod/internal/config"
)

func TestRat(t *testing.T) {
	assert.Equal(t, "3/2", Rat("3/2").String())
	assert.Equal(t, "7/1", Rat("7").String())
	// The zero invariant applies at parse time too.
	assert.Equal(t, "0/0", Rat("0/5").String())
	assert.Panics(t, func() { Rat("zebra") })
}

func TestCfgAppliesMutationsInOrder(t *testing.T) {
	cfg := Cfg(Ticks(3), Ticks(5))
	assert.Equal(t, uint64(5), cfg.TickCount)
	require.NoError(t, cfg.Validate())
}

func TestCfgWithoutMutationsIsDefault(t *testing.T) {
	assert.Equal(t, config.Default().Fingerprint(), Cfg().Fingerprint())
}

func TestSeeds(t *testing.T) {
	cfg := Cfg(Seeds("3/2", "5", "0/0"))
	assert.Equal(t, "3/2", cfg.UpsilonSeed.String())
	assert.Equal(t, "5/1", cfg.BetaSeed.String())
	assert.True(t, cfg.KoppaSeed.Undefined())
}

func TestModeSetters(t *testing.T) {
	cfg := Cfg(Engine(config.EngineSlide), Psi(config.PsiRhoOnly))
	assert.Equal(t, config.EngineSlide, cfg.Engine)
	assert.Equal(t, config.PsiRhoOnly, cfg.Psi)
	require.NoError(t, cfg.Validate())
}
