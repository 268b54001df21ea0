package config

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Canonical Document Tests
// =============================================================================

func TestConfig_CanonicalDocument_Golden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "default_config", Default().CanonicalDocument())
}

func TestConfig_CanonicalDocument_RoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Engine = EngineMulti
	cfg.UpsilonTrack = TrackMulti
	cfg.BetaTrack = TrackSlide
	cfg.DualTrackSymmetry = true
	cfg.TriplePsi = true
	cfg.TickCount = 42
	cfg.KoppaWrapThreshold = 17
	cfg.ModulusBound.SetString("987654321098765432109876543210", 10)
	cfg.UpsilonSeed.SetInt64(4, 6)
	cfg.KoppaSeed.SetInt64(1, 1)

	doc := cfg.CanonicalDocument()
	reparsed, err := Parse(doc)
	require.NoError(t, err)
	assert.Equal(t, doc, reparsed.CanonicalDocument(), "encode/parse/encode must be a fixed point")
	assert.Equal(t, cfg.Fingerprint(), reparsed.Fingerprint())
}

func TestConfig_CanonicalDocument_Deterministic(t *testing.T) {
	a := Default().CanonicalDocument()
	b := Default().CanonicalDocument()
	assert.Equal(t, a, b)
}

// =============================================================================
// Fingerprint Tests
// =============================================================================

func TestConfig_Fingerprint_DistinguishesSettings(t *testing.T) {
	base := Default()
	changed := Default()
	changed.TickCount = 11
	assert.NotEqual(t, base.Fingerprint(), changed.Fingerprint())
}

func TestConfig_Fingerprint_SeedComponentsMatter(t *testing.T) {
	// 4/6 and 2/3 denote the same value but are different configs
	a := Default()
	a.UpsilonSeed.SetInt64(4, 6)
	b := Default()
	b.UpsilonSeed.SetInt64(2, 3)
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}

func TestConfig_Fingerprint_CloneMatchesSource(t *testing.T) {
	cfg := Default()
	cfg.ModularWrap = true
	cfg.ModulusBound.SetInt64(1000)
	assert.Equal(t, cfg.Fingerprint(), cfg.Clone().Fingerprint())
}
