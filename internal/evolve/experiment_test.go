package evolve

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseExperiment_FullDocument(t *testing.T) {
	doc := `
experiment: {
	generations: 4
	population:  5
	elite:       2
	seed:        99
	target:      "phi"
	strategy:    "hill-climb"
	ticks_min:   3
	ticks_max:   6
	parallelism: 2
	base: {
		tick_count: 8
		triple_psi: true
		koppa_seed: "1/1"
	}
}
`
	exp, err := ParseExperiment([]byte(doc), "search.cue")
	require.NoError(t, err)

	require.Equal(t, 4, exp.Options.Generations)
	require.Equal(t, 5, exp.Options.Population)
	require.Equal(t, 2, exp.Options.Elite)
	require.Equal(t, "phi", exp.Options.Target)
	require.Equal(t, "hill-climb", exp.Options.Strategy)
	require.Equal(t, 3, exp.Options.TicksMin)
	require.Equal(t, 6, exp.Options.TicksMax)
	require.Equal(t, 2, exp.Options.Parallelism)
	require.Equal(t, int64(99), exp.Seed)

	require.NotNil(t, exp.Options.Base)
	require.Equal(t, uint64(8), exp.Options.Base.TickCount)
	require.True(t, exp.Options.Base.TriplePsi)
	require.Equal(t, "1/1", exp.Options.Base.KoppaSeed.String())
}

func TestParseExperiment_DefaultsWhenOmitted(t *testing.T) {
	exp, err := ParseExperiment([]byte("experiment: {}"), "search.cue")
	require.NoError(t, err)

	require.Equal(t, DefaultOptions(), exp.Options)
	require.Zero(t, exp.Seed)
	require.Nil(t, exp.Options.Base)
}

func TestParseExperiment_MissingBlock(t *testing.T) {
	_, err := ParseExperiment([]byte("other: 3"), "search.cue")
	require.ErrorContains(t, err, `no "experiment" block`)
}

func TestParseExperiment_RejectsBadSyntax(t *testing.T) {
	_, err := ParseExperiment([]byte("experiment: {"), "search.cue")
	require.Error(t, err)
}

func TestParseExperiment_RejectsWrongFieldType(t *testing.T) {
	_, err := ParseExperiment([]byte(`experiment: {generations: "ten"}`), "search.cue")
	require.ErrorContains(t, err, "generations")
}

func TestParseExperiment_RejectsUnknownTarget(t *testing.T) {
	_, err := ParseExperiment([]byte(`experiment: {target: "nonsense"}`), "search.cue")
	require.ErrorContains(t, err, "unknown target")
}

func TestParseExperiment_RejectsBadBaseValue(t *testing.T) {
	_, err := ParseExperiment([]byte(`experiment: {base: {koppa_seed: "zebra"}}`), "search.cue")
	require.ErrorContains(t, err, "base")
}

func TestParseExperiment_RejectsInvalidOptions(t *testing.T) {
	_, err := ParseExperiment([]byte(`experiment: {population: 1}`), "search.cue")
	require.ErrorContains(t, err, "population")
}

func TestLoadExperiment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "search.cue")
	doc := "experiment: {generations: 2, population: 4, ticks_min: 1, ticks_max: 2}"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	exp, err := LoadExperiment(path)
	require.NoError(t, err)
	require.Equal(t, 2, exp.Options.Generations)
	require.Equal(t, 4, exp.Options.Population)

	_, err = LoadExperiment(filepath.Join(dir, "missing.cue"))
	require.ErrorContains(t, err, "failed to read")
}
