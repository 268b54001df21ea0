package evolve

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/rigbyspace/operation-goldenrod/internal/config"
)

// Experiment is a search description loaded from a CUE document. Seed
// feeds the search's random source; zero means the caller picks one.
type Experiment struct {
	Options Options
	Seed    int64
}

// LoadExperiment reads a CUE experiment file from disk.
func LoadExperiment(path string) (*Experiment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read experiment file: %w", err)
	}
	return ParseExperiment(data, filepath.Base(path))
}

// ParseExperiment compiles a CUE experiment document. The expected
// shape, with every field optional:
//
//	experiment: {
//		generations: 12
//		population:  10
//		elite:       3
//		seed:        42
//		target:      "phi"
//		strategy:    "hill-climb"
//		ticks_min:   6
//		ticks_max:   9
//		base: {
//			tick_count: 8
//			triple_psi: true
//		}
//	}
//
// Omitted fields keep the defaults from DefaultOptions. The base block
// uses the same keys as a run configuration document and overlays the
// built-in search baseline.
func ParseExperiment(data []byte, filename string) (*Experiment, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("failed to compile experiment: %w", firstCUEError(err))
	}

	root := v.LookupPath(cue.ParsePath("experiment"))
	if !root.Exists() {
		return nil, fmt.Errorf("experiment document %s has no \"experiment\" block", filename)
	}

	exp := &Experiment{Options: DefaultOptions()}
	intFields := []struct {
		name string
		dst  *int
	}{
		{"generations", &exp.Options.Generations},
		{"population", &exp.Options.Population},
		{"elite", &exp.Options.Elite},
		{"ticks_min", &exp.Options.TicksMin},
		{"ticks_max", &exp.Options.TicksMax},
		{"parallelism", &exp.Options.Parallelism},
	}
	for _, f := range intFields {
		if err := applyIntField(root, f.name, f.dst); err != nil {
			return nil, err
		}
	}
	if err := applyStringField(root, "target", &exp.Options.Target); err != nil {
		return nil, err
	}
	if err := applyStringField(root, "strategy", &exp.Options.Strategy); err != nil {
		return nil, err
	}

	if seedVal := root.LookupPath(cue.ParsePath("seed")); seedVal.Exists() {
		n, err := seedVal.Int64()
		if err != nil {
			return nil, fmt.Errorf("experiment field seed: %w", firstCUEError(err))
		}
		exp.Seed = n
	}

	if baseVal := root.LookupPath(cue.ParsePath("base")); baseVal.Exists() {
		var raw map[string]any
		if err := baseVal.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to decode base block: %w", firstCUEError(err))
		}
		cfg := baselineConfig()
		if err := config.Apply(cfg, raw); err != nil {
			return nil, fmt.Errorf("failed to apply base block: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("base configuration is invalid: %w", err)
		}
		exp.Options.Base = cfg
	}

	if err := exp.Options.validate(); err != nil {
		return nil, fmt.Errorf("failed to validate experiment: %w", err)
	}
	return exp, nil
}

func applyIntField(v cue.Value, name string, dst *int) error {
	fv := v.LookupPath(cue.ParsePath(name))
	if !fv.Exists() {
		return nil
	}
	n, err := fv.Int64()
	if err != nil {
		return fmt.Errorf("experiment field %s: %w", name, firstCUEError(err))
	}
	*dst = int(n)
	return nil
}

func applyStringField(v cue.Value, name string, dst *string) error {
	fv := v.LookupPath(cue.ParsePath(name))
	if !fv.Exists() {
		return nil
	}
	s, err := fv.String()
	if err != nil {
		return fmt.Errorf("experiment field %s: %w", name, firstCUEError(err))
	}
	*dst = s
	return nil
}

// firstCUEError unwraps a CUE error list to its first entry, with
// position info when CUE recorded any.
func firstCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		pos := positions[0]
		return fmt.Errorf("%s:%d:%d: %s", pos.Filename(), pos.Line(), pos.Column(), first.Error())
	}
	return first
}
