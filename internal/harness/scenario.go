package harness

import (
	"context"

	"github.com/rigbyspace/operation-goldenrod/internal/config"
	"github.com/rigbyspace/operation-goldenrod/internal/rational"
)

// Scenario pairs a config with a stable name, so tests and their
// golden fixtures agree on what a run is called.
type Scenario struct {
	Name   string
	Config *config.Config
}

// Run executes the scenario.
func (s Scenario) Run(ctx context.Context) (*Capture, error) {
	return Run(ctx, s.Config)
}

// DefaultTick is the canonical single-tick scenario: every default
// setting, value seeds 1/1 and an unset kappa. The unset kappa absorbs
// both registers on the first engine step, so the fixture pins the
// undefined-propagation contract.
func DefaultTick() Scenario {
	cfg := config.Default()
	cfg.TickCount = 1
	return Scenario{Name: "default_tick", Config: cfg}
}

// LiveKoppa returns a scenario whose kappa seed is defined, so the
// engine adds stay finite and the transform and accrual paths actually
// run. Register magnitudes grow quickly under the default modes; keep
// ticks small.
func LiveKoppa(ticks uint64) Scenario {
	cfg := config.Default()
	cfg.TickCount = ticks
	cfg.KoppaSeed = rational.New(1, 1)
	return Scenario{Name: "live_koppa", Config: cfg}
}
