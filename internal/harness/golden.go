package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden executes the scenario and compares both emitted tables
// against golden fixtures. Fixtures live at
// testdata/golden/<name>_events.golden and
// testdata/golden/<name>_values.golden.
//
// To regenerate fixtures, run:
//
//	go test ./internal/harness -update
//
// It returns the capture so the caller can layer further assertions on
// the same run.
func RunWithGolden(t *testing.T, s Scenario) (*Capture, error) {
	t.Helper()

	capture, err := s.Run(context.Background())
	if err != nil {
		return nil, err
	}
	AssertGolden(t, s.Name, capture)
	return capture, nil
}

// AssertGolden compares an already captured run against the named
// fixture pair, without re-running anything.
func AssertGolden(t *testing.T, name string, capture *Capture) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name+"_events", capture.EventsCSV)
	g.Assert(t, name+"_values", capture.ValuesCSV)
}
