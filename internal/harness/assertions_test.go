package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rigbyspace/operation-goldenrod/internal/config"
)

func TestAssertionsHoldOnLiveRun(t *testing.T) {
	capture, err := LiveKoppa(3).Run(context.Background())
	require.NoError(t, err)

	AssertSchedule(t, capture)
	AssertForcedEmission(t, capture)
	AssertRecordShape(t, capture)
	AssertDeterministic(t, capture)
}

// TestAssertionsHoldAcrossModes sweeps the engine modes under a defined
// kappa seed. The structural invariants do not depend on which
// propagation rule runs.
func TestAssertionsHoldAcrossModes(t *testing.T) {
	modes := []config.EngineMode{
		config.EngineAdd,
		config.EngineMulti,
		config.EngineSlide,
		config.EngineDeltaAdd,
	}
	for _, mode := range modes {
		t.Run(mode.String(), func(t *testing.T) {
			s := LiveKoppa(2)
			s.Config.Engine = mode

			capture, err := s.Run(context.Background())
			require.NoError(t, err)

			AssertSchedule(t, capture)
			AssertForcedEmission(t, capture)
			AssertRecordShape(t, capture)
			AssertDeterministic(t, capture)
		})
	}
}
