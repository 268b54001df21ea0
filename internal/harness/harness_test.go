package harness

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rigbyspace/operation-goldenrod/internal/emit"
	"github.com/rigbyspace/operation-goldenrod/internal/engine"
	"github.com/rigbyspace/operation-goldenrod/internal/testutil"
)

func TestRunCapturesOneTick(t *testing.T) {
	cfg := testutil.Cfg(testutil.Ticks(1))

	capture, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, engine.MicroticksPerTick, capture.Microticks())
	assert.Len(t, capture.EventRecords, engine.MicroticksPerTick)
	assert.Len(t, capture.ValueRecords, engine.MicroticksPerTick)
	require.NotNil(t, capture.Final)

	first := capture.Events[0]
	assert.Equal(t, uint64(1), first.Tick)
	assert.Equal(t, 1, first.Microtick)
	assert.Equal(t, engine.PhaseEngine, first.Phase)
}

func TestRunClonesConfig(t *testing.T) {
	cfg := testutil.Cfg(testutil.Ticks(1))

	capture, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	// Mutating the caller's config after the run must not reach the
	// capture.
	cfg.TickCount = 99
	assert.Equal(t, uint64(1), capture.Config.TickCount)
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	cfg := testutil.Cfg()
	cfg.UpsilonSeed = nil

	_, err := Run(context.Background(), cfg)
	require.Error(t, err)
}

func TestRunHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, testutil.Cfg(testutil.Ticks(5)))
	require.ErrorIs(t, err, context.Canceled)
}

// TestCaptureAlignsWithCSV reads the captured CSV bytes back and
// requires them to be the header plus exactly the captured rows, in
// order. The two views come from one observer pass and must agree.
func TestCaptureAlignsWithCSV(t *testing.T) {
	capture, err := Run(context.Background(), testutil.Cfg(testutil.Ticks(2)))
	require.NoError(t, err)

	events, err := csv.NewReader(bytes.NewReader(capture.EventsCSV)).ReadAll()
	require.NoError(t, err)
	require.Len(t, events, 1+capture.Microticks())
	assert.Equal(t, emit.EventsHeader, events[0])
	for i, row := range events[1:] {
		assert.Equal(t, capture.EventRecords[i], row, "events row %d", i)
	}

	values, err := csv.NewReader(bytes.NewReader(capture.ValuesCSV)).ReadAll()
	require.NoError(t, err)
	require.Len(t, values, 1+capture.Microticks())
	assert.Equal(t, emit.ValuesHeader, values[0])
	for i, row := range values[1:] {
		assert.Equal(t, capture.ValueRecords[i], row, "values row %d", i)
	}
}
