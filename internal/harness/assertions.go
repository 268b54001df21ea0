package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rigbyspace/operation-goldenrod/internal/emit"
	"github.com/rigbyspace/operation-goldenrod/internal/engine"
)

// AssertSchedule fails the test when the captured stream deviates from
// the phase clock: ticks count up from 1, microticks cycle 1 through
// 11, and every event carries the phase PhaseFor assigns to its slot.
func AssertSchedule(t *testing.T, capture *Capture) {
	t.Helper()

	require.Equal(t, int(capture.Config.TickCount)*engine.MicroticksPerTick, capture.Microticks(),
		"run must emit exactly one event per microtick")
	for i, ev := range capture.Events {
		wantTick := uint64(i/engine.MicroticksPerTick) + 1
		wantMt := i%engine.MicroticksPerTick + 1
		assert.Equal(t, wantTick, ev.Tick, "event %d tick", i)
		assert.Equal(t, wantMt, ev.Microtick, "event %d microtick", i)
		assert.Equal(t, engine.PhaseFor(wantMt), ev.Phase, "event %d phase", i)
	}
}

// AssertForcedEmission checks that the forced emission flag marks
// microtick 10 and nothing else.
func AssertForcedEmission(t *testing.T, capture *Capture) {
	t.Helper()

	for i, ev := range capture.Events {
		assert.Equal(t, ev.Microtick == 10, ev.ForcedEmission, "event %d forced emission", i)
	}
}

// AssertRecordShape checks both tables row by row against their header
// widths and requires one row per captured event.
func AssertRecordShape(t *testing.T, capture *Capture) {
	t.Helper()

	require.Len(t, capture.EventRecords, capture.Microticks())
	require.Len(t, capture.ValueRecords, capture.Microticks())
	for i, row := range capture.EventRecords {
		assert.Len(t, row, len(emit.EventsHeader), "events row %d", i)
	}
	for i, row := range capture.ValueRecords {
		assert.Len(t, row, len(emit.ValuesHeader), "values row %d", i)
	}
}

// AssertDeterministic reruns the capture's config and requires byte
// identical tables. Any dependence on wall clock, map order, or shared
// state surfaces here.
func AssertDeterministic(t *testing.T, capture *Capture) {
	t.Helper()

	again, err := Run(context.Background(), capture.Config)
	require.NoError(t, err)
	require.Equal(t, string(capture.EventsCSV), string(again.EventsCSV),
		"events table must replay byte for byte")
	require.Equal(t, string(capture.ValuesCSV), string(again.ValuesCSV),
		"values table must replay byte for byte")
}
