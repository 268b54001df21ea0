// Package harness runs simulator configurations end to end and
// captures everything a conformance test needs from a single pass: the
// observer event stream, the rendered table rows, and the exact CSV
// bytes a Recorder would write. Golden fixtures and invariant
// assertions both read from the same Capture, so each scenario is
// executed once per test.
package harness

import (
	"bytes"
	"context"

	"github.com/rigbyspace/operation-goldenrod/internal/config"
	"github.com/rigbyspace/operation-goldenrod/internal/emit"
	"github.com/rigbyspace/operation-goldenrod/internal/engine"
)

// Capture holds one complete run. The CSV fields carry the same bytes
// the run command writes to disk, so fixtures pinned here also pin the
// command-line output contract.
type Capture struct {
	// Config is the simulator's validated clone of the scenario
	// config.
	Config *config.Config

	// Events is the observer stream in emission order, one entry per
	// microtick.
	Events []engine.StepEvent

	// EventRecords and ValueRecords are the rendered table rows,
	// headers excluded, aligned index for index with Events.
	EventRecords [][]string
	ValueRecords [][]string

	// EventsCSV and ValuesCSV are the complete tables as written,
	// headers included.
	EventsCSV []byte
	ValuesCSV []byte

	// Final is the state after the last microtick. Read-only.
	Final *engine.State
}

// Microticks reports how many microticks the run emitted.
func (c *Capture) Microticks() int {
	return len(c.Events)
}

// Run executes cfg to completion and captures the run. The recorder
// and the row capture observe the same pass, so the CSV bytes and the
// record slices can never drift apart.
func Run(ctx context.Context, cfg *config.Config) (*Capture, error) {
	sim, err := engine.NewSimulator(cfg)
	if err != nil {
		return nil, err
	}

	var events, values bytes.Buffer
	rec, err := emit.NewRecorder(&events, &values)
	if err != nil {
		return nil, err
	}

	capture := &Capture{Config: sim.Config()}
	observer := emit.MultiObserver(rec.Observe, func(ev engine.StepEvent, st *engine.State) {
		capture.Events = append(capture.Events, ev)
		capture.EventRecords = append(capture.EventRecords, emit.EventRecord(ev, st))
		capture.ValueRecords = append(capture.ValueRecords, emit.ValueRecord(ev, st))
	})

	if err := sim.Run(ctx, observer); err != nil {
		return nil, err
	}
	if err := rec.Flush(); err != nil {
		return nil, err
	}

	capture.EventsCSV = events.Bytes()
	capture.ValuesCSV = values.Bytes()
	capture.Final = sim.State()
	return capture, nil
}
