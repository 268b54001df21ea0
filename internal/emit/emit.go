// Package emit adapts simulation runs to tabular outputs. The two
// tables mirror the event stream and the raw register state; their
// column order is part of the output contract and consumed by the
// analysis and persistence layers.
package emit

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rigbyspace/operation-goldenrod/internal/config"
	"github.com/rigbyspace/operation-goldenrod/internal/engine"
	"github.com/rigbyspace/operation-goldenrod/internal/rational"
)

// EventsHeader is the fixed column set of the events table: one row per
// microtick with the event flags and per-microtick observation flags.
var EventsHeader = []string{
	"tick", "mt", "phase",
	"rho_event", "psi_fired", "mu_zero", "forced_emission",
	"ratio_triggered", "triple_psi", "dual_engine",
	"koppa_sample_index", "ratio_threshold", "psi_strength", "sign_flip",
}

// ValuesHeader is the fixed column set of the values table: one row per
// microtick with raw numerator/denominator components. Nothing is
// reduced on the way out.
var ValuesHeader = []string{
	"tick", "mt",
	"upsilon_num", "upsilon_den",
	"beta_num", "beta_den",
	"koppa_num", "koppa_den",
	"koppa_sample_num", "koppa_sample_den",
	"prev_upsilon_num", "prev_upsilon_den",
	"prev_beta_num", "prev_beta_den",
	"koppa_stack0_num", "koppa_stack0_den",
	"koppa_stack1_num", "koppa_stack1_den",
	"koppa_stack2_num", "koppa_stack2_den",
	"koppa_stack3_num", "koppa_stack3_den",
	"koppa_stack_size",
	"delta_upsilon_num", "delta_upsilon_den",
	"delta_beta_num", "delta_beta_den",
	"triangle_phi_over_epsilon_num", "triangle_phi_over_epsilon_den",
	"triangle_prev_over_phi_num", "triangle_prev_over_phi_den",
	"triangle_epsilon_over_prev_num", "triangle_epsilon_over_prev_den",
}

// Recorder writes the events and values tables from a run's observer
// stream. Either writer may be nil to skip that table. Write errors are
// sticky; the first one surfaces from Flush.
type Recorder struct {
	events *csv.Writer
	values *csv.Writer
	err    error
}

// NewRecorder wraps the given writers and emits both headers
// immediately, so an empty run still produces well-formed tables.
func NewRecorder(events, values io.Writer) (*Recorder, error) {
	r := &Recorder{}
	if events != nil {
		r.events = csv.NewWriter(events)
		if err := r.events.Write(EventsHeader); err != nil {
			return nil, fmt.Errorf("failed to write events header: %w", err)
		}
	}
	if values != nil {
		r.values = csv.NewWriter(values)
		if err := r.values.Write(ValuesHeader); err != nil {
			return nil, fmt.Errorf("failed to write values header: %w", err)
		}
	}
	return r, nil
}

// Observe appends one row to each table. It has the observer signature,
// so a Recorder plugs straight into Simulator.Run.
func (r *Recorder) Observe(ev engine.StepEvent, st *engine.State) {
	if r.err != nil {
		return
	}
	if r.events != nil {
		if err := r.events.Write(EventRecord(ev, st)); err != nil {
			r.err = fmt.Errorf("failed to write events row: %w", err)
			return
		}
	}
	if r.values != nil {
		if err := r.values.Write(ValueRecord(ev, st)); err != nil {
			r.err = fmt.Errorf("failed to write values row: %w", err)
		}
	}
}

// Flush drains both table writers and reports the first error seen
// anywhere in the stream.
func (r *Recorder) Flush() error {
	if r.events != nil {
		r.events.Flush()
	}
	if r.values != nil {
		r.values.Flush()
	}
	if r.err != nil {
		return r.err
	}
	if r.events != nil {
		if err := r.events.Error(); err != nil {
			return fmt.Errorf("failed to flush events table: %w", err)
		}
	}
	if r.values != nil {
		if err := r.values.Error(); err != nil {
			return fmt.Errorf("failed to flush values table: %w", err)
		}
	}
	return nil
}

// EventRecord renders one events-table row. The runstore persists the
// same records, so the two sinks stay comparable byte for byte.
func EventRecord(ev engine.StepEvent, st *engine.State) []string {
	return []string{
		strconv.FormatUint(ev.Tick, 10),
		strconv.Itoa(ev.Microtick),
		ev.Phase.String(),
		boolField(ev.RhoEvent),
		boolField(ev.PsiFired),
		boolField(ev.MuZero),
		boolField(ev.ForcedEmission),
		boolField(st.RatioTriggeredRecent),
		boolField(st.PsiTripleRecent),
		boolField(st.DualEngineLastStep),
		strconv.Itoa(st.KoppaSampleIndex),
		boolField(st.RatioThresholdRecent),
		boolField(st.PsiStrengthApplied),
		boolField(st.SignFlipPolarity),
	}
}

// ValueRecord renders one values-table row.
func ValueRecord(ev engine.StepEvent, st *engine.State) []string {
	row := make([]string, 0, len(ValuesHeader))
	row = append(row,
		strconv.FormatUint(ev.Tick, 10),
		strconv.Itoa(ev.Microtick),
	)
	row = appendComponents(row, &st.Upsilon, &st.Beta, &st.Koppa,
		&st.KoppaSample, &st.PrevUpsilon, &st.PrevBeta)
	for i := range st.KoppaStack {
		row = appendComponents(row, &st.KoppaStack[i])
	}
	row = append(row, strconv.Itoa(st.KoppaStackSize))
	row = appendComponents(row, &st.DeltaUpsilon, &st.DeltaBeta,
		&st.TrianglePhiOverEpsilon, &st.TrianglePrevOverPhi,
		&st.TriangleEpsilonOverPrev)
	return row
}

func appendComponents(row []string, values ...*rational.Rational) []string {
	for _, v := range values {
		row = append(row, v.Num().String(), v.Den().String())
	}
	return row
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// MultiObserver fans one observer stream out to several observers, in
// order. Nil entries are skipped.
func MultiObserver(observers ...engine.Observer) engine.Observer {
	return func(ev engine.StepEvent, st *engine.State) {
		for _, observe := range observers {
			if observe != nil {
				observe(ev, st)
			}
		}
	}
}

// RunToFiles executes a complete run and writes the events and values
// tables to the given paths. The files are created fresh; a run error
// leaves whatever rows were already flushed.
func RunToFiles(ctx context.Context, cfg *config.Config, eventsPath, valuesPath string) error {
	sim, err := engine.NewSimulator(cfg)
	if err != nil {
		return err
	}

	eventsFile, err := os.Create(eventsPath)
	if err != nil {
		return fmt.Errorf("failed to create events file: %w", err)
	}
	valuesFile, err := os.Create(valuesPath)
	if err != nil {
		eventsFile.Close()
		return fmt.Errorf("failed to create values file: %w", err)
	}

	rec, err := NewRecorder(eventsFile, valuesFile)
	if err == nil {
		err = sim.Run(ctx, rec.Observe)
	}
	if err == nil {
		err = rec.Flush()
	}

	if cerr := eventsFile.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("failed to close events file: %w", cerr)
	}
	if cerr := valuesFile.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("failed to close values file: %w", cerr)
	}
	return err
}
