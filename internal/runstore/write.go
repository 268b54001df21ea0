package runstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/rigbyspace/operation-goldenrod/internal/config"
	"github.com/rigbyspace/operation-goldenrod/internal/emit"
	"github.com/rigbyspace/operation-goldenrod/internal/engine"
)

// RunWriter buffers one run's records in memory and commits them in a
// single transaction. Use it as a run observer: attach Observe to the
// simulator, then call Commit once the run returns.
//
// A RunWriter is one-shot; committing twice would duplicate the run
// under a fresh id on the first conflict-free insert, so don't.
type RunWriter struct {
	store *Store

	id          string
	label       string
	createdAt   time.Time
	configDoc   []byte
	fingerprint string
	tickCount   uint64

	events [][]string
	values [][]string
}

// NewRunWriter prepares a writer for one run of cfg. The catalog row
// snapshots the canonical config document at this point, so the caller
// must run the simulator with the same effective config.
func (s *Store) NewRunWriter(cfg *config.Config, label string) *RunWriter {
	return &RunWriter{
		store:       s,
		id:          uuid.NewString(),
		label:       norm.NFC.String(label),
		createdAt:   time.Now().UTC(),
		configDoc:   cfg.CanonicalDocument(),
		fingerprint: cfg.Fingerprint(),
		tickCount:   cfg.TickCount,
	}
}

// ID returns the run id the records will be stored under.
func (w *RunWriter) ID() string {
	return w.id
}

// Observe buffers the records for one microtick.
func (w *RunWriter) Observe(ev engine.StepEvent, st *engine.State) {
	w.events = append(w.events, emit.EventRecord(ev, st))
	w.values = append(w.values, emit.ValueRecord(ev, st))
}

// Commit writes the catalog row and every buffered record in one
// transaction and returns the run id. Nothing is visible to readers
// until the transaction commits.
func (w *RunWriter) Commit(ctx context.Context) (string, error) {
	tx, err := w.store.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("commit run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, label, created_at, fingerprint, tick_count, config)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		w.id,
		w.label,
		w.createdAt.Format(time.RFC3339Nano),
		w.fingerprint,
		w.tickCount,
		string(w.configDoc),
	)
	if err != nil {
		return "", fmt.Errorf("commit run: insert catalog row: %w", err)
	}

	eventStmt, err := tx.PrepareContext(ctx, insertEventSQL)
	if err != nil {
		return "", fmt.Errorf("commit run: prepare events insert: %w", err)
	}
	defer eventStmt.Close()

	for _, record := range w.events {
		if _, err := eventStmt.ExecContext(ctx, recordArgs(w.id, record)...); err != nil {
			return "", fmt.Errorf("commit run: insert event record: %w", err)
		}
	}

	valueStmt, err := tx.PrepareContext(ctx, insertValueSQL)
	if err != nil {
		return "", fmt.Errorf("commit run: prepare values insert: %w", err)
	}
	defer valueStmt.Close()

	for _, record := range w.values {
		if _, err := valueStmt.ExecContext(ctx, recordArgs(w.id, record)...); err != nil {
			return "", fmt.Errorf("commit run: insert value record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit run: commit: %w", err)
	}

	return w.id, nil
}

// recordArgs prepends the run id to a record for the derived inserts.
func recordArgs(runID string, record []string) []any {
	args := make([]any, 0, len(record)+1)
	args = append(args, runID)
	for _, field := range record {
		args = append(args, field)
	}
	return args
}

// RecordRun executes cfg and stores the complete run under label,
// returning the new run id. The run is committed atomically after the
// simulation finishes; a cancelled or failed run stores nothing.
func (s *Store) RecordRun(ctx context.Context, cfg *config.Config, label string) (string, error) {
	sim, err := engine.NewSimulator(cfg)
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}

	// Snapshot the simulator's private clone so the stored document
	// reflects exactly what ran.
	w := s.NewRunWriter(sim.Config(), label)
	if err := sim.Run(ctx, w.Observe); err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}

	id, err := w.Commit(ctx)
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}
	return id, nil
}
