package runstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Run is one catalog row.
type Run struct {
	ID          string
	Label       string
	CreatedAt   time.Time
	Fingerprint string
	TickCount   uint64
	// Config is the canonical config document the run executed.
	Config []byte
}

// GetRun retrieves a single run by id.
// Returns sql.ErrNoRows if not found.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, label, created_at, fingerprint, tick_count, config
		FROM runs
		WHERE id = ?
	`, id)

	return scanRun(row)
}

// ListRuns returns every stored run ordered by creation time, oldest
// first, with id as the tiebreak so the order is deterministic.
// Returns an empty slice (not nil) when the store is empty.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, label, created_at, fingerprint, tick_count, config
		FROM runs
		ORDER BY created_at ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	if runs == nil {
		runs = []Run{}
	}

	return runs, nil
}

// FindRunsByLabel returns runs whose stored label equals the given one
// after NFC normalization, ordered like ListRuns.
func (s *Store) FindRunsByLabel(ctx context.Context, label string) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, label, created_at, fingerprint, tick_count, config
		FROM runs
		WHERE label = ?
		ORDER BY created_at ASC, id COLLATE BINARY ASC
	`, norm.NFC.String(label))
	if err != nil {
		return nil, fmt.Errorf("find runs by label: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	if runs == nil {
		runs = []Run{}
	}

	return runs, nil
}

// scanner abstracts sql.Row and sql.Rows for the shared scan path.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	var createdAt string
	var configDoc string

	err := row.Scan(&run.ID, &run.Label, &createdAt, &run.Fingerprint, &run.TickCount, &configDoc)
	if err == sql.ErrNoRows {
		return Run{}, err
	}
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Run{}, fmt.Errorf("scan run: parse created_at: %w", err)
	}
	run.Config = []byte(configDoc)

	return run, nil
}

// ReadEventRecords returns the stored events-table records for a run
// in emission order, fields exactly as emitted.
func (s *Store) ReadEventRecords(ctx context.Context, runID string) ([][]string, error) {
	return s.readRecords(ctx, selectEventSQL, runID)
}

// ReadValueRecords returns the stored values-table records for a run
// in emission order, fields exactly as emitted.
func (s *Store) ReadValueRecords(ctx context.Context, runID string) ([][]string, error) {
	return s.readRecords(ctx, selectValueSQL, runID)
}

func (s *Store) readRecords(ctx context.Context, query, runID string) ([][]string, error) {
	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("record columns: %w", err)
	}

	var records [][]string
	for rows.Next() {
		record := make([]string, len(cols))
		dest := make([]any, len(cols))
		for i := range record {
			dest[i] = &record[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	if records == nil {
		records = [][]string{}
	}

	return records, nil
}

// DeleteRun removes a run and, through the cascading foreign keys, all
// of its records. Deleting an unknown id is a no-op.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	return nil
}
