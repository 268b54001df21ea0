package runstore

import (
	"context"
	"fmt"

	"github.com/rigbyspace/operation-goldenrod/internal/config"
	"github.com/rigbyspace/operation-goldenrod/internal/emit"
	"github.com/rigbyspace/operation-goldenrod/internal/engine"
)

// VerifyResult reports the outcome of replaying a stored run.
type VerifyResult struct {
	RunID string
	// RecordsChecked counts compared records across both tables.
	RecordsChecked int
	Match          bool
	// Mismatch describes the first divergence. Empty when Match.
	Mismatch string
}

// Verify replays the run's stored canonical config and byte-compares
// every fresh record against the stored rows. A clean result proves
// the stored run is reproducible by this binary; any mismatch means
// the determinism contract broke between the recording and the
// verification.
//
// Divergence is reported in the result, not as an error. The error
// return covers the store itself: unknown id, unreadable rows, or a
// stored config document that no longer parses.
func (s *Store) Verify(ctx context.Context, runID string) (*VerifyResult, error) {
	run, err := s.GetRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("verify run: %w", err)
	}

	cfg, err := config.Parse(run.Config)
	if err != nil {
		return nil, fmt.Errorf("verify run: parse stored config: %w", err)
	}

	res := &VerifyResult{RunID: runID, Match: true}

	// The fingerprint is derived from the document, so a mismatch here
	// means the catalog row itself is inconsistent.
	if fp := cfg.Fingerprint(); fp != run.Fingerprint {
		res.Match = false
		res.Mismatch = fmt.Sprintf("config document hashes to %s, catalog says %s", fp, run.Fingerprint)
		return res, nil
	}

	storedEvents, err := s.ReadEventRecords(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("verify run: %w", err)
	}
	storedValues, err := s.ReadValueRecords(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("verify run: %w", err)
	}
	if len(storedEvents) != len(storedValues) {
		res.Match = false
		res.Mismatch = fmt.Sprintf("stored tables disagree: %d event records, %d value records",
			len(storedEvents), len(storedValues))
		return res, nil
	}

	sim, err := engine.NewSimulator(cfg)
	if err != nil {
		return nil, fmt.Errorf("verify run: %w", err)
	}

	cursor := 0
	observer := func(ev engine.StepEvent, st *engine.State) {
		if !res.Match {
			return
		}
		if cursor >= len(storedEvents) {
			res.Match = false
			res.Mismatch = fmt.Sprintf("replay produced more than the %d stored records", len(storedEvents))
			return
		}
		if diff := diffRecords("events", emit.EventsHeader, cursor, storedEvents[cursor], emit.EventRecord(ev, st)); diff != "" {
			res.Match = false
			res.Mismatch = diff
			return
		}
		if diff := diffRecords("values", emit.ValuesHeader, cursor, storedValues[cursor], emit.ValueRecord(ev, st)); diff != "" {
			res.Match = false
			res.Mismatch = diff
			return
		}
		cursor++
		res.RecordsChecked += 2
	}

	if err := sim.Run(ctx, observer); err != nil {
		return nil, fmt.Errorf("verify run: %w", err)
	}

	if res.Match && cursor < len(storedEvents) {
		res.Match = false
		res.Mismatch = fmt.Sprintf("stored run has %d records per table, replay produced %d",
			len(storedEvents), cursor)
	}

	return res, nil
}

// diffRecords returns a description of the first differing field, or
// the empty string when the records agree byte for byte.
func diffRecords(table string, header []string, index int, stored, replayed []string) string {
	if len(stored) != len(replayed) {
		return fmt.Sprintf("%s record %d: stored %d fields, replayed %d",
			table, index, len(stored), len(replayed))
	}
	for i := range stored {
		if stored[i] != replayed[i] {
			return fmt.Sprintf("%s record %d, column %s: stored %q, replayed %q",
				table, index, header[i], stored[i], replayed[i])
		}
	}
	return ""
}
