package emit

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/rigbyspace/operation-goldenrod/internal/config"
	"github.com/rigbyspace/operation-goldenrod/internal/engine"
)

// BenchHeader is the compact engine-only table: registers and kappa
// history, no deltas, no triangle ratios.
var BenchHeader = []string{
	"tick", "mt",
	"upsilon_num", "upsilon_den",
	"beta_num", "beta_den",
	"koppa_num", "koppa_den",
	"koppa_stack0_num", "koppa_stack0_den",
	"koppa_stack1_num", "koppa_stack1_den",
	"koppa_stack2_num", "koppa_stack2_den",
	"koppa_stack3_num", "koppa_stack3_den",
	"koppa_stack_size",
}

// BenchRun drives a stripped propagation loop and writes one BenchHeader
// row per microtick. The loop keeps the full microtick schedule but
// skips pattern detection and ratio triggers entirely; the transform
// fires only in every-memory mode. That keeps the loop's cost dominated
// by raw rational arithmetic, which is what the bench command times.
// Returns the number of rows written.
func BenchRun(ctx context.Context, cfg *config.Config, w io.Writer) (int, error) {
	if err := cfg.Validate(); err != nil {
		return 0, fmt.Errorf("failed to validate config: %w", err)
	}
	cfg = cfg.Clone()

	var st engine.State
	st.Reset(cfg)

	out := csv.NewWriter(w)
	if err := out.Write(BenchHeader); err != nil {
		return 0, fmt.Errorf("failed to write bench header: %w", err)
	}

	rows := 0
	for tick := uint64(1); tick <= cfg.TickCount; tick++ {
		if err := ctx.Err(); err != nil {
			return rows, err
		}
		st.Tick = tick

		for microtick := 1; microtick <= engine.MicroticksPerTick; microtick++ {
			switch engine.PhaseFor(microtick) {
			case engine.PhaseEngine:
				st.Epsilon.Set(&st.Upsilon)
				engine.EngineStep(cfg, &st, microtick)
				st.RhoPending = false
				st.RhoLatched = false
			case engine.PhaseMemory:
				fired := false
				if cfg.Psi == config.PsiEveryMemory {
					fired = engine.TransformStep(cfg, &st)
				}
				engine.AccrualStep(cfg, &st, fired, true, microtick)
			case engine.PhaseReset:
				engine.AccrualStep(cfg, &st, false, false, microtick)
			}

			if err := out.Write(benchRecord(tick, microtick, &st)); err != nil {
				return rows, fmt.Errorf("failed to write bench row: %w", err)
			}
			rows++
		}
	}

	out.Flush()
	if err := out.Error(); err != nil {
		return rows, fmt.Errorf("failed to flush bench table: %w", err)
	}
	return rows, nil
}

func benchRecord(tick uint64, microtick int, st *engine.State) []string {
	row := make([]string, 0, len(BenchHeader))
	row = append(row,
		strconv.FormatUint(tick, 10),
		strconv.Itoa(microtick),
	)
	row = appendComponents(row, &st.Upsilon, &st.Beta, &st.Koppa)
	for i := range st.KoppaStack {
		row = appendComponents(row, &st.KoppaStack[i])
	}
	return append(row, strconv.Itoa(st.KoppaStackSize))
}
