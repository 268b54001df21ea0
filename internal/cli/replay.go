package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/rigbyspace/operation-goldenrod/internal/runstore"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	All      bool
}

// ReplayReport holds the verification result for a single run.
type ReplayReport struct {
	RunID          string `json:"run_id"`
	Label          string `json:"label,omitempty"`
	RecordsChecked int    `json:"records_checked"`
	Match          bool   `json:"match"`
	Mismatch       string `json:"mismatch,omitempty"`
}

// RunListing is one stored run in the listing output.
type RunListing struct {
	ID          string `json:"id"`
	Label       string `json:"label,omitempty"`
	CreatedAt   string `json:"created_at"`
	Ticks       uint64 `json:"ticks"`
	Fingerprint string `json:"fingerprint"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay [run-id]",
		Short: "Verify recorded runs replay byte-identically",
		Long: `Re-execute recorded runs from their stored config and compare every
record against the stored tables. Without arguments the stored runs are
listed; with a run id that run is verified; with --all every run is.

A divergence means the determinism contract broke between recording
and verification and exits with status 1.

Example:
  trts replay --db runs.db
  trts replay --db runs.db 0198a7e2
  trts replay --db runs.db --all`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := ""
			if len(args) == 1 {
				runID = args[0]
			}
			return runReplay(opts, runID, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the run database (required)")
	cmd.Flags().BoolVar(&opts.All, "all", false, "verify every stored run")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runReplay(opts *ReplayOptions, runID string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	st, err := runstore.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	switch {
	case opts.All:
		return replayAll(ctx, formatter, st)
	case runID != "":
		return replayOne(ctx, formatter, st, runID)
	default:
		return listRuns(ctx, formatter, st)
	}
}

func replayOne(ctx context.Context, formatter *OutputFormatter, st *runstore.Store, runID string) error {
	run, err := st.GetRun(ctx, runID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", runID))
		}
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	result, err := st.Verify(ctx, runID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to replay run", err)
	}
	report := buildReplayReport(run, result)

	if formatter.Format == "json" {
		if report.Match {
			return formatter.Success(report)
		}
		return outputReplayFailure(formatter, []ReplayReport{report})
	}

	printReplayLine(formatter, report)
	if !report.Match {
		return NewExitError(ExitFailure, "replay diverged from the recorded run")
	}
	return nil
}

func replayAll(ctx context.Context, formatter *OutputFormatter, st *runstore.Store) error {
	runs, err := st.ListRuns(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}
	if len(runs) == 0 {
		return formatter.Success("no recorded runs")
	}

	reports := make([]ReplayReport, 0, len(runs))
	diverged := 0
	for _, run := range runs {
		result, err := st.Verify(ctx, run.ID)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay run %s", run.ID), err)
		}
		report := buildReplayReport(run, result)
		if !report.Match {
			diverged++
		}
		reports = append(reports, report)
	}

	if formatter.Format == "json" {
		if diverged == 0 {
			return formatter.Success(reports)
		}
		return outputReplayFailure(formatter, reports)
	}

	for _, report := range reports {
		printReplayLine(formatter, report)
	}
	fmt.Fprintf(formatter.Writer, "\nreplayed %d run(s), %d diverged\n", len(reports), diverged)
	if diverged > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d run(s) diverged", diverged))
	}
	return nil
}

func listRuns(ctx context.Context, formatter *OutputFormatter, st *runstore.Store) error {
	runs, err := st.ListRuns(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	listings := make([]RunListing, 0, len(runs))
	for _, run := range runs {
		listings = append(listings, RunListing{
			ID:          run.ID,
			Label:       run.Label,
			CreatedAt:   run.CreatedAt.UTC().Format(time.RFC3339),
			Ticks:       run.TickCount,
			Fingerprint: run.Fingerprint,
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(listings)
	}

	if len(listings) == 0 {
		fmt.Fprintln(formatter.Writer, "no recorded runs")
		return nil
	}
	for _, l := range listings {
		label := l.Label
		if label == "" {
			label = "-"
		}
		fmt.Fprintf(formatter.Writer, "%s  %-12s  %s  ticks=%d  %s\n",
			l.ID, label, l.CreatedAt, l.Ticks, shortFingerprint(l.Fingerprint))
	}
	return nil
}

func buildReplayReport(run runstore.Run, result *runstore.VerifyResult) ReplayReport {
	return ReplayReport{
		RunID:          result.RunID,
		Label:          run.Label,
		RecordsChecked: result.RecordsChecked,
		Match:          result.Match,
		Mismatch:       result.Mismatch,
	}
}

func printReplayLine(formatter *OutputFormatter, report ReplayReport) {
	if report.Match {
		fmt.Fprintf(formatter.Writer, "✓ %s (%d records)\n", report.RunID, report.RecordsChecked)
		return
	}
	fmt.Fprintf(formatter.Writer, "✗ %s diverged: %s\n", report.RunID, report.Mismatch)
}

// outputReplayFailure mirrors the JSON error envelope: the full results
// ride in data while the first divergence becomes the error.
func outputReplayFailure(formatter *OutputFormatter, reports []ReplayReport) error {
	first := ""
	diverged := 0
	for _, report := range reports {
		if !report.Match {
			diverged++
			if first == "" {
				first = report.Mismatch
			}
		}
	}

	response := CLIResponse{
		Status: "error",
		Data:   reports,
		Error: &CLIError{
			Code:    "divergence",
			Message: first,
		},
	}
	encoder := json.NewEncoder(formatter.Writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%d run(s) diverged", diverged))
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
