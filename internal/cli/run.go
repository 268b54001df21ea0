package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rigbyspace/operation-goldenrod/internal/config"
	"github.com/rigbyspace/operation-goldenrod/internal/emit"
	"github.com/rigbyspace/operation-goldenrod/internal/engine"
	"github.com/rigbyspace/operation-goldenrod/internal/runstore"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Ticks    uint64
	Events   string
	Values   string
	Database string
	Label    string
}

// RunResult summarizes a finished run for command output.
type RunResult struct {
	Ticks       uint64 `json:"ticks"`
	Microticks  uint64 `json:"microticks"`
	EventsPath  string `json:"events_path"`
	ValuesPath  string `json:"values_path"`
	Fingerprint string `json:"fingerprint"`
	RunID       string `json:"run_id,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run [config.yaml]",
		Short: "Execute a run and emit its event and value CSV",
		Long: `Execute one deterministic run and emit the per-microtick event and
value tables as CSV. Without a config argument the built-in defaults
run. With --db the same pass is also recorded into a SQLite database
for later replay verification.

Example:
  trts run
  trts run golden.yaml --ticks 30
  trts run golden.yaml --db runs.db --label golden`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runSimulation(opts, path, cmd)
		},
	}

	cmd.Flags().Uint64Var(&opts.Ticks, "ticks", 0, "override the configured tick count")
	cmd.Flags().StringVar(&opts.Events, "events", "events.csv", "path for the event table CSV")
	cmd.Flags().StringVar(&opts.Values, "values", "values.csv", "path for the value table CSV")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run into this SQLite database")
	cmd.Flags().StringVar(&opts.Label, "label", "", "label stored with the recorded run")

	return cmd
}

func runSimulation(opts *RunOptions, configPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := loadRunConfig(configPath, opts.Ticks)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	sim, err := engine.NewSimulator(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to construct simulator", err)
	}

	eventsFile, err := os.Create(opts.Events)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create events file", err)
	}
	defer eventsFile.Close()

	valuesFile, err := os.Create(opts.Values)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create values file", err)
	}
	defer valuesFile.Close()

	recorder, err := emit.NewRecorder(eventsFile, valuesFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to write CSV headers", err)
	}

	// The recorder and the optional database writer observe the same
	// pass, so recording never costs a second simulation.
	observer := engine.Observer(recorder.Observe)

	var st *runstore.Store
	var writer *runstore.RunWriter
	if opts.Database != "" {
		slog.Info("opening database", "path", opts.Database)
		st, err = runstore.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()
		writer = st.NewRunWriter(cfg, opts.Label)
		observer = emit.MultiObserver(recorder.Observe, writer.Observe)
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	formatter.VerboseLog("Starting run: %d ticks, fingerprint %s", cfg.TickCount, cfg.Fingerprint())

	if err := sim.Run(ctx, observer); err != nil {
		return WrapExitError(ExitFailure, "run aborted", err)
	}
	if err := recorder.Flush(); err != nil {
		return WrapExitError(ExitCommandError, "failed to flush CSV output", err)
	}

	result := RunResult{
		Ticks:       cfg.TickCount,
		Microticks:  cfg.TickCount * engine.MicroticksPerTick,
		EventsPath:  opts.Events,
		ValuesPath:  opts.Values,
		Fingerprint: cfg.Fingerprint(),
	}

	if writer != nil {
		id, err := writer.Commit(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
		result.RunID = id
		slog.Info("run recorded", "id", id, "label", opts.Label)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintln(formatter.Writer, "✓ run complete")
	fmt.Fprintf(formatter.Writer, "  ticks:  %d (%d microticks)\n", result.Ticks, result.Microticks)
	fmt.Fprintf(formatter.Writer, "  events: %s\n", result.EventsPath)
	fmt.Fprintf(formatter.Writer, "  values: %s\n", result.ValuesPath)
	if result.RunID != "" {
		fmt.Fprintf(formatter.Writer, "  run id: %s\n", result.RunID)
	}
	return nil
}

// describeModes renders the mode line shared by several text outputs.
func describeModes(cfg *config.Config) string {
	return fmt.Sprintf("engine=%s psi=%s koppa=%s", cfg.Engine, cfg.Psi, cfg.Koppa)
}
