package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rigbyspace/operation-goldenrod/internal/config"
	"github.com/rigbyspace/operation-goldenrod/internal/emit"
	"github.com/rigbyspace/operation-goldenrod/internal/rational"
)

// BenchOptions holds flags for the bench command.
type BenchOptions struct {
	*RootOptions
	Ticks   uint64
	Upsilon string
	Beta    string
	Koppa   string
	Engine  string
	Output  string
}

// NewBenchCommand creates the bench command.
func NewBenchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BenchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run the stripped timing loop and emit component CSV",
		Long: `Run the reduced timing loop: engine and transform steps only, with the
layered kappa and modular features held off for a clean measurement.
Component rows go to stdout (or --out) as CSV and the wall-clock
summary goes to stderr, so piped output stays parseable. Output is CSV
regardless of --format.

Example:
  trts bench --ticks 100 > bench.csv
  trts bench --ups 3/2 --beta 9/7 --out bench.csv`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(opts, cmd)
		},
	}

	cmd.Flags().Uint64Var(&opts.Ticks, "ticks", 30, "number of ticks to run")
	cmd.Flags().StringVar(&opts.Upsilon, "ups", "", "initial upsilon as N/D")
	cmd.Flags().StringVar(&opts.Beta, "beta", "", "initial beta as N/D")
	cmd.Flags().StringVar(&opts.Koppa, "koppa", "", "initial koppa as N/D")
	cmd.Flags().StringVar(&opts.Engine, "engine", "add", "engine mode (add|multi|slide|delta_add)")
	cmd.Flags().StringVar(&opts.Output, "out", "", "write CSV to this file instead of stdout")

	return cmd
}

func runBench(opts *BenchOptions, cmd *cobra.Command) error {
	cfg := config.Default()
	cfg.TickCount = opts.Ticks

	if err := applySeedFlag(cfg.UpsilonSeed, opts.Upsilon); err != nil {
		return WrapExitError(ExitCommandError, "invalid --ups", err)
	}
	if err := applySeedFlag(cfg.BetaSeed, opts.Beta); err != nil {
		return WrapExitError(ExitCommandError, "invalid --beta", err)
	}
	if err := applySeedFlag(cfg.KoppaSeed, opts.Koppa); err != nil {
		return WrapExitError(ExitCommandError, "invalid --koppa", err)
	}

	mode, err := parseEngineMode(opts.Engine)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --engine", err)
	}
	cfg.Engine = mode

	// The layered features stay off so the loop times raw propagation.
	cfg.MultiLevelKoppa = false
	cfg.ModularWrap = false
	cfg.KoppaTrigger = config.TriggerEveryMemory

	var out io.Writer = cmd.OutOrStdout()
	if opts.Output != "" {
		f, err := os.Create(opts.Output)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to create output file", err)
		}
		defer f.Close()
		out = f
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	slog.Debug("starting bench", "ticks", cfg.TickCount, "engine", cfg.Engine)

	start := time.Now()
	rows, err := emit.BenchRun(ctx, cfg, out)
	elapsed := time.Since(start)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return WrapExitError(ExitFailure, "bench interrupted", err)
		}
		return WrapExitError(ExitCommandError, "bench failed", err)
	}

	rate := 0.0
	if elapsed > 0 {
		rate = float64(rows) / elapsed.Seconds()
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%d rows in %s (%.0f rows/s)\n",
		rows, elapsed.Round(time.Millisecond), rate)
	return nil
}

// applySeedFlag overwrites a seed in place when its flag was given, so
// unset flags keep the defaults.
func applySeedFlag(seed *rational.Rational, value string) error {
	if value == "" {
		return nil
	}
	parsed, err := rational.ParseRational(value)
	if err != nil {
		return err
	}
	seed.Set(parsed)
	return nil
}

func parseEngineMode(name string) (config.EngineMode, error) {
	for _, mode := range []config.EngineMode{
		config.EngineAdd, config.EngineMulti, config.EngineSlide, config.EngineDeltaAdd,
	} {
		if mode.String() == name {
			return mode, nil
		}
	}
	return config.EngineAdd, fmt.Errorf("unknown engine mode %q", name)
}
