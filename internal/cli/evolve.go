package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/rigbyspace/operation-goldenrod/internal/evolve"
)

// EvolveOptions holds flags for the evolve command.
type EvolveOptions struct {
	*RootOptions
	Experiment  string
	Generations int
	Population  int
	Elite       int
	Target      string
	Strategy    string
	TicksMin    int
	TicksMax    int
	Parallelism int
	Seed        int64
	BestConfig  string
	Report      string
}

// NewEvolveCommand creates the evolve command.
func NewEvolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvolveOptions{RootOptions: rootOpts}
	defaults := evolve.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "evolve",
		Short: "Search configurations toward a target constant",
		Long: `Search the configuration space for runs whose final ratio approaches a
target constant. Search parameters come from an optional CUE experiment
document; explicit flags override the document. The winning candidate
is written out as a runnable config plus a JSON report.

Example:
  trts evolve --target phi --generations 5
  trts evolve --experiment search.cue --seed 7`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvolve(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Experiment, "experiment", "", "path to a CUE experiment document")
	cmd.Flags().IntVar(&opts.Generations, "generations", defaults.Generations, "number of generations")
	cmd.Flags().IntVar(&opts.Population, "population", defaults.Population, "candidates per generation")
	cmd.Flags().IntVar(&opts.Elite, "elite", defaults.Elite, "top candidates kept unchanged")
	cmd.Flags().StringVar(&opts.Target, "target", defaults.Target, "target constant name")
	cmd.Flags().StringVar(&opts.Strategy, "strategy", defaults.Strategy, "search strategy")
	cmd.Flags().IntVar(&opts.TicksMin, "ticks-min", defaults.TicksMin, "smallest searched tick count")
	cmd.Flags().IntVar(&opts.TicksMax, "ticks-max", defaults.TicksMax, "largest searched tick count")
	cmd.Flags().IntVar(&opts.Parallelism, "parallelism", 0, "concurrent evaluations (0 = GOMAXPROCS)")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "random seed (0 = derive from the clock)")
	cmd.Flags().StringVar(&opts.BestConfig, "best-config", "best_config.yaml", "path for the winning config document")
	cmd.Flags().StringVar(&opts.Report, "report", "best_report.json", "path for the winning candidate report")

	return cmd
}

func runEvolve(opts *EvolveOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	searchOpts, seed, err := resolveSearchOptions(opts, cmd)
	if err != nil {
		return err
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	// The seed is always logged so a good search can be replayed.
	slog.Info("starting search", "seed", seed, "target", searchOpts.Target,
		"generations", searchOpts.Generations, "population", searchOpts.Population)

	search, err := evolve.New(searchOpts, rand.New(rand.NewSource(seed)))
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid search options", err)
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	result, err := search.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return WrapExitError(ExitFailure, "search interrupted", err)
		}
		return WrapExitError(ExitFailure, "search failed", err)
	}

	if err := result.WriteBest(opts.BestConfig, opts.Report); err != nil {
		return WrapExitError(ExitFailure, "failed to write search artifacts", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(result.Report())
	}

	best := result.Best
	fmt.Fprintln(formatter.Writer, "✓ search complete")
	fmt.Fprintf(formatter.Writer, "  best score: %.4f (target %s, strategy %s)\n",
		best.Score, result.Target, result.Strategy)
	fmt.Fprintf(formatter.Writer, "  %s ticks=%d\n", describeModes(best.Config), best.Config.TickCount)
	fmt.Fprintf(formatter.Writer, "  classification: %s  psi=%d rho=%d\n",
		best.Summary.Classification, best.Summary.PsiEvents, best.Summary.RhoEvents)
	fmt.Fprintf(formatter.Writer, "  evaluations: %d over %d generations\n",
		result.Evaluations, result.Generations)
	fmt.Fprintf(formatter.Writer, "  wrote %s, %s\n", opts.BestConfig, opts.Report)
	return nil
}

// resolveSearchOptions layers the three sources of search parameters:
// built-in defaults, the experiment document, then explicit flags.
func resolveSearchOptions(opts *EvolveOptions, cmd *cobra.Command) (evolve.Options, int64, error) {
	searchOpts := evolve.DefaultOptions()
	var seed int64

	if opts.Experiment != "" {
		exp, err := evolve.LoadExperiment(opts.Experiment)
		if err != nil {
			return searchOpts, 0, WrapExitError(ExitCommandError, "failed to load experiment", err)
		}
		searchOpts = exp.Options
		seed = exp.Seed
	}

	flags := cmd.Flags()
	if flags.Changed("generations") {
		searchOpts.Generations = opts.Generations
	}
	if flags.Changed("population") {
		searchOpts.Population = opts.Population
	}
	if flags.Changed("elite") {
		searchOpts.Elite = opts.Elite
	}
	if flags.Changed("target") {
		searchOpts.Target = opts.Target
	}
	if flags.Changed("strategy") {
		searchOpts.Strategy = opts.Strategy
	}
	if flags.Changed("ticks-min") {
		searchOpts.TicksMin = opts.TicksMin
	}
	if flags.Changed("ticks-max") {
		searchOpts.TicksMax = opts.TicksMax
	}
	if flags.Changed("parallelism") {
		searchOpts.Parallelism = opts.Parallelism
	}
	if flags.Changed("seed") {
		seed = opts.Seed
	}
	return searchOpts, seed, nil
}
