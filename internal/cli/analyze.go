package cli

import (
	"fmt"
	"math"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/rigbyspace/operation-goldenrod/internal/analyze"
)

// AnalyzeOptions holds flags for the analyze command.
type AnalyzeOptions struct {
	*RootOptions
	Ticks uint64
}

// AnalysisReport is the serializable view of a run summary.
type AnalysisReport struct {
	Classification string `json:"classification"`
	Pattern        string `json:"pattern"`
	Ticks          uint64 `json:"ticks"`
	Samples        uint64 `json:"samples"`

	PsiEvents    uint64 `json:"psi_events"`
	RhoEvents    uint64 `json:"rho_events"`
	MuZeroEvents uint64 `json:"mu_zero_events"`

	RatioDefined       bool    `json:"ratio_defined"`
	FinalRatio         string  `json:"final_ratio,omitempty"`
	FinalRatioSnapshot float64 `json:"final_ratio_snapshot"`
	RatioMean          float64 `json:"ratio_mean"`
	RatioStddev        float64 `json:"ratio_stddev"`
	RatioRange         float64 `json:"ratio_range"`

	PsiSpacingMean   float64 `json:"psi_spacing_mean"`
	PsiSpacingStddev float64 `json:"psi_spacing_stddev"`

	ClosestConstant string  `json:"closest_constant"`
	ClosestDelta    float64 `json:"closest_delta,omitempty"`
	ConvergenceTick uint64  `json:"convergence_tick,omitempty"`

	AverageStackDepth float64  `json:"stack_average_depth"`
	StackHistogram    []uint64 `json:"stack_histogram"`

	MaxNumeratorDigits   int `json:"max_numerator_digits"`
	MaxDenominatorDigits int `json:"max_denominator_digits"`
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnalyzeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "analyze [config.yaml]",
		Short: "Run and classify the ratio trajectory",
		Long: `Execute a run under the statistics collector and report the trajectory
classification: event counts, ratio statistics, transform spacing, the
closest known constant and the kappa stack profile.

Example:
  trts analyze golden.yaml
  trts analyze --ticks 20 --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runAnalyze(opts, path, cmd)
		},
	}

	cmd.Flags().Uint64Var(&opts.Ticks, "ticks", 0, "override the configured tick count")

	return cmd
}

func runAnalyze(opts *AnalyzeOptions, configPath string, cmd *cobra.Command) error {
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

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	summary, err := analyze.Run(ctx, cfg)
	if err != nil {
		return WrapExitError(ExitFailure, "analysis run failed", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(buildAnalysisReport(summary))
	}
	renderSummary(formatter, summary)
	return nil
}

func buildAnalysisReport(s *analyze.Summary) AnalysisReport {
	report := AnalysisReport{
		Classification:       s.Classification,
		Pattern:              s.Pattern,
		Ticks:                s.TotalTicks,
		Samples:              s.TotalSamples,
		PsiEvents:            s.PsiEvents,
		RhoEvents:            s.RhoEvents,
		MuZeroEvents:         s.MuZeroEvents,
		RatioDefined:         s.RatioDefined,
		FinalRatio:           s.FinalRatioText,
		FinalRatioSnapshot:   s.FinalRatioSnapshot,
		RatioMean:            s.RatioMean,
		RatioStddev:          s.RatioStddev,
		RatioRange:           s.RatioRange,
		PsiSpacingMean:       s.PsiSpacingMean,
		PsiSpacingStddev:     s.PsiSpacingStddev,
		ClosestConstant:      s.ClosestConstant,
		ClosestDelta:         s.ClosestDelta,
		ConvergenceTick:      s.ConvergenceTick,
		AverageStackDepth:    s.AverageStackDepth,
		StackHistogram:       s.StackHistogram[:],
		MaxNumeratorDigits:   digitCount(s.MaxNumeratorMagnitude),
		MaxDenominatorDigits: digitCount(s.MaxDenominatorMagnitude),
	}
	// JSON carries no infinities; an out-of-range quotient reports as 0
	// and an absent constant match omits its delta.
	if math.IsInf(report.FinalRatioSnapshot, 0) {
		report.FinalRatioSnapshot = 0
	}
	if math.IsInf(report.ClosestDelta, 0) {
		report.ClosestDelta = 0
	}
	return report
}

func renderSummary(f *OutputFormatter, s *analyze.Summary) {
	w := f.Writer
	fmt.Fprintf(w, "Classification: %s\n", s.Classification)
	fmt.Fprintf(w, "Pattern:        %s\n", s.Pattern)
	fmt.Fprintf(w, "Ticks:          %d (%d samples)\n", s.TotalTicks, s.TotalSamples)
	fmt.Fprintf(w, "Events:         psi=%d rho=%d mu_zero=%d\n", s.PsiEvents, s.RhoEvents, s.MuZeroEvents)
	fmt.Fprintf(w, "Ratio:          %s\n", formatFinalRatio(s))
	if s.RatioDefined {
		fmt.Fprintf(w, "  mean %.6f  stddev %.6f  range %.6f\n", s.RatioMean, s.RatioStddev, s.RatioRange)
	}
	if s.PsiEvents > 1 {
		fmt.Fprintf(w, "Psi spacing:    mean %.2f  stddev %.2f\n", s.PsiSpacingMean, s.PsiSpacingStddev)
	}
	fmt.Fprintf(w, "Closest:        %s\n", formatClosest(s))
	fmt.Fprintf(w, "Koppa stack:    %s\n", s.StackSummary)
	fmt.Fprintf(w, "Magnitude:      num %d digits, den %d digits\n",
		digitCount(s.MaxNumeratorMagnitude), digitCount(s.MaxDenominatorMagnitude))
}

// formatFinalRatio renders the exact final ratio when it fits a line.
// Unreduced components can reach millions of digits; past the cap only
// the float snapshot is shown.
func formatFinalRatio(s *analyze.Summary) string {
	if !s.RatioDefined {
		return "undefined"
	}
	const max = 80
	if len(s.FinalRatioText) <= max {
		return fmt.Sprintf("%s = %.6f", s.FinalRatioText, s.FinalRatioSnapshot)
	}
	return fmt.Sprintf("%.6f (exact form spans %d characters)", s.FinalRatioSnapshot, len(s.FinalRatioText))
}

func formatClosest(s *analyze.Summary) string {
	if math.IsInf(s.ClosestDelta, 0) {
		return "none"
	}
	if s.ConvergenceTick > 0 {
		return fmt.Sprintf("%s (delta %.2e), converged at tick %d", s.ClosestConstant, s.ClosestDelta, s.ConvergenceTick)
	}
	return fmt.Sprintf("%s (delta %.2e)", s.ClosestConstant, s.ClosestDelta)
}

// digitCount reports the decimal width of a magnitude; zero stays 0.
func digitCount(x *big.Int) int {
	if x == nil || x.Sign() == 0 {
		return 0
	}
	return len(x.Text(10))
}
