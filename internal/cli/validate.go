package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/rigbyspace/operation-goldenrod/internal/config"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid       bool   `json:"valid"`
	Fingerprint string `json:"fingerprint,omitempty"`
	Ticks       uint64 `json:"ticks,omitempty"`
	Engine      string `json:"engine_mode,omitempty"`
	Psi         string `json:"psi_mode,omitempty"`
	Koppa       string `json:"koppa_mode,omitempty"`
	Canonical   string `json:"canonical,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config.yaml>",
		Short: "Validate a config document",
		Long: `Load a config document, resolve it against the defaults and check the
result. On success the resolved fingerprint is printed; with --verbose
the full canonical document is too. The fingerprint is what run
recording stores, so two documents with equal fingerprints replay
identically.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidateConfig(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidateConfig(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := config.Load(path)
	if err != nil {
		// An unreadable path is an environment problem; content the
		// loader rejects is a validation failure.
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			_ = formatter.Error("io", err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to read config", err)
		}
		_ = formatter.Error("config", err.Error(), nil)
		return WrapExitError(ExitFailure, "config invalid", err)
	}

	result := ValidationResult{
		Valid:       true,
		Fingerprint: cfg.Fingerprint(),
		Ticks:       cfg.TickCount,
		Engine:      cfg.Engine.String(),
		Psi:         cfg.Psi.String(),
		Koppa:       cfg.Koppa.String(),
	}
	if opts.Verbose {
		result.Canonical = string(cfg.CanonicalDocument())
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintln(formatter.Writer, "✓ config valid")
	fmt.Fprintf(formatter.Writer, "  fingerprint: %s\n", result.Fingerprint)
	fmt.Fprintf(formatter.Writer, "  ticks: %d  %s\n", result.Ticks, describeModes(cfg))
	if result.Canonical != "" {
		fmt.Fprintln(formatter.Writer)
		fmt.Fprint(formatter.Writer, result.Canonical)
	}
	return nil
}
