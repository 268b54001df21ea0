package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rigbyspace/operation-goldenrod/internal/engine"
)

// StreamOptions holds flags for the stream command.
type StreamOptions struct {
	*RootOptions
	Ticks uint64
}

// StreamRecord is one microtick rendered as a JSON line.
type StreamRecord struct {
	Tick           uint64 `json:"tick"`
	Microtick      int    `json:"mt"`
	Phase          string `json:"phase"`
	RhoEvent       bool   `json:"rho_event,omitempty"`
	PsiFired       bool   `json:"psi_fired,omitempty"`
	MuZero         bool   `json:"mu_zero,omitempty"`
	ForcedEmission bool   `json:"forced_emission,omitempty"`
	Upsilon        string `json:"upsilon"`
	Beta           string `json:"beta"`
	Koppa          string `json:"koppa"`
	StackSize      int    `json:"koppa_stack_size,omitempty"`
}

// NewStreamCommand creates the stream command.
func NewStreamCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StreamOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "stream [config.yaml]",
		Short: "Run and print one line per microtick",
		Long: `Execute a run and print every microtick as it happens: one text line
per microtick, or one JSON object per line with --format json. Meant
for watching small runs; component text is truncated in text mode once
it grows past reading size.

Example:
  trts stream --ticks 2
  trts stream golden.yaml --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runStream(opts, path, cmd)
		},
	}

	cmd.Flags().Uint64Var(&opts.Ticks, "ticks", 0, "override the configured tick count")

	return cmd
}

func runStream(opts *StreamOptions, configPath string, cmd *cobra.Command) error {
	cfg, err := loadRunConfig(configPath, opts.Ticks)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	sim, err := engine.NewSimulator(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to construct simulator", err)
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	out := cmd.OutOrStdout()
	encoder := json.NewEncoder(out)

	// The observer cannot return an error; the first write failure is
	// kept and surfaced after the run.
	var writeErr error
	observer := func(ev engine.StepEvent, st *engine.State) {
		if writeErr != nil {
			return
		}
		if opts.Format == "json" {
			writeErr = encoder.Encode(streamRecord(ev, st))
			return
		}
		_, writeErr = fmt.Fprintln(out, streamLine(ev, st))
	}

	if err := sim.Run(ctx, observer); err != nil {
		return WrapExitError(ExitFailure, "run aborted", err)
	}
	if writeErr != nil {
		return WrapExitError(ExitCommandError, "failed to write stream output", writeErr)
	}
	return nil
}

func streamRecord(ev engine.StepEvent, st *engine.State) StreamRecord {
	return StreamRecord{
		Tick:           ev.Tick,
		Microtick:      ev.Microtick,
		Phase:          ev.Phase.String(),
		RhoEvent:       ev.RhoEvent,
		PsiFired:       ev.PsiFired,
		MuZero:         ev.MuZero,
		ForcedEmission: ev.ForcedEmission,
		Upsilon:        st.Upsilon.String(),
		Beta:           st.Beta.String(),
		Koppa:          st.Koppa.String(),
		StackSize:      st.KoppaStackSize,
	}
}

func streamLine(ev engine.StepEvent, st *engine.State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "t=%04d mt=%02d %s", ev.Tick, ev.Microtick, ev.Phase)
	if flags := eventFlags(ev); flags != "" {
		fmt.Fprintf(&b, " [%s]", flags)
	}
	fmt.Fprintf(&b, " upsilon=%s beta=%s koppa=%s",
		truncateComponents(st.Upsilon.String()),
		truncateComponents(st.Beta.String()),
		truncateComponents(st.Koppa.String()))
	if st.KoppaStackSize > 0 {
		fmt.Fprintf(&b, " stack=%d", st.KoppaStackSize)
	}
	return b.String()
}

func eventFlags(ev engine.StepEvent) string {
	var flags []string
	if ev.RhoEvent {
		flags = append(flags, "rho")
	}
	if ev.PsiFired {
		flags = append(flags, "psi")
	}
	if ev.MuZero {
		flags = append(flags, "mu0")
	}
	if ev.ForcedEmission {
		flags = append(flags, "emit")
	}
	return strings.Join(flags, " ")
}

// truncateComponents caps a rendered fraction for terminal display.
// Components are never reduced, so they outgrow a line quickly.
func truncateComponents(s string) string {
	const max = 64
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
