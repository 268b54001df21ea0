package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rigbyspace/operation-goldenrod/internal/config"
)

// StepEvent is the per-microtick observation handed to observers.
type StepEvent struct {
	Tick      uint64
	Microtick int
	Phase     Phase

	// RhoEvent marks a pattern match or forced latch this microtick.
	RhoEvent bool
	// PsiFired marks a committed transform this microtick.
	PsiFired bool
	// MuZero marks a zero beta numerator observed in the memory phase.
	MuZero bool
	// ForcedEmission marks microtick 10.
	ForcedEmission bool
}

// Observer receives one event per microtick, synchronously on the
// run's goroutine. The state view is read-only and valid only for the
// duration of the call; observers must deep-copy any rational they
// retain. Observers run on every microtick of a potentially long run
// and must not block.
type Observer func(ev StepEvent, st *State)

// Simulator drives one run: a configured tick count of 11-microtick
// cycles over a private state.
//
// Thread-safety model:
//   - One goroutine owns a Simulator for the whole run.
//   - Parallel runs need one Simulator each; instances share nothing.
//
// INVARIANTS:
//   - The config never changes after construction.
//   - Evaluation (patterns, ratio triggers) reads registers but never
//     writes them; only the three step functions mutate values.
type Simulator struct {
	cfg    *config.Config
	state  State
	logger *slog.Logger
}

// SimulatorOption configures a Simulator at construction.
type SimulatorOption func(*Simulator)

// WithLogger routes run-level logging to the given logger instead of
// the process default.
func WithLogger(logger *slog.Logger) SimulatorOption {
	return func(s *Simulator) {
		s.logger = logger
	}
}

// NewSimulator validates and clones cfg, then seeds a fresh state. The
// clone keeps the run immune to later mutation of the caller's config.
func NewSimulator(cfg *config.Config, opts ...SimulatorOption) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}

	s := &Simulator{
		cfg:    cfg.Clone(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state.Reset(s.cfg)
	return s, nil
}

// Config returns the simulator's private config clone.
func (s *Simulator) Config() *config.Config {
	return s.cfg
}

// State returns the live state. Callers outside the run loop must
// treat it as read-only.
func (s *Simulator) State() *State {
	return &s.state
}

// Reset returns the state to its seeded run-start values, allowing the
// same Simulator to run again deterministically.
func (s *Simulator) Reset() {
	s.state.Reset(s.cfg)
}

// Run executes the configured tick count, invoking observer once per
// microtick when non-nil. Cancellation is checked once per tick; a
// cancelled run returns the context error with the state frozen where
// it stopped.
func (s *Simulator) Run(ctx context.Context, observer Observer) error {
	s.logger.Debug("run starting",
		"ticks", s.cfg.TickCount,
		"engine_mode", s.cfg.Engine.String(),
		"psi_mode", s.cfg.Psi.String(),
		"koppa_trigger", s.cfg.KoppaTrigger.String(),
	)

	for tick := uint64(1); tick <= s.cfg.TickCount; tick++ {
		if err := ctx.Err(); err != nil {
			s.logger.Debug("run cancelled", "tick", tick)
			return err
		}
		s.state.Tick = tick

		for microtick := 1; microtick <= MicroticksPerTick; microtick++ {
			ev := s.microtick(tick, microtick)
			if observer != nil {
				observer(ev, &s.state)
			}
		}
	}

	s.logger.Debug("run finished", "ticks", s.cfg.TickCount)
	return nil
}

// stackAllowsPsi gates the transform by kappa stack depth when the
// stack-depth toggle is on: only depths 2 and 4 may fire.
func stackAllowsPsi(cfg *config.Config, st *State) bool {
	if !cfg.StackDepthModes {
		return true
	}
	return st.KoppaStackSize == 2 || st.KoppaStackSize == 4
}

// shouldRequestPsi decides whether this memory microtick requests the
// transform, before ratio triggers weigh in.
func shouldRequestPsi(cfg *config.Config, st *State, allowStack bool) bool {
	if !allowStack {
		return false
	}
	switch cfg.Psi {
	case config.PsiEveryMemory, config.PsiMemoryOrRho:
		return true
	case config.PsiRhoOnly:
		return st.RhoPending
	case config.PsiInhibitRho:
		return !st.RhoPending
	}
	return false
}

// microtick executes one microtick's phase logic and returns the event
// to emit. Per-microtick observation flags clear first so each emitted
// record reflects only this microtick.
func (s *Simulator) microtick(tick uint64, microtick int) StepEvent {
	st := &s.state
	cfg := s.cfg

	ev := StepEvent{
		Tick:      tick,
		Microtick: microtick,
		Phase:     PhaseFor(microtick),
	}

	st.RatioTriggeredRecent = false
	st.PsiTripleRecent = false
	st.DualEngineLastStep = false
	st.KoppaSampleIndex = -1
	st.KoppaSample.Set(&st.Koppa)
	st.RatioThresholdRecent = false
	st.PsiStrengthApplied = false

	switch ev.Phase {
	case PhaseEngine:
		st.Epsilon.Set(&st.Upsilon)
		// A failed step means no change this microtick, never an abort.
		EngineStep(cfg, st, microtick)

		if cfg.PrimeTarget == config.TargetNewUpsilon {
			if HasPatternComponent(cfg, &st.Upsilon, true, false) {
				st.RhoPending = true
				ev.RhoEvent = true
			}
		}

		if microtick == 10 {
			ev.ForcedEmission = true
			switch cfg.Mt10 {
			case config.Mt10ForcedPsi:
				st.RhoPending = true
				ev.RhoEvent = true
			case config.Mt10ForcedEngine:
				EngineStep(cfg, st, microtick)
			case config.Mt10ForcedKoppa:
				AccrualStep(cfg, st, false, true, microtick)
			}
		}

	case PhaseMemory:
		ev.MuZero = st.Beta.IsZero()

		if cfg.PrimeTarget == config.TargetMemory {
			if HasPatternComponent(cfg, &st.Beta, true, true) {
				st.RhoPending = true
				ev.RhoEvent = true
			}
		}

		allowStack := stackAllowsPsi(cfg, st)
		requestPsi := shouldRequestPsi(cfg, st, allowStack)

		if ratioInRange(cfg, st) {
			requestPsi = true
			st.RatioTriggeredRecent = true
		}
		if ratioThresholdOutside(cfg, st) {
			requestPsi = true
			st.RatioThresholdRecent = true
		}

		if requestPsi && allowStack {
			ev.PsiFired = TransformStep(cfg, st)
		} else if cfg.KoppaTrigger != config.TriggerAfterPsi {
			// The after-psi accrual rides on the recency flag until its
			// edge fires; every other trigger drops the flag when no
			// transform was attempted.
			st.PsiRecent = false
		}

		AccrualStep(cfg, st, ev.PsiFired, true, microtick)
		st.RhoLatched = false

	case PhaseReset:
		AccrualStep(cfg, st, false, false, microtick)
		if cfg.KoppaTrigger != config.TriggerAfterPsi {
			st.PsiRecent = false
		}
		st.RhoLatched = false
	}

	return ev
}
