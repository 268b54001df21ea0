package engine

import (
	"context"
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rigbyspace/operation-goldenrod/internal/config"
	"github.com/rigbyspace/operation-goldenrod/internal/rational"
)

// snapshot is the observer-side record of one microtick.
type snapshot struct {
	ev      StepEvent
	upsilon string
	beta    string
	koppa   string
	prevUps string
	deltaU  string
}

// runCollect executes a full run and returns one snapshot per
// microtick.
func runCollect(t *testing.T, cfg *config.Config) []snapshot {
	t.Helper()
	sim, err := NewSimulator(cfg)
	require.NoError(t, err)

	var snaps []snapshot
	err = sim.Run(context.Background(), func(ev StepEvent, st *State) {
		snaps = append(snaps, snapshot{
			ev:      ev,
			upsilon: st.Upsilon.String(),
			beta:    st.Beta.String(),
			koppa:   st.Koppa.String(),
			prevUps: st.PrevUpsilon.String(),
			deltaU:  st.DeltaUpsilon.String(),
		})
	})
	require.NoError(t, err)
	return snaps
}

// TestSimulator_DefaultSingleTick walks the default configuration
// through one tick. The undefined kappa seed absorbs both registers on
// the first microtick, so the whole tick runs on zeros; the event
// stream still carries the full schedule, including the forced rho
// event on microtick ten.
func TestSimulator_DefaultSingleTick(t *testing.T) {
	cfg := config.Default()
	cfg.TickCount = 1

	snaps := runCollect(t, cfg)
	require.Len(t, snaps, MicroticksPerTick)

	want := []StepEvent{
		{Tick: 1, Microtick: 1, Phase: PhaseEngine},
		{Tick: 1, Microtick: 2, Phase: PhaseMemory, MuZero: true},
		{Tick: 1, Microtick: 3, Phase: PhaseReset},
		{Tick: 1, Microtick: 4, Phase: PhaseEngine},
		{Tick: 1, Microtick: 5, Phase: PhaseMemory, MuZero: true},
		{Tick: 1, Microtick: 6, Phase: PhaseReset},
		{Tick: 1, Microtick: 7, Phase: PhaseEngine},
		{Tick: 1, Microtick: 8, Phase: PhaseMemory, MuZero: true},
		{Tick: 1, Microtick: 9, Phase: PhaseReset},
		{Tick: 1, Microtick: 10, Phase: PhaseEngine, RhoEvent: true, ForcedEmission: true},
		{Tick: 1, Microtick: 11, Phase: PhaseMemory, MuZero: true},
	}
	for i, ev := range want {
		assert.Equal(t, ev, snaps[i].ev, "microtick %d", i+1)
	}

	for i, s := range snaps {
		assert.Equal(t, "0/0", s.upsilon, "microtick %d", i+1)
		assert.Equal(t, "0/0", s.beta, "microtick %d", i+1)
		assert.Equal(t, "0/0", s.koppa, "microtick %d", i+1)
	}
	// The first engine step still commits, so the previous value
	// advances once from the seed and then follows the zeros.
	assert.Equal(t, "1/1", snaps[0].prevUps)
	assert.Equal(t, "1/1", snaps[2].prevUps)
	assert.Equal(t, "0/0", snaps[3].prevUps)
}

// TestSimulator_NonzeroKoppaTrajectory pins the opening of the live
// trajectory: additive propagation, a rho event off the prime beta
// numerator, the transform swap, and the first kappa accrual.
func TestSimulator_NonzeroKoppaTrajectory(t *testing.T) {
	cfg := config.Default()
	cfg.TickCount = 1
	cfg.KoppaSeed = rational.New(1, 1)

	snaps := runCollect(t, cfg)
	require.Len(t, snaps, MicroticksPerTick)

	mt1 := snaps[0]
	assert.Equal(t, "3/1", mt1.upsilon, "1/1 + 1/1 + 1/1")
	assert.Equal(t, "3/1", mt1.beta)
	assert.Equal(t, "2/1", mt1.deltaU)
	assert.Equal(t, "1/1", mt1.prevUps)

	mt2 := snaps[1]
	assert.True(t, mt2.ev.RhoEvent, "beta numerator 3 is prime")
	assert.True(t, mt2.ev.PsiFired)
	assert.False(t, mt2.ev.MuZero)
	assert.Equal(t, "3/3", mt2.upsilon, "beta over upsilon, unreduced")
	assert.Equal(t, "3/3", mt2.beta)
	assert.Equal(t, "36/9", mt2.koppa, "1/1 + 1/1 + (3/3 + 3/3)")

	mt4 := snaps[3]
	assert.Equal(t, "486/81", mt4.upsilon, "3/3 + 3/3 + 36/9")
	assert.Equal(t, "1215/243", mt4.deltaU)
	assert.Equal(t, "3/3", mt4.prevUps)

	mt5 := snaps[4]
	assert.True(t, mt5.ev.PsiFired)
	assert.False(t, mt5.ev.RhoEvent, "486 and 81 are composite")
	assert.Equal(t, "39366/39366", mt5.upsilon)
	assert.Equal(t, "39366/39366", mt5.beta)
}

// TestSimulator_UpsilonPrimeTarget moves the rho check to the freshly
// propagated upsilon numerator on engine microticks; memory microticks
// stop checking entirely.
func TestSimulator_UpsilonPrimeTarget(t *testing.T) {
	cfg := config.Default()
	cfg.TickCount = 1
	cfg.KoppaSeed = rational.New(1, 1)
	cfg.PrimeTarget = config.TargetNewUpsilon
	cfg.Psi = config.PsiRhoOnly

	snaps := runCollect(t, cfg)

	assert.True(t, snaps[0].ev.RhoEvent, "upsilon lands on 3/1")
	assert.False(t, snaps[1].ev.RhoEvent)
	assert.True(t, snaps[1].ev.PsiFired, "rho-only mode fires off the pending event")
	assert.Equal(t, "3/3", snaps[1].upsilon)
}

// TestSimulator_DeterministicReplay runs the same configuration twice
// and demands identical event streams and register trajectories.
func TestSimulator_DeterministicReplay(t *testing.T) {
	cfg := config.Default()
	cfg.TickCount = 2
	cfg.KoppaSeed = rational.New(1, 1)

	record := func(snaps []snapshot) []string {
		out := make([]string, 0, len(snaps))
		for _, s := range snaps {
			out = append(out, fmt.Sprintf("%d.%d %v %s %s %s",
				s.ev.Tick, s.ev.Microtick, s.ev, s.upsilon, s.beta, s.koppa))
		}
		return out
	}

	first := record(runCollect(t, cfg))
	second := record(runCollect(t, cfg))
	assert.Equal(t, first, second)
}

// TestSimulator_ResetReplays returns a used simulator to its seeds and
// reproduces the original trajectory.
func TestSimulator_ResetReplays(t *testing.T) {
	cfg := config.Default()
	cfg.TickCount = 1
	cfg.KoppaSeed = rational.New(1, 1)

	sim, err := NewSimulator(cfg)
	require.NoError(t, err)

	collect := func() []string {
		var out []string
		err := sim.Run(context.Background(), func(ev StepEvent, st *State) {
			out = append(out, fmt.Sprintf("%d.%d %s", ev.Tick, ev.Microtick, st.Upsilon.String()))
		})
		require.NoError(t, err)
		return out
	}

	first := collect()
	sim.Reset()
	assert.Equal(t, "1/1", sim.State().Upsilon.String())
	second := collect()
	assert.Equal(t, first, second)
}

// TestSimulator_Mt10Behaviors distinguishes the four microtick-ten
// dispatches by their observable effect at the forced emission.
func TestSimulator_Mt10Behaviors(t *testing.T) {
	at10 := func(mode config.Mt10Behavior) snapshot {
		cfg := config.Default()
		cfg.TickCount = 1
		cfg.KoppaSeed = rational.New(1, 1)
		cfg.Mt10 = mode
		snaps := runCollect(t, cfg)
		return snaps[9]
	}

	baseline := at10(config.Mt10EmissionOnly)
	assert.True(t, baseline.ev.ForcedEmission)
	assert.False(t, baseline.ev.RhoEvent)

	forcedPsi := at10(config.Mt10ForcedPsi)
	assert.True(t, forcedPsi.ev.RhoEvent, "latches a rho event without touching registers")
	assert.Equal(t, baseline.upsilon, forcedPsi.upsilon)

	forcedEngine := at10(config.Mt10ForcedEngine)
	assert.NotEqual(t, baseline.upsilon, forcedEngine.upsilon, "second propagation moves upsilon again")

	forcedKoppa := at10(config.Mt10ForcedKoppa)
	assert.Equal(t, baseline.upsilon, forcedKoppa.upsilon)
	assert.NotEqual(t, baseline.koppa, forcedKoppa.koppa, "forced accrual moves kappa")
}

// TestSimulator_AfterPsiAccrual arms the recency flag, carries it
// through a recovery microtick untouched, and spends it on the next
// quiet memory microtick.
func TestSimulator_AfterPsiAccrual(t *testing.T) {
	cfg := config.Default()
	cfg.KoppaTrigger = config.TriggerAfterPsi
	cfg.Psi = config.PsiRhoOnly
	cfg.KoppaSeed = rational.New(5, 1)

	sim, err := NewSimulator(cfg)
	require.NoError(t, err)
	st := sim.State()
	st.PsiRecent = true
	st.Epsilon.SetInt64(1, 1)

	sim.microtick(1, 3)
	assert.True(t, st.PsiRecent, "recovery microtick leaves the armed flag")
	assert.Equal(t, "5/1", st.Koppa.String())

	sim.microtick(1, 5)
	assert.False(t, st.PsiRecent, "the edge fired and disarmed")
	assert.Equal(t, "8/1", st.Koppa.String(), "5/1 + 1/1 + (1/1 + 1/1)")

	sim.microtick(1, 8)
	assert.Equal(t, "8/1", st.Koppa.String(), "no rearm, no second accrual")
}

// TestSimulator_ModulusBoundProperty holds the wrap invariant at every
// engine microtick: numerator magnitudes stay strictly under the
// bound.
func TestSimulator_ModulusBoundProperty(t *testing.T) {
	cfg := config.Default()
	cfg.TickCount = 3
	cfg.KoppaSeed = rational.New(1, 1)
	cfg.ModularWrap = true
	cfg.ModulusBound = big.NewInt(97)

	sim, err := NewSimulator(cfg)
	require.NoError(t, err)

	bound := big.NewInt(97)
	err = sim.Run(context.Background(), func(ev StepEvent, st *State) {
		if ev.Phase != PhaseEngine {
			return
		}
		for _, r := range []*rational.Rational{&st.Upsilon, &st.Beta, &st.Koppa} {
			mag := new(big.Int).Abs(r.Num())
			assert.Negative(t, mag.Cmp(bound), "tick %d microtick %d", ev.Tick, ev.Microtick)
		}
	})
	require.NoError(t, err)
}

// TestSimulator_ContextCancellation stops between ticks and reports
// the cause.
func TestSimulator_ContextCancellation(t *testing.T) {
	cfg := config.Default()
	sim, err := NewSimulator(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events := 0
	err = sim.Run(ctx, func(StepEvent, *State) { events++ })

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, events)
}

// TestNewSimulator_InvalidConfig rejects a config that fails
// validation.
func TestNewSimulator_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.TickCount = 0

	_, err := NewSimulator(cfg)
	assert.ErrorContains(t, err, "tick count")
}

// TestNewSimulator_ClonesConfig decouples the simulator from later
// mutation of the caller's config.
func TestNewSimulator_ClonesConfig(t *testing.T) {
	cfg := config.Default()
	cfg.TickCount = 4

	sim, err := NewSimulator(cfg)
	require.NoError(t, err)

	cfg.TickCount = 99
	cfg.KoppaSeed.SetInt64(7, 7)

	assert.Equal(t, uint64(4), sim.Config().TickCount)
	assert.Equal(t, "0/0", sim.Config().KoppaSeed.String())
}
