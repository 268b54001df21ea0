// Package evolve searches configuration space for trajectories whose
// final ratio approaches a chosen constant. It drives the simulator
// only through the analysis boundary, so the search sees exactly what
// an observer sees.
//
// The search is deterministic for a given seed: all randomness flows
// through one injected generator consumed only on the coordinating
// goroutine, and candidate evaluation, while parallel, writes nothing
// shared.
package evolve

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/big"
	"math/rand"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/rigbyspace/operation-goldenrod/internal/analyze"
	"github.com/rigbyspace/operation-goldenrod/internal/config"
	"github.com/rigbyspace/operation-goldenrod/internal/rational"
)

// Options controls a search.
type Options struct {
	Generations int
	Population  int
	// Elite is how many top candidates survive each generation intact.
	Elite int
	// Target is the constant name the final ratio is scored against.
	Target   string
	Strategy string
	// TicksMin and TicksMax bound the searched tick count, inclusive.
	// Unreduced components grow superlinearly in the tick count, so
	// this range is also the search's cost ceiling.
	TicksMin int
	TicksMax int
	// Parallelism bounds concurrent evaluations. Zero means GOMAXPROCS.
	Parallelism int
	// Base, when non-nil, replaces the built-in baseline config that
	// randomization starts from.
	Base *config.Config
}

// DefaultOptions mirrors the historical search defaults.
func DefaultOptions() Options {
	return Options{
		Generations: 10,
		Population:  8,
		Elite:       2,
		Target:      "rho",
		Strategy:    "hill-climb",
		TicksMin:    25,
		TicksMax:    34,
	}
}

func (o Options) validate() error {
	if o.Generations < 1 {
		return fmt.Errorf("generations must be positive, got %d", o.Generations)
	}
	if o.Population < 2 {
		return fmt.Errorf("population must be at least 2, got %d", o.Population)
	}
	if o.Elite < 1 || o.Elite > o.Population {
		return fmt.Errorf("elite must be in [1, population], got %d", o.Elite)
	}
	if o.TicksMin < 1 || o.TicksMax < o.TicksMin {
		return fmt.Errorf("tick range [%d, %d] is invalid", o.TicksMin, o.TicksMax)
	}
	if _, ok := analyze.ConstantValue(o.Target); !ok {
		return fmt.Errorf("unknown target constant %q", o.Target)
	}
	return nil
}

// Candidate is one evaluated configuration.
type Candidate struct {
	Config  *config.Config
	Summary *analyze.Summary
	Score   float64
}

// Result is the outcome of a finished search.
type Result struct {
	Best        Candidate
	Target      string
	Strategy    string
	Generations int
	// Evaluations counts simulator runs; cached elite scores are not
	// re-run.
	Evaluations int
}

// Search holds one search's options and generator.
type Search struct {
	opts   Options
	rng    *rand.Rand
	logger *slog.Logger
	// eval runs one candidate end to end. Defaults to analyze.Run.
	eval func(ctx context.Context, cfg *config.Config) (*analyze.Summary, error)
}

// SearchOption configures a Search at construction.
type SearchOption func(*Search)

// WithLogger routes search logging to the given logger.
func WithLogger(logger *slog.Logger) SearchOption {
	return func(s *Search) {
		s.logger = logger
	}
}

// New validates opts and builds a search around the given generator.
// The generator is owned by the search from here on.
func New(opts Options, rng *rand.Rand, sopts ...SearchOption) (*Search, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("failed to validate search options: %w", err)
	}
	if rng == nil {
		return nil, fmt.Errorf("search needs an explicit random source")
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = runtime.GOMAXPROCS(0)
	}

	s := &Search{
		opts:   opts,
		rng:    rng,
		logger: slog.Default(),
		eval:   analyze.Run,
	}
	for _, opt := range sopts {
		opt(s)
	}
	return s, nil
}

// baselineConfig is the starting point candidates are randomized from:
// a live kappa seed and the accrual/pattern/mt10 settings the search
// historically explored around.
func baselineConfig() *config.Config {
	cfg := config.Default()
	cfg.TickCount = 30
	cfg.KoppaSeed = rational.New(1, 1)
	cfg.KoppaTrigger = config.TriggerEveryMemory
	cfg.PrimeTarget = config.TargetMemory
	cfg.Mt10 = config.Mt10ForcedPsi
	return cfg
}

var (
	engineModes = []config.EngineMode{
		config.EngineAdd, config.EngineMulti, config.EngineSlide, config.EngineDeltaAdd,
	}
	psiModes = []config.PsiMode{
		config.PsiEveryMemory, config.PsiRhoOnly, config.PsiMemoryOrRho, config.PsiInhibitRho,
	}
	koppaModes = []config.KoppaMode{
		config.KoppaDump, config.KoppaPop, config.KoppaAccumulate,
	}
)

// candidate carries per-slot search state. Evaluated flags persist
// across generations so elites keep their scores.
type candidate struct {
	cfg       *config.Config
	summary   *analyze.Summary
	score     float64
	evaluated bool
}

// Run executes the search and returns the best evaluated candidate.
func (s *Search) Run(ctx context.Context) (*Result, error) {
	s.logger.Debug("search starting",
		"generations", s.opts.Generations,
		"population", s.opts.Population,
		"elite", s.opts.Elite,
		"target", s.opts.Target,
	)

	population := make([]*candidate, s.opts.Population)
	for i := range population {
		cfg := s.baseline()
		s.randomize(cfg)
		population[i] = &candidate{cfg: cfg}
	}

	result := &Result{
		Target:      s.opts.Target,
		Strategy:    s.opts.Strategy,
		Generations: s.opts.Generations,
	}
	for gen := 1; gen <= s.opts.Generations; gen++ {
		fresh, err := s.evaluate(ctx, population)
		result.Evaluations += fresh
		if err != nil {
			return nil, fmt.Errorf("generation %d: %w", gen, err)
		}

		rankCandidates(population)
		best := population[0]
		s.logger.Debug("generation complete",
			"generation", gen,
			"best_score", best.score,
			"psi_events", best.summary.PsiEvents,
			"classification", best.summary.Classification,
		)

		if gen < s.opts.Generations {
			population = s.nextGeneration(population)
		}
	}

	best := population[0]
	result.Best = Candidate{
		Config:  best.cfg.Clone(),
		Summary: best.summary,
		Score:   best.score,
	}
	s.logger.Debug("search finished",
		"best_score", result.Best.Score,
		"evaluations", result.Evaluations,
	)
	return result, nil
}

func (s *Search) baseline() *config.Config {
	if s.opts.Base != nil {
		return s.opts.Base.Clone()
	}
	return baselineConfig()
}

// randomize draws a fresh candidate configuration over cfg.
func (s *Search) randomize(cfg *config.Config) {
	cfg.Engine = engineModes[s.rng.Intn(len(engineModes))]
	cfg.UpsilonTrack = cfg.Engine.Track()
	cfg.BetaTrack = cfg.Engine.Track()
	cfg.Psi = psiModes[s.rng.Intn(len(psiModes))]
	cfg.Koppa = koppaModes[s.rng.Intn(len(koppaModes))]
	cfg.TriplePsi = s.rng.Intn(2) != 0
	cfg.MultiLevelKoppa = s.rng.Intn(2) != 0
	cfg.TickCount = uint64(s.intRange(int64(s.opts.TicksMin), int64(s.opts.TicksMax)))

	cfg.UpsilonSeed = rational.New(s.intRange(1, 8), s.intRange(1, 8))
	cfg.BetaSeed = rational.New(s.intRange(1, 8), s.intRange(1, 8))
	// A live kappa keeps the trajectory out of the absorbing zero.
	cfg.KoppaSeed = rational.New(1, 1)
}

// mutate applies one to three point mutations.
func (s *Search) mutate(cfg *config.Config) {
	mutations := 1 + s.rng.Intn(3)
	for i := 0; i < mutations; i++ {
		switch s.rng.Intn(6) {
		case 0:
			cfg.Engine = engineModes[s.rng.Intn(len(engineModes))]
			cfg.UpsilonTrack = cfg.Engine.Track()
			cfg.BetaTrack = cfg.Engine.Track()
		case 1:
			cfg.Psi = psiModes[s.rng.Intn(len(psiModes))]
		case 2:
			cfg.Koppa = koppaModes[s.rng.Intn(len(koppaModes))]
		case 3:
			cfg.TriplePsi = !cfg.TriplePsi
		case 4:
			cfg.UpsilonSeed = s.mutateSeed(cfg.UpsilonSeed)
		default:
			cfg.BetaSeed = s.mutateSeed(cfg.BetaSeed)
		}
	}
}

// mutateSeed nudges one component of a seed by one. The denominator
// never drops below one.
func (s *Search) mutateSeed(v *rational.Rational) *rational.Rational {
	num := new(big.Int).Set(v.Num())
	den := new(big.Int).Set(v.Den())
	switch s.rng.Intn(4) {
	case 0:
		num.Add(num, oneInt)
	case 1:
		num.Sub(num, oneInt)
	case 2:
		if den.Cmp(oneInt) > 0 {
			den.Sub(den, oneInt)
		}
	default:
		den.Add(den, oneInt)
	}
	return new(rational.Rational).SetComponents(num, den)
}

var oneInt = big.NewInt(1)

func (s *Search) intRange(min, max int64) int64 {
	return min + s.rng.Int63n(max-min+1)
}

// evaluate scores every unevaluated candidate, in parallel. Each
// evaluation owns its slot and its simulator; the group only fails on
// context cancellation, an unrunnable candidate just scores -Inf.
func (s *Search) evaluate(ctx context.Context, population []*candidate) (int, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Parallelism)

	fresh := 0
	for _, cand := range population {
		if cand.evaluated {
			continue
		}
		fresh++
		g.Go(func() error {
			summary, err := s.eval(ctx, cand.cfg)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				cand.summary = &analyze.Summary{}
				cand.score = math.Inf(-1)
				cand.evaluated = true
				return nil
			}
			cand.summary = summary
			cand.score = scoreSummary(summary, s.opts.Target)
			cand.evaluated = true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fresh, err
	}
	return fresh, nil
}

// scoreSummary rewards ratio proximity to the target plus event
// activity, and penalizes irregular spacing and ratio spread.
func scoreSummary(summary *analyze.Summary, target string) float64 {
	score := 0.0

	// An infinite snapshot would drown every other term, so only finite
	// ratios enter the distance reward.
	if targetValue, ok := analyze.ConstantValue(target); ok && summary.RatioDefined &&
		!math.IsInf(summary.FinalRatioSnapshot, 0) {
		score -= math.Abs(summary.FinalRatioSnapshot - targetValue)
	}

	score += float64(summary.PsiEvents) * 0.1
	score += float64(summary.RhoEvents) * 0.05

	score -= summary.PsiSpacingStddev * 0.01
	score -= summary.RatioVariance * 0.01

	return score
}

// rankCandidates sorts best first. The sort is stable so equal scores
// keep their generation order and the search stays deterministic.
func rankCandidates(population []*candidate) {
	sort.SliceStable(population, func(i, j int) bool {
		return population[i].score > population[j].score
	})
}

// nextGeneration keeps the elite slots as-is and refills the rest with
// mutated copies of randomly chosen elites.
func (s *Search) nextGeneration(population []*candidate) []*candidate {
	next := make([]*candidate, len(population))

	for i := 0; i < s.opts.Elite; i++ {
		next[i] = population[i]
	}

	for i := s.opts.Elite; i < len(population); i++ {
		parent := population[s.rng.Intn(s.opts.Elite)]
		cfg := parent.cfg.Clone()
		s.mutate(cfg)
		next[i] = &candidate{cfg: cfg}
	}

	return next
}
