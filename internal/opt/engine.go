package opt

import (
	"errors"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/cwbudde/circlepack/internal/pack"
)

// ErrInvalidCircleCount is returned by Optimize for n <= 0. It is the only
// user-visible failure under a valid configuration; numerical degeneracy
// and LP solver trouble are recovered internally.
var ErrInvalidCircleCount = errors.New("opt: circle count must be positive")

// Result is the outcome of one optimization: the best packing observed
// across all phases and restarts.
type Result struct {
	Centers []float64 `json:"centers"` // flat x0,y0,x1,y1,...
	Radii   []float64 `json:"radii"`
	Sum     float64   `json:"sum"`
	Evals   int       `json:"evals"`
	Restart int       `json:"restart"` // which restart produced the best packing
}

// Optimize packs n circles into the unit square, maximizing the sum of
// radii under the non-overlap and boundary constraints. The run is
// deterministic given cfg.Seed. With cfg.Restarts > 1, independent seeded
// runs execute in parallel and the best final packing wins; each restart
// owns its state, so a final max-reduce is the only synchronization.
func Optimize(n int, cfg Config) (*Result, error) {
	if n <= 0 {
		return nil, ErrInvalidCircleCount
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	restarts := cfg.Restarts
	if restarts < 2 {
		return optimizeOne(n, cfg, pack.RNGFromSeed(cfg.Seed), 0), nil
	}

	results := make([]*Result, restarts)
	var wg sync.WaitGroup
	for k := 0; k < restarts; k++ {
		wg.Add(1)
		go func(k int) {
			defer wg.Done()
			rng := pack.DeriveRNG(cfg.Seed, uint64(k))
			results[k] = optimizeOne(n, cfg, rng, k)
		}(k)
	}
	wg.Wait()

	best := results[0]
	for _, r := range results[1:] {
		if r.Sum > best.Sum {
			best = r
		}
	}
	slog.Info("restarts complete", "restarts", restarts, "best_sum", best.Sum, "best_restart", best.Restart)
	return best, nil
}

func optimizeOne(n int, cfg Config, rng *rand.Rand, restart int) *Result {
	bounds := pack.Bounds{Margin: cfg.ClampMargin}
	resolver := buildResolver(cfg)
	refiner := pack.NewRefiner(resolver, bounds)
	refiner.StepSize = cfg.StepSize

	layout, _ := pack.Layout(cfg.Layout) // validated above
	var centers []float64
	if restart == 0 && len(cfg.InitialCenters) == 2*n {
		centers = append([]float64(nil), cfg.InitialCenters...)
	} else {
		centers = layout(n, rng)
	}
	bounds.ClampCenters(centers)

	state := newSearchState(n, centers, resolver, refiner, bounds, rng, &cfg)
	state.report(PhaseInit, 0)
	slog.Debug("initial layout resolved", "layout", cfg.Layout, "sum", state.Sum, "restart", restart)

	// Local refinement before global search: run on a copy and only
	// accept a non-regressing result.
	(&Relaxer{Iterations: cfg.RefineIterations}).Run(state)
	state.report(PhaseRefine, cfg.RefineIterations)

	for _, name := range cfg.Search {
		strategy := buildStrategy(name, cfg, layout)
		strategy.Run(state)
		slog.Debug("strategy finished", "strategy", strategy.Name(), "best_sum", state.BestSum, "evals", state.Evals)
	}

	state.RestoreBest()
	state.report(PhaseDone, 0)
	return &Result{
		Centers: state.Best.Centers,
		Radii:   state.Best.Radii,
		Sum:     state.BestSum,
		Evals:   state.Evals,
		Restart: restart,
	}
}

func buildResolver(cfg Config) pack.Resolver {
	iterative := &pack.IterativeResolver{
		Passes:    cfg.ResolverPasses,
		Tolerance: cfg.Tolerance,
		Shrink:    cfg.DegenerateShrink,
		Margin:    cfg.BoundaryMargin,
	}
	if cfg.Resolver == ResolverLP {
		return &pack.LPResolver{Margin: cfg.BoundaryMargin, Fallback: iterative}
	}
	return iterative
}

func buildStrategy(name string, cfg Config, layout pack.LayoutFunc) Strategy {
	switch name {
	case SearchAnnealing:
		return &Annealer{
			Steps:       cfg.IterationBudget,
			TempStart:   cfg.TempStart,
			TempEnd:     cfg.TempEnd,
			Geometric:   cfg.TempSchedule == "geometric",
			StepScale:   1,
			PolishSteps: cfg.IterationBudget / 5,
		}
	case SearchGenetic:
		return &Genetic{
			Generations:   cfg.GenerationBudget,
			PopSize:       cfg.PopSize,
			Elites:        cfg.Elites,
			CrossoverRate: cfg.CrossoverRate,
			BlendLow:      0.18,
			BlendHigh:     0.82,
			MutationScale: cfg.MutationScale,
			MutationDecay: cfg.MutationDecay,
			PolishEvery:   cfg.PolishEvery,
			PolishRounds:  6,
			PolishSamples: 8,
			Layout:        layout,
		}
	case SearchShake:
		return &Shaker{
			Rounds:         cfg.GenerationBudget,
			Subset:         cfg.ShakeSubset,
			RefineIters:    cfg.RefineIterations / 10,
			MinImprovement: cfg.MinImprovement,
		}
	case SearchMayfly:
		return &Mayfly{
			Iterations: cfg.GenerationBudget,
			PopSize:    maxInt(cfg.PopSize, 20),
		}
	default: // SearchRelax, validated earlier
		return &Relaxer{Iterations: cfg.RefineIterations}
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
