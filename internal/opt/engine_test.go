package opt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/circlepack/internal/pack"
)

// smallConfig keeps engine tests fast while still exercising every phase.
func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.Seed = 42
	cfg.IterationBudget = 300
	cfg.GenerationBudget = 6
	cfg.RefineIterations = 40
	cfg.PopSize = 8
	cfg.Elites = 2
	return cfg
}

func TestOptimizeRejectsNonPositiveN(t *testing.T) {
	cfg := smallConfig()
	for _, n := range []int{0, -1, -26} {
		_, err := Optimize(n, cfg)
		assert.ErrorIs(t, err, ErrInvalidCircleCount)
	}
}

func TestOptimizeRejectsInvalidConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.Resolver = "exact"
	_, err := Optimize(5, cfg)
	assert.Error(t, err)
}

func TestOptimizeSingleCircle(t *testing.T) {
	cfg := smallConfig()
	result, err := Optimize(1, cfg)
	require.NoError(t, err)

	// One circle centered in the square reaches radius 0.5 regardless of
	// strategy; the engine should get very close.
	assert.Greater(t, result.Sum, 0.45)
	assert.Len(t, result.Centers, 2)
	assert.Len(t, result.Radii, 1)
}

func TestOptimizeProducesFeasiblePacking(t *testing.T) {
	cfg := smallConfig()
	for _, n := range []int{2, 7, 12} {
		result, err := Optimize(n, cfg)
		require.NoError(t, err)

		assert.Lenf(t, result.Centers, 2*n, "n=%d", n)
		assert.Lenf(t, result.Radii, n, "n=%d", n)
		assert.Greaterf(t, result.Sum, 0.0, "n=%d", n)
		assert.Greaterf(t, result.Evals, 0, "n=%d", n)
		assert.Truef(t, pack.Feasible(result.Centers, result.Radii, 1e-6), "n=%d infeasible", n)
	}
}

func TestOptimizeDeterministicForSeed(t *testing.T) {
	cfg := smallConfig()

	a, err := Optimize(7, cfg)
	require.NoError(t, err)
	b, err := Optimize(7, cfg)
	require.NoError(t, err)

	assert.Equal(t, a.Sum, b.Sum)
	assert.Equal(t, a.Centers, b.Centers)
	assert.Equal(t, a.Radii, b.Radii)
	assert.Equal(t, a.Evals, b.Evals)
}

func TestOptimizeSeedsChangeOutcome(t *testing.T) {
	cfg := smallConfig()
	a, err := Optimize(7, cfg)
	require.NoError(t, err)

	cfg.Seed = 43
	b, err := Optimize(7, cfg)
	require.NoError(t, err)

	assert.NotEqual(t, a.Centers, b.Centers)
}

func TestOptimizeProgressIsMonotonic(t *testing.T) {
	cfg := smallConfig()
	var sums []float64
	var phases []string
	cfg.Progress = func(phase string, step int, bestSum float64, evals int) {
		sums = append(sums, bestSum)
		phases = append(phases, phase)
	}

	_, err := Optimize(6, cfg)
	require.NoError(t, err)

	require.NotEmpty(t, sums)
	for i := 1; i < len(sums); i++ {
		assert.GreaterOrEqual(t, sums[i], sums[i-1])
	}
	assert.Equal(t, PhaseInit, phases[0])
	assert.Equal(t, PhaseDone, phases[len(phases)-1])
}

func TestOptimizeParallelRestarts(t *testing.T) {
	cfg := smallConfig()
	cfg.Restarts = 3

	result, err := Optimize(6, cfg)
	require.NoError(t, err)

	assert.True(t, pack.Feasible(result.Centers, result.Radii, 1e-6))
	assert.GreaterOrEqual(t, result.Restart, 0)
	assert.Less(t, result.Restart, 3)
}

func TestOptimizeRestartsDeterministic(t *testing.T) {
	cfg := smallConfig()
	cfg.Restarts = 3

	a, err := Optimize(6, cfg)
	require.NoError(t, err)
	b, err := Optimize(6, cfg)
	require.NoError(t, err)

	assert.Equal(t, a.Sum, b.Sum)
	assert.Equal(t, a.Restart, b.Restart)
}

func TestOptimizeUsesInitialCenters(t *testing.T) {
	cfg := smallConfig()
	cfg.Search = nil // layout + refine only
	cfg.RefineIterations = 0

	cfg.InitialCenters = []float64{0.25, 0.25, 0.75, 0.75}
	result, err := Optimize(2, cfg)
	require.NoError(t, err)

	// With no search and no refinement the result is the resolved seed
	// layout itself.
	assert.Equal(t, cfg.InitialCenters, result.Centers)
}

func TestOptimizeLPResolver(t *testing.T) {
	cfg := smallConfig()
	cfg.Resolver = ResolverLP
	cfg.Search = []string{SearchRelax}

	result, err := Optimize(4, cfg)
	require.NoError(t, err)
	assert.True(t, pack.Feasible(result.Centers, result.Radii, 1e-6))
}

func TestOptimizeAllStrategiesChain(t *testing.T) {
	cfg := smallConfig()
	cfg.GenerationBudget = 3
	cfg.Search = []string{SearchAnnealing, SearchGenetic, SearchShake, SearchRelax}

	result, err := Optimize(5, cfg)
	require.NoError(t, err)
	assert.True(t, pack.Feasible(result.Centers, result.Radii, 1e-6))
	assert.Greater(t, result.Sum, 0.0)
}
