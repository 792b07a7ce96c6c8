package opt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cwbudde/circlepack/internal/pack"
)

func testGenetic(generations int) *Genetic {
	return &Genetic{
		Generations:   generations,
		PopSize:       10,
		Elites:        2,
		CrossoverRate: 0.45,
		BlendLow:      0.18,
		BlendHigh:     0.82,
		MutationScale: 0.045,
		MutationDecay: 0.1,
		PolishEvery:   3,
		PolishRounds:  2,
		PolishSamples: 4,
		Layout:        pack.LayoutUniform,
	}
}

func TestGeneticSigmaDecays(t *testing.T) {
	g := testGenetic(10)
	assert.InDelta(t, 0.045, g.sigma(0), 1e-12)
	assert.Greater(t, g.sigma(0), g.sigma(5))
	assert.Greater(t, g.sigma(5), g.sigma(9))
	assert.Greater(t, g.sigma(9), 0.0)
}

func TestGeneticFitnessRejectsOutOfBounds(t *testing.T) {
	cfg := DefaultConfig()
	s := newTestState(t, 3, 5, &cfg)
	g := testGenetic(1)

	radii := make([]float64, 3)
	out := []float64{1.2, 0.5, 0.3, 0.3, 0.7, 0.7}
	assert.Equal(t, outOfBoundsFitness, g.fitness(s, out, radii))

	in := []float64{0.2, 0.5, 0.5, 0.3, 0.7, 0.7}
	assert.Greater(t, g.fitness(s, in, radii), 0.0)
}

func TestGeneticBestNeverRegresses(t *testing.T) {
	cfg := DefaultConfig()
	s := newTestState(t, 6, 77, &cfg)
	initial := s.BestSum

	g := testGenetic(8)
	g.Run(s)

	assert.GreaterOrEqual(t, s.BestSum, initial)
	assert.True(t, pack.Feasible(s.Best.Centers, s.Best.Radii, 1e-6))
}

func TestGeneticElitismGenerationBestNeverDrops(t *testing.T) {
	cfg := DefaultConfig()
	s := newTestState(t, 6, 77, &cfg)
	g := testGenetic(1)

	radii := make([]float64, s.N)
	pop := g.seedPopulation(s, radii)
	assert.Len(t, pop, g.PopSize)

	prev := pop[g.bestIndex(pop)].fitness
	for gen := 0; gen < 12; gen++ {
		pop = g.nextGeneration(s, pop, radii, gen)
		best := pop[g.bestIndex(pop)].fitness
		assert.GreaterOrEqual(t, best, prev, "generation %d lost the elite", gen)
		prev = best
	}
}

func TestGeneticTournamentNeverPicksWeaker(t *testing.T) {
	cfg := DefaultConfig()
	s := newTestState(t, 2, 1, &cfg)
	g := testGenetic(1)

	weak := individual{genome: []float64{0.5, 0.5, 0.5, 0.5}, fitness: 0.1}
	strong := individual{genome: []float64{0.25, 0.25, 0.75, 0.75}, fitness: 0.9}

	// The weak genome can only win a tournament against itself; whenever
	// the draw pairs the two, the stronger genome must come out.
	pop := []individual{weak, strong}
	sawStrong := false
	for i := 0; i < 50; i++ {
		winner := g.tournament(s, pop)
		if assert.ObjectsAreEqual(strong.genome, winner) {
			sawStrong = true
		}
	}
	assert.True(t, sawStrong)
}

func TestGeneticBestIndex(t *testing.T) {
	g := testGenetic(1)
	pop := []individual{
		{fitness: 0.3},
		{fitness: 0.9},
		{fitness: 0.5},
	}
	assert.Equal(t, 1, g.bestIndex(pop))
}
