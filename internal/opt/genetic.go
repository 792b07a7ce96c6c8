package opt

import (
	"sort"

	"github.com/cwbudde/circlepack/internal/pack"
)

// outOfBoundsFitness is assigned to any individual with a center outside
// the unit square so selection never propagates it.
const outOfBoundsFitness = -1.0

// Genetic is the population search strategy. Each generation copies the
// top elites unchanged, then fills the rest of the population from a
// tournament-selected parent, an optional blend crossover with a random
// elite, and Gaussian mutation whose magnitude decays across generations.
// Every PolishEvery generations the current best individual alone gets a
// short keep-if-better random-step polish.
type Genetic struct {
	Generations   int
	PopSize       int
	Elites        int
	CrossoverRate float64
	BlendLow      float64 // lower bound of the crossover mixing weight
	BlendHigh     float64 // upper bound of the crossover mixing weight
	MutationScale float64
	MutationDecay float64 // fraction of the scale remaining at the last generation
	PolishEvery   int
	PolishRounds  int
	PolishSamples int
	Layout        pack.LayoutFunc
}

type individual struct {
	genome  []float64
	fitness float64
}

// Name implements Strategy
func (g *Genetic) Name() string { return PhaseEvolve }

func (g *Genetic) fitness(s *SearchState, genome, radii []float64) float64 {
	if !s.Bounds.Inside(genome) {
		return outOfBoundsFitness
	}
	return s.Eval(genome, radii)
}

// sigma returns the mutation magnitude for generation gen
func (g *Genetic) sigma(gen int) float64 {
	if g.Generations <= 1 {
		return g.MutationScale
	}
	t := float64(gen) / float64(g.Generations)
	return g.MutationScale * (1 - (1-g.MutationDecay)*t)
}

// seedPopulation builds the initial population from the incumbent centers
// plus fresh layouts
func (g *Genetic) seedPopulation(s *SearchState, radii []float64) []individual {
	pop := make([]individual, g.PopSize)
	pop[0] = individual{genome: append([]float64(nil), s.Centers...)}
	for p := 1; p < g.PopSize; p++ {
		genome := g.Layout(s.N, s.RNG)
		s.Bounds.ClampCenters(genome)
		pop[p] = individual{genome: genome}
	}
	for p := range pop {
		pop[p].fitness = g.fitness(s, pop[p].genome, radii)
	}
	return pop
}

// nextGeneration produces generation gen+1: the top elites carried over
// unchanged, the rest bred from tournament parents, crossover and mutation
func (g *Genetic) nextGeneration(s *SearchState, pop []individual, radii []float64, gen int) []individual {
	order := make([]int, len(pop))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return pop[order[a]].fitness > pop[order[b]].fitness
	})
	elites := order[:g.Elites]

	next := make([]individual, 0, g.PopSize)
	for _, e := range elites {
		next = append(next, individual{
			genome:  append([]float64(nil), pop[e].genome...),
			fitness: pop[e].fitness,
		})
	}

	sigma := g.sigma(gen)
	for len(next) < g.PopSize {
		child := append([]float64(nil), g.tournament(s, pop)...)
		if s.RNG.Float64() < g.CrossoverRate {
			mate := pop[elites[s.RNG.Intn(len(elites))]].genome
			alpha := g.BlendLow + s.RNG.Float64()*(g.BlendHigh-g.BlendLow)
			for i := range child {
				child[i] = alpha*child[i] + (1-alpha)*mate[i]
			}
		}
		for i := range child {
			child[i] += s.RNG.NormFloat64() * sigma
		}
		s.Bounds.ClampCenters(child)
		next = append(next, individual{genome: child, fitness: g.fitness(s, child, radii)})
	}
	return next
}

// Run implements Strategy
func (g *Genetic) Run(s *SearchState) {
	radii := make([]float64, s.N)
	pop := g.seedPopulation(s, radii)

	for gen := 0; gen < g.Generations; gen++ {
		pop = g.nextGeneration(s, pop, radii, gen)

		best := g.bestIndex(pop)
		sigma := g.sigma(gen)
		if g.PolishEvery > 0 && gen%g.PolishEvery == 0 {
			g.polish(s, &pop[best], radii, sigma)
		}

		if pop[best].fitness > s.BestSum {
			copy(s.Centers, pop[best].genome)
			s.Sum = s.Eval(s.Centers, s.Radii)
			s.Record()
		}
		s.report(PhaseEvolve, gen)
	}
}

// tournament returns the genome of the fitter of two random individuals
func (g *Genetic) tournament(s *SearchState, pop []individual) []float64 {
	a := s.RNG.Intn(len(pop))
	b := s.RNG.Intn(len(pop))
	if pop[a].fitness >= pop[b].fitness {
		return pop[a].genome
	}
	return pop[b].genome
}

func (g *Genetic) bestIndex(pop []individual) int {
	best := 0
	for i := 1; i < len(pop); i++ {
		if pop[i].fitness > pop[best].fitness {
			best = i
		}
	}
	return best
}

// polish runs repeated small random steps on ind, keeping each step only
// if it improves the individual's fitness
func (g *Genetic) polish(s *SearchState, ind *individual, radii []float64, sigma float64) {
	trial := make([]float64, len(ind.genome))
	for round := 0; round < g.PolishRounds; round++ {
		improved := false
		for sample := 0; sample < g.PolishSamples; sample++ {
			copy(trial, ind.genome)
			for i := range trial {
				trial[i] += s.RNG.NormFloat64() * sigma
			}
			s.Bounds.ClampCenters(trial)
			if f := g.fitness(s, trial, radii); f > ind.fitness {
				copy(ind.genome, trial)
				ind.fitness = f
				improved = true
			}
		}
		if !improved {
			break
		}
	}
}
