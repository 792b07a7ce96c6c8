package opt

import (
	"math/rand"

	"github.com/cwbudde/circlepack/internal/pack"
)

// Phase names reported through progress callbacks. The engine moves
// through init, refine, the configured strategy phases, then done.
const (
	PhaseInit   = "init"
	PhaseRefine = "refine"
	PhaseAnneal = "anneal"
	PhaseEvolve = "evolve"
	PhaseShake  = "shake"
	PhaseRelax  = "relax"
	PhaseSwarm  = "swarm"
	PhaseDone   = "done"
)

// Progress receives periodic updates during a run. step is
// phase-relative; evals counts resolver invocations so far.
type Progress func(phase string, step int, bestSum float64, evals int)

// ImproveFunc receives a copy of every new best packing as it is
// recorded. Callers may retain the slices.
type ImproveFunc func(centers, radii []float64, sum float64, evals int)

// SearchState carries one run's working packing and bookkeeping. It is
// owned exclusively by the run's control loop; strategies mutate the
// working centers/radii and promote improvements into the best snapshot
// through Record.
type SearchState struct {
	N       int
	Centers []float64 // working centers, len 2N
	Radii   []float64 // working radii, len N
	Sum     float64   // objective of the working packing

	Best    *pack.Packing // immutable snapshot of the best packing seen
	BestSum float64

	RNG      *rand.Rand
	Resolver pack.Resolver
	Refiner  *pack.Refiner
	Bounds   pack.Bounds

	Evals     int
	Progress  Progress
	OnImprove ImproveFunc
}

func newSearchState(n int, centers []float64, resolver pack.Resolver, refiner *pack.Refiner, bounds pack.Bounds, rng *rand.Rand, cfg *Config) *SearchState {
	s := &SearchState{
		N:         n,
		Centers:   centers,
		Radii:     make([]float64, n),
		Best:      pack.NewPacking(n),
		BestSum:   -1,
		RNG:       rng,
		Resolver:  resolver,
		Refiner:   refiner,
		Bounds:    bounds,
		Progress:  cfg.Progress,
		OnImprove: cfg.OnImprove,
	}
	s.Sum = s.Eval(s.Centers, s.Radii)
	s.Record()
	return s
}

// Eval resolves radii for the given centers and returns the sum of radii.
// Every strategy evaluates candidates through this method so the
// evaluation count stays accurate.
func (s *SearchState) Eval(centers, radii []float64) float64 {
	s.Resolver.Resolve(centers, radii)
	s.Evals++
	return pack.SumRadii(radii)
}

// Record snapshots the working packing as the new best if it improves on
// the best sum seen so far. The best sum is non-decreasing across a run.
func (s *SearchState) Record() bool {
	if s.Sum <= s.BestSum {
		return false
	}
	copy(s.Best.Centers, s.Centers)
	copy(s.Best.Radii, s.Radii)
	s.BestSum = s.Sum
	if s.OnImprove != nil {
		snapshot := s.Best.Clone()
		s.OnImprove(snapshot.Centers, snapshot.Radii, s.BestSum, s.Evals)
	}
	return true
}

// RestoreBest copies the best snapshot back into the working buffers
func (s *SearchState) RestoreBest() {
	copy(s.Centers, s.Best.Centers)
	copy(s.Radii, s.Best.Radii)
	s.Sum = s.BestSum
}

func (s *SearchState) report(phase string, step int) {
	if s.Progress != nil {
		s.Progress(phase, step, s.BestSum, s.Evals)
	}
}

// Strategy proposes new center configurations and accepts or rejects them
// against the sum-of-radii objective. Strategies share the resolver and
// refiner primitives through the state and differ only in how candidates
// are generated.
type Strategy interface {
	Name() string
	Run(s *SearchState)
}
