package opt

// Relaxer runs the force-based refiner as a global strategy: a long
// relaxation of the best packing, accepted only if it does not regress
// the best sum. Useful on its own for cheap runs and as a finishing pass
// after annealing or evolution.
type Relaxer struct {
	Iterations int
}

// Name implements Strategy
func (r *Relaxer) Name() string { return PhaseRelax }

// Run implements Strategy
func (r *Relaxer) Run(s *SearchState) {
	cand := append([]float64(nil), s.Best.Centers...)
	candRadii := append([]float64(nil), s.Best.Radii...)

	sum := s.Refiner.Refine(cand, candRadii, r.Iterations, s.RNG)
	s.Evals += r.Iterations

	if sum > s.BestSum {
		copy(s.Centers, cand)
		copy(s.Radii, candRadii)
		s.Sum = sum
		s.Record()
	} else {
		s.RestoreBest()
	}
	s.report(PhaseRelax, r.Iterations)
}
