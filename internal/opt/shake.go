package opt

// Shaker is the shake-and-reoptimize strategy. Each round repositions a
// small random subset of circles uniformly within the interior of the
// best packing, runs a short refiner pass, and accepts the result as the
// new best only when its sum exceeds the previous best by more than
// MinImprovement. The threshold keeps numerical noise from flapping the
// best back and forth between equivalent local optima.
type Shaker struct {
	Rounds         int
	Subset         int // circles repositioned per round
	RefineIters    int
	MinImprovement float64
}

// Name implements Strategy
func (sh *Shaker) Name() string { return PhaseShake }

// Run implements Strategy
func (sh *Shaker) Run(s *SearchState) {
	cand := make([]float64, 2*s.N)
	candRadii := make([]float64, s.N)

	subset := sh.Subset
	if subset < 1 {
		subset = 1
	}
	if subset > s.N {
		subset = s.N
	}

	for round := 0; round < sh.Rounds; round++ {
		copy(cand, s.Best.Centers)
		for _, i := range s.RNG.Perm(s.N)[:subset] {
			cand[2*i] = 0.1 + 0.8*s.RNG.Float64()
			cand[2*i+1] = 0.1 + 0.8*s.RNG.Float64()
		}
		s.Bounds.ClampCenters(cand)

		s.Resolver.Resolve(cand, candRadii)
		s.Evals++
		sum := s.Refiner.Refine(cand, candRadii, sh.RefineIters, s.RNG)
		s.Evals += sh.RefineIters

		if sum > s.BestSum+sh.MinImprovement {
			copy(s.Centers, cand)
			copy(s.Radii, candRadii)
			s.Sum = sum
			s.Record()
		}
		s.report(PhaseShake, round)
	}
	s.RestoreBest()
}
