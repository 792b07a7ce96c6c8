package opt

import (
	"math"
)

// Annealer is the simulated annealing strategy. Each step perturbs one
// randomly chosen circle's center by Gaussian noise scaled with the
// current temperature, re-resolves radii, and accepts the candidate if it
// improves the sum or with probability exp(delta/T) otherwise. After the
// annealing phase a pure greedy phase polishes the result, accepting only
// strict improvements.
type Annealer struct {
	Steps       int
	TempStart   float64
	TempEnd     float64
	Geometric   bool // geometric instead of linear temperature decay
	StepScale   float64
	PolishSteps int
}

// Name implements Strategy
func (a *Annealer) Name() string { return PhaseAnneal }

// temperature returns T for step k of a.Steps
func (a *Annealer) temperature(k int) float64 {
	if a.Steps <= 1 {
		return a.TempEnd
	}
	t := float64(k) / float64(a.Steps-1)
	if a.Geometric {
		return a.TempStart * math.Pow(a.TempEnd/a.TempStart, t)
	}
	return a.TempStart*(1-t) + a.TempEnd*t
}

// accepts decides whether a proposal with objective change delta is taken
// at temperature t. Improvements are always accepted regardless of
// temperature.
func (a *Annealer) accepts(delta, t, u float64) bool {
	if delta >= 0 {
		return true
	}
	if t <= 0 {
		return false
	}
	return u < math.Exp(delta/t)
}

// Run implements Strategy
func (a *Annealer) Run(s *SearchState) {
	cand := make([]float64, 2*s.N)
	candRadii := make([]float64, s.N)

	for k := 0; k < a.Steps; k++ {
		t := a.temperature(k)
		copy(cand, s.Centers)

		i := s.RNG.Intn(s.N)
		cand[2*i] += s.RNG.NormFloat64() * t * a.StepScale
		cand[2*i+1] += s.RNG.NormFloat64() * t * a.StepScale
		cand[2*i], cand[2*i+1] = s.Bounds.ClampPoint(cand[2*i], cand[2*i+1])

		sum := s.Eval(cand, candRadii)
		if a.accepts(sum-s.Sum, t, s.RNG.Float64()) {
			copy(s.Centers, cand)
			copy(s.Radii, candRadii)
			s.Sum = sum
			s.Record()
		}
		if k%100 == 0 {
			s.report(PhaseAnneal, k)
		}
	}

	// Greedy phase: small fixed-scale moves, strict improvements only.
	s.RestoreBest()
	step := a.TempEnd * a.StepScale
	if step <= 0 {
		step = 0.005
	}
	for k := 0; k < a.PolishSteps; k++ {
		copy(cand, s.Centers)
		i := s.RNG.Intn(s.N)
		cand[2*i] += s.RNG.NormFloat64() * step
		cand[2*i+1] += s.RNG.NormFloat64() * step
		cand[2*i], cand[2*i+1] = s.Bounds.ClampPoint(cand[2*i], cand[2*i+1])

		sum := s.Eval(cand, candRadii)
		if sum > s.Sum {
			copy(s.Centers, cand)
			copy(s.Radii, candRadii)
			s.Sum = sum
			s.Record()
		}
	}
	s.report(PhaseAnneal, a.Steps+a.PolishSteps)
}
