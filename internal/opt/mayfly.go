package opt

import (
	"log/slog"

	"github.com/cwbudde/mayfly"
)

// Mayfly wraps the external mayfly swarm optimizer as a global search
// strategy over the flattened center vector. The objective handed to the
// library is the negated sum of resolved radii, since the library
// minimizes. Bounds are the unit square on every coordinate, which fits
// the library's scalar-bounds contract directly.
type Mayfly struct {
	Iterations int
	PopSize    int // the library requires at least 20
}

// Name implements Strategy
func (m *Mayfly) Name() string { return PhaseSwarm }

// objective builds the cost function handed to the library. Positions may
// drift outside the unit square mid-flight, so each evaluation clamps a
// scratch copy; the library's own vectors are never written to.
func (m *Mayfly) objective(s *SearchState, radii []float64) func([]float64) float64 {
	buf := make([]float64, 2*s.N)
	return func(x []float64) float64 {
		copy(buf, x)
		s.Bounds.ClampCenters(buf)
		return -s.Eval(buf, radii)
	}
}

// Run implements Strategy
func (m *Mayfly) Run(s *SearchState) {
	radii := make([]float64, s.N)

	config := mayfly.NewDefaultConfig()
	config.ObjectiveFunc = m.objective(s, radii)
	config.ProblemSize = 2 * s.N
	config.MaxIterations = m.Iterations
	config.NPop = m.PopSize
	config.LowerBound = 0
	config.UpperBound = 1
	config.Rand = s.RNG

	result, err := mayfly.Optimize(config)
	if err != nil {
		// Treated like a rejected proposal: the best packing stands.
		slog.Warn("mayfly optimization failed", "error", err)
		s.RestoreBest()
		return
	}

	sum := -result.GlobalBest.Cost
	if sum > s.BestSum {
		copy(s.Centers, result.GlobalBest.Position)
		s.Bounds.ClampCenters(s.Centers)
		s.Sum = s.Eval(s.Centers, s.Radii)
		s.Record()
	} else {
		s.RestoreBest()
	}
	s.report(PhaseSwarm, m.Iterations)
}
