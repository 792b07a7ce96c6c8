package pack

import (
	"math"
	"sort"
)

// degenerateDist is the pair distance below which two centers are treated
// as coincident and rescued by shrinking instead of a division.
const degenerateDist = 1e-9

// radiusFloor keeps degenerate radii strictly positive so later scaling
// passes never lock a circle at exactly zero.
const radiusFloor = 1e-9

// Resolver computes the largest feasible radii for fixed centers. Resolve
// fills radii in place (len(radii) == len(centers)/2) and always succeeds
// for n >= 1. Radii are populated and mutated exclusively through this
// interface; centers are never touched.
type Resolver interface {
	Resolve(centers, radii []float64)
}

// IterativeResolver maximizes radii by repeated pairwise rescaling.
//
// Radii start at each center's distance to the nearest square edge, then
// every overlapping pair (r_i + r_j > d_ij) is rescaled by d_ij/(r_i+r_j)
// until no radius moves more than Tolerance in a full pass or Passes runs
// out. Pairs are visited in ascending distance order: the tightest
// constraints settle first, which converges in noticeably fewer passes
// than index order.
type IterativeResolver struct {
	Passes    int     // Maximum full passes over all pairs
	Tolerance float64 // Stop when the largest radius change in a pass drops below this
	Shrink    float64 // Factor applied to both radii of a degenerate (coincident) pair
	Margin    float64 // Clearance enforced at the square edge and between circle edges
}

// NewIterativeResolver returns a resolver with the default pass budget
func NewIterativeResolver(margin float64) *IterativeResolver {
	return &IterativeResolver{
		Passes:    8,
		Tolerance: 1e-9,
		Shrink:    0.88,
		Margin:    margin,
	}
}

type pairConstraint struct {
	i, j  int
	limit float64 // d_ij minus the margin
}

// Resolve implements Resolver
func (r *IterativeResolver) Resolve(centers, radii []float64) {
	n := len(radii)
	for i := 0; i < n; i++ {
		radii[i] = math.Max(edgeDistance(centers, i)-r.Margin, 0)
	}
	if n < 2 {
		return
	}

	pairs := make([]pairConstraint, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, pairConstraint{i: i, j: j, limit: dist(centers, i, j) - r.Margin})
		}
	}
	sort.Slice(pairs, func(a, b int) bool { return pairs[a].limit < pairs[b].limit })

	for pass := 0; pass < r.Passes; pass++ {
		maxChange := 0.0
		for _, p := range pairs {
			ri, rj := radii[p.i], radii[p.j]
			if p.limit < degenerateDist {
				// Coincident centers: scaling by limit/(ri+rj) would
				// divide by zero, so push both toward the floor instead.
				radii[p.i] = math.Max(ri*r.Shrink, radiusFloor)
				radii[p.j] = math.Max(rj*r.Shrink, radiusFloor)
				maxChange = math.Max(maxChange, ri-radii[p.i])
				continue
			}
			sum := ri + rj
			if sum <= p.limit || sum == 0 {
				continue
			}
			scale := p.limit / sum
			radii[p.i] = ri * scale
			radii[p.j] = rj * scale
			change := math.Max(ri-radii[p.i], rj-radii[p.j])
			maxChange = math.Max(maxChange, change)
		}
		if maxChange < r.Tolerance {
			break
		}
	}
}
