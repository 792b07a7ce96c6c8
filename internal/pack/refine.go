package pack

import (
	"math"
	"math/rand"
)

// Refiner locally improves a packing by moving centers along repulsion and
// attraction forces and re-resolving radii after every move.
//
// Per iteration each circle accumulates three displacement terms: a
// pairwise push along the center-to-center direction proportional to the
// overlap depth, an inward push proportional to how far the circle's edge
// penetrates the square boundary, and a weak pull toward the square center
// for circles drifting past CenterRadius. The combined displacement is
// clamped to StepSize, applied, centers are re-clipped into the interior,
// and the resolver recomputes radii.
//
// The refiner never tracks a caller's best; callers accept or reject the
// refined result themselves. Given the same centers, radii and rng state
// the outcome is deterministic.
type Refiner struct {
	StepSize     float64 // Maximum per-circle displacement per iteration
	OverlapGain  float64 // Push strength for overlapping pairs
	NearGain     float64 // Softer push inside the near band around contact
	NearBand     float64 // Width of the near band beyond exact contact
	BoundaryGain float64 // Inward push per unit of boundary penetration
	CenterPull   float64 // Attraction strength toward the square center
	CenterRadius float64 // Distance from the center beyond which the pull applies
	Bounds       Bounds
	Convergence  ConvergenceConfig
	Resolver     Resolver
}

// NewRefiner returns a refiner with the default force gains
func NewRefiner(resolver Resolver, bounds Bounds) *Refiner {
	return &Refiner{
		StepSize:     0.02,
		OverlapGain:  0.15,
		NearGain:     0.05,
		NearBand:     0.06,
		BoundaryGain: 0.10,
		CenterPull:   0.014,
		CenterRadius: 0.34,
		Bounds:       bounds,
		Convergence:  DefaultConvergenceConfig(),
		Resolver:     resolver,
	}
}

// Refine runs up to iterations force steps on centers/radii in place and
// returns the final sum of radii. Stops early once the tracked improvement
// stalls per the convergence config.
func (rf *Refiner) Refine(centers, radii []float64, iterations int, rng *rand.Rand) float64 {
	n := len(radii)
	forces := make([]float64, 2*n)
	tracker := NewConvergenceTracker(rf.Convergence)

	sum := SumRadii(radii)
	for it := 0; it < iterations; it++ {
		for i := range forces {
			forces[i] = 0
		}
		rf.pairForces(centers, radii, forces, rng)
		rf.boundaryForces(centers, radii, forces)
		rf.centerPull(centers, forces)

		for i := 0; i < n; i++ {
			fx, fy := forces[2*i], forces[2*i+1]
			norm := math.Hypot(fx, fy)
			if norm > rf.StepSize {
				scale := rf.StepSize / norm
				fx *= scale
				fy *= scale
			}
			x, y := rf.Bounds.ClampPoint(centers[2*i]+fx, centers[2*i+1]+fy)
			centers[2*i] = x
			centers[2*i+1] = y
		}

		rf.Resolver.Resolve(centers, radii)
		sum = SumRadii(radii)
		if tracker.Update(sum) {
			break
		}
	}
	return sum
}

func (rf *Refiner) pairForces(centers, radii, forces []float64, rng *rand.Rand) {
	n := len(radii)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dx := centers[2*i] - centers[2*j]
			dy := centers[2*i+1] - centers[2*j+1]
			d := math.Hypot(dx, dy)
			contact := radii[i] + radii[j]

			var push float64
			switch {
			case d < contact:
				push = rf.OverlapGain * (contact - d)
			case d < contact+rf.NearBand:
				push = rf.NearGain * (contact + rf.NearBand - d)
			default:
				continue
			}

			var ux, uy float64
			if d < degenerateDist {
				// Coincident centers: separate along a random direction.
				a := rng.Float64() * 2 * math.Pi
				ux, uy = math.Cos(a), math.Sin(a)
			} else {
				ux, uy = dx/d, dy/d
			}
			forces[2*i] += ux * push
			forces[2*i+1] += uy * push
			forces[2*j] -= ux * push
			forces[2*j+1] -= uy * push
		}
	}
}

func (rf *Refiner) boundaryForces(centers, radii, forces []float64) {
	n := len(radii)
	for i := 0; i < n; i++ {
		x, y := centers[2*i], centers[2*i+1]
		r := radii[i] + rf.Bounds.Margin
		if pen := r - x; pen > 0 {
			forces[2*i] += rf.BoundaryGain * pen
		}
		if pen := r - (1 - x); pen > 0 {
			forces[2*i] -= rf.BoundaryGain * pen
		}
		if pen := r - y; pen > 0 {
			forces[2*i+1] += rf.BoundaryGain * pen
		}
		if pen := r - (1 - y); pen > 0 {
			forces[2*i+1] -= rf.BoundaryGain * pen
		}
	}
}

func (rf *Refiner) centerPull(centers, forces []float64) {
	if rf.CenterPull == 0 {
		return
	}
	n := len(centers) / 2
	for i := 0; i < n; i++ {
		dx := centers[2*i] - 0.5
		dy := centers[2*i+1] - 0.5
		if math.Hypot(dx, dy) > rf.CenterRadius {
			forces[2*i] -= rf.CenterPull * dx
			forces[2*i+1] -= rf.CenterPull * dy
		}
	}
}
