package pack

import "gonum.org/v1/gonum/floats"

// SumRadii is the objective maximized by every strategy. It is stateless
// and must be recomputed after any center or radius change; a cached value
// is never assumed valid after a mutation.
func SumRadii(radii []float64) float64 {
	return floats.Sum(radii)
}

// Feasible reports whether the packing satisfies the non-overlap and
// boundary invariants within tolerance eps.
func Feasible(centers, radii []float64, eps float64) bool {
	n := len(radii)
	for i := 0; i < n; i++ {
		if radii[i] < 0 {
			return false
		}
		if radii[i] > edgeDistance(centers, i)+eps {
			return false
		}
		for j := i + 1; j < n; j++ {
			if radii[i]+radii[j] > dist(centers, i, j)+eps {
				return false
			}
		}
	}
	return true
}
