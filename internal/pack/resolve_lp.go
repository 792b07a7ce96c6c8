package pack

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// LPResolver computes the exact optimum radii for fixed centers by solving
//
//	maximize   sum r_i
//	subject to r_i + r_j <= d_ij     for all pairs
//	           r_i       <= edge_i   (distance to nearest square edge)
//	           r_i       >= 0
//
// with the simplex method. The zero vector is always feasible, so solver
// failure is an internal invariant violation; when it happens the resolver
// logs it and falls back to iterative pairwise scaling instead of
// surfacing an error. For the same centers the LP optimum dominates the
// iterative method's fixed point.
type LPResolver struct {
	Margin   float64
	Fallback *IterativeResolver
}

// NewLPResolver returns an LP resolver with an iterative fallback sharing
// the same margin
func NewLPResolver(margin float64) *LPResolver {
	return &LPResolver{
		Margin:   margin,
		Fallback: NewIterativeResolver(margin),
	}
}

// Resolve implements Resolver
func (r *LPResolver) Resolve(centers, radii []float64) {
	n := len(radii)
	if n == 1 {
		radii[0] = math.Max(edgeDistance(centers, 0)-r.Margin, 0)
		return
	}

	// Standard form: one slack variable per inequality row.
	nPairs := n * (n - 1) / 2
	rows := nPairs + n
	cols := n + rows

	obj := make([]float64, cols)
	for i := 0; i < n; i++ {
		obj[i] = -1 // simplex minimizes; we want max sum r
	}

	a := mat.NewDense(rows, cols, nil)
	b := make([]float64, rows)

	row := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			a.Set(row, i, 1)
			a.Set(row, j, 1)
			a.Set(row, n+row, 1)
			b[row] = math.Max(dist(centers, i, j)-r.Margin, degenerateDist)
			row++
		}
	}
	for i := 0; i < n; i++ {
		a.Set(row, i, 1)
		a.Set(row, n+row, 1)
		b[row] = math.Max(edgeDistance(centers, i)-r.Margin, 0)
		row++
	}

	_, x, err := lp.Simplex(obj, a, b, 0, nil)
	if err != nil {
		slog.Warn("LP resolver failed, falling back to iterative scaling", "error", err)
		r.Fallback.Resolve(centers, radii)
		return
	}

	for i := 0; i < n; i++ {
		radii[i] = clamp(x[i], 0, 0.5)
	}
}
