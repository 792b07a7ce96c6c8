package pack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefinerKeepsFeasibility(t *testing.T) {
	resolver := NewIterativeResolver(0)
	bounds := Bounds{Margin: 0.01}
	rf := NewRefiner(resolver, bounds)
	rng := RNGFromSeed(17)

	centers := LayoutUniform(8, rng)
	bounds.ClampCenters(centers)
	radii := make([]float64, 8)
	resolver.Resolve(centers, radii)

	sum := rf.Refine(centers, radii, 60, rng)

	assert.Greater(t, sum, 0.0)
	assert.InDelta(t, SumRadii(radii), sum, 1e-12)
	assert.True(t, Feasible(centers, radii, 1e-6))
	assert.True(t, bounds.Inside(centers))
}

func TestRefinerImprovesCrowdedLayout(t *testing.T) {
	resolver := NewIterativeResolver(0)
	bounds := Bounds{Margin: 0.01}
	rf := NewRefiner(resolver, bounds)
	rf.Convergence = DisabledConvergenceConfig()
	rng := RNGFromSeed(29)

	// Cluster all circles in a small blob; repulsion should spread them and
	// grow the sum.
	n := 6
	centers := make([]float64, 2*n)
	for i := 0; i < n; i++ {
		centers[2*i] = 0.45 + 0.1*rng.Float64()
		centers[2*i+1] = 0.45 + 0.1*rng.Float64()
	}
	radii := make([]float64, n)
	resolver.Resolve(centers, radii)
	before := SumRadii(radii)

	after := rf.Refine(centers, radii, 200, rng)

	require.Greater(t, after, before)
	assert.True(t, Feasible(centers, radii, 1e-6))
}

func TestRefinerDeterministic(t *testing.T) {
	resolver := NewIterativeResolver(0)
	bounds := Bounds{Margin: 0.01}

	run := func() ([]float64, []float64, float64) {
		rf := NewRefiner(resolver, bounds)
		rng := RNGFromSeed(31)
		centers := LayoutUniform(6, rng)
		bounds.ClampCenters(centers)
		radii := make([]float64, 6)
		resolver.Resolve(centers, radii)
		sum := rf.Refine(centers, radii, 40, rng)
		return centers, radii, sum
	}

	c1, r1, s1 := run()
	c2, r2, s2 := run()
	assert.Equal(t, c1, c2)
	assert.Equal(t, r1, r2)
	assert.Equal(t, s1, s2)
}

func TestRefinerZeroIterationsIsNoop(t *testing.T) {
	resolver := NewIterativeResolver(0)
	bounds := Bounds{Margin: 0.01}
	rf := NewRefiner(resolver, bounds)
	rng := RNGFromSeed(37)

	centers := []float64{0.3, 0.3, 0.7, 0.7}
	radii := make([]float64, 2)
	resolver.Resolve(centers, radii)
	want := append([]float64(nil), centers...)

	rf.Refine(centers, radii, 0, rng)
	assert.Equal(t, want, centers)
}
