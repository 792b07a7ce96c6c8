package pack

import (
	"fmt"
	"math"
	"math/rand"
)

// LayoutFunc produces n starting centers as a flat (x0,y0,x1,y1,...) slice.
// Centers encode a geometric prior only; they may violate feasibility
// margins and must be clamped by the caller before first use. Radii are
// never produced here. Deterministic given the rng state.
type LayoutFunc func(n int, rng *rand.Rand) []float64

// layouts is the registry of selectable layout families
var layouts = map[string]LayoutFunc{
	"uniform": LayoutUniform,
	"grid":    LayoutGrid,
	"rings":   LayoutRings,
	"hex":     LayoutHex,
	"hybrid":  LayoutHybrid,
}

// Layout returns the named layout generator
func Layout(name string) (LayoutFunc, error) {
	fn, ok := layouts[name]
	if !ok {
		return nil, fmt.Errorf("unknown layout %q", name)
	}
	return fn, nil
}

// LayoutNames lists the registered layout families
func LayoutNames() []string {
	return []string{"uniform", "grid", "rings", "hex", "hybrid"}
}

// LayoutUniform scatters centers uniformly over the interior [0.1, 0.9]^2
func LayoutUniform(n int, rng *rand.Rand) []float64 {
	centers := make([]float64, 2*n)
	for i := range centers {
		centers[i] = 0.1 + 0.8*rng.Float64()
	}
	return centers
}

// LayoutGrid places centers on a near-square grid with a small jitter to
// break symmetry
func LayoutGrid(n int, rng *rand.Rand) []float64 {
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	rows := (n + cols - 1) / cols
	centers := make([]float64, 2*n)
	for i := 0; i < n; i++ {
		cx := (float64(i%cols) + 0.5) / float64(cols)
		cy := (float64(i/cols) + 0.5) / float64(rows)
		centers[2*i] = cx + rng.NormFloat64()*0.01
		centers[2*i+1] = cy + rng.NormFloat64()*0.01
	}
	return centers
}

// LayoutRings places one center circle and the rest on concentric rings
// with jittered angles and radii
func LayoutRings(n int, rng *rand.Rand) []float64 {
	centers := make([]float64, 2*n)
	idx := 0
	place := func(x, y float64) {
		centers[2*idx] = x
		centers[2*idx+1] = y
		idx++
	}
	place(0.5, 0.5)

	// Spread remaining circles over rings of growing radius, six more
	// slots per ring outward.
	remaining := n - 1
	ring := 0
	for remaining > 0 {
		ring++
		count := 6 * ring
		if count > remaining {
			count = remaining
		}
		radius := 0.16 * float64(ring)
		for k := 0; k < count; k++ {
			a := 2*math.Pi*float64(k)/float64(count) + rng.Float64()*0.1
			r := radius + rng.NormFloat64()*0.01
			place(0.5+r*math.Cos(a), 0.5+r*math.Sin(a))
		}
		remaining -= count
	}
	return centers
}

// LayoutHex fills the square row by row on a hexagonal lattice
func LayoutHex(n int, rng *rand.Rand) []float64 {
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	pitch := 1.0 / float64(cols)
	rowHeight := pitch * math.Sqrt(3) / 2
	centers := make([]float64, 2*n)
	idx := 0
	for row := 0; idx < n; row++ {
		offset := 0.0
		if row%2 == 1 {
			offset = pitch / 2
		}
		for col := 0; col < cols && idx < n; col++ {
			x := offset + (float64(col)+0.5)*pitch
			y := (float64(row) + 0.5) * rowHeight
			centers[2*idx] = x + rng.NormFloat64()*0.005
			centers[2*idx+1] = y + rng.NormFloat64()*0.005
			idx++
		}
	}
	return centers
}

// LayoutHybrid seeds a center circle, the four corners, the four edge
// midpoints, an inner hex-like ring and an outer ring. This mirrors the
// layouts that reach the best sums on moderate n: large corner and edge
// circles limited only by their two nearest walls, a dense core, and a
// ring filling the space between.
func LayoutHybrid(n int, rng *rand.Rand) []float64 {
	if n < 9 {
		return LayoutRings(n, rng)
	}
	centers := make([]float64, 2*n)
	idx := 0
	place := func(x, y float64) {
		centers[2*idx] = x
		centers[2*idx+1] = y
		idx++
	}
	jitter := func(v float64) float64 {
		return v + (rng.Float64()*2-1)*0.012
	}

	place(0.5, 0.5)
	for _, c := range [][2]float64{{0.03, 0.03}, {0.97, 0.03}, {0.97, 0.97}, {0.03, 0.97}} {
		place(jitter(c[0]), jitter(c[1]))
	}
	for _, c := range [][2]float64{{0.5, 0.03}, {0.97, 0.5}, {0.5, 0.97}, {0.03, 0.5}} {
		place(jitter(c[0]), jitter(c[1]))
	}

	// Inner ring takes roughly half of what is left, outer ring the rest.
	inner := (n - idx + 1) / 2
	if inner > 8 {
		inner = 8
	}
	for k := 0; k < inner; k++ {
		a := math.Pi/8 + 2*math.Pi*float64(k)/float64(inner) + (rng.Float64()*2-1)*0.11
		r := 0.205 + (rng.Float64()*2-1)*0.015
		place(0.5+r*math.Cos(a), 0.5+r*math.Sin(a))
	}
	outer := n - idx
	for k := 0; k < outer; k++ {
		a := 2*math.Pi*float64(k)/float64(outer) + (rng.Float64()*2-1)*0.12
		r := 0.44 + (rng.Float64()*2-1)*0.017
		place(0.5+r*math.Cos(a), 0.5+r*math.Sin(a))
	}
	return centers
}
