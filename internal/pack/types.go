package pack

import "math"

// Circle is a single placed disc inside the unit square
type Circle struct {
	X, Y float64 // Center in [0,1]^2
	R    float64 // Radius >= 0
}

// Packing encodes N circle centers as a flat float64 slice plus radii.
// The flat layout (x0,y0,x1,y1,...) keeps strategy-level vector operations
// (crossover, mutation, perturbation) simple and allocation-free.
type Packing struct {
	Centers []float64 // len 2N
	Radii   []float64 // len N
	N       int
}

const paramsPerCircle = 2

// NewPacking creates an empty packing for n circles (centers at origin, radii zero)
func NewPacking(n int) *Packing {
	return &Packing{
		Centers: make([]float64, n*paramsPerCircle),
		Radii:   make([]float64, n),
		N:       n,
	}
}

// Circle returns the i-th circle as a value
func (p *Packing) Circle(i int) Circle {
	return Circle{
		X: p.Centers[2*i],
		Y: p.Centers[2*i+1],
		R: p.Radii[i],
	}
}

// SetCenter writes the i-th center
func (p *Packing) SetCenter(i int, x, y float64) {
	p.Centers[2*i] = x
	p.Centers[2*i+1] = y
}

// Clone returns a deep copy. Snapshots taken for the best-so-far packing
// must never alias the working buffers.
func (p *Packing) Clone() *Packing {
	c := NewPacking(p.N)
	copy(c.Centers, p.Centers)
	copy(c.Radii, p.Radii)
	return c
}

// CopyFrom overwrites this packing with src without allocating
func (p *Packing) CopyFrom(src *Packing) {
	copy(p.Centers, src.Centers)
	copy(p.Radii, src.Radii)
}

// Bounds defines the valid center region inside the unit square.
// Margin is the minimum clearance kept between a center and the square edge
// when clamping; it does not constrain radii (the resolver handles those).
type Bounds struct {
	Margin float64
}

// ClampPoint clamps a single center coordinate pair into [Margin, 1-Margin]^2
func (b Bounds) ClampPoint(x, y float64) (float64, float64) {
	return clamp(x, b.Margin, 1-b.Margin), clamp(y, b.Margin, 1-b.Margin)
}

// ClampCenters clamps every center in a flat coordinate slice
func (b Bounds) ClampCenters(centers []float64) {
	for i := range centers {
		centers[i] = clamp(centers[i], b.Margin, 1-b.Margin)
	}
}

// Inside reports whether all centers lie within the closed unit square
func (b Bounds) Inside(centers []float64) bool {
	for _, v := range centers {
		if v < 0 || v > 1 {
			return false
		}
	}
	return true
}

// dist returns the Euclidean distance between centers i and j of a flat slice
func dist(centers []float64, i, j int) float64 {
	dx := centers[2*i] - centers[2*j]
	dy := centers[2*i+1] - centers[2*j+1]
	return math.Hypot(dx, dy)
}

// edgeDistance returns the distance from center i to the nearest square edge
func edgeDistance(centers []float64, i int) float64 {
	x, y := centers[2*i], centers[2*i+1]
	return math.Min(math.Min(x, y), math.Min(1-x, 1-y))
}

func clamp(val, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, val))
}
