// Package render rasterizes packings for visual inspection.
package render

import (
	"image"
	"image/color"
	"math"
)

// Packing rasterizes a packing into a square image: white canvas, black
// unit-square border, blue filled circles with darker outlines.
// Coordinates in [0,1] map to [0,size) pixels.
func Packing(centers, radii []float64, size int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))

	white := color.NRGBA{255, 255, 255, 255}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetNRGBA(x, y, white)
		}
	}

	fill := color.NRGBA{70, 130, 220, 255}
	outline := color.NRGBA{25, 60, 130, 255}
	scale := float64(size)

	for i := range radii {
		cx := centers[2*i] * scale
		cy := centers[2*i+1] * scale
		r := radii[i] * scale
		if r <= 0 {
			continue
		}

		x0 := int(math.Floor(cx - r - 1))
		x1 := int(math.Ceil(cx + r + 1))
		y0 := int(math.Floor(cy - r - 1))
		y1 := int(math.Ceil(cy + r + 1))
		for y := maxPx(y0, 0); y <= minPx(y1, size-1); y++ {
			for x := maxPx(x0, 0); x <= minPx(x1, size-1); x++ {
				d := math.Hypot(float64(x)+0.5-cx, float64(y)+0.5-cy)
				switch {
				case d <= r-1:
					img.SetNRGBA(x, y, fill)
				case d <= r:
					img.SetNRGBA(x, y, outline)
				}
			}
		}
	}

	border := color.NRGBA{0, 0, 0, 255}
	for p := 0; p < size; p++ {
		img.SetNRGBA(p, 0, border)
		img.SetNRGBA(p, size-1, border)
		img.SetNRGBA(0, p, border)
		img.SetNRGBA(size-1, p, border)
	}
	return img
}

func maxPx(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minPx(a, b int) int {
	if a < b {
		return a
	}
	return b
}
