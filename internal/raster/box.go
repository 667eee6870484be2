// Public domain.

package raster

import "math"

// Box is a half open pixel rectangle, [XMin, XMax) x [YMin, YMax).
type Box struct {
	XMin, XMax, YMin, YMax int
}

func (b Box) Empty() bool { return b.XMin >= b.XMax || b.YMin >= b.YMax }

func (b Box) Contains(x, y int) bool {
	return x >= b.XMin && x < b.XMax && y >= b.YMin && y < b.YMax
}

// Center returns the fractional pixel position of the box center.
func (b Box) Center() (x, y float64) {
	return float64(b.XMin+b.XMax-1) / 2, float64(b.YMin+b.YMax-1) / 2
}

// Bounds is a requested sub-region.  A nil edge is unspecified.
type Bounds struct {
	XMin *int `yaml:"xmin,omitempty"`
	XMax *int `yaml:"xmax,omitempty"`
	YMin *int `yaml:"ymin,omitempty"`
	YMax *int `yaml:"ymax,omitempty"`
}

// Clamp clips requested bounds to the raster extent.  Unspecified edges
// take the raster edge.  The result always satisfies
// 0 <= XMin <= XMax <= W and 0 <= YMin <= YMax <= H.
func (r *Raster) Clamp(req Bounds) Box {
	clip := func(p *int, def, max int) int {
		if p == nil {
			return def
		}
		switch v := *p; {
		case v < 0:
			return 0
		case v > max:
			return max
		default:
			return v
		}
	}
	b := Box{
		XMin: clip(req.XMin, 0, r.W),
		XMax: clip(req.XMax, r.W, r.W),
		YMin: clip(req.YMin, 0, r.H),
		YMax: clip(req.YMax, r.H, r.H),
	}
	// crossed bounds collapse to an empty box at the lower edge
	if b.XMax < b.XMin {
		b.XMax = b.XMin
	}
	if b.YMax < b.YMin {
		b.YMax = b.YMin
	}
	return b
}

// RadiusBox returns the box [x-n, x+n+1) x [y-n, y+n+1) clipped to the
// raster.
func (r *Raster) RadiusBox(x, y, n int) Box {
	b := Box{x - n, x + n + 1, y - n, y + n + 1}
	if b.XMin < 0 {
		b.XMin = 0
	}
	if b.YMin < 0 {
		b.YMin = 0
	}
	if b.XMax > r.W {
		b.XMax = r.W
	}
	if b.YMax > r.H {
		b.YMax = r.H
	}
	return b
}

// NullBox grows a box outward from seed pixel (x, y) until none of its
// four edges holds a NaN cell, or the raster edge stops it.  The box
// starts at the 3x3 neighborhood of the seed.
//
// ok is false when the box degenerated to the whole raster with NaN
// still on an edge, or when it holds no finite cell at all.  Either way
// there is nothing sound to interpolate from.
func (r *Raster) NullBox(x, y int) (b Box, ok bool) {
	b = r.RadiusBox(x, y, 1)
	nanCol := func(cx int) bool {
		for cy := b.YMin; cy < b.YMax; cy++ {
			if math.IsNaN(r.At(cx, cy)) {
				return true
			}
		}
		return false
	}
	nanRow := func(cy int) bool {
		for cx := b.XMin; cx < b.XMax; cx++ {
			if math.IsNaN(r.At(cx, cy)) {
				return true
			}
		}
		return false
	}
	for grown := true; grown; {
		grown = false
		if b.XMin > 0 && nanCol(b.XMin) {
			b.XMin--
			grown = true
		}
		if b.XMax < r.W && nanCol(b.XMax-1) {
			b.XMax++
			grown = true
		}
		if b.YMin > 0 && nanRow(b.YMin) {
			b.YMin--
			grown = true
		}
		if b.YMax < r.H && nanRow(b.YMax-1) {
			b.YMax++
			grown = true
		}
	}
	if len(r.Finite(b)) == 0 {
		return b, false
	}
	if b == r.Full() &&
		(nanCol(b.XMin) || nanCol(b.XMax-1) || nanRow(b.YMin) || nanRow(b.YMax-1)) {
		return b, false
	}
	return b, true
}
