// Public domain.

package raster

import (
	"math"

	"gonum.org/v1/gonum/interp"
)

// InterpMethod selects how a cell is estimated from its neighbors.
type InterpMethod string

const (
	Nearest InterpMethod = "nearest"
	Linear  InterpMethod = "linear"
	Cubic   InterpMethod = "cubic"
)

// Interpolate replaces the target cells inside box b with values
// estimated from the finite non-target cells of the same box.  Estimates
// use only the grid as it was on entry, never other fresh estimates.
// A target no control cell can reach gets fallback.
//
// Linear interpolates along the row and along the column between the
// nearest controls on either side and averages whichever of the two are
// bracketed.  A cell bracketed on neither axis takes its nearest control.
// Cubic is the same with a natural cubic spline through all controls of
// the row or column, and linear where a line has fewer than three.
func Interpolate(r *Raster, b Box, target func(x, y int) bool,
	method InterpMethod, fallback float64) {
	control := func(x, y int) bool {
		v := r.At(x, y)
		return !target(x, y) && !math.IsNaN(v) && !math.IsInf(v, 0)
	}
	type cell struct{ x, y int }
	var targets, controls []cell
	for y := b.YMin; y < b.YMax; y++ {
		for x := b.XMin; x < b.XMax; x++ {
			switch {
			case target(x, y):
				targets = append(targets, cell{x, y})
			case control(x, y):
				controls = append(controls, cell{x, y})
			}
		}
	}
	if len(targets) == 0 {
		return
	}
	nearest := func(t cell) float64 {
		best, bd := fallback, math.Inf(1)
		for _, c := range controls {
			dx, dy := float64(c.x-t.x), float64(c.y-t.y)
			if d := dx*dx + dy*dy; d < bd {
				best, bd = r.At(c.x, c.y), d
			}
		}
		return best
	}
	// bracket scans from t in direction (dx, dy) for the first control.
	bracket := func(t cell, dx, dy int) (v float64, dist int, ok bool) {
		for x, y, d := t.x+dx, t.y+dy, 1; b.Contains(x, y); x, y, d = x+dx, y+dy, d+1 {
			if control(x, y) {
				return r.At(x, y), d, true
			}
		}
		return 0, 0, false
	}
	lerp := func(t cell, dx, dy int) (float64, bool) {
		v0, d0, ok0 := bracket(t, -dx, -dy)
		v1, d1, ok1 := bracket(t, dx, dy)
		if !ok0 || !ok1 {
			return 0, false
		}
		f := float64(d0) / float64(d0+d1)
		return v0 + f*(v1-v0), true
	}
	spline := func(t cell, dx, dy int) (float64, bool) {
		if _, _, ok := bracket(t, -dx, -dy); !ok {
			return 0, false
		}
		if _, _, ok := bracket(t, dx, dy); !ok {
			return 0, false
		}
		x, y := t.x, t.y
		if dx != 0 {
			x = b.XMin
		} else {
			y = b.YMin
		}
		var xs, ys []float64
		for ; b.Contains(x, y); x, y = x+dx, y+dy {
			if control(x, y) {
				xs = append(xs, float64(x*dx+y*dy))
				ys = append(ys, r.At(x, y))
			}
		}
		var nc interp.NaturalCubic
		if len(xs) < 3 || nc.Fit(xs, ys) != nil {
			return lerp(t, dx, dy)
		}
		return nc.Predict(float64(t.x*dx + t.y*dy)), true
	}
	est := make([]float64, len(targets))
	for i, t := range targets {
		if method == Linear || method == Cubic {
			along := lerp
			if method == Cubic {
				along = spline
			}
			var sum float64
			var n int
			if v, ok := along(t, 1, 0); ok {
				sum += v
				n++
			}
			if v, ok := along(t, 0, 1); ok {
				sum += v
				n++
			}
			if n > 0 {
				est[i] = sum / float64(n)
				continue
			}
		}
		est[i] = nearest(t)
	}
	for i, t := range targets {
		r.Set(t.x, t.y, est[i])
	}
}
