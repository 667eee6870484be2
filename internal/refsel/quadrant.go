// Public domain.

package refsel

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/soniakeys/rmblos/internal/match"
	"github.com/soniakeys/rmblos/internal/raster"
)

// Quadrant numbers a partition of the sky around the cloud, 1 through 4.
type Quadrant int

// Line is y = M*x + B in pixel coordinates, or x = X0 when Vertical.
type Line struct {
	M, B     float64
	Vertical bool
	X0       float64
}

// Above is strict, a point on the line is below it.
func (l Line) Above(x, y float64) bool {
	if l.Vertical {
		return x > l.X0
	}
	return y > l.M*x+l.B
}

// Partition divides the sky by the cloud's major axis, fit through its
// high extinction pixels, and the perpendicular to that axis through the
// extinction weighted centroid.
type Partition struct {
	CX, CY float64 // centroid, pixels
	Axis   Line
	Perp   Line
}

// QuadrantWeight is shared by the points of a quadrant.
const QuadrantWeight = 1e8

// NewPartition fits the partition to the region of m.  Pixels under
// maskWeight times the mean extinction are ignored.  alpha regularizes
// the slope of the axis fit.
func NewPartition(m *raster.Map, maskWeight, alpha float64) (*Partition, error) {
	mean := MeanExtinction(m)
	cut := maskWeight * mean
	var xs, ys, ws []float64
	var hx, hy, hw []float64
	b := m.Region
	for y := b.YMin; y < b.YMax; y++ {
		for x := b.XMin; x < b.XMax; x++ {
			v := m.At(x, y)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			w := v
			if v < cut {
				w = 0
			}
			xs = append(xs, float64(x))
			ys = append(ys, float64(y))
			ws = append(ws, w)
			if v > cut {
				hx = append(hx, float64(x))
				hy = append(hy, float64(y))
				hw = append(hw, v)
			}
		}
	}
	if len(hw) == 0 {
		return nil, errors.New("quadrants: no pixels above the mask level")
	}
	p := &Partition{
		CX: stat.Mean(xs, ws),
		CY: stat.Mean(ys, ws),
	}
	// weighted ridge regression of y on x, intercept not penalized
	mx, my := stat.Mean(hx, hw), stat.Mean(hy, hw)
	var sxy, sxx float64
	for i, w := range hw {
		dx := hx[i] - mx
		sxy += w * dx * (hy[i] - my)
		sxx += w * dx * dx
	}
	slope := sxy / (sxx + alpha)
	p.Axis = Line{M: slope, B: my - slope*mx}
	if slope == 0 {
		p.Perp = Line{Vertical: true, X0: p.CX}
	} else {
		mp := -1 / slope
		p.Perp = Line{M: mp, B: p.CY - mp*p.CX}
	}
	return p, nil
}

// Of classifies a pixel position.
func (p *Partition) Of(x, y float64) Quadrant {
	a1, a2 := p.Axis.Above(x, y), p.Perp.Above(x, y)
	switch {
	case a1 && a2:
		return 1
	case a1:
		return 2
	case a2:
		return 3
	}
	return 4
}

// Point classifies a matched point by its pixel.
func (p *Partition) Point(pt match.Point) Quadrant {
	return p.Of(float64(pt.X), float64(pt.Y))
}

// Counts tallies points per quadrant, index q-1.
func (p *Partition) Counts(points []match.Point) (c [4]int) {
	for _, pt := range points {
		c[p.Point(pt)-1]++
	}
	return
}

// Split groups points by quadrant, index q-1, preserving order.
func (p *Partition) Split(points []match.Point) (s [4][]match.Point) {
	for _, pt := range points {
		q := p.Point(pt) - 1
		s[q] = append(s[q], pt)
	}
	return
}

// Weights gives each point QuadrantWeight divided by the number of
// points in its quadrant, so every populated quadrant carries the same
// total weight.
func (p *Partition) Weights(points []match.Point) []float64 {
	c := p.Counts(points)
	w := make([]float64, len(points))
	for i, pt := range points {
		w[i] = QuadrantWeight / float64(c[p.Point(pt)-1])
	}
	return w
}
