// Public domain.

// Package match pairs catalogue rotation measures with extinction map
// pixels.
package match

import (
	"errors"
	"fmt"
	"math"

	"github.com/soniakeys/unit"

	"github.com/soniakeys/rmblos/internal/catalogue"
	"github.com/soniakeys/rmblos/internal/raster"
)

// ErrInsufficientData is wrapped by errors reporting too few points for
// the method, which needs at least one on and one off position.
var ErrInsufficientData = errors.New("insufficient data")

// Point is a catalogue entry matched to a pixel.
type Point struct {
	ID     int // ordinal in scan order
	X, Y   int
	RA     unit.RA    // catalogue position
	Dec    unit.Angle //
	PixRA  unit.RA    // position of the pixel center
	PixDec unit.Angle //
	RM     float64
	RMErr  float64

	Ext    float64 // extinction at the pixel
	ExtMin float64 // extremes within Radius
	ExtMax float64
	// positions of the extremes
	MinRA, MaxRA   unit.RA
	MinDec, MaxDec unit.Angle

	Radius   int  // neighborhood radius, pixels
	Physical bool // pixel was observed, not repaired
}

// Options control what counts as a usable pixel.
type Options struct {
	Resolve   raster.ResolveOptions
	UseFilled bool // filled missing cells count as data
	MinPoints int  // below this the match is loudly warned about
}

// Summary counts what happened to the catalogue.
type Summary struct {
	Entries     int
	InRaster    int
	NoData      int
	NonPhysical int // rejected for lack of repair
	Unrepaired  int // repair left the pixel empty
	Degenerate  int // repairs with a degenerate null box
	Matched     int
	Radius      int
	RMRes       unit.Angle
	ExtRes      unit.Angle
}

// Result is the matched table with its summary.
type Result struct {
	Points   []Point
	Summary  Summary
	Warnings []string
}

// Radius is the neighborhood, in pixels, covering catalogue positional
// resolution rmRes on a map of pixel scale extRes.
func Radius(rmRes, extRes unit.Angle) int {
	if extRes > rmRes {
		return 1
	}
	return int(math.Ceil(rmRes.Rad() / extRes.Rad()))
}

// Match matches entries against map m.  Local repair writes into m, only
// ever into cells flagged Bad.
func Match(m *raster.Map, es []catalogue.Entry, opt Options) (*Result, error) {
	res := &Result{}
	s := &res.Summary
	s.Entries = len(es)
	s.RMRes = catalogue.Resolution(es)
	s.ExtRes = m.WCS.Scale()
	s.Radius = Radius(s.RMRes, s.ExtRes)
	local := opt.Resolve.LocalRepair()

	hasData := func(x, y int) bool {
		if opt.UseFilled {
			return !math.IsNaN(m.At(x, y)) || m.IsBad(x, y)
		}
		return !m.IsMissing(x, y)
	}
	repair := func(x, y int) {
		if !m.Repair(x, y, opt.Resolve) {
			s.Degenerate++
		}
	}

	for i := range es {
		e := &es[i]
		x, y := m.WCS.Index(e.RA, e.Dec)
		if !m.In(x, y) {
			continue
		}
		s.InRaster++
		if !hasData(x, y) {
			s.NoData++
			continue
		}
		bad := m.IsBad(x, y)
		if bad {
			if !local {
				s.NonPhysical++
				continue
			}
			repair(x, y)
		}
		ext := m.At(x, y)
		if math.IsNaN(ext) {
			s.Unrepaired++
			continue
		}
		p := Point{
			ID:       len(res.Points),
			X:        x,
			Y:        y,
			RA:       e.RA,
			Dec:      e.Dec,
			RM:       e.RM,
			RMErr:    e.RMErr,
			Ext:      ext,
			Radius:   s.Radius,
			Physical: !bad,
		}
		p.PixRA, p.PixDec = m.WCS.World(float64(x), float64(y))

		b := m.RadiusBox(x, y, s.Radius)
		p.ExtMin, p.ExtMax = math.Inf(1), math.Inf(-1)
		for yy := b.YMin; yy < b.YMax; yy++ {
			for xx := b.XMin; xx < b.XMax; xx++ {
				if local && m.IsBad(xx, yy) {
					repair(xx, yy)
				}
				v := m.At(xx, yy)
				if math.IsNaN(v) {
					continue
				}
				if v < p.ExtMin {
					p.ExtMin = v
					p.MinRA, p.MinDec = m.WCS.World(float64(xx), float64(yy))
				}
				if v > p.ExtMax {
					p.ExtMax = v
					p.MaxRA, p.MaxDec = m.WCS.World(float64(xx), float64(yy))
				}
			}
		}
		res.Points = append(res.Points, p)
	}
	s.Matched = len(res.Points)

	switch {
	case s.InRaster < 2:
		return nil, fmt.Errorf("%d of %d catalogue entries fall inside the map, need 2: %w",
			s.InRaster, s.Entries, ErrInsufficientData)
	case s.Matched < 2:
		return nil, fmt.Errorf("%d rotation measures matched, need 2: %w",
			s.Matched, ErrInsufficientData)
	case s.Matched < opt.MinPoints:
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"only %d rotation measures matched, fewer than the %d minimum reference points",
			s.Matched, opt.MinPoints))
	case s.Matched < 2*opt.MinPoints:
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"only %d rotation measures matched; after exclusions fewer than %d may remain",
			s.Matched, opt.MinPoints))
	}
	if s.Degenerate > 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"%d repairs grew to the whole map with no sound neighborhood, repaired extinctions are unreliable",
			s.Degenerate))
	}
	return res, nil
}
