// Public domain.

package raster

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// FillPolicy says what missing (NaN) input cells become.
type FillPolicy string

const (
	FillZero        FillPolicy = "Zero"
	FillAverage     FillPolicy = "Average"
	FillInf         FillPolicy = "Inf"
	FillInterpolate FillPolicy = "Interpolate"
	FillNaN         FillPolicy = "Nan"
)

// InterpArea says where non-physical cells are repaired.  Local repairs
// only around matched points, at match time.  All repairs the whole
// region up front, which is expensive on a large map.
type InterpArea string

const (
	AreaLocal InterpArea = "Local"
	AreaAll   InterpArea = "All"
)

// Map is a raster plus its validity masks.  Missing flags cells that
// were NaN in the input.  Bad flags non-physical (negative) cells that
// have been blanked to NaN and are waiting for repair.
type Map struct {
	*Raster
	Region  Box
	Missing []bool
	Bad     []bool
}

// NewMap wraps an input raster.  Masks start clear, Missing is taken
// from NaN cells of the input.
func NewMap(r *Raster, region Box) *Map {
	m := &Map{
		Raster:  r,
		Region:  region,
		Missing: make([]bool, len(r.Data)),
		Bad:     make([]bool, len(r.Data)),
	}
	for i, v := range r.Data {
		m.Missing[i] = math.IsNaN(v)
	}
	return m
}

func (m *Map) IsMissing(x, y int) bool { return m.Missing[y*m.W+x] }
func (m *Map) IsBad(x, y int) bool     { return m.Bad[y*m.W+x] }

// Clone copies grid and masks.
func (m *Map) Clone() *Map {
	return &Map{
		Raster:  m.Raster.Clone(),
		Region:  m.Region,
		Missing: append([]bool(nil), m.Missing...),
		Bad:     append([]bool(nil), m.Bad...),
	}
}

// ResolveOptions select the fill and repair behavior.
type ResolveOptions struct {
	Fill     FillPolicy   `yaml:"fill"`
	Interp   bool         `yaml:"interpolate_negative"` // repair non-physical cells at all
	Area     InterpArea   `yaml:"area"`
	Method   InterpMethod `yaml:"method"`
	Fallback float64      `yaml:"fallback"` // value for cells interpolation cannot reach
}

func (o ResolveOptions) Validate() error {
	switch o.Fill {
	case FillZero, FillAverage, FillInf, FillInterpolate, FillNaN:
	default:
		return fmt.Errorf("raster: unknown fill policy %q", o.Fill)
	}
	switch o.Area {
	case AreaLocal, AreaAll:
	default:
		return fmt.Errorf("raster: unknown interpolation area %q", o.Area)
	}
	switch o.Method {
	case Nearest, Linear, Cubic:
	default:
		return fmt.Errorf("raster: unknown interpolation method %q", o.Method)
	}
	return nil
}

// LocalRepair reports whether non-physical cells are repaired at match
// time.
func (o ResolveOptions) LocalRepair() bool { return o.Interp && o.Area == AreaLocal }

// Resolve returns a new map with missing cells filled according to the
// policy and negative cells in the region flagged Bad and blanked.  With
// area All the blanked cells are interpolated right away and the flags
// cleared.
//
// Cells already flagged Bad are not treated as missing, so resolving a
// resolved map with the same options leaves the grid unchanged.
func Resolve(in *Map, opt ResolveOptions) (*Map, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	m := in.Clone()
	missing := func(i int) bool { return math.IsNaN(m.Data[i]) && !m.Bad[i] }
	switch opt.Fill {
	case FillZero, FillAverage, FillInf:
		var v float64
		switch opt.Fill {
		case FillAverage:
			v = stat.Mean(m.Finite(m.Full()), nil)
		case FillInf:
			v = math.Inf(1)
		}
		for i := range m.Data {
			if missing(i) {
				m.Data[i] = v
			}
		}
	case FillInterpolate:
		Interpolate(m.Raster, m.Region, func(x, y int) bool {
			return missing(y*m.W + x)
		}, opt.Method, opt.Fallback)
	}
	b := m.Region
	for y := b.YMin; y < b.YMax; y++ {
		for x := b.XMin; x < b.XMax; x++ {
			if i := y*m.W + x; m.Data[i] < 0 {
				m.Data[i] = math.NaN()
				m.Bad[i] = true
			}
		}
	}
	if opt.Interp && opt.Area == AreaAll {
		m.repair(m.Region, opt)
	}
	return m, nil
}

// Repair interpolates the Bad cells in the null box around (x, y) and
// clears their flags.  Only Bad cells are written.  ok is false when the
// null box was degenerate.
func (m *Map) Repair(x, y int, opt ResolveOptions) (ok bool) {
	b, ok := m.NullBox(x, y)
	m.repair(b, opt)
	return ok
}

func (m *Map) repair(b Box, opt ResolveOptions) {
	Interpolate(m.Raster, b, m.IsBad, opt.Method, opt.Fallback)
	for y := b.YMin; y < b.YMax; y++ {
		for x := b.XMin; x < b.XMax; x++ {
			// unreachable cells stay flagged
			if i := y*m.W + x; !math.IsNaN(m.Data[i]) {
				m.Bad[i] = false
			}
		}
	}
}
