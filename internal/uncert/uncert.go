// Public domain.

// Package uncert combines the uncertainties of a field strength into
// asymmetric bounds: rotation measure error, the spread of extinction
// near the point, and the sensitivity of the chemical model to its
// density and temperature.
package uncert

import (
	"fmt"
	"math"
	"sort"

	"github.com/soniakeys/unit"

	"github.com/soniakeys/rmblos/internal/blos"
)

// Pair is a perturbation of one model parameter up and down by Percent.
type Pair struct {
	Percent     float64
	Plus, Minus blos.Run
}

// Pairs groups runs by perturbation magnitude, in ascending order.
// Runs without a partner of opposite sign are dropped.
func Pairs(runs []blos.Run) []Pair {
	type half struct{ plus, minus *blos.Run }
	m := map[float64]*half{}
	for i := range runs {
		r := &runs[i]
		v := r.Temp + r.Dens // one of them is zero
		h := m[math.Abs(v)]
		if h == nil {
			h = &half{}
			m[math.Abs(v)] = h
		}
		if v > 0 {
			h.plus = r
		} else {
			h.minus = r
		}
	}
	var ps []Pair
	for pc, h := range m {
		if h.plus != nil && h.minus != nil {
			ps = append(ps, Pair{Percent: pc, Plus: *h.plus, Minus: *h.minus})
		}
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i].Percent < ps[j].Percent })
	return ps
}

// Usable reports why a pair cannot give deltas for the base results, or
// the empty string if it can.
func (p *Pair) Usable(base []blos.Result, useNaNs bool) string {
	for _, r := range []*blos.Run{&p.Plus, &p.Minus} {
		if r.Err != nil {
			return r.Err.Error()
		}
		ids := make(map[int]bool, len(r.Results))
		for i := range r.Results {
			res := &r.Results[i]
			if !useNaNs && res.HasNaN() {
				return fmt.Sprintf("%s: undefined field at point %d", r.Label(), res.ID)
			}
			ids[res.ID] = true
		}
		for i := range base {
			if !ids[base[i].ID] {
				return fmt.Sprintf("%s: no field at point %d", r.Label(), base[i].ID)
			}
		}
	}
	return ""
}

// Select picks the smallest usable perturbation.  Reasons for skipping
// smaller ones are returned.
func Select(pairs []Pair, base []blos.Result, useNaNs bool) (p *Pair, skipped []string) {
	for i := range pairs {
		why := pairs[i].Usable(base, useNaNs)
		if why == "" {
			return &pairs[i], skipped
		}
		skipped = append(skipped, fmt.Sprintf("±%g%%: %s", pairs[i].Percent, why))
	}
	return nil, skipped
}

// ChemDeltas are the distances of b to the highest and lowest of b, x
// and y.  Both are nonnegative for defined values.
func ChemDeltas(b, x, y float64) (up, down float64) {
	var hi, lo float64
	switch {
	case b >= x && b >= y:
		hi, lo = b, math.Min(x, y)
	case b <= x && b <= y:
		hi, lo = math.Max(x, y), b
	default:
		hi, lo = math.Max(x, y), math.Min(x, y)
	}
	return hi - b, b - lo
}

// Result is a field strength with its bounds.
type Result struct {
	ID       int
	RA       unit.RA
	Dec      unit.Angle
	Ext      float64
	ScaledRM float64
	B        float64

	RMTerm           float64
	ExtUp, ExtDown   float64
	DensUp, DensDown float64
	TempUp, TempDown float64
	Upper, Lower     float64
}

// Options for Propagate.
type Options struct {
	UseNaNs bool // accept perturbations with undefined fields
}

// Set is the outcome of Propagate.  Density and Temperature are nil when
// no pair was usable and that term was left out.
type Set struct {
	Results     []Result
	Density     *Pair
	Temperature *Pair
	Warnings    []string
}

// Propagate computes bounds for base results from density and
// temperature perturbation runs.
func Propagate(base []blos.Result, density, temperature []blos.Run, opt Options) *Set {
	s := &Set{}
	pick := func(kind string, runs []blos.Run) (*Pair, map[int]*blos.Result, map[int]*blos.Result) {
		p, skipped := Select(Pairs(runs), base, opt.UseNaNs)
		for _, w := range skipped {
			s.Warnings = append(s.Warnings, kind+" perturbation skipped "+w)
		}
		if p == nil {
			s.Warnings = append(s.Warnings, fmt.Sprintf(
				"no usable %s perturbation, its uncertainty is left out", kind))
			return nil, nil, nil
		}
		return p, byID(p.Plus.Results), byID(p.Minus.Results)
	}
	var dPlus, dMinus, tPlus, tMinus map[int]*blos.Result
	s.Density, dPlus, dMinus = pick("density", density)
	s.Temperature, tPlus, tMinus = pick("temperature", temperature)

	s.Results = make([]Result, len(base))
	for i := range base {
		b := &base[i]
		r := &s.Results[i]
		*r = Result{
			ID:       b.ID,
			RA:       b.RA,
			Dec:      b.Dec,
			Ext:      b.Ext,
			ScaledRM: b.ScaledRM,
			B:        b.B,
			RMTerm:   rmTerm(b),
		}
		r.ExtUp, r.ExtDown = ChemDeltas(b.B, b.BMin, b.BMax)
		if s.Density != nil {
			r.DensUp, r.DensDown = ChemDeltas(b.B, dPlus[b.ID].B, dMinus[b.ID].B)
		}
		if s.Temperature != nil {
			r.TempUp, r.TempDown = ChemDeltas(b.B, tPlus[b.ID].B, tMinus[b.ID].B)
		}
		r.Upper = math.Sqrt(r.RMTerm*r.RMTerm + r.ExtUp*r.ExtUp +
			r.DensUp*r.DensUp + r.TempUp*r.TempUp)
		r.Lower = math.Sqrt(r.RMTerm*r.RMTerm + r.ExtDown*r.ExtDown +
			r.DensDown*r.DensDown + r.TempDown*r.TempDown)
		r.clamp()
	}
	return s
}

// clamp keeps the bounds from crossing zero unless the rotation measure
// error alone does.
func (r *Result) clamp() {
	if math.Abs(r.Upper) > math.Abs(r.B) && r.ScaledRM < 0 {
		r.Upper = r.RMTerm
	}
	if math.Abs(r.Lower) > math.Abs(r.B) && r.ScaledRM > 0 {
		r.Lower = r.RMTerm
	}
}

// rmTerm is B·TotalErrStd/ScaledRM.  At zero scaled rotation measure the
// ratio is taken from the unscaled field.
func rmTerm(b *blos.Result) float64 {
	switch {
	case b.ScaledRM != 0:
		return b.B * b.TotalErrStd / b.ScaledRM
	case b.RM != 0 && b.Ne != 0:
		return b.RawB * b.TotalErrStd / b.RM
	}
	return 0
}

func byID(rs []blos.Result) map[int]*blos.Result {
	m := make(map[int]*blos.Result, len(rs))
	for i := range rs {
		m[rs[i].ID] = &rs[i]
	}
	return m
}
