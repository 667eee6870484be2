// Public domain.

// Package blos computes line of sight magnetic field strengths from
// rotation measures and extinction, the electron column density coming
// from an astrochemistry model of the cloud.
package blos

import (
	"fmt"
	"math"

	"github.com/soniakeys/unit"

	"github.com/soniakeys/rmblos/internal/match"
)

// Conversion constants.
const (
	// ExtinctionToHydrogen is hydrogen column density per magnitude of
	// visual extinction, cm⁻².
	ExtinctionToHydrogen = 2.21e21
	// PathLength converts cm to pc.
	PathLength = 3.24078e-19
	// rotation measure constant in rad m⁻² per µG cm⁻³ pc
	rmConst = 0.812
)

// Conversion holds the factors taking a profile integral to a field.
type Conversion struct {
	ExtinctionToHydrogen float64 `yaml:"extinction_to_hydrogen"`
	PathLength           float64 `yaml:"path_length"`
}

var DefaultConversion = Conversion{
	ExtinctionToHydrogen: ExtinctionToHydrogen,
	PathLength:           PathLength,
}

// Field is B in µG for a scaled rotation measure over column density ne.
func (c Conversion) Field(scaledRM, ne float64) float64 {
	return scaledRM / (rmConst * ne * c.PathLength * 2)
}

// NegativePolicy says what to do with points whose extinction is below
// the reference extinction.
type NegativePolicy string

const (
	NegativeDelete NegativePolicy = "Delete"
	NegativeZero   NegativePolicy = "Zero"
	NegativeNone   NegativePolicy = "None"
)

// Result is the field computed at one non-reference point.
type Result struct {
	ID       int
	RA       unit.RA
	Dec      unit.Angle
	RM       float64
	RMErr    float64
	Ext      float64
	ExtMin   float64
	ExtMax   float64
	ScaledRM float64

	ScaledExt    float64
	ScaledExtMin float64
	ScaledExtMax float64

	EAbundance float64 // electron abundance at the midpoint layer
	Ne         float64 // electron column density, cm⁻²
	NeMin      float64
	NeMax      float64

	B    float64 // µG
	RawB float64 // from the unscaled rotation measure
	BMin float64 // at the minimum extinction nearby
	BMax float64

	RMErrB      float64 // rotation measure error propagated to B
	TotalErrStd float64 // RM error plus reference standard error
	TotalErrAvg float64 // RM error plus mean reference error
}

// HasNaN reports whether any field strength is undefined.
func (r *Result) HasNaN() bool {
	return math.IsNaN(r.B) || math.IsNaN(r.BMin) || math.IsNaN(r.BMax)
}

// Calculator computes fields against reference statistics with a
// profile.  A zero Conv means DefaultConversion.
type Calculator struct {
	Profile  *Profile
	Ref      Stats
	Negative NegativePolicy
	Conv     Conversion
}

func (c *Calculator) conv() Conversion {
	if c.Conv == (Conversion{}) {
		return DefaultConversion
	}
	return c.Conv
}

// ColumnDensity is the electron column density through half the cloud
// for a scaled extinction.
func (c *Calculator) ColumnDensity(scaledExt float64) float64 {
	return c.Profile.Integral(scaledExt) * c.conv().ExtinctionToHydrogen
}

// Field is B in µG with the default conversion.
func Field(scaledRM, ne float64) float64 {
	return DefaultConversion.Field(scaledRM, ne)
}

// Point computes the field at one matched point.  ok is false when the
// negative policy drops the point.  Under NegativeNone a negative scaled
// extinction takes the first profile layer, so column densities are
// Av[0]·e[0] and B stays finite.
func (c *Calculator) Point(p match.Point) (r Result, ok bool) {
	r = Result{
		ID:           p.ID,
		RA:           p.RA,
		Dec:          p.Dec,
		RM:           p.RM,
		RMErr:        p.RMErr,
		Ext:          p.Ext,
		ExtMin:       p.ExtMin,
		ExtMax:       p.ExtMax,
		ScaledRM:     p.RM - c.Ref.RM,
		ScaledExt:    p.Ext - c.Ref.Ext,
		ScaledExtMin: p.ExtMin - c.Ref.Ext,
		ScaledExtMax: p.ExtMax - c.Ref.Ext,
		TotalErrStd:  p.RMErr + c.Ref.RMStdErr,
		TotalErrAvg:  p.RMErr + c.Ref.RMAvgErr,
	}
	if r.ScaledExt < 0 {
		switch c.Negative {
		case NegativeDelete:
			return r, false
		case NegativeZero:
			return r, true
		}
	}
	r.EAbundance = math.NaN()
	if i, ok := c.Profile.Layer(r.ScaledExt); ok {
		r.EAbundance = c.Profile.E[i]
	}
	r.Ne = c.ColumnDensity(r.ScaledExt)
	r.NeMin = c.ColumnDensity(r.ScaledExtMin)
	r.NeMax = c.ColumnDensity(r.ScaledExtMax)
	cv := c.conv()
	r.B = cv.Field(r.ScaledRM, r.Ne)
	r.RawB = cv.Field(r.RM, r.Ne)
	r.BMin = cv.Field(r.ScaledRM, r.NeMin)
	r.BMax = cv.Field(r.ScaledRM, r.NeMax)
	r.RMErrB = r.RMErr / r.RM * r.B
	return r, true
}

// Compute computes fields at points, in order, dropping those the
// negative policy deletes.
func (c *Calculator) Compute(points []match.Point) []Result {
	rs := make([]Result, 0, len(points))
	for _, p := range points {
		if r, ok := c.Point(p); ok {
			rs = append(rs, r)
		}
	}
	return rs
}

// Validate checks the policy name.
func (n NegativePolicy) Validate() error {
	switch n {
	case NegativeDelete, NegativeZero, NegativeNone:
		return nil
	}
	return fmt.Errorf("unknown negative extinction policy %q", n)
}
