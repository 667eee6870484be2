// Public domain.

// Package raster holds the extinction map: a 2D grid of values with a
// world coordinate transform, box geometry over the grid, and the policies
// that fill missing and non-physical cells.
package raster

import (
	"fmt"
	"math"
)

// Quantity is the physical quantity a raster was declared to hold.
type Quantity string

const (
	Extinction            Quantity = "VisualExtinction"
	HydrogenColumnDensity Quantity = "HydrogenColumnDensity"
)

// Raster is a W x H grid stored row major, x varying fastest.
//
// Cell (x, y) is Data[y*W+x].  Pixel coordinates are 0-based.
type Raster struct {
	W, H     int
	Data     []float64
	WCS      *WCS
	Quantity Quantity
}

// New allocates a zeroed raster.
func New(w, h int, wcs *WCS) *Raster {
	return &Raster{W: w, H: h, Data: make([]float64, w*h), WCS: wcs,
		Quantity: Extinction}
}

func (r *Raster) In(x, y int) bool {
	return x >= 0 && x < r.W && y >= 0 && y < r.H
}

func (r *Raster) At(x, y int) float64 { return r.Data[y*r.W+x] }

func (r *Raster) Set(x, y int, v float64) { r.Data[y*r.W+x] = v }

// Clone returns a deep copy of the grid.  The WCS is shared, it is
// never modified.
func (r *Raster) Clone() *Raster {
	c := *r
	c.Data = append([]float64(nil), r.Data...)
	return &c
}

// ToExtinction converts a hydrogen column density raster to visual
// extinction in place by dividing by factor.  A raster already holding
// extinction is left alone.
func (r *Raster) ToExtinction(factor float64) error {
	switch r.Quantity {
	case Extinction:
		return nil
	case HydrogenColumnDensity:
		if factor <= 0 {
			return fmt.Errorf("raster: invalid column density factor %g", factor)
		}
		for i, v := range r.Data {
			r.Data[i] = v / factor
		}
		r.Quantity = Extinction
		return nil
	}
	return fmt.Errorf("raster: unknown quantity %q", r.Quantity)
}

// Finite returns the finite values within box b.
func (r *Raster) Finite(b Box) []float64 {
	var f []float64
	for y := b.YMin; y < b.YMax; y++ {
		for x := b.XMin; x < b.XMax; x++ {
			if v := r.At(x, y); !math.IsNaN(v) && !math.IsInf(v, 0) {
				f = append(f, v)
			}
		}
	}
	return f
}

// Full is the box covering the whole raster.
func (r *Raster) Full() Box { return Box{0, r.W, 0, r.H} }
