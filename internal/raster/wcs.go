// Public domain.

package raster

import (
	"math"

	"github.com/soniakeys/unit"
)

// Projection codes, as found in the last four characters of CTYPE1.
const (
	ProjTAN = "TAN" // gnomonic
	ProjCAR = "CAR" // plate carree
)

// WCS is a minimal celestial world coordinate transform for an
// equatorial image.  Reference pixels are 1-based as in FITS headers,
// reference values and increments are in degrees.
type WCS struct {
	CRPix1, CRPix2 float64
	CRVal1, CRVal2 float64
	CDelt1, CDelt2 float64
	Proj           string
}

// Scale is the finer of the two axis increments.
func (w *WCS) Scale() unit.Angle {
	return unit.AngleFromDeg(math.Min(math.Abs(w.CDelt1), math.Abs(w.CDelt2)))
}

// Pixel converts a sky position to fractional 0-based pixel coordinates.
// A position on the far hemisphere of a TAN projection returns NaN.
func (w *WCS) Pixel(ra unit.RA, dec unit.Angle) (px, py float64) {
	var xi, eta float64 // intermediate world coordinates, degrees
	if w.Proj == ProjCAR {
		dra := ra.Deg() - w.CRVal1
		// wrap to the branch nearest the reference
		dra = math.Remainder(dra, 360)
		xi, eta = dra, dec.Deg()-w.CRVal2
	} else {
		a0, d0 := unit.AngleFromDeg(w.CRVal1).Rad(), unit.AngleFromDeg(w.CRVal2).Rad()
		a, d := ra.Rad(), dec.Rad()
		sd0, cd0 := math.Sincos(d0)
		sd, cd := math.Sincos(d)
		sda, cda := math.Sincos(a - a0)
		cosc := sd0*sd + cd0*cd*cda
		if cosc <= 0 {
			return math.NaN(), math.NaN()
		}
		xi = unit.Angle(cd * sda / cosc).Deg()
		eta = unit.Angle((cd0*sd - sd0*cd*cda) / cosc).Deg()
	}
	px = w.CRPix1 - 1 + xi/w.CDelt1
	py = w.CRPix2 - 1 + eta/w.CDelt2
	return
}

// Index is the nearest pixel to a sky position, rounding half up.
func (w *WCS) Index(ra unit.RA, dec unit.Angle) (x, y int) {
	px, py := w.Pixel(ra, dec)
	if math.IsNaN(px) || math.IsNaN(py) {
		return -1, -1
	}
	return int(math.Floor(px + .5)), int(math.Floor(py + .5))
}

// World converts 0-based pixel coordinates to a sky position.
func (w *WCS) World(px, py float64) (unit.RA, unit.Angle) {
	xi := (px - w.CRPix1 + 1) * w.CDelt1
	eta := (py - w.CRPix2 + 1) * w.CDelt2
	if w.Proj == ProjCAR {
		return unit.RAFromDeg(w.CRVal1 + xi), unit.AngleFromDeg(w.CRVal2 + eta)
	}
	x, y := unit.AngleFromDeg(xi).Rad(), unit.AngleFromDeg(eta).Rad()
	a0, d0 := unit.AngleFromDeg(w.CRVal1).Rad(), unit.AngleFromDeg(w.CRVal2).Rad()
	rho := math.Hypot(x, y)
	if rho == 0 {
		return unit.RAFromDeg(w.CRVal1), unit.AngleFromDeg(w.CRVal2)
	}
	c := math.Atan(rho)
	sc, cc := math.Sincos(c)
	sd0, cd0 := math.Sincos(d0)
	d := math.Asin(cc*sd0 + y*sc*cd0/rho)
	a := a0 + math.Atan2(x*sc, rho*cd0*cc-y*sd0*sc)
	return unit.RAFromRad(a), unit.Angle(d)
}
