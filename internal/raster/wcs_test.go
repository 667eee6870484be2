// Public domain.

package raster_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/soniakeys/unit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soniakeys/rmblos/internal/raster"
)

var wcsCases = []*raster.WCS{
	{CRPix1: 50.5, CRPix2: 40, CRVal1: 83.8, CRVal2: -5.4,
		CDelt1: -.02, CDelt2: .02, Proj: raster.ProjTAN},
	{CRPix1: 1, CRPix2: 1, CRVal1: 359.9, CRVal2: 62,
		CDelt1: -.05, CDelt2: .05, Proj: raster.ProjTAN},
	{CRPix1: 10, CRPix2: 10, CRVal1: 120, CRVal2: 10,
		CDelt1: -.1, CDelt2: .1, Proj: raster.ProjCAR},
}

func TestWCSReference(t *testing.T) {
	for _, w := range wcsCases {
		px, py := w.Pixel(unit.RAFromDeg(w.CRVal1), unit.AngleFromDeg(w.CRVal2))
		assert.InDelta(t, w.CRPix1-1, px, 1e-9)
		assert.InDelta(t, w.CRPix2-1, py, 1e-9)
	}
}

func TestWCSRoundTrip(t *testing.T) {
	for _, w := range wcsCases {
		for _, p := range [][2]float64{{0, 0}, {12.25, 80}, {99, 3.5}, {-4, 17}} {
			ra, dec := w.World(p[0], p[1])
			px, py := w.Pixel(ra, dec)
			if math.Abs(px-p[0]) > 1e-6 || math.Abs(py-p[1]) > 1e-6 {
				t.Fatalf("%+v: pixel %v -> %.9f %.9f", w, p, px, py)
			}
			x, y := w.Index(ra, dec)
			assert.Equal(t, int(math.Floor(p[0]+.5)), x)
			assert.Equal(t, int(math.Floor(p[1]+.5)), y)
		}
	}
}

func TestWCSScale(t *testing.T) {
	w := &raster.WCS{CDelt1: -.03, CDelt2: .02}
	assert.InDelta(t, .02, w.Scale().Deg(), 1e-15)
}

func TestFITSRoundTrip(t *testing.T) {
	r := raster.New(4, 3, wcsCases[0])
	for i := range r.Data {
		r.Data[i] = float64(i) * .5
	}
	r.Data[5] = math.NaN()
	var buf bytes.Buffer
	require.NoError(t, raster.WriteFITS(&buf, r))
	got, err := raster.DecodeFITS(&buf, raster.Extinction)
	require.NoError(t, err)
	assert.Equal(t, 4, got.W)
	assert.Equal(t, 3, got.H)
	assert.Equal(t, *r.WCS, *got.WCS)
	for i, v := range r.Data {
		if math.IsNaN(v) {
			assert.True(t, math.IsNaN(got.Data[i]))
			continue
		}
		assert.Equal(t, v, got.Data[i])
	}
}

func TestToExtinction(t *testing.T) {
	r := raster.New(1, 1, nil)
	r.Quantity = raster.HydrogenColumnDensity
	r.Data[0] = 4.42e21
	require.NoError(t, r.ToExtinction(2.21e21))
	assert.InDelta(t, 2, r.Data[0], 1e-12)
	assert.Equal(t, raster.Extinction, r.Quantity)
}
