// Public domain.

package refsel_test

import (
	"math"
	"testing"

	"github.com/soniakeys/unit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xrand "golang.org/x/exp/rand"

	"github.com/soniakeys/rmblos/internal/match"
	"github.com/soniakeys/rmblos/internal/raster"
	"github.com/soniakeys/rmblos/internal/refsel"
)

func TestThreshold(t *testing.T) {
	th := refsel.DefaultThresholds
	for _, tc := range []struct {
		l, b, want float64
	}{
		{10, 5, 2},
		{300, -3, 2},
		{180, 5, 1.5},
		{90, 14.9, 1.5},
		{10, 40, 1},
		{200, -15, 1},
	} {
		got := th.Threshold(unit.AngleFromDeg(tc.l), unit.AngleFromDeg(tc.b), 0)
		assert.Equal(t, tc.want, got, "l %g b %g", tc.l, tc.b)
	}
	th.AvgExtMultiplier = true
	assert.Equal(t, 3., th.Threshold(unit.AngleFromDeg(10), unit.AngleFromDeg(40), 3))
}

func TestCentreThreshold(t *testing.T) {
	for _, tc := range []struct {
		name     string
		ra, dec  float64
		expected float64
	}{
		{"galactic center", 266.4, -28.9, 2},
		{"anticenter", 86.4, 28.9, 1.5},
		{"north galactic pole", 192.9, 27.1, 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r := raster.New(11, 11, &raster.WCS{CRPix1: 6, CRPix2: 6,
				CRVal1: tc.ra, CRVal2: tc.dec, CDelt1: -.01, CDelt2: .01,
				Proj: raster.ProjTAN})
			_, _, l, b := refsel.Centre(raster.NewMap(r, r.Full()))
			assert.True(t, l >= 0 && l.Deg() < 360)
			assert.Equal(t, tc.expected, refsel.DefaultThresholds.Threshold(l, b, 0))
		})
	}
}

// cloud is a 41x41 map of background .2 with a square blob of 10
// centered on (30,30).
func cloud() *raster.Map {
	r := raster.New(41, 41, &raster.WCS{CRPix1: 21, CRPix2: 21,
		CRVal1: 120, CRVal2: 60, CDelt1: -.01, CDelt2: .01, Proj: raster.ProjTAN})
	for y := 0; y < r.H; y++ {
		for x := 0; x < r.W; x++ {
			v := .2
			if math.Abs(float64(x-30)) <= 3 && math.Abs(float64(y-30)) <= 3 {
				v = 10
			}
			r.Set(x, y, v)
		}
	}
	return raster.NewMap(r, r.Full())
}

var cloudPoints = []match.Point{
	{ID: 0, X: 2, Y: 2, Ext: .3, RM: 10},
	{ID: 1, X: 25, Y: 30, Ext: .2, RM: 11},
	{ID: 2, X: 5, Y: 35, Ext: .25, RM: 500},
	{ID: 3, X: 10, Y: 5, Ext: .1, RM: 12},
	{ID: 4, X: 30, Y: 30, Ext: 10, RM: 40},
	{ID: 5, X: 31, Y: 29, Ext: 9, RM: 45},
	{ID: 6, X: 29, Y: 31, Ext: 8, RM: 42},
	{ID: 7, X: 8, Y: 12, Ext: .4, RM: 13},
}

func filterOptions() refsel.Options {
	return refsel.Options{
		Thresholds:     refsel.Thresholds{OnDiskGalactic: 1, OnDiskAntiGalactic: 1, OffDisk: 1},
		JeansLength:    .349,
		Distance:       1000,
		NearMultiplier: 2,
		FarMultiplier:  28,
		HighMultiplier: 5,
		UseNear:        true,
		Spread:         refsel.SpreadIQR,
		AnomalyK:       3,
		UseAnomaly:     true,
		MaxFraction:    .5,
	}
}

func ids(ps []match.Point) (id []int) {
	for _, p := range ps {
		id = append(id, p.ID)
	}
	return
}

func TestFilter(t *testing.T) {
	res, err := refsel.Filter(cloud(), cloudPoints, filterOptions())
	require.NoError(t, err)
	assert.Equal(t, 1., res.Threshold)
	assert.Equal(t, 5., res.HighExt)
	assert.Equal(t, 4, res.NearRadius)
	assert.Equal(t, 56, res.FarRadius)
	require.Len(t, res.Potential, 5)
	assert.Equal(t, 3, res.Potential[0].ID)
	assert.Equal(t, refsel.NearHighExt, res.Potential[1].Reasons)
	assert.Equal(t, refsel.AnomalousRM, res.Potential[2].Reasons)
	assert.Len(t, res.NearRejected, 1)
	assert.Len(t, res.AnomRejected, 1)
	assert.Empty(t, res.FarRejected)
	assert.Len(t, res.Rejected, 2)
	assert.Equal(t, []int{3, 0, 7}, ids(res.Remaining))
	assert.Empty(t, res.Warnings)
}

func TestFilterToggles(t *testing.T) {
	o := filterOptions()
	o.UseNear = false
	o.UseAnomaly = false
	res, err := refsel.Filter(cloud(), cloudPoints, o)
	require.NoError(t, err)
	// reasons are recorded even when not acted on
	assert.Len(t, res.NearRejected, 1)
	assert.Empty(t, res.Rejected)
	// 5 potential, capped at half of 8
	assert.Equal(t, []int{3, 1, 2, 0}, ids(res.Remaining))
	assert.Equal(t, 1, res.Truncated)

	o.UseFar = true
	o.FarMultiplier = 1
	res, err = refsel.Filter(cloud(), cloudPoints, o)
	require.NoError(t, err)
	// only the point beside the blob is close enough to it
	assert.Len(t, res.FarRejected, 4)
	assert.Equal(t, []int{1}, ids(res.Remaining))
}

func TestFilterNoneLeft(t *testing.T) {
	o := filterOptions()
	o.Thresholds = refsel.Thresholds{OffDisk: .01, OnDiskGalactic: .01, OnDiskAntiGalactic: .01}
	_, err := refsel.Filter(cloud(), cloudPoints, o)
	assert.ErrorIs(t, err, refsel.ErrNoReference)
}

func TestFilterAllRemain(t *testing.T) {
	o := filterOptions()
	o.UseNear, o.UseAnomaly, o.MaxFraction = false, false, 1
	o.Thresholds = refsel.Thresholds{OffDisk: 100, OnDiskGalactic: 100, OnDiskAntiGalactic: 100}
	res, err := refsel.Filter(cloud(), cloudPoints, o)
	require.NoError(t, err)
	assert.Len(t, res.Remaining, len(cloudPoints))
	assert.Len(t, res.Warnings, 1)
}

func TestAnomalyStd(t *testing.T) {
	o := filterOptions()
	o.Spread = refsel.SpreadStd
	res, err := refsel.Filter(cloud(), cloudPoints, o)
	require.NoError(t, err)
	// one outlier among eight cannot exceed 3 population sigma
	assert.Empty(t, res.AnomRejected)
	assert.Less(t, res.Anomaly.Lo, 10.)
}

func TestMaxReference(t *testing.T) {
	assert.Equal(t, 1, refsel.MaxReference(2, .5))
	assert.Equal(t, 2, refsel.MaxReference(5, .5)) // half to even
	assert.Equal(t, 1, refsel.MaxReference(1, .1))
	assert.Equal(t, 7, refsel.MaxReference(7, 1))
}

// diagonal ridge y = x across a 21x21 map
func ridge() *raster.Map {
	r := raster.New(21, 21, nil)
	for y := 0; y < r.H; y++ {
		for x := 0; x < r.W; x++ {
			v := 1.
			if x == y {
				v = 50
			}
			r.Set(x, y, v)
		}
	}
	return raster.NewMap(r, r.Full())
}

func TestPartition(t *testing.T) {
	p, err := refsel.NewPartition(ridge(), 2, .1)
	require.NoError(t, err)
	assert.InDelta(t, 10, p.CX, 1e-9)
	assert.InDelta(t, 10, p.CY, 1e-9)
	assert.InDelta(t, 1, p.Axis.M, 1e-3)
	assert.InDelta(t, -1, p.Perp.M, 1e-3)
	assert.Equal(t, refsel.Quadrant(1), p.Of(10, 15))
	assert.Equal(t, refsel.Quadrant(2), p.Of(2, 5))
	assert.Equal(t, refsel.Quadrant(3), p.Of(18, 15))
	assert.Equal(t, refsel.Quadrant(4), p.Of(5, 2))
	// on the axis is below it
	assert.False(t, p.Axis.Above(3, p.Axis.M*3+p.Axis.B))
}

func TestPartitionCover(t *testing.T) {
	p, err := refsel.NewPartition(ridge(), 2, .1)
	require.NoError(t, err)
	rnd := xrand.New(&xrand.PCGSource{})
	rnd.Seed(3)
	pts := make([]match.Point, 500)
	for i := range pts {
		pts[i] = match.Point{ID: i, X: rnd.Intn(21), Y: rnd.Intn(21)}
	}
	c := p.Counts(pts)
	s := p.Split(pts)
	seen := map[int]int{}
	total := 0
	for q := range s {
		assert.Len(t, s[q], c[q])
		total += c[q]
		for _, pt := range s[q] {
			seen[pt.ID]++
		}
	}
	assert.Equal(t, len(pts), total)
	for _, pt := range pts {
		assert.Equal(t, 1, seen[pt.ID], "point %d", pt.ID)
	}
	w := p.Weights(pts)
	var sum [4]float64
	for i, pt := range pts {
		sum[p.Point(pt)-1] += w[i]
	}
	for q, v := range sum {
		if c[q] > 0 {
			assert.InDelta(t, refsel.QuadrantWeight, v, 1e-3)
		}
	}
}

func TestPartitionVertical(t *testing.T) {
	// a horizontal ridge gives a zero slope and a vertical perpendicular
	r := raster.New(11, 11, nil)
	for i := range r.Data {
		r.Data[i] = 1
	}
	for x := 0; x < 11; x++ {
		r.Set(x, 5, 40)
	}
	p, err := refsel.NewPartition(raster.NewMap(r, r.Full()), 2, .1)
	require.NoError(t, err)
	assert.True(t, p.Perp.Vertical)
	assert.Equal(t, refsel.Quadrant(1), p.Of(8, 8))
	assert.Equal(t, refsel.Quadrant(4), p.Of(2, 2))
}

func TestPartitionDegenerate(t *testing.T) {
	r := raster.New(3, 3, nil)
	_, err := refsel.NewPartition(raster.NewMap(r, r.Full()), 2, .1)
	assert.Error(t, err)
}
