// Public domain.

package stability_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soniakeys/rmblos/internal/blos"
	"github.com/soniakeys/rmblos/internal/match"
	"github.com/soniakeys/rmblos/internal/refsel"
	"github.com/soniakeys/rmblos/internal/stability"
)

func ExampleMode() {
	fmt.Println(stability.Mode([]int{1, 2, 2, 1, 3}))
	fmt.Println(stability.Mode([]int{4, 5, 5}))
	fmt.Println(stability.Mode(nil))
	// Output:
	// 1 true
	// 5 true
	// 0 false
}

func TestLongestRun(t *testing.T) {
	nan := math.NaN()
	for _, tc := range []struct {
		name  string
		c     []float64
		th    float64
		start int
		has   bool
	}{
		{"later longer", []float64{10, 1, 1, 1, 7, 7, 7, 7, nan, 7}, 0, 5, true},
		{"first of equal", []float64{1, 1, 2, 2}, 0, 1, true},
		{"whole", []float64{1, 2, 3}, 1, 1, true},
		{"none", []float64{1, 5, 9}, 1, 0, false},
		{"nan breaks", []float64{3, 3, nan, 3, 3, 3}, 0, 4, true},
		{"single", []float64{3}, 10, 0, false},
	} {
		s, has := stability.LongestRun(tc.c, tc.th)
		assert.Equal(t, tc.has, has, tc.name)
		assert.Equal(t, tc.start, s, tc.name)
	}
}

func TestInterval(t *testing.T) {
	for _, tc := range []struct {
		n, total, minRef int
		frac             float64
		lo, hi           int
	}{
		{1, 2, 3, .5, 1, 1},
		{8, 11, 3, .5, 3, 5},
		{4, 4, 3, .5, 3, 3},
		{5, 100, 0, .5, 1, 5},
	} {
		lo, hi := stability.Interval(tc.n, tc.total, tc.minRef, tc.frac)
		assert.Equal(t, tc.lo, lo, "%+v", tc)
		assert.Equal(t, tc.hi, hi, "%+v", tc)
	}
}

func calc(t *testing.T) blos.Calculator {
	p, err := blos.NewProfile([]float64{.05, 1, 2, 5}, []float64{1e-4, 2e-4, 3e-4, 4e-4})
	require.NoError(t, err)
	return blos.Calculator{Profile: p, Negative: blos.NegativeDelete}
}

// points with IDs from id0 at the given rotation measures and extinction.
func points(id0 int, ext float64, rm ...float64) []match.Point {
	ps := make([]match.Point, len(rm))
	for i, r := range rm {
		ps[i] = match.Point{ID: id0 + i, RM: r, RMErr: 1, Ext: ext, ExtMin: ext, ExtMax: ext}
	}
	return ps
}

// candidates whose running mean settles at the second count
func settling() (cand, matched []match.Point) {
	cand = points(0, .25, 40, 0, 20, 20, 20, 20, 20, 20)
	held := points(8, 3, 100, 200, 300)
	return cand, append(append([]match.Point{}, cand...), held...)
}

func TestTable(t *testing.T) {
	cand, matched := settling()
	tab := stability.NewTable(cand, matched, calc(t), 3)
	assert.Equal(t, []int{8, 9, 10}, tab.IDs)
	require.Len(t, tab.Rows, 8)
	for j := range tab.IDs {
		c := tab.Column(j)
		assert.Greater(t, c[0], 0.)
		for i := 2; i < len(c); i++ {
			assert.Equal(t, c[1], c[i])
		}
		assert.NotEqual(t, c[0], c[1])
	}
	// serial and parallel agree
	assert.Equal(t, tab, stability.NewTable(cand, matched, calc(t), 1))
}

func TestPlateauResolution(t *testing.T) {
	cand, matched := settling()
	opt := stability.Options{MinRefPoints: 1, MaxFraction: .5}
	var got []int
	for _, steps := range []int{100, 499, 500, 501, 1000} {
		opt.Steps = steps
		res, err := stability.Optimize(cand, matched, calc(t), opt)
		require.NoError(t, err)
		assert.Len(t, res.Thresholds, steps)
		assert.Equal(t, 1, res.Lo)
		assert.Equal(t, 5, res.Hi)
		got = append(got, res.Chosen)
	}
	for _, c := range got {
		assert.Equal(t, 2, c)
	}
}

func TestDegenerate(t *testing.T) {
	cand, matched := settling()
	_, err := stability.Optimize(cand, matched, calc(t),
		stability.Options{MinRefPoints: 3, MaxFraction: .5})
	assert.ErrorIs(t, err, stability.ErrDegenerateConfig)
}

func TestFlat(t *testing.T) {
	cand := points(0, .25, 10, 10, 10, 10)
	matched := append(append([]match.Point{}, cand...), points(4, .25, 10, 10, 10, 10)...)
	res, err := stability.Optimize(cand, matched, calc(t),
		stability.Options{MinRefPoints: 3, MaxFraction: .5})
	require.NoError(t, err)
	assert.True(t, res.Flat)
	assert.Equal(t, 3, res.Chosen)
	for _, r := range res.Table.Rows {
		assert.Equal(t, res.Table.Rows[0], r)
		for _, b := range r {
			assert.Equal(t, 0., b)
		}
	}
}

func TestSingleCandidate(t *testing.T) {
	cand := points(0, .25, 10)
	matched := append(append([]match.Point{}, cand...), points(1, 3, 50)...)
	res, err := stability.Optimize(cand, matched, calc(t),
		stability.Options{MinRefPoints: 3, MaxFraction: .5})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Chosen)
	assert.Equal(t, 1, res.Count)
	assert.Nil(t, res.Thresholds)
	assert.Len(t, res.Table.Rows, 1)
}

func TestQuadrantEnforcement(t *testing.T) {
	p := &refsel.Partition{CX: 10, CY: 10,
		Axis: refsel.Line{B: 10},
		Perp: refsel.Line{Vertical: true, X0: 10},
	}
	cand := points(0, .25, 10, 10, 10, 10, 10, 10)
	for i, xy := range [][2]int{{15, 15}, {12, 18}, {5, 15}, {15, 5}, {18, 12}, {12, 2}} {
		cand[i].X, cand[i].Y = xy[0], xy[1]
	}
	matched := append(append([]match.Point{}, cand...), points(6, .25, 10, 10, 10, 10, 10, 10)...)
	res, err := stability.Optimize(cand, matched, calc(t), stability.Options{
		MinRefPoints:   3,
		MaxFraction:    .5,
		Partition:      p,
		MinPerQuadrant: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Chosen)
	assert.Equal(t, 4, res.Count)
	assert.Equal(t, [4]int{3, 1, 2, 0}, res.Available)
	assert.Equal(t, [4]int{2, 1, 1, 0}, res.Quadrants)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "quadrant 4")
}
