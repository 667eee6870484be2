// Public domain.

package uncert_test

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xrand "golang.org/x/exp/rand"

	"github.com/soniakeys/rmblos/internal/blos"
	"github.com/soniakeys/rmblos/internal/uncert"
)

func ExampleChemDeltas() {
	fmt.Println(uncert.ChemDeltas(5, 3, 8))
	fmt.Println(uncert.ChemDeltas(5, 4, 3))
	fmt.Println(uncert.ChemDeltas(5, 7, 6))
	// Output:
	// 3 2
	// 0 2
	// 2 0
}

var errMissing = errors.New("no such file")

func run(temp, dens float64, b ...float64) blos.Run {
	r := blos.Run{Perturbation: blos.Perturbation{Temp: temp, Dens: dens}}
	for i, v := range b {
		r.Results = append(r.Results, blos.Result{ID: i, B: v, BMin: v, BMax: v})
	}
	return r
}

func missing(temp, dens float64) blos.Run {
	return blos.Run{Perturbation: blos.Perturbation{Temp: temp, Dens: dens}, Err: errMissing}
}

func TestPairs(t *testing.T) {
	ps := uncert.Pairs([]blos.Run{
		run(0, 10, 1), run(0, -10, 1),
		run(0, 2.5, 1), run(0, -2.5, 1),
		run(0, 5, 1), // no partner
	})
	require.Len(t, ps, 2)
	assert.Equal(t, 2.5, ps[0].Percent)
	assert.Equal(t, 2.5, ps[0].Plus.Dens)
	assert.Equal(t, -2.5, ps[0].Minus.Dens)
	assert.Equal(t, 10., ps[1].Percent)

	var runs []blos.Run
	for _, p := range blos.TemperaturePerturbations(blos.TemperaturePercents) {
		runs = append(runs, blos.Run{Perturbation: p})
	}
	ps = uncert.Pairs(runs)
	require.Len(t, ps, 3)
	assert.Equal(t, 20., ps[2].Percent)
	assert.Equal(t, -20., ps[2].Minus.Temp)
}

func base() []blos.Result {
	return []blos.Result{
		{ID: 0, ScaledRM: 40, B: 20, BMin: 24, BMax: 17, Ne: 1e18, TotalErrStd: 6},
		{ID: 1, ScaledRM: -10, B: -5, BMin: -6, BMax: -4, Ne: 1e18, TotalErrStd: 2},
	}
}

// a missing profile at the smallest percentage falls through to the next
func TestSelectSkipsUnusable(t *testing.T) {
	pairs := uncert.Pairs([]blos.Run{
		missing(0, 1), run(0, -1, 21, -5.5),
		run(0, 2.5, 22, -6), run(0, -2.5, 19, -4),
		run(0, 5, 25, -7), run(0, -5, 15, -3),
	})
	p, skipped := uncert.Select(pairs, base(), false)
	require.NotNil(t, p)
	assert.Equal(t, 2.5, p.Percent)
	require.Len(t, skipped, 1)
	assert.Contains(t, skipped[0], "1%")
	assert.Contains(t, skipped[0], errMissing.Error())
}

func TestUsableNaN(t *testing.T) {
	p := uncert.Pairs([]blos.Run{run(0, 1, 21, math.NaN()), run(0, -1, 19, -4)})[0]
	assert.NotEmpty(t, p.Usable(base(), false))
	assert.Empty(t, p.Usable(base(), true))
	// a point absent from a run
	p = uncert.Pairs([]blos.Run{run(0, 1, 21), run(0, -1, 19, -4)})[0]
	assert.Contains(t, p.Usable(base(), true), "point 1")
}

func TestPropagate(t *testing.T) {
	dens := []blos.Run{run(0, 10, 23, -5), run(0, -10, 18, -4.5)}
	temp := []blos.Run{missing(5, 0), missing(-5, 0), run(10, 0, 20, -5.2), run(-10, 0, 20, -5)}
	s := uncert.Propagate(base(), dens, temp, uncert.Options{})
	require.NotNil(t, s.Density)
	require.NotNil(t, s.Temperature)
	assert.Equal(t, 10., s.Temperature.Percent)
	assert.Len(t, s.Warnings, 1)

	r := s.Results[0]
	// 20·6/40
	assert.InDelta(t, 3, r.RMTerm, 1e-12)
	assert.Equal(t, 4., r.ExtUp)
	assert.Equal(t, 3., r.ExtDown)
	assert.Equal(t, 3., r.DensUp)
	assert.Equal(t, 2., r.DensDown)
	assert.Equal(t, 0., r.TempUp)
	assert.Equal(t, 0., r.TempDown)
	assert.InDelta(t, math.Sqrt(9+16+9), r.Upper, 1e-12)
	assert.InDelta(t, math.Sqrt(9+9+4), r.Lower, 1e-12)

	r = s.Results[1]
	assert.InDelta(t, 1, r.RMTerm, 1e-12)
	assert.InDelta(t, .2, r.TempDown, 1e-12)
	assert.InDelta(t, math.Sqrt(1+1+.25), r.Upper, 1e-12)
}

func TestPropagateNoPair(t *testing.T) {
	s := uncert.Propagate(base(), []blos.Run{missing(0, 1), missing(0, -1)}, nil, uncert.Options{})
	assert.Nil(t, s.Density)
	assert.Nil(t, s.Temperature)
	// one skip and two not usable
	assert.Len(t, s.Warnings, 3)
	r := s.Results[0]
	assert.Equal(t, 0., r.DensUp)
	assert.InDelta(t, 5, r.Upper, 1e-12)
}

func TestClamp(t *testing.T) {
	// extinction spread alone would carry the lower bound past zero
	b := []blos.Result{{ID: 0, ScaledRM: 40, B: 20, BMin: 60, BMax: -10, Ne: 1e18, TotalErrStd: 6}}
	r := uncert.Propagate(b, nil, nil, uncert.Options{}).Results[0]
	assert.Equal(t, r.RMTerm, r.Lower)
	assert.Greater(t, r.Upper, r.B)
}

// bounds cross zero only where the rotation measure error does
func TestClampProperty(t *testing.T) {
	rnd := xrand.New(&xrand.PCGSource{})
	rnd.Seed(7)
	var base []blos.Result
	for i := 0; i < 2000; i++ {
		rm := rnd.Float64()*200 - 100
		ne := 1e17 + rnd.Float64()*1e19
		b := blos.Field(rm, ne)
		base = append(base, blos.Result{
			ID:          i,
			ScaledRM:    rm,
			Ne:          ne,
			B:           b,
			BMin:        b * (1 + 3*rnd.Float64()),
			BMax:        b * (1 - 3*rnd.Float64()),
			TotalErrStd: rnd.Float64() * 50,
		})
	}
	s := uncert.Propagate(base, nil, nil, uncert.Options{})
	for i, r := range s.Results {
		crosses := base[i].TotalErrStd > math.Abs(base[i].ScaledRM)
		switch {
		case r.B > 0 && r.B-r.Lower < 0:
			assert.True(t, crosses, "point %d", i)
		case r.B < 0 && r.B+r.Upper > 0:
			assert.True(t, crosses, "point %d", i)
		}
	}
}
