// Public domain.

package blos

import (
	"runtime"

	"github.com/soniakeys/rmblos/internal/match"
)

// Default perturbation percentages of the model density and temperature.
var (
	DensityPercents     = []float64{1, 2.5, 5, 10, 20, 30, 40, 50}
	TemperaturePercents = []float64{5, 10, 20}
)

// Perturbation is a signed percentage change of the model temperature
// and density.
type Perturbation struct {
	Temp, Dens float64
}

// Label names the perturbation the way output tables are named.
func (p Perturbation) Label() string {
	return "T" + PercentLabel(p.Temp) + "_n" + PercentLabel(p.Dens)
}

// DensityPerturbations are ±p density changes at the model temperature.
func DensityPerturbations(percents []float64) []Perturbation {
	ps := make([]Perturbation, 0, 2*len(percents))
	for _, p := range percents {
		ps = append(ps, Perturbation{Dens: p}, Perturbation{Dens: -p})
	}
	return ps
}

// TemperaturePerturbations are ±p temperature changes at the model
// density.
func TemperaturePerturbations(percents []float64) []Perturbation {
	ps := make([]Perturbation, 0, 2*len(percents))
	for _, p := range percents {
		ps = append(ps, Perturbation{Temp: p}, Perturbation{Temp: -p})
	}
	return ps
}

// Run is the field computed with one perturbed profile.  A profile that
// could not be loaded leaves Err set and Results nil.
type Run struct {
	Perturbation
	Results []Result
	Err     error
}

// Sweep computes fields for each perturbation with calculators that
// differ from base only in profile.  Runs are in the order of perts.
func Sweep(src Source, base Calculator, points []match.Point, perts []Perturbation) []Run {
	runs := make([]Run, len(perts))
	if len(perts) == 0 {
		return runs
	}
	// a source of run indexes
	iCh := make(chan int)
	go func() {
		for i := range perts {
			iCh <- i
		}
		close(iCh)
	}()

	nProc := runtime.GOMAXPROCS(0)
	if nProc > len(perts) {
		nProc = len(perts)
	}
	done := make(chan struct{})
	for w := 0; w < nProc; w++ {
		go func() {
			for i := range iCh {
				runs[i] = sweepOne(src, base, points, perts[i])
			}
			done <- struct{}{}
		}()
	}
	for w := 0; w < nProc; w++ {
		<-done
	}
	return runs
}

func sweepOne(src Source, c Calculator, points []match.Point, p Perturbation) Run {
	r := Run{Perturbation: p}
	c.Profile, r.Err = src.Profile(p.Temp, p.Dens)
	if r.Err == nil {
		r.Results = c.Compute(points)
	}
	return r
}
