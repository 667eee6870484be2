// Public domain.

package blos

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/soniakeys/rmblos/internal/match"
)

// Weighting selects how reference points are averaged.
type Weighting string

const (
	WeightNone     Weighting = "None"
	WeightQuadrant Weighting = "Quadrant" // equal total weight per quadrant
)

func (w Weighting) Validate() error {
	switch w {
	case WeightNone, WeightQuadrant:
		return nil
	}
	return fmt.Errorf("unknown weighting %q", w)
}

// Stats summarize the reference points, the foreground that is
// subtracted from every other point.
type Stats struct {
	Count    int
	RM       float64 // mean rotation measure
	RMAvgErr float64 // mean rotation measure error
	RMStdErr float64 // standard error of the mean rotation measure
	Ext      float64 // mean extinction
}

// NewStats computes reference statistics.  Nil weights are uniform.
func NewStats(points []match.Point, weights []float64) Stats {
	n := len(points)
	rm := make([]float64, n)
	rmErr := make([]float64, n)
	ext := make([]float64, n)
	for i, p := range points {
		rm[i] = p.RM
		rmErr[i] = p.RMErr
		ext[i] = p.Ext
	}
	s := Stats{
		Count:    n,
		RM:       stat.Mean(rm, weights),
		RMAvgErr: stat.Mean(rmErr, weights),
		Ext:      stat.Mean(ext, weights),
	}
	if n < 2 {
		return s
	}
	if weights == nil {
		s.RMStdErr = stat.StdDev(rm, nil) / math.Sqrt(float64(n))
		return s
	}
	// reliability weights: v1 - v2/v1 in place of n-1
	v1 := floats.Sum(weights)
	v2 := floats.Dot(weights, weights)
	d := v1 - v2/v1
	if d <= 0 {
		return s
	}
	var ss float64
	for i, x := range rm {
		ss += weights[i] * (x - s.RM) * (x - s.RM)
	}
	s.RMStdErr = math.Sqrt(ss/d) / math.Sqrt(float64(n))
	return s
}
