// Public domain.

package refsel

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/soniakeys/unit"
	"gonum.org/v1/gonum/stat"

	"github.com/soniakeys/rmblos/internal/match"
	"github.com/soniakeys/rmblos/internal/raster"
)

// ErrNoReference is wrapped when filtering leaves no reference point.
var ErrNoReference = errors.New("no reference points remain")

// Reason is a set of rejection reasons.
type Reason uint8

const (
	NearHighExt Reason = 1 << iota // too close to the cloud
	FarHighExt                     // too far from the cloud
	AnomalousRM                    // rotation measure is an outlier
)

func (r Reason) String() string {
	var s []string
	if r&NearHighExt != 0 {
		s = append(s, "near_high_extinction")
	}
	if r&FarHighExt != 0 {
		s = append(s, "far_from_high_extinction")
	}
	if r&AnomalousRM != 0 {
		s = append(s, "anomalous_rm")
	}
	return strings.Join(s, ",")
}

// Candidate is a potential reference point with the reasons it would be
// rejected.
type Candidate struct {
	match.Point
	Reasons Reason
}

// Spread selects the outlier statistic.
type Spread string

const (
	SpreadStd Spread = "Std" // mean and population standard deviation
	SpreadIQR Spread = "IQR" // median and interquartile range
)

// Options hold the filter parameters.
type Options struct {
	Thresholds
	JeansLength    float64 // pc
	Distance       float64 // pc
	NearMultiplier float64
	FarMultiplier  float64
	HighMultiplier float64
	UseNear        bool
	UseFar         bool
	Spread         Spread
	AnomalyK       float64
	UseAnomaly     bool
	MaxFraction    float64
}

// Anomaly is the accepted rotation measure interval.
type Anomaly struct {
	Center, Spread float64
	Lo, Hi         float64
}

// Result is the filter outcome.  Candidate lists are in ascending
// extinction order.
type Result struct {
	L, B       unit.Angle // galactic position of the region
	MeanExt    float64
	Threshold  float64
	HighExt    float64
	NearRadius int
	FarRadius  int
	Anomaly    Anomaly

	Potential    []Candidate // all points under the threshold
	NearRejected []Candidate
	FarRejected  []Candidate
	AnomRejected []Candidate
	Rejected     []Candidate // removed for any enabled reason
	Remaining    []match.Point
	Truncated    int // remaining points dropped by the fraction cap
	Warnings     []string
}

// ProximityRadius is the pixel radius spanned by the cloud's Jeans
// length at its distance, scaled by mult.
func ProximityRadius(jeans, distance float64, w *raster.WCS, mult float64) int {
	minDiff := unit.Angle(math.Atan(jeans / distance))
	pix := math.Ceil(minDiff.Deg() / math.Abs(w.CDelt1))
	return int(mult * pix)
}

// Filter selects reference candidates from the matched points.
func Filter(m *raster.Map, points []match.Point, opt Options) (*Result, error) {
	res := &Result{}
	_, _, res.L, res.B = Centre(m)
	res.MeanExt = MeanExtinction(m)
	res.Threshold = opt.Threshold(res.L, res.B, res.MeanExt)
	res.HighExt = opt.HighMultiplier * res.Threshold
	res.NearRadius = ProximityRadius(opt.JeansLength, opt.Distance, m.WCS, opt.NearMultiplier)
	res.FarRadius = ProximityRadius(opt.JeansLength, opt.Distance, m.WCS, opt.FarMultiplier)
	res.Anomaly = anomaly(points, opt.Spread, opt.AnomalyK)

	for _, p := range points {
		if p.Ext <= res.Threshold {
			res.Potential = append(res.Potential, Candidate{Point: p})
		}
	}
	sort.SliceStable(res.Potential, func(i, j int) bool {
		return res.Potential[i].Ext < res.Potential[j].Ext
	})

	exceeds := func(p match.Point, n int) bool {
		b := m.RadiusBox(p.X, p.Y, n)
		for y := b.YMin; y < b.YMax; y++ {
			for x := b.XMin; x < b.XMax; x++ {
				if m.At(x, y) > res.HighExt {
					return true
				}
			}
		}
		return false
	}
	for i := range res.Potential {
		c := &res.Potential[i]
		if exceeds(c.Point, res.NearRadius) {
			c.Reasons |= NearHighExt
			res.NearRejected = append(res.NearRejected, *c)
		}
		if !exceeds(c.Point, res.FarRadius) {
			c.Reasons |= FarHighExt
			res.FarRejected = append(res.FarRejected, *c)
		}
		if c.RM < res.Anomaly.Lo || c.RM > res.Anomaly.Hi {
			c.Reasons |= AnomalousRM
			res.AnomRejected = append(res.AnomRejected, *c)
		}
	}

	var enabled Reason
	if opt.UseNear {
		enabled |= NearHighExt
	}
	if opt.UseFar {
		enabled |= FarHighExt
	}
	if opt.UseAnomaly {
		enabled |= AnomalousRM
	}
	for _, c := range res.Potential {
		if c.Reasons&enabled != 0 {
			res.Rejected = append(res.Rejected, c)
		} else {
			res.Remaining = append(res.Remaining, c.Point)
		}
	}

	// cap at a fraction of all points.  the stability search needs
	// points held out from the reference set.
	limit := MaxReference(len(points), opt.MaxFraction)
	if len(res.Remaining) > limit {
		res.Truncated = len(res.Remaining) - limit
		res.Remaining = res.Remaining[:limit]
	}

	switch n := len(res.Remaining); {
	case n == 0:
		return nil, fmt.Errorf(
			"%d potential reference points under threshold %.3g, %d rejected: %w",
			len(res.Potential), res.Threshold, len(res.Rejected), ErrNoReference)
	case n == len(points):
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"all %d matched points remain as reference candidates, "+
				"none are held out for the stability search", n))
	}
	return res, nil
}

// MaxReference is the most reference points allowed out of total
// matched points, never less than one.
func MaxReference(total int, frac float64) int {
	n := int(math.RoundToEven(float64(total) * frac))
	if n < 1 {
		n = 1
	}
	return n
}

func anomaly(points []match.Point, s Spread, k float64) (a Anomaly) {
	rm := make([]float64, len(points))
	for i, p := range points {
		rm[i] = p.RM
	}
	if s == SpreadIQR {
		sort.Float64s(rm)
		a.Center = percentile(rm, .5)
		a.Spread = percentile(rm, .75) - percentile(rm, .25)
	} else {
		a.Center, a.Spread = stat.PopMeanStdDev(rm, nil)
	}
	a.Lo = a.Center - k*a.Spread
	a.Hi = a.Center + k*a.Spread
	return
}

// percentile of sorted x with linear interpolation between closest
// ranks, the (n-1)p convention.
func percentile(x []float64, p float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	h := float64(len(x)-1) * p
	i := int(math.Floor(h))
	if i+1 >= len(x) {
		return x[len(x)-1]
	}
	return x[i] + (h-float64(i))*(x[i+1]-x[i])
}
