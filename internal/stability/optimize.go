// Public domain.

package stability

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/soniakeys/rmblos/internal/blos"
	"github.com/soniakeys/rmblos/internal/match"
	"github.com/soniakeys/rmblos/internal/refsel"
)

// ErrDegenerateConfig is wrapped when no count satisfies the configured
// limits.
var ErrDegenerateConfig = errors.New("degenerate configuration")

// DefaultSteps is the number of thresholds swept.
const DefaultSteps = 500

// Options control the search.
type Options struct {
	Steps        int     // thresholds swept
	MinRefPoints int     // smallest acceptable count
	MaxFraction  float64 // largest acceptable count as a fraction of matched points
	Workers      int     // trend table goroutines, 0 for all processors
	// Partition enables quadrant enforcement when not nil.
	Partition      *refsel.Partition
	MinPerQuadrant int
}

// Result of the search.
type Result struct {
	Table      *Table
	Thresholds []float64
	Optimal    []int // per threshold; 0 where no column has a run
	Lo, Hi     int   // acceptable interval
	Flat       bool  // no variation anywhere in the table
	Chosen     int   // before quadrant enforcement
	Count      int   // after
	Available  [4]int
	Quadrants  [4]int // in the first Count candidates
	Warnings   []string
}

// Interval is the range of acceptable counts out of n candidates and
// total matched points.  It is never empty when n > 0.
func Interval(n, total, minRef int, maxFrac float64) (lo, hi int) {
	lo = min(minRef, n)
	if lo < 1 {
		lo = 1
	}
	hi = min(n, int(math.Floor(maxFrac*float64(total))))
	if hi < lo {
		hi = lo
	}
	return
}

// Optimize chooses the number of candidates, taken in order, to use as
// reference points.  Candidates must be in ascending extinction order.
func Optimize(candidates, matched []match.Point, calc blos.Calculator, opt Options) (*Result, error) {
	n := len(candidates)
	if n == 0 {
		return nil, fmt.Errorf("no reference candidates: %w", ErrDegenerateConfig)
	}
	res := &Result{}
	res.Lo, res.Hi = Interval(n, len(matched), opt.MinRefPoints, opt.MaxFraction)
	res.Table = NewTable(candidates, matched, calc, opt.Workers)

	if n == 1 {
		res.Chosen = 1
	} else {
		steps := opt.Steps
		if steps < 2 {
			steps = DefaultSteps
		}
		var lim [2]float64
		var ok bool
		res.Thresholds, res.Optimal, lim, ok = Sweep(res.Table, steps)
		switch {
		case !ok:
			return nil, fmt.Errorf("trend table of %d counts by %d points has no adjacent defined values: %w",
				n, len(res.Table.IDs), ErrDegenerateConfig)
		case lim[1] == 0:
			// stable from the first count
			res.Flat = true
			res.Chosen = res.Lo
		default:
			var in []int
			for _, c := range res.Optimal {
				if c >= res.Lo && c <= res.Hi {
					in = append(in, c)
				}
			}
			if res.Chosen, ok = Mode(in); !ok {
				return nil, fmt.Errorf("no optimal count in [%d, %d] over %d thresholds: %w",
					res.Lo, res.Hi, len(res.Thresholds), ErrDegenerateConfig)
			}
		}
	}

	res.Count = res.Chosen
	if p := opt.Partition; p != nil {
		res.Available = p.Counts(candidates)
		short := func() bool {
			q := p.Counts(candidates[:res.Count])
			for i, a := range res.Available {
				if a >= opt.MinPerQuadrant && q[i] < opt.MinPerQuadrant {
					return true
				}
			}
			return false
		}
		for res.Count < n && short() {
			res.Count++
		}
		res.Quadrants = p.Counts(candidates[:res.Count])
		for i, a := range res.Available {
			if a < opt.MinPerQuadrant {
				res.Warnings = append(res.Warnings, fmt.Sprintf(
					"quadrant %d has %d reference candidates, fewer than %d",
					i+1, a, opt.MinPerQuadrant))
			}
		}
	}
	return res, nil
}

// Sweep finds the optimal count at each of steps thresholds spanning the
// absolute differences between adjacent defined values of the table.
// lim holds the smallest and largest difference.  ok is false when the
// table has no adjacent defined values.
func Sweep(t *Table, steps int) (thresholds []float64, optimal []int, lim [2]float64, ok bool) {
	lim = [2]float64{math.Inf(1), math.Inf(-1)}
	cols := make([][]float64, len(t.IDs))
	for j := range cols {
		c := t.Column(j)
		cols[j] = c
		for i := 1; i < len(c); i++ {
			if d, def := diff(c, i); def {
				lim[0] = math.Min(lim[0], d)
				lim[1] = math.Max(lim[1], d)
				ok = true
			}
		}
	}
	if !ok {
		return
	}
	thresholds = floats.Span(make([]float64, steps), lim[0], lim[1])
	optimal = make([]int, steps)
	starts := make([]int, 0, len(cols))
	for k, th := range thresholds {
		starts = starts[:0]
		for _, c := range cols {
			if s, has := LongestRun(c, th); has {
				starts = append(starts, s)
			}
		}
		optimal[k], _ = Mode(starts)
	}
	return
}

func diff(c []float64, i int) (float64, bool) {
	d := math.Abs(c[i] - c[i-1])
	return d, !math.IsNaN(d) && !math.IsInf(d, 0)
}

// LongestRun finds the longest run of adjacent values of trend c
// differing by no more than th, and returns the count, 1 based, where it
// starts.  The first of equally long runs wins.  Undefined values break
// runs.  has is false when there is no run.
func LongestRun(c []float64, th float64) (start int, has bool) {
	best, cur, curStart := 0, 0, 0
	for i := 1; i < len(c); i++ {
		if d, def := diff(c, i); def && d <= th {
			if cur == 0 {
				curStart = i
			}
			cur++
			if cur > best {
				best, start = cur, curStart
			}
		} else {
			cur = 0
		}
	}
	return start, best > 0
}

// Mode is the most frequent value, the first seen among equally
// frequent values.  ok is false for empty x.
func Mode(x []int) (m int, ok bool) {
	count := map[int]int{}
	var order []int
	for _, v := range x {
		if count[v] == 0 {
			order = append(order, v)
		}
		count[v]++
	}
	best := 0
	for _, v := range order {
		if c := count[v]; c > best {
			best, m = c, v
		}
	}
	return m, best > 0
}
