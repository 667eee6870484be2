// Public domain.

// Package stability finds how many reference points it takes for the
// field strengths computed at the other points to settle.
//
// Candidates are added one at a time in order of increasing extinction.
// At each count the field is recomputed at every point held out of the
// candidate set, giving a trend table.  Runs of adjacent values that agree
// within a threshold mark where the trend has stabilized; the threshold is
// swept over the range of differences present in the table and the count
// that most often starts the longest run is chosen.
package stability

import (
	"math"
	"runtime"

	"github.com/soniakeys/rmblos/internal/blos"
	"github.com/soniakeys/rmblos/internal/match"
)

// Table holds trend data.  Rows[num-1][j] is the field at point IDs[j]
// computed with the first num candidates as reference.  Cells are NaN
// where the field is undefined.
type Table struct {
	IDs  []int
	Rows [][]float64
}

// Column returns the trend of held out point j.
func (t *Table) Column(j int) []float64 {
	c := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		c[i] = r[j]
	}
	return c
}

// HeldOut returns the matched points that are not candidates, in
// matched order.
func HeldOut(candidates, matched []match.Point) []match.Point {
	in := make(map[int]bool, len(candidates))
	for _, c := range candidates {
		in[c.ID] = true
	}
	var h []match.Point
	for _, p := range matched {
		if !in[p.ID] {
			h = append(h, p)
		}
	}
	return h
}

// NewTable computes the trend table on nProc goroutines, all available
// when nProc < 1.  Fields are computed with calc, its reference replaced
// by the unweighted statistics of each count of candidates.
func NewTable(candidates, matched []match.Point, calc blos.Calculator, nProc int) *Table {
	held := HeldOut(candidates, matched)
	t := &Table{
		IDs:  make([]int, len(held)),
		Rows: make([][]float64, len(candidates)),
	}
	for j, p := range held {
		t.IDs[j] = p.ID
	}
	if len(candidates) == 0 {
		return t
	}
	row := func(num int) []float64 {
		c := calc
		c.Ref = blos.NewStats(candidates[:num], nil)
		r := make([]float64, len(held))
		for j, p := range held {
			if res, ok := c.Point(p); ok {
				r[j] = res.B
			} else {
				r[j] = math.NaN()
			}
		}
		return r
	}

	// a source of counts
	nCh := make(chan int)
	go func() {
		for num := 1; num <= len(candidates); num++ {
			nCh <- num
		}
		close(nCh)
	}()
	if nProc < 1 {
		nProc = runtime.GOMAXPROCS(0)
	}
	if nProc > len(candidates) {
		nProc = len(candidates)
	}
	done := make(chan struct{})
	for w := 0; w < nProc; w++ {
		go func() {
			for num := range nCh {
				t.Rows[num-1] = row(num)
			}
			done <- struct{}{}
		}()
	}
	for w := 0; w < nProc; w++ {
		<-done
	}
	return t
}
