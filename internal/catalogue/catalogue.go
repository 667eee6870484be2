// Public domain.

// Package catalogue reads rotation measure catalogues in the canonical
// delimited layout.
package catalogue

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/soniakeys/unit"
)

// Column headings of the canonical layout.
const (
	ColRA     = "RA(deg)"
	ColRAErr  = "RA_Err(s)"
	ColDec    = "Dec(deg)"
	ColDecErr = "Dec_Err(arcsec)"
	ColL      = "l(deg)"
	ColB      = "b(deg)"
	ColRM     = "RM(rad/m2)"
	ColRMErr  = "RM_Err(rad/m2)"
)

// Columns lists the headings in file order.
var Columns = []string{ColRA, ColRAErr, ColDec, ColDecErr, ColL, ColB, ColRM, ColRMErr}

// Entry is one background source.
type Entry struct {
	RA     unit.RA
	Dec    unit.Angle
	RAErr  unit.Angle // given in seconds of time
	DecErr unit.Angle
	L, B   unit.Angle
	RM     float64 // rad/m²
	RMErr  float64
}

// PosErr is the larger of the two positional errors.
func (e *Entry) PosErr() unit.Angle {
	a, d := unit.Angle(math.Abs(e.RAErr.Rad())), unit.Angle(math.Abs(e.DecErr.Rad()))
	if a > d {
		return a
	}
	return d
}

// Resolution is the largest positional error over a catalogue.
func Resolution(es []Entry) (res unit.Angle) {
	for i := range es {
		if e := es[i].PosErr(); e > res {
			res = e
		}
	}
	return
}

// Format gives the separator and missing value token of a table.
type Format struct {
	Sep     rune
	Missing string
}

// ErrMissing marks a row lacking a required value.
var ErrMissing = errors.New("missing value")

// Read parses a catalogue.  Rows with a missing or unparsable value are
// skipped and counted in skipped.  Galactic coordinates may be absent
// from a row, they are then NaN.
func Read(r io.Reader, f Format) (es []Entry, skipped int, err error) {
	cr := csv.NewReader(r)
	cr.Comma = f.Sep
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1 // short rows are skipped, not fatal
	head, err := cr.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("catalogue header: %w", err)
	}
	col := map[string]int{}
	for i, h := range head {
		col[strings.TrimSpace(h)] = i
	}
	for _, c := range Columns {
		if _, ok := col[c]; !ok {
			return nil, 0, fmt.Errorf("catalogue: column %q not found", c)
		}
	}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			return es, skipped, nil
		}
		if err != nil {
			return nil, 0, fmt.Errorf("catalogue line %d: %w", line, err)
		}
		e, err := parse(rec, col, f.Missing)
		if err != nil {
			skipped++
			continue
		}
		es = append(es, e)
	}
}

func parse(rec []string, col map[string]int, missing string) (e Entry, err error) {
	get := func(c string, required bool) float64 {
		if err != nil {
			return 0
		}
		i := col[c]
		var s string
		if i < len(rec) {
			s = strings.TrimSpace(rec[i])
		}
		if s == "" || s == missing {
			if required {
				err = ErrMissing
			}
			return math.NaN()
		}
		v, pErr := strconv.ParseFloat(s, 64)
		if pErr != nil {
			err = pErr
			return 0
		}
		if required && math.IsNaN(v) {
			err = ErrMissing
		}
		return v
	}
	e.RA = unit.RAFromDeg(get(ColRA, true))
	e.RAErr = unit.AngleFromSec(15 * get(ColRAErr, true))
	e.Dec = unit.AngleFromDeg(get(ColDec, true))
	e.DecErr = unit.AngleFromSec(get(ColDecErr, true))
	e.L = unit.AngleFromDeg(get(ColL, false))
	e.B = unit.AngleFromDeg(get(ColB, false))
	e.RM = get(ColRM, true)
	e.RMErr = get(ColRMErr, true)
	return
}

// ReadFile reads a catalogue file.
func ReadFile(fn string, f Format) ([]Entry, int, error) {
	file, err := os.Open(fn)
	if err != nil {
		return nil, 0, err
	}
	defer file.Close()
	return Read(file, f)
}

// Write writes entries in the canonical layout.
func Write(w io.Writer, f Format, es []Entry) error {
	cw := csv.NewWriter(w)
	cw.Comma = f.Sep
	if err := cw.Write(Columns); err != nil {
		return err
	}
	ff := func(v float64) string {
		if math.IsNaN(v) {
			return f.Missing
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	for _, e := range es {
		cw.Write([]string{
			ff(e.RA.Deg()), ff(e.RAErr.Sec() / 15),
			ff(e.Dec.Deg()), ff(e.DecErr.Sec()),
			ff(e.L.Deg()), ff(e.B.Deg()),
			ff(e.RM), ff(e.RMErr),
		})
	}
	cw.Flush()
	return cw.Error()
}
