// Public domain.

package blos

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/interp"
)

// Profile column names.
const (
	ColAv       = "Av"
	ColElectron = "e-"
)

// Profile is an electron abundance profile into a cloud from an
// astrochemistry model, sampled at strictly increasing Av.
type Profile struct {
	Av []float64
	E  []float64
	pl interp.PiecewiseLinear
}

// NewProfile validates samples and prepares interpolation.
func NewProfile(av, e []float64) (*Profile, error) {
	if len(av) == 0 || len(av) != len(e) {
		return nil, fmt.Errorf("profile: %d Av and %d abundance samples", len(av), len(e))
	}
	for i := range av {
		if math.IsNaN(av[i]) || math.IsInf(av[i], 0) ||
			math.IsNaN(e[i]) || math.IsInf(e[i], 0) {
			return nil, fmt.Errorf("profile: non-finite sample at row %d", i+1)
		}
		if i > 0 && av[i] <= av[i-1] {
			return nil, fmt.Errorf("profile: Av not increasing at row %d", i+1)
		}
	}
	p := &Profile{Av: av, E: e}
	if len(av) > 1 {
		if err := p.pl.Fit(av, e); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// ReadProfile reads a whitespace separated profile.  The first line is a
// title and is skipped, the second names the columns.
func ReadProfile(r io.Reader) (*Profile, error) {
	s := bufio.NewScanner(r)
	s.Buffer(nil, 1<<20)
	if !s.Scan() {
		return nil, errors.New("profile: empty")
	}
	if !s.Scan() {
		return nil, errors.New("profile: no header")
	}
	iAv, iE := -1, -1
	head := strings.Fields(s.Text())
	for i, h := range head {
		switch h {
		case ColAv:
			iAv = i
		case ColElectron:
			iE = i
		}
	}
	if iAv < 0 || iE < 0 {
		return nil, fmt.Errorf("profile: need columns %q and %q", ColAv, ColElectron)
	}
	var av, e []float64
	for line := 3; s.Scan(); line++ {
		f := strings.Fields(s.Text())
		if len(f) == 0 {
			continue
		}
		if len(f) != len(head) {
			return nil, fmt.Errorf("profile line %d: %d fields, header has %d",
				line, len(f), len(head))
		}
		a, err := strconv.ParseFloat(f[iAv], 64)
		if err != nil {
			return nil, fmt.Errorf("profile line %d: %w", line, err)
		}
		x, err := strconv.ParseFloat(f[iE], 64)
		if err != nil {
			return nil, fmt.Errorf("profile line %d: %w", line, err)
		}
		av = append(av, a)
		e = append(e, x)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return NewProfile(av, e)
}

// ReadProfileFile reads a profile file.
func ReadProfileFile(fn string) (*Profile, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	p, err := ReadProfile(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn, err)
	}
	return p, nil
}

// Layer is the index of the first sample reaching half of scaledExt,
// the depth of the midpoint of the line of sight through the cloud.
func (p *Profile) Layer(scaledExt float64) (int, bool) {
	h := scaledExt / 2
	for i, a := range p.Av {
		if a >= h {
			return i, true
		}
	}
	return 0, false
}

// Integral is the electron abundance integrated over Av from the surface
// to half of scaledExt, the last partial layer linearly interpolated.
// It is NaN when the profile does not reach that deep.
func (p *Profile) Integral(scaledExt float64) float64 {
	ind, ok := p.Layer(scaledExt)
	if !ok {
		return math.NaN()
	}
	sum := p.Av[0] * p.E[0]
	if ind == 0 {
		return sum
	}
	for k := 1; k < ind; k++ {
		sum += (p.Av[k] - p.Av[k-1]) * p.E[k]
	}
	h := scaledExt / 2
	return sum + (h-p.Av[ind-1])*p.pl.Predict(h)
}

// Source supplies profiles perturbed from the cloud's model parameters,
// by signed percentages of temperature and density.
type Source interface {
	Profile(dT, dn float64) (*Profile, error)
}

// Dir is a Source reading files from a directory, named by a template
// in which {T} and {n} are replaced by percentage labels.
type Dir struct {
	Path     string
	Template string
}

func (d Dir) File(dT, dn float64) string {
	r := strings.NewReplacer("{T}", PercentLabel(dT), "{n}", PercentLabel(dn))
	return filepath.Join(d.Path, r.Replace(d.Template))
}

func (d Dir) Profile(dT, dn float64) (*Profile, error) {
	return ReadProfileFile(d.File(dT, dn))
}

// ModelDir is the directory name of a model run for cloud parameters.
func ModelDir(n0, t0, g0 string) string {
	return "n" + n0 + "_T" + t0 + "_G" + g0
}

// PercentLabel formats a signed percentage the way profile files are
// named: 0, +2.5, -10.
func PercentLabel(p float64) string {
	s := strconv.FormatFloat(math.Abs(p), 'f', -1, 64)
	switch {
	case p > 0:
		return "+" + s
	case p < 0:
		return "-" + s
	}
	return "0"
}
