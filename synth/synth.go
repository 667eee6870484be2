// Public domain.

package main

import (
	"bufio"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"

	"github.com/soniakeys/exit"
	"github.com/soniakeys/meeus/v3/coord"
	"github.com/soniakeys/unit"
	xrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"

	"github.com/soniakeys/rmblos/internal/blos"
	"github.com/soniakeys/rmblos/internal/catalogue"
	"github.com/soniakeys/rmblos/internal/config"
	"github.com/soniakeys/rmblos/internal/raster"
)

const versionString = "synth version 0.1"
const copyrightString = "Public domain."

// cloud shape
const (
	background = .3  // mag
	peak       = 8   // mag above background
	sigmaU     = 15. // pixels, along the major axis
	sigmaV     = 6.  // across
	tilt       = 30  // degrees
	noise      = .02 // mag
	foreground = 15. // rad/m²
)

type options struct {
	dir     string
	sources int
	field   float64 // µG
	seed    uint64
	w, h    int
}

func main() {
	defer exit.Handler()
	flag.Usage = func() {
		os.Stderr.WriteString(`Usage:
   synth [-n sources] [-b field] [-s seed] [output dir]
   synth -v

For full documentation:
   go doc rmblos/synth
`)
	}
	opt := options{w: 120, h: 120}
	flag.IntVar(&opt.sources, "n", 300, "catalogue sources")
	flag.Float64Var(&opt.field, "b", 50, "field, µG")
	flag.Uint64Var(&opt.seed, "s", 1, "random seed")
	vers := flag.Bool("v", false, "display version and copyright")
	flag.Parse()
	if *vers {
		fmt.Println(versionString)
		fmt.Println(copyrightString)
		os.Exit(0)
	}
	switch flag.NArg() {
	case 0:
		opt.dir = "synthetic"
	case 1:
		opt.dir = flag.Arg(0)
	default:
		flag.Usage()
		os.Exit(1)
	}
	if _, err := generate(opt); err != nil {
		exit.Log(err)
	}
	fmt.Println("wrote", opt.dir)
	fmt.Println("run: rmblos -c", filepath.Join(opt.dir, "rmblos.yaml"))
}

// generate writes all files and returns the configuration it saved.
func generate(opt options) (*config.Config, error) {
	if err := os.MkdirAll(opt.dir, 0755); err != nil {
		return nil, err
	}
	c := config.Default()
	c.Region = config.Region{
		Name:        "synthetic",
		FITS:        filepath.Join(opt.dir, "cloud.fits"),
		Quantity:    raster.HydrogenColumnDensity,
		Distance:    400,
		JeansLength: .349,
		N0:          "1000",
		T0:          "15",
		G0:          "1",
	}
	c.Input.Catalogue = filepath.Join(opt.dir, "catalogue.tsv")
	c.Input.ChemDir = filepath.Join(opt.dir, "ChemicalAbundance")
	c.Output.Dir = filepath.Join(opt.dir, "FileOutput")

	rnd := xrand.New(&xrand.PCGSource{})
	rnd.Seed(opt.seed)

	ext := extinction(opt, rnd)
	if err := writeMap(c.Region.FITS, ext, c.BLOS.Conversion.ExtinctionToHydrogen); err != nil {
		return nil, err
	}

	src := c.Profiles()
	if err := writeProfiles(src); err != nil {
		return nil, err
	}
	base, err := src.Profile(0, 0)
	if err != nil {
		return nil, err
	}
	es := sources(opt, ext, base, c.BLOS.Conversion, rnd)
	f, err := os.Create(c.Input.Catalogue)
	if err != nil {
		return nil, err
	}
	if err := catalogue.Write(f, c.CatalogueFormat(), es); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	return &c, config.Save(filepath.Join(opt.dir, "rmblos.yaml"), &c)
}

// extinction builds the cloud as an extinction raster.
func extinction(opt options, rnd *xrand.Rand) *raster.Raster {
	wcs := &raster.WCS{
		CRPix1: float64(opt.w)/2 + .5,
		CRPix2: float64(opt.h)/2 + .5,
		CRVal1: 83.8,
		CRVal2: -5.4,
		CDelt1: -.02,
		CDelt2: .02,
		Proj:   raster.ProjTAN,
	}
	r := raster.New(opt.w, opt.h, wcs)
	cx, cy := float64(opt.w-1)/2, float64(opt.h-1)/2
	s, c := math.Sincos(tilt * math.Pi / 180)
	for y := 0; y < r.H; y++ {
		for x := 0; x < r.W; x++ {
			dx, dy := float64(x)-cx, float64(y)-cy
			u := dx*c + dy*s
			v := -dx*s + dy*c
			a := peak * math.Exp(-(u*u/(2*sigmaU*sigmaU) + v*v/(2*sigmaV*sigmaV)))
			r.Set(x, y, background+a+noise*rnd.NormFloat64())
		}
	}
	// defects for the resolver
	for i := 0; i < r.W*r.H/500; i++ {
		r.Set(rnd.Intn(r.W), rnd.Intn(r.H), math.NaN())
		r.Set(rnd.Intn(r.W), rnd.Intn(r.H), -.1)
	}
	return r
}

func writeMap(fn string, ext *raster.Raster, toH float64) error {
	n := ext.Clone()
	n.Quantity = raster.HydrogenColumnDensity
	for i, v := range n.Data {
		n.Data[i] = v * toH
	}
	f, err := os.Create(fn)
	if err != nil {
		return err
	}
	if err := raster.WriteFITS(f, n); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// abundance is a smooth electron abundance profile, falling with depth
// to a floor, scaled for perturbed density and temperature.
func abundance(av, dT, dn float64) float64 {
	s := math.Pow(1+dn/100, -.5) * math.Pow(1+dT/100, .3)
	return s * (1e-4*math.Exp(-av/1.5) + 2e-8)
}

func writeProfile(fn string, dT, dn float64) error {
	av := floats.LogSpan(make([]float64, 60), .05, 30)
	f, err := os.Create(fn)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "synthetic model dT %g%% dn %g%%\n", dT, dn)
	fmt.Fprintln(w, blos.ColAv, blos.ColElectron, "H2")
	for _, a := range av {
		fmt.Fprintf(w, "%g %g %g\n", a, abundance(a, dT, dn), a*blos.ExtinctionToHydrogen/2)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// writeProfiles writes the model profile and all default perturbations
// of it, in parallel.
func writeProfiles(d blos.Dir) error {
	if err := os.MkdirAll(d.Path, 0755); err != nil {
		return err
	}
	ps := append([]blos.Perturbation{{}}, blos.DensityPerturbations(blos.DensityPercents)...)
	ps = append(ps, blos.TemperaturePerturbations(blos.TemperaturePercents)...)

	// a source of perturbations
	pCh := make(chan blos.Perturbation)
	go func() {
		for _, p := range ps {
			pCh <- p
		}
		close(pCh)
	}()
	errCh := make(chan error)
	nProc := runtime.GOMAXPROCS(0)
	if nProc > len(ps) {
		nProc = len(ps)
	}
	for i := 0; i < nProc; i++ {
		go func() {
			var first error
			for p := range pCh {
				if err := writeProfile(d.File(p.Temp, p.Dens), p.Temp, p.Dens); err != nil && first == nil {
					first = err
				}
			}
			errCh <- first
		}()
	}
	var err error
	for i := 0; i < nProc; i++ {
		if e := <-errCh; e != nil && err == nil {
			err = e
		}
	}
	return err
}

// sources places catalogue entries over the map.  Rotation measures
// carry the field through half of the cloud's extinction above
// background.
func sources(opt options, ext *raster.Raster, p *blos.Profile, cv blos.Conversion, rnd *xrand.Rand) []catalogue.Entry {
	calc := blos.Calculator{Profile: p, Conv: cv}
	es := make([]catalogue.Entry, 0, opt.sources)
	for len(es) < opt.sources {
		px := rnd.Float64()*float64(ext.W) - .5
		py := rnd.Float64()*float64(ext.H) - .5
		e := catalogue.Entry{
			RAErr:  unit.AngleFromSec(.1 * 15),
			DecErr: unit.AngleFromSec(1),
			RMErr:  2 + 3*rnd.Float64(),
		}
		e.RA, e.Dec = ext.WCS.World(px, py)
		e.L, e.B = coord.EqToGal(e.RA, e.Dec)
		x, y := ext.WCS.Index(e.RA, e.Dec)
		if !ext.In(x, y) {
			continue
		}
		e.RM = foreground + e.RMErr*rnd.NormFloat64()
		if d := ext.At(x, y) - background; d > 0 {
			ne := calc.ColumnDensity(d)
			if ne > 0 && !math.IsNaN(ne) {
				e.RM += opt.field / cv.Field(1, ne)
			}
		}
		es = append(es, e)
	}
	return es
}
