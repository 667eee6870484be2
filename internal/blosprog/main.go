// Public domain.

package blosprog

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/soniakeys/exit"
	sexa "github.com/soniakeys/sexagesimal"

	"github.com/soniakeys/rmblos/internal/config"
	"github.com/soniakeys/rmblos/internal/pipeline"
	"github.com/soniakeys/rmblos/internal/refsel"
)

const versionString = "rmblos version 0.3 Go source."
const copyrightString = "Public domain."
const defaultConfig = "rmblos.yaml"

func Main() {
	defer exit.Handler()

	cl := parseCommandLine()
	cfg, err := config.Load(cl.fnConfig)
	if err != nil {
		exit.Log(err)
	}
	if cl.outDir > "" {
		cfg.Output.Dir = cl.outDir
	}
	if cfg.Log.File > "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			exit.Log(err)
		}
		defer f.Close()
		log.SetOutput(io.MultiWriter(os.Stderr, f))
	}

	log.Println(cfg.Log.Divider)
	log.Println(versionString)
	log.Printf("region %s, config %s", cfg.Region.Name, cl.fnConfig)

	in, err := pipeline.Load(cfg)
	if err != nil {
		exit.Log(err)
	}
	log.Printf("%d catalogue entries, %dx%d raster of %s",
		len(in.Catalogue), in.Raster.W, in.Raster.H, in.Raster.Quantity)

	out, err := pipeline.Run(cfg, in)
	if err != nil {
		exit.Log(err)
	}
	report(cfg, out)

	// nothing is written unless every stage succeeded
	if err := out.WriteTables(cfg.Output.Dir, cfg.OutputSep(), cfg.Output.Ext); err != nil {
		exit.Log(err)
	}
	log.Println("tables written to", cfg.Output.Dir)
	log.Println(cfg.Log.Divider)
}

func report(cfg *config.Config, out *pipeline.Output) {
	div := func(s string) {
		log.Println(cfg.Log.Divider)
		log.Println(s)
	}

	ra, dec, l, b := refsel.Centre(out.Map)
	div("region")
	log.Printf("box x [%d, %d) y [%d, %d)", out.Map.Region.XMin, out.Map.Region.XMax,
		out.Map.Region.YMin, out.Map.Region.YMax)
	log.Printf("centre RA %.1d Dec %.0d", sexa.FmtRA(ra), sexa.FmtAngle(dec))
	log.Printf("galactic l %.2f b %.2f", l.Deg(), b.Deg())

	s := out.Match.Summary
	div("matching")
	log.Printf("%d entries, %d inside the map, %d matched", s.Entries, s.InRaster, s.Matched)
	log.Printf("%d without data, %d non-physical, %d unrepaired",
		s.NoData, s.NonPhysical, s.Unrepaired)
	if s.Degenerate > 0 {
		log.Printf("%d repairs from a degenerate null box", s.Degenerate)
	}
	log.Printf("neighborhood radius %d pixels, catalogue resolution %.2f″, pixel %.2f″",
		s.Radius, s.RMRes.Sec(), s.ExtRes.Sec())

	f := out.Filter
	div("reference candidates")
	log.Printf("threshold %.3g, high extinction %.3g, mean extinction %.3g",
		f.Threshold, f.HighExt, f.MeanExt)
	log.Printf("%d potential, %d near high extinction, %d far, %d anomalous, %d rejected",
		len(f.Potential), len(f.NearRejected), len(f.FarRejected),
		len(f.AnomRejected), len(f.Rejected))
	log.Printf("%d remaining, %d dropped by the fraction cap", len(f.Remaining), f.Truncated)

	div("reference points")
	if st := out.Stability; st != nil {
		log.Printf("acceptable counts [%d, %d], optimal %d, chosen %d",
			st.Lo, st.Hi, st.Chosen, st.Count)
		if st.Flat {
			log.Println("trend table has no variation")
		}
		if out.Partition != nil {
			log.Printf("per quadrant: available %v, chosen %v", st.Available, st.Quadrants)
		}
	} else {
		log.Printf("optimal search off, all %d candidates used", len(out.Chosen))
	}
	r := out.Stats
	log.Printf("fiducial RM %.3f ± %.3f (avg err %.3f), extinction %.3f, %d points",
		r.RM, r.RMStdErr, r.RMAvgErr, r.Ext, r.Count)

	div("fields")
	log.Printf("%d fields from %d held out points", len(out.BLOS), len(out.Held))
	if d := out.Uncert.Density; d != nil {
		log.Printf("density uncertainty from ±%g%%", d.Percent)
	}
	if t := out.Uncert.Temperature; t != nil {
		log.Printf("temperature uncertainty from ±%g%%", t.Percent)
	}

	if len(out.Warnings) > 0 {
		div(fmt.Sprintf("%d warnings", len(out.Warnings)))
		for _, w := range out.Warnings {
			log.Println(w)
		}
	}
}

type commandLine struct {
	fnConfig string // -c
	outDir   string // -o
}

func parseCommandLine() *commandLine {
	var cl commandLine
	dh := flag.Bool("h", false, "")
	dv := flag.Bool("v", false, "")
	flag.StringVar(&cl.fnConfig, "c", defaultConfig, "")
	flag.StringVar(&cl.outDir, "o", "", "")
	flag.Usage = func() {
		os.Stderr.WriteString(`
Usage: rmblos [options]       compute fields for the configured cloud
       rmblos -h              display help and quick reference
       rmblos -v              display version and copyright

Options:
       -c <config-file>       default ` + defaultConfig + `
       -o <output-dir>        overrides output.dir
`)
	}
	flag.Parse()
	switch {
	case *dh:
		printHelp()
		os.Exit(0)
	case *dv:
		fmt.Println(versionString)
		fmt.Println(copyrightString)
		os.Exit(0)
	case flag.NArg() != 0:
		flag.Usage()
		os.Exit(1)
	}
	return &cl
}

func printHelp() {
	fmt.Println(`
Rmblos estimates line of sight magnetic field strengths in a molecular
cloud from Faraday rotation measures of background sources, an extinction
or column density map, and chemical models of the cloud.

Config file sections:
   region        cloud map, box, distance, Jeans length, model parameters
   input         catalogue and chemical profile locations
   output        table directory and format
   map           missing and non-physical pixel handling
   thresholds    reference extinction thresholds
   proximity     high extinction rejection radii
   anomaly       rotation measure outlier rejection
   reference     stability search limits
   quadrants     quadrant enforcement and weighting
   blos          negative extinction policy and conversions
   uncertainty   perturbation percentages
   log           log file and divider

Use command "mkcfg" to write a default config file.

For full documentation:
   go doc rmblos`)
}
