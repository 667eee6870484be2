// Public domain.

// Package pipeline runs the stages of a field determination in order,
// each stage taking only the typed output of the one before.
package pipeline

import (
	"fmt"

	"github.com/soniakeys/rmblos/internal/blos"
	"github.com/soniakeys/rmblos/internal/catalogue"
	"github.com/soniakeys/rmblos/internal/config"
	"github.com/soniakeys/rmblos/internal/match"
	"github.com/soniakeys/rmblos/internal/raster"
	"github.com/soniakeys/rmblos/internal/refsel"
	"github.com/soniakeys/rmblos/internal/stability"
	"github.com/soniakeys/rmblos/internal/uncert"
)

// Inputs are the data a run reads.  Run does not modify them.
type Inputs struct {
	Raster    *raster.Raster
	Catalogue []catalogue.Entry
	Skipped   int // catalogue rows with missing values
	Profiles  blos.Source
}

// Load reads the inputs named by cfg.
func Load(cfg *config.Config) (*Inputs, error) {
	r, err := raster.ReadFITS(cfg.Region.FITS, cfg.Region.Quantity)
	if err != nil {
		return nil, err
	}
	es, skipped, err := catalogue.ReadFile(cfg.Input.Catalogue, cfg.CatalogueFormat())
	if err != nil {
		return nil, err
	}
	return &Inputs{
		Raster:    r,
		Catalogue: es,
		Skipped:   skipped,
		Profiles:  cfg.Profiles(),
	}, nil
}

// Output holds the result of every stage.
type Output struct {
	Map       *raster.Map
	Match     *match.Result
	Filter    *refsel.Result
	Partition *refsel.Partition // nil when quadrants are not used
	Stability *stability.Result // nil when the optimal search is off
	Chosen    []match.Point
	Weights   []float64 // nil for uniform weighting
	Stats     blos.Stats
	Held      []match.Point // matched points not chosen as reference
	BLOS      []blos.Result
	Density   []blos.Run
	Temp      []blos.Run
	Uncert    *uncert.Set
	Warnings  []string
}

func (o *Output) warn(stage string, ws ...string) {
	for _, w := range ws {
		o.Warnings = append(o.Warnings, stage+": "+w)
	}
}

// Run runs all stages.  Errors of the stages are returned as *Error
// where they have a Kind.
func Run(cfg *config.Config, in *Inputs) (*Output, error) {
	out := &Output{}
	if in.Skipped > 0 {
		out.warn("catalogue", fmt.Sprintf("%d rows skipped for missing values", in.Skipped))
	}

	r := in.Raster.Clone()
	if err := r.ToExtinction(cfg.BLOS.Conversion.ExtinctionToHydrogen); err != nil {
		return nil, err
	}
	region := r.Clamp(cfg.Region.Bounds)
	if region.Empty() {
		return nil, &Error{Kind: DegenerateConfig, Stage: "region",
			Detail: fmt.Sprintf("box %+v", region),
			Err:    fmt.Errorf("region of %dx%d map is empty", r.W, r.H)}
	}
	m, err := raster.Resolve(raster.NewMap(r, region), cfg.Map.Resolve)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}
	out.Map = m

	if out.Match, err = match.Match(m, in.Catalogue, cfg.MatchOptions()); err != nil {
		return nil, classify("match", fmt.Sprintf("use_filled %t, fill %s",
			cfg.Map.UseFilled, cfg.Map.Resolve.Fill), err)
	}
	out.warn("match", out.Match.Warnings...)
	matched := out.Match.Points

	fo := cfg.FilterOptions()
	if out.Filter, err = refsel.Filter(m, matched, fo); err != nil {
		return nil, classify("filter", fmt.Sprintf(
			"near %t, far %t, anomaly %t, spread %s", fo.UseNear, fo.UseFar,
			fo.UseAnomaly, fo.Spread), err)
	}
	out.warn("filter", out.Filter.Warnings...)
	candidates := out.Filter.Remaining

	weighted := cfg.Quadrants.Weighting == blos.WeightQuadrant
	if cfg.Quadrants.Use || weighted {
		p, err := refsel.NewPartition(m, cfg.Quadrants.MaskWeight, cfg.Quadrants.Alpha)
		switch {
		case err == nil:
			out.Partition = p
		case weighted:
			return nil, &Error{Kind: DegenerateConfig, Stage: "quadrants",
				Detail: fmt.Sprintf("mask_weight %g", cfg.Quadrants.MaskWeight),
				Err:    err}
		default:
			out.warn("quadrants", "not enforced: "+err.Error())
		}
	}

	prof, err := in.Profiles.Profile(0, 0)
	if err != nil {
		return nil, fmt.Errorf("baseline profile: %w", err)
	}
	calc := blos.Calculator{
		Profile:  prof,
		Negative: cfg.BLOS.Negative,
		Conv:     cfg.BLOS.Conversion,
	}

	out.Chosen = candidates
	if cfg.Reference.Optimal {
		var enforce *refsel.Partition
		if cfg.Quadrants.Use {
			enforce = out.Partition
		}
		so := cfg.StabilityOptions(enforce)
		if out.Stability, err = stability.Optimize(candidates, matched, calc, so); err != nil {
			return nil, classify("stability", fmt.Sprintf(
				"min_points %d, max_fraction %g, steps %d",
				so.MinRefPoints, so.MaxFraction, so.Steps), err)
		}
		out.warn("stability", out.Stability.Warnings...)
		out.Chosen = candidates[:out.Stability.Count]
	}

	if weighted {
		out.Weights = out.Partition.Weights(out.Chosen)
	}
	out.Stats = blos.NewStats(out.Chosen, out.Weights)
	calc.Ref = out.Stats

	out.Held = stability.HeldOut(out.Chosen, matched)
	out.BLOS = calc.Compute(out.Held)
	if d := len(out.Held) - len(out.BLOS); d > 0 {
		out.warn("blos", fmt.Sprintf("%d points below the reference extinction deleted", d))
	}
	if len(out.BLOS) == 0 {
		out.warn("blos", "no field strengths computed")
	}

	out.Density = blos.Sweep(in.Profiles, calc, out.Held,
		blos.DensityPerturbations(cfg.Uncertainty.DensityPercents))
	out.Temp = blos.Sweep(in.Profiles, calc, out.Held,
		blos.TemperaturePerturbations(cfg.Uncertainty.TemperaturePercents))
	out.Uncert = uncert.Propagate(out.BLOS, out.Density, out.Temp,
		uncert.Options{UseNaNs: cfg.Uncertainty.UseNaNs})
	out.warn("uncertainty", out.Uncert.Warnings...)
	return out, nil
}
