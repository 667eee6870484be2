// Public domain.

// Package config holds the settings of a pipeline run, read from a YAML
// file over built in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/soniakeys/rmblos/internal/blos"
	"github.com/soniakeys/rmblos/internal/catalogue"
	"github.com/soniakeys/rmblos/internal/match"
	"github.com/soniakeys/rmblos/internal/raster"
	"github.com/soniakeys/rmblos/internal/refsel"
	"github.com/soniakeys/rmblos/internal/stability"
)

// Config is a complete run configuration.  It is loaded once and not
// modified after.
type Config struct {
	Region      Region            `yaml:"region"`
	Input       Input             `yaml:"input"`
	Output      Output            `yaml:"output"`
	Map         Map               `yaml:"map"`
	Thresholds  refsel.Thresholds `yaml:"thresholds"`
	Proximity   Proximity         `yaml:"proximity"`
	Anomaly     Anomaly           `yaml:"anomaly"`
	Reference   Reference         `yaml:"reference"`
	Quadrants   Quadrants         `yaml:"quadrants"`
	BLOS        BLOS              `yaml:"blos"`
	Uncertainty Uncertainty       `yaml:"uncertainty"`
	Log         Log               `yaml:"log"`
}

// Region describes the cloud.
type Region struct {
	Name        string          `yaml:"name"`
	FITS        string          `yaml:"fits"`
	Quantity    raster.Quantity `yaml:"quantity"`
	Bounds      raster.Bounds   `yaml:",inline"`     // pixels, unset for the whole map
	Distance    float64         `yaml:"distance"`     // pc
	JeansLength float64         `yaml:"jeans_length"` // pc
	// astrochemistry model parameters, as they appear in directory names
	N0 string `yaml:"n0"`
	T0 string `yaml:"t0"`
	G0 string `yaml:"g0"`
}

type Input struct {
	Catalogue       string `yaml:"catalogue"`
	Separator       string `yaml:"separator"`
	Missing         string `yaml:"missing"`
	ChemDir         string `yaml:"chem_dir"`
	ProfileTemplate string `yaml:"profile_template"` // {T} and {n} are replaced
}

type Output struct {
	Dir       string `yaml:"dir"`
	Separator string `yaml:"separator"`
	Ext       string `yaml:"ext"`
}

type Map struct {
	Resolve   raster.ResolveOptions `yaml:",inline"`
	UseFilled bool                  `yaml:"use_filled"`
}

type Proximity struct {
	NearMultiplier float64 `yaml:"near_multiplier"`
	FarMultiplier  float64 `yaml:"far_multiplier"`
	HighMultiplier float64 `yaml:"high_multiplier"`
	UseNear        bool    `yaml:"use_near"`
	UseFar         bool    `yaml:"use_far"`
}

type Anomaly struct {
	Spread refsel.Spread `yaml:"spread"`
	K      float64       `yaml:"k"`
	Use    bool          `yaml:"use"`
}

type Reference struct {
	Optimal     bool    `yaml:"optimal"`
	MinPoints   int     `yaml:"min_points"`
	MaxFraction float64 `yaml:"max_fraction"`
	Steps       int     `yaml:"steps"`
	Workers     int     `yaml:"workers"` // 0 for all processors
}

type Quadrants struct {
	Use            bool           `yaml:"use"`
	MinPerQuadrant int            `yaml:"min_per_quadrant"`
	Weighting      blos.Weighting `yaml:"weighting"`
	MaskWeight     float64        `yaml:"mask_weight"`
	Alpha          float64        `yaml:"alpha"`
}

type BLOS struct {
	Negative   blos.NegativePolicy `yaml:"negative"`
	Conversion blos.Conversion     `yaml:",inline"`
}

type Uncertainty struct {
	UseNaNs             bool      `yaml:"use_nans"`
	DensityPercents     []float64 `yaml:"density_percents"`
	TemperaturePercents []float64 `yaml:"temperature_percents"`
}

type Log struct {
	File    string `yaml:"file"`
	Divider string `yaml:"divider"`
}

// Default returns the default configuration.  The region is left for the
// user to describe.
func Default() Config {
	return Config{
		Region: Region{Quantity: raster.HydrogenColumnDensity},
		Input: Input{
			Separator:       "\t",
			Missing:         "nan",
			ChemDir:         "ChemicalAbundance",
			ProfileTemplate: "Av_T{T}_n{n}.out",
		},
		Output: Output{Dir: "FileOutput", Separator: "\t", Ext: ".csv"},
		Map: Map{Resolve: raster.ResolveOptions{
			Fill:   raster.FillNaN,
			Interp: true,
			Area:   raster.AreaLocal,
			Method: raster.Linear,
		}},
		Thresholds: refsel.DefaultThresholds,
		Proximity: Proximity{
			NearMultiplier: 2,
			FarMultiplier:  28,
			HighMultiplier: 5,
			UseNear:        true,
		},
		Anomaly: Anomaly{Spread: refsel.SpreadStd, K: 3, Use: true},
		Reference: Reference{
			Optimal:     true,
			MinPoints:   3,
			MaxFraction: .5,
			Steps:       stability.DefaultSteps,
		},
		Quadrants: Quadrants{
			Use:            true,
			MinPerQuadrant: 1,
			Weighting:      blos.WeightNone,
			MaskWeight:     2,
			Alpha:          .1,
		},
		BLOS: BLOS{Negative: blos.NegativeDelete, Conversion: blos.DefaultConversion},
		Uncertainty: Uncertainty{
			DensityPercents:     append([]float64{}, blos.DensityPercents...),
			TemperaturePercents: append([]float64{}, blos.TemperaturePercents...),
		},
		Log: Log{Divider: "=================================================================="},
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	c := Default()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &c, nil
}

// Save writes c as YAML.
func Save(path string, c *Config) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Validate checks that settings are complete and consistent.
func (c *Config) Validate() error {
	r := &c.Region
	switch {
	case r.FITS == "":
		return errors.New("region.fits is required")
	case r.Quantity != raster.Extinction && r.Quantity != raster.HydrogenColumnDensity:
		return fmt.Errorf("region.quantity %q must be %s or %s",
			r.Quantity, raster.Extinction, raster.HydrogenColumnDensity)
	case r.Distance <= 0:
		return errors.New("region.distance must be positive")
	case r.JeansLength <= 0:
		return errors.New("region.jeans_length must be positive")
	case r.N0 == "" || r.T0 == "" || r.G0 == "":
		return errors.New("region.n0, region.t0 and region.g0 are required")
	case c.Input.Catalogue == "":
		return errors.New("input.catalogue is required")
	case c.Input.ProfileTemplate == "":
		return errors.New("input.profile_template is required")
	}
	if _, err := sep("input.separator", c.Input.Separator); err != nil {
		return err
	}
	if _, err := sep("output.separator", c.Output.Separator); err != nil {
		return err
	}
	if err := c.Map.Resolve.Validate(); err != nil {
		return err
	}
	switch c.Anomaly.Spread {
	case refsel.SpreadStd, refsel.SpreadIQR:
	default:
		return fmt.Errorf("anomaly.spread %q must be %s or %s",
			c.Anomaly.Spread, refsel.SpreadStd, refsel.SpreadIQR)
	}
	ref := &c.Reference
	switch {
	case c.Anomaly.K <= 0:
		return errors.New("anomaly.k must be positive")
	case c.Proximity.HighMultiplier <= 0:
		return errors.New("proximity.high_multiplier must be positive")
	case ref.MinPoints < 1:
		return errors.New("reference.min_points must be at least 1")
	case ref.MaxFraction <= 0 || ref.MaxFraction > 1:
		return errors.New("reference.max_fraction must be in (0, 1]")
	case ref.Steps < 2:
		return errors.New("reference.steps must be at least 2")
	case ref.Workers < 0:
		return errors.New("reference.workers must not be negative")
	case c.Quadrants.MinPerQuadrant < 0:
		return errors.New("quadrants.min_per_quadrant must not be negative")
	case c.Quadrants.Alpha < 0:
		return errors.New("quadrants.alpha must not be negative")
	case c.BLOS.Conversion.ExtinctionToHydrogen <= 0 || c.BLOS.Conversion.PathLength <= 0:
		return errors.New("blos conversion factors must be positive")
	}
	if err := c.Quadrants.Weighting.Validate(); err != nil {
		return err
	}
	if err := c.BLOS.Negative.Validate(); err != nil {
		return err
	}
	for _, ps := range [][]float64{c.Uncertainty.DensityPercents, c.Uncertainty.TemperaturePercents} {
		for _, p := range ps {
			if p <= 0 {
				return fmt.Errorf("uncertainty percentages must be positive, got %g", p)
			}
		}
	}
	return nil
}

func sep(name, s string) (rune, error) {
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("%s %q must be a single character", name, s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

// CatalogueFormat is the input table format.
func (c *Config) CatalogueFormat() catalogue.Format {
	r, _ := sep("", c.Input.Separator)
	return catalogue.Format{Sep: r, Missing: c.Input.Missing}
}

// OutputSep is the output table separator.
func (c *Config) OutputSep() rune {
	r, _ := sep("", c.Output.Separator)
	return r
}

// MatchOptions are the matcher settings.
func (c *Config) MatchOptions() match.Options {
	return match.Options{
		Resolve:   c.Map.Resolve,
		UseFilled: c.Map.UseFilled,
		MinPoints: c.Reference.MinPoints,
	}
}

// FilterOptions are the reference candidate filter settings.
func (c *Config) FilterOptions() refsel.Options {
	return refsel.Options{
		Thresholds:     c.Thresholds,
		JeansLength:    c.Region.JeansLength,
		Distance:       c.Region.Distance,
		NearMultiplier: c.Proximity.NearMultiplier,
		FarMultiplier:  c.Proximity.FarMultiplier,
		HighMultiplier: c.Proximity.HighMultiplier,
		UseNear:        c.Proximity.UseNear,
		UseFar:         c.Proximity.UseFar,
		Spread:         c.Anomaly.Spread,
		AnomalyK:       c.Anomaly.K,
		UseAnomaly:     c.Anomaly.Use,
		MaxFraction:    c.Reference.MaxFraction,
	}
}

// StabilityOptions are the optimizer settings.  p enables quadrant
// enforcement if not nil.
func (c *Config) StabilityOptions(p *refsel.Partition) stability.Options {
	return stability.Options{
		Steps:          c.Reference.Steps,
		MinRefPoints:   c.Reference.MinPoints,
		MaxFraction:    c.Reference.MaxFraction,
		Workers:        c.Reference.Workers,
		Partition:      p,
		MinPerQuadrant: c.Quadrants.MinPerQuadrant,
	}
}

// Profiles is the source of the cloud's chemical profiles.
func (c *Config) Profiles() blos.Dir {
	return blos.Dir{
		Path:     filepath.Join(c.Input.ChemDir, blos.ModelDir(c.Region.N0, c.Region.T0, c.Region.G0)),
		Template: c.Input.ProfileTemplate,
	}
}
