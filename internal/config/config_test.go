// Public domain.

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soniakeys/rmblos/internal/blos"
	"github.com/soniakeys/rmblos/internal/config"
	"github.com/soniakeys/rmblos/internal/raster"
	"github.com/soniakeys/rmblos/internal/refsel"
)

const validYAML = `region:
  name: Oriona
  fits: Data/oriona.fits
  xmin: 10
  xmax: 200
  distance: 432
  jeans_length: 0.349
  n0: "1000"
  t0: "15"
  g0: "1"
input:
  catalogue: Data/catalog.dat
anomaly:
  spread: IQR
uncertainty:
  density_percents: [5, 10]
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadNotExists(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	c, err := config.Load(writeConfig(t, validYAML))
	require.NoError(t, err)
	assert.Equal(t, "Oriona", c.Region.Name)
	require.NotNil(t, c.Region.Bounds.XMin)
	assert.Equal(t, 10, *c.Region.Bounds.XMin)
	assert.Equal(t, 200, *c.Region.Bounds.XMax)
	assert.Nil(t, c.Region.Bounds.YMin)
	assert.Equal(t, raster.HydrogenColumnDensity, c.Region.Quantity)
	assert.Equal(t, refsel.SpreadIQR, c.Anomaly.Spread)
	assert.Equal(t, []float64{5, 10}, c.Uncertainty.DensityPercents)

	// defaults survive
	assert.Equal(t, 3., c.Anomaly.K)
	assert.Equal(t, blos.TemperaturePercents, c.Uncertainty.TemperaturePercents)
	assert.Equal(t, raster.FillNaN, c.Map.Resolve.Fill)
	assert.True(t, c.Map.Resolve.Interp)
	assert.Equal(t, blos.DefaultConversion, c.BLOS.Conversion)
	assert.Equal(t, '\t', c.CatalogueFormat().Sep)
	assert.Equal(t, "nan", c.CatalogueFormat().Missing)

	fo := c.FilterOptions()
	assert.Equal(t, 432., fo.Distance)
	assert.Equal(t, .349, fo.JeansLength)
	assert.True(t, fo.UseNear)
	assert.False(t, fo.UseFar)

	d := c.Profiles()
	assert.Equal(t, filepath.Join("ChemicalAbundance", "n1000_T15_G1"), d.Path)
}

func TestValidate(t *testing.T) {
	for _, tc := range []struct {
		name string
		edit func(c *config.Config)
	}{
		{"no fits", func(c *config.Config) { c.Region.FITS = "" }},
		{"quantity", func(c *config.Config) { c.Region.Quantity = "Flux" }},
		{"distance", func(c *config.Config) { c.Region.Distance = 0 }},
		{"model", func(c *config.Config) { c.Region.G0 = "" }},
		{"catalogue", func(c *config.Config) { c.Input.Catalogue = "" }},
		{"separator", func(c *config.Config) { c.Output.Separator = ", " }},
		{"fill", func(c *config.Config) { c.Map.Resolve.Fill = "Mean" }},
		{"spread", func(c *config.Config) { c.Anomaly.Spread = "MAD" }},
		{"min points", func(c *config.Config) { c.Reference.MinPoints = 0 }},
		{"max fraction", func(c *config.Config) { c.Reference.MaxFraction = 1.5 }},
		{"steps", func(c *config.Config) { c.Reference.Steps = 1 }},
		{"weighting", func(c *config.Config) { c.Quadrants.Weighting = "Area" }},
		{"negative", func(c *config.Config) { c.BLOS.Negative = "Drop" }},
		{"conversion", func(c *config.Config) { c.BLOS.Conversion.PathLength = 0 }},
		{"percent", func(c *config.Config) { c.Uncertainty.TemperaturePercents = []float64{5, -5} }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c, err := config.Load(writeConfig(t, validYAML))
			require.NoError(t, err)
			tc.edit(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestDefaultNeedsRegion(t *testing.T) {
	c := config.Default()
	assert.Error(t, c.Validate())
}

func TestParseError(t *testing.T) {
	_, err := config.Load(writeConfig(t, "region: [1, 2"))
	assert.Error(t, err)
}

func TestSaveLoad(t *testing.T) {
	c, err := config.Load(writeConfig(t, validYAML))
	require.NoError(t, err)
	c.Map.Resolve.Fallback = -1
	c.Quadrants.Weighting = blos.WeightQuadrant
	path := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, config.Save(path, c))
	got, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}
