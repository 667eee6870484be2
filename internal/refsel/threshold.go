// Public domain.

// Package refsel selects candidate reference points, the off-cloud
// background sources whose rotation measures estimate the Galactic
// foreground, and balances them over the quadrants of the cloud.
package refsel

import (
	"math"

	"github.com/soniakeys/meeus/v3/coord"
	"github.com/soniakeys/unit"
	"gonum.org/v1/gonum/stat"

	"github.com/soniakeys/rmblos/internal/raster"
)

// Thresholds are the extinction values below which a point may serve as
// a reference, by where the cloud lies in the Galaxy.
type Thresholds struct {
	OffDiskLatitude    float64 `yaml:"off_disk_latitude"` // degrees
	OnDiskGalactic     float64 `yaml:"on_disk_galactic"`
	OnDiskAntiGalactic float64 `yaml:"on_disk_anti_galactic"`
	OffDisk            float64 `yaml:"off_disk"`
	// values are multipliers of the mean region extinction
	AvgExtMultiplier bool `yaml:"avg_ext_multiplier"`
}

// DefaultThresholds are in magnitudes of visual extinction.
var DefaultThresholds = Thresholds{
	OffDiskLatitude:    15,
	OnDiskGalactic:     2,
	OnDiskAntiGalactic: 1.5,
	OffDisk:            1,
}

// Centre is the sky position of the region center and its galactic
// coordinates, l in [0, 360).
//
// The galactic conversion assumes a B1950 equator.  The few tenths of a
// degree of precession from J2000 do not matter for choosing between
// disk and off-disk thresholds.
func Centre(m *raster.Map) (ra unit.RA, dec unit.Angle, l, b unit.Angle) {
	cx, cy := m.Region.Center()
	ra, dec = m.WCS.World(cx, cy)
	l, b = coord.EqToGal(ra, dec)
	if l = unit.Angle(math.Mod(l.Rad(), 2*math.Pi)); l < 0 {
		l += 2 * math.Pi
	}
	return
}

// Threshold picks the reference extinction threshold for a cloud at
// galactic l, b.  meanExt is used only with AvgExtMultiplier.
func (t Thresholds) Threshold(l, b unit.Angle, meanExt float64) float64 {
	var v float64
	ld := l.Deg()
	switch {
	case math.Abs(b.Deg()) < t.OffDiskLatitude && (ld < 90 || ld > 270):
		v = t.OnDiskGalactic
	case math.Abs(b.Deg()) < t.OffDiskLatitude:
		v = t.OnDiskAntiGalactic
	default:
		v = t.OffDisk
	}
	if t.AvgExtMultiplier {
		v *= meanExt
	}
	return v
}

// MeanExtinction is the mean of the finite cells of the region.
func MeanExtinction(m *raster.Map) float64 {
	return stat.Mean(m.Finite(m.Region), nil)
}
