// Public domain.

package pipeline

import (
	"math"
	"os"
	"strconv"

	"github.com/soniakeys/rmblos/internal/blos"
	"github.com/soniakeys/rmblos/internal/match"
	"github.com/soniakeys/rmblos/internal/refsel"
	"github.com/soniakeys/rmblos/internal/table"
)

var pointHeader = []string{
	"ID#", "Extinction_Index_x", "Extinction_Index_y",
	"Ra(deg)", "Dec(deg)", "Pixel_Ra(deg)", "Pixel_Dec(deg)",
	"Rotation_Measure(rad/m2)", "RM_Err(rad/m2)",
	"Extinction_Value", "Min_Extinction_Value", "Min_Extinction_Ra", "Min_Extinction_Dec",
	"Max_Extinction_Value", "Max_Extinction_Ra", "Max_Extinction_Dec",
	"Physical",
}

func pointCells(p *match.Point) []interface{} {
	return []interface{}{
		p.ID, p.X, p.Y,
		p.RA, p.Dec, p.PixRA, p.PixDec,
		p.RM, p.RMErr,
		p.Ext, p.ExtMin, p.MinRA, p.MinDec,
		p.ExtMax, p.MaxRA, p.MaxDec,
		p.Physical,
	}
}

func pointTable(name string, ps []match.Point) *table.Table {
	t := table.New(name, pointHeader...)
	for i := range ps {
		t.Add(pointCells(&ps[i])...)
	}
	return t
}

func candidateTable(name string, cs []refsel.Candidate) *table.Table {
	t := table.New(name, append(append([]string{}, pointHeader...), "Reasons")...)
	for i := range cs {
		t.Add(append(pointCells(&cs[i].Point), cs[i].Reasons)...)
	}
	return t
}

var blosHeader = []string{
	"ID#", "Ra(deg)", "Dec(deg)",
	"Rotation_Measure(rad/m2)", "RM_Err(rad/m2)", "Scaled_RM",
	"Extinction_Value", "Min_Extinction_Value", "Max_Extinction_Value",
	"Scaled_Extinction", "Scaled_Min_Extinction", "Scaled_Max_Extinction",
	"Electron_Abundance", "Electron_Column_Density",
	"Min_Electron_Column_Density", "Max_Electron_Column_Density",
	"Magnetic_Field(uG)", "Unscaled_Magnetic_Field(uG)",
	"Min_Magnetic_Field(uG)", "Max_Magnetic_Field(uG)",
	"RM_Err_Field(uG)", "Total_Err_Std", "Total_Err_Avg",
}

func blosTable(name string, rs []blos.Result) *table.Table {
	t := table.New(name, blosHeader...)
	for i := range rs {
		r := &rs[i]
		t.Add(r.ID, r.RA, r.Dec,
			r.RM, r.RMErr, r.ScaledRM,
			r.Ext, r.ExtMin, r.ExtMax,
			r.ScaledExt, r.ScaledExtMin, r.ScaledExtMax,
			r.EAbundance, r.Ne, r.NeMin, r.NeMax,
			r.B, r.RawB, r.BMin, r.BMax,
			r.RMErrB, r.TotalErrStd, r.TotalErrAvg)
	}
	return t
}

// Tables renders the stage outputs as named tables, in stage order.
func (o *Output) Tables() []*table.Table {
	ts := []*table.Table{pointTable("MatchedRMExtinction", o.Match.Points)}

	f := o.Filter
	ts = append(ts,
		candidateTable("AllPotentialRefPoints", f.Potential),
		candidateTable("NearHighExtRej", f.NearRejected),
		candidateTable("FarHighExtRej", f.FarRejected),
		candidateTable("AnomRej", f.AnomRejected),
		candidateTable("Rejected", f.Rejected),
		pointTable("Remaining", f.Remaining),
	)

	if s := o.Stability; s != nil {
		h := []string{"Num_Ref"}
		for _, id := range s.Table.IDs {
			h = append(h, "ID#"+strconv.Itoa(id))
		}
		t := table.New("StabilityTrend", h...)
		for i, r := range s.Table.Rows {
			cells := []interface{}{i + 1}
			for _, v := range r {
				cells = append(cells, v)
			}
			t.Add(cells...)
		}
		ts = append(ts, t)

		t = table.New("OptimalCounts", "Threshold", "Optimal_Num_Ref")
		for i, th := range s.Thresholds {
			t.Add(th, s.Optimal[i])
		}
		ts = append(ts, t)

		if o.Partition != nil {
			t = table.New("QuadrantCounts", "Quadrant", "Available", "Chosen")
			for q := range s.Available {
				t.Add(q+1, s.Available[q], s.Quadrants[q])
			}
			ts = append(ts, t)
		}
	}

	h := append(append([]string{}, pointHeader...), "Quadrant", "Weight")
	t := table.New("ChosenRefPoints", h...)
	for i := range o.Chosen {
		p := &o.Chosen[i]
		q, w := 0, 1.
		if o.Partition != nil {
			q = int(o.Partition.Point(*p))
		}
		if o.Weights != nil {
			w = o.Weights[i]
		}
		t.Add(append(pointCells(p), q, w)...)
	}
	ts = append(ts, t)

	t = table.New("ReferenceData",
		"Num_Ref_Points", "Fiducial_RM", "Fiducial_RM_AvgErr", "Fiducial_RM_StdErr",
		"Fiducial_Extinction", "Extinction_Threshold", "High_Extinction",
		"Near_Radius(pix)", "Far_Radius(pix)")
	s := &o.Stats
	t.Add(s.Count, s.RM, s.RMAvgErr, s.RMStdErr, s.Ext,
		f.Threshold, f.HighExt, f.NearRadius, f.FarRadius)
	ts = append(ts, t)

	ts = append(ts, blosTable("BLOSPoints", o.BLOS))
	for _, runs := range [][]blos.Run{o.Density, o.Temp} {
		for _, r := range runs {
			if r.Err == nil {
				ts = append(ts, blosTable("B_Av_"+r.Label(), r.Results))
			}
		}
	}

	t = table.New("FinalBLOSResults",
		"ID#", "Ra(deg)", "Dec(deg)", "Extinction_Value",
		"Magnetic_Field(uG)", "Upper_Bound(uG)", "Lower_Bound(uG)",
		"RM_Uncertainty(uG)", "Extinction_Upper(uG)", "Extinction_Lower(uG)",
		"Density_Upper(uG)", "Density_Lower(uG)",
		"Temperature_Upper(uG)", "Temperature_Lower(uG)")
	for _, r := range o.Uncert.Results {
		t.Add(r.ID, r.RA, r.Dec, r.Ext,
			math.Round(r.B), math.Round(r.Upper), math.Round(r.Lower),
			math.Round(r.RMTerm), math.Round(r.ExtUp), math.Round(r.ExtDown),
			math.Round(r.DensUp), math.Round(r.DensDown),
			math.Round(r.TempUp), math.Round(r.TempDown))
	}
	return append(ts, t)
}

// WriteTables writes all tables to dir, creating it if needed.
func (o *Output) WriteTables(dir string, sep rune, ext string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	for _, t := range o.Tables() {
		if err := t.WriteFile(dir, sep, ext); err != nil {
			return err
		}
	}
	return nil
}
