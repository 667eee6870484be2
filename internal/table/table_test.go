// Public domain.

package table_test

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/soniakeys/unit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soniakeys/rmblos/internal/table"
)

func ExampleTable_Write() {
	t := table.New("ReferenceData", "Fiducial_RM", "Count", "Optimal")
	t.Add(12.5, 3, true)
	t.Add(math.NaN(), 0, false)
	t.Write(os.Stdout, '\t')
	// Output:
	// Fiducial_RM	Count	Optimal
	// 12.5	3	true
	// NaN	0	false
}

func TestFormatAngle(t *testing.T) {
	d, err := strconv.ParseFloat(table.Format(unit.AngleFromDeg(-30)), 64)
	require.NoError(t, err)
	assert.InDelta(t, -30, d, 1e-12)
	d, err = strconv.ParseFloat(table.Format(unit.RAFromDeg(83.5)), 64)
	require.NoError(t, err)
	assert.InDelta(t, 83.5, d, 1e-12)
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	tb := table.New("Rejected", "ID#", "Reason")
	tb.Add(4, "near_high_extinction,anomalous_rm")
	require.NoError(t, tb.WriteFile(dir, ',', ".csv"))
	b, err := os.ReadFile(filepath.Join(dir, "Rejected.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	assert.Equal(t, []string{"ID#,Reason", `4,"near_high_extinction,anomalous_rm"`}, lines)
}

func TestWriteFileNoDir(t *testing.T) {
	tb := table.New("x", "a")
	assert.Error(t, tb.WriteFile(filepath.Join(t.TempDir(), "missing"), ',', ".csv"))
}
