// Public domain.

// Package table writes delimited text tables.
package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/soniakeys/unit"
)

// Table is a named table of formatted cells.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// New returns an empty table.
func New(name string, header ...string) *Table {
	return &Table{Name: name, Header: header}
}

// Add appends a row.  Angles are written in degrees.
func (t *Table) Add(cells ...interface{}) {
	row := make([]string, len(cells))
	for i, c := range cells {
		row[i] = Format(c)
	}
	t.Rows = append(t.Rows, row)
}

// Format formats a cell value.
func Format(c interface{}) string {
	switch v := c.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case unit.Angle:
		return strconv.FormatFloat(v.Deg(), 'g', -1, 64)
	case unit.RA:
		return strconv.FormatFloat(v.Deg(), 'g', -1, 64)
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(c)
}

// Write writes the header and rows separated by sep.
func (t *Table) Write(w io.Writer, sep rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = sep
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("table %s: %w", t.Name, err)
	}
	return nil
}

// WriteFile writes the table to dir as Name+ext.
func (t *Table) WriteFile(dir string, sep rune, ext string) (err error) {
	f, err := os.Create(filepath.Join(dir, t.Name+ext))
	if err != nil {
		return err
	}
	defer func() {
		if cErr := f.Close(); err == nil {
			err = cErr
		}
	}()
	return t.Write(f, sep)
}
