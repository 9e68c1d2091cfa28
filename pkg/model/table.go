// Package model defines the in-memory dataset shared by every cdash view.
package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrMissingColumn is returned when a required column is not in the table.
var ErrMissingColumn = errors.New("column not found")

// Column is one named column of the dataset. Raw keeps the cell text as
// read; Values holds the parsed numbers (NaN for empty cells) and is only
// meaningful when Numeric is true.
type Column struct {
	Name    string
	Raw     []string
	Values  []float64
	Numeric bool
}

// Count returns the number of non-missing numeric values.
func (c Column) Count() int {
	if !c.Numeric {
		return 0
	}
	n := 0
	for _, v := range c.Values {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}

// Table is a column-oriented dataset read once from a source file.
// Tables are treated as immutable after loading.
type Table struct {
	Source  string
	Columns []Column
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil || len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Raw)
}

// Names returns the column names in file order.
func (t *Table) Names() []string {
	if t == nil {
		return nil
	}
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column looks a column up by exact name first, then by trimmed
// case-insensitive name so "Strength " still resolves to "strength".
func (t *Table) Column(name string) (*Column, error) {
	if t == nil {
		return nil, fmt.Errorf("%q: %w", name, ErrMissingColumn)
	}
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], nil
		}
	}
	want := strings.ToLower(strings.TrimSpace(name))
	for i := range t.Columns {
		if strings.ToLower(strings.TrimSpace(t.Columns[i].Name)) == want {
			return &t.Columns[i], nil
		}
	}
	return nil, fmt.Errorf("%q: %w", name, ErrMissingColumn)
}

// NumericColumns returns the columns that parsed as numbers, in file order.
func (t *Table) NumericColumns() []Column {
	if t == nil {
		return nil
	}
	var out []Column
	for _, c := range t.Columns {
		if c.Numeric {
			out = append(out, c)
		}
	}
	return out
}

// Row returns the raw cells of row i in column order.
func (t *Table) Row(i int) []string {
	row := make([]string, len(t.Columns))
	for j, c := range t.Columns {
		if i < len(c.Raw) {
			row[j] = c.Raw[i]
		}
	}
	return row
}
