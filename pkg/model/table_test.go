package model

import (
	"errors"
	"math"
	"testing"
)

func sampleTable() *Table {
	nan := math.NaN()
	return &Table{
		Source: "test.csv",
		Columns: []Column{
			{Name: "age", Raw: []string{"28", "7", ""}, Values: []float64{28, 7, nan}, Numeric: true},
			{Name: "cement", Raw: []string{"540", "332.5", "198.6"}, Values: []float64{540, 332.5, 198.6}, Numeric: true},
			{Name: "water", Raw: []string{"162", "228", "192"}, Values: []float64{162, 228, 192}, Numeric: true},
			{Name: "Strength ", Raw: []string{"79.99", "40.27", "44.3"}, Values: []float64{79.99, 40.27, 44.3}, Numeric: true},
			{Name: "note", Raw: []string{"a", "b", "c"}},
		},
	}
}

func TestTableLenAndNames(t *testing.T) {
	tbl := sampleTable()
	if tbl.Len() != 3 {
		t.Errorf("expected 3 rows, got %d", tbl.Len())
	}
	names := tbl.Names()
	if len(names) != 5 || names[0] != "age" || names[4] != "note" {
		t.Errorf("unexpected names: %v", names)
	}

	var nilTable *Table
	if nilTable.Len() != 0 {
		t.Error("nil table should have zero rows")
	}
}

func TestTableColumnLookup(t *testing.T) {
	tbl := sampleTable()

	c, err := tbl.Column("cement")
	if err != nil || c.Name != "cement" {
		t.Fatalf("exact lookup failed: %v", err)
	}

	c, err = tbl.Column("strength")
	if err != nil {
		t.Fatalf("case-insensitive lookup failed: %v", err)
	}
	if c.Name != "Strength " {
		t.Errorf("expected original column name preserved, got %q", c.Name)
	}

	_, err = tbl.Column("slag")
	if !errors.Is(err, ErrMissingColumn) {
		t.Errorf("expected ErrMissingColumn, got %v", err)
	}
}

func TestColumnCountSkipsMissing(t *testing.T) {
	tbl := sampleTable()
	age, _ := tbl.Column("age")
	if got := age.Count(); got != 2 {
		t.Errorf("expected count 2, got %d", got)
	}
	note, _ := tbl.Column("note")
	if got := note.Count(); got != 0 {
		t.Errorf("non-numeric column should count 0, got %d", got)
	}
}

func TestNumericColumns(t *testing.T) {
	cols := sampleTable().NumericColumns()
	if len(cols) != 4 {
		t.Fatalf("expected 4 numeric columns, got %d", len(cols))
	}
}

func TestTableRow(t *testing.T) {
	row := sampleTable().Row(1)
	want := []string{"7", "332.5", "228", "40.27", "b"}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("cell %d: want %q, got %q", i, want[i], row[i])
		}
	}
}

func TestMeasurements(t *testing.T) {
	rows, err := sampleTable().Measurements()
	if err != nil {
		t.Fatalf("Measurements: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Cement != 540 || rows[0].Strength != 79.99 {
		t.Errorf("unexpected first row: %+v", rows[0])
	}
	if r := rows[0].WaterCementRatio(); math.Abs(r-0.3) > 1e-9 {
		t.Errorf("expected w/c 0.3, got %v", r)
	}
}

func TestMeasurementsMissingColumn(t *testing.T) {
	tbl := sampleTable()
	tbl.Columns = tbl.Columns[1:] // drop age

	if _, err := tbl.Measurements(); !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
	missing := tbl.MissingRequired()
	if len(missing) != 1 || missing[0] != "age" {
		t.Errorf("expected [age] missing, got %v", missing)
	}
}

func TestWaterCementRatioZeroCement(t *testing.T) {
	if r := (Measurement{Water: 100}).WaterCementRatio(); r != 0 {
		t.Errorf("expected 0 for zero cement, got %v", r)
	}
}

func TestMeanWaterCementRatio(t *testing.T) {
	tests := []struct {
		name   string
		rows   []Measurement
		want   float64
		wantOK bool
	}{
		{"empty", nil, 0, false},
		{"zero cement only", []Measurement{{Water: 100}}, 0, false},
		{"skips missing", []Measurement{
			{Cement: 400, Water: 200},
			{Cement: math.NaN(), Water: 180},
			{Cement: 300, Water: math.NaN()},
			{Cement: 500, Water: 150},
		}, 0.4, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MeanWaterCementRatio(tt.rows)
			if ok != tt.wantOK || math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("MeanWaterCementRatio = %v, %v; want %v, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
