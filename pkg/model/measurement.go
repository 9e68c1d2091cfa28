package model

import (
	"fmt"
	"math"
)

// Column names every concrete dataset is expected to carry.
const (
	ColAge      = "age"
	ColCement   = "cement"
	ColWater    = "water"
	ColStrength = "strength"
)

// RequiredColumns lists the columns the dashboard charts draw from.
var RequiredColumns = []string{ColAge, ColCement, ColWater, ColStrength}

// Units maps the required columns to their measurement units.
var Units = map[string]string{
	ColAge:      "days",
	ColCement:   "kg/m³",
	ColWater:    "kg/m³",
	ColStrength: "MPa",
}

// Measurement is one concrete-mixture sample.
type Measurement struct {
	Age      float64 `json:"age"`      // days
	Cement   float64 `json:"cement"`   // kg/m³
	Water    float64 `json:"water"`    // kg/m³
	Strength float64 `json:"strength"` // MPa
}

// WaterCementRatio returns water/cement, or 0 when cement is zero.
func (m Measurement) WaterCementRatio() float64 {
	if m.Cement == 0 {
		return 0
	}
	return m.Water / m.Cement
}

// MeanWaterCementRatio averages the w/c ratio over rows with a known,
// non-zero cement content. ok is false when no row qualifies.
func MeanWaterCementRatio(rows []Measurement) (mean float64, ok bool) {
	var sum float64
	n := 0
	for _, r := range rows {
		if r.Cement == 0 || math.IsNaN(r.Cement) || math.IsNaN(r.Water) {
			continue
		}
		sum += r.WaterCementRatio()
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// Measurements projects the table onto Measurement rows. It fails if any
// required column is missing or not numeric.
func (t *Table) Measurements() ([]Measurement, error) {
	cols := make([]*Column, len(RequiredColumns))
	for i, name := range RequiredColumns {
		c, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		if !c.Numeric {
			return nil, fmt.Errorf("column %q is not numeric", name)
		}
		cols[i] = c
	}

	out := make([]Measurement, t.Len())
	for i := range out {
		out[i] = Measurement{
			Age:      cols[0].Values[i],
			Cement:   cols[1].Values[i],
			Water:    cols[2].Values[i],
			Strength: cols[3].Values[i],
		}
	}
	return out, nil
}

// MissingRequired returns the required columns absent from the table.
func (t *Table) MissingRequired() []string {
	var missing []string
	for _, name := range RequiredColumns {
		if _, err := t.Column(name); err != nil {
			missing = append(missing, name)
		}
	}
	return missing
}
