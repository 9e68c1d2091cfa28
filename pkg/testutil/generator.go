// Package testutil provides fixture generators for concrete-mixture tables.
// All generators produce deterministic output for reproducible tests.
package testutil

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"

	"github.com/vanderheijden86/cdash/pkg/model"
)

// MixtureColumns is the column order of the full concrete dataset.
var MixtureColumns = []string{
	"cement", "slag", "ash", "water", "superplastic",
	"coarseagg", "fineagg", "age", "strength",
}

// Ages are the curing ages (days) the dataset is sampled at.
var Ages = []float64{1, 3, 7, 14, 28, 56, 90, 100, 180, 270, 365}

// GeneratorConfig controls table generation.
type GeneratorConfig struct {
	Seed        int64    // Random seed for determinism (0 = use 1)
	Columns     []string // Columns to emit (nil = MixtureColumns)
	MissingRate float64  // Probability of an empty cell, per cell
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:    42,
		Columns: MixtureColumns,
	}
}

// Generator creates mixture tables.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	if cfg.Seed == 0 {
		cfg.Seed = 1
	}
	if len(cfg.Columns) == 0 {
		cfg.Columns = MixtureColumns
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// Mix returns n rows of plausible mixture values keyed by column name.
// Strength rises with cement and age and falls with water.
func (g *Generator) Mix(n int) []map[string]float64 {
	rows := make([]map[string]float64, n)
	for i := range rows {
		cement := 102 + g.rng.Float64()*438
		water := 121 + g.rng.Float64()*126
		age := Ages[g.rng.Intn(len(Ages))]
		strength := 0.08*cement - 0.12*water + 9*math.Log1p(age) + g.rng.NormFloat64()*4
		rows[i] = map[string]float64{
			"cement":       round2(cement),
			"slag":         round2(g.rng.Float64() * 359),
			"ash":          round2(g.rng.Float64() * 200),
			"water":        round2(water),
			"superplastic": round2(g.rng.Float64() * 32),
			"coarseagg":    round2(801 + g.rng.Float64()*344),
			"fineagg":      round2(594 + g.rng.Float64()*399),
			"age":          age,
			"strength":     round2(math.Max(2.33, strength)),
		}
	}
	return rows
}

// Table returns an n-row table with the configured columns.
func (g *Generator) Table(n int) *model.Table {
	rows := g.Mix(n)
	tbl := &model.Table{Source: "generated"}
	for _, name := range g.cfg.Columns {
		col := model.Column{
			Name:    name,
			Raw:     make([]string, n),
			Values:  make([]float64, n),
			Numeric: true,
		}
		for i, r := range rows {
			if g.cfg.MissingRate > 0 && g.rng.Float64() < g.cfg.MissingRate {
				col.Values[i] = math.NaN()
				continue
			}
			v := r[name]
			col.Values[i] = v
			col.Raw[i] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		tbl.Columns = append(tbl.Columns, col)
	}
	return tbl
}

// CSV returns an n-row dataset as CSV text with a header line.
func (g *Generator) CSV(n int) string {
	return ToCSV(g.Table(n))
}

// ToCSV serialises tbl's raw cells as comma-separated text.
func ToCSV(tbl *model.Table) string {
	var b strings.Builder
	b.WriteString(strings.Join(tbl.Names(), ","))
	b.WriteByte('\n')
	for i := 0; i < tbl.Len(); i++ {
		b.WriteString(strings.Join(tbl.Row(i), ","))
		b.WriteByte('\n')
	}
	return b.String()
}

// QuickTable returns an n-row table from the default generator.
func QuickTable(n int) *model.Table {
	return NewDefault().Table(n)
}

// Without returns a copy of tbl without the named columns.
func Without(tbl *model.Table, drop ...string) *model.Table {
	skip := make(map[string]bool, len(drop))
	for _, d := range drop {
		skip[d] = true
	}
	out := &model.Table{Source: tbl.Source}
	for _, c := range tbl.Columns {
		if !skip[c.Name] {
			out.Columns = append(out.Columns, c)
		}
	}
	return out
}

// TextColumn builds a non-numeric column.
func TextColumn(name string, cells ...string) model.Column {
	return model.Column{Name: name, Raw: cells}
}

// NumericColumn builds a numeric column; NaN cells get an empty raw value.
func NumericColumn(name string, vals ...float64) model.Column {
	raw := make([]string, len(vals))
	for i, v := range vals {
		if !math.IsNaN(v) {
			raw[i] = fmt.Sprint(v)
		}
	}
	return model.Column{Name: name, Raw: raw, Values: vals, Numeric: true}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
