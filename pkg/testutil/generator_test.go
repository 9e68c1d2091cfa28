package testutil

import (
	"math"
	"strings"
	"testing"
)

func TestTable(t *testing.T) {
	gen := NewDefault()

	tests := []struct {
		name string
		rows int
	}{
		{"empty", 0},
		{"single", 1},
		{"small", 10},
		{"large", 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := gen.Table(tt.rows)
			AssertRowCount(t, tbl, tt.rows)
			AssertColumns(t, tbl, MixtureColumns...)
			AssertNumeric(t, tbl, "age", "cement", "water", "strength")
		})
	}
}

func TestMixRanges(t *testing.T) {
	for _, r := range NewDefault().Mix(200) {
		if r["cement"] < 102 || r["cement"] > 540 {
			t.Errorf("cement out of range: %v", r["cement"])
		}
		if r["water"] < 121 || r["water"] > 247 {
			t.Errorf("water out of range: %v", r["water"])
		}
		if r["strength"] < 2.33 {
			t.Errorf("strength below floor: %v", r["strength"])
		}
	}
}

func TestMissingRate(t *testing.T) {
	tbl := New(GeneratorConfig{Seed: 7, MissingRate: 0.5}).Table(100)
	missing := 0
	for _, c := range tbl.Columns {
		for i, v := range c.Values {
			if math.IsNaN(v) {
				missing++
				if c.Raw[i] != "" {
					t.Fatalf("missing cell %s[%d] has raw %q", c.Name, i, c.Raw[i])
				}
			}
		}
	}
	if missing == 0 {
		t.Error("expected some missing cells")
	}
}

func TestCSV(t *testing.T) {
	csv := NewDefault().CSV(3)
	lines := strings.Split(strings.TrimSpace(csv), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 rows, got %d lines", len(lines))
	}
	if lines[0] != strings.Join(MixtureColumns, ",") {
		t.Errorf("unexpected header %q", lines[0])
	}
}

func TestWithout(t *testing.T) {
	tbl := Without(QuickTable(5), "water", "slag")
	for _, n := range tbl.Names() {
		if n == "water" || n == "slag" {
			t.Errorf("column %s not dropped", n)
		}
	}
	AssertRowCount(t, tbl, 5)
}

func TestDeterminism(t *testing.T) {
	a := New(GeneratorConfig{Seed: 99}).CSV(20)
	b := New(GeneratorConfig{Seed: 99}).CSV(20)
	if a != b {
		t.Error("same seed produced different tables")
	}
	c := New(GeneratorConfig{Seed: 100}).CSV(20)
	if a == c {
		t.Error("different seeds produced identical tables")
	}
}

func BenchmarkTable1000(b *testing.B) {
	gen := NewDefault()
	for i := 0; i < b.N; i++ {
		_ = gen.Table(1000)
	}
}
