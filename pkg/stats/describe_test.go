package stats

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/cdash/pkg/loader"
	"github.com/vanderheijden86/cdash/pkg/model"
)

const eps = 1e-9

func approx(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return math.Abs(a-b) < 1e-6
}

func TestDescribeValuesKnown(t *testing.T) {
	got := DescribeValues("x", []float64{4, 1, 3, 2})
	want := map[string]float64{
		StatCount: 4,
		StatMean:  2.5,
		StatStd:   1.2909944487,
		StatMin:   1,
		StatQ1:    1.75,
		StatQ2:    2.5,
		StatQ3:    3.25,
		StatMax:   4,
	}
	for stat, w := range want {
		if g := got.Get(stat); !approx(g, w) {
			t.Errorf("%s: got %v, want %v", stat, g, w)
		}
	}
}

func TestDescribeValuesMatchesPandasOnConcreteStrength(t *testing.T) {
	// pandas: pd.Series([...]).describe()
	strength := []float64{79.99, 61.89, 40.27, 41.05, 44.30}
	got := DescribeValues("strength", strength)

	checks := []struct {
		stat string
		want float64
	}{
		{StatCount, 5},
		{StatMean, 53.5},
		{StatStd, 17.224892},
		{StatMin, 40.27},
		{StatQ1, 41.05},
		{StatQ2, 44.30},
		{StatQ3, 61.89},
		{StatMax, 79.99},
	}
	for _, c := range checks {
		if g := got.Get(c.stat); math.Abs(g-c.want) > 1e-5 {
			t.Errorf("%s: got %.6f, want %.6f", c.stat, g, c.want)
		}
	}
}

func TestDescribeValuesDropsNaN(t *testing.T) {
	got := DescribeValues("x", []float64{math.NaN(), 10, math.NaN(), 20})
	if got.Get(StatCount) != 2 {
		t.Errorf("expected count 2, got %v", got.Get(StatCount))
	}
	if got.Get(StatMean) != 15 {
		t.Errorf("expected mean 15, got %v", got.Get(StatMean))
	}
}

func TestDescribeValuesEdgeCases(t *testing.T) {
	empty := DescribeValues("empty", nil)
	if empty.Get(StatCount) != 0 {
		t.Errorf("expected count 0, got %v", empty.Get(StatCount))
	}
	for _, s := range Statistics[1:] {
		if !math.IsNaN(empty.Get(s)) {
			t.Errorf("expected NaN %s for empty series, got %v", s, empty.Get(s))
		}
	}

	one := DescribeValues("one", []float64{7})
	if one.Get(StatMean) != 7 || one.Get(StatQ1) != 7 || one.Get(StatMax) != 7 {
		t.Errorf("unexpected single-value summary: %+v", one)
	}
	if !math.IsNaN(one.Get(StatStd)) {
		t.Errorf("expected NaN std for one value, got %v", one.Get(StatStd))
	}
}

func TestColumnSummaryGetUnknown(t *testing.T) {
	c := DescribeValues("x", []float64{1})
	if !math.IsNaN(c.Get("kurtosis")) {
		t.Error("expected NaN for unknown statistic")
	}
}

func TestQuantile(t *testing.T) {
	xs := []float64{10, 20, 30, 40, 50}
	tests := []struct {
		p    float64
		want float64
	}{
		{0, 10},
		{0.1, 14},
		{0.25, 20},
		{0.5, 30},
		{0.9, 46},
		{1, 50},
		{-1, 10},
		{2, 50},
	}
	for _, tt := range tests {
		if got := Quantile(tt.p, xs); math.Abs(got-tt.want) > eps {
			t.Errorf("Quantile(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
	if !math.IsNaN(Quantile(0.5, nil)) {
		t.Error("expected NaN quantile of empty slice")
	}
}

func TestDescribeSampleData(t *testing.T) {
	tbl, err := loader.LoadTableFromFile(filepath.Join("..", "loader", "testdata", "concrete.csv"))
	if err != nil {
		t.Fatalf("load sample: %v", err)
	}
	s, err := Describe(tbl)
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if len(s.Columns) != len(tbl.NumericColumns()) {
		t.Fatalf("expected %d columns, got %d", len(tbl.NumericColumns()), len(s.Columns))
	}
	for _, name := range model.RequiredColumns {
		c, ok := s.Column(name)
		if !ok {
			t.Fatalf("summary missing %s", name)
		}
		if len(c.Values) != len(Statistics) {
			t.Errorf("%s: expected %d statistics, got %d", name, len(Statistics), len(c.Values))
		}
		if int(c.Get(StatCount)) != tbl.Len() {
			t.Errorf("%s: count %v != rows %d", name, c.Get(StatCount), tbl.Len())
		}
	}
	age, _ := s.Column("age")
	if age.Get(StatMin) != 3 || age.Get(StatMax) != 100 {
		t.Errorf("unexpected age range: %v..%v", age.Get(StatMin), age.Get(StatMax))
	}
}

func TestDescribeNoNumericColumns(t *testing.T) {
	tbl := &model.Table{Columns: []model.Column{{Name: "mix", Raw: []string{"A"}}}}
	if _, err := Describe(tbl); !errors.Is(err, ErrNoNumericColumns) {
		t.Fatalf("expected ErrNoNumericColumns, got %v", err)
	}
}

func TestDescribeColumns(t *testing.T) {
	tbl := &model.Table{Columns: []model.Column{
		{Name: "age", Raw: []string{"1", "2"}, Values: []float64{1, 2}, Numeric: true},
		{Name: "mix", Raw: []string{"A", "B"}},
	}}
	s, err := DescribeColumns(tbl, "age")
	if err != nil || len(s.Columns) != 1 {
		t.Fatalf("unexpected: %v %v", s, err)
	}
	if _, err := DescribeColumns(tbl, "water"); !errors.Is(err, model.ErrMissingColumn) {
		t.Errorf("expected ErrMissingColumn, got %v", err)
	}
	if _, err := DescribeColumns(tbl, "mix"); err == nil {
		t.Error("expected error for non-numeric column")
	}
	if _, err := DescribeColumns(tbl); !errors.Is(err, ErrNoNumericColumns) {
		t.Errorf("expected ErrNoNumericColumns, got %v", err)
	}
}

func TestSummaryRangeAndMatrix(t *testing.T) {
	s := &Summary{Columns: []ColumnSummary{
		DescribeValues("a", []float64{1, 2, 3}),
		DescribeValues("b", []float64{100}),
	}}
	lo, hi := s.Range()
	if lo != 1 || hi != 100 {
		t.Errorf("unexpected range %v..%v", lo, hi)
	}
	m := s.Matrix()
	if len(m) != 2 || len(m[0]) != len(Statistics) {
		t.Fatalf("unexpected matrix shape %dx%d", len(m), len(m[0]))
	}
	m[0][0] = -1
	if s.Columns[0].Values[0] == -1 {
		t.Error("Matrix must return a copy")
	}

	empty := &Summary{}
	if lo, hi := empty.Range(); lo != 0 || hi != 0 {
		t.Errorf("expected 0..0 for empty summary, got %v..%v", lo, hi)
	}
}

func TestDescribeValuesProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		xs := rapid.SliceOfN(rapid.Float64Range(-1e6, 1e6), 1, 200).Draw(t, "xs")
		c := DescribeValues("x", xs)

		if int(c.Get(StatCount)) != len(xs) {
			t.Fatalf("count %v != %d", c.Get(StatCount), len(xs))
		}
		order := []string{StatMin, StatQ1, StatQ2, StatQ3, StatMax}
		for i := 1; i < len(order); i++ {
			if c.Get(order[i-1]) > c.Get(order[i])+eps {
				t.Fatalf("%s (%v) > %s (%v)", order[i-1], c.Get(order[i-1]), order[i], c.Get(order[i]))
			}
		}
		mean := c.Get(StatMean)
		tol := 1e-9 * (math.Abs(c.Get(StatMin)) + math.Abs(c.Get(StatMax)) + 1)
		if mean < c.Get(StatMin)-tol || mean > c.Get(StatMax)+tol {
			t.Fatalf("mean %v outside [%v, %v]", mean, c.Get(StatMin), c.Get(StatMax))
		}
		if len(xs) > 1 && c.Get(StatStd) < 0 {
			t.Fatalf("negative std %v", c.Get(StatStd))
		}
	})
}

func TestQuantileDoesNotMutateInput(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		xs := rapid.SliceOfN(rapid.Float64Range(-100, 100), 1, 50).Draw(t, "xs")
		orig := append([]float64(nil), xs...)
		DescribeValues("x", xs)
		for i := range xs {
			if xs[i] != orig[i] {
				t.Fatalf("input mutated at %d", i)
			}
		}
	})
}

func TestSummaryRecordsAndTSV(t *testing.T) {
	s := &Summary{Columns: []ColumnSummary{DescribeValues("age", []float64{7})}}
	recs := s.Records()
	if len(recs) != 1 || recs[0].Column != "age" {
		t.Fatalf("unexpected records %+v", recs)
	}
	if recs[0].Std != nil {
		t.Errorf("expected nil std for a single value, got %v", *recs[0].Std)
	}
	if recs[0].Mean == nil || *recs[0].Mean != 7 {
		t.Errorf("unexpected mean %v", recs[0].Mean)
	}

	tsv := s.TSV()
	want := "column\tcount\tmean\tstd\tmin\t25%\t50%\t75%\tmax\nage\t1\t7\tNaN\t7\t7\t7\t7\t7\n"
	if tsv != want {
		t.Errorf("TSV = %q, want %q", tsv, want)
	}
}
