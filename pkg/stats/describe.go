// Package stats computes descriptive statistics over the numeric columns of
// a dataset, matching the row set and conventions of pandas' describe():
// count excludes missing values, std is the sample deviation (n-1), and
// quartiles interpolate linearly between closest ranks.
package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/vanderheijden86/cdash/pkg/metrics"
	"github.com/vanderheijden86/cdash/pkg/model"
)

// ErrNoNumericColumns is returned when a table has nothing to describe.
var ErrNoNumericColumns = errors.New("no numeric columns to describe")

// Statistic names, in display order.
const (
	StatCount = "count"
	StatMean  = "mean"
	StatStd   = "std"
	StatMin   = "min"
	StatQ1    = "25%"
	StatQ2    = "50%"
	StatQ3    = "75%"
	StatMax   = "max"
)

// Statistics lists the rows of a summary in display order.
var Statistics = []string{StatCount, StatMean, StatStd, StatMin, StatQ1, StatQ2, StatQ3, StatMax}

// ColumnSummary holds the statistics for one column.
type ColumnSummary struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"` // indexed like Statistics
}

// Get returns the named statistic, or NaN if the name is unknown.
func (c ColumnSummary) Get(stat string) float64 {
	for i, s := range Statistics {
		if s == stat {
			return c.Values[i]
		}
	}
	return math.NaN()
}

// Summary is the describe() matrix: one ColumnSummary per numeric column.
type Summary struct {
	Columns []ColumnSummary `json:"columns"`
}

// Column returns the summary for the named column.
func (s *Summary) Column(name string) (ColumnSummary, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnSummary{}, false
}

// Matrix returns rows = columns, cols = statistics. This is the transposed
// layout the heat map draws.
func (s *Summary) Matrix() [][]float64 {
	out := make([][]float64, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = append([]float64(nil), c.Values...)
	}
	return out
}

// Range returns the smallest and largest finite value in the summary.
func (s *Summary) Range() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, c := range s.Columns {
		for _, v := range c.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 0
	}
	return lo, hi
}

// Describe summarises every numeric column of tbl.
func Describe(tbl *model.Table) (*Summary, error) {
	defer metrics.Timer(metrics.Describe)()

	cols := tbl.NumericColumns()
	if len(cols) == 0 {
		return nil, ErrNoNumericColumns
	}

	s := &Summary{Columns: make([]ColumnSummary, 0, len(cols))}
	for _, c := range cols {
		s.Columns = append(s.Columns, DescribeValues(c.Name, c.Values))
	}
	return s, nil
}

// DescribeColumns summarises only the named columns, in the given order.
func DescribeColumns(tbl *model.Table, names ...string) (*Summary, error) {
	s := &Summary{}
	for _, n := range names {
		c, err := tbl.Column(n)
		if err != nil {
			return nil, err
		}
		if !c.Numeric {
			return nil, fmt.Errorf("column %q is not numeric", n)
		}
		s.Columns = append(s.Columns, DescribeValues(c.Name, c.Values))
	}
	if len(s.Columns) == 0 {
		return nil, ErrNoNumericColumns
	}
	return s, nil
}

// DescribeValues computes the statistics for one series. NaNs are dropped.
// With no values every statistic but count is NaN; with one value std is NaN.
func DescribeValues(name string, values []float64) ColumnSummary {
	xs := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			xs = append(xs, v)
		}
	}

	out := ColumnSummary{Name: name, Values: make([]float64, len(Statistics))}
	out.Values[0] = float64(len(xs))
	if len(xs) == 0 {
		for i := 1; i < len(out.Values); i++ {
			out.Values[i] = math.NaN()
		}
		return out
	}

	sort.Float64s(xs)

	mean, std := stat.MeanStdDev(xs, nil)
	if len(xs) < 2 {
		std = math.NaN()
	}
	out.Values[1] = mean
	out.Values[2] = std
	out.Values[3] = floats.Min(xs)
	out.Values[4] = Quantile(0.25, xs)
	out.Values[5] = Quantile(0.50, xs)
	out.Values[6] = Quantile(0.75, xs)
	out.Values[7] = floats.Max(xs)
	return out
}

// Quantile returns the p-quantile of sorted xs using linear interpolation
// between closest ranks: h = (n-1)p.
func Quantile(p float64, xs []float64) float64 {
	n := len(xs)
	if n == 0 {
		return math.NaN()
	}
	if p <= 0 {
		return xs[0]
	}
	if p >= 1 {
		return xs[n-1]
	}
	h := float64(n-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= n {
		return xs[n-1]
	}
	return xs[i] + (h-lo)*(xs[i+1]-xs[i])
}
