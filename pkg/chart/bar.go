// Package chart builds the dashboard's two figures, a bar chart of one
// column pair and a heat map of the summary statistics, and renders them
// for the terminal. Image export lives in pkg/export.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/vanderheijden86/cdash/pkg/metrics"
	"github.com/vanderheijden86/cdash/pkg/model"
)

// ErrNotNumeric is returned when a chart column holds non-numeric data.
var ErrNotNumeric = errors.New("column is not numeric")

// Bar colors. The alternate color marks the cement-vs-water chart.
var (
	ColorDefault   = color.RGBA{0x00, 0x00, 0xff, 0xff} // blue
	ColorAlternate = color.RGBA{0x80, 0x00, 0x80, 0xff} // purple
)

// DefaultBarWidth is the bar width in x data units.
const DefaultBarWidth = 0.8

// BarSpec describes which columns to plot and how to label them.
type BarSpec struct {
	Title   string
	XColumn string
	YColumn string
	XLabel  string
	YLabel  string
	Color   color.RGBA
}

// Bar is one bar centred at X with height Y.
type Bar struct {
	X float64
	Y float64
}

// BarChart is a fully resolved bar chart ready to draw.
type BarChart struct {
	Title  string
	XLabel string
	YLabel string
	Legend string
	Color  color.RGBA
	Width  float64
	Bars   []Bar

	XMin, XMax float64
	YMin, YMax float64
}

// NewBarChart resolves spec against tbl. Rows with a missing value in
// either column are skipped. Bars keep row order, so later rows paint over
// earlier ones at the same x.
func NewBarChart(tbl *model.Table, spec BarSpec) (*BarChart, error) {
	defer metrics.Timer(metrics.ChartRender)()

	xc, err := tbl.Column(spec.XColumn)
	if err != nil {
		return nil, err
	}
	yc, err := tbl.Column(spec.YColumn)
	if err != nil {
		return nil, err
	}
	if !xc.Numeric {
		return nil, fmt.Errorf("%q: %w", xc.Name, ErrNotNumeric)
	}
	if !yc.Numeric {
		return nil, fmt.Errorf("%q: %w", yc.Name, ErrNotNumeric)
	}

	c := &BarChart{
		Title:  spec.Title,
		XLabel: spec.XLabel,
		YLabel: spec.YLabel,
		Legend: fmt.Sprintf("%s vs %s", spec.XLabel, spec.YLabel),
		Color:  spec.Color,
		Width:  DefaultBarWidth,
		XMin:   math.Inf(1),
		XMax:   math.Inf(-1),
		YMin:   0,
		YMax:   0,
	}
	if c.Color == (color.RGBA{}) {
		c.Color = ColorDefault
	}

	n := min(len(xc.Values), len(yc.Values))
	c.Bars = make([]Bar, 0, n)
	for i := 0; i < n; i++ {
		x, y := xc.Values[i], yc.Values[i]
		if math.IsNaN(x) || math.IsNaN(y) {
			continue
		}
		c.Bars = append(c.Bars, Bar{X: x, Y: y})
		c.XMin = math.Min(c.XMin, x)
		c.XMax = math.Max(c.XMax, x)
		c.YMin = math.Min(c.YMin, y)
		c.YMax = math.Max(c.YMax, y)
	}
	if len(c.Bars) == 0 {
		c.XMin, c.XMax = 0, 1
	}
	return c, nil
}

// Empty reports whether the chart has nothing to draw.
func (c *BarChart) Empty() bool {
	return c == nil || len(c.Bars) == 0
}

// XExtent returns the x range covered by the bars including their width.
func (c *BarChart) XExtent() (lo, hi float64) {
	lo = c.XMin - c.Width/2
	hi = c.XMax + c.Width/2
	if hi-lo <= 0 {
		hi = lo + math.Max(1, math.Abs(lo)*1e-9)
	}
	return lo, hi
}

// Bins buckets the x extent into n equal slots and returns the tallest
// bar per slot (0 where no bar lands). Negative heights win only when
// they are further from zero than any positive bar in the slot.
func (c *BarChart) Bins(n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	if c.Empty() {
		return out
	}
	lo, hi := c.XExtent()
	span := hi - lo
	for _, b := range c.Bars {
		first := int(math.Floor((b.X - c.Width/2 - lo) / span * float64(n)))
		last := int(math.Floor((b.X + c.Width/2 - lo) / span * float64(n)))
		first = max(0, min(n-1, first))
		last = max(first, min(n-1, last))
		for i := first; i <= last; i++ {
			if math.Abs(b.Y) > math.Abs(out[i]) {
				out[i] = b.Y
			}
		}
	}
	return out
}

// DistinctX returns the sorted distinct x positions.
func (c *BarChart) DistinctX() []float64 {
	seen := make(map[float64]bool, len(c.Bars))
	var xs []float64
	for _, b := range c.Bars {
		if !seen[b.X] {
			seen[b.X] = true
			xs = append(xs, b.X)
		}
	}
	sort.Float64s(xs)
	return xs
}

// Ticks returns about n rounded tick values covering [lo, hi].
func Ticks(lo, hi float64, n int) []float64 {
	if n < 2 || hi <= lo || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return []float64{lo}
	}
	step := niceStep((hi - lo) / float64(n-1))
	start := math.Ceil(lo/step) * step
	if start+step == start {
		// step is below the float spacing at this magnitude
		return []float64{lo, hi}
	}
	var ticks []float64
	for i := 0; i <= 4*n; i++ {
		v := math.Round((start+float64(i)*step)/step) * step
		if v > hi+step*1e-9 {
			break
		}
		if len(ticks) > 0 && v <= ticks[len(ticks)-1] {
			continue
		}
		ticks = append(ticks, v)
	}
	if len(ticks) == 0 {
		return []float64{lo, hi}
	}
	return ticks
}

func niceStep(raw float64) float64 {
	exp := math.Pow(10, math.Floor(math.Log10(raw)))
	f := raw / exp
	switch {
	case f <= 1:
		return exp
	case f <= 2:
		return 2 * exp
	case f <= 5:
		return 5 * exp
	default:
		return 10 * exp
	}
}
