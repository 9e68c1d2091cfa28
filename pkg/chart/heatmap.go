package chart

import (
	"fmt"
	"image/color"
	"math"

	"github.com/vanderheijden86/cdash/pkg/stats"
)

// Heatmap is the annotated summary matrix: one row per data column, one
// column per statistic. Colors are normalised over the whole matrix.
type Heatmap struct {
	Title  string
	Rows   []string
	Cols   []string
	Values [][]float64
	Lo, Hi float64
	Cmap   Colormap
}

// NewHeatmap lays out s as rows = data columns and cols = statistics.
func NewHeatmap(s *stats.Summary, title string) *Heatmap {
	h := &Heatmap{
		Title:  title,
		Cols:   append([]string(nil), stats.Statistics...),
		Values: s.Matrix(),
		Cmap:   YlGnBu,
	}
	for _, c := range s.Columns {
		h.Rows = append(h.Rows, c.Name)
	}
	h.Lo, h.Hi = s.Range()
	return h
}

// CellColor returns the fill color for cell (r, c). Missing values get a
// neutral gray.
func (h *Heatmap) CellColor(r, c int) color.RGBA {
	v := h.Values[r][c]
	if math.IsNaN(v) {
		return color.RGBA{0xdd, 0xdd, 0xdd, 0xff}
	}
	return h.Cmap.At(Normalize(v, h.Lo, h.Hi))
}

// TextColor returns the annotation color that contrasts with cell (r, c).
func (h *Heatmap) TextColor(r, c int) color.RGBA {
	if IsDark(h.CellColor(r, c)) {
		return color.RGBA{0xff, 0xff, 0xff, 0xff}
	}
	return color.RGBA{0x11, 0x11, 0x11, 0xff}
}

// Annotation formats cell (r, c) with two decimals.
func (h *Heatmap) Annotation(r, c int) string {
	return FormatValue(h.Values[r][c])
}

// FormatValue formats a statistic with two decimals; NaN renders as "nan".
func FormatValue(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return fmt.Sprintf("%.2f", v)
}

// ColorbarTicks returns tick values for the color legend.
func (h *Heatmap) ColorbarTicks(n int) []float64 {
	return Ticks(h.Lo, h.Hi, n)
}
