package chart

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var barBlocks = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Minimum drawable sizes; smaller requests are clamped.
const (
	minPlotWidth  = 10
	minPlotHeight = 4
)

// RenderBarChart draws c as a block-character bar chart sized width×height
// cells (title, legend and axes included).
func RenderBarChart(r *lipgloss.Renderer, c *BarChart, width, height int) string {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	titleStyle := r.NewStyle().Bold(true)
	axisStyle := r.NewStyle().Faint(true)
	barStyle := r.NewStyle().Foreground(lipgloss.Color(Hex(c.Color)))

	yMax := c.YMax
	if yMax <= 0 {
		yMax = 1
	}
	yTicks := Ticks(0, yMax, 5)
	labelW := 0
	for _, v := range yTicks {
		labelW = max(labelW, len(formatTick(v)))
	}

	// title, y label, x axis, x tick labels, x label, legend
	plotH := max(minPlotHeight, height-6)
	plotW := max(minPlotWidth, width-labelW-2)

	bins := c.Bins(plotW)
	tickRow := make(map[int]string, len(yTicks))
	for _, v := range yTicks {
		row := plotH - int(math.Round(v/yMax*float64(plotH)))
		if row >= 0 && row < plotH {
			tickRow[row] = formatTick(v)
		}
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(centre(c.Title, labelW+2+plotW)))
	b.WriteString("\n")
	b.WriteString(axisStyle.Render(strings.Repeat(" ", labelW) + " " + c.YLabel))
	b.WriteString("\n")

	for row := 0; row < plotH; row++ {
		label := tickRow[row]
		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s ┤", labelW, label)))

		var line strings.Builder
		var grid strings.Builder
		flush := func() {
			if grid.Len() > 0 {
				line.WriteString(axisStyle.Render(grid.String()))
				grid.Reset()
			}
		}
		var bars strings.Builder
		flushBars := func() {
			if bars.Len() > 0 {
				line.WriteString(barStyle.Render(bars.String()))
				bars.Reset()
			}
		}
		for _, v := range bins {
			level := 0
			if v > 0 {
				cells := v / yMax * float64(plotH)
				level = int(math.Round((cells - float64(plotH-1-row)) * 8))
				level = max(0, min(8, level))
			}
			if level == 0 {
				flushBars()
				if label != "" {
					grid.WriteRune('·')
				} else {
					grid.WriteRune(' ')
				}
				continue
			}
			flush()
			bars.WriteRune(barBlocks[level])
		}
		flushBars()
		flush()
		b.WriteString(line.String())
		b.WriteString("\n")
	}

	b.WriteString(axisStyle.Render(strings.Repeat(" ", labelW) + " └" + strings.Repeat("─", plotW)))
	b.WriteString("\n")

	lo, hi := c.XExtent()
	b.WriteString(axisStyle.Render(strings.Repeat(" ", labelW+2) + spread(formatTick(lo+c.Width/2), formatTick((lo+hi)/2), formatTick(hi-c.Width/2), plotW)))
	b.WriteString("\n")
	b.WriteString(axisStyle.Render(strings.Repeat(" ", labelW+2) + centre(c.XLabel, plotW)))
	b.WriteString("\n")
	b.WriteString(strings.Repeat(" ", labelW+2) + barStyle.Render("■") + " " + c.Legend)
	return b.String()
}

// RenderHeatmap draws h as a grid of colored, annotated cells followed by
// a color bar.
func RenderHeatmap(r *lipgloss.Renderer, h *Heatmap, width int) string {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	titleStyle := r.NewStyle().Bold(true)
	headStyle := r.NewStyle().Faint(true)

	nameW := 0
	for _, n := range h.Rows {
		nameW = max(nameW, runewidth.StringWidth(n))
	}
	nameW = min(nameW, 16)

	cellW := 0
	for _, c := range h.Cols {
		cellW = max(cellW, len(c))
	}
	for i := range h.Values {
		for j := range h.Values[i] {
			cellW = max(cellW, len(h.Annotation(i, j)))
		}
	}
	cellW += 2

	total := nameW + 1 + cellW*len(h.Cols)

	var b strings.Builder
	b.WriteString(titleStyle.Render(centre(h.Title, max(total, width))))
	b.WriteString("\n")

	b.WriteString(strings.Repeat(" ", nameW+1))
	for _, c := range h.Cols {
		b.WriteString(headStyle.Render(centre(c, cellW)))
	}
	b.WriteString("\n")

	for i, name := range h.Rows {
		name = runewidth.Truncate(name, nameW, "…")
		b.WriteString(runewidth.FillLeft(name, nameW))
		b.WriteString(" ")
		for j := range h.Cols {
			cell := r.NewStyle().
				Background(lipgloss.Color(Hex(h.CellColor(i, j)))).
				Foreground(lipgloss.Color(Hex(h.TextColor(i, j))))
			b.WriteString(cell.Render(centre(h.Annotation(i, j), cellW)))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(renderColorbar(r, h, min(40, max(10, total-nameW-1))))
	return b.String()
}

func renderColorbar(r *lipgloss.Renderer, h *Heatmap, width int) string {
	var b strings.Builder
	b.WriteString(FormatValue(h.Lo))
	b.WriteString(" ")
	for i := 0; i < width; i++ {
		t := float64(i) / float64(max(1, width-1))
		b.WriteString(r.NewStyle().Foreground(lipgloss.Color(Hex(h.Cmap.At(t)))).Render("█"))
	}
	b.WriteString(" ")
	b.WriteString(FormatValue(h.Hi))
	return b.String()
}

func formatTick(v float64) string {
	if math.Abs(v) >= 1e5 || (v != 0 && math.Abs(v) < 1e-2) {
		return strconv.FormatFloat(v, 'g', 3, 64)
	}
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

func centre(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return runewidth.Truncate(s, width, "…")
	}
	left := (width - w) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-w-left)
}

// spread places three labels at the left, middle and right of width cells.
func spread(left, mid, right string, width int) string {
	line := []rune(strings.Repeat(" ", width))
	put := func(s string, at int) {
		rs := []rune(s)
		at = max(0, min(width-len(rs), at))
		for i, r := range rs {
			if at+i < len(line) {
				line[at+i] = r
			}
		}
	}
	put(left, 0)
	if width > len(left)+len(mid)+len(right)+2 {
		put(mid, width/2-len(mid)/2)
	}
	put(right, width-len(right))
	return string(line)
}
