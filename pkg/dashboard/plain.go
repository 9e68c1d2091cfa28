package dashboard

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/cdash/pkg/chart"
	"github.com/vanderheijden86/cdash/pkg/model"
)

// PlainOptions controls WritePlain.
type PlainOptions struct {
	Width       int // total columns; 0 means 100
	ChartHeight int // 0 means 20
	MaxRows     int // dataset rows to print; 0 prints all
}

// WritePlain prints p top to bottom the way the TUI lays it out, without
// interaction. Colors follow r's profile (no escapes when r is not a TTY).
func WritePlain(w io.Writer, r *lipgloss.Renderer, p Page, opts PlainOptions) error {
	if opts.Width <= 0 {
		opts.Width = 100
	}
	if opts.ChartHeight <= 0 {
		opts.ChartHeight = 20
	}

	var b strings.Builder
	b.WriteString("# " + p.Text.Title + "\n\n")
	b.WriteString(p.Text.Intro + "\n\n")
	b.WriteString(p.Text.Prompt + ": " + p.Selection.Label + "\n\n")

	if p.ChartErr != nil {
		b.WriteString(p.ChartError() + "\n\n")
	} else {
		b.WriteString(chart.RenderBarChart(r, p.Chart, opts.Width, opts.ChartHeight) + "\n\n")
		b.WriteString(p.Narrative + "\n\n")
	}

	b.WriteString("### " + p.Text.DatasetHeading + "\n\n")
	b.WriteString(FormatTable(p.Table, opts.MaxRows, opts.Width) + "\n")

	b.WriteString("### " + p.Text.SummaryHeading + "\n\n")
	if p.SummaryErr != nil {
		b.WriteString(p.SummaryError() + "\n")
	} else {
		b.WriteString(chart.RenderHeatmap(r, p.Heatmap, opts.Width) + "\n\n")
		b.WriteString(p.SummaryNarrative + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// FormatTable lays tbl out as right-aligned columns with a header and an
// index column. Output wider than width is cut at the last whole column.
func FormatTable(tbl *model.Table, maxRows, width int) string {
	if tbl == nil || len(tbl.Columns) == 0 {
		return "(empty)\n"
	}
	rows := tbl.Len()
	shown := rows
	if maxRows > 0 && maxRows < rows {
		shown = maxRows
	}

	idxW := len(fmt.Sprint(max(0, rows-1)))
	widths := make([]int, len(tbl.Columns))
	for j, c := range tbl.Columns {
		widths[j] = runewidth.StringWidth(c.Name)
		for i := 0; i < shown; i++ {
			widths[j] = max(widths[j], runewidth.StringWidth(c.Raw[i]))
		}
	}

	// drop trailing columns that do not fit
	cols := len(tbl.Columns)
	if width > 0 {
		used := idxW
		for j := range tbl.Columns {
			if used+2+widths[j] > width {
				cols = j
				break
			}
			used += 2 + widths[j]
		}
		cols = max(cols, 1)
	}

	var b strings.Builder
	line := func(idx string, cells func(j int) string) {
		b.WriteString(runewidth.FillLeft(idx, idxW))
		for j := 0; j < cols; j++ {
			b.WriteString("  ")
			b.WriteString(runewidth.FillLeft(cells(j), widths[j]))
		}
		if cols < len(tbl.Columns) {
			b.WriteString("  …")
		}
		b.WriteString("\n")
	}
	line("", func(j int) string { return tbl.Columns[j].Name })
	for i := 0; i < shown; i++ {
		row := tbl.Row(i)
		line(fmt.Sprint(i), func(j int) string { return row[j] })
	}
	if shown < rows {
		fmt.Fprintf(&b, "… %d more rows\n", rows-shown)
	}
	fmt.Fprintf(&b, "[%d rows x %d columns]\n", rows, len(tbl.Columns))
	return b.String()
}
