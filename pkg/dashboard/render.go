package dashboard

import (
	"errors"
	"fmt"

	"github.com/vanderheijden86/cdash/pkg/chart"
	"github.com/vanderheijden86/cdash/pkg/debug"
	"github.com/vanderheijden86/cdash/pkg/model"
	"github.com/vanderheijden86/cdash/pkg/stats"
)

// ErrNoData is reported by both sections when there is no table.
var ErrNoData = errors.New("no data loaded")

// Page is everything one render produces. A failed section carries its
// error and the other sections are still filled in.
type Page struct {
	Selection Selection
	Lang      Language
	Text      Text

	Chart     *chart.BarChart
	ChartErr  error
	Narrative string

	Table *model.Table

	Summary          *stats.Summary
	Heatmap          *chart.Heatmap
	SummaryErr       error
	SummaryNarrative string
}

// Render builds the page for sel over tbl. The selection narrative is only
// set when the chart was built; the summary narrative only when the
// statistics were.
func Render(sel Selection, tbl *model.Table, lang Language) Page {
	p := Page{
		Selection: sel,
		Lang:      lang,
		Text:      TextFor(lang),
		Table:     tbl,
	}

	p.Chart, p.ChartErr = buildChart(sel, tbl)
	if p.ChartErr != nil {
		debug.Log("chart %s failed: %v", sel.Key, p.ChartErr)
	} else {
		p.Narrative = Narrative(sel.Key, lang)
	}

	p.Summary, p.Heatmap, p.SummaryErr = buildSummary(tbl, p.Text.HeatmapTitle)
	if p.SummaryErr != nil {
		debug.Log("summary failed: %v", p.SummaryErr)
	} else {
		p.SummaryNarrative = p.Text.SummaryNarrative
	}
	return p
}

func buildChart(sel Selection, tbl *model.Table) (c *chart.BarChart, err error) {
	defer func() {
		if r := recover(); r != nil {
			c, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	if tbl == nil {
		return nil, ErrNoData
	}
	return chart.NewBarChart(tbl, sel.BarSpec())
}

func buildSummary(tbl *model.Table, title string) (s *stats.Summary, h *chart.Heatmap, err error) {
	defer func() {
		if r := recover(); r != nil {
			s, h, err = nil, nil, fmt.Errorf("panic: %v", r)
		}
	}()
	if tbl == nil {
		return nil, nil, ErrNoData
	}
	s, err = stats.Describe(tbl)
	if err != nil {
		return nil, nil, err
	}
	return s, chart.NewHeatmap(s, title), nil
}

// ChartError is the user-facing chart failure message, or "".
func (p Page) ChartError() string {
	if p.ChartErr == nil {
		return ""
	}
	return fmt.Sprintf(p.Text.ChartErrFormat, p.ChartErr)
}

// SummaryError is the user-facing statistics failure message, or "".
func (p Page) SummaryError() string {
	if p.SummaryErr == nil {
		return ""
	}
	return fmt.Sprintf(p.Text.SummaryErrFormat, p.SummaryErr)
}
