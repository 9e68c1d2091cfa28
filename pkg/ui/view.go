package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/cdash/pkg/chart"
)

func (m Model) View() string {
	if m.picker != nil {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.theme.Panel.BorderForeground(m.theme.Primary).Padding(1, 2).Render(m.picker.View()))
	}
	if m.showHelp {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.renderHelp())
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderFooter(),
	)
}

func (m Model) renderHeader() string {
	t := m.theme
	text := m.page.Text
	w := max(20, m.width)

	var b strings.Builder
	b.WriteString(t.Header.Render(truncate(text.Title, w-2)))
	b.WriteString("\n")
	b.WriteString(t.MutedText.Width(w).Render(text.Intro))
	b.WriteString("\n")
	b.WriteString(t.Base.Render(text.Prompt + ":"))
	b.WriteString("\n")
	b.WriteString(m.selector.View())
	return b.String()
}

// renderBody is the scrollable page: chart, narrative, data table, heat
// map and statistics narrative. A failed section shows its error and the
// rest still renders.
func (m *Model) renderBody() string {
	t := m.theme
	p := m.page
	w := max(40, m.width-2)

	var sections []string

	if p.ChartErr != nil {
		sections = append(sections, t.ErrorText.Render(p.ChartError()))
	} else {
		chartH := max(12, min(24, m.height/2))
		sections = append(sections,
			chart.RenderBarChart(t.Renderer, p.Chart, w, chartH),
			m.markdown(p.Narrative, w),
		)
	}

	sections = append(sections, t.Heading.Render(p.Text.DatasetHeading))
	if m.table == nil {
		sections = append(sections, t.MutedText.Render("(empty)"))
	} else {
		tbl := m.dataTable.View()
		if m.tableFocused {
			tbl = t.Panel.BorderForeground(t.Primary).Render(tbl)
		} else {
			tbl = t.Panel.Render(tbl)
		}
		sections = append(sections, tbl,
			t.MutedText.Render(shapeLine(m.table.Len(), len(m.table.Columns))))
	}

	sections = append(sections, t.Heading.Render(p.Text.SummaryHeading))
	if p.SummaryErr != nil {
		sections = append(sections, t.ErrorText.Render(p.SummaryError()))
	} else {
		sections = append(sections,
			chart.RenderHeatmap(t.Renderer, p.Heatmap, w),
			m.markdown(p.SummaryNarrative, w),
		)
	}

	return strings.Join(sections, "\n\n")
}

func shapeLine(rows, cols int) string {
	return fmt.Sprintf("[%d rows x %d columns]", rows, cols)
}

func (m Model) renderFooter() string {
	if m.statusMsg != "" {
		return RenderStatus(m.theme, truncate(m.statusMsg, max(10, m.width-6)), m.statusIsError, m.width)
	}
	left := m.help.ShortHelpView(m.keys.ShortHelp())
	right := ""
	if m.source.Path != "" {
		right = m.theme.MutedText.Render(truncate(m.source.Path, max(10, m.width/3)))
	}
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) renderHelp() string {
	t := m.theme
	w := min(72, max(30, m.width-4))

	var b strings.Builder
	b.WriteString(t.Title.Render("Keyboard shortcuts"))
	b.WriteString("\n")
	b.WriteString(RenderDivider(t, w-6))
	b.WriteString("\n\n")
	b.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	b.WriteString("\n\n")
	b.WriteString(t.MutedText.Italic(true).Render("? or esc to close"))

	return t.Panel.
		BorderForeground(t.Secondary).
		Padding(1, 2).
		Width(w).
		Render(b.String())
}
