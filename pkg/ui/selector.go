package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/cdash/pkg/dashboard"
)

// SelectorModel is the row of chart selections shown under the prompt.
type SelectorModel struct {
	selections    []dashboard.Selection
	selectedIndex int
	width         int
	theme         Theme
}

// NewSelectorModel creates a selector positioned on key.
func NewSelectorModel(selections []dashboard.Selection, key string, theme Theme) SelectorModel {
	m := SelectorModel{
		selections: selections,
		theme:      theme,
	}
	m.SelectKey(key)
	return m
}

// SetWidth updates the available width.
func (m *SelectorModel) SetWidth(width int) {
	m.width = width
}

// Next moves to the next selection, wrapping around.
func (m *SelectorModel) Next() {
	if len(m.selections) == 0 {
		return
	}
	m.selectedIndex = (m.selectedIndex + 1) % len(m.selections)
}

// Prev moves to the previous selection, wrapping around.
func (m *SelectorModel) Prev() {
	if len(m.selections) == 0 {
		return
	}
	m.selectedIndex = (m.selectedIndex - 1 + len(m.selections)) % len(m.selections)
}

// SetIndex selects by 0-based position; out-of-range values are ignored.
func (m *SelectorModel) SetIndex(i int) bool {
	if i < 0 || i >= len(m.selections) {
		return false
	}
	m.selectedIndex = i
	return true
}

// SelectKey selects by key; unknown keys are ignored.
func (m *SelectorModel) SelectKey(key string) bool {
	for i, s := range m.selections {
		if s.Key == key {
			m.selectedIndex = i
			return true
		}
	}
	return false
}

// Selected returns the current selection.
func (m SelectorModel) Selected() dashboard.Selection {
	if len(m.selections) == 0 {
		return dashboard.Selection{}
	}
	return m.selections[m.selectedIndex]
}

// SelectedIndex returns the current selection index
func (m SelectorModel) SelectedIndex() int {
	return m.selectedIndex
}

// SetSelections swaps the option list (after a language change) keeping
// the current key.
func (m *SelectorModel) SetSelections(selections []dashboard.Selection) {
	key := m.Selected().Key
	m.selections = selections
	m.selectedIndex = 0
	m.SelectKey(key)
}

// View renders the options as numbered tabs. When they do not fit on one
// line only the selected one is shown with its position.
func (m SelectorModel) View() string {
	t := m.theme
	tabs := make([]string, len(m.selections))
	for i, s := range m.selections {
		label := fmt.Sprintf("%d %s", i+1, s.Label)
		if i == m.selectedIndex {
			tabs[i] = t.Selected.Render(label)
		} else {
			tabs[i] = t.Tab.Render(label)
		}
	}
	row := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)
	if m.width <= 0 || lipgloss.Width(row) <= m.width {
		return row
	}

	s := m.Selected()
	label := fmt.Sprintf("%d/%d %s", m.selectedIndex+1, len(m.selections), s.Label)
	return t.Selected.Render(truncate(label, max(1, m.width-4))) + " " +
		t.MutedText.Render(strings.Repeat("·", len(m.selections)-1))
}
