// Package ui is the interactive terminal dashboard: a chart selector, the
// selected bar chart with its narrative, the dataset table and the summary
// statistics heat map, kept current while the dataset file changes.
package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/cdash/internal/datasource"
	"github.com/vanderheijden86/cdash/pkg/dashboard"
	"github.com/vanderheijden86/cdash/pkg/debug"
	"github.com/vanderheijden86/cdash/pkg/export"
	"github.com/vanderheijden86/cdash/pkg/hooks"
	"github.com/vanderheijden86/cdash/pkg/model"
	"github.com/vanderheijden86/cdash/pkg/watcher"
)

const (
	defaultWidth       = 100
	defaultHeight      = 40
	defaultTableHeight = 10
	maxCellWidth       = 14
)

// Options configures NewModel.
type Options struct {
	Language     dashboard.Language
	Selection    string // selection key; empty means the default
	TableHeight  int
	ExportDir    string
	ExportFormat string
	ExportHooks  *hooks.Config // run around each export; nil for none
	Watcher      *watcher.Watcher
	Renderer     *lipgloss.Renderer
}

// Model is the dashboard state.
type Model struct {
	theme Theme
	keys  keyMap
	help  help.Model

	lang   dashboard.Language
	table  *model.Table
	source datasource.DataSource
	page   dashboard.Page

	selector  SelectorModel
	viewport  viewport.Model
	dataTable table.Model
	md        *glamour.TermRenderer
	mdWidth   int

	picker    *huh.Form
	pickerKey string

	watcher      *watcher.Watcher
	exportDir    string
	exportFormat string
	exportHooks  *hooks.Config
	tableHeight  int

	width, height int
	ready         bool
	showHelp      bool
	tableFocused  bool
	exporting     bool

	statusMsg     string
	statusIsError bool
}

// NewModel builds the dashboard over an already loaded table.
func NewModel(tbl *model.Table, src datasource.DataSource, opts Options) Model {
	r := opts.Renderer
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	theme := DefaultTheme(r)

	lang := opts.Language
	if lang == "" {
		lang = dashboard.English
	}
	sel := dashboard.Default(lang)
	if opts.Selection != "" {
		if s, err := dashboard.Resolve(opts.Selection, lang); err == nil {
			sel = s
		}
	}
	if opts.TableHeight <= 0 {
		opts.TableHeight = defaultTableHeight
	}

	m := Model{
		theme:        theme,
		keys:         defaultKeyMap(),
		help:         help.New(),
		lang:         lang,
		table:        tbl,
		source:       src,
		selector:     NewSelectorModel(dashboard.Selections(lang), sel.Key, theme),
		viewport:     viewport.New(defaultWidth, defaultHeight-8),
		watcher:      opts.Watcher,
		exportDir:    opts.ExportDir,
		exportFormat: opts.ExportFormat,
		exportHooks:  opts.ExportHooks,
		tableHeight:  opts.TableHeight,
		width:        defaultWidth,
		height:       defaultHeight,
	}
	if m.exportDir == "" {
		m.exportDir = "."
	}
	m.help.Styles.ShortKey = theme.PrimaryBold
	m.help.Styles.FullKey = theme.PrimaryBold
	m.dataTable = m.buildDataTable()
	m.render()
	m.layout()
	return m
}

// Selection returns the selection currently shown.
func (m Model) Selection() dashboard.Selection {
	return m.page.Selection
}

// Page returns the current render result.
func (m Model) Page() dashboard.Page {
	return m.page
}

// Status returns the status-bar message and whether it is an error.
func (m Model) Status() (string, bool) {
	return m.statusMsg, m.statusIsError
}

func (m Model) Init() tea.Cmd {
	if m.watcher != nil {
		return WatchFileCmd(m.watcher)
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.picker != nil {
		return m.updatePicker(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.help.Width = msg.Width
		m.selector.SetWidth(msg.Width)
		m.layout()
		m.refreshBody()
		return m, nil

	case FileChangedMsg:
		debug.Log("ui: dataset changed, reloading %s", m.source.Path)
		cmds = append(cmds, ReloadCmd(m.reloadPath()))
		if m.watcher != nil {
			cmds = append(cmds, WatchFileCmd(m.watcher))
		}
		return m, tea.Batch(cmds...)

	case TableLoadedMsg:
		m = m.applyReload(msg)
		return m, nil

	case ExportDoneMsg:
		m.exporting = false
		debug.LogTiming("export", msg.Duration)
		if msg.Err != nil {
			m.setError("Export failed: %v", msg.Err)
		} else {
			m.setStatus("Exported %d files to %s in %s", len(msg.Paths), m.exportDir, formatDuration(msg.Duration))
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help), msg.String() == "esc":
			m.showHelp = false
		}
		return m, nil
	}

	// any key clears a previous status
	m.statusMsg = ""
	m.statusIsError = false

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Select):
		i := int(msg.String()[0] - '1')
		if m.selector.SetIndex(i) {
			m.render()
		}
		return m, nil

	case key.Matches(msg, m.keys.Next):
		m.selector.Next()
		m.render()
		return m, nil

	case key.Matches(msg, m.keys.Prev):
		m.selector.Prev()
		m.render()
		return m, nil

	case key.Matches(msg, m.keys.Picker):
		m.pickerKey = m.selector.Selected().Key
		m.picker = newPickerForm(m.lang, &m.pickerKey, m.width)
		return m, m.picker.Init()

	case key.Matches(msg, m.keys.Table):
		m.tableFocused = !m.tableFocused
		if m.tableFocused {
			m.dataTable.Focus()
			m.setStatus("Table focused (t to release)")
		} else {
			m.dataTable.Blur()
		}
		m.refreshBody()
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		if m.page.Summary == nil {
			m.setError("No summary statistics to copy")
			return m, nil
		}
		if err := clipboard.WriteAll(m.page.Summary.TSV()); err != nil {
			m.setError("Clipboard error: %v", err)
		} else {
			m.setStatus("Copied summary statistics to clipboard")
		}
		return m, nil

	case key.Matches(msg, m.keys.Export):
		if m.exporting {
			return m, nil
		}
		m.exporting = true
		m.setStatus("Exporting to %s…", m.exportDir)
		return m, ExportCmd(export.Options{
			Dir:    m.exportDir,
			Format: m.exportFormat,
			Hooks:  m.exportHooks,
		}, m.bundle())

	case key.Matches(msg, m.keys.Reload):
		m.setStatus("Reloading…")
		return m, ReloadCmd(m.reloadPath())

	case key.Matches(msg, m.keys.Language):
		m.lang = nextLanguage(m.lang)
		m.selector.SetSelections(dashboard.Selections(m.lang))
		m.render()
		m.layout()
		return m, nil
	}

	if m.tableFocused {
		var cmd tea.Cmd
		m.dataTable, cmd = m.dataTable.Update(msg)
		m.refreshBody()
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Top):
		m.viewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.viewport.GotoBottom()
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.picker = nil
			return m, nil
		}
	}
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = ws.Width, ws.Height
		m.layout()
	}

	form, cmd := m.picker.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.picker = f
	}

	switch m.picker.State {
	case huh.StateCompleted:
		m.picker = nil
		if m.selector.SelectKey(m.pickerKey) {
			m.render()
		}
		return m, nil
	case huh.StateAborted:
		m.picker = nil
		return m, nil
	}
	return m, cmd
}

func (m Model) applyReload(msg TableLoadedMsg) Model {
	debug.LogTiming("reload", msg.Duration)
	if msg.Err != nil {
		// keep the previous table on screen
		m.setError("Reload error: %v", msg.Err)
		return m
	}
	diff := datasource.CompareTables(m.table, msg.Table)
	m.table = msg.Table
	m.source = msg.Source
	m.dataTable = m.buildDataTable()
	m.render()
	m.setStatus("Reloaded %s: %s in %s", filepath.Base(msg.Source.Path), diff.Summary(), formatDuration(msg.Duration))
	return m
}

func (m *Model) setStatus(format string, args ...any) {
	m.statusMsg = fmt.Sprintf(format, args...)
	m.statusIsError = false
}

func (m *Model) setError(format string, args ...any) {
	m.statusMsg = fmt.Sprintf(format, args...)
	m.statusIsError = true
}

func (m Model) reloadPath() string {
	if m.source.Path != "" {
		return m.source.Path
	}
	if m.table != nil {
		return m.table.Source
	}
	return ""
}

func (m Model) bundle() export.Bundle {
	return export.Bundle{
		Name:    m.page.Selection.Key,
		Chart:   m.page.Chart,
		Heatmap: m.page.Heatmap,
		Summary: m.page.Summary,
		Source:  m.source.Path,
		Rows:    m.table.Len(),
	}
}

// render rebuilds the page for the current selection and language.
func (m *Model) render() {
	m.page = dashboard.Render(m.selector.Selected(), m.table, m.lang)
	m.refreshBody()
}

// layout sizes the viewport to what the header and footer leave.
func (m *Model) layout() {
	bodyH := m.height - lipgloss.Height(m.renderHeader()) - 1
	m.viewport.Width = m.width
	m.viewport.Height = max(3, bodyH)
	m.dataTable.SetWidth(m.width - 2)
}

func (m *Model) refreshBody() {
	m.viewport.SetContent(m.renderBody())
}

func (m Model) buildDataTable() table.Model {
	cols, rows := tableData(m.table)
	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithHeight(m.tableHeight),
		table.WithFocused(m.tableFocused),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(m.theme.Border).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(m.theme.Primary).
		Background(m.theme.Highlight).
		Bold(false)
	t.SetStyles(s)
	return t
}

// tableData converts tbl for bubbles/table: an index column followed by
// the raw cells.
func tableData(tbl *model.Table) ([]table.Column, []table.Row) {
	if tbl == nil {
		return []table.Column{{Title: "#", Width: 3}}, nil
	}
	n := tbl.Len()
	sample := min(n, 200)

	cols := make([]table.Column, 0, len(tbl.Columns)+1)
	cols = append(cols, table.Column{Title: "#", Width: len(fmt.Sprint(max(0, n-1)))})
	for _, c := range tbl.Columns {
		cols = append(cols, table.Column{
			Title: truncate(c.Name, maxCellWidth),
			Width: columnWidth(c.Name, c.Raw[:sample], maxCellWidth),
		})
	}

	rows := make([]table.Row, n)
	for i := 0; i < n; i++ {
		row := make(table.Row, 0, len(tbl.Columns)+1)
		row = append(row, fmt.Sprint(i))
		for _, c := range tbl.Columns {
			row = append(row, truncate(c.Raw[i], maxCellWidth))
		}
		rows[i] = row
	}
	return cols, rows
}

func nextLanguage(l dashboard.Language) dashboard.Language {
	for i, x := range dashboard.Languages {
		if x == l {
			return dashboard.Languages[(i+1)%len(dashboard.Languages)]
		}
	}
	return dashboard.English
}

func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// markdown renders a narrative paragraph, falling back to plain text.
func (m *Model) markdown(s string, width int) string {
	if s == "" {
		return ""
	}
	width = max(20, width)
	if m.md == nil || m.mdWidth != width {
		style := "auto"
		if !IsOutputTerminal() {
			style = "notty"
		}
		r, err := glamour.NewTermRenderer(
			glamourStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			debug.Log("ui: glamour unavailable: %v", err)
			return s
		}
		m.md, m.mdWidth = r, width
	}
	out, err := m.md.Render(s)
	if err != nil {
		return s
	}
	// glamour pads with blank lines
	return strings.Trim(out, "\n")
}

func glamourStyle(name string) glamour.TermRendererOption {
	if name == "auto" {
		return glamour.WithAutoStyle()
	}
	return glamour.WithStandardStyle(name)
}
