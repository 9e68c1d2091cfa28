package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/pprof"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/cdash/internal/datasource"
	"github.com/vanderheijden86/cdash/pkg/config"
	"github.com/vanderheijden86/cdash/pkg/dashboard"
	"github.com/vanderheijden86/cdash/pkg/debug"
	"github.com/vanderheijden86/cdash/pkg/export"
	"github.com/vanderheijden86/cdash/pkg/hooks"
	"github.com/vanderheijden86/cdash/pkg/loader"
	"github.com/vanderheijden86/cdash/pkg/metrics"
	"github.com/vanderheijden86/cdash/pkg/model"
	"github.com/vanderheijden86/cdash/pkg/stats"
	"github.com/vanderheijden86/cdash/pkg/ui"
	"github.com/vanderheijden86/cdash/pkg/version"
	"github.com/vanderheijden86/cdash/pkg/watcher"
)

// flags holds the parsed command line.
type flags struct {
	cpuProfile string
	help       bool
	version    bool
	configPath string
	data       string
	selection  string
	lang       string
	export     bool
	exportDir  string
	format     string
	jsonOut    bool
	plain      bool
	noWatch    bool
	noHooks    bool
}

func parseFlags(fs *flag.FlagSet, args []string) (flags, error) {
	var f flags
	fs.StringVar(&f.cpuProfile, "cpu-profile", "", "Write CPU profile to file")
	fs.BoolVar(&f.help, "help", false, "Show help")
	fs.BoolVar(&f.version, "version", false, "Show version")
	fs.StringVar(&f.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/cdash/config.yaml)")
	fs.StringVar(&f.data, "data", "", "Dataset file or directory (CSV or SQLite; default $CDASH_DATA or cwd)")
	fs.StringVar(&f.selection, "select", "", "Chart to show: 1-4, key (e.g. cement-water) or label")
	fs.StringVar(&f.lang, "lang", "", "Text language: en or es")
	fs.BoolVar(&f.export, "export", false, "Write chart, heat map and summary snapshots and exit")
	fs.StringVar(&f.exportDir, "export-dir", "", "Snapshot output directory")
	fs.StringVar(&f.format, "format", "", "Snapshot image format: svg or png")
	fs.BoolVar(&f.jsonOut, "json", false, "Print selection and summary statistics as JSON and exit")
	fs.BoolVar(&f.plain, "plain", false, "Print the page as plain text and exit")
	fs.BoolVar(&f.noWatch, "no-watch", false, "Disable live reload of the dataset")
	fs.BoolVar(&f.noHooks, "no-hooks", false, "Skip export hooks from hooks.yaml")
	err := fs.Parse(args)
	return f, err
}

// settings is the effective configuration after merging flags, environment
// and the config file.
type settings struct {
	DataPath     string
	Lang         dashboard.Language
	Selection    string
	TableHeight  int
	ExportDir    string
	ExportFormat string
	ExportHooks  *hooks.Config
	Watch        bool
	PollInterval time.Duration
}

// resolveSettings applies precedence flag > env > file > defaults.
// lastSelection comes from saved state and is used when neither the flag
// nor the config file names a selection.
func resolveSettings(f flags, cfg config.Config, lastSelection string) (settings, error) {
	s := settings{
		DataPath:     cfg.DataPath,
		TableHeight:  cfg.UI.TableHeight,
		ExportDir:    cfg.Export.Dir,
		ExportFormat: cfg.Export.Format,
		Watch:        cfg.WatchEnabled() && !f.noWatch,
		PollInterval: cfg.Watch.PollInterval,
	}
	if env := os.Getenv(loader.DataPathEnvVar); env != "" {
		s.DataPath = env
	}
	if f.data != "" {
		s.DataPath = f.data
	}

	langName := cfg.UI.Language
	if f.lang != "" {
		langName = f.lang
	}
	lang, err := dashboard.ParseLanguage(langName)
	if err != nil {
		return s, err
	}
	s.Lang = lang

	switch {
	case f.selection != "":
		s.Selection = f.selection
	case cfg.UI.DefaultSelection != "":
		s.Selection = cfg.UI.DefaultSelection
	default:
		s.Selection = lastSelection
	}

	if f.exportDir != "" {
		s.ExportDir = config.ExpandHome(f.exportDir)
	}
	if f.format != "" {
		s.ExportFormat = f.format
	}
	return s, nil
}

// loadHooks reads hooks.yaml from the config directory. Problems are
// reported and leave export without hooks.
func loadHooks(skip bool) *hooks.Config {
	if skip {
		return nil
	}
	l, err := hooks.LoadDefault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (export hooks disabled)\n", err)
		return nil
	}
	for _, w := range l.Warnings() {
		fmt.Fprintf(os.Stderr, "Warning: %s: %s\n", l.Path(), w)
	}
	if !l.HasHooks() {
		return nil
	}
	debug.Log("loaded export hooks from %s", l.Path())
	return l.Config()
}

// resolveSelection turns the configured selection into one of the fixed
// charts. An explicit flag must be valid; a remembered one falls back to
// the default.
func resolveSelection(s settings, explicit bool) (dashboard.Selection, error) {
	if s.Selection == "" {
		return dashboard.Default(s.Lang), nil
	}
	sel, err := dashboard.Resolve(s.Selection, s.Lang)
	if err != nil {
		if explicit {
			return sel, err
		}
		debug.Log("ignoring saved selection %q: %v", s.Selection, err)
		return dashboard.Default(s.Lang), nil
	}
	return sel, nil
}

func main() {
	f, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	// CPU profiling support
	stopProfile := func() {}
	if f.cpuProfile != "" {
		pf, err := os.Create(f.cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create CPU profile: %v\n", err)
			os.Exit(1)
		}
		if err := pprof.StartCPUProfile(pf); err != nil {
			fmt.Fprintf(os.Stderr, "Could not start CPU profile: %v\n", err)
			os.Exit(1)
		}
		stopProfile = func() {
			pprof.StopCPUProfile()
			pf.Close()
		}
	}

	if f.help {
		fmt.Println("Usage: cdash [options]")
		fmt.Println("\nA terminal dashboard for concrete compressive strength data.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if f.version {
		fmt.Printf("cdash %s\n", version.Version)
		os.Exit(0)
	}

	code := run(f)
	stopProfile()
	os.Exit(code)
}

func run(f flags) int {
	var (
		cfg    config.Config
		cfgErr error
	)
	if f.configPath != "" {
		cfg, cfgErr = config.LoadFrom(config.ExpandHome(f.configPath))
	} else {
		cfg, cfgErr = config.Load()
	}
	if cfgErr != nil {
		// Non-fatal: continue with defaults
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", cfgErr)
		cfg = config.DefaultConfig()
	}

	state, _ := config.LoadState()
	s, err := resolveSettings(f, cfg, state.LastSelection)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	s.ExportHooks = loadHooks(f.noHooks)
	sel, err := resolveSelection(s, f.selection != "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Use 1-4 or one of the chart names.")
		return 2
	}

	tbl, src, err := datasource.LoadTable(s.DataPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading dataset: %v\n", err)
		fmt.Fprintf(os.Stderr, "Pass -data <file> or set %s to a CSV or SQLite file.\n", loader.DataPathEnvVar)
		return 1
	}
	debug.Log("loaded %d rows from %s", tbl.Len(), src)
	if missing := tbl.MissingRequired(); len(missing) > 0 {
		fmt.Fprintf(os.Stderr, "Warning: dataset is missing columns %v; some charts will fail\n", missing)
	}

	interactive := ui.IsTerminal() && ui.IsOutputTerminal()

	switch {
	case f.jsonOut:
		p := dashboard.Render(sel, tbl, s.Lang)
		if err := writeJSON(os.Stdout, p, src); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0

	case f.export:
		if interactive && f.exportDir == "" {
			choice, err := ui.PromptExport(ui.ExportChoice{Dir: s.ExportDir, Format: s.ExportFormat})
			if err != nil {
				fmt.Fprintf(os.Stderr, "Export cancelled: %v\n", err)
				return 1
			}
			s.ExportDir, s.ExportFormat = choice.Dir, choice.Format
		}
		p := dashboard.Render(sel, tbl, s.Lang)
		paths, err := runExport(context.Background(), s, p, src)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
			return 1
		}
		for _, path := range paths {
			fmt.Println(path)
		}
		return 0

	case f.plain || !interactive:
		if f.plain && interactive && f.selection == "" {
			picked, err := ui.PromptSelection(s.Lang, sel.Key)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return 1
			}
			sel = picked
		}
		p := dashboard.Render(sel, tbl, s.Lang)
		r := lipgloss.NewRenderer(os.Stdout)
		if err := dashboard.WritePlain(os.Stdout, r, p, dashboard.PlainOptions{Width: terminalWidth()}); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		debug.Log("timings: %+v", metrics.AllTimingStats())
		return 0
	}

	var w *watcher.Watcher
	if s.Watch {
		w, err = watcher.New(src.Path,
			watcher.WithPollInterval(s.PollInterval),
			watcher.WithOnError(func(err error) {
				debug.Log("watcher: %v", err)
			}),
		)
		if err == nil {
			err = w.Start()
		}
		if err != nil {
			// Non-fatal: run without live reload
			debug.Log("watcher disabled: %v", err)
			w = nil
		} else {
			defer w.Stop()
		}
	}

	m := ui.NewModel(tbl, src, ui.Options{
		Language:     s.Lang,
		Selection:    sel.Key,
		TableHeight:  s.TableHeight,
		ExportDir:    s.ExportDir,
		ExportFormat: s.ExportFormat,
		ExportHooks:  s.ExportHooks,
		Watcher:      w,
	})

	return runInteractive(m)
}

// startProgram is swapped out in tests that cannot own a terminal.
var startProgram = runTUIProgram

// runInteractive runs the dashboard and remembers the final selection.
func runInteractive(m ui.Model) int {
	final, err := startProgram(m)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running dashboard: %v\n", err)
		return 1
	}
	if fm, ok := final.(ui.Model); ok {
		if err := config.SaveState(config.State{LastSelection: fm.Selection().Key}); err != nil {
			debug.Log("saving state: %v", err)
		}
	}
	return 0
}

func runTUIProgram(m ui.Model) (tea.Model, error) {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set CDASH_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("CDASH_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()
			}()
		}
	}

	final, err := p.Run()
	if err != nil && (errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted)) {
		return final, nil
	}
	return final, err
}

// jsonReport is the -json output.
type jsonReport struct {
	Version      string                `json:"version"`
	Source       datasource.DataSource `json:"source"`
	Rows         int                   `json:"rows"`
	MeanWCRatio  *float64              `json:"mean_water_cement_ratio,omitempty"`
	Selection    jsonSelection         `json:"selection"`
	ChartError   string                `json:"chart_error,omitempty"`
	Narrative    string                `json:"narrative,omitempty"`
	Summary      []stats.Record        `json:"summary,omitempty"`
	SummaryError string                `json:"summary_error,omitempty"`
	Timings      []metrics.TimingStats `json:"timings,omitempty"`
}

type jsonSelection struct {
	Key       string `json:"key"`
	Label     string `json:"label"`
	XColumn   string `json:"x_column"`
	YColumn   string `json:"y_column"`
	Color     string `json:"color"`
	Alternate bool   `json:"alternate"`
}

func buildReport(p dashboard.Page, src datasource.DataSource) jsonReport {
	sel := p.Selection
	r := jsonReport{
		Version: version.Version,
		Source:  src,
		Rows:    p.Table.Len(),
		Selection: jsonSelection{
			Key:       sel.Key,
			Label:     sel.Label,
			XColumn:   sel.XColumn,
			YColumn:   sel.YColumn,
			Color:     fmt.Sprintf("#%02x%02x%02x", sel.Color().R, sel.Color().G, sel.Color().B),
			Alternate: sel.Alternate,
		},
		ChartError:   p.ChartError(),
		Narrative:    p.Narrative,
		SummaryError: p.SummaryError(),
	}
	if p.Summary != nil {
		r.Summary = p.Summary.Records()
	}
	if p.Table != nil {
		if rows, err := p.Table.Measurements(); err == nil {
			if wc, ok := model.MeanWaterCementRatio(rows); ok {
				r.MeanWCRatio = &wc
			}
		}
	}
	if metrics.Enabled() {
		for _, st := range metrics.AllTimingStats() {
			if st.Count > 0 {
				r.Timings = append(r.Timings, st)
			}
		}
	}
	return r
}

func writeJSON(w io.Writer, p dashboard.Page, src datasource.DataSource) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(buildReport(p, src))
}

func runExport(ctx context.Context, s settings, p dashboard.Page, src datasource.DataSource) ([]string, error) {
	return export.ExportAll(ctx, export.Options{Dir: s.ExportDir, Format: s.ExportFormat, Hooks: s.ExportHooks}, export.Bundle{
		Name:    p.Selection.Key,
		Chart:   p.Chart,
		Heatmap: p.Heatmap,
		Summary: p.Summary,
		Source:  src.Path,
		Rows:    p.Table.Len(),
	})
}

func terminalWidth() int {
	if v, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && v > 20 {
		return v
	}
	return 100
}
