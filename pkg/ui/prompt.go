package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/vanderheijden86/cdash/pkg/dashboard"
	"github.com/vanderheijden86/cdash/pkg/export"
)

// IsTerminal checks if stdin is connected to a terminal
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// IsOutputTerminal checks if stdout is connected to a terminal
func IsOutputTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// newForm creates a form with appropriate settings based on TTY detection
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !IsTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

func selectionOptions(lang dashboard.Language) []huh.Option[string] {
	sels := dashboard.Selections(lang)
	opts := make([]huh.Option[string], len(sels))
	for i, s := range sels {
		opts[i] = huh.NewOption(s.Label, s.Key)
	}
	return opts
}

// selectionField is the select widget shared by the standalone prompt and
// the in-dashboard picker.
func selectionField(lang dashboard.Language, key *string) *huh.Select[string] {
	return huh.NewSelect[string]().
		Key("selection").
		Title(dashboard.TextFor(lang).Prompt).
		Options(selectionOptions(lang)...).
		Value(key)
}

// PromptSelection asks for a chart selection on the terminal and returns
// it. current is preselected.
func PromptSelection(lang dashboard.Language, current string) (dashboard.Selection, error) {
	key := current
	if key == "" {
		key = dashboard.Default(lang).Key
	}
	form := newForm(huh.NewGroup(selectionField(lang, &key)))
	if err := form.Run(); err != nil {
		return dashboard.Selection{}, err
	}
	return dashboard.Resolve(key, lang)
}

// ExportChoice is the answer to PromptExport.
type ExportChoice struct {
	Dir    string
	Format string
}

// PromptExport asks where and in which format to write snapshots.
func PromptExport(defaults ExportChoice) (ExportChoice, error) {
	choice := defaults
	if choice.Format == "" {
		choice.Format = export.FormatSVG
	}

	form := newForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Output directory").
				Value(&choice.Dir).
				Placeholder(defaults.Dir),
			huh.NewSelect[string]().
				Title("Image format").
				Options(
					huh.NewOption("SVG (scalable)", export.FormatSVG),
					huh.NewOption("PNG (raster)", export.FormatPNG),
				).
				Value(&choice.Format),
		),
	)
	if err := form.Run(); err != nil {
		return defaults, err
	}

	if strings.TrimSpace(choice.Dir) == "" {
		choice.Dir = defaults.Dir
	}
	return choice, nil
}

// newPickerForm builds the selection form embedded in the dashboard.
func newPickerForm(lang dashboard.Language, key *string, width int) *huh.Form {
	form := huh.NewForm(huh.NewGroup(selectionField(lang, key))).
		WithTheme(huh.ThemeDracula()).
		WithShowHelp(true)
	if width > 0 {
		form = form.WithWidth(min(width, 60))
	}
	return form
}
