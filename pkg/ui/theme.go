package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeBg returns the given hex color for TrueColor terminals and
// lipgloss.NoColor{} otherwise, so 16/256-color terminals keep their own
// background.
func ThemeBg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.TrueColor {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(hex)
}

// ThemeFg returns the given hex color for ANSI256+ terminals and a safe
// ANSI white (color 7) for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

type Theme struct {
	Renderer *lipgloss.Renderer

	// Colors
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Success   lipgloss.AdaptiveColor
	Danger    lipgloss.AdaptiveColor

	// Styles
	Base     lipgloss.Style
	Title    lipgloss.Style
	Heading  lipgloss.Style
	Header   lipgloss.Style
	Selected lipgloss.Style
	Tab      lipgloss.Style
	Panel    lipgloss.Style

	MutedText   lipgloss.Style
	ErrorText   lipgloss.Style
	PrimaryBold lipgloss.Style
}

// DefaultTheme returns the standard Dracula-inspired theme (adaptive)
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary:   ColorPrimary,
		Secondary: ColorSecondary,
		Subtext:   ColorSubtext,
		Border:    ColorBorder,
		Highlight: ColorBgHighlight,
		Muted:     ColorMuted,
		Success:   ColorSuccess,
		Danger:    ColorDanger,
	}

	t.Base = r.NewStyle().Foreground(ColorText)

	t.Title = r.NewStyle().
		Foreground(t.Primary).
		Bold(true)

	t.Heading = r.NewStyle().
		Foreground(ColorInfo).
		Bold(true).
		MarginTop(1)

	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)

	t.Selected = r.NewStyle().
		Background(t.Highlight).
		Foreground(t.Primary).
		Border(lipgloss.ThickBorder(), false, false, true, false).
		BorderForeground(t.Primary).
		Padding(0, 1).
		Bold(true)

	t.Tab = r.NewStyle().
		Foreground(t.Subtext).
		Border(lipgloss.HiddenBorder(), false, false, true, false).
		Padding(0, 1)

	t.Panel = r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1)

	t.MutedText = r.NewStyle().Foreground(ColorMuted)
	t.ErrorText = r.NewStyle().Foreground(ColorDanger).Bold(true)
	t.PrimaryBold = r.NewStyle().Foreground(t.Primary).Bold(true)

	return t
}

// TestTheme returns a theme suitable for use in tests (no color output).
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(nil))
}
