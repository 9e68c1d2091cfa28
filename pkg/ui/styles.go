package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ══════════════════════════════════════════════════════════════════════════════
// DESIGN TOKENS - Consistent spacing, colors, and visual language
// ══════════════════════════════════════════════════════════════════════════════

// Spacing constants for consistent layout (in characters)
const (
	SpaceXS = 1
	SpaceSM = 2
	SpaceMD = 3
)

// ══════════════════════════════════════════════════════════════════════════════
// COLOR PALETTE - Adaptive colors for light and dark terminals
// ══════════════════════════════════════════════════════════════════════════════

var (
	ColorBgHighlight = lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#44475A"}
	ColorText        = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}
	ColorSubtext     = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BFBFBF"}
	ColorMuted       = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}
	ColorBorder      = lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"}

	ColorPrimary   = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
	ColorSecondary = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"}
	ColorInfo      = lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}
	ColorSuccess   = lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}
	ColorWarning   = lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}
	ColorDanger    = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}

	ColorSuccessBg = lipgloss.AdaptiveColor{Light: "#D4EDDA", Dark: "#1A3D2A"}
	ColorDangerBg  = lipgloss.AdaptiveColor{Light: "#F8D7DA", Dark: "#3D1A1A"}
)

// RenderDivider draws a horizontal rule of the given width.
func RenderDivider(t Theme, width int) string {
	if width <= 0 {
		return ""
	}
	return t.Renderer.NewStyle().Foreground(t.Border).Render(strings.Repeat("─", width))
}

// RenderStatus renders a status-bar message, green for info and red for
// errors, padded to width.
func RenderStatus(t Theme, msg string, isError bool, width int) string {
	style := t.Renderer.NewStyle().
		Background(ColorSuccessBg).
		Foreground(ColorSuccess).
		Bold(true).
		Padding(0, SpaceSM)
	prefix := "✓ "
	if isError {
		style = style.Background(ColorDangerBg).Foreground(ColorDanger)
		prefix = "✗ "
	}
	section := style.Render(prefix + msg)
	remaining := width - lipgloss.Width(section)
	if remaining < 0 {
		remaining = 0
	}
	return section + strings.Repeat(" ", remaining)
}
