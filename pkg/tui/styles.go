// Package tui – styles.go
// Shared color palette & lipgloss styles for the prompt, errors, and
// verbose request info.
package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// ─── Color palette ─────────────────────────────────────────────────────
var (
	ColorPrompt = lipgloss.Color("#22aa44") // green – the glue > prompt
	ColorError  = lipgloss.Color("#cc3333") // red – error lines
	ColorInfo   = lipgloss.Color("#6e6e6e") // gray – verbose request info
	ColorMuted  = lipgloss.Color("#888888") // muted text – hints
)

// ─── Styles ────────────────────────────────────────────────────────────
var (
	PromptStyle = lipgloss.NewStyle().Foreground(ColorPrompt).Bold(true)
	ErrorStyle  = lipgloss.NewStyle().Foreground(ColorError)
	InfoStyle   = lipgloss.NewStyle().Foreground(ColorInfo)
	MutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
)

// colorEnabled gates every style: coloring is skipped when stdout is
// not a terminal or NO_COLOR is set.
var colorEnabled = term.IsTerminal(int(os.Stdout.Fd())) && os.Getenv("NO_COLOR") == ""

// SetColorEnabled overrides TTY detection; used by the CLI for the
// no_color config and by tests.
func SetColorEnabled(enabled bool) { colorEnabled = enabled }

// ColorEnabled reports whether output is styled.
func ColorEnabled() bool { return colorEnabled }

func styled(style lipgloss.Style, s string) string {
	if !colorEnabled {
		return s
	}
	return style.Render(s)
}
