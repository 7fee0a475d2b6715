// Package pretty renders diffs and run summaries for the terminal.
package pretty

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// defaultTermWidth is used when the writer is not a terminal.
const defaultTermWidth = 80

// Styles are the renderers for diff and summary output.
type Styles struct {
	Error   lipgloss.Style
	Warning lipgloss.Style

	FilePath lipgloss.Style
	Count    lipgloss.Style

	DiffHeader  lipgloss.Style
	DiffHunk    lipgloss.Style
	DiffAdd     lipgloss.Style
	DiffRemove  lipgloss.Style
	DiffContext lipgloss.Style

	SummaryTitle lipgloss.Style
	SummaryValue lipgloss.Style
	Success      lipgloss.Style
	Failure      lipgloss.Style

	Dim  lipgloss.Style
	Bold lipgloss.Style
}

// ANSI palette indices.
const (
	red    = "9"
	green  = "10"
	yellow = "11"
	blue   = "12"
	cyan   = "14"
	grey   = "8"
)

// NewStyles returns the styles for colored output, or plain styles that
// render their input unchanged when colorEnabled is false.
func NewStyles(colorEnabled bool) *Styles {
	paint := func(color string, bold bool) lipgloss.Style {
		style := lipgloss.NewStyle()
		if !colorEnabled {
			return style
		}
		if color != "" {
			style = style.Foreground(lipgloss.Color(color))
		}
		return style.Bold(bold)
	}

	return &Styles{
		Error:   paint(red, true),
		Warning: paint(yellow, true),

		FilePath: paint("", true),
		Count:    paint(blue, false),

		DiffHeader:  paint("", true),
		DiffHunk:    paint(cyan, false),
		DiffAdd:     paint(green, false),
		DiffRemove:  paint(red, false),
		DiffContext: paint(grey, false),

		SummaryTitle: paint("", true),
		SummaryValue: paint("", false),
		Success:      paint(green, true),
		Failure:      paint(red, true),

		Dim:  paint(grey, false),
		Bold: paint("", true),
	}
}

// IsColorEnabled resolves a --color mode for writer. "always" and "never" are
// taken literally; anything else means color on a terminal unless NO_COLOR is
// set.
func IsColorEnabled(mode string, writer io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := writer.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// TerminalWidth returns the width of the terminal behind writer, or 80.
func TerminalWidth(writer io.Writer) int {
	if f, ok := writer.(interface{ Fd() uintptr }); ok {
		width, _, err := term.GetSize(int(f.Fd()))
		if err == nil && width > 0 {
			return width
		}
	}
	return defaultTermWidth
}
