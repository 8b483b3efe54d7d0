package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Status indicators
const (
	SuccessIcon = "✓"
	FailIcon    = "✗"
)

// Styles returns styled text helpers bound to a renderer
type Styles struct {
	renderer *lipgloss.Renderer
	theme    Theme

	// Text styles
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Success  lipgloss.Style
	Error    lipgloss.Style
	Muted    lipgloss.Style

	// Chat styles
	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	Thinking       lipgloss.Style
	Banner         lipgloss.Style
	Chip           lipgloss.Style
	MetricsLine    lipgloss.Style

	// Table styles
	TableHeader lipgloss.Style
	TableCell   lipgloss.Style
}

// NewStyles creates a new Styles instance for the given output and theme
func NewStyles(output *os.File, theme Theme) *Styles {
	r := lipgloss.NewRenderer(output)

	return &Styles{
		renderer: r,
		theme:    theme,

		Title: r.NewStyle().
			Bold(true).
			Foreground(theme.Secondary),

		Subtitle: r.NewStyle().
			Foreground(theme.Muted),

		Success: r.NewStyle().
			Foreground(lipgloss.Color("10")),

		Error: r.NewStyle().
			Foreground(theme.Error),

		Muted: r.NewStyle().
			Foreground(theme.Muted),

		UserLabel: r.NewStyle().
			Bold(true).
			Foreground(theme.Primary),

		AssistantLabel: r.NewStyle().
			Bold(true).
			Foreground(theme.Accent),

		Thinking: r.NewStyle().
			Italic(true).
			Foreground(theme.Muted),

		Banner: r.NewStyle().
			Foreground(theme.Error).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Error).
			Padding(0, 1),

		Chip: r.NewStyle().
			Foreground(theme.Secondary).
			Background(theme.Border).
			Padding(0, 1),

		MetricsLine: r.NewStyle().
			Foreground(theme.Muted).
			Italic(true),

		TableHeader: r.NewStyle().
			Bold(true).
			Foreground(theme.Secondary).
			Padding(0, 1),

		TableCell: r.NewStyle().
			Padding(0, 1),
	}
}

// DefaultStyles returns user-themed styles for stderr (default TUI output)
func DefaultStyles() *Styles {
	return NewStyles(os.Stderr, ThemeForRole("user"))
}

// Theme returns the palette the styles were built from.
func (s *Styles) Theme() Theme {
	return s.theme
}

// FormatResult returns a styled success/fail result
func (s *Styles) FormatResult(success bool, msg string) string {
	if success {
		return s.Success.Render(SuccessIcon+" ") + msg
	}
	return s.Error.Render(FailIcon+" ") + msg
}
