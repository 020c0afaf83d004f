// Package styles holds the TUI palette and the lipgloss styles built from it.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// Theme is the palette. Each colour has a light and a dark terminal variant.
type Theme struct {
	Accent  lipgloss.AdaptiveColor
	Link    lipgloss.AdaptiveColor
	Text    lipgloss.AdaptiveColor
	Subtle  lipgloss.AdaptiveColor
	Good    lipgloss.AdaptiveColor
	Caution lipgloss.AdaptiveColor
	Bad     lipgloss.AdaptiveColor
	Bar     lipgloss.AdaptiveColor
	Rule    lipgloss.AdaptiveColor

	// ProgressStart and ProgressEnd are the gradient ends of progress bars.
	ProgressStart string
	ProgressEnd   string
}

// DefaultTheme is ink on paper: terracotta accents, slate links.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:        lipgloss.AdaptiveColor{Light: "#B4532F", Dark: "#D97757"},
		Link:          lipgloss.AdaptiveColor{Light: "#3F6E9C", Dark: "#6A9BCC"},
		Text:          lipgloss.AdaptiveColor{Light: "#2B2A27", Dark: "#E8E6DC"},
		Subtle:        lipgloss.AdaptiveColor{Light: "#6F6D66", Dark: "#8A8880"},
		Good:          lipgloss.AdaptiveColor{Light: "#4E8A3E", Dark: "#8FBF7F"},
		Caution:       lipgloss.AdaptiveColor{Light: "#A07A1F", Dark: "#E5C07B"},
		Bad:           lipgloss.AdaptiveColor{Light: "#B23A48", Dark: "#E06C75"},
		Bar:           lipgloss.AdaptiveColor{Light: "#E8E6DC", Dark: "#1F1E1D"},
		Rule:          lipgloss.AdaptiveColor{Light: "#C9C6BA", Dark: "#4B4A45"},
		ProgressStart: "#6A9BCC",
		ProgressEnd:   "#D97757",
	}
}

type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Label    lipgloss.Style
	Help     lipgloss.Style

	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style

	StatusBar  lipgloss.Style
	InputField lipgloss.Style
}

// NewStyles builds the styles for theme, or DefaultTheme when nil.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}
	fg := func(c lipgloss.TerminalColor) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}

	return &Styles{
		theme:    theme,
		Title:    fg(theme.Accent).Bold(true),
		Subtitle: fg(theme.Link).Bold(true),
		Normal:   fg(theme.Text),
		Muted:    fg(theme.Subtle),
		Selected: fg(theme.Accent).Bold(true),
		Label:    fg(theme.Subtle).Width(12),
		Help:     fg(theme.Subtle),
		Success:  fg(theme.Good),
		Warning:  fg(theme.Caution),
		Error:    fg(theme.Bad),

		StatusBar: fg(theme.Subtle).
			Background(theme.Bar).
			Padding(0, 1),
		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Rule).
			Padding(0, 1),
	}
}

func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

func (s *Styles) Theme() *Theme {
	return s.theme
}

// Job picks the colour of an export job status.
func (s *Styles) Job(status domain.JobStatus) lipgloss.Style {
	switch status {
	case domain.JobCompleted:
		return s.Success
	case domain.JobCancelled, domain.JobNotFound:
		return s.Warning
	}
	return s.Normal
}
