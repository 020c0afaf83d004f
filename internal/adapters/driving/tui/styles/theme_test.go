package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/core/domain"
)

func TestDefaultTheme_BothVariantsSet(t *testing.T) {
	theme := DefaultTheme()

	for name, c := range map[string]lipgloss.AdaptiveColor{
		"accent": theme.Accent, "link": theme.Link, "text": theme.Text, "subtle": theme.Subtle,
		"good": theme.Good, "caution": theme.Caution, "bad": theme.Bad, "bar": theme.Bar, "rule": theme.Rule,
	} {
		assert.NotEmpty(t, c.Light, name)
		assert.NotEmpty(t, c.Dark, name)
	}
	assert.NotEmpty(t, theme.ProgressStart)
	assert.NotEmpty(t, theme.ProgressEnd)
}

func TestDefaultTheme_AccentsAreDistinct(t *testing.T) {
	theme := DefaultTheme()

	seen := make(map[string]bool)
	for _, c := range []lipgloss.AdaptiveColor{theme.Accent, theme.Link, theme.Good, theme.Caution, theme.Bad} {
		assert.False(t, seen[c.Dark], "duplicate accent %s", c.Dark)
		seen[c.Dark] = true
	}
}

func TestNewStyles_NilThemeUsesDefault(t *testing.T) {
	s := NewStyles(nil)

	require.NotNil(t, s)
	assert.Equal(t, DefaultTheme(), s.Theme())
	assert.Contains(t, s.Title.Render("Folio"), "Folio")
	assert.Contains(t, s.Label.Render("Status"), "Status")
}

func TestStyles_Job(t *testing.T) {
	s := DefaultStyles()

	tests := []struct {
		status domain.JobStatus
		want   lipgloss.Style
	}{
		{domain.JobCompleted, s.Success},
		{domain.JobCancelled, s.Warning},
		{domain.JobNotFound, s.Warning},
		{domain.JobStarted, s.Normal},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want.GetForeground(), s.Job(tt.status).GetForeground())
		})
	}
}
