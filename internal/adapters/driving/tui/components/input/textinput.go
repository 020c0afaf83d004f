// Package input holds the post search box of the TUI.
package input

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/folio/internal/adapters/driving/tui/styles"
)

const (
	// maxQueryLen bounds the search text sent to the content service.
	maxQueryLen   = 200
	labelWidth    = 10
	minFieldWidth = 16
)

// SearchInput is the post search box. Typing edits a draft; Apply makes the
// draft the active query and Cancel throws it away.
type SearchInput struct {
	field   textinput.Model
	styles  *styles.Styles
	applied string
}

// NewSearchInput returns a blurred, empty search box.
func NewSearchInput(s *styles.Styles) *SearchInput {
	if s == nil {
		s = styles.DefaultStyles()
	}
	field := textinput.New()
	field.Prompt = ""
	field.Placeholder = "title or body text"
	field.CharLimit = maxQueryLen
	field.Width = 40

	return &SearchInput{field: field, styles: s}
}

// Update feeds key messages to the draft while focused.
func (s *SearchInput) Update(msg tea.Msg) (*SearchInput, tea.Cmd) {
	var cmd tea.Cmd
	s.field, cmd = s.field.Update(msg)
	return s, cmd
}

// Query is the active search text.
func (s *SearchInput) Query() string {
	return s.applied
}

// Draft is the text being edited, trimmed.
func (s *SearchInput) Draft() string {
	return strings.TrimSpace(s.field.Value())
}

// Apply blurs the box and makes the draft the active query. It reports
// whether the query changed.
func (s *SearchInput) Apply() bool {
	s.field.Blur()
	next := s.Draft()
	changed := next != s.applied
	s.applied = next
	s.field.SetValue(next)
	return changed
}

// Cancel blurs the box and restores the draft to the active query.
func (s *SearchInput) Cancel() {
	s.field.Blur()
	s.field.SetValue(s.applied)
}

// Clear drops both the draft and the active query.
func (s *SearchInput) Clear() {
	s.field.Reset()
	s.applied = ""
}

// Focus starts editing.
func (s *SearchInput) Focus() tea.Cmd {
	s.field.CursorEnd()
	return s.field.Focus()
}

// Focused reports whether the box is being edited.
func (s *SearchInput) Focused() bool {
	return s.field.Focused()
}

// SetWidth fits the field into width columns next to its label.
func (s *SearchInput) SetWidth(width int) {
	s.field.Width = max(width-labelWidth, minFieldWidth)
}

// View renders the box, or a hint when idle with no active query.
func (s *SearchInput) View() string {
	if !s.Focused() && s.applied == "" {
		return s.styles.Muted.Render("/ search")
	}
	label := s.styles.Subtitle.Render("Search: ")
	if !s.Focused() {
		return label + s.styles.Normal.Render(s.applied) + s.styles.Muted.Render("  (/ edit, x clear)")
	}
	return label + s.styles.InputField.Render(s.field.View())
}
