// Package status renders the one-line bar under every view: where the user
// is, what just happened, and which keys apply.
package status

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/folio/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/styles"
)

// State colours the left side of the bar.
type State string

const (
	StateReady   State = "ready"
	StateLoading State = "loading"
	StateError   State = "error"
)

type Bar struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	help     help.Model
	state    State
	view     string
	message  string
	bindings []key.Binding
	width    int
}

func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	h := help.New()
	h.ShortSeparator = " · "
	h.Styles.ShortKey = s.Subtitle
	h.Styles.ShortDesc = s.Muted
	h.Styles.ShortSeparator = s.Muted

	return &Bar{
		styles:   s,
		keymap:   km,
		help:     h,
		state:    StateReady,
		bindings: km.ShortHelp(),
		width:    80,
	}
}

// View renders the bar padded to its width. Key hints are dropped when they
// do not fit.
func (s *Bar) View() string {
	left := s.status()
	right := s.help.ShortHelpView(s.bindings)

	gap := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		right, gap = "", 1
	}
	return s.styles.StatusBar.Width(s.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (s *Bar) status() string {
	var crumb string
	if s.view != "" {
		crumb = s.styles.Subtitle.Render(s.view) + " "
	}
	switch s.state {
	case StateLoading:
		return crumb + s.styles.Muted.Render("Loading...")
	case StateError:
		if s.message == "" {
			return crumb + s.styles.Error.Render("Error")
		}
		return crumb + s.styles.Error.Render("Error: "+s.message)
	}
	if s.message == "" {
		return crumb + s.styles.Muted.Render("Ready")
	}
	return crumb + s.styles.Normal.Render(s.message)
}

func (s *Bar) SetState(state State) { s.state = state }

func (s *Bar) State() State { return s.state }

// SetView names the current screen, shown before the message.
func (s *Bar) SetView(name string) { s.view = name }

func (s *Bar) SetMessage(message string) { s.message = message }

func (s *Bar) Message() string { return s.message }

// SetBindings replaces the key hints. Nil restores the short help.
func (s *Bar) SetBindings(bindings []key.Binding) {
	if bindings == nil {
		bindings = s.keymap.ShortHelp()
	}
	s.bindings = bindings
}

func (s *Bar) SetWidth(width int) {
	s.width = width
	s.help.Width = width
}

func (s *Bar) Width() int { return s.width }

// Clear returns to the ready state with the short help. The view name stays.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.bindings = s.keymap.ShortHelp()
}
