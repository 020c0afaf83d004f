// Package history lists recent content commits and shows one commit's
// files and diff.
package history

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/folio/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

const historyLimit = 50

// View lists commits.
type View struct {
	styles  *styles.Styles
	version driving.VersionService
	ctx     context.Context

	commits  []domain.Commit
	selected int
	loaded   bool

	detail       *domain.Commit
	detailOffset int

	err    error
	height int
}

// NewView creates a history view.
func NewView(s *styles.Styles, version driving.VersionService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:  s,
		version: version,
		ctx:     context.Background(),
		height:  24,
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the history.
func (v *View) Init() tea.Cmd {
	return v.load()
}

func (v *View) load() tea.Cmd {
	ctx := v.ctx
	return func() tea.Msg {
		commits, err := v.version.History(ctx, historyLimit)
		return messages.HistoryLoaded{Commits: commits, Err: err}
	}
}

func (v *View) loadCommit(hash string) tea.Cmd {
	ctx := v.ctx
	return func() tea.Msg {
		c, err := v.version.CommitDetails(ctx, hash)
		if err == nil && c == nil {
			err = fmt.Errorf("commit %s: %w", hash, domain.ErrNotFound)
		}
		return messages.CommitLoaded{Commit: c, Err: err}
	}
}

// Update handles messages for the history view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case messages.HistoryLoaded:
		v.loaded = true
		v.err = msg.Err
		if msg.Err == nil {
			v.commits = msg.Commits
			v.selected = 0
		}

	case messages.CommitLoaded:
		v.err = msg.Err
		if msg.Err == nil {
			v.detail = msg.Commit
			v.detailOffset = 0
		}

	case tea.KeyMsg:
		if v.detail != nil {
			switch msg.String() {
			case "esc":
				v.detail = nil
			case "up", "k":
				if v.detailOffset > 0 {
					v.detailOffset--
				}
			case "down", "j":
				v.detailOffset++
			}
			return v, nil
		}
		switch msg.String() {
		case "up", "k":
			if v.selected > 0 {
				v.selected--
			}
		case "down", "j":
			if v.selected < len(v.commits)-1 {
				v.selected++
			}
		case "r":
			return v, v.load()
		case "enter":
			if v.selected < len(v.commits) {
				return v, v.loadCommit(v.commits[v.selected].Hash)
			}
		case "esc":
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		}
	}
	return v, nil
}

// View renders the list or the open commit.
func (v *View) View() string {
	if v.detail != nil {
		return v.renderDetail()
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("History"))
	b.WriteString("\n\n")

	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + domain.UserMessage(v.err)))
	case !v.loaded:
		b.WriteString(v.styles.Muted.Render("Loading..."))
	case len(v.commits) == 0:
		b.WriteString(v.styles.Muted.Render("No commits yet."))
	default:
		for i := range v.commits {
			c := &v.commits[i]
			line := fmt.Sprintf("%s  %s  %-16s %s",
				c.ShortHash(), c.Date.Format("2006-01-02 15:04"), truncate(c.Author, 16), c.Message)
			if i == v.selected {
				b.WriteString("> " + v.styles.Selected.Render(line))
			} else {
				b.WriteString("  " + v.styles.Normal.Render(line))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [Enter] Show  [r] Refresh  [Esc] Back"))
	return b.String()
}

func (v *View) renderDetail() string {
	c := v.detail
	var b strings.Builder
	b.WriteString(v.styles.Title.Render(c.ShortHash()))
	b.WriteString("  ")
	b.WriteString(v.styles.Normal.Render(c.Message))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("%s <%s>  %s", c.Author, c.Email, c.Date.Format("2006-01-02 15:04"))))
	b.WriteString("\n\n")

	b.WriteString(v.styles.Subtitle.Render(fmt.Sprintf("Files (%d)", len(c.Files))))
	b.WriteString("\n")
	for _, f := range c.Files {
		b.WriteString("  " + f + "\n")
	}
	b.WriteString("\n")

	lines := strings.Split(strings.TrimRight(c.Diff, "\n"), "\n")
	visible := max(v.height-len(c.Files)-10, 5)
	v.detailOffset = min(v.detailOffset, max(len(lines)-1, 0))
	end := min(v.detailOffset+visible, len(lines))
	for _, line := range lines[v.detailOffset:end] {
		b.WriteString(v.renderDiffLine(line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[j/k] Scroll  [Esc] Back"))
	return b.String()
}

func (v *View) renderDiffLine(line string) string {
	switch {
	case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		return v.styles.Muted.Render(line)
	case strings.HasPrefix(line, "+"):
		return v.styles.Success.Render(line)
	case strings.HasPrefix(line, "-"):
		return v.styles.Error.Render(line)
	case strings.HasPrefix(line, "@@"):
		return v.styles.Subtitle.Render(line)
	default:
		return line
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(_, height int) {
	v.height = height
}

// Detail returns the open commit, or nil.
func (v *View) Detail() *domain.Commit {
	return v.detail
}
