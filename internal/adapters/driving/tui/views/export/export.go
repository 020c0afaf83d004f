// Package export provides the export progress view. It polls job status on
// a fixed interval until the job reaches a terminal state.
package export

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/folio/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// PollInterval is how often job status is polled.
const PollInterval = 500 * time.Millisecond

// View shows the progress of one export job.
type View struct {
	styles  *styles.Styles
	exports driving.ExportService
	ctx     context.Context
	bar     progress.Model

	jobID      string
	progress   domain.JobProgress
	polled     bool
	cancelling bool
	err        error
	width      int

	// quitOnDone ends the program once the job is terminal.
	quitOnDone bool
}

// NewView creates an export progress view for jobID.
func NewView(s *styles.Styles, exports driving.ExportService, jobID string) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	theme := s.Theme()
	return &View{
		styles:   s,
		exports:  exports,
		ctx:      context.Background(),
		bar:      progress.New(progress.WithGradient(theme.ProgressStart, theme.ProgressEnd)),
		jobID:    jobID,
		progress: domain.JobProgress{JobID: jobID, Status: domain.JobStarted},
		width:    80,
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// QuitOnDone makes the view end the program when the job finishes.
func (v *View) QuitOnDone() *View {
	v.quitOnDone = true
	return v
}

// Init polls immediately.
func (v *View) Init() tea.Cmd {
	return v.poll()
}

func (v *View) tick() tea.Cmd {
	id := v.jobID
	return tea.Tick(PollInterval, func(time.Time) tea.Msg {
		return messages.ProgressTick{JobID: id}
	})
}

func (v *View) poll() tea.Cmd {
	ctx, id := v.ctx, v.jobID
	return func() tea.Msg {
		return messages.ProgressUpdated{Progress: v.exports.Status(ctx, id)}
	}
}

func (v *View) cancel() tea.Cmd {
	ctx, id := v.ctx, v.jobID
	return func() tea.Msg {
		return messages.JobCancelled{JobID: id, Err: v.exports.Cancel(ctx, id)}
	}
}

// Update handles messages for the export view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.ProgressTick:
		if msg.JobID != v.jobID {
			return v, nil
		}
		return v, v.poll()

	case messages.ProgressUpdated:
		if msg.Progress.JobID != v.jobID {
			return v, nil
		}
		v.progress = msg.Progress
		v.polled = true
		if v.progress.Terminal() {
			if v.quitOnDone {
				return v, tea.Quit
			}
			return v, nil
		}
		return v, v.tick()

	case messages.JobCancelled:
		v.cancelling = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		return v, v.poll()

	case tea.KeyMsg:
		switch msg.String() {
		case "c":
			if !v.progress.Terminal() && !v.cancelling {
				v.cancelling = true
				return v, v.cancel()
			}
		case "esc":
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		}
	}
	return v, nil
}

// View renders the progress.
func (v *View) View() string {
	p := v.progress
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Export"))
	b.WriteString(v.styles.Muted.Render("  " + v.jobID))
	b.WriteString("\n\n")

	if !v.polled {
		b.WriteString(v.styles.Muted.Render("Waiting for status..."))
		return b.String()
	}

	b.WriteString(v.bar.ViewAs(p.ProgressPercent / 100))
	b.WriteString("\n\n")

	row := func(label, value string) {
		b.WriteString(v.styles.Label.Render(label))
		b.WriteString(v.styles.Normal.Render(value))
		b.WriteString("\n")
	}
	row("Status", v.renderStatus())
	row("Processed", fmt.Sprintf("%d / %d", p.Processed, p.Total))
	row("Written", fmt.Sprintf("%d", p.Successful))
	row("Failed", fmt.Sprintf("%d", p.Failed))
	if p.CurrentType != "" {
		row("Type", p.CurrentType)
	}
	if p.Message != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(p.Message))
		b.WriteString("\n")
	}
	if v.err != nil {
		b.WriteString("\n")
		b.WriteString(v.styles.Error.Render("Error: " + domain.UserMessage(v.err)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if p.Terminal() {
		b.WriteString(v.styles.Help.Render("[Esc] Back  [q] Quit"))
	} else {
		b.WriteString(v.styles.Help.Render("[c] Cancel export  [q] Quit"))
	}
	return b.String()
}

func (v *View) renderStatus() string {
	switch {
	case v.cancelling:
		return v.styles.Warning.Render("cancelling")
	case v.progress.Status == domain.JobStarted:
		return v.styles.Normal.Render(fmt.Sprintf("%s (%.0f%%)", v.progress.Status, v.progress.ProgressPercent))
	default:
		return v.styles.Job(v.progress.Status).Render(string(v.progress.Status))
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, _ int) {
	v.width = width
	v.bar.Width = min(max(width-4, 10), 80)
}

// Progress returns the last polled status.
func (v *View) Progress() domain.JobProgress {
	return v.progress
}

// JobID returns the watched job.
func (v *View) JobID() string {
	return v.jobID
}
