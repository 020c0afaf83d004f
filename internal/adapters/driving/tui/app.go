package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/folio/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/views/export"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/views/history"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/views/posts"
	"github.com/custodia-labs/folio/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	statusBar *status.Bar

	menuView    *menu.View
	postsView   *posts.View
	historyView *history.View
	// exportView is nil unless a job is being watched.
	exportView *export.View

	currentView messages.ViewType
	err         error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	a := &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		statusBar:   status.NewBar(s, km),
		menuView:    menu.NewView(s, km, false),
		postsView:   posts.NewView(s, ports.Content, ports.DefaultType),
		currentView: messages.ViewMenu,
	}
	if ports.Version != nil {
		a.historyView = history.NewView(s, ports.Version)
	}
	a.setView(messages.ViewMenu)
	return a, nil
}

// WithContext sets the context used by every view for service calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.postsView.WithContext(ctx)
	if a.historyView != nil {
		a.historyView.WithContext(ctx)
	}
	if a.exportView != nil {
		a.exportView.WithContext(ctx)
	}
	return a
}

// WatchExport opens the app on the progress of jobID. The program quits
// once the job reaches a terminal state.
func (a *App) WatchExport(jobID string) (*App, error) {
	if a.ports.Export == nil {
		return nil, ErrMissingExportService
	}
	if jobID == "" {
		return nil, ErrMissingJobID
	}
	a.exportView = export.NewView(a.styles, a.ports.Export, jobID).
		WithContext(a.ctx).
		QuitOnDone()
	a.menuView = menu.NewView(a.styles, a.keymap, true)
	a.setView(messages.ViewExport)
	return a, nil
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tea.SetWindowTitle("folio"),
	}
	if a.currentView == messages.ViewExport && a.exportView != nil {
		cmds = append(cmds, a.exportView.Init())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message router
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a, a.updateCurrent(msg)

	case messages.ViewChanged:
		return a, a.navigate(msg.View)

	case messages.ErrorOccurred:
		a.err = msg.Err
		a.statusBar.SetState(status.StateError)
		a.statusBar.SetMessage(domain.UserMessage(msg.Err))
		return a, nil

	case messages.TypesLoaded, messages.PostsLoaded, messages.PostLoaded:
		a.postsView, cmd = a.postsView.Update(msg)
		return a, cmd

	case messages.HistoryLoaded, messages.CommitLoaded:
		if a.historyView != nil {
			a.historyView, cmd = a.historyView.Update(msg)
		}
		return a, cmd

	case messages.ProgressTick, messages.ProgressUpdated, messages.JobCancelled:
		// Export polling continues while other views are open.
		if a.exportView != nil {
			a.exportView, cmd = a.exportView.Update(msg)
		}
		return a, cmd
	}

	return a, a.updateCurrent(msg)
}

func (a *App) updateCurrent(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewPosts:
		a.postsView, cmd = a.postsView.Update(msg)
	case messages.ViewHistory:
		if a.historyView != nil {
			a.historyView, cmd = a.historyView.Update(msg)
		} else if k, ok := msg.(tea.KeyMsg); ok && k.Type == tea.KeyEsc {
			a.setView(messages.ViewMenu)
		}
	case messages.ViewExport:
		if a.exportView != nil {
			a.exportView, cmd = a.exportView.Update(msg)
		}
	}
	return cmd
}

func (a *App) navigate(view messages.ViewType) tea.Cmd {
	if view == messages.ViewExport && a.exportView == nil {
		return nil
	}
	a.err = nil
	a.setView(view)

	switch view {
	case messages.ViewPosts:
		return a.postsView.Init()
	case messages.ViewHistory:
		if a.historyView == nil {
			a.err = domain.ErrVCSUnavailable
			a.statusBar.SetState(status.StateError)
			a.statusBar.SetMessage("version control is not available")
			return nil
		}
		return a.historyView.Init()
	case messages.ViewMenu, messages.ViewExport:
	}
	return nil
}

func (a *App) setView(view messages.ViewType) {
	a.currentView = view
	a.statusBar.Clear()
	a.statusBar.SetView(view.String())
	switch view {
	case messages.ViewPosts:
		a.statusBar.SetBindings(a.keymap.PostsHelp())
	case messages.ViewExport:
		a.statusBar.SetBindings(a.keymap.ExportHelp())
	case messages.ViewMenu:
		a.statusBar.SetBindings(a.keymap.MenuHelp())
	case messages.ViewHistory:
		a.statusBar.SetBindings(nil)
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	switch a.currentView {
	case messages.ViewPosts:
		body = a.postsView.View()
	case messages.ViewHistory:
		if a.historyView != nil {
			body = a.historyView.View()
		} else {
			body = a.styles.Title.Render("History") + "\n\n" +
				a.styles.Muted.Render("Version control is not available.") + "\n\n" +
				a.styles.Help.Render("[Esc] Back")
		}
	case messages.ViewExport:
		body = a.exportView.View()
	default:
		body = a.menuView.View()
	}

	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n\n")
	b.WriteString(a.statusBar.View())
	return b.String()
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on the app and every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.statusBar.SetWidth(width)
	a.menuView.SetDimensions(width, height)
	a.postsView.SetDimensions(width, height)
	if a.historyView != nil {
		a.historyView.SetDimensions(width, height)
	}
	if a.exportView != nil {
		a.exportView.SetDimensions(width, height)
	}
}
