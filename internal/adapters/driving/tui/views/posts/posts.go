// Package posts provides the post browser: a paged, searchable listing with
// a detail pane.
package posts

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/folio/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

const pageSize = 10

var (
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	blankPattern = regexp.MustCompile(`\n{3,}`)
)

// View is the post browser.
type View struct {
	styles  *styles.Styles
	content driving.ContentService
	ctx     context.Context
	search  *input.SearchInput

	types    []string
	postType string
	page     int
	list     *domain.PostList
	selected int

	detail       *domain.Post
	detailOffset int

	loading bool
	err     error
	width   int
	height  int
}

// NewView creates a post browser starting at defaultType.
func NewView(s *styles.Styles, content driving.ContentService, defaultType string) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if defaultType == "" {
		defaultType = domain.DefaultPostType
	}
	return &View{
		styles:   s,
		content:  content,
		ctx:      context.Background(),
		search:   input.NewSearchInput(s),
		postType: defaultType,
		page:     1,
		width:    80,
		height:   24,
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the type list and the first page.
func (v *View) Init() tea.Cmd {
	v.loading = true
	return tea.Batch(v.loadTypes(), v.loadPosts())
}

func (v *View) loadTypes() tea.Cmd {
	ctx := v.ctx
	return func() tea.Msg {
		types, err := v.content.Types(ctx)
		return messages.TypesLoaded{Types: types, Err: err}
	}
}

func (v *View) query() domain.Query {
	return domain.Query{
		Type:     v.postType,
		Page:     v.page,
		PageSize: pageSize,
		Search:   v.search.Query(),
		Status:   domain.StatusPublish,
		Main:     true,
		Mode:     domain.ModeDisplay,
	}
}

func (v *View) loadPosts() tea.Cmd {
	ctx, q := v.ctx, v.query()
	return func() tea.Msg {
		list, err := v.content.Query(ctx, q)
		return messages.PostsLoaded{Query: q, List: list, Err: err}
	}
}

func (v *View) loadPost(slug string) tea.Cmd {
	ctx, postType := v.ctx, v.postType
	return func() tea.Msg {
		post, err := v.content.Get(ctx, postType, slug)
		return messages.PostLoaded{Post: post, Err: err}
	}
}

// Update handles messages for the post browser.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.TypesLoaded:
		if msg.Err == nil {
			v.types = msg.Types
		}
		return v, nil

	case messages.PostsLoaded:
		// Drop responses for a page or search that is no longer current.
		if msg.Query.Page != v.page || msg.Query.Type != v.postType || msg.Query.Search != v.search.Query() {
			return v, nil
		}
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.list = msg.List
			v.selected = 0
		}
		return v, nil

	case messages.PostLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.detail = msg.Post
			v.detailOffset = 0
		}
		return v, nil

	case tea.KeyMsg:
		switch {
		case v.search.Focused():
			return v.handleSearchKey(msg)
		case v.detail != nil:
			return v.handleDetailKey(msg)
		default:
			return v.handleListKey(msg)
		}
	}
	return v, nil
}

func (v *View) handleSearchKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if !v.search.Apply() {
			return v, nil
		}
		v.page = 1
		v.loading = true
		return v, v.loadPosts()
	case "esc":
		v.search.Cancel()
		return v, nil
	}
	var cmd tea.Cmd
	v.search, cmd = v.search.Update(msg)
	return v, cmd
}

func (v *View) handleDetailKey(msg tea.KeyMsg) (*View, tea.Cmd) {
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

func (v *View) handleListKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "/":
		return v, v.search.Focus()
	case "x":
		if v.search.Query() != "" {
			v.search.Clear()
			v.page = 1
			v.loading = true
			return v, v.loadPosts()
		}
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case "down", "j":
		if v.list != nil && v.selected < len(v.list.Posts)-1 {
			v.selected++
		}
	case "right", "l":
		if v.list != nil && v.page < v.list.PageCount {
			v.page++
			v.loading = true
			return v, v.loadPosts()
		}
	case "left", "h":
		if v.page > 1 {
			v.page--
			v.loading = true
			return v, v.loadPosts()
		}
	case "t":
		if len(v.types) > 1 {
			v.postType = nextType(v.types, v.postType)
			v.page = 1
			v.loading = true
			return v, v.loadPosts()
		}
	case "r":
		v.loading = true
		return v, v.loadPosts()
	case "enter":
		if v.list != nil && v.selected < len(v.list.Posts) {
			v.loading = true
			return v, v.loadPost(v.list.Posts[v.selected].Slug)
		}
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}
	return v, nil
}

func nextType(types []string, current string) string {
	for i, t := range types {
		if t == current {
			return types[(i+1)%len(types)]
		}
	}
	return types[0]
}

// View renders the browser.
func (v *View) View() string {
	if v.detail != nil {
		return v.renderDetail()
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Posts"))
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  type: %s", v.postType)))
	b.WriteString("\n\n")
	b.WriteString(v.search.View())
	b.WriteString("\n\n")

	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + domain.UserMessage(v.err)))
	case v.list == nil:
		b.WriteString(v.styles.Muted.Render("Loading..."))
	case len(v.list.Posts) == 0:
		b.WriteString(v.styles.Muted.Render("No posts found."))
	default:
		for i := range v.list.Posts {
			b.WriteString(v.renderRow(i))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("Page %d of %d  (%d posts)",
			v.page, v.list.PageCount, v.list.FoundCount)))
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[/] Search  [x] Clear  [h/l] Page  [t] Type  [Enter] Open  [Esc] Back"))
	return b.String()
}

func (v *View) renderRow(i int) string {
	p := v.list.Posts[i]
	date := ""
	if !p.Date.IsZero() {
		date = p.Date.Format("2006-01-02")
	}
	marker := " "
	if p.IsVirtual() {
		marker = "*"
	}
	line := fmt.Sprintf("%-10s %s %s", date, marker, p.Title)
	if i == v.selected {
		return "> " + v.styles.Selected.Render(line)
	}
	return "  " + v.styles.Normal.Render(line)
}

func (v *View) renderDetail() string {
	p := v.detail
	var b strings.Builder
	b.WriteString(v.styles.Title.Render(p.Title))
	b.WriteString("\n\n")

	field := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(v.styles.Label.Render(label))
		b.WriteString(v.styles.Normal.Render(value))
		b.WriteString("\n")
	}
	field("Slug", p.Slug)
	field("Status", p.Status)
	if !p.Date.IsZero() {
		field("Date", p.Date.Format("2006-01-02 15:04"))
	}
	field("Source", string(p.Source))
	field("File", p.FilePath)
	field("Tags", strings.Join(p.Tags, ", "))
	field("Categories", strings.Join(p.Categories, ", "))
	b.WriteString("\n")

	lines := strings.Split(PlainText(p.Content), "\n")
	visible := v.height - 14
	if visible < 5 {
		visible = 5
	}
	if v.detailOffset > len(lines)-1 {
		v.detailOffset = max(len(lines)-1, 0)
	}
	end := min(v.detailOffset+visible, len(lines))
	b.WriteString(strings.Join(lines[v.detailOffset:end], "\n"))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[j/k] Scroll  [Esc] Back"))
	return b.String()
}

// PlainText strips markup from rendered HTML for terminal display.
func PlainText(rendered string) string {
	text := strings.NewReplacer("</p>", "\n\n", "<br>", "\n", "<br/>", "\n", "</li>", "\n", "</h1>", "\n\n",
		"</h2>", "\n\n", "</h3>", "\n\n").Replace(rendered)
	text = html.UnescapeString(tagPattern.ReplaceAllString(text, ""))
	return strings.TrimSpace(blankPattern.ReplaceAllString(text, "\n\n"))
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.search.SetWidth(width)
}

// Type returns the content type being browsed.
func (v *View) Type() string {
	return v.postType
}

// Page returns the current page.
func (v *View) Page() int {
	return v.page
}

// Detail returns the open post, or nil.
func (v *View) Detail() *domain.Post {
	return v.detail
}
