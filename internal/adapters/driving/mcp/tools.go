package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/folio/internal/core/domain"
)

const (
	defaultHistoryLimit = 10
	maxPageSize         = 100
)

// ListPostsInput is the input schema for the list_posts tool.
type ListPostsInput struct {
	Type    string `json:"type,omitempty" jsonschema:"content type directory, defaults to posts"`
	Page    int    `json:"page,omitempty" jsonschema:"1-based page number"`
	PerPage int    `json:"per_page,omitempty" jsonschema:"posts per page (default 10, max 100)"`
	Search  string `json:"search,omitempty" jsonschema:"case-insensitive substring matched against title and body"`
	Status  string `json:"status,omitempty" jsonschema:"publish, draft, private or any (default publish)"`
}

// ListPostsOutput is the output schema for the list_posts tool.
type ListPostsOutput struct {
	Posts      []PostSummary `json:"posts"`
	FoundCount int           `json:"found_count"`
	PageCount  int           `json:"page_count"`
}

// PostSummary is a post without its rendered body.
type PostSummary struct {
	ID      int64    `json:"id"`
	Type    string   `json:"type"`
	Slug    string   `json:"slug"`
	Title   string   `json:"title"`
	Status  string   `json:"status"`
	Date    string   `json:"date,omitempty"`
	Excerpt string   `json:"excerpt,omitempty"`
	Tags    []string `json:"tags,omitempty"`
	Source  string   `json:"source"`
}

// GetPostInput is the input schema for the get_post tool.
type GetPostInput struct {
	Type string `json:"type,omitempty" jsonschema:"content type directory, defaults to posts"`
	Slug string `json:"slug" jsonschema:"post slug"`
}

// GetPostOutput is the output schema for the get_post tool.
type GetPostOutput struct {
	Post domain.Post `json:"post"`
}

// HistoryInput is the input schema for the content_history tool.
type HistoryInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of commits (default 10)"`
}

// HistoryOutput is the output schema for the content_history tool.
type HistoryOutput struct {
	Commits []domain.Commit `json:"commits"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_posts",
		Description: "List posts of a content type, merging content files with stored posts",
	}, s.handleListPosts)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_post",
		Description: "Get a single post by type and slug, including its rendered HTML",
	}, s.handleGetPost)

	if s.ports.Version != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "content_history",
			Description: "List recent commits to the content repository",
		}, s.handleHistory)
	}
}

func (s *Server) handleListPosts(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListPostsInput,
) (*mcp.CallToolResult, ListPostsOutput, error) {
	perPage := input.PerPage
	if perPage <= 0 {
		perPage = domain.DefaultPageSize
	}
	if perPage > maxPageSize {
		perPage = maxPageSize
	}

	list, err := s.ports.Content.Query(ctx, domain.Query{
		Type:     typeOrDefault(input.Type),
		Page:     input.Page,
		PageSize: perPage,
		Search:   input.Search,
		Status:   input.Status,
		Main:     true,
		Mode:     domain.ModeDisplay,
	})
	if err != nil {
		return nil, ListPostsOutput{}, fmt.Errorf("listing posts: %w", err)
	}

	output := ListPostsOutput{
		Posts:      make([]PostSummary, len(list.Posts)),
		FoundCount: list.FoundCount,
		PageCount:  list.PageCount,
	}
	for i := range list.Posts {
		output.Posts[i] = summarize(&list.Posts[i])
	}
	return nil, output, nil
}

func (s *Server) handleGetPost(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetPostInput,
) (*mcp.CallToolResult, GetPostOutput, error) {
	if input.Slug == "" {
		return nil, GetPostOutput{}, fmt.Errorf("slug is required: %w", domain.ErrMissingRequiredField)
	}
	post, err := s.ports.Content.Get(ctx, typeOrDefault(input.Type), input.Slug)
	if err != nil {
		return nil, GetPostOutput{}, fmt.Errorf("getting post: %w", err)
	}
	return nil, GetPostOutput{Post: *post}, nil
}

func (s *Server) handleHistory(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input HistoryInput,
) (*mcp.CallToolResult, HistoryOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	commits, err := s.ports.Version.History(ctx, limit)
	if err != nil {
		return nil, HistoryOutput{}, fmt.Errorf("reading history: %w", err)
	}
	return nil, HistoryOutput{Commits: commits}, nil
}

func summarize(p *domain.Post) PostSummary {
	sum := PostSummary{
		ID:      p.ID,
		Type:    p.Type,
		Slug:    p.Slug,
		Title:   p.Title,
		Status:  p.Status,
		Excerpt: p.Excerpt,
		Tags:    p.Tags,
		Source:  string(p.Source),
	}
	if !p.Date.IsZero() {
		sum.Date = p.Date.Format(time.RFC3339)
	}
	return sum
}

func typeOrDefault(t string) string {
	if t == "" {
		return domain.DefaultPostType
	}
	return t
}
