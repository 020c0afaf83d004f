package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/folio/internal/core/domain"
)

const (
	uriScheme   = "folio://"
	postsPrefix = uriScheme + "posts/"

	mimeJSON     = "application/json"
	mimeMarkdown = "text/markdown"
)

// postURI is a parsed folio://posts/{type}/{slug}[/source] address.
type postURI struct {
	postType string
	slug     string
	// source selects the raw markdown body instead of the JSON record.
	source bool
}

func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "types",
		Name:        "types",
		Description: "Content types known from directories and stored posts",
		MIMEType:    mimeJSON,
	}, s.handleTypesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: postsPrefix + "{type}/{slug}",
		Name:        "post",
		Description: "One post as JSON, with its rendered HTML",
		MIMEType:    mimeJSON,
	}, s.handlePostResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: postsPrefix + "{type}/{slug}/source",
		Name:        "post-source",
		Description: "The authored body of one post: markdown for file posts",
		MIMEType:    mimeMarkdown,
	}, s.handlePostResource)

	if s.ports.Version != nil {
		s.server.AddResource(&mcp.Resource{
			URI:         uriScheme + "status",
			Name:        "status",
			Description: "State of the content repository: branch, remote and root path",
			MIMEType:    mimeJSON,
		}, s.handleStatusResource)
	}
}

func (s *Server) handleTypesResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	types, err := s.ports.Content.Types(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing types: %w", err)
	}
	if types == nil {
		types = []string{}
	}
	return jsonResult(req.Params.URI, types)
}

func (s *Server) handlePostResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	addr, ok := parsePostURI(uri)
	if !ok {
		return nil, mcp.ResourceNotFoundError(uri)
	}

	post, err := s.ports.Content.Get(ctx, addr.postType, addr.slug)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil, mcp.ResourceNotFoundError(uri)
	case err != nil:
		return nil, fmt.Errorf("getting post: %w", err)
	}

	if addr.source {
		return textResult(uri, mimeMarkdown, post.SourceText()), nil
	}
	return jsonResult(uri, post)
}

func (s *Server) handleStatusResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	return jsonResult(req.Params.URI, s.ports.Version.Status(ctx))
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return textResult(uri, mimeJSON, string(data)), nil
}

func textResult(uri, mime, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{URI: uri, MIMEType: mime, Text: text}},
	}
}

func parsePostURI(uri string) (postURI, bool) {
	rest, found := strings.CutPrefix(uri, postsPrefix)
	if !found {
		return postURI{}, false
	}
	parts := strings.Split(rest, "/")
	source := len(parts) == 3 && parts[2] == "source"
	if source {
		parts = parts[:2]
	}
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return postURI{}, false
	}
	return postURI{postType: parts[0], slug: parts[1], source: source}, true
}
