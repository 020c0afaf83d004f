// Package goldmark renders Markdown with github.com/yuin/goldmark and the
// GitHub Flavored Markdown extension set.
package goldmark

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Name identifies this renderer.
const Name = "goldmark"

// Ensure Renderer implements the interface.
var _ driven.Renderer = (*Renderer)(nil)

// Renderer wraps a configured goldmark instance.
type Renderer struct {
	md goldmark.Markdown
}

// New creates a goldmark renderer. Single newlines become hard breaks and
// raw HTML is passed through, matching how content files are authored.
func New() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(
				html.WithHardWraps(),
				html.WithXHTML(),
				html.WithUnsafe(),
			),
		),
	}
}

// Name returns the renderer name.
func (r *Renderer) Name() string {
	return Name
}

// Render converts markdown to HTML.
func (r *Renderer) Render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("goldmark convert: %w", err)
	}
	return buf.String(), nil
}
