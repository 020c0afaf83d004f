// Package renderers selects and composes Markdown renderers.
package renderers

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/logger"
	"github.com/custodia-labs/folio/internal/renderers/goldmark"
	"github.com/custodia-labs/folio/internal/renderers/markdown"
)

var log = logger.Named("renderer")

// Ensure Chain implements the interface.
var _ driven.Renderer = (*Chain)(nil)

// Chain renders with a preferred renderer and falls back when it panics,
// errors, or produces nothing for non-blank input.
type Chain struct {
	preferred driven.Renderer
	fallback  driven.Renderer
}

// NewChain composes preferred and fallback.
func NewChain(preferred, fallback driven.Renderer) *Chain {
	return &Chain{preferred: preferred, fallback: fallback}
}

// Name reports the preferred renderer's name.
func (c *Chain) Name() string {
	return c.preferred.Name()
}

// Render converts markdown to HTML.
func (c *Chain) Render(md string) (string, error) {
	out, err := c.tryPreferred(md)
	if err == nil && (out != "" || strings.TrimSpace(md) == "") {
		return out, nil
	}
	if err != nil {
		log.Warn("%s failed, using %s: %v", c.preferred.Name(), c.fallback.Name(), err)
	}
	return c.fallback.Render(md)
}

func (c *Chain) tryPreferred(md string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return c.preferred.Render(md)
}

// New returns the renderer configured by name. Unknown names and the
// built-in renderer both resolve to the built-in one.
func New(name string) driven.Renderer {
	switch name {
	case domain.RendererGoldmark:
		return NewChain(goldmark.New(), markdown.New())
	default:
		return markdown.New()
	}
}
