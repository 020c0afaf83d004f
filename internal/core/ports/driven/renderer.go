package driven

// Renderer converts a Markdown body into HTML.
type Renderer interface {
	// Name identifies the renderer, e.g. "goldmark".
	Name() string

	// Render converts markdown to HTML.
	Render(markdown string) (string, error)
}
