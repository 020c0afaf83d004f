// Package markdown is Folio's built-in Markdown to HTML renderer. It covers
// the common subset (headers, emphasis, links, images, code, unordered
// lists, paragraphs and hard line breaks) and never fails.
package markdown

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Name identifies this renderer.
const Name = "builtin"

// Ensure Renderer implements the interface.
var _ driven.Renderer = (*Renderer)(nil)

var (
	fencedCode  = regexp.MustCompile("(?s)```([A-Za-z0-9_+-]*)[ \t]*\n(.*?)\n?```")
	heading     = regexp.MustCompile(`^(#{1,6})\s+(.*?)\s*#*\s*$`)
	listItem    = regexp.MustCompile(`^\s*[-*+]\s+(.*)$`)
	blockHTML   = regexp.MustCompile(`^\s*<(/?)(div|p|h[1-6]|ul|ol|li|pre|blockquote|table|thead|tbody|tr|td|th|figure|section|article|hr|img|iframe)\b`)
	placeholder = regexp.MustCompile(`^\x00CODE(\d+)\x00$`)

	inlineCode = regexp.MustCompile("`([^`]+)`")
	image      = regexp.MustCompile(`!\[([^\]]*)\]\(([^)\s]+)(?:\s+"([^"]*)")?\)`)
	link       = regexp.MustCompile(`\[([^\]]+)\]\(([^)\s]+)(?:\s+"([^"]*)")?\)`)
	boldStar   = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	boldUnder  = regexp.MustCompile(`__([^_]+)__`)
	italicStar = regexp.MustCompile(`\*([^*\s][^*]*)\*`)
	italicUndr = regexp.MustCompile(`(^|[^A-Za-z0-9_])_([^_\s][^_]*)_([^A-Za-z0-9_]|$)`)
	inlineSlot = regexp.MustCompile(`\x00INLINE(\d+)\x00`)
)

// Renderer converts Markdown with regular expressions.
type Renderer struct{}

// New creates a built-in renderer.
func New() *Renderer {
	return &Renderer{}
}

// Name returns the renderer name.
func (r *Renderer) Name() string {
	return Name
}

// Render converts markdown to HTML. The error is always nil.
func (r *Renderer) Render(markdown string) (string, error) {
	return RenderString(markdown), nil
}

// RenderString converts markdown to HTML.
func RenderString(markdown string) string {
	text := strings.ReplaceAll(markdown, "\r\n", "\n")

	// Fenced blocks are lifted out first so nothing inside them is touched.
	var blocks []string
	text = fencedCode.ReplaceAllStringFunc(text, func(m string) string {
		parts := fencedCode.FindStringSubmatch(m)
		class := ""
		if parts[1] != "" {
			class = fmt.Sprintf(` class="language-%s"`, parts[1])
		}
		blocks = append(blocks, fmt.Sprintf("<pre><code%s>%s</code></pre>", class, html.EscapeString(parts[2])))
		return fmt.Sprintf("\n\x00CODE%d\x00\n", len(blocks)-1)
	})

	var (
		out   []string
		para  []string
		items []string
	)
	flushPara := func() {
		if len(para) == 0 {
			return
		}
		rendered := make([]string, len(para))
		for i, line := range para {
			rendered[i] = renderInline(line)
		}
		out = append(out, "<p>"+strings.Join(rendered, "<br />\n")+"</p>")
		para = nil
	}
	flushList := func() {
		if len(items) == 0 {
			return
		}
		var b strings.Builder
		b.WriteString("<ul>\n")
		for _, item := range items {
			b.WriteString("<li>" + renderInline(item) + "</li>\n")
		}
		b.WriteString("</ul>")
		out = append(out, b.String())
		items = nil
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			flushPara()
			flushList()
		case placeholder.MatchString(trimmed):
			flushPara()
			flushList()
			n, _ := strconv.Atoi(placeholder.FindStringSubmatch(trimmed)[1])
			if n < len(blocks) {
				out = append(out, blocks[n])
			}
		case heading.MatchString(trimmed):
			flushPara()
			flushList()
			m := heading.FindStringSubmatch(trimmed)
			level := len(m[1])
			out = append(out, fmt.Sprintf("<h%d>%s</h%d>", level, renderInline(m[2]), level))
		case listItem.MatchString(line) && !isRule(trimmed):
			flushPara()
			items = append(items, listItem.FindStringSubmatch(line)[1])
		case isRule(trimmed):
			flushPara()
			flushList()
			out = append(out, "<hr />")
		case blockHTML.MatchString(line):
			flushPara()
			flushList()
			out = append(out, line)
		default:
			flushList()
			para = append(para, trimmed)
		}
	}
	flushPara()
	flushList()

	return strings.Join(out, "\n")
}

func isRule(line string) bool {
	if len(line) < 3 {
		return false
	}
	c := line[0]
	if c != '-' && c != '*' && c != '_' {
		return false
	}
	for i := 0; i < len(line); i++ {
		if line[i] != c && line[i] != ' ' {
			return false
		}
	}
	return true
}

// renderInline applies span-level rules. Code spans are protected first so
// emphasis markers inside them survive.
func renderInline(s string) string {
	var spans []string
	protect := func(v string) string {
		spans = append(spans, v)
		return fmt.Sprintf("\x00INLINE%d\x00", len(spans)-1)
	}

	s = inlineCode.ReplaceAllStringFunc(s, func(m string) string {
		return protect("<code>" + html.EscapeString(inlineCode.FindStringSubmatch(m)[1]) + "</code>")
	})
	s = image.ReplaceAllStringFunc(s, func(m string) string {
		p := image.FindStringSubmatch(m)
		return protect(fmt.Sprintf(`<img src="%s" alt="%s"%s />`,
			html.EscapeString(p[2]), html.EscapeString(p[1]), titleAttr(p[3])))
	})
	s = link.ReplaceAllStringFunc(s, func(m string) string {
		p := link.FindStringSubmatch(m)
		return fmt.Sprintf(`<a href="%s"%s>%s</a>`, protect(html.EscapeString(p[2])), titleAttr(p[3]), p[1])
	})
	s = boldStar.ReplaceAllString(s, "<strong>$1</strong>")
	s = boldUnder.ReplaceAllString(s, "<strong>$1</strong>")
	s = italicStar.ReplaceAllString(s, "<em>$1</em>")
	s = italicUndr.ReplaceAllString(s, "$1<em>$2</em>$3")

	return inlineSlot.ReplaceAllStringFunc(s, func(m string) string {
		n, _ := strconv.Atoi(inlineSlot.FindStringSubmatch(m)[1])
		if n < len(spans) {
			return spans[n]
		}
		return ""
	})
}

func titleAttr(title string) string {
	if title == "" {
		return ""
	}
	return fmt.Sprintf(` title="%s"`, html.EscapeString(title))
}
