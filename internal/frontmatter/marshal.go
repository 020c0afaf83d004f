package frontmatter

import (
	"strings"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// Marshal renders front matter and body as a content file. Keys are written
// in insertion order. Output parses back to the same values for scalars and
// lists without leading or trailing quote characters.
func Marshal(fm domain.FrontMatter, body string) string {
	var b strings.Builder
	b.WriteString(Delimiter)
	b.WriteByte('\n')

	for _, key := range fm.Keys() {
		v, _ := fm.Get(key)
		b.WriteString(key)
		b.WriteByte(':')
		if v.IsList {
			b.WriteByte('\n')
			for _, item := range v.List {
				b.WriteString("  - ")
				b.WriteString(quoteIfNeeded(item))
				b.WriteByte('\n')
			}
			continue
		}
		b.WriteByte(' ')
		b.WriteString(quoteIfNeeded(v.Scalar))
		b.WriteByte('\n')
	}

	b.WriteString(Delimiter)
	b.WriteByte('\n')
	if body != "" {
		b.WriteByte('\n')
		b.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// quoteIfNeeded wraps values the parser would otherwise misread: empty
// strings (which would open a list), values with colons or surrounding
// whitespace, and values that look like list items or delimiters.
func quoteIfNeeded(v string) string {
	switch {
	case v == "",
		strings.ContainsAny(v, ":#"),
		strings.TrimSpace(v) != v,
		strings.HasPrefix(v, "-"):
		return `"` + v + `"`
	}
	return v
}
