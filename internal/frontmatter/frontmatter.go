// Package frontmatter splits content files into a metadata block and a
// Markdown body, and writes them back.
//
// The accepted format is a small, lenient YAML-like subset:
//
//	---
//	title: "Hello World"
//	slug: hello-world
//	tags:
//	  - go
//	  - cms
//	---
//	Body text.
//
// Parsing never fails. Text without a complete delimited block is returned
// whole as the body with empty metadata.
package frontmatter

import (
	"strings"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// Delimiter opens and closes the metadata block.
const Delimiter = "---"

// Parse splits raw into front matter and body.
func Parse(raw string) (domain.FrontMatter, string) {
	fm := domain.NewFrontMatter()

	block, body, ok := split(raw)
	if !ok {
		return fm, raw
	}

	currentList := ""
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if item, isItem := listItem(trimmed); isItem {
			if currentList != "" {
				fm.Append(currentList, unquote(item))
			}
			continue
		}

		key, value, found := strings.Cut(trimmed, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		value = strings.TrimSpace(value)

		if value == "" {
			currentList = key
			fm.SetList(key, nil)
			continue
		}
		currentList = ""
		fm.Set(key, unquote(value))
	}

	return fm, body
}

// split locates the delimited block. ok is false when raw does not open with
// a delimiter line or the block is never closed.
func split(raw string) (block, body string, ok bool) {
	first, rest, found := strings.Cut(raw, "\n")
	if !found || strings.TrimRight(first, "\r") != Delimiter {
		return "", "", false
	}

	var lines []string
	for {
		line, remaining, more := strings.Cut(rest, "\n")
		if strings.TrimRight(line, "\r") == Delimiter {
			return strings.Join(lines, "\n"), strings.TrimLeft(remaining, "\r\n"), true
		}
		if !more {
			return "", "", false
		}
		lines = append(lines, line)
		rest = remaining
	}
}

// listItem recognises "- item". A bare "-" is an empty item.
func listItem(line string) (string, bool) {
	if line == "-" {
		return "", true
	}
	if len(line) < 2 || line[0] != '-' {
		return "", false
	}
	if line[1] != ' ' && line[1] != '\t' {
		return "", false
	}
	return strings.TrimSpace(line[2:]), true
}

func unquote(v string) string {
	return strings.Trim(v, `"'`)
}
