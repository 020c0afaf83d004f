package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/natefinch/atomic"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/frontmatter"
)

// Ensure Writer implements the interface.
var _ driven.ContentWriter = (*Writer)(nil)

const (
	dirPerms  = 0755
	filePerms = 0644

	dateLayout     = "2006-01-02 15:04:05"
	filenameLayout = "2006-01-02"
)

// Writer writes stored posts out as Markdown content files.
type Writer struct {
	authors driven.AuthorDirectory
}

// NewWriter creates a content writer. authors may be nil, in which case the
// author field is omitted.
func NewWriter(authors driven.AuthorDirectory) *Writer {
	return &Writer{authors: authors}
}

// WritePost writes post to {dir}/{type}/{YYYY-MM-DD}-{slug}.md, replacing any
// existing file atomically. Posts without a date are written as {slug}.md.
func (w *Writer) WritePost(ctx context.Context, dir string, post domain.Post) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := checkSegment("type", post.Type); err != nil {
		return "", err
	}
	if err := checkSegment("slug", post.Slug); err != nil {
		return "", err
	}

	typeDir := filepath.Join(dir, post.Type)
	if err := os.MkdirAll(typeDir, dirPerms); err != nil {
		return "", fmt.Errorf("create %s: %w", typeDir, err)
	}

	fm, err := w.frontMatter(ctx, post)
	if err != nil {
		return "", err
	}
	path := filepath.Join(typeDir, Filename(post))
	if err := writeAtomic(path, frontmatter.Marshal(fm, post.Content)); err != nil {
		return "", err
	}
	return path, nil
}

// Filename returns the content file name for post.
func Filename(post domain.Post) string {
	if post.Date.IsZero() {
		return post.Slug + ".md"
	}
	return post.Date.Format(filenameLayout) + "-" + post.Slug + ".md"
}

func (w *Writer) frontMatter(ctx context.Context, post domain.Post) (domain.FrontMatter, error) {
	fm := domain.NewFrontMatter()
	fm.Set(domain.FieldTitle, post.Title)
	fm.Set(domain.FieldSlug, post.Slug)
	if !post.Date.IsZero() {
		fm.Set(domain.FieldDate, formatDate(post.Date))
	}
	status := post.Status
	if status == "" {
		status = domain.StatusPublish
	}
	fm.Set(domain.FieldStatus, status)

	if w.authors != nil && post.AuthorID != 0 {
		author, err := w.authors.Get(ctx, post.AuthorID)
		if err != nil {
			return fm, fmt.Errorf("resolve author %d: %w", post.AuthorID, err)
		}
		if author != nil && author.Login != "" {
			fm.Set(domain.FieldAuthor, author.Login)
		}
	}

	if post.Excerpt != "" {
		fm.Set(domain.FieldExcerpt, singleLine(post.Excerpt))
	}
	if !post.Modified.IsZero() {
		fm.Set(domain.FieldModified, formatDate(post.Modified))
	}
	if len(post.Categories) > 0 {
		fm.SetList(domain.FieldCategories, post.Categories)
	}
	if len(post.Tags) > 0 {
		fm.SetList(domain.FieldTags, post.Tags)
	}
	if post.FeaturedImage != "" {
		fm.Set(domain.FieldFeaturedImage, post.FeaturedImage)
	}

	keys := make([]string, 0, len(post.Custom))
	for k := range post.Custom {
		if !domain.IsKnownField(k) && k != "" && !strings.ContainsAny(k, ": \n") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fm.Set(k, singleLine(post.Custom[k]))
	}
	return fm, nil
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// singleLine folds newlines; front matter values are one line each.
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// checkSegment rejects values that would leave the output directory.
func checkSegment(field, v string) error {
	if v == "" || v == "." || v == ".." || strings.ContainsAny(v, `/\`) {
		return fmt.Errorf("%w: invalid %s %q", domain.ErrInvalidInput, field, v)
	}
	return nil
}

func writeAtomic(path, content string) error {
	if err := atomic.WriteFile(path, strings.NewReader(content)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	// atomic.WriteFile doesn't set permissions for new files.
	if err := os.Chmod(path, filePerms); err != nil {
		return fmt.Errorf("set permissions on %s: %w", path, err)
	}
	return nil
}
