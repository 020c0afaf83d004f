package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure Repository implements the interface.
var _ driven.ContentRepository = (*Repository)(nil)

// ContentExt is the extension of content files.
const ContentExt = ".md"

// Repository reads the content root from the local filesystem.
type Repository struct {
	root string
}

// NewRepository creates a repository rooted at root. The root need not exist
// yet; a missing root has no types.
func NewRepository(root string) (*Repository, error) {
	if root == "" {
		return nil, fmt.Errorf("%w: content root is required", domain.ErrInvalidInput)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve content root: %w", err)
	}
	return &Repository{root: abs}, nil
}

// Root returns the absolute content root.
func (r *Repository) Root() string {
	return r.root
}

// Types lists the visible directories under the root, sorted.
func (r *Repository) Types(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(r.root)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read content root: %w", err)
	}

	types := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() && !isHidden(e.Name()) {
			types = append(types, e.Name())
		}
	}
	sort.Strings(types)
	return types, nil
}

// ListFiles returns the Markdown files directly inside the type directory,
// sorted by name. Subdirectories are not descended into.
func (r *Repository) ListFiles(ctx context.Context, postType string) ([]domain.ContentFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !validType(postType) {
		return nil, fmt.Errorf("%w: invalid content type %q", domain.ErrInvalidInput, postType)
	}

	dir := filepath.Join(r.root, postType)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.ContentFile{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	files := make([]domain.ContentFile, 0, len(entries))
	for _, e := range entries {
		if !IsContentFile(e.Name()) || !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		files = append(files, domain.ContentFile{
			Path:    filepath.Join(dir, e.Name()),
			Type:    postType,
			ModTime: info.ModTime(),
		})
	}
	return files, nil
}

// ReadFile returns the contents of a file under the root. Relative paths are
// resolved against the root.
func (r *Repository) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	abs, err := r.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// Freshness summarises the type's content files; see domain.Freshness.
func (r *Repository) Freshness(ctx context.Context, postType string) (string, error) {
	files, err := r.ListFiles(ctx, postType)
	if err != nil {
		return "", err
	}
	return domain.Freshness(files), nil
}

func (r *Repository) resolve(path string) (string, error) {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(r.root, abs)
	}
	abs = filepath.Clean(abs)
	rel, err := filepath.Rel(r.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s is outside the content root", domain.ErrInvalidInput, path)
	}
	return abs, nil
}

// IsContentFile reports whether name is a visible Markdown file name.
func IsContentFile(name string) bool {
	return !isHidden(name) && filepath.Ext(name) == ContentExt
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

func validType(postType string) bool {
	return postType != "" && !isHidden(postType) && !strings.ContainsAny(postType, `/\`)
}
