package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

const postColumns = `id, type, slug, title, content, excerpt, status, author_id,
	date, modified, categories, tags, featured_image, custom`

// postStore implements driven.PostStore over the posts table.
type postStore struct {
	store *Store
}

// Ensure postStore implements the interface.
var _ driven.PostStore = (*postStore)(nil)

// List returns one page of matching posts, newest first, and the total.
func (s *postStore) List(ctx context.Context, q domain.Query) ([]domain.Post, int, error) {
	q = q.Normalize()

	where := []string{"type = ?"}
	args := []any{q.Type}
	if q.Status != domain.StatusAny {
		where = append(where, "status = ?")
		args = append(args, q.Status)
	}
	if q.Search != "" {
		where = append(where, `LOWER(title || ' ' || content) LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(strings.ToLower(q.Search))+"%")
	}
	if q.Slug != "" {
		where = append(where, "slug = ?")
		args = append(args, q.Slug)
	}
	if len(q.Exclude) > 0 {
		where = append(where, "slug NOT IN (?"+strings.Repeat(", ?", len(q.Exclude)-1)+")")
		for _, slug := range q.Exclude {
			args = append(args, slug)
		}
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM posts WHERE "+clause, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting posts: %w", err)
	}

	query := "SELECT " + postColumns + " FROM posts WHERE " + clause + " ORDER BY date DESC, id ASC"
	if q.PageSize != domain.AllPages {
		query += " LIMIT ? OFFSET ?"
		args = append(args, q.PageSize, (q.Page-1)*q.PageSize)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.Post //nolint:prealloc // size unknown from query
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, 0, err
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating posts: %w", err)
	}
	return posts, total, nil
}

// Count returns the number of posts of a type with the given status.
func (s *postStore) Count(ctx context.Context, postType, status string) (int, error) {
	query := "SELECT COUNT(*) FROM posts WHERE type = ?"
	args := []any{postType}
	if status != "" && status != domain.StatusAny {
		query += " AND status = ?"
		args = append(args, status)
	}
	var n int
	if err := s.store.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting posts: %w", err)
	}
	return n, nil
}

// Types returns the distinct stored post types in name order.
func (s *postStore) Types(ctx context.Context) ([]string, error) {
	rows, err := s.store.db.QueryContext(ctx, "SELECT DISTINCT type FROM posts ORDER BY type")
	if err != nil {
		return nil, fmt.Errorf("querying post types: %w", err)
	}
	defer rows.Close()

	var types []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scanning post type: %w", err)
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating post types: %w", err)
	}
	return types, nil
}

// Get returns nil and no error when no post of the type has the slug.
func (s *postStore) Get(ctx context.Context, postType, slug string) (*domain.Post, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT "+postColumns+" FROM posts WHERE type = ? AND slug = ?", postType, slug)
	if err != nil {
		return nil, fmt.Errorf("querying post: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("querying post: %w", err)
		}
		return nil, nil
	}
	return scanPost(rows)
}

// Save upserts by (type, slug) and writes the row ID back into post.
func (s *postStore) Save(ctx context.Context, post *domain.Post) error {
	if post == nil {
		return domain.ErrInvalidInput
	}
	if post.Type == "" || post.Slug == "" || post.Title == "" {
		return domain.ErrMissingRequiredField
	}
	status := post.Status
	if status == "" {
		status = domain.StatusPublish
	}

	categories, err := marshalNullable(post.Categories)
	if err != nil {
		return fmt.Errorf("marshalling categories: %w", err)
	}
	tags, err := marshalNullable(post.Tags)
	if err != nil {
		return fmt.Errorf("marshalling tags: %w", err)
	}
	custom, err := marshalNullable(post.Custom)
	if err != nil {
		return fmt.Errorf("marshalling custom fields: %w", err)
	}

	var id int64
	err = s.store.db.QueryRowContext(ctx, `
		INSERT INTO posts (type, slug, title, content, excerpt, status, author_id,
			date, modified, categories, tags, featured_image, custom)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(type, slug) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			excerpt = excluded.excerpt,
			status = excluded.status,
			author_id = excluded.author_id,
			date = excluded.date,
			modified = excluded.modified,
			categories = excluded.categories,
			tags = excluded.tags,
			featured_image = excluded.featured_image,
			custom = excluded.custom
		RETURNING id
	`, post.Type, post.Slug, post.Title, post.Content, post.Excerpt, status, post.AuthorID,
		unixNanos(post.Date), unixNanos(post.Modified), categories, tags,
		post.FeaturedImage, custom,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("saving post: %w", err)
	}

	post.ID = id
	post.Status = status
	post.Source = domain.SourceDatabase
	return nil
}

// scanPost scans a posts row in postColumns order.
func scanPost(rows *sql.Rows) (*domain.Post, error) {
	var p domain.Post
	var date, modified int64
	var categories, tags, custom sql.NullString

	if err := rows.Scan(&p.ID, &p.Type, &p.Slug, &p.Title, &p.Content, &p.Excerpt,
		&p.Status, &p.AuthorID, &date, &modified, &categories, &tags,
		&p.FeaturedImage, &custom); err != nil {
		return nil, fmt.Errorf("scanning post: %w", err)
	}

	p.Date = fromUnixNanos(date)
	p.Modified = fromUnixNanos(modified)
	p.Source = domain.SourceDatabase
	if err := unmarshalNullable(categories, &p.Categories); err != nil {
		return nil, fmt.Errorf("unmarshalling categories: %w", err)
	}
	if err := unmarshalNullable(tags, &p.Tags); err != nil {
		return nil, fmt.Errorf("unmarshalling tags: %w", err)
	}
	if err := unmarshalNullable(custom, &p.Custom); err != nil {
		return nil, fmt.Errorf("unmarshalling custom fields: %w", err)
	}
	return &p, nil
}

// marshalNullable returns nil for values that encode as JSON null.
func marshalNullable(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(data) == jsonNull {
		return nil, nil
	}
	return string(data), nil
}

func unmarshalNullable(s sql.NullString, v any) error {
	if !s.Valid || s.String == "" || s.String == jsonNull {
		return nil
	}
	return json.Unmarshal([]byte(s.String), v)
}

// escapeLike escapes LIKE wildcards so search terms match literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
