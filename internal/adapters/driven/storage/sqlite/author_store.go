package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// AuthorStore is the authors table. Logins compare case-insensitively.
type AuthorStore struct {
	store *Store
}

// Ensure AuthorStore implements the interface.
var _ driven.AuthorDirectory = (*AuthorStore)(nil)

// ResolveLogin returns the author ID for login and whether it exists.
func (s *AuthorStore) ResolveLogin(ctx context.Context, login string) (int64, bool, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return 0, false, nil
	}
	var id int64
	err := s.store.db.QueryRowContext(ctx, "SELECT id FROM authors WHERE login = ?", login).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("resolving author: %w", err)
	}
	return id, true, nil
}

// Get returns nil and no error for an unknown ID.
func (s *AuthorStore) Get(ctx context.Context, id int64) (*domain.Author, error) {
	var a domain.Author
	err := s.store.db.QueryRowContext(ctx,
		"SELECT id, login, display_name FROM authors WHERE id = ?", id,
	).Scan(&a.ID, &a.Login, &a.DisplayName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading author: %w", err)
	}
	return &a, nil
}

// Save creates or updates an author by login and sets author.ID.
func (s *AuthorStore) Save(ctx context.Context, author *domain.Author) error {
	if author == nil {
		return domain.ErrInvalidInput
	}
	author.Login = strings.TrimSpace(author.Login)
	if author.Login == "" {
		return domain.ErrMissingRequiredField
	}
	err := s.store.db.QueryRowContext(ctx, `
		INSERT INTO authors (login, display_name) VALUES (?, ?)
		ON CONFLICT(login) DO UPDATE SET display_name = excluded.display_name
		RETURNING id
	`, author.Login, author.DisplayName).Scan(&author.ID)
	if err != nil {
		return fmt.Errorf("saving author: %w", err)
	}
	return nil
}

// List returns every author ordered by ID.
func (s *AuthorStore) List(ctx context.Context) ([]domain.Author, error) {
	rows, err := s.store.db.QueryContext(ctx, "SELECT id, login, display_name FROM authors ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying authors: %w", err)
	}
	defer rows.Close()

	var authors []domain.Author
	for rows.Next() {
		var a domain.Author
		if err := rows.Scan(&a.ID, &a.Login, &a.DisplayName); err != nil {
			return nil, fmt.Errorf("scanning author: %w", err)
		}
		authors = append(authors, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating authors: %w", err)
	}
	return authors, nil
}
