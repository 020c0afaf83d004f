package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

type credentialsStore struct {
	store *Store
}

var _ driven.CredentialsStore = (*credentialsStore)(nil)

// secret is the token half of a credential, kept as one JSON column so a
// switch between PAT and OAuth replaces it whole.
type secret struct {
	OAuth *domain.OAuthCredentials `json:"oauth,omitempty"`
	PAT   *domain.PATCredentials   `json:"pat,omitempty"`
}

// Save upserts creds. The original created_at survives a replace.
func (s *credentialsStore) Save(ctx context.Context, creds domain.Credentials) error {
	if creds.ID == "" {
		return fmt.Errorf("%w: credentials id", domain.ErrInvalidInput)
	}
	payload, err := json.Marshal(secret{OAuth: creds.OAuth, PAT: creds.PAT})
	if err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO credentials (id, login, method, secret, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			login = excluded.login,
			method = excluded.method,
			secret = excluded.secret,
			updated_at = excluded.updated_at
	`, creds.ID, nullString(creds.AccountIdentifier), string(creds.Method), string(payload),
		creds.CreatedAt, creds.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving credentials %s: %w", creds.ID, err)
	}
	return nil
}

// Get returns nil, nil when nothing is stored under id.
func (s *credentialsStore) Get(ctx context.Context, id string) (*domain.Credentials, error) {
	var (
		creds   = domain.Credentials{ID: id}
		login   sql.NullString
		method  string
		payload string
	)
	err := s.store.db.QueryRowContext(ctx,
		`SELECT login, method, secret, created_at, updated_at FROM credentials WHERE id = ?`, id,
	).Scan(&login, &method, &payload, &creds.CreatedAt, &creds.UpdatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("loading credentials %s: %w", id, err)
	}

	var sec secret
	if err := json.Unmarshal([]byte(payload), &sec); err != nil {
		return nil, fmt.Errorf("decoding credentials %s: %w", id, err)
	}
	creds.AccountIdentifier = login.String
	creds.Method = domain.AuthMethod(method)
	creds.OAuth, creds.PAT = sec.OAuth, sec.PAT
	return &creds, nil
}

func (s *credentialsStore) Delete(ctx context.Context, id string) error {
	if _, err := s.store.db.ExecContext(ctx, `DELETE FROM credentials WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting credentials %s: %w", id, err)
	}
	return nil
}
