package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/folio/internal/core/domain"
)

type memoryCredentials struct {
	mu    sync.Mutex
	creds map[string]domain.Credentials
	saves int
}

func newMemoryCredentials(creds ...domain.Credentials) *memoryCredentials {
	m := &memoryCredentials{creds: make(map[string]domain.Credentials)}
	for _, c := range creds {
		m.creds[c.ID] = c
	}
	return m
}

func (m *memoryCredentials) Save(_ context.Context, creds domain.Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds[creds.ID] = creds
	m.saves++
	return nil
}

func (m *memoryCredentials) Get(_ context.Context, id string) (*domain.Credentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.creds[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *memoryCredentials) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.creds, id)
	return nil
}

func pat(token string) domain.Credentials {
	return domain.Credentials{
		ID:     domain.DefaultCredentialsID,
		Method: domain.AuthMethodPAT,
		PAT:    &domain.PATCredentials{Token: token},
	}
}

func TestStoreTokenProvider_NoCredentials(t *testing.T) {
	p := NewStoreTokenProvider(newMemoryCredentials(), domain.OAuthSettings{})
	ctx := context.Background()

	_, err := p.GetToken(ctx)

	assert.ErrorIs(t, err, domain.ErrAuthRequired)
	assert.False(t, p.IsAuthenticated(ctx))
	assert.Equal(t, domain.AuthMethodNone, p.AuthMethod(ctx))
}

func TestStoreTokenProvider_PAT(t *testing.T) {
	store := newMemoryCredentials(pat("ghp_one"))
	p := NewStoreTokenProvider(store, domain.OAuthSettings{})
	ctx := context.Background()

	token, err := p.GetToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ghp_one", token)
	assert.True(t, p.IsAuthenticated(ctx))
	assert.Equal(t, domain.AuthMethodPAT, p.AuthMethod(ctx))

	require.NoError(t, store.Save(ctx, pat("ghp_two")))
	token, _ = p.GetToken(ctx)
	assert.Equal(t, "ghp_one", token, "cached until invalidated")

	p.InvalidateCache()
	token, _ = p.GetToken(ctx)
	assert.Equal(t, "ghp_two", token)
}

func TestStoreTokenProvider_ExpiredWithoutRefreshToken(t *testing.T) {
	store := newMemoryCredentials(domain.Credentials{
		ID:     domain.DefaultCredentialsID,
		Method: domain.AuthMethodOAuth,
		OAuth:  &domain.OAuthCredentials{AccessToken: "gho_old", Expiry: time.Now().Add(-time.Minute)},
	})
	p := NewStoreTokenProvider(store, domain.OAuthSettings{ClientID: "client"})

	_, err := p.GetToken(context.Background())

	assert.ErrorIs(t, err, domain.ErrAuthInvalid)
}

func TestStoreTokenProvider_Refresh(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "ghr_refresh", r.PostForm.Get("refresh_token"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "gho_fresh",
			"refresh_token": "ghr_next",
			"token_type":    "bearer",
			"expires_in":    28800,
		})
	}))
	defer server.Close()

	store := newMemoryCredentials(domain.Credentials{
		ID:     domain.DefaultCredentialsID,
		Method: domain.AuthMethodOAuth,
		OAuth: &domain.OAuthCredentials{
			AccessToken:  "gho_old",
			RefreshToken: "ghr_refresh",
			TokenType:    "bearer",
			Expiry:       time.Now().Add(time.Minute),
		},
	})
	p := NewStoreTokenProvider(store, domain.OAuthSettings{ClientID: "client", ClientSecret: "secret"}).
		WithEndpoint(oauth2.Endpoint{TokenURL: server.URL, AuthStyle: oauth2.AuthStyleInParams})
	ctx := context.Background()

	token, err := p.GetToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "gho_fresh", token)

	saved, err := store.Get(ctx, domain.DefaultCredentialsID)
	require.NoError(t, err)
	assert.Equal(t, "gho_fresh", saved.OAuth.AccessToken)
	assert.Equal(t, "ghr_next", saved.OAuth.RefreshToken)
	assert.True(t, saved.OAuth.Expiry.After(time.Now().Add(7*time.Hour)))
	assert.Equal(t, 1, store.saves)
}

func TestStoreTokenProvider_LongLivedOAuthToken(t *testing.T) {
	store := newMemoryCredentials(domain.Credentials{
		ID:     domain.DefaultCredentialsID,
		Method: domain.AuthMethodOAuth,
		OAuth:  &domain.OAuthCredentials{AccessToken: "gho_forever"},
	})
	p := NewStoreTokenProvider(store, domain.OAuthSettings{})

	token, err := p.GetToken(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "gho_forever", token)
	assert.Zero(t, store.saves)
}
