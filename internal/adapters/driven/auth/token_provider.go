// Package auth supplies bearer tokens from the stored GitHub credential.
package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"
	ghoauth "golang.org/x/oauth2/github"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure StoreTokenProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*StoreTokenProvider)(nil)

// StoreTokenProvider reads the credential from a CredentialsStore, caches
// the token, and refreshes expiring OAuth tokens that carry a refresh token.
type StoreTokenProvider struct {
	credentialsID string
	store         driven.CredentialsStore
	oauth         *oauth2.Config

	mu            sync.RWMutex
	cachedToken   string
	cacheExpiry   time.Time
	refreshBuffer time.Duration
}

// NewStoreTokenProvider creates a token provider for the default credential.
func NewStoreTokenProvider(store driven.CredentialsStore, settings domain.OAuthSettings) *StoreTokenProvider {
	return &StoreTokenProvider{
		credentialsID: domain.DefaultCredentialsID,
		store:         store,
		oauth: &oauth2.Config{
			ClientID:     settings.ClientID,
			ClientSecret: settings.ClientSecret,
			Endpoint:     ghoauth.Endpoint,
			Scopes:       settings.Scopes,
		},
		refreshBuffer: 5 * time.Minute,
	}
}

// WithEndpoint overrides the token endpoint used for refreshes.
func (p *StoreTokenProvider) WithEndpoint(endpoint oauth2.Endpoint) *StoreTokenProvider {
	p.oauth.Endpoint = endpoint
	return p
}

// GetToken returns a usable access token or domain.ErrAuthRequired.
func (p *StoreTokenProvider) GetToken(ctx context.Context) (string, error) {
	p.mu.RLock()
	if p.cachedToken != "" && time.Now().Before(p.cacheExpiry) {
		token := p.cachedToken
		p.mu.RUnlock()
		return token, nil
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cachedToken != "" && time.Now().Before(p.cacheExpiry) {
		return p.cachedToken, nil
	}

	creds, err := p.store.Get(ctx, p.credentialsID)
	if err != nil {
		return "", fmt.Errorf("get credentials: %w", err)
	}
	if creds.AccessToken() == "" {
		return "", domain.ErrAuthRequired
	}

	if creds.OAuth != nil && p.needsRefresh(creds.OAuth) {
		if err := p.refresh(ctx, creds); err != nil {
			return "", err
		}
	}

	p.cachedToken = creds.AccessToken()
	p.cacheExpiry = time.Now().Add(time.Hour)
	if creds.OAuth != nil && !creds.OAuth.Expiry.IsZero() {
		p.cacheExpiry = creds.OAuth.Expiry.Add(-p.refreshBuffer)
	}
	return p.cachedToken, nil
}

func (p *StoreTokenProvider) needsRefresh(tokens *domain.OAuthCredentials) bool {
	if tokens.Expiry.IsZero() {
		return false
	}
	return time.Until(tokens.Expiry) < p.refreshBuffer
}

// refresh exchanges the refresh token and saves the new tokens. An expired
// token without a refresh token means the user has to log in again.
func (p *StoreTokenProvider) refresh(ctx context.Context, creds *domain.Credentials) error {
	if creds.OAuth.RefreshToken == "" || p.oauth.ClientID == "" {
		if creds.OAuth.IsExpired() {
			return fmt.Errorf("%w: access token expired", domain.ErrAuthInvalid)
		}
		return nil
	}

	src := p.oauth.TokenSource(ctx, &oauth2.Token{
		AccessToken:  creds.OAuth.AccessToken,
		RefreshToken: creds.OAuth.RefreshToken,
		TokenType:    creds.OAuth.TokenType,
		Expiry:       time.Now().Add(-time.Second),
	})
	token, err := src.Token()
	if err != nil {
		return fmt.Errorf("%w: refresh token: %v", domain.ErrAuthInvalid, err)
	}

	creds.OAuth.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		creds.OAuth.RefreshToken = token.RefreshToken
	}
	creds.OAuth.TokenType = token.TokenType
	creds.OAuth.Expiry = token.Expiry
	creds.UpdatedAt = time.Now()

	if err := p.store.Save(ctx, *creds); err != nil {
		return fmt.Errorf("save refreshed credentials: %w", err)
	}
	return nil
}

// AuthMethod returns how the stored token was obtained.
func (p *StoreTokenProvider) AuthMethod(ctx context.Context) domain.AuthMethod {
	creds, err := p.store.Get(ctx, p.credentialsID)
	if err != nil || creds == nil {
		return domain.AuthMethodNone
	}
	return creds.Method
}

// IsAuthenticated returns true if a token is stored.
func (p *StoreTokenProvider) IsAuthenticated(ctx context.Context) bool {
	p.mu.RLock()
	if p.cachedToken != "" && time.Now().Before(p.cacheExpiry) {
		p.mu.RUnlock()
		return true
	}
	p.mu.RUnlock()

	creds, err := p.store.Get(ctx, p.credentialsID)
	return err == nil && creds.AccessToken() != ""
}

// InvalidateCache clears the cached token, e.g. after login or logout.
func (p *StoreTokenProvider) InvalidateCache() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cachedToken = ""
	p.cacheExpiry = time.Time{}
}
