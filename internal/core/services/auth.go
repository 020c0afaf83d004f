package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
)

// Ensure AuthService implements the interface.
var _ driving.AuthService = (*AuthService)(nil)

// AuthService obtains, stores and removes the GitHub credential.
type AuthService struct {
	store    driven.CredentialsStore
	provider driven.OAuthProvider
	now      func() time.Time
}

// NewAuthService creates a new auth service.
func NewAuthService(store driven.CredentialsStore, provider driven.OAuthProvider) *AuthService {
	return &AuthService{
		store:    store,
		provider: provider,
		now:      time.Now,
	}
}

// StartAuthorization generates state and a code verifier and builds the
// URL the user opens in a browser.
func (s *AuthService) StartAuthorization(redirectURI string) (*domain.AuthorizationRequest, error) {
	if redirectURI == "" {
		return nil, fmt.Errorf("%w: redirect URI required", domain.ErrInvalidInput)
	}
	state, verifier, err := newFlowSecrets()
	if err != nil {
		return nil, fmt.Errorf("generate flow secrets: %w", err)
	}
	return &domain.AuthorizationRequest{
		URL:          s.provider.AuthCodeURL(state, codeChallenge(verifier), redirectURI),
		State:        state,
		CodeVerifier: verifier,
		RedirectURI:  redirectURI,
	}, nil
}

// CompleteAuthorization exchanges code for tokens and stores them.
func (s *AuthService) CompleteAuthorization(
	ctx context.Context, req *domain.AuthorizationRequest, code string,
) (*domain.Credentials, error) {
	if req == nil || code == "" {
		return nil, fmt.Errorf("%w: authorization code required", domain.ErrInvalidInput)
	}
	tokens, err := s.provider.Exchange(ctx, code, req.CodeVerifier, req.RedirectURI)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	return s.save(ctx, domain.AuthMethodOAuth, tokens, nil)
}

// StartDevice begins the device-code flow.
func (s *AuthService) StartDevice(ctx context.Context) (*domain.DeviceCode, error) {
	return s.provider.DeviceAuth(ctx)
}

// CompleteDevice waits for the user to approve code and stores the tokens.
func (s *AuthService) CompleteDevice(ctx context.Context, code *domain.DeviceCode) (*domain.Credentials, error) {
	if code == nil {
		return nil, fmt.Errorf("%w: device code required", domain.ErrInvalidInput)
	}
	tokens, err := s.provider.PollDevice(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("poll device: %w", err)
	}
	return s.save(ctx, domain.AuthMethodOAuth, tokens, nil)
}

// SaveToken verifies a personal access token against the API and stores it.
func (s *AuthService) SaveToken(ctx context.Context, token string) (*domain.Credentials, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: token must not be empty", domain.ErrInvalidInput)
	}
	if _, err := s.provider.UserLogin(ctx, token); err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	return s.save(ctx, domain.AuthMethodPAT, nil, &domain.PATCredentials{Token: token})
}

// Current returns the stored credential.
func (s *AuthService) Current(ctx context.Context) (*domain.Credentials, error) {
	return s.store.Get(ctx, domain.DefaultCredentialsID)
}

// Logout removes the stored credential.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.store.Delete(ctx, domain.DefaultCredentialsID)
}

func (s *AuthService) save(
	ctx context.Context, method domain.AuthMethod, oauth *domain.OAuthCredentials, pat *domain.PATCredentials,
) (*domain.Credentials, error) {
	now := s.now()
	creds := domain.Credentials{
		ID:        domain.DefaultCredentialsID,
		Method:    method,
		OAuth:     oauth,
		PAT:       pat,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if existing, err := s.store.Get(ctx, creds.ID); err == nil && existing != nil {
		creds.CreatedAt = existing.CreatedAt
	}

	login, err := s.provider.UserLogin(ctx, creds.AccessToken())
	if err != nil {
		logger.Warn("could not resolve GitHub login: %v", err)
	}
	creds.AccountIdentifier = login

	if err := s.store.Save(ctx, creds); err != nil {
		return nil, fmt.Errorf("save credentials: %w", err)
	}
	return &creds, nil
}
