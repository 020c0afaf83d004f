package github

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	ghoauth "golang.org/x/oauth2/github"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure OAuth implements the interface.
var _ driven.OAuthProvider = (*OAuth)(nil)

// OAuth runs GitHub's OAuth flows for a registered OAuth app.
type OAuth struct {
	clientID     string
	clientSecret string
	scopes       []string
	endpoint     oauth2.Endpoint
	api          Config
}

// NewOAuth creates a provider for the OAuth app. api is used to resolve the
// login a token belongs to.
func NewOAuth(settings domain.OAuthSettings, api Config) *OAuth {
	if api.Timeout <= 0 {
		api.Timeout = DefaultTimeout
	}
	return &OAuth{
		clientID:     settings.ClientID,
		clientSecret: settings.ClientSecret,
		scopes:       settings.Scopes,
		endpoint:     ghoauth.Endpoint,
		api:          api,
	}
}

// WithEndpoint overrides the github.com OAuth endpoints.
func (o *OAuth) WithEndpoint(endpoint oauth2.Endpoint) *OAuth {
	o.endpoint = endpoint
	return o
}

func (o *OAuth) config(redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     o.clientID,
		ClientSecret: o.clientSecret,
		Endpoint:     o.endpoint,
		RedirectURL:  redirectURI,
		Scopes:       o.scopes,
	}
}

func (o *OAuth) requireClient() error {
	if o.clientID == "" {
		return fmt.Errorf("%w: oauth.client_id is not set", domain.ErrInvalidInput)
	}
	return nil
}

// AuthCodeURL builds the authorize URL.
func (o *OAuth) AuthCodeURL(state, challenge, redirectURI string) string {
	return o.config(redirectURI).AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", challenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

// Exchange trades an authorization code for tokens.
func (o *OAuth) Exchange(ctx context.Context, code, codeVerifier, redirectURI string) (*domain.OAuthCredentials, error) {
	if err := o.requireClient(); err != nil {
		return nil, err
	}
	token, err := o.config(redirectURI).Exchange(ctx, code, oauth2.VerifierOption(codeVerifier))
	if err != nil {
		return nil, mapOAuthError(err)
	}
	return toCredentials(token), nil
}

// DeviceAuth starts the device-code flow.
func (o *OAuth) DeviceAuth(ctx context.Context) (*domain.DeviceCode, error) {
	if err := o.requireClient(); err != nil {
		return nil, err
	}
	resp, err := o.config("").DeviceAuth(ctx)
	if err != nil {
		return nil, mapOAuthError(err)
	}
	return &domain.DeviceCode{
		DeviceCode:      resp.DeviceCode,
		UserCode:        resp.UserCode,
		VerificationURI: resp.VerificationURI,
		ExpiresAt:       resp.Expiry,
		Interval:        time.Duration(resp.Interval) * time.Second,
	}, nil
}

// PollDevice waits for the user to approve the device code.
func (o *OAuth) PollDevice(ctx context.Context, code *domain.DeviceCode) (*domain.OAuthCredentials, error) {
	if err := o.requireClient(); err != nil {
		return nil, err
	}
	token, err := o.config("").DeviceAccessToken(ctx, &oauth2.DeviceAuthResponse{
		DeviceCode:      code.DeviceCode,
		UserCode:        code.UserCode,
		VerificationURI: code.VerificationURI,
		Expiry:          code.ExpiresAt,
		Interval:        int64(code.Interval / time.Second),
	})
	if err != nil {
		return nil, mapOAuthError(err)
	}
	return toCredentials(token), nil
}

// UserLogin returns the login that owns token.
func (o *OAuth) UserLogin(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", domain.ErrAuthRequired
	}
	client := NewClient(staticToken(token), o.api)
	return client.CurrentUser(ctx)
}

// mapOAuthError classifies token endpoint failures. Rejected grants are
// authentication errors; anything else is a transport failure.
func mapOAuthError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		msg := retrieveErr.ErrorCode
		if retrieveErr.ErrorDescription != "" {
			msg += ": " + retrieveErr.ErrorDescription
		}
		return fmt.Errorf("%w: %s", domain.ErrAuthInvalid, msg)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, err)
}

func toCredentials(token *oauth2.Token) *domain.OAuthCredentials {
	return &domain.OAuthCredentials{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		Expiry:       token.Expiry,
	}
}

// staticToken is a TokenProvider for a token that is not stored yet.
type staticToken string

func (t staticToken) GetToken(context.Context) (string, error) { return string(t), nil }

func (t staticToken) AuthMethod(context.Context) domain.AuthMethod { return domain.AuthMethodPAT }

func (t staticToken) IsAuthenticated(context.Context) bool { return t != "" }
