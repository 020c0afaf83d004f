package domain

import "time"

// AuthMethod defines how the GitHub credential was obtained.
type AuthMethod string

const (
	// AuthMethodNone means no credential is stored.
	AuthMethodNone AuthMethod = "none"
	// AuthMethodPAT uses a Personal Access Token.
	AuthMethodPAT AuthMethod = "pat"
	// AuthMethodOAuth uses OAuth 2.0 (authorization code with PKCE, or device flow).
	AuthMethodOAuth AuthMethod = "oauth"
)

// DefaultCredentialsID is the single credential slot used for GitHub.
const DefaultCredentialsID = "github"

// Credentials stores the bearer credential used against the remote API.
type Credentials struct {
	ID string `json:"id"`
	// AccountIdentifier is the GitHub login the token belongs to.
	AccountIdentifier string            `json:"account_identifier,omitempty"`
	Method            AuthMethod        `json:"method"`
	OAuth             *OAuthCredentials `json:"oauth,omitempty"`
	PAT               *PATCredentials   `json:"pat,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// AccessToken returns whichever bearer token is stored.
func (c *Credentials) AccessToken() string {
	switch {
	case c == nil:
		return ""
	case c.OAuth != nil:
		return c.OAuth.AccessToken
	case c.PAT != nil:
		return c.PAT.Token
	default:
		return ""
	}
}

// OAuthCredentials stores OAuth tokens.
type OAuthCredentials struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type"`
	Expiry       time.Time `json:"expiry,omitempty"`
}

// IsExpired returns true if the access token has expired.
func (c *OAuthCredentials) IsExpired() bool {
	if c.Expiry.IsZero() {
		return false
	}
	return time.Now().After(c.Expiry)
}

// PATCredentials stores a Personal Access Token.
type PATCredentials struct {
	Token string `json:"token"`
}

// AuthorizationRequest is a started authorization-code flow.
type AuthorizationRequest struct {
	URL          string
	State        string
	CodeVerifier string
	RedirectURI  string
}

// DeviceCode is a started device-code flow.
type DeviceCode struct {
	DeviceCode      string
	UserCode        string
	VerificationURI string
	ExpiresAt       time.Time
	Interval        time.Duration
}
