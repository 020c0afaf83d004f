package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// verifierBytes yields an 86 character verifier, inside the 43-128 range
// RFC 7636 allows.
const verifierBytes = 64

// randomToken returns n random bytes, base64url encoded without padding.
func randomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// newFlowSecrets returns the CSRF state and PKCE code verifier of an
// authorization-code flow.
func newFlowSecrets() (state, verifier string, err error) {
	if state, err = randomToken(32); err != nil {
		return "", "", err
	}
	if verifier, err = randomToken(verifierBytes); err != nil {
		return "", "", err
	}
	return state, verifier, nil
}

// codeChallenge derives the S256 challenge sent with the authorize request.
func codeChallenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
