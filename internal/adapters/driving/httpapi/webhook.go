package httpapi

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/custodia-labs/folio/internal/core/domain"
)

const (
	headerSignature = "X-Hub-Signature-256"
	headerEvent     = "X-GitHub-Event"
	signaturePrefix = "sha256="
)

type pullRequestEvent struct {
	Action      string `json:"action"`
	Number      int    `json:"number"`
	PullRequest struct {
		Merged bool `json:"merged"`
		User   struct {
			Login string `json:"login"`
		} `json:"user"`
	} `json:"pull_request"`
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if s.config.WebhookSecret == "" {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "webhook secret is not configured"})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "payload too large"})
		return
	}
	if err := VerifySignature(s.config.WebhookSecret, body, r.Header.Get(headerSignature)); err != nil {
		log.Warn("webhook rejected: %v", err)
		writeError(w, err)
		return
	}

	event := r.Header.Get(headerEvent)
	switch event {
	case "ping":
		writeJSON(w, http.StatusOK, domain.Succeeded("pong"))
	case "push":
		s.handlePush(w, r, body)
	case "pull_request":
		s.handlePullRequest(w, r, body)
	default:
		writeJSON(w, http.StatusOK, domain.Succeeded(fmt.Sprintf("Ignored %q event", event)))
	}
}

func (s *Server) handlePush(w http.ResponseWriter, r *http.Request, body []byte) {
	if s.ports.Sync == nil {
		notImplemented(w, "sync")
		return
	}
	var event domain.PushEvent
	if err := json.Unmarshal(body, &event); err != nil {
		writeError(w, fmt.Errorf("%w: decode push event: %v", domain.ErrInvalidInput, err))
		return
	}
	res := s.ports.Sync.HandleInboundEvent(r.Context(), event)
	log.Info("push to %s: %s", event.Ref, res.Message)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handlePullRequest(w http.ResponseWriter, r *http.Request, body []byte) {
	var event pullRequestEvent
	if err := json.Unmarshal(body, &event); err != nil {
		writeError(w, fmt.Errorf("%w: decode pull_request event: %v", domain.ErrInvalidInput, err))
		return
	}
	if event.Action != "closed" {
		writeJSON(w, http.StatusOK, domain.Succeeded(fmt.Sprintf("Ignored pull_request %s", event.Action)))
		return
	}
	if s.ports.Submissions == nil {
		notImplemented(w, "submissions")
		return
	}

	log.Info("pull request #%d by %s closed", event.Number, event.PullRequest.User.Login)
	// Listings are cached per viewer, and any viewer may list this PR.
	n, err := s.ports.Submissions.Invalidate(r.Context(), "")
	if err != nil {
		writeError(w, err)
		return
	}
	res := domain.Succeeded(fmt.Sprintf("Invalidated submissions for #%d", event.Number))
	res.Cleared = n
	writeJSON(w, http.StatusOK, res)
}

// VerifySignature checks a sha256= HMAC of body against header in constant
// time.
func VerifySignature(secret string, body []byte, header string) error {
	if !strings.HasPrefix(header, signaturePrefix) {
		return fmt.Errorf("%w: missing %s", domain.ErrSignatureInvalid, headerSignature)
	}
	got, err := hex.DecodeString(strings.TrimPrefix(header, signaturePrefix))
	if err != nil {
		return fmt.Errorf("%w: malformed signature", domain.ErrSignatureInvalid)
	}
	if !hmac.Equal(got, Sign(secret, body)) {
		return domain.ErrSignatureInvalid
	}
	return nil
}

// Sign returns the raw HMAC-SHA256 of body.
func Sign(secret string, body []byte) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return mac.Sum(nil)
}
