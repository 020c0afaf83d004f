package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
)

// ErrMissingContentService is returned when the content service is not provided.
var ErrMissingContentService = errors.New("httpapi: content service is required")

var log = logger.Named("http")

// Ports aggregates the driving ports the HTTP server uses. Only Content is
// required; routes whose port is nil answer 501.
type Ports struct {
	Content     driving.ContentService
	Export      driving.ExportService
	Sync        driving.SyncService
	Submissions driving.SubmissionService
}

// Config configures the HTTP server.
type Config struct {
	// WebhookSecret signs inbound webhook payloads. Webhooks are refused
	// while it is empty.
	WebhookSecret string
	// MaxBodyBytes bounds webhook payloads.
	MaxBodyBytes int64
}

const defaultMaxBody = 5 << 20

// Server is the Folio HTTP API.
type Server struct {
	ports  Ports
	config Config
	mux    *http.ServeMux
}

// NewServer creates a server and registers its routes.
func NewServer(ports Ports, config Config) (*Server, error) {
	if ports.Content == nil {
		return nil, ErrMissingContentService
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = defaultMaxBody
	}
	s := &Server{ports: ports, config: config, mux: http.NewServeMux()}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc(http.MethodGet+" /posts", s.handleListPosts)
	s.mux.HandleFunc(http.MethodGet+" /posts/{type}/{slug}", s.handleGetPost)
	s.mux.HandleFunc(http.MethodGet+" /types", s.handleTypes)
	s.mux.HandleFunc(http.MethodGet+" /jobs/{id}", s.handleJobStatus)
	s.mux.HandleFunc(http.MethodPost+" /webhook", s.handleWebhook)
	s.mux.HandleFunc(http.MethodGet+" /up", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	log.Info("listening on %s", listener.Addr())
	err := httpServer.Serve(listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

type errorResponse struct {
	Error    string               `json:"error"`
	Category domain.ErrorCategory `json:"category,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	_ = encoder.Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{
		Error:    domain.UserMessage(err),
		Category: domain.Categorize(err),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrJobNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrMissingRequiredField):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSignatureInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrRemoteNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func notImplemented(w http.ResponseWriter, what string) {
	writeJSON(w, http.StatusNotImplemented, errorResponse{Error: what + " is not enabled"})
}
