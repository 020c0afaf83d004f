// Package oauth runs the loopback redirect endpoint of the GitHub
// authorization-code flow.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// CallbackPath is the path GitHub redirects to.
const CallbackPath = "/callback"

// ErrStateMismatch is returned when the callback carries an unexpected state.
var ErrStateMismatch = errors.New("oauth state mismatch")

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Folio</title>
<style>
body { font-family: -apple-system, 'Segoe UI', sans-serif; display: grid; place-items: center; height: 100vh; margin: 0; background: #f6f6f4; }
main { text-align: center; background: #fff; padding: 40px 56px; border-radius: 12px; border: 1px solid #ddd; }
h1 { color: #2d3142; font-size: 22px; margin: 0 0 8px; }
p { color: #6b6f7b; margin: 0; }
</style>
</head>
<body><main><h1>{{.Title}}</h1><p>{{.Message}}</p></main></body>
</html>`))

type outcome struct {
	code string
	err  error
}

// CallbackServer accepts one authorization redirect on 127.0.0.1.
type CallbackServer struct {
	listener net.Listener
	server   *http.Server
	done     chan outcome
	once     sync.Once

	mu    sync.Mutex
	state string
}

// Listen binds the first free port in [from, to] and starts serving.
func Listen(from, to int) (*CallbackServer, error) {
	if from > to {
		return nil, fmt.Errorf("empty port range %d-%d", from, to)
	}
	var lastErr error
	for port := from; port <= to; port++ {
		l, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
		if err != nil {
			lastErr = err
			continue
		}
		return serve(l), nil
	}
	return nil, fmt.Errorf("no free port in %d-%d: %w", from, to, lastErr)
}

func serve(l net.Listener) *CallbackServer {
	s := &CallbackServer{listener: l, done: make(chan outcome, 1)}
	mux := http.NewServeMux()
	mux.HandleFunc(http.MethodGet+" "+CallbackPath, s.handle)
	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
	go func() {
		if err := s.server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.finish(outcome{err: err})
		}
	}()
	return s
}

// Expect sets the state the redirect must carry. Redirects that arrive
// before it is set are rejected.
func (s *CallbackServer) Expect(state string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

func (s *CallbackServer) expected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *CallbackServer) handle(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		err    error
		reason string
	)
	switch want := s.expected(); {
	case q.Get("error") != "":
		reason = q.Get("error_description")
		err = fmt.Errorf("authorization denied: %s: %s", q.Get("error"), reason)
	case want == "" || q.Get("state") != want:
		reason = "The request did not match this login attempt."
		err = ErrStateMismatch
	case q.Get("code") == "":
		reason = "No authorization code was received."
		err = errors.New("no authorization code received")
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err != nil {
		s.finish(outcome{err: err})
		w.WriteHeader(http.StatusBadRequest)
		_ = page.Execute(w, map[string]string{"Title": "Authorization failed", "Message": reason})
		return
	}
	s.finish(outcome{code: q.Get("code")})
	_ = page.Execute(w, map[string]string{
		"Title":   "Signed in to Folio",
		"Message": "You can close this window and return to the terminal.",
	})
}

// finish keeps the first outcome only.
func (s *CallbackServer) finish(o outcome) {
	s.once.Do(func() { s.done <- o })
}

// Wait blocks until the redirect arrives or ctx ends.
func (s *CallbackServer) Wait(ctx context.Context) (string, error) {
	select {
	case o := <-s.done:
		return o.code, o.err
	case <-ctx.Done():
		return "", fmt.Errorf("waiting for authorization callback: %w", ctx.Err())
	}
}

// Close shuts the server down.
func (s *CallbackServer) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *CallbackServer) Port() int {
	return s.listener.Addr().(*net.TCPAddr).Port
}

// RedirectURI is the URI to hand to GitHub as redirect_uri.
func (s *CallbackServer) RedirectURI() string {
	return "http://localhost:" + strconv.Itoa(s.Port()) + CallbackPath
}
