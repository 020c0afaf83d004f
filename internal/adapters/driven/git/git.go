package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/logger"
)

// Ensure Repo implements the interface.
var _ driven.VersionControl = (*Repo)(nil)

const (
	defaultBinary  = "git"
	defaultTimeout = 60 * time.Second
	defaultBranch  = "main"
	remoteName     = "origin"
)

var log = logger.Named("git")

var (
	hashPattern   = regexp.MustCompile(`^[0-9a-fA-F]{4,40}$`)
	branchPattern = regexp.MustCompile(`^[A-Za-z0-9._][A-Za-z0-9._/-]*$`)
)

// Config configures the git adapter.
type Config struct {
	// Root is the working tree; it is the content root.
	Root string
	// Binary is the git executable name or path.
	Binary string
	// Timeout bounds every git invocation.
	Timeout time.Duration
	// Branch is the initial branch of a repository created by the adapter.
	Branch      string
	AuthorName  string
	AuthorEmail string
}

// Repo runs git against the content root. Arguments are always passed as an
// argument vector, never through a shell.
type Repo struct {
	cfg Config

	lookOnce sync.Once
	binPath  string
	lookErr  error

	initMu sync.Mutex
}

// New creates a git adapter for cfg.Root.
func New(cfg Config) (*Repo, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("%w: content root is required", domain.ErrInvalidInput)
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve content root: %w", err)
	}
	cfg.Root = root
	if cfg.Binary == "" {
		cfg.Binary = defaultBinary
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Branch == "" {
		cfg.Branch = defaultBranch
	}
	return &Repo{cfg: cfg}, nil
}

// Status reports tool availability and whether the root is a repository.
func (r *Repo) Status(ctx context.Context) domain.VCSStatus {
	st := domain.VCSStatus{RootPath: r.cfg.Root}
	if _, err := r.binary(); err != nil {
		return st
	}
	st.ToolAvailable = true
	st.RepoInitialized = r.initialized()
	if !st.RepoInitialized {
		return st
	}
	if out, err := r.run(ctx, "symbolic-ref", "--short", "HEAD"); err == nil {
		st.Branch = strings.TrimSpace(out)
	}
	if url, err := r.RemoteURL(ctx); err == nil {
		st.RemoteURL = url
	}
	return st
}

// binary resolves the git executable once per adapter.
func (r *Repo) binary() (string, error) {
	r.lookOnce.Do(func() {
		r.binPath, r.lookErr = exec.LookPath(r.cfg.Binary)
		if r.lookErr != nil {
			log.Warn("%s not found, version control disabled", r.cfg.Binary)
		}
	})
	if r.lookErr != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrVCSUnavailable, r.lookErr)
	}
	return r.binPath, nil
}

func (r *Repo) initialized() bool {
	_, err := os.Stat(filepath.Join(r.cfg.Root, ".git"))
	return err == nil
}

// ensureRepo initialises the repository on first use. The transition is
// one-way; an existing repository is never re-initialised.
func (r *Repo) ensureRepo(ctx context.Context) error {
	if _, err := r.binary(); err != nil {
		return err
	}

	r.initMu.Lock()
	defer r.initMu.Unlock()

	if r.initialized() {
		return nil
	}
	if err := os.MkdirAll(r.cfg.Root, 0755); err != nil {
		return fmt.Errorf("create content root: %w", err)
	}
	if _, err := r.run(ctx, "init", "--quiet"); err != nil {
		return err
	}
	if _, err := r.run(ctx, "symbolic-ref", "HEAD", "refs/heads/"+r.cfg.Branch); err != nil {
		return err
	}
	log.Info("initialised repository at %s", r.cfg.Root)
	return nil
}

// run executes git with args in the content root.
func (r *Repo) run(ctx context.Context, args ...string) (string, error) {
	return r.runIn(ctx, r.cfg.Root, args...)
}

func (r *Repo) runIn(ctx context.Context, dir string, args ...string) (string, error) {
	bin, err := r.binary()
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	full := make([]string, 0, len(args)+6)
	full = append(full, "-c", "commit.gpgsign=false")
	if r.cfg.AuthorName != "" {
		full = append(full, "-c", "user.name="+r.cfg.AuthorName)
	}
	if r.cfg.AuthorEmail != "" {
		full = append(full, "-c", "user.email="+r.cfg.AuthorEmail)
	}
	full = append(full, args...)

	cmd := exec.CommandContext(ctx, bin, full...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debug("%s", strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("git %s: timed out after %s", args[0], r.cfg.Timeout)
		}
		return "", &commandError{
			command: args[0],
			stderr:  strings.TrimSpace(stderr.String()),
			err:     err,
		}
	}
	return stdout.String(), nil
}

// commandError is a git invocation that exited unsuccessfully.
type commandError struct {
	command string
	stderr  string
	err     error
}

func (e *commandError) Error() string {
	if e.stderr == "" {
		return fmt.Sprintf("git %s: %v", e.command, e.err)
	}
	return fmt.Sprintf("git %s: %s", e.command, e.stderr)
}

func (e *commandError) Unwrap() error {
	return e.err
}

// exitCode returns the process exit code carried by err, or -1.
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// relPath converts path to a slash-separated path relative to the root and
// rejects paths that escape it.
func (r *Repo) relPath(path string) (string, error) {
	rel := path
	if filepath.IsAbs(path) {
		var err error
		rel, err = filepath.Rel(r.cfg.Root, path)
		if err != nil {
			return "", fmt.Errorf("%w: %s is outside the content root", domain.ErrInvalidInput, path)
		}
	}
	rel = filepath.Clean(rel)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s is outside the content root", domain.ErrInvalidInput, path)
	}
	return filepath.ToSlash(rel), nil
}

func validateHash(hash string) error {
	if !hashPattern.MatchString(hash) {
		return fmt.Errorf("%w: malformed commit hash %q", domain.ErrInvalidInput, hash)
	}
	return nil
}

func validateBranch(branch string) error {
	if !branchPattern.MatchString(branch) || strings.Contains(branch, "..") {
		return fmt.Errorf("%w: malformed branch name %q", domain.ErrInvalidInput, branch)
	}
	return nil
}
