package git

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// Clone clones url into the content root. The root must be missing or empty.
func (r *Repo) Clone(ctx context.Context, url, branch string) error {
	if url == "" {
		return fmt.Errorf("%w: remote URL is required", domain.ErrInvalidInput)
	}
	if branch != "" {
		if err := validateBranch(branch); err != nil {
			return err
		}
	}
	if _, err := r.binary(); err != nil {
		return err
	}

	entries, err := os.ReadDir(r.cfg.Root)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read content root: %w", err)
	}
	if len(entries) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrDirectoryNotEmpty, r.cfg.Root)
	}
	if err := os.MkdirAll(r.cfg.Root, 0755); err != nil {
		return fmt.Errorf("create content root: %w", err)
	}

	args := []string{"clone", "--quiet"}
	if branch != "" {
		args = append(args, "--branch", branch)
	}
	args = append(args, "--", url, ".")
	if _, err := r.run(ctx, args...); err != nil {
		return fmt.Errorf("clone %s: %w", url, err)
	}
	log.Info("cloned %s into %s", url, r.cfg.Root)
	return nil
}

// ConfigureRemote sets the origin URL, adding the remote when missing.
func (r *Repo) ConfigureRemote(ctx context.Context, url string) error {
	if url == "" {
		return fmt.Errorf("%w: remote URL is required", domain.ErrInvalidInput)
	}
	if err := r.ensureRepo(ctx); err != nil {
		return err
	}

	current, err := r.RemoteURL(ctx)
	if err != nil {
		return err
	}
	verb := "add"
	if current != "" {
		verb = "set-url"
	}
	if _, err := r.run(ctx, "remote", verb, "--", remoteName, url); err != nil {
		return fmt.Errorf("configure remote: %w", err)
	}
	return nil
}

// RemoteURL returns the origin URL, or "" when no origin is configured.
func (r *Repo) RemoteURL(ctx context.Context) (string, error) {
	if _, err := r.binary(); err != nil {
		return "", err
	}
	if !r.initialized() {
		return "", nil
	}
	out, err := r.run(ctx, "config", "--get", "remote."+remoteName+".url")
	if err != nil {
		// config --get exits 1 when the key is unset.
		if exitCode(err) == 1 {
			return "", nil
		}
		return "", fmt.Errorf("read remote url: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// Pull fast-forwards branch from origin and returns the paths that changed.
func (r *Repo) Pull(ctx context.Context, branch string) ([]string, error) {
	if err := validateBranch(branch); err != nil {
		return nil, err
	}
	if err := r.requireRemote(ctx); err != nil {
		return nil, err
	}

	before := r.head(ctx)
	if _, err := r.run(ctx, "pull", "--quiet", "--ff-only", remoteName, branch); err != nil {
		return nil, fmt.Errorf("pull %s: %w", branch, err)
	}
	after := r.head(ctx)
	if before == after {
		return []string{}, nil
	}

	var out string
	var err error
	if before == "" {
		out, err = r.run(ctx, "ls-files")
	} else {
		out, err = r.run(ctx, "diff", "--name-only", before, after, "--")
	}
	if err != nil {
		return nil, fmt.Errorf("list pulled files: %w", err)
	}
	return splitLines(out), nil
}

// Push pushes branch to origin.
func (r *Repo) Push(ctx context.Context, branch string) error {
	if err := validateBranch(branch); err != nil {
		return err
	}
	if err := r.requireRemote(ctx); err != nil {
		return err
	}
	if _, err := r.run(ctx, "push", "--quiet", remoteName, branch); err != nil {
		return fmt.Errorf("push %s: %w", branch, err)
	}
	return nil
}

// RemoteCounts fetches origin and counts the commits each side is ahead.
func (r *Repo) RemoteCounts(ctx context.Context, branch string) (domain.RemoteCounts, error) {
	if err := validateBranch(branch); err != nil {
		return domain.RemoteCounts{}, err
	}
	if err := r.requireRemote(ctx); err != nil {
		return domain.RemoteCounts{}, err
	}
	if _, err := r.run(ctx, "fetch", "--quiet", remoteName, branch); err != nil {
		return domain.RemoteCounts{}, fmt.Errorf("fetch %s: %w", branch, err)
	}

	tracking := remoteName + "/" + branch
	if !r.hasCommits(ctx) {
		out, err := r.run(ctx, "rev-list", "--count", tracking)
		if err != nil {
			return domain.RemoteCounts{}, fmt.Errorf("count incoming: %w", err)
		}
		n, _ := strconv.Atoi(strings.TrimSpace(out))
		return domain.RemoteCounts{Incoming: n}, nil
	}

	out, err := r.run(ctx, "rev-list", "--left-right", "--count", "HEAD..."+tracking)
	if err != nil {
		return domain.RemoteCounts{}, fmt.Errorf("count divergence: %w", err)
	}
	fields := strings.Fields(out)
	if len(fields) != 2 {
		return domain.RemoteCounts{}, fmt.Errorf("unexpected rev-list output %q", out)
	}
	outgoing, _ := strconv.Atoi(fields[0])
	incoming, _ := strconv.Atoi(fields[1])
	return domain.RemoteCounts{Incoming: incoming, Outgoing: outgoing}, nil
}

func (r *Repo) requireRemote(ctx context.Context) error {
	url, err := r.RemoteURL(ctx)
	if err != nil {
		return err
	}
	if url == "" {
		return domain.ErrRemoteNotConfigured
	}
	return nil
}

// head returns the HEAD commit, or "" before the first commit.
func (r *Repo) head(ctx context.Context) string {
	out, err := r.run(ctx, "rev-parse", "--verify", "--quiet", "HEAD")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}
