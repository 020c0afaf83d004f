package git

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/folio/internal/core/domain"
)

const (
	defaultHistoryLimit = 20
	fieldSep            = "\x1f"
	recordSep           = "\x1e"
	logFormat           = "--format=%H%x1f%an%x1f%ae%x1f%at%x1f%s%x1e"
)

// CommitFile stages and commits one file.
func (r *Repo) CommitFile(ctx context.Context, path, message string) error {
	return r.CommitFiles(ctx, []string{path}, message)
}

// CommitFiles stages and commits paths in a single commit. Paths with no
// changes are not an error; nothing is committed.
func (r *Repo) CommitFiles(ctx context.Context, paths []string, message string) error {
	if len(paths) == 0 {
		return nil
	}
	if err := r.ensureRepo(ctx); err != nil {
		return err
	}

	rels := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := r.relPath(p)
		if err != nil {
			return err
		}
		rels = append(rels, rel)
	}
	if message == "" {
		message = defaultMessage(rels)
	}
	return r.commit(ctx, rels, message)
}

func (r *Repo) commit(ctx context.Context, rels []string, message string) error {
	if _, err := r.run(ctx, append([]string{"add", "--all", "--"}, rels...)...); err != nil {
		return fmt.Errorf("stage files: %w", err)
	}

	// diff --quiet exits 1 when the index differs from HEAD.
	staged, err := r.hasStagedChanges(ctx, rels)
	if err != nil {
		return err
	}
	if !staged {
		log.Debug("nothing to commit for %s", strings.Join(rels, ", "))
		return nil
	}

	args := append([]string{"commit", "--quiet", "--no-verify", "--message", message, "--"}, rels...)
	if _, err := r.run(ctx, args...); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *Repo) hasStagedChanges(ctx context.Context, rels []string) (bool, error) {
	if !r.hasCommits(ctx) {
		out, err := r.run(ctx, append([]string{"ls-files", "--cached", "--"}, rels...)...)
		if err != nil {
			return false, err
		}
		return strings.TrimSpace(out) != "", nil
	}

	_, err := r.run(ctx, append([]string{"diff", "--cached", "--quiet", "--"}, rels...)...)
	if err == nil {
		return false, nil
	}
	if exitCode(err) == 1 {
		return true, nil
	}
	return false, fmt.Errorf("check staged changes: %w", err)
}

func (r *Repo) hasCommits(ctx context.Context) bool {
	_, err := r.run(ctx, "rev-parse", "--verify", "--quiet", "HEAD")
	return err == nil
}

func defaultMessage(rels []string) string {
	if len(rels) == 1 {
		return "Update " + rels[0]
	}
	return fmt.Sprintf("Update %d files", len(rels))
}

// History returns up to limit commits, most recent first. A repository
// without commits has an empty history.
func (r *Repo) History(ctx context.Context, limit int) ([]domain.Commit, error) {
	if _, err := r.binary(); err != nil {
		return nil, err
	}
	if !r.initialized() || !r.hasCommits(ctx) {
		return []domain.Commit{}, nil
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	out, err := r.run(ctx, "log", "--max-count="+strconv.Itoa(limit), logFormat)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return parseLog(out), nil
}

// CommitDetails returns the commit with its changed files and diff. An
// unknown hash yields nil and no error.
func (r *Repo) CommitDetails(ctx context.Context, hash string) (*domain.Commit, error) {
	if err := validateHash(hash); err != nil {
		return nil, err
	}
	if _, err := r.binary(); err != nil {
		return nil, err
	}
	if !r.initialized() {
		return nil, nil
	}
	if _, err := r.run(ctx, "cat-file", "-e", hash+"^{commit}"); err != nil {
		return nil, nil //nolint:nilerr // unknown hash is not an error
	}

	out, err := r.run(ctx, "show", "--no-patch", logFormat, hash)
	if err != nil {
		return nil, fmt.Errorf("read commit %s: %w", hash, err)
	}
	commits := parseLog(out)
	if len(commits) == 0 {
		return nil, nil
	}
	c := commits[0]

	files, err := r.run(ctx, "diff-tree", "--no-commit-id", "--name-only", "-r", "--root", hash)
	if err != nil {
		return nil, fmt.Errorf("list files of %s: %w", hash, err)
	}
	c.Files = splitLines(files)

	diff, err := r.run(ctx, "show", "--format=", "--patch", hash)
	if err != nil {
		return nil, fmt.Errorf("read diff of %s: %w", hash, err)
	}
	c.Diff = diff
	return &c, nil
}

// Rollback restores path as of hash and commits the restoration. With an
// empty path the whole tree is hard-reset to hash. That discards every later
// commit and cannot be undone.
func (r *Repo) Rollback(ctx context.Context, path, hash string) error {
	if err := validateHash(hash); err != nil {
		return err
	}
	if err := r.ensureRepo(ctx); err != nil {
		return err
	}

	if path == "" {
		if _, err := r.run(ctx, "reset", "--hard", "--quiet", hash); err != nil {
			return fmt.Errorf("reset to %s: %w", hash, err)
		}
		log.Info("reset content tree to %s", hash)
		return nil
	}

	rel, err := r.relPath(path)
	if err != nil {
		return err
	}
	if _, err := r.run(ctx, "checkout", hash, "--", rel); err != nil {
		return fmt.Errorf("restore %s: %w", rel, err)
	}
	short := (&domain.Commit{Hash: hash}).ShortHash()
	return r.commit(ctx, []string{rel}, fmt.Sprintf("Restore %s to %s", rel, short))
}

// ChangedFiles lists paths that differ between hash and HEAD.
func (r *Repo) ChangedFiles(ctx context.Context, hash string) ([]string, error) {
	if err := validateHash(hash); err != nil {
		return nil, err
	}
	if _, err := r.binary(); err != nil {
		return nil, err
	}
	out, err := r.run(ctx, "diff", "--name-only", hash, "HEAD", "--")
	if err != nil {
		return nil, fmt.Errorf("diff %s: %w", hash, err)
	}
	return splitLines(out), nil
}

func parseLog(out string) []domain.Commit {
	records := strings.Split(out, recordSep)
	commits := make([]domain.Commit, 0, len(records))
	for _, rec := range records {
		rec = strings.TrimSpace(rec)
		if rec == "" {
			continue
		}
		fields := strings.SplitN(rec, fieldSep, 5)
		if len(fields) != 5 {
			continue
		}
		ts, _ := strconv.ParseInt(fields[3], 10, 64)
		commits = append(commits, domain.Commit{
			Hash:      fields[0],
			Author:    fields[1],
			Email:     fields[2],
			Timestamp: ts,
			Message:   fields[4],
			Date:      time.Unix(ts, 0).UTC(),
		})
	}
	return commits
}

func splitLines(out string) []string {
	lines := make([]string, 0)
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
