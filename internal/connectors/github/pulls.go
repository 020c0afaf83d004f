package github

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.PullRequestHost = (*Client)(nil)

const perPage = 100

// ListPullRequests lists pull requests, newest activity first. Author is
// matched case-insensitively.
func (c *Client) ListPullRequests(ctx context.Context, opts domain.PRListOptions) ([]domain.PullRequest, error) {
	state := opts.State
	if state == "" {
		state = "open"
	}
	listOpts := &gh.PullRequestListOptions{
		State:       state,
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: gh.ListOptions{PerPage: perPage},
	}

	out := make([]domain.PullRequest, 0)
	for {
		var (
			prs  []*gh.PullRequest
			next int
		)
		err := c.call(ctx, "list pull requests", func(client *gh.Client) (*gh.Response, error) {
			var resp *gh.Response
			var err error
			prs, resp, err = client.PullRequests.List(ctx, c.cfg.Owner, c.cfg.Repo, listOpts)
			if resp != nil {
				next = resp.NextPage
			}
			return resp, err
		})
		if err != nil {
			return nil, err
		}

		for _, pr := range prs {
			if opts.Author != "" && !strings.EqualFold(pr.GetUser().GetLogin(), opts.Author) {
				continue
			}
			out = append(out, toPullRequest(pr))
		}

		if next == 0 {
			return out, nil
		}
		listOpts.Page = next
	}
}

// GetPullRequest fetches one pull request.
func (c *Client) GetPullRequest(ctx context.Context, number int) (*domain.PullRequest, error) {
	var pr *gh.PullRequest
	err := c.call(ctx, "get pull request", func(client *gh.Client) (*gh.Response, error) {
		var resp *gh.Response
		var err error
		pr, resp, err = client.PullRequests.Get(ctx, c.cfg.Owner, c.cfg.Repo, number)
		return resp, err
	})
	if err != nil {
		return nil, fmt.Errorf("pull request #%d: %w", number, err)
	}
	result := toPullRequest(pr)
	return &result, nil
}

// GetPullRequestFiles lists the files a pull request changes.
func (c *Client) GetPullRequestFiles(ctx context.Context, number int) ([]domain.PRFile, error) {
	listOpts := &gh.ListOptions{PerPage: perPage}
	out := make([]domain.PRFile, 0)
	for {
		var (
			files []*gh.CommitFile
			next  int
		)
		err := c.call(ctx, "list pull request files", func(client *gh.Client) (*gh.Response, error) {
			var resp *gh.Response
			var err error
			files, resp, err = client.PullRequests.ListFiles(ctx, c.cfg.Owner, c.cfg.Repo, number, listOpts)
			if resp != nil {
				next = resp.NextPage
			}
			return resp, err
		})
		if err != nil {
			return nil, fmt.Errorf("pull request #%d: %w", number, err)
		}

		for _, f := range files {
			out = append(out, domain.PRFile{
				Filename:  f.GetFilename(),
				Status:    f.GetStatus(),
				Additions: f.GetAdditions(),
				Deletions: f.GetDeletions(),
				Patch:     f.GetPatch(),
			})
		}

		if next == 0 {
			return out, nil
		}
		listOpts.Page = next
	}
}

// CreatePullRequest branches from req.Base, writes req.Content to req.Path
// on the new branch and opens a pull request.
func (c *Client) CreatePullRequest(ctx context.Context, req domain.NewPullRequest) (*domain.PullRequest, error) {
	baseSHA, err := c.branchHead(ctx, req.Base)
	if err != nil {
		return nil, err
	}
	if err := c.createBranch(ctx, req.Branch, baseSHA); err != nil {
		return nil, err
	}

	fileSHA, err := c.fileSHA(ctx, req.Path, req.Base)
	if err != nil {
		return nil, err
	}
	fileOpts := &gh.RepositoryContentFileOptions{
		Message: gh.Ptr(req.Message),
		Content: []byte(req.Content),
		Branch:  gh.Ptr(req.Branch),
	}
	if fileSHA != "" {
		fileOpts.SHA = gh.Ptr(fileSHA)
	}
	err = c.call(ctx, "write file", func(client *gh.Client) (*gh.Response, error) {
		var resp *gh.Response
		var err error
		if fileSHA != "" {
			_, resp, err = client.Repositories.UpdateFile(ctx, c.cfg.Owner, c.cfg.Repo, req.Path, fileOpts)
		} else {
			_, resp, err = client.Repositories.CreateFile(ctx, c.cfg.Owner, c.cfg.Repo, req.Path, fileOpts)
		}
		return resp, err
	})
	if err != nil {
		return nil, err
	}

	var pr *gh.PullRequest
	err = c.call(ctx, "create pull request", func(client *gh.Client) (*gh.Response, error) {
		var resp *gh.Response
		var err error
		pr, resp, err = client.PullRequests.Create(ctx, c.cfg.Owner, c.cfg.Repo, &gh.NewPullRequest{
			Title: gh.Ptr(req.Title),
			Body:  gh.Ptr(req.Body),
			Head:  gh.Ptr(req.Branch),
			Base:  gh.Ptr(req.Base),
		})
		return resp, err
	})
	if err != nil {
		return nil, err
	}
	result := toPullRequest(pr)
	return &result, nil
}

// MergePullRequest merges a pull request with the repository's default
// merge method. An empty message keeps GitHub's default commit message.
func (c *Client) MergePullRequest(ctx context.Context, number int, message string) (*domain.MergeResult, error) {
	var res *gh.PullRequestMergeResult
	err := c.call(ctx, "merge pull request", func(client *gh.Client) (*gh.Response, error) {
		var resp *gh.Response
		var err error
		res, resp, err = client.PullRequests.Merge(ctx, c.cfg.Owner, c.cfg.Repo, number, message, nil)
		return resp, err
	})
	if err != nil {
		return nil, fmt.Errorf("pull request #%d: %w", number, err)
	}
	return &domain.MergeResult{
		Merged:  res.GetMerged(),
		SHA:     res.GetSHA(),
		Message: res.GetMessage(),
	}, nil
}

// ClosePullRequest closes a pull request without merging.
func (c *Client) ClosePullRequest(ctx context.Context, number int) error {
	err := c.call(ctx, "close pull request", func(client *gh.Client) (*gh.Response, error) {
		_, resp, err := client.PullRequests.Edit(ctx, c.cfg.Owner, c.cfg.Repo, number, &gh.PullRequest{
			State: gh.Ptr("closed"),
		})
		return resp, err
	})
	if err != nil {
		return fmt.Errorf("pull request #%d: %w", number, err)
	}
	return nil
}

// CurrentUser returns the login of the authenticated user.
func (c *Client) CurrentUser(ctx context.Context) (string, error) {
	var user *gh.User
	err := c.call(ctx, "get user", func(client *gh.Client) (*gh.Response, error) {
		var resp *gh.Response
		var err error
		user, resp, err = client.Users.Get(ctx, "")
		return resp, err
	})
	if err != nil {
		return "", err
	}
	return user.GetLogin(), nil
}

func (c *Client) branchHead(ctx context.Context, branch string) (string, error) {
	var ref *gh.Reference
	err := c.call(ctx, "get branch", func(client *gh.Client) (*gh.Response, error) {
		var resp *gh.Response
		var err error
		ref, resp, err = client.Git.GetRef(ctx, c.cfg.Owner, c.cfg.Repo, "heads/"+branch)
		return resp, err
	})
	if err != nil {
		return "", fmt.Errorf("branch %s: %w", branch, err)
	}
	return ref.GetObject().GetSHA(), nil
}

// refRequest is the body of POST /repos/{owner}/{repo}/git/refs.
type refRequest struct {
	Ref string `json:"ref"`
	SHA string `json:"sha"`
}

func (c *Client) createBranch(ctx context.Context, branch, sha string) error {
	err := c.call(ctx, "create branch", func(client *gh.Client) (*gh.Response, error) {
		u := fmt.Sprintf("repos/%s/%s/git/refs", c.cfg.Owner, c.cfg.Repo)
		req, err := client.NewRequest(http.MethodPost, u, refRequest{Ref: "refs/heads/" + branch, SHA: sha})
		if err != nil {
			return nil, err
		}
		return client.Do(ctx, req, nil)
	})
	if err != nil {
		return fmt.Errorf("branch %s: %w", branch, err)
	}
	return nil
}

// fileSHA returns the blob SHA of path on ref, or "" when it does not exist.
func (c *Client) fileSHA(ctx context.Context, path, ref string) (string, error) {
	var content *gh.RepositoryContent
	err := c.call(ctx, "get contents", func(client *gh.Client) (*gh.Response, error) {
		var resp *gh.Response
		var err error
		content, _, resp, err = client.Repositories.GetContents(ctx, c.cfg.Owner, c.cfg.Repo, path,
			&gh.RepositoryContentGetOptions{Ref: ref})
		return resp, err
	})
	switch {
	case IsNotFound(err):
		return "", nil
	case err != nil:
		return "", fmt.Errorf("%s: %w", path, err)
	case content == nil:
		return "", fmt.Errorf("%w: %s is a directory", domain.ErrInvalidInput, path)
	}
	return content.GetSHA(), nil
}

func toPullRequest(pr *gh.PullRequest) domain.PullRequest {
	return domain.PullRequest{
		Number:       pr.GetNumber(),
		Title:        pr.GetTitle(),
		Body:         pr.GetBody(),
		State:        pr.GetState(),
		Author:       pr.GetUser().GetLogin(),
		Mergeable:    pr.Mergeable,
		Merged:       pr.GetMerged(),
		HeadRef:      pr.GetHead().GetRef(),
		BaseRef:      pr.GetBase().GetRef(),
		Additions:    pr.GetAdditions(),
		Deletions:    pr.GetDeletions(),
		ChangedFiles: pr.GetChangedFiles(),
		HTMLURL:      pr.GetHTMLURL(),
		CreatedAt:    pr.GetCreatedAt().Time,
		UpdatedAt:    pr.GetUpdatedAt().Time,
	}
}
