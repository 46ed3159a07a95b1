package github

import (
	"context"
	"fmt"
	"net/http"

	"github.com/drewdunne/ksnotify/internal/provider"
	"github.com/google/go-github/v60/github"
)

// maxPerPage is the largest page size the GitHub REST API accepts.
const maxPerPage = 100

// GitHubProvider implements provider.Provider for one GitHub repository.
type GitHubProvider struct {
	client *github.Client
	owner  string
	repo   string
}

// Option configures the GitHub provider.
type Option func(*GitHubProvider)

// WithBaseURL sets a custom API base URL (GitHub Enterprise, testing).
func WithBaseURL(url string) Option {
	return func(p *GitHubProvider) {
		p.client.BaseURL, _ = p.client.BaseURL.Parse(url + "/")
	}
}

// New creates a new GitHub provider for owner/repo.
func New(token, owner, repo string, opts ...Option) *GitHubProvider {
	httpClient := &http.Client{
		Transport: &tokenTransport{token: token},
	}
	client := github.NewClient(httpClient)

	p := &GitHubProvider{
		client: client,
		owner:  owner,
		repo:   repo,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// tokenTransport adds authorization header to requests.
type tokenTransport struct {
	token string
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+t.token)
	return http.DefaultTransport.RoundTrip(req)
}

// Name returns the provider name.
func (p *GitHubProvider) Name() string {
	return "github"
}

// ListComments fetches up to limit issue comments on a pull request.
func (p *GitHubProvider) ListComments(ctx context.Context, number, limit int) ([]provider.Comment, error) {
	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: pageSize(limit)},
	}

	var result []provider.Comment
	for len(result) < limit {
		comments, resp, err := p.client.Issues.ListComments(ctx, p.owner, p.repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("listing comments: %w", err)
		}

		for _, c := range comments {
			if len(result) == limit {
				break
			}
			result = append(result, provider.Comment{
				ID:   c.GetID(),
				Body: c.GetBody(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return result, nil
}

// CreateComment posts a comment on a pull request.
func (p *GitHubProvider) CreateComment(ctx context.Context, number int, body string) error {
	_, _, err := p.client.Issues.CreateComment(ctx, p.owner, p.repo, number, &github.IssueComment{
		Body: &body,
	})
	if err != nil {
		return fmt.Errorf("posting comment: %w", err)
	}
	return nil
}

// UpdateComment replaces the body of an issue comment. GitHub addresses
// comments by ID alone, so number is unused.
func (p *GitHubProvider) UpdateComment(ctx context.Context, number int, commentID int64, body string) error {
	_, _, err := p.client.Issues.EditComment(ctx, p.owner, p.repo, commentID, &github.IssueComment{
		Body: &body,
	})
	if err != nil {
		return fmt.Errorf("updating comment %d: %w", commentID, err)
	}
	return nil
}

// FindMergeRequestsByCommit returns pull requests associated with a commit.
func (p *GitHubProvider) FindMergeRequestsByCommit(ctx context.Context, sha string, limit int) ([]provider.MergeRequest, error) {
	prs, _, err := p.client.PullRequests.ListPullRequestsWithCommit(ctx, p.owner, p.repo, sha, &github.ListOptions{
		PerPage: pageSize(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("listing pull requests for commit %s: %w", sha, err)
	}

	result := make([]provider.MergeRequest, 0, len(prs))
	for _, pr := range prs {
		if len(result) == limit {
			break
		}
		state := pr.GetState()
		if pr.MergedAt != nil {
			state = provider.StateMerged
		}
		result = append(result, provider.MergeRequest{
			Number: pr.GetNumber(),
			State:  state,
		})
	}
	return result, nil
}

func pageSize(limit int) int {
	if limit <= 0 || limit > maxPerPage {
		return maxPerPage
	}
	return limit
}
