package gitlab

import (
	"context"
	"fmt"
	"strconv"

	"github.com/drewdunne/ksnotify/internal/provider"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/xanzy/go-gitlab"
)

// maxPerPage is the largest page size the GitLab REST API accepts.
const maxPerPage = 100

// GitLabProvider implements provider.Provider for one GitLab project.
type GitLabProvider struct {
	client  *gitlab.Client
	token   string
	project string
}

// Option configures the GitLab provider.
type Option func(*GitLabProvider)

// WithBaseURL sets a custom base URL (self-hosted, testing).
func WithBaseURL(baseURL string) Option {
	return func(p *GitLabProvider) {
		p.client = newClient(p.token, gitlab.WithBaseURL(baseURL+"/api/v4"))
	}
}

// New creates a new GitLab provider for a project ID or path.
func New(token, project string, opts ...Option) *GitLabProvider {
	p := &GitLabProvider{
		client:  newClient(token),
		token:   token,
		project: project,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// newClient builds a client that gives up on the first failed request.
func newClient(token string, opts ...gitlab.ClientOptionFunc) *gitlab.Client {
	opts = append(opts, gitlab.WithCustomRetryMax(0))
	client, _ := gitlab.NewClient(token, opts...)
	return client
}

// Name returns the provider name.
func (p *GitLabProvider) Name() string {
	return "gitlab"
}

// ListComments fetches up to limit notes on a merge request.
func (p *GitLabProvider) ListComments(ctx context.Context, number, limit int) ([]provider.Comment, error) {
	opts := &gitlab.ListMergeRequestNotesOptions{
		ListOptions: gitlab.ListOptions{PerPage: pageSize(limit)},
	}

	var result []provider.Comment
	for len(result) < limit {
		notes, resp, err := p.client.Notes.ListMergeRequestNotes(p.project, number, opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("listing comments: %w", err)
		}

		for _, n := range notes {
			if len(result) == limit {
				break
			}
			result = append(result, provider.Comment{
				ID:   int64(n.ID),
				Body: n.Body,
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return result, nil
}

// CreateComment posts a note on a merge request.
func (p *GitLabProvider) CreateComment(ctx context.Context, number int, body string) error {
	_, _, err := p.client.Notes.CreateMergeRequestNote(p.project, number, &gitlab.CreateMergeRequestNoteOptions{
		Body: &body,
	}, gitlab.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("posting comment: %w", err)
	}
	return nil
}

// UpdateComment replaces the body of a merge request note.
func (p *GitLabProvider) UpdateComment(ctx context.Context, number int, commentID int64, body string) error {
	_, _, err := p.client.Notes.UpdateMergeRequestNote(p.project, number, int(commentID), &gitlab.UpdateMergeRequestNoteOptions{
		Body: &body,
	}, gitlab.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("updating comment %d: %w", commentID, err)
	}
	return nil
}

// FindMergeRequestsByCommit returns merge requests associated with a commit.
func (p *GitLabProvider) FindMergeRequestsByCommit(ctx context.Context, sha string, limit int) ([]provider.MergeRequest, error) {
	mrs, _, err := p.client.Commits.ListMergeRequestsByCommit(p.project, sha,
		withPerPage(pageSize(limit)), gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("listing merge requests for commit %s: %w", sha, err)
	}

	result := make([]provider.MergeRequest, 0, len(mrs))
	for _, mr := range mrs {
		if len(result) == limit {
			break
		}
		result = append(result, provider.MergeRequest{
			Number: mr.IID,
			State:  normalizeState(mr.State),
		})
	}
	return result, nil
}

// normalizeState maps GitLab merge request states onto provider states.
func normalizeState(state string) string {
	switch state {
	case "opened":
		return provider.StateOpen
	case "closed", "locked":
		return provider.StateClosed
	default:
		return state
	}
}

// withPerPage sets the page size on endpoints whose options carry no ListOptions.
func withPerPage(n int) gitlab.RequestOptionFunc {
	return func(req *retryablehttp.Request) error {
		q := req.URL.Query()
		q.Set("per_page", strconv.Itoa(n))
		req.URL.RawQuery = q.Encode()
		return nil
	}
}

func pageSize(limit int) int {
	if limit <= 0 || limit > maxPerPage {
		return maxPerPage
	}
	return limit
}
