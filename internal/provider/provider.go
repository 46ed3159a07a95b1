package provider

import "context"

// Provider defines the comment operations ksnotify needs from a code host.
type Provider interface {
	// Name returns the provider name (github, gitlab, local).
	Name() string

	// ListComments fetches up to limit comments on a merge request, in the
	// order the host returns them, following pagination.
	ListComments(ctx context.Context, number, limit int) ([]Comment, error)

	// CreateComment posts a new comment on a merge request.
	CreateComment(ctx context.Context, number int, body string) error

	// UpdateComment replaces the body of an existing comment.
	UpdateComment(ctx context.Context, number int, commentID int64, body string) error

	// FindMergeRequestsByCommit returns up to limit merge requests that
	// contain the given commit.
	FindMergeRequestsByCommit(ctx context.Context, sha string, limit int) ([]MergeRequest, error)
}
