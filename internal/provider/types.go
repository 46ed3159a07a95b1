package provider

// MergeRequest represents a merge request/pull request.
type MergeRequest struct {
	Number int    // PR number (GitHub) or MR IID (GitLab)
	State  string // open, closed, merged
}

// IsOpen reports whether the merge request still accepts comments from CI.
func (m MergeRequest) IsOpen() bool {
	return m.State == StateOpen
}

// Normalized merge request states.
const (
	StateOpen   = "open"
	StateClosed = "closed"
	StateMerged = "merged"
)

// Comment represents a comment on a merge request.
type Comment struct {
	ID   int64
	Body string
}
