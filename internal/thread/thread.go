// Package thread resolves which merge request a report belongs to.
package thread

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/drewdunne/ksnotify/internal/provider"
)

// MaxMergeRequests bounds the commit search for merge requests.
const MaxMergeRequests = 100

// ErrNoMatchingRequest is returned when a commit search finds no usable merge request.
var ErrNoMatchingRequest = errors.New("no merge request matches the commit")

// Identity describes how the current build locates its thread.
type Identity struct {
	// Number is the merge request number known from the environment, 0 if unknown.
	Number int

	// CommitSHA is the commit being built.
	CommitSHA string

	// Fallback allows searching merge requests by CommitSHA when Number is 0.
	Fallback bool
}

// Resolver finds the thread number for a build.
type Resolver struct {
	provider provider.Provider
}

// NewResolver creates a resolver backed by p.
func NewResolver(p provider.Provider) *Resolver {
	return &Resolver{provider: p}
}

// Resolve returns the merge request number for id. A result of 0 with a nil
// error means there is no thread and nothing should be posted.
func (r *Resolver) Resolve(ctx context.Context, id Identity) (int, error) {
	if id.Number > 0 {
		return id.Number, nil
	}

	if !id.Fallback || id.CommitSHA == "" {
		log.Debug("No merge request number and no commit fallback, skipping thread")
		return 0, nil
	}

	mrs, err := r.provider.FindMergeRequestsByCommit(ctx, id.CommitSHA, MaxMergeRequests)
	if err != nil {
		return 0, fmt.Errorf("resolving thread: %w", err)
	}

	for _, mr := range mrs {
		if mr.IsOpen() {
			log.WithFields(log.Fields{
				"sha":    id.CommitSHA,
				"number": mr.Number,
			}).Debug("Resolved merge request from commit")
			return mr.Number, nil
		}
	}

	return 0, fmt.Errorf("commit %s (%d candidates): %w", id.CommitSHA, len(mrs), ErrNoMatchingRequest)
}
