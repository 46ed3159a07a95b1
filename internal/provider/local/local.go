// Package local provides a provider for runs outside CI. Nothing is sent to a
// code host; comment bodies are written to a console instead.
package local

import (
	"context"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/drewdunne/ksnotify/internal/provider"
)

// LocalProvider implements provider.Provider against a console writer.
type LocalProvider struct {
	out io.Writer
}

// New creates a local provider that prints comment bodies to out.
func New(out io.Writer) *LocalProvider {
	return &LocalProvider{out: out}
}

// Name returns the provider name.
func (p *LocalProvider) Name() string {
	return "local"
}

// ListComments returns no comments.
func (p *LocalProvider) ListComments(ctx context.Context, number, limit int) ([]provider.Comment, error) {
	return nil, nil
}

// CreateComment prints body.
func (p *LocalProvider) CreateComment(ctx context.Context, number int, body string) error {
	log.WithField("number", number).Debug("Printing comment to console")
	return p.print(body)
}

// UpdateComment prints body.
func (p *LocalProvider) UpdateComment(ctx context.Context, number int, commentID int64, body string) error {
	log.WithFields(log.Fields{"number": number, "comment_id": commentID}).Debug("Printing updated comment to console")
	return p.print(body)
}

// FindMergeRequestsByCommit returns no merge requests.
func (p *LocalProvider) FindMergeRequestsByCommit(ctx context.Context, sha string, limit int) ([]provider.MergeRequest, error) {
	return nil, nil
}

func (p *LocalProvider) print(body string) error {
	if _, err := fmt.Fprintln(p.out, body); err != nil {
		return fmt.Errorf("writing comment: %w", err)
	}
	return nil
}
