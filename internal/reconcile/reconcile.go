// Package reconcile decides whether a report creates a new comment or updates
// the comment an earlier run of the same build left on the thread.
package reconcile

import (
	"context"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/drewdunne/ksnotify/internal/metrics"
	"github.com/drewdunne/ksnotify/internal/provider"
	"github.com/drewdunne/ksnotify/internal/report"
)

// MaxComments bounds how many existing comments are scanned for a match.
const MaxComments = 300

// ActionKind is what the reconciler does with a report.
type ActionKind int

const (
	// Skip writes the report to the console because there is no thread.
	Skip ActionKind = iota
	// Create posts a new comment.
	Create
	// Update replaces the body of an existing comment.
	Update
)

func (k ActionKind) String() string {
	switch k {
	case Skip:
		return "skip"
	case Create:
		return "create"
	case Update:
		return "update"
	default:
		return fmt.Sprintf("ActionKind(%d)", int(k))
	}
}

// Action is a planned reconciliation step.
type Action struct {
	Kind ActionKind

	// CommentID is the comment to replace, set only for Update.
	CommentID int64
}

// Reconciler plans and applies comment changes through a provider.
type Reconciler struct {
	provider provider.Provider
	console  io.Writer
}

// New creates a reconciler. Skipped reports are written to console.
func New(p provider.Provider, console io.Writer) *Reconciler {
	return &Reconciler{provider: p, console: console}
}

// Plan decides the action for r on thread number. Without patch mode every
// run creates a new comment and existing comments are not read.
func (rc *Reconciler) Plan(ctx context.Context, number int, r *report.Report, patch bool) (Action, error) {
	if number == 0 {
		return Action{Kind: Skip}, nil
	}
	if !patch {
		return Action{Kind: Create}, nil
	}

	comments, err := rc.provider.ListComments(ctx, number, MaxComments)
	if err != nil {
		return Action{}, err
	}
	metrics.CommentsListed(len(comments))

	for _, c := range comments {
		if r.IsSameBuild(c.Body) {
			return Action{Kind: Update, CommentID: c.ID}, nil
		}
	}
	return Action{Kind: Create}, nil
}

// Apply carries out action on thread number with a single provider call.
func (rc *Reconciler) Apply(ctx context.Context, number int, action Action, r *report.Report) error {
	switch action.Kind {
	case Skip:
		metrics.CommentSkipped()
		if _, err := fmt.Fprintln(rc.console, r.Body); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		return nil

	case Create:
		if err := rc.provider.CreateComment(ctx, number, r.Body); err != nil {
			return err
		}
		metrics.CommentCreated()
		log.Infof("Created comment on %s #%d", rc.provider.Name(), number)
		return nil

	case Update:
		if err := rc.provider.UpdateComment(ctx, number, action.CommentID, r.Body); err != nil {
			return err
		}
		metrics.CommentUpdated()
		log.Infof("Updated comment %d on %s #%d", action.CommentID, rc.provider.Name(), number)
		return nil

	default:
		return fmt.Errorf("unknown action %s", action.Kind)
	}
}

// Reconcile plans and applies the action for r, returning what was done.
func (rc *Reconciler) Reconcile(ctx context.Context, number int, r *report.Report, patch bool) (Action, error) {
	action, err := rc.Plan(ctx, number, r, patch)
	if err != nil {
		return Action{}, err
	}
	log.Debugf("Planned %s for thread %d", action.Kind, number)

	if err := rc.Apply(ctx, number, action, r); err != nil {
		return Action{}, err
	}
	return action, nil
}
