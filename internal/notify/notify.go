// Package notify runs the ksnotify pipeline: read a diff, drop noise, render a
// report and post it to the thread of the current build.
package notify

import (
	"context"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/drewdunne/ksnotify/internal/config"
	"github.com/drewdunne/ksnotify/internal/metrics"
	"github.com/drewdunne/ksnotify/internal/parser"
	"github.com/drewdunne/ksnotify/internal/provider"
	"github.com/drewdunne/ksnotify/internal/reconcile"
	"github.com/drewdunne/ksnotify/internal/report"
	"github.com/drewdunne/ksnotify/internal/thread"
)

// Options controls how a diff becomes a comment.
type Options struct {
	SuppressSkaffold bool
	IgnoreTagImages  []string
	Patch            bool
	Target           string
	Link             string
}

// OptionsFromConfig builds pipeline options. It fails when a GitLab or
// GitHub run has no link to show.
func OptionsFromConfig(cfg *config.Config, inv *config.Invocation) (Options, error) {
	link, err := cfg.ResolveLink(inv)
	if err != nil {
		return Options{}, err
	}
	return Options{
		SuppressSkaffold: cfg.SuppressSkaffold,
		IgnoreTagImages:  cfg.IgnoreTagImages,
		Patch:            cfg.Patch,
		Target:           cfg.Target,
		Link:             link,
	}, nil
}

// IdentityFor describes how the build finds its thread on the configured CI.
// GitLab always falls back to a commit search; GitHub only when sha_fallback
// is set; local runs never have a thread.
func IdentityFor(cfg *config.Config, inv *config.Invocation) thread.Identity {
	switch cfg.CI {
	case config.CIGitLab:
		return thread.Identity{Number: inv.Number, CommitSHA: inv.CommitSHA, Fallback: true}
	case config.CIGitHub:
		return thread.Identity{Number: inv.Number, CommitSHA: inv.CommitSHA, Fallback: cfg.SHAFallback}
	default:
		return thread.Identity{}
	}
}

// Notifier runs the pipeline against one provider.
type Notifier struct {
	resolver   *thread.Resolver
	reconciler *reconcile.Reconciler
}

// New creates a notifier. Reports without a thread are written to console.
func New(p provider.Provider, console io.Writer) *Notifier {
	return &Notifier{
		resolver:   thread.NewResolver(p),
		reconciler: reconcile.New(p, console),
	}
}

// Run reads the whole diff from in and reconciles the resulting report.
func (n *Notifier) Run(ctx context.Context, in io.Reader, id thread.Identity, opts Options) (reconcile.Action, error) {
	data, err := io.ReadAll(in)
	if err != nil {
		return reconcile.Action{}, fmt.Errorf("reading diff: %w", err)
	}

	changes, err := parser.Parse(string(data))
	if err != nil {
		return reconcile.Action{}, err
	}

	if len(opts.IgnoreTagImages) > 0 {
		log.Debugf("Ignoring tag images is not supported, ignoring %v", opts.IgnoreTagImages)
	}
	changes = parser.Filter(changes, parser.FilterOptions{SuppressSkaffold: opts.SuppressSkaffold})

	r := report.Render(report.Classify(changes), opts.Link, opts.Target)

	number, err := n.resolver.Resolve(ctx, id)
	if err != nil {
		return reconcile.Action{}, err
	}

	action, err := n.reconciler.Reconcile(ctx, number, r, opts.Patch)
	if err != nil {
		return reconcile.Action{}, err
	}

	m := metrics.Get()
	log.WithFields(log.Fields{
		"parsed":     m.ResourcesParsed,
		"suppressed": m.ResourcesSuppressed,
		"listed":     m.CommentsListed,
		"created":    m.CommentsCreated,
		"updated":    m.CommentsUpdated,
		"skipped":    m.CommentsSkipped,
	}).Debug("Run complete")

	return action, nil
}
