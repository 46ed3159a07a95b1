package registry

import (
	"io"
	"sort"

	"github.com/drewdunne/ksnotify/internal/config"
	"github.com/drewdunne/ksnotify/internal/provider"
	"github.com/drewdunne/ksnotify/internal/provider/github"
	"github.com/drewdunne/ksnotify/internal/provider/gitlab"
	"github.com/drewdunne/ksnotify/internal/provider/local"
)

// Registry manages provider instances.
type Registry struct {
	providers map[string]provider.Provider
}

// New creates a provider registry from config and the detected CI invocation.
// The local provider is always available and prints to console.
func New(cfg *config.Config, inv *config.Invocation, console io.Writer) *Registry {
	r := &Registry{
		providers: map[string]provider.Provider{
			string(config.CILocal): local.New(console),
		},
	}

	if cfg.GitHub.Token != "" && inv.GitHub.Owner != "" {
		var opts []github.Option
		if baseURL := coalesce(cfg.GitHub.BaseURL, inv.GitHub.APIURL); baseURL != "" {
			opts = append(opts, github.WithBaseURL(baseURL))
		}
		r.providers[string(config.CIGitHub)] = github.New(cfg.GitHub.Token, inv.GitHub.Owner, inv.GitHub.Repo, opts...)
	}

	if cfg.GitLab.Token != "" && inv.GitLab.Project != "" {
		var opts []gitlab.Option
		if baseURL := coalesce(cfg.GitLab.BaseURL, inv.GitLab.BaseURL); baseURL != "" {
			opts = append(opts, gitlab.WithBaseURL(baseURL))
		}
		r.providers[string(config.CIGitLab)] = gitlab.New(cfg.GitLab.Token, inv.GitLab.Project, opts...)
	}

	return r
}

// Get returns the provider for the given name, or nil if not configured.
func (r *Registry) Get(name string) provider.Provider {
	return r.providers[name]
}

// List returns all configured provider names, sorted.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func coalesce(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
