package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const defaultGitHubServer = "https://github.com"

// githubMergeRef matches the GITHUB_REF_NAME of a pull_request build.
var githubMergeRef = regexp.MustCompile(`^(\d+)/merge$`)

// Invocation is what the CI environment says about the current build.
type Invocation struct {
	// Number is the merge request number, 0 when the build is not tied to one.
	Number int

	// CommitSHA is the commit being built.
	CommitSHA string

	// JobURL links back to the CI job.
	JobURL string

	GitLab GitLabInvocation
	GitHub GitHubInvocation
}

// GitLabInvocation locates the project on a GitLab instance.
type GitLabInvocation struct {
	BaseURL string
	Project string
}

// GitHubInvocation locates the repository on GitHub.
type GitHubInvocation struct {
	APIURL string
	Owner  string
	Repo   string
}

// DetectInvocation reads the CI environment for kind through lookup.
func DetectInvocation(kind CIKind, lookup LookupFunc) (*Invocation, error) {
	switch kind {
	case CIGitLab:
		return detectGitLab(lookup)
	case CIGitHub:
		return detectGitHub(lookup)
	case CILocal:
		return &Invocation{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidCI, kind)
	}
}

func detectGitLab(lookup LookupFunc) (*Invocation, error) {
	env := envReader{lookup: lookup}

	baseURL := env.optional("CI_SERVER_URL")
	if baseURL == "" {
		host, err := env.required("CI_SERVER_HOST")
		if err != nil {
			return nil, err
		}
		baseURL = "https://" + host
	}

	project, err := env.required("CI_PROJECT_ID")
	if err != nil {
		return nil, err
	}
	sha, err := env.required("CI_COMMIT_SHA")
	if err != nil {
		return nil, err
	}

	inv := &Invocation{
		CommitSHA: sha,
		JobURL:    env.optional("CI_JOB_URL"),
		GitLab: GitLabInvocation{
			BaseURL: strings.TrimSuffix(baseURL, "/"),
			Project: project,
		},
	}

	if iid := env.optional("CI_MERGE_REQUEST_IID"); iid != "" {
		n, err := strconv.Atoi(iid)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("parsing CI_MERGE_REQUEST_IID %q: invalid merge request number", iid)
		}
		inv.Number = n
	}

	return inv, nil
}

func detectGitHub(lookup LookupFunc) (*Invocation, error) {
	env := envReader{lookup: lookup}

	repository, err := env.required("GITHUB_REPOSITORY")
	if err != nil {
		return nil, err
	}
	owner, repo, ok := strings.Cut(repository, "/")
	if !ok || owner == "" || repo == "" {
		return nil, fmt.Errorf("parsing GITHUB_REPOSITORY %q: want owner/repo", repository)
	}

	sha, err := env.required("GITHUB_SHA")
	if err != nil {
		return nil, err
	}

	server := env.optional("GITHUB_SERVER_URL")
	if server == "" {
		server = defaultGitHubServer
	}
	server = strings.TrimSuffix(server, "/")

	inv := &Invocation{
		CommitSHA: sha,
		GitHub: GitHubInvocation{
			APIURL: strings.TrimSuffix(env.optional("GITHUB_API_URL"), "/"),
			Owner:  owner,
			Repo:   repo,
		},
	}

	if runID := env.optional("GITHUB_RUN_ID"); runID != "" {
		inv.JobURL = fmt.Sprintf("%s/%s/actions/runs/%s", server, repository, runID)
	}

	if m := githubMergeRef.FindStringSubmatch(env.optional("GITHUB_REF_NAME")); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n > 0 {
			inv.Number = n
		}
	}

	return inv, nil
}

type envReader struct {
	lookup LookupFunc
}

func (e envReader) optional(key string) string {
	v, _ := e.lookup(key)
	return strings.TrimSpace(v)
}

func (e envReader) required(key string) (string, error) {
	v := e.optional(key)
	if v == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingEnv, key)
	}
	return v, nil
}

// ResolveLink returns the link shown in the report. A configured link wins
// over the CI job URL. GitLab and GitHub runs without either are an error;
// local runs may have no link.
func (c *Config) ResolveLink(inv *Invocation) (string, error) {
	if c.Link != "" {
		return c.Link, nil
	}
	if inv.JobURL != "" {
		return inv.JobURL, nil
	}

	switch c.CI {
	case CIGitLab:
		return "", fmt.Errorf("%w: CI_JOB_URL (or set --link)", ErrMissingEnv)
	case CIGitHub:
		return "", fmt.Errorf("%w: GITHUB_RUN_ID (or set --link)", ErrMissingEnv)
	default:
		return "", nil
	}
}
