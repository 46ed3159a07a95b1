package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidCI indicates an unknown CI kind.
	ErrInvalidCI = errors.New("invalid ci kind")

	// ErrMissingToken indicates a platform token is required but not set.
	ErrMissingToken = errors.New("missing token")

	// ErrMissingEnv indicates a required CI environment variable is not set.
	ErrMissingEnv = errors.New("missing environment variable")
)

// CIKind identifies where ksnotify runs and where it posts.
type CIKind string

const (
	CIGitLab CIKind = "gitlab"
	CIGitHub CIKind = "github"
	CILocal  CIKind = "local"
)

// ParseCIKind validates a CI kind name.
func ParseCIKind(s string) (CIKind, error) {
	switch k := CIKind(strings.ToLower(strings.TrimSpace(s))); k {
	case CIGitLab, CIGitHub, CILocal:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidCI, s)
	}
}

// Config represents the ksnotify configuration.
type Config struct {
	CI               CIKind   `yaml:"ci"`
	SuppressSkaffold bool     `yaml:"suppress_skaffold"`
	IgnoreTagImages  []string `yaml:"ignore_tag_images"`
	Patch            bool     `yaml:"patch"`
	Target           string   `yaml:"target"`
	Link             string   `yaml:"link"`
	SHAFallback      bool     `yaml:"sha_fallback"`
	Debug            bool     `yaml:"debug"`

	GitLab GitLabConfig `yaml:"gitlab"`
	GitHub GitHubConfig `yaml:"github"`
}

// GitLabConfig holds GitLab-specific settings.
type GitLabConfig struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
}

// GitHubConfig holds GitHub-specific settings.
type GitHubConfig struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
}

// LookupFunc reads an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// envVarPattern matches ${VAR_NAME} patterns.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		CI: CILocal,
	}
}

// Load reads and parses the config file at the given path. ${VAR}
// references are resolved through lookup; unset variables become empty.
func Load(path string, lookup LookupFunc) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Substitute environment variables
	data = envVarPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		varName := envVarPattern.FindSubmatch(match)[1]
		v, _ := lookup(string(varName))
		return []byte(v)
	})

	// Start with defaults
	cfg := DefaultConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overlays KSNOTIFY_* variables (and the platform tokens) onto cfg.
// Unset variables leave the current value alone.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	if v, ok := lookup("KSNOTIFY_CI"); ok && v != "" {
		kind, err := ParseCIKind(v)
		if err != nil {
			return fmt.Errorf("KSNOTIFY_CI: %w", err)
		}
		c.CI = kind
	}

	if v, ok := lookup("KSNOTIFY_SUPPRESS_SKAFFOLD"); ok {
		c.SuppressSkaffold = envBool(v)
	}
	if v, ok := lookup("KSNOTIFY_PATCH"); ok {
		c.Patch = envBool(v)
	}
	if v, ok := lookup("KSNOTIFY_DEBUG"); ok {
		c.Debug = envBool(v)
	}
	if v, ok := lookup("KSNOTIFY_IGNORE_TAG_IMAGES"); ok {
		c.IgnoreTagImages = splitList(v)
	}
	if v, ok := lookup("KSNOTIFY_TARGET"); ok {
		c.Target = v
	}
	if v, ok := lookup("KSNOTIFY_LINK"); ok {
		c.Link = v
	}
	if v, ok := lookup("KSNOTIFY_GITLAB_TOKEN"); ok && v != "" {
		c.GitLab.Token = v
	}
	if v, ok := lookup("GITHUB_TOKEN"); ok && v != "" {
		c.GitHub.Token = v
	}

	return nil
}

// Validate checks that the configuration can drive a run.
func (c *Config) Validate() error {
	if _, err := ParseCIKind(string(c.CI)); err != nil {
		return err
	}

	switch c.CI {
	case CIGitLab:
		if c.GitLab.Token == "" {
			return fmt.Errorf("%w: gitlab requires KSNOTIFY_GITLAB_TOKEN or gitlab.token", ErrMissingToken)
		}
	case CIGitHub:
		if c.GitHub.Token == "" {
			return fmt.Errorf("%w: github requires GITHUB_TOKEN or github.token", ErrMissingToken)
		}
	}
	return nil
}

// envBool treats any value except empty, "false" and "0" as true.
func envBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "false", "0":
		return false
	default:
		return true
	}
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
