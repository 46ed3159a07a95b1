package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapLookup serves environment variables from a map.
func mapLookup(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ksnotify.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
ci: gitlab
suppress_skaffold: true
ignore_tag_images:
  - nginx
patch: true
target: production
sha_fallback: true
gitlab:
  base_url: https://gitlab.example.com
  token: glpat-123
`)

	cfg, err := Load(path, mapLookup(nil))
	require.NoError(t, err)

	assert.Equal(t, CIGitLab, cfg.CI)
	assert.True(t, cfg.SuppressSkaffold)
	assert.Equal(t, []string{"nginx"}, cfg.IgnoreTagImages)
	assert.True(t, cfg.Patch)
	assert.Equal(t, "production", cfg.Target)
	assert.True(t, cfg.SHAFallback)
	assert.Equal(t, "https://gitlab.example.com", cfg.GitLab.BaseURL)
	assert.Equal(t, "glpat-123", cfg.GitLab.Token)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "target: staging\n"), mapLookup(nil))
	require.NoError(t, err)

	assert.Equal(t, CILocal, cfg.CI)
	assert.False(t, cfg.Patch)
	assert.Equal(t, "staging", cfg.Target)
}

func TestLoadConfig_SubstitutesEnv(t *testing.T) {
	path := writeConfig(t, "github:\n  token: ${KSNOTIFY_TEST_TOKEN}\ngitlab:\n  token: ${UNSET_TOKEN}\n")

	cfg, err := Load(path, mapLookup(map[string]string{"KSNOTIFY_TEST_TOKEN": "from-env"}))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.GitHub.Token)
	assert.Empty(t, cfg.GitLab.Token)
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml", mapLookup(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "ci: [unterminated\n"), mapLookup(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config file")
}

func TestParseCIKind(t *testing.T) {
	tests := []struct {
		in      string
		want    CIKind
		wantErr bool
	}{
		{"gitlab", CIGitLab, false},
		{"GitHub", CIGitHub, false},
		{" local ", CILocal, false},
		{"slack", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCIKind(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCI)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Target = "from-file"
	cfg.Patch = true

	err := cfg.ApplyEnv(mapLookup(map[string]string{
		"KSNOTIFY_CI":                "github",
		"KSNOTIFY_SUPPRESS_SKAFFOLD": "1",
		"KSNOTIFY_PATCH":             "false",
		"KSNOTIFY_IGNORE_TAG_IMAGES": "nginx, redis,,",
		"KSNOTIFY_LINK":              "http://ci/1",
		"KSNOTIFY_DEBUG":             "yes",
		"GITHUB_TOKEN":               "ghp-123",
	}))
	require.NoError(t, err)

	assert.Equal(t, CIGitHub, cfg.CI)
	assert.True(t, cfg.SuppressSkaffold)
	assert.False(t, cfg.Patch)
	assert.Equal(t, []string{"nginx", "redis"}, cfg.IgnoreTagImages)
	assert.Equal(t, "from-file", cfg.Target, "unset variables keep file values")
	assert.Equal(t, "http://ci/1", cfg.Link)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "ghp-123", cfg.GitHub.Token)
}

func TestApplyEnv_InvalidCI(t *testing.T) {
	err := DefaultConfig().ApplyEnv(mapLookup(map[string]string{"KSNOTIFY_CI": "slack"}))
	assert.ErrorIs(t, err, ErrInvalidCI)
}

func TestEnvBool(t *testing.T) {
	for in, want := range map[string]bool{
		"":      false,
		"0":     false,
		"false": false,
		"FALSE": false,
		"1":     true,
		"true":  true,
		"yes":   true,
	} {
		assert.Equal(t, want, envBool(in), "envBool(%q)", in)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{"local needs nothing", Config{CI: CILocal}, nil},
		{"gitlab with token", Config{CI: CIGitLab, GitLab: GitLabConfig{Token: "t"}}, nil},
		{"gitlab without token", Config{CI: CIGitLab}, ErrMissingToken},
		{"github without token", Config{CI: CIGitHub, GitLab: GitLabConfig{Token: "t"}}, ErrMissingToken},
		{"unknown ci", Config{CI: "jenkins"}, ErrInvalidCI},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
