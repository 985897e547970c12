package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, 20, cfg.Collector.MaxPostsPerSource)
	require.Equal(t, "@every 30m", cfg.Collector.Schedule)
	require.True(t, cfg.Sources.DevTo.Enabled)
	require.Equal(t, "https://dev.to/api/articles", cfg.Sources.DevTo.BaseURL)
	require.Equal(t, "medium", cfg.Sources.Feed.Name)
	require.Empty(t, cfg.Sources.YouTube.APIKey)
	require.Empty(t, cfg.Sources.GitHub.Token)
	require.Equal(t, 30*time.Minute, cfg.DB.MaxConnLifetime)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PULSE_SOURCES_YOUTUBE_API_KEY", "yt-secret")
	t.Setenv("PULSE_SOURCES_GITHUB_TOKEN", "gh-token")
	t.Setenv("PULSE_DB_MAX_CONN_LIFETIME", "1h")
	t.Setenv("PULSE_DB_DSN", "postgres://env:env@db:5432/pulse")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "yt-secret", cfg.Sources.YouTube.APIKey)
	require.Equal(t, "gh-token", cfg.Sources.GitHub.Token)
	require.Equal(t, time.Hour, cfg.DB.MaxConnLifetime)
	require.Equal(t, "postgres://env:env@db:5432/pulse", cfg.DB.DSN)
}

func TestLoadFromFileOverridesDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
collector:
  max_posts_per_source: 5
sources:
  devto:
    enabled: false
  feed:
    name: blog
    url: https://example.com/feed.xml
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 5, cfg.Collector.MaxPostsPerSource)
	require.False(t, cfg.Sources.DevTo.Enabled)
	require.Equal(t, "blog", cfg.Sources.Feed.Name)
	require.Equal(t, "https://example.com/feed.xml", cfg.Sources.Feed.URL)
}

func TestLoadMissingFileFails(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Parallel()

	base := func() Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	cfg := base()
	cfg.Server.Port = 0
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.DB.DSN = ""
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.HTTP.TimeoutSeconds = 0
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.Sources.Feed.URL = ""
	require.Error(t, cfg.Validate())
}
