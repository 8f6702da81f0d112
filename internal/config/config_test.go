package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "~/.config/linkhist", cfg.Storage.Path)
	assert.Equal(t, "linkhist.db", cfg.Storage.SQLiteFile)
	assert.Equal(t, "wal", cfg.Storage.SQLiteJournalMode)
	assert.Equal(t, "api/downloader/add", cfg.Capture.EndpointPattern)
	assert.Equal(t, "/webapp/downloader", cfg.Capture.RoutePath)
	assert.Equal(t, 1048576, cfg.Capture.MaxBodyBytes)
	assert.Equal(t, 120, cfg.Capture.RatePerMinute)
	assert.Equal(t, 100, cfg.History.PageSize)
	assert.Equal(t, 10, cfg.History.ScrollThreshold)
	assert.Equal(t, "127.0.0.1", cfg.Daemon.Host)
	assert.Equal(t, 8722, cfg.Daemon.Port)
	assert.Equal(t, 1048576, cfg.Daemon.MaxRequestSize)
	assert.Empty(t, cfg.Proxy.Upstream)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "linkhist.log", cfg.Logging.File)
	assert.Equal(t, 10, cfg.Logging.MaxSize)
	assert.Equal(t, 3, cfg.Logging.MaxBackups)
	assert.Equal(t, 28, cfg.Logging.MaxAgeDays)
	assert.False(t, cfg.Logging.Compress)
}

func TestDefaultAllowedOriginsArePopulated(t *testing.T) {
	origins := DefaultAllowedOrigins()
	assert.NotEmpty(t, origins)
	assert.Contains(t, origins, "https://debrid-link.com")
	assert.Equal(t, origins, DefaultConfig().Daemon.AllowedOrigins)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		check func(t *testing.T, cfg *Config)
	}{
		{
			name: "overrides keep unset defaults",
			yaml: "history:\n  page_size: 25\ncapture:\n  endpoint_pattern: api/v2/downloader/add\ndaemon:\n  port: 9999\nlogging:\n  level: debug\n",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 25, cfg.History.PageSize)
				assert.Equal(t, "api/v2/downloader/add", cfg.Capture.EndpointPattern)
				assert.Equal(t, 9999, cfg.Daemon.Port)
				assert.Equal(t, "debug", cfg.Logging.Level)

				assert.Equal(t, "/webapp/downloader", cfg.Capture.RoutePath)
				assert.Equal(t, "127.0.0.1", cfg.Daemon.Host)
				assert.Equal(t, DefaultScrollThreshold, cfg.History.ScrollThreshold)
				assert.Equal(t, "~/.config/linkhist", cfg.Storage.Path)
			},
		},
		{
			name: "unusable paging values fall back",
			yaml: "history:\n  page_size: 0\n  scroll_threshold: -3\n",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultPageSize, cfg.History.PageSize)
				assert.Equal(t, DefaultScrollThreshold, cfg.History.ScrollThreshold)
			},
		},
		{
			name: "wildcard origin",
			yaml: "daemon:\n  allowed_origins:\n    - \"*\"\n",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"*"}, cfg.Daemon.AllowedOrigins)
			},
		},
		{
			name: "empty file",
			yaml: "",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultConfig(), cfg)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.yaml))
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(writeConfig(t, ":::not valid yaml{{{"))
	assert.ErrorContains(t, err, "parsing config file")

	_, err = Load(filepath.Join(t.TempDir(), "missing", "config.yaml"))
	assert.ErrorContains(t, err, "reading config file")
}

func TestLoadOrCreateAtWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "deep", "config.yaml")

	cfg, err := LoadOrCreateAt(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.FileExists(t, path)

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadOrCreateAtReadsExisting(t *testing.T) {
	cfg, err := LoadOrCreateAt(writeConfig(t, "history:\n  page_size: 7\n"))
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.History.PageSize)
	assert.Equal(t, "/webapp/downloader", cfg.Capture.RoutePath)
}

func TestValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"no sqlite file", func(c *Config) { c.Storage.SQLiteFile = "" }, "storage.sqlite_file"},
		{"no pattern", func(c *Config) { c.Capture.EndpointPattern = "" }, "capture.endpoint_pattern"},
		{"zero body limit", func(c *Config) { c.Capture.MaxBodyBytes = 0 }, "capture.max_body_bytes"},
		{"negative rate", func(c *Config) { c.Capture.RatePerMinute = -1 }, "capture.rate_per_minute"},
		{"port zero", func(c *Config) { c.Daemon.Port = 0 }, "daemon.port"},
		{"port too high", func(c *Config) { c.Daemon.Port = 70000 }, "daemon.port"},
		{"zero request size", func(c *Config) { c.Daemon.MaxRequestSize = 0 }, "daemon.max_request_size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

// --- Derived paths ---

func TestDBPathJoinsStorageDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Path = "/var/lib/linkhist"

	p, err := cfg.DBPath()
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/linkhist/linkhist.db", p)
}

func TestDBPathExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	p, err := DefaultConfig().DBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "linkhist", "linkhist.db"), p)
}

func TestLogPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Path = "/data"

	p, err := cfg.LogPath()
	require.NoError(t, err)
	assert.Equal(t, "/data/linkhist.log", p)

	cfg.Logging.File = "/var/log/linkhist.log"
	p, err = cfg.LogPath()
	require.NoError(t, err)
	assert.Equal(t, "/var/log/linkhist.log", p)

	cfg.Logging.File = ""
	p, err = cfg.LogPath()
	require.NoError(t, err)
	assert.Empty(t, p)
}

func TestDaemonAddr(t *testing.T) {
	assert.Equal(t, "127.0.0.1:8722", DefaultConfig().DaemonAddr())
}
