package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default config file path.
const DefaultConfigPath = "~/.config/linkhist/config.yaml"

// Config holds all linkhist configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Capture CaptureConfig `yaml:"capture"`
	History HistoryConfig `yaml:"history"`
	Daemon  DaemonConfig  `yaml:"daemon"`
	Proxy   ProxyConfig   `yaml:"proxy"`
	Logging LoggingConfig `yaml:"logging"`
}

type StorageConfig struct {
	Path              string `yaml:"path"`
	SQLiteFile        string `yaml:"sqlite_file"`
	SQLiteJournalMode string `yaml:"sqlite_journal_mode"`
}

type CaptureConfig struct {
	EndpointPattern string `yaml:"endpoint_pattern"`
	RoutePath       string `yaml:"route_path"`
	MaxBodyBytes    int    `yaml:"max_body_bytes"`
	RatePerMinute   int    `yaml:"rate_per_minute"`
}

// HistoryConfig controls how the history list is paged.
type HistoryConfig struct {
	PageSize        int `yaml:"page_size"`
	ScrollThreshold int `yaml:"scroll_threshold"`
}

type DaemonConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxRequestSize int      `yaml:"max_request_size"`
}

// ProxyConfig enables capture by proxying the downloader site. An empty
// Upstream disables proxy mode.
type ProxyConfig struct {
	Upstream string `yaml:"upstream"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Load reads the YAML file at path over the defaults. Keys missing from
// the file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

// normalize restores values that would leave the history unusable.
// A page size of zero marks the history exhausted on the first load.
func (c *Config) normalize() {
	if c.History.PageSize <= 0 {
		c.History.PageSize = DefaultPageSize
	}
	if c.History.ScrollThreshold < 0 {
		c.History.ScrollThreshold = DefaultScrollThreshold
	}
}

// Validate reports the first setting the daemon cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Storage.SQLiteFile == "":
		return errors.New("storage.sqlite_file must not be empty")
	case c.Capture.EndpointPattern == "":
		return errors.New("capture.endpoint_pattern must not be empty")
	case c.Capture.MaxBodyBytes <= 0:
		return fmt.Errorf("capture.max_body_bytes must be positive, got %d", c.Capture.MaxBodyBytes)
	case c.Capture.RatePerMinute < 0:
		return fmt.Errorf("capture.rate_per_minute must not be negative, got %d", c.Capture.RatePerMinute)
	case c.Daemon.Port < 1 || c.Daemon.Port > 65535:
		return fmt.Errorf("daemon.port out of range: %d", c.Daemon.Port)
	case c.Daemon.MaxRequestSize <= 0:
		return fmt.Errorf("daemon.max_request_size must be positive, got %d", c.Daemon.MaxRequestSize)
	}
	return nil
}

// DBPath returns the expanded path of the SQLite database file.
func (c *Config) DBPath() (string, error) {
	dir, err := expandPath(c.Storage.Path)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, c.Storage.SQLiteFile), nil
}

// LogPath returns the expanded path of the log file, or "" when file
// logging is disabled.
func (c *Config) LogPath() (string, error) {
	if c.Logging.File == "" {
		return "", nil
	}
	if filepath.IsAbs(c.Logging.File) || strings.HasPrefix(c.Logging.File, "~") {
		return expandPath(c.Logging.File)
	}
	dir, err := expandPath(c.Storage.Path)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, c.Logging.File), nil
}

// DaemonAddr returns host:port for the local daemon.
func (c *Config) DaemonAddr() string {
	return fmt.Sprintf("%s:%d", c.Daemon.Host, c.Daemon.Port)
}

func expandPath(path string) (string, error) {
	rest, ok := strings.CutPrefix(path, "~")
	if !ok {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, rest), nil
}

// ExpandPath is expandPath for callers outside the package.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

// LoadOrCreate is LoadOrCreateAt for DefaultConfigPath.
func LoadOrCreate() (*Config, error) {
	path, err := expandPath(DefaultConfigPath)
	if err != nil {
		return nil, err
	}
	return LoadOrCreateAt(path)
}

// LoadOrCreateAt loads the config at path, writing the defaults there
// first when no file exists yet.
func LoadOrCreateAt(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		return parse(data)
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := cfg.writeTo(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) writeTo(path string) error {
	out, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling default config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
