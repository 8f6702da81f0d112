package config

const (
	DefaultPageSize        = 100
	DefaultScrollThreshold = 10
)

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Path:              "~/.config/linkhist",
			SQLiteFile:        "linkhist.db",
			SQLiteJournalMode: "wal",
		},
		Capture: CaptureConfig{
			EndpointPattern: "api/downloader/add",
			RoutePath:       "/webapp/downloader",
			MaxBodyBytes:    1 << 20,
			RatePerMinute:   120,
		},
		History: HistoryConfig{
			PageSize:        DefaultPageSize,
			ScrollThreshold: DefaultScrollThreshold,
		},
		Daemon: DaemonConfig{
			Host:           "127.0.0.1",
			Port:           8722,
			AllowedOrigins: DefaultAllowedOrigins(),
			MaxRequestSize: 1 << 20,
		},
		Proxy: ProxyConfig{
			Upstream: "",
		},
		Logging: LoggingConfig{
			Level:      "info",
			File:       "linkhist.log",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAgeDays: 28,
			Compress:   false,
		},
	}
}
