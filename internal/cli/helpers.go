package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/runnerr0/linkhist/internal/config"
	"github.com/runnerr0/linkhist/internal/logging"
	"github.com/runnerr0/linkhist/internal/storage"
)

// loadConfig reads the config named by --config, or the default config
// file. Missing files are created with defaults.
func loadConfig(globals *GlobalFlags) (*config.Config, error) {
	if globals != nil && globals.Config != "" {
		cfg, err := config.LoadOrCreateAt(globals.Config)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", globals.Config, err)
		}
		return cfg, nil
	}
	cfg, err := config.LoadOrCreate()
	if err != nil {
		// An unreadable default config should not block read-only commands.
		return config.DefaultConfig(), nil
	}
	return cfg, nil
}

// resolveDBPath determines the SQLite database file path.
// Priority: --db-path flag > config file > default config.
func resolveDBPath(globals *GlobalFlags, cfg *config.Config) (string, error) {
	if globals != nil && globals.DBPath != "" {
		if globals.DBPath == storage.MemoryPath {
			return globals.DBPath, nil
		}
		return config.ExpandPath(globals.DBPath)
	}
	return cfg.DBPath()
}

// commandLogger logs to stderr when --verbose is set and discards
// otherwise. Long-running commands build their own logger.
func commandLogger(globals *GlobalFlags, cfg *config.Config) *zap.Logger {
	if globals == nil || !globals.Verbose {
		return zap.NewNop()
	}
	lc := cfg.Logging
	lc.Level = "debug"
	log, err := logging.New(lc, "", os.Stderr)
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// openStore opens the configured database with migrations applied. The
// returned opener must be closed by the caller.
func openStore(ctx context.Context, globals *GlobalFlags) (*storage.Opener, *storage.SQLiteStore, *config.Config, error) {
	cfg, err := loadConfig(globals)
	if err != nil {
		return nil, nil, nil, err
	}
	dbPath, err := resolveDBPath(globals, cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	opener := storage.NewOpener(dbPath, commandLogger(globals, cfg),
		storage.WithJournalMode(cfg.Storage.SQLiteJournalMode))
	store, err := opener.Open(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	return opener, store, cfg, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
