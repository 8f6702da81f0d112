package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/runnerr0/linkhist/internal/history"
	"github.com/runnerr0/linkhist/internal/logging"
	"github.com/runnerr0/linkhist/internal/storage"
	"github.com/runnerr0/linkhist/internal/tui"
	"github.com/runnerr0/linkhist/internal/view"
)

// Execute implements the go-flags Commander interface for BrowseCommand.
func (c *BrowseCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	dbPath, err := resolveDBPath(c.globals, cfg)
	if err != nil {
		return err
	}

	// The terminal belongs to the browser; log to the file only.
	logPath, err := cfg.LogPath()
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Logging, logPath, nil)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = log.Sync() }()

	pageSize := cfg.History.PageSize
	if c.PageSize > 0 {
		pageSize = c.PageSize
	}
	threshold := cfg.History.ScrollThreshold
	if c.Threshold >= 0 {
		threshold = c.Threshold
	}

	opener := storage.NewOpener(dbPath, log, storage.WithJournalMode(cfg.Storage.SQLiteJournalMode))
	defer opener.Close()

	// Fail before taking over the terminal.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if _, err := opener.Open(ctx); err != nil {
		return err
	}

	list := view.NewList(nil)
	session := history.NewSession(history.FromOpener(opener), list,
		history.WithPageSize(pageSize),
		history.WithLogger(log))

	return tui.Run(ctx, session, list, tui.WithThreshold(threshold))
}
