package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/runnerr0/linkhist/internal/capture"
	"github.com/runnerr0/linkhist/internal/config"
	"github.com/runnerr0/linkhist/internal/daemon"
	"github.com/runnerr0/linkhist/internal/history"
	"github.com/runnerr0/linkhist/internal/logging"
	"github.com/runnerr0/linkhist/internal/nav"
	"github.com/runnerr0/linkhist/internal/storage"
	"github.com/runnerr0/linkhist/internal/view"
)

// Execute implements the go-flags Commander interface for ServeCommand.
func (c *ServeCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	c.applyOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	dbPath, err := resolveDBPath(c.globals, cfg)
	if err != nil {
		return err
	}
	logPath, err := cfg.LogPath()
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Logging, logPath, os.Stderr)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = log.Sync() }()

	if c.verbose() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return c.run(ctx, cfg, dbPath, log)
}

func (c *ServeCommand) applyOverrides(cfg *config.Config) {
	if c.Host != "" {
		cfg.Daemon.Host = c.Host
	}
	if c.Port > 0 {
		cfg.Daemon.Port = c.Port
	}
	if c.Upstream != "" {
		cfg.Proxy.Upstream = c.Upstream
	}
	if c.LogLevel != "" {
		cfg.Logging.Level = c.LogLevel
	}
	if c.verbose() {
		cfg.Logging.Level = "debug"
	}
}

// run wires the session to the daemon and serves until ctx is done.
func (c *ServeCommand) run(ctx context.Context, cfg *config.Config, dbPath string, log *zap.Logger) error {
	opener := storage.NewOpener(dbPath, log, storage.WithJournalMode(cfg.Storage.SQLiteJournalMode))
	defer opener.Close()

	list := view.NewList(nil)
	session := history.NewSession(history.FromOpener(opener), list,
		history.WithPageSize(cfg.History.PageSize),
		history.WithLogger(log))
	ic := capture.New(session,
		capture.WithPattern(cfg.Capture.EndpointPattern),
		capture.WithMaxBodyBytes(cfg.Capture.MaxBodyBytes),
		capture.WithLogger(log))

	feed := nav.NewFeed(16)
	ctrl := nav.NewController(session, cfg.Capture.RoutePath, log)
	navDone := make(chan struct{})
	go func() {
		defer close(navDone)
		_ = ctrl.Run(ctx, feed)
	}()

	router, err := daemon.NewRouter(daemon.Deps{
		Config:      cfg,
		Session:     session,
		List:        list,
		Interceptor: ic,
		Feed:        feed,
		Log:         log,
		Version:     c.version,
	})
	if err != nil {
		feed.Close()
		<-navDone
		return err
	}

	log.Info("starting daemon",
		zap.String("version", c.version),
		zap.String("addr", cfg.DaemonAddr()),
		zap.String("db", dbPath),
		zap.String("upstream", cfg.Proxy.Upstream))

	srv := daemon.NewServer(cfg.DaemonAddr(), router, log)
	err = srv.Run(ctx)

	feed.Close()
	<-navDone
	ic.Wait()
	return err
}
