package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/runnerr0/linkhist/internal/config"
	"github.com/runnerr0/linkhist/internal/storage"
)

func TestVersionFlag(t *testing.T) {
	var err error
	output := captureOutput(t, func() {
		err = RunWithArgs("1.2.3", []string{"--version"})
	})
	require.NoError(t, err)
	assert.Equal(t, "linkhist 1.2.3", strings.TrimSpace(output))
}

func TestWantsVersion(t *testing.T) {
	assert.True(t, wantsVersion([]string{"--json", "--version"}))
	assert.False(t, wantsVersion([]string{"search", "--", "--version"}))
	assert.False(t, wantsVersion(nil))
}

func TestHelpIsNotAnError(t *testing.T) {
	captureOutput(t, func() {
		assert.NoError(t, RunWithArgs("test", []string{"--help"}))
	})
}

func TestAllSubcommandsExist(t *testing.T) {
	parser, _, _ := buildParser("test")
	for _, name := range []string{"serve", "browse", "search", "open", "delete", "purge", "status"} {
		assert.NotNil(t, parser.Find(name), "subcommand %s should be registered", name)
	}
	assert.Nil(t, parser.Find("add"), "links are only created by capture")
}

func TestStatusSubcommandRuns(t *testing.T) {
	args, _ := tempArgs(t)
	var err error
	output := captureOutput(t, func() {
		err = RunWithArgs("test", append(args, "status"))
	})
	require.NoError(t, err)
	assert.Contains(t, output, "Links:         0")
}

func TestSearchSubcommandRuns(t *testing.T) {
	args, _ := tempArgs(t)
	var err error
	output := captureOutput(t, func() {
		err = RunWithArgs("test", append(args, "search", "ubuntu"))
	})
	require.NoError(t, err)
	assert.Contains(t, output, `No links found for "ubuntu"`)
}

func TestOpenRequiresID(t *testing.T) {
	err := RunWithArgs("test", []string{"open"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--id is required")
}

func TestDeleteRequiresID(t *testing.T) {
	err := RunWithArgs("test", []string{"delete"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--id is required")
}

func TestPurgeRequiresAll(t *testing.T) {
	err := RunWithArgs("test", []string{"purge"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "purge requires --all flag")
}

func TestOpenUnknownIDThroughParser(t *testing.T) {
	args, _ := tempArgs(t)
	parser, _, cmds := buildParser("test")
	_, err := parser.ParseArgs(append(args, "open", "--id", "nope", "--format", "url"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "link not found: nope")
	assert.Equal(t, "url", cmds.Open.Format)
}

func TestSearchFlagsDefaults(t *testing.T) {
	args, _ := tempArgs(t)
	p, _, c := buildParser("test")
	captureOutput(t, func() {
		_, err := p.ParseArgs(append(args, "search", "my", "query"))
		require.NoError(t, err)
	})
	assert.Equal(t, 20, c.Search.Limit)
}

func TestGlobalFlags(t *testing.T) {
	args, dbPath := tempArgs(t)
	parser, globals, _ := buildParser("test")
	captureOutput(t, func() {
		_, err := parser.ParseArgs(append(args, "--json", "--verbose", "status"))
		require.NoError(t, err)
	})
	assert.True(t, globals.JSON)
	assert.True(t, globals.Verbose)
	assert.Equal(t, dbPath, globals.DBPath)
	assert.True(t, strings.HasSuffix(globals.Config, "config.yaml"))
}

func TestUnknownSubcommandFails(t *testing.T) {
	err := RunWithArgs("test", []string{"frobnicate"})
	assert.Error(t, err)
}

func TestHelpFlagDoesNotError(t *testing.T) {
	captureOutput(t, func() {
		assert.NoError(t, RunWithArgs("test", []string{"--help"}))
	})
}

func TestResolveDBPath(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Storage.Path = "/var/lib/linkhist"

	path, err := resolveDBPath(&GlobalFlags{}, cfg)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/linkhist/linkhist.db", path)

	path, err = resolveDBPath(&GlobalFlags{DBPath: "/tmp/other.db"}, cfg)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/other.db", path)

	path, err = resolveDBPath(&GlobalFlags{DBPath: storage.MemoryPath}, cfg)
	require.NoError(t, err)
	assert.Equal(t, storage.MemoryPath, path)
}

func TestLoadConfigExplicitPathCreatesDefaults(t *testing.T) {
	args, _ := tempArgs(t)
	cfg, err := loadConfig(&GlobalFlags{Config: args[1]})
	require.NoError(t, err)
	assert.Equal(t, config.DefaultPageSize, cfg.History.PageSize)
	assert.FileExists(t, args[1])
}

func TestServeOverrides(t *testing.T) {
	cfg := config.DefaultConfig()
	c := &ServeCommand{Host: "0.0.0.0", Port: 9000, Upstream: "https://debrid-link.com", LogLevel: "warn", cmdEnv: cmdEnv{globals: &GlobalFlags{}}}
	c.applyOverrides(cfg)
	assert.Equal(t, "0.0.0.0:9000", cfg.DaemonAddr())
	assert.Equal(t, "https://debrid-link.com", cfg.Proxy.Upstream)
	assert.Equal(t, "warn", cfg.Logging.Level)

	c = &ServeCommand{cmdEnv: cmdEnv{globals: &GlobalFlags{Verbose: true}}}
	c.applyOverrides(cfg)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestServeRunStopsOnCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := config.DefaultConfig()
	cfg.Daemon.Port = 0

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	c := &ServeCommand{cmdEnv: cmdEnv{globals: &GlobalFlags{}, version: "test"}}
	assert.NoError(t, c.run(ctx, cfg, storage.MemoryPath, zap.NewNop()))
}

func TestServeRunRejectsBadUpstream(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := config.DefaultConfig()
	cfg.Daemon.Port = 0
	cfg.Proxy.Upstream = "not a url"

	c := &ServeCommand{cmdEnv: cmdEnv{globals: &GlobalFlags{}, version: "test"}}
	assert.Error(t, c.run(context.Background(), cfg, storage.MemoryPath, zap.NewNop()))
}
