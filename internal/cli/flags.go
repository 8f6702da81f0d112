package cli

import (
	"io"

	"github.com/runnerr0/linkhist/internal/storage"
)

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	DBPath  string `long:"db-path" description:"Path to the history database (overrides config)"`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable verbose output"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// cmdEnv is what every subcommand shares: the parsed global flags and
// the build version.
type cmdEnv struct {
	globals *GlobalFlags
	version string
}

func (e cmdEnv) jsonOutput() bool { return e.globals != nil && e.globals.JSON }

func (e cmdEnv) verbose() bool { return e.globals != nil && e.globals.Verbose }

// ServeCommand runs the local daemon: HTTP API, capture endpoint and the
// optional capture proxy.
type ServeCommand struct {
	Host     string `long:"host" description:"Override daemon listen host"`
	Port     int    `long:"port" description:"Override daemon port"`
	Upstream string `long:"upstream" description:"Proxy this origin and capture its downloader responses"`
	LogLevel string `long:"log-level" description:"Override log level"`

	cmdEnv
}

// BrowseCommand opens the terminal browser.
type BrowseCommand struct {
	PageSize  int `long:"page-size" description:"Records loaded per page (overrides config)"`
	Threshold int `long:"threshold" description:"Rows from the end at which the next page loads" default:"-1"`

	cmdEnv
}

// SearchCommand filters the history by filename or link.
type SearchCommand struct {
	Limit int `long:"limit" description:"Maximum results (0 for all)" default:"20"`

	cmdEnv
}

// OpenCommand prints one stored link.
type OpenCommand struct {
	ID     string `long:"id" description:"Link ID (required)"`
	Format string `long:"format" description:"Output format: full | json | url | download | metadata" default:"full"`

	cmdEnv
}

// DeleteCommand removes one stored link.
type DeleteCommand struct {
	ID string `long:"id" description:"Link ID (required)"`

	cmdEnv
}

// StatusCommand shows database statistics and daemon reachability.
type StatusCommand struct{ cmdEnv }

// PurgeCommand deletes ALL stored links after confirmation.
type PurgeCommand struct {
	All   bool `long:"all" description:"Required flag to confirm purge intent"`
	Force bool `long:"force" description:"Skip safety confirmation prompt"`

	cmdEnv
	in    io.Reader     // confirmation input; nil means stdin
	store storage.Store // injectable for testing; nil means open the configured DB
}
