package cli

import (
	"errors"
	"fmt"
	"os"
	"slices"

	goflags "github.com/jessevdk/go-flags"
)

// commands exposes the registered subcommands to tests.
type commands struct {
	Serve  *ServeCommand
	Browse *BrowseCommand
	Search *SearchCommand
	Open   *OpenCommand
	Delete *DeleteCommand
	Purge  *PurgeCommand
	Status *StatusCommand
}

func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "linkhist"
	parser.LongDescription = "Local history of debrid-link generated download links: capture, browse and search."

	env := cmdEnv{globals: &globals, version: version}
	cmds := &commands{
		Serve:  &ServeCommand{cmdEnv: env},
		Browse: &BrowseCommand{cmdEnv: env},
		Search: &SearchCommand{cmdEnv: env},
		Open:   &OpenCommand{cmdEnv: env},
		Delete: &DeleteCommand{cmdEnv: env},
		Purge:  &PurgeCommand{cmdEnv: env},
		Status: &StatusCommand{cmdEnv: env},
	}

	parser.AddCommand("serve", "Start the linkhist daemon", "Start the local daemon: HTTP API, capture endpoint and optional capture proxy.", cmds.Serve)
	parser.AddCommand("browse", "Browse the history in the terminal", "Browse captured links newest first, with search and details.", cmds.Browse)
	parser.AddCommand("search", "Search captured links", "Search captured links by filename or link, newest first.", cmds.Search)
	parser.AddCommand("open", "Print a stored link", "Print one stored link in the chosen format.", cmds.Open)
	parser.AddCommand("delete", "Delete a stored link", "Delete one stored link. Deleting an unknown ID succeeds.", cmds.Delete)
	parser.AddCommand("purge", "Delete ALL stored links", "Delete ALL stored links. Destructive operation with safety prompt.", cmds.Purge)
	parser.AddCommand("status", "Show history statistics", "Show link counts, time range, top hosts and daemon reachability.", cmds.Status)

	return parser, &globals, cmds
}

// Run parses os.Args and executes the matched subcommand.
func Run(version string) error {
	return RunWithArgs(version, os.Args[1:])
}

// RunWithArgs parses args and executes the matched subcommand. Help
// requests are not errors.
func RunWithArgs(version string, args []string) error {
	if wantsVersion(args) {
		fmt.Printf("linkhist %s\n", version)
		return nil
	}

	parser, _, _ := buildParser(version)
	_, err := parser.ParseArgs(args)

	var flagsErr *goflags.Error
	if errors.As(err, &flagsErr) && flagsErr.Type == goflags.ErrHelp {
		return nil
	}
	return err
}

// wantsVersion reports whether --version appears before any "--". The
// parser would otherwise demand a subcommand.
func wantsVersion(args []string) bool {
	if end := slices.Index(args, "--"); end >= 0 {
		args = args[:end]
	}
	return slices.Contains(args, "--version")
}
