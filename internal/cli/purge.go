package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/runnerr0/linkhist/internal/storage"
)

const purgeConfirmation = "PURGE"

var (
	errPurgeNoInput  = errors.New("aborted: no input received")
	errPurgeMismatch = errors.New("aborted: confirmation text did not match")
)

func (c *PurgeCommand) setStore(s storage.Store) {
	c.store = s
}

// Execute implements the go-flags Commander interface for PurgeCommand.
func (c *PurgeCommand) Execute(args []string) error {
	if !c.All {
		return errors.New("purge requires --all flag for safety")
	}

	ctx := context.Background()
	store := c.store
	if store == nil {
		opener, opened, _, err := openStore(ctx, c.globals)
		if err != nil {
			return err
		}
		defer opener.Close()
		store = opened
	}

	if !c.Force {
		n, err := store.Count(ctx)
		if err != nil {
			return fmt.Errorf("counting links: %w", err)
		}
		in := c.in
		if in == nil {
			in = os.Stdin
		}
		if err := confirmPurge(os.Stdout, in, n); err != nil {
			return err
		}
	}

	if err := store.PurgeAll(ctx); err != nil {
		return fmt.Errorf("purge failed: %w", err)
	}

	if c.jsonOutput() {
		return writeJSON(os.Stdout, map[string]any{
			"purged":  true,
			"message": "all links deleted",
		})
	}
	fmt.Println("Purged all links. The history is empty.")
	return nil
}

// confirmPurge asks for the confirmation word on in. Anything else aborts.
func confirmPurge(w io.Writer, in io.Reader, n int64) error {
	fmt.Fprintf(w, "⚠ WARNING: This will permanently delete %d stored %s,\n", n, plural(int(n), "link", "links"))
	fmt.Fprintln(w, "  their download URLs and the original API payloads.")
	fmt.Fprintln(w, "This action cannot be undone.")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Type %q to confirm: ", purgeConfirmation)

	line := bufio.NewScanner(in)
	if !line.Scan() {
		return errPurgeNoInput
	}
	if strings.TrimSpace(line.Text()) != purgeConfirmation {
		return errPurgeMismatch
	}
	return nil
}
