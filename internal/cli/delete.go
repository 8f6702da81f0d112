package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/runnerr0/linkhist/internal/storage"
)

// Execute implements the go-flags Commander interface for DeleteCommand.
func (c *DeleteCommand) Execute(args []string) error {
	if c.ID == "" {
		return fmt.Errorf("--id is required for delete command")
	}

	ctx := context.Background()
	opener, store, _, err := openStore(ctx, c.globals)
	if err != nil {
		return err
	}
	defer opener.Close()

	return c.executeWithStore(ctx, store)
}

func (c *DeleteCommand) executeWithStore(ctx context.Context, store storage.Store) error {
	if err := store.Delete(ctx, c.ID); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}

	if c.jsonOutput() {
		return writeJSON(os.Stdout, map[string]any{"deleted": true, "id": c.ID})
	}
	fmt.Printf("Deleted %s\n", c.ID)
	return nil
}
