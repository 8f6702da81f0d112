package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/runnerr0/linkhist/internal/storage"
	"github.com/runnerr0/linkhist/internal/view"
)

// Execute implements the go-flags Commander interface for OpenCommand.
func (c *OpenCommand) Execute(args []string) error {
	if c.ID == "" {
		return fmt.Errorf("--id is required for open command")
	}

	ctx := context.Background()
	opener, store, _, err := openStore(ctx, c.globals)
	if err != nil {
		return err
	}
	defer opener.Close()

	return c.executeWithStore(ctx, store)
}

func (c *OpenCommand) executeWithStore(ctx context.Context, store storage.Store) error {
	rec, err := store.Get(ctx, c.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("link not found: %s", c.ID)
		}
		return err
	}

	// JSON output (--json global flag)
	if c.jsonOutput() {
		return c.outputJSON(rec)
	}

	switch c.Format {
	case "url":
		fmt.Println(rec.Link)
	case "download":
		fmt.Println(rec.DownloadLink)
	case "metadata":
		return writeJSON(os.Stdout, view.NewRow(*rec, time.UTC))
	case "json":
		return c.outputJSON(rec)
	case "full", "":
		c.outputFull(rec)
	default:
		return fmt.Errorf("unknown format %q (use full, json, url, download or metadata)", c.Format)
	}
	return nil
}

func (c *OpenCommand) outputFull(rec *storage.LinkRecord) {
	row := view.NewRow(*rec, time.Local)
	expired := "no"
	if rec.Expired {
		expired = "yes"
	}
	fmt.Println(rec.ID)
	fmt.Printf("Filename:  %s\n", row.Filename)
	fmt.Printf("Host:      %s\n", row.Host)
	fmt.Printf("Link:      %s\n", row.Link)
	fmt.Printf("Download:  %s\n", row.DownloadLink)
	fmt.Printf("Size:      %s\n", row.Size)
	fmt.Printf("Expired:   %s\n", expired)
	fmt.Printf("Captured:  %s\n", row.Date)
}

// outputJSON prints the record as stored, including the original payload.
func (c *OpenCommand) outputJSON(rec *storage.LinkRecord) error {
	out := struct {
		*storage.LinkRecord
		Captured string          `json:"captured"`
		Payload  json.RawMessage `json:"payload,omitempty"`
	}{
		LinkRecord: rec,
		Captured:   rec.CapturedAt().UTC().Format(time.RFC3339),
		Payload:    rec.Raw,
	}
	return writeJSON(os.Stdout, out)
}
