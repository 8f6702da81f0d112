package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/runnerr0/linkhist/internal/history"
	"github.com/runnerr0/linkhist/internal/storage"
	"github.com/runnerr0/linkhist/internal/view"
)

// Execute implements the go-flags Commander interface for SearchCommand.
func (c *SearchCommand) Execute(args []string) error {
	ctx := context.Background()
	opener, store, _, err := openStore(ctx, c.globals)
	if err != nil {
		return err
	}
	defer opener.Close()

	return c.executeWithStore(ctx, store, strings.Join(args, " "))
}

// executeWithStore runs the search against a provided store (for testing).
func (c *SearchCommand) executeWithStore(ctx context.Context, store history.Store, query string) error {
	if c.Limit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}

	var searcher history.Searcher
	results, err := searcher.Search(ctx, store, query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	total := len(results)
	if c.Limit > 0 && len(results) > c.Limit {
		results = results[:c.Limit]
	}

	if c.jsonOutput() {
		return c.printJSON(query, total, results)
	}
	c.printHuman(query, total, results)
	return nil
}

func (c *SearchCommand) printHuman(query string, total int, results []storage.LinkRecord) {
	if total == 0 {
		if query != "" {
			fmt.Printf("No links found for %q\n", query)
		} else {
			fmt.Println("No links captured yet")
		}
		return
	}

	word := plural(total, "link", "links")
	if query != "" {
		fmt.Printf("Found %d %s for %q", total, word, query)
	} else {
		fmt.Printf("Found %d %s", total, word)
	}
	if len(results) < total {
		fmt.Printf(" (showing %d)", len(results))
	}
	fmt.Print("\n\n")

	for i, rec := range results {
		row := view.NewRow(rec, time.Local)
		fmt.Printf("%d. %s", i+1, row.Filename)
		if row.Host != "" {
			fmt.Printf(" (%s, %s)", row.Host, row.Size)
		}
		fmt.Println()
		fmt.Printf("   %s\n", row.Link)

		meta := row.Date + " · " + row.ID
		if row.Expired {
			meta += " · expired"
		}
		fmt.Printf("   %s\n", meta)

		if i < len(results)-1 {
			fmt.Println()
		}
	}
}

type jsonSearchOutput struct {
	Count   int        `json:"count"`
	Total   int        `json:"total"`
	Query   string     `json:"query"`
	Results []view.Row `json:"results"`
}

func (c *SearchCommand) printJSON(query string, total int, results []storage.LinkRecord) error {
	out := jsonSearchOutput{
		Count:   len(results),
		Total:   total,
		Query:   query,
		Results: make([]view.Row, len(results)),
	}
	for i, rec := range results {
		out.Results[i] = view.NewRow(rec, time.UTC)
	}
	return writeJSON(os.Stdout, out)
}
