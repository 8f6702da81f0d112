package cli

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/runnerr0/linkhist/internal/storage"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version           string          `json:"version"`
	DatabasePath      string          `json:"database_path"`
	DatabaseSizeBytes int64           `json:"database_size_bytes"`
	TotalLinks        int64           `json:"total_links"`
	ExpiredLinks      int64           `json:"expired_links"`
	TotalBytes        int64           `json:"total_bytes"`
	OldestLink        string          `json:"oldest_link,omitempty"`
	NewestLink        string          `json:"newest_link,omitempty"`
	TopHosts          []hostCountJSON `json:"top_hosts"`
	DaemonAddr        string          `json:"daemon_addr"`
	DaemonRunning     bool            `json:"daemon_running"`
}

type hostCountJSON struct {
	Host  string `json:"host"`
	Count int64  `json:"count"`
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	ctx := context.Background()
	opener, store, cfg, err := openStore(ctx, c.globals)
	if err != nil {
		return err
	}
	defer opener.Close()

	addr := cfg.DaemonAddr()
	return c.executeWithStore(ctx, store, opener.Path(), addr, checkDaemon(addr))
}

// executeWithStore runs status against a provided store (for testing).
func (c *StatusCommand) executeWithStore(ctx context.Context, store *storage.SQLiteStore, dbPath, daemonAddr string, daemonRunning bool) error {
	stats, err := store.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}
	stats.DatabaseSizeBytes = getDatabaseSize(store.DB(), dbPath)

	if c.jsonOutput() {
		return c.printStatusJSON(stats, dbPath, daemonAddr, daemonRunning)
	}
	c.printStatusHuman(stats, dbPath, daemonAddr, daemonRunning)
	return nil
}

func (c *StatusCommand) printStatusHuman(stats *storage.Stats, dbPath, daemonAddr string, daemonRunning bool) {
	fmt.Println("linkhist status")
	fmt.Println("===============")
	fmt.Printf("Version:       %s\n", c.version)
	fmt.Printf("Database:      %s (%s)\n", dbPath, humanize.IBytes(uint64(stats.DatabaseSizeBytes)))
	fmt.Printf("Links:         %s\n", humanize.Comma(stats.TotalLinks))

	if stats.TotalLinks > 0 {
		pct := float64(stats.ExpiredLinks) / float64(stats.TotalLinks) * 100
		fmt.Printf("Expired:       %s (%.1f%%)\n", humanize.Comma(stats.ExpiredLinks), pct)
		fmt.Printf("Total size:    %s\n", storage.FormatSize(stats.TotalBytes))
		fmt.Printf("Oldest:        %s\n", stats.OldestLink.Local().Format("2006-01-02"))
		fmt.Printf("Newest:        %s\n", stats.NewestLink.Local().Format("2006-01-02"))
	}

	if len(stats.TopHosts) > 0 {
		fmt.Println()
		fmt.Println("Top Hosts:")
		for _, h := range stats.TopHosts {
			fmt.Printf("  %-20s %s\n", h.Host, humanize.Comma(h.Count))
		}
	}

	fmt.Println()
	if daemonRunning {
		fmt.Printf("Daemon:        running on %s\n", daemonAddr)
	} else {
		fmt.Printf("Daemon:        not running (%s)\n", daemonAddr)
	}
}

func (c *StatusCommand) printStatusJSON(stats *storage.Stats, dbPath, daemonAddr string, daemonRunning bool) error {
	out := statusJSON{
		Version:           c.version,
		DatabasePath:      dbPath,
		DatabaseSizeBytes: stats.DatabaseSizeBytes,
		TotalLinks:        stats.TotalLinks,
		ExpiredLinks:      stats.ExpiredLinks,
		TotalBytes:        stats.TotalBytes,
		TopHosts:          make([]hostCountJSON, len(stats.TopHosts)),
		DaemonAddr:        daemonAddr,
		DaemonRunning:     daemonRunning,
	}

	if stats.TotalLinks > 0 {
		out.OldestLink = stats.OldestLink.UTC().Format(time.RFC3339)
		out.NewestLink = stats.NewestLink.UTC().Format(time.RFC3339)
	}

	for i, h := range stats.TopHosts {
		out.TopHosts[i] = hostCountJSON{Host: h.Host, Count: h.Count}
	}

	return writeJSON(os.Stdout, out)
}

// getDatabaseSize returns the database file size in bytes.
// For on-disk databases, it uses os.Stat. For in-memory databases,
// it queries page_count * page_size.
func getDatabaseSize(db *sql.DB, dbPath string) int64 {
	if info, err := os.Stat(dbPath); err == nil {
		return info.Size()
	}

	var pageCount, pageSize int64
	if err := db.QueryRow("PRAGMA page_count").Scan(&pageCount); err != nil {
		return 0
	}
	if err := db.QueryRow("PRAGMA page_size").Scan(&pageSize); err != nil {
		return 0
	}
	return pageCount * pageSize
}

// checkDaemon reports whether the daemon answers GET /status at addr
// within one second.
func checkDaemon(addr string) bool {
	client := &http.Client{Timeout: 1 * time.Second}
	resp, err := client.Get("http://" + addr + "/status")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
