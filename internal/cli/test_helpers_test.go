package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/runnerr0/linkhist/internal/storage"
)

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// tempArgs points --config and --db-path into a temp dir and isolates HOME.
func tempArgs(t *testing.T) (args []string, dbPath string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	dbPath = filepath.Join(dir, "data", "linkhist.db")
	return []string{"--config", filepath.Join(dir, "config.yaml"), "--db-path", dbPath}, dbPath
}

// openTestStore creates a migrated in-memory store.
func openTestStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()
	opener := storage.NewOpener(storage.MemoryPath, nil)
	t.Cleanup(func() { opener.Close() })
	store, err := opener.Open(context.Background())
	require.NoError(t, err)
	return store
}

// seedLinks stores a fixed set of links, l1 oldest.
func seedLinks(t *testing.T, store storage.Store) {
	t.Helper()
	ctx := context.Background()
	links := []struct {
		id, host, filename string
		expired            bool
	}{
		{"l1", "rapidgator.net", "Ubuntu-24.04-desktop.iso", false},
		{"l2", "1fichier.com", "holiday-photos.zip", true},
		{"l3", "rapidgator.net", "ubuntu-server.img", false},
	}
	for i, l := range links {
		require.NoError(t, store.Put(ctx, storage.LinkRecord{
			ID:           l.id,
			Host:         l.host,
			Filename:     l.filename,
			Time:         int64(1700000000 + 3600*i),
			Link:         fmt.Sprintf("https://%s/file/%s", l.host, l.id),
			DownloadLink: fmt.Sprintf("https://dl.debrid.example/%s", l.id),
			Size:         int64(i+1) * 1048576,
			Expired:      l.expired,
		}))
	}
}
