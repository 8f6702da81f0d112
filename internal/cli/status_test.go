package cli

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/linkhist/internal/storage"
)

func TestStatus_HumanOutput(t *testing.T) {
	store := openTestStore(t)
	seedLinks(t, store)

	cmd := &StatusCommand{cmdEnv: cmdEnv{globals: &GlobalFlags{}, version: "0.3.0"}}
	var err error
	output := captureOutput(t, func() {
		err = cmd.executeWithStore(context.Background(), store, storage.MemoryPath, "127.0.0.1:8722", false)
	})
	require.NoError(t, err)

	assert.Contains(t, output, "Version:       0.3.0")
	assert.Contains(t, output, "Links:         3")
	assert.Contains(t, output, "Expired:       1 (33.3%)")
	assert.Contains(t, output, "Total size:    6.00 MB")
	assert.Contains(t, output, "Top Hosts:")
	assert.Contains(t, output, "rapidgator.net")
	assert.Contains(t, output, "Daemon:        not running (127.0.0.1:8722)")
}

func TestStatus_EmptyDatabase(t *testing.T) {
	store := openTestStore(t)

	cmd := &StatusCommand{cmdEnv: cmdEnv{globals: &GlobalFlags{}, version: "test"}}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(context.Background(), store, storage.MemoryPath, "127.0.0.1:8722", true))
	})
	assert.Contains(t, output, "Links:         0")
	assert.NotContains(t, output, "Oldest:")
	assert.NotContains(t, output, "Top Hosts:")
	assert.Contains(t, output, "Daemon:        running on 127.0.0.1:8722")
}

func TestStatus_JSONOutput(t *testing.T) {
	store := openTestStore(t)
	seedLinks(t, store)

	cmd := &StatusCommand{cmdEnv: cmdEnv{globals: &GlobalFlags{JSON: true}, version: "test"}}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(context.Background(), store, storage.MemoryPath, "127.0.0.1:8722", false))
	})

	var out statusJSON
	require.NoError(t, json.Unmarshal([]byte(output), &out), output)
	assert.Equal(t, int64(3), out.TotalLinks)
	assert.Equal(t, int64(1), out.ExpiredLinks)
	assert.Equal(t, int64(6*1048576), out.TotalBytes)
	assert.Equal(t, "2023-11-14T22:13:20Z", out.OldestLink)
	assert.Equal(t, "2023-11-15T00:13:20Z", out.NewestLink)
	require.Len(t, out.TopHosts, 2)
	assert.Equal(t, hostCountJSON{Host: "rapidgator.net", Count: 2}, out.TopHosts[0])
	assert.Positive(t, out.DatabaseSizeBytes)
	assert.False(t, out.DaemonRunning)
}
