package cli

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/linkhist/internal/storage"
)

func TestDelete_RemovesLink(t *testing.T) {
	store := openTestStore(t)
	seedLinks(t, store)

	cmd := &DeleteCommand{ID: "l2", cmdEnv: cmdEnv{globals: &GlobalFlags{}}}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(context.Background(), store))
	})
	assert.Equal(t, "Deleted l2\n", output)

	_, err := store.Get(context.Background(), "l2")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestDelete_UnknownIDSucceeds(t *testing.T) {
	store := openTestStore(t)

	cmd := &DeleteCommand{ID: "ghost", cmdEnv: cmdEnv{globals: &GlobalFlags{JSON: true}}}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(context.Background(), store))
	})

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &out))
	assert.Equal(t, true, out["deleted"])
	assert.Equal(t, "ghost", out["id"])
}

func TestDelete_ThroughParser(t *testing.T) {
	args, dbPath := tempArgs(t)

	opener := storage.NewOpener(dbPath, nil)
	store, err := opener.Open(context.Background())
	require.NoError(t, err)
	seedLinks(t, store)
	require.NoError(t, opener.Close())

	captureOutput(t, func() {
		require.NoError(t, RunWithArgs("test", append(args, "delete", "--id", "l1")))
	})

	opener = storage.NewOpener(dbPath, nil)
	defer opener.Close()
	store, err = opener.Open(context.Background())
	require.NoError(t, err)
	_, err = store.Get(context.Background(), "l1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
