package history

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/runnerr0/linkhist/internal/storage"
)

// call is one presenter invocation.
type call struct {
	Method string
	IDs    []string
}

// recordingPresenter keeps every call it receives.
type recordingPresenter struct {
	mu    sync.Mutex
	calls []call
}

func ids(recs []storage.LinkRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

func (p *recordingPresenter) add(method string, idList ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, call{Method: method, IDs: idList})
}

func (p *recordingPresenter) PrependRecord(rec storage.LinkRecord) { p.add("prepend", rec.ID) }
func (p *recordingPresenter) AppendPage(page []storage.LinkRecord) { p.add("append", ids(page)...) }
func (p *recordingPresenter) ReplaceList(r []storage.LinkRecord)   { p.add("replace", ids(r)...) }
func (p *recordingPresenter) RemoveRecord(id string)               { p.add("remove", id) }
func (p *recordingPresenter) ShowDetail(rec storage.LinkRecord)    { p.add("show", rec.ID) }
func (p *recordingPresenter) CloseDetail()                         { p.add("close") }

func (p *recordingPresenter) byMethod(method string) []call {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []call
	for _, c := range p.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (p *recordingPresenter) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = nil
}

// openTestStore returns a migrated in-memory store limited to one
// connection.
func openTestStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()
	o := storage.NewOpener(storage.MemoryPath, nil)
	t.Cleanup(func() { o.Close() })
	st, err := o.Open(context.Background())
	require.NoError(t, err)
	return st
}

// seed stores n records with ids r000.. and strictly increasing times.
func seed(t *testing.T, st *storage.SQLiteStore, n int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < n; i++ {
		require.NoError(t, st.Put(ctx, storage.LinkRecord{
			ID:       fmt.Sprintf("r%03d", i),
			Filename: fmt.Sprintf("file-%03d.bin", i),
			Link:     fmt.Sprintf("https://l.example/%03d", i),
			Time:     int64(1700000000 + i),
		}))
	}
}

// holdConnection takes the store's only connection so the next query
// blocks until release is called.
func holdConnection(t *testing.T, st *storage.SQLiteStore) (release func()) {
	t.Helper()
	conn, err := st.DB().Conn(context.Background())
	require.NoError(t, err)
	var once sync.Once
	release = func() { once.Do(func() { conn.Close() }) }
	t.Cleanup(release)
	return release
}
