package view

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/linkhist/internal/history"
	"github.com/runnerr0/linkhist/internal/storage"
)

var _ history.Presenter = (*List)(nil)

func rec(id string, ts int64) storage.LinkRecord {
	return storage.LinkRecord{ID: id, Filename: id + ".zip", Time: ts, Size: 3145728, Host: "up.to"}
}

func listIDs(l *List) []string {
	var out []string
	for _, r := range l.Items() {
		out = append(out, r.ID)
	}
	return out
}

func TestList_PagesStayNewestFirst(t *testing.T) {
	l := NewList(time.UTC)

	// Pages arrive oldest to newest within each page.
	l.AppendPage([]storage.LinkRecord{rec("r3", 3), rec("r4", 4), rec("r5", 5)})
	l.AppendPage([]storage.LinkRecord{rec("r1", 1), rec("r2", 2)})

	assert.Equal(t, []string{"r5", "r4", "r3", "r2", "r1"}, listIDs(l))
}

func TestList_PrependAndDedup(t *testing.T) {
	l := NewList(time.UTC)
	l.AppendPage([]storage.LinkRecord{rec("a", 1), rec("b", 2)})

	l.PrependRecord(rec("c", 3))
	l.PrependRecord(rec("a", 9))
	l.AppendPage([]storage.LinkRecord{rec("b", 2)})

	assert.Equal(t, []string{"c", "b", "a"}, listIDs(l))
	assert.Equal(t, 3, l.Len())
}

func TestList_ReplaceList(t *testing.T) {
	l := NewList(time.UTC)
	l.AppendPage([]storage.LinkRecord{rec("a", 1), rec("b", 2)})

	l.ReplaceList([]storage.LinkRecord{rec("z", 9), rec("y", 8), rec("z", 9)})
	assert.Equal(t, []string{"z", "y"}, listIDs(l))

	// Records dropped by the replacement can be listed again.
	l.PrependRecord(rec("a", 1))
	assert.Equal(t, []string{"a", "z", "y"}, listIDs(l))

	l.ReplaceList(nil)
	assert.Zero(t, l.Len())
}

func TestList_DetailLifecycle(t *testing.T) {
	l := NewList(time.UTC)
	l.AppendPage([]storage.LinkRecord{rec("a", 1), rec("b", 2)})

	_, open := l.Detail()
	assert.False(t, open)

	l.ShowDetail(rec("a", 1))
	d, open := l.Detail()
	require.True(t, open)
	assert.Equal(t, "a", d.ID)

	// Removing another record keeps the detail.
	l.RemoveRecord("b")
	_, open = l.Detail()
	assert.True(t, open)

	l.RemoveRecord("a")
	_, open = l.Detail()
	assert.False(t, open)
	assert.Empty(t, listIDs(l))

	l.ShowDetail(rec("x", 1))
	l.CloseDetail()
	_, open = l.Detail()
	assert.False(t, open)
}

func TestList_OnChange(t *testing.T) {
	l := NewList(time.UTC)
	var n atomic.Int32
	l.OnChange(func() { n.Add(1) })

	l.PrependRecord(rec("a", 1))
	l.PrependRecord(rec("a", 1)) // duplicate, no change
	l.AppendPage(nil)
	l.ShowDetail(rec("a", 1))

	assert.Equal(t, int32(3), n.Load())
}

func TestList_Rows(t *testing.T) {
	l := NewList(time.UTC)
	l.PrependRecord(storage.LinkRecord{
		ID: "a", Host: "1fichier.com", Filename: "f.bin", Time: 1700000000,
		Size: 1572864, Expired: true, Link: "https://l", DownloadLink: "https://d",
	})

	rows := l.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, Row{
		ID:           "a",
		Host:         "1fichier.com",
		HostClass:    "sprite-1fichier_com",
		Filename:     "f.bin",
		Date:         "2023-11-14 22:13",
		Link:         "https://l",
		DownloadLink: "https://d",
		Size:         "1.50 MB",
		Expired:      true,
	}, rows[0])
}

func TestNewRow_SecondsAndMillisRenderAlike(t *testing.T) {
	a := NewRow(storage.LinkRecord{Time: 1700000000}, time.UTC)
	b := NewRow(storage.LinkRecord{Time: 1700000000000}, time.UTC)
	assert.Equal(t, a.Date, b.Date)
}
