// Package history owns the browsing state of the link history: paging
// through the time index, searching it, and reacting to captures and user
// actions. Rendering is delegated to a Presenter.
package history

import "github.com/runnerr0/linkhist/internal/storage"

// Presenter renders history state. Implementations must be safe for use
// from multiple goroutines; capture, paging and search may call them
// concurrently.
type Presenter interface {
	// PrependRecord shows a newly captured record at the head of the list.
	PrependRecord(rec storage.LinkRecord)
	// AppendPage adds a page of older records. Within page, records are
	// ordered oldest to newest.
	AppendPage(page []storage.LinkRecord)
	// ReplaceList replaces the whole list with search results, newest first.
	ReplaceList(results []storage.LinkRecord)
	// RemoveRecord drops a record from the list and closes its detail view.
	RemoveRecord(id string)
	ShowDetail(rec storage.LinkRecord)
	CloseDetail()
}

// NopPresenter discards everything.
type NopPresenter struct{}

func (NopPresenter) PrependRecord(storage.LinkRecord) {}
func (NopPresenter) AppendPage([]storage.LinkRecord)  {}
func (NopPresenter) ReplaceList([]storage.LinkRecord) {}
func (NopPresenter) RemoveRecord(string)              {}
func (NopPresenter) ShowDetail(storage.LinkRecord)    {}
func (NopPresenter) CloseDetail()                     {}
