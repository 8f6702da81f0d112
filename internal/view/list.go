// Package view holds an in-memory rendering of the link history: the
// visible list, newest at the top, and the open detail record.
package view

import (
	"sync"
	"time"

	"github.com/runnerr0/linkhist/internal/storage"
)

// List is a history presenter that keeps the rendered state in memory.
// A record id appears at most once; a record already listed is not added
// again.
type List struct {
	mu     sync.RWMutex
	items  []storage.LinkRecord
	ids    map[string]struct{}
	detail *storage.LinkRecord
	loc    *time.Location

	// onChange, when set, is called after every mutation.
	onChange func()
}

// NewList returns an empty List rendering dates in loc (nil means local).
func NewList(loc *time.Location) *List {
	if loc == nil {
		loc = time.Local
	}
	return &List{ids: make(map[string]struct{}), loc: loc}
}

// OnChange registers fn to run after each mutation. fn is called without
// the list locked.
func (l *List) OnChange(fn func()) {
	l.mu.Lock()
	l.onChange = fn
	l.mu.Unlock()
}

func (l *List) changed() {
	l.mu.RLock()
	fn := l.onChange
	l.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// PrependRecord puts rec at the top of the list.
func (l *List) PrependRecord(rec storage.LinkRecord) {
	l.mu.Lock()
	if _, ok := l.ids[rec.ID]; ok {
		l.mu.Unlock()
		return
	}
	l.ids[rec.ID] = struct{}{}
	l.items = append([]storage.LinkRecord{rec}, l.items...)
	l.mu.Unlock()
	l.changed()
}

// AppendPage adds a page of older records below the current list. The page
// arrives oldest first; its newest record ends up directly under the
// existing items.
func (l *List) AppendPage(page []storage.LinkRecord) {
	l.mu.Lock()
	for i := len(page) - 1; i >= 0; i-- {
		rec := page[i]
		if _, ok := l.ids[rec.ID]; ok {
			continue
		}
		l.ids[rec.ID] = struct{}{}
		l.items = append(l.items, rec)
	}
	l.mu.Unlock()
	l.changed()
}

// ReplaceList swaps the list for results, kept in the given order.
func (l *List) ReplaceList(results []storage.LinkRecord) {
	l.mu.Lock()
	l.items = make([]storage.LinkRecord, 0, len(results))
	l.ids = make(map[string]struct{}, len(results))
	for _, rec := range results {
		if _, ok := l.ids[rec.ID]; ok {
			continue
		}
		l.ids[rec.ID] = struct{}{}
		l.items = append(l.items, rec)
	}
	l.mu.Unlock()
	l.changed()
}

// RemoveRecord drops id from the list and closes its detail if open.
func (l *List) RemoveRecord(id string) {
	l.mu.Lock()
	if _, ok := l.ids[id]; ok {
		delete(l.ids, id)
		for i, rec := range l.items {
			if rec.ID == id {
				l.items = append(l.items[:i], l.items[i+1:]...)
				break
			}
		}
	}
	if l.detail != nil && l.detail.ID == id {
		l.detail = nil
	}
	l.mu.Unlock()
	l.changed()
}

// ShowDetail opens the detail view for rec.
func (l *List) ShowDetail(rec storage.LinkRecord) {
	l.mu.Lock()
	l.detail = &rec
	l.mu.Unlock()
	l.changed()
}

// CloseDetail closes the detail view.
func (l *List) CloseDetail() {
	l.mu.Lock()
	l.detail = nil
	l.mu.Unlock()
	l.changed()
}

// Items returns a copy of the list, top to bottom.
func (l *List) Items() []storage.LinkRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]storage.LinkRecord, len(l.items))
	copy(out, l.items)
	return out
}

// Len returns the number of listed records.
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// Detail returns the record whose detail is open.
func (l *List) Detail() (storage.LinkRecord, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.detail == nil {
		return storage.LinkRecord{}, false
	}
	return *l.detail, true
}

// Rows returns the list formatted for display.
func (l *List) Rows() []Row {
	items := l.Items()
	rows := make([]Row, len(items))
	for i, rec := range items {
		rows[i] = NewRow(rec, l.loc)
	}
	return rows
}

// Location returns the time zone dates are rendered in.
func (l *List) Location() *time.Location {
	return l.loc
}
