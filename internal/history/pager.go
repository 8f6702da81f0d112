package history

import (
	"context"
	"fmt"
	"sync"

	"github.com/runnerr0/linkhist/internal/storage"
)

// DefaultPageSize is the number of records loaded per page.
const DefaultPageSize = 100

// PagerState is a snapshot of pagination progress.
type PagerState struct {
	Offset    int  `json:"offset"`
	PageSize  int  `json:"page_size"`
	Loading   bool `json:"loading"`
	Exhausted bool `json:"exhausted"`
}

// Pager walks the time index backward one page at a time. Only one page
// load runs at a time; further calls while a load is in flight, or once
// the index is exhausted, return immediately.
type Pager struct {
	mu         sync.Mutex
	pageSize   int
	offset     int
	loading    bool
	exhausted  bool
	generation uint64
}

// NewPager returns a Pager. A non-positive pageSize uses DefaultPageSize.
func NewPager(pageSize int) *Pager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Pager{pageSize: pageSize}
}

// State returns the current pagination state.
func (p *Pager) State() PagerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PagerState{
		Offset:    p.offset,
		PageSize:  p.pageSize,
		Loading:   p.loading,
		Exhausted: p.exhausted,
	}
}

// Reset rewinds to the first page. A load already in flight finishes but
// its page is discarded.
func (p *Pager) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.offset = 0
	p.loading = false
	p.exhausted = false
	p.generation++
}

// abandon drops the load in flight, if any, without rewinding. The
// dropped page does not advance the offset.
func (p *Pager) abandon() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loading {
		p.loading = false
		p.generation++
	}
}

// LoadNext reads the next page from store and passes it to appendPage,
// oldest record first. It returns the number of records loaded. Nothing is
// appended for an empty page, a guarded call, or a load overtaken by Reset.
// appendPage runs with the Pager locked and must not call back into it.
func (p *Pager) LoadNext(ctx context.Context, store Store, appendPage func([]storage.LinkRecord)) (int, error) {
	p.mu.Lock()
	if p.loading || p.exhausted {
		p.mu.Unlock()
		return 0, nil
	}
	p.loading = true
	gen, offset, size := p.generation, p.offset, p.pageSize
	p.mu.Unlock()

	page, err := readPage(ctx, store, offset, size)

	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.generation {
		return 0, nil
	}
	p.loading = false
	if err != nil {
		return 0, err
	}

	if len(page) == 0 {
		p.exhausted = true
	} else {
		appendPage(page)
	}
	p.offset += p.pageSize
	return len(page), nil
}

// readPage collects up to size records after skipping offset, newest
// first, and returns them reversed.
func readPage(ctx context.Context, store Store, offset, size int) ([]storage.LinkRecord, error) {
	cur, err := store.Iterate(ctx, storage.IterateOptions{Direction: storage.Backward})
	if err != nil {
		return nil, fmt.Errorf("load page at offset %d: %w", offset, err)
	}
	defer cur.Close()

	page := make([]storage.LinkRecord, 0, size)
	if cur.Advance(offset) == offset {
		for len(page) < size && cur.Next() {
			page = append(page, cur.Record())
		}
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("load page at offset %d: %w", offset, err)
	}

	for i, j := 0, len(page)-1; i < j; i, j = i+1, j-1 {
		page[i], page[j] = page[j], page[i]
	}
	return page, nil
}

// NearEnd reports whether a scroll position is within threshold of the end
// of the rendered list, the point at which the next page should load.
func NearEnd(scrollTop, clientHeight, scrollHeight, threshold int) bool {
	return scrollTop+clientHeight >= scrollHeight-threshold
}
