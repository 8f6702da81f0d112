package nav

import (
	"context"
	"errors"
	"sync"
)

// ErrFeedClosed is returned by Publish after Close.
var ErrFeedClosed = errors.New("navigation feed closed")

// Source delivers normalized "path changed" signals.
type Source interface {
	PathChanges() <-chan string
}

// Feed is a Source fed by explicit Publish calls, e.g. from the daemon's
// navigation endpoint.
type Feed struct {
	ch   chan string
	done chan struct{}
	once sync.Once

	mu     sync.RWMutex
	closed bool
}

// NewFeed returns a Feed buffering up to buffer signals.
func NewFeed(buffer int) *Feed {
	return &Feed{ch: make(chan string, buffer), done: make(chan struct{})}
}

// PathChanges implements Source.
func (f *Feed) PathChanges() <-chan string {
	return f.ch
}

// Publish queues path, blocking while the buffer is full until ctx is
// done or the feed closes.
func (f *Feed) Publish(ctx context.Context, path string) error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return ErrFeedClosed
	}
	select {
	case f.ch <- path:
		return nil
	case <-f.done:
		return ErrFeedClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close ends the feed. Consumers see the channel close after draining.
// Publishers blocked on a full buffer return ErrFeedClosed.
func (f *Feed) Close() {
	f.once.Do(func() {
		// Blocked publishers hold the read lock until done is closed.
		close(f.done)

		f.mu.Lock()
		defer f.mu.Unlock()
		f.closed = true
		close(f.ch)
	})
}
