package history

import (
	"context"

	"github.com/runnerr0/linkhist/internal/storage"
)

// Store is the subset of the link store the history needs.
type Store interface {
	Put(ctx context.Context, rec storage.LinkRecord) error
	Get(ctx context.Context, id string) (*storage.LinkRecord, error)
	Delete(ctx context.Context, id string) error
	Iterate(ctx context.Context, opts storage.IterateOptions) (*storage.Cursor, error)
}

// OpenFunc returns the store, opening it on first use.
type OpenFunc func(ctx context.Context) (Store, error)

// FromOpener adapts a storage.Opener.
func FromOpener(o *storage.Opener) OpenFunc {
	return func(ctx context.Context) (Store, error) {
		s, err := o.Open(ctx)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// Static returns an OpenFunc that always yields s.
func Static(s Store) OpenFunc {
	return func(context.Context) (Store, error) { return s, nil }
}
