package history

import (
	"context"
	"fmt"
	"strings"

	"github.com/runnerr0/linkhist/internal/storage"
)

// Searcher filters the whole history by a case-insensitive substring of
// the filename or link.
type Searcher struct{}

// Search scans the time index newest first and returns every match in
// that order. An empty query matches everything.
func (s *Searcher) Search(ctx context.Context, store Store, query string) ([]storage.LinkRecord, error) {
	q := strings.ToLower(query)

	cur, err := store.Iterate(ctx, storage.IterateOptions{Direction: storage.Backward})
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	defer cur.Close()

	results := []storage.LinkRecord{}
	for cur.Next() {
		rec := cur.Record()
		if Matches(rec, q) {
			results = append(results, rec)
		}
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return results, nil
}

// Matches reports whether rec's filename or link contains the lowercase
// query.
func Matches(rec storage.LinkRecord, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(rec.Filename), lowerQuery) ||
		strings.Contains(strings.ToLower(rec.Link), lowerQuery)
}
