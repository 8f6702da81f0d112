package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// Cursor walks the time index lazily. Rows are read from the database as
// Next is called; callers must Close the cursor when done.
//
//	cur, err := store.Iterate(ctx, IterateOptions{Direction: Backward})
//	...
//	defer cur.Close()
//	for cur.Next() {
//		rec := cur.Record()
//	}
//	if err := cur.Err(); err != nil { ... }
type Cursor struct {
	rows   *sql.Rows
	rec    LinkRecord
	pos    Position
	err    error
	closed bool
}

// Iterate opens a cursor over the time index. Entries with equal times are
// ordered by id in the same direction, so the order is total and a
// Position can resume it.
func (s *SQLiteStore) Iterate(ctx context.Context, opts IterateOptions) (*Cursor, error) {
	cmp, order := ">", "ASC"
	if opts.Direction == Backward {
		cmp, order = "<", "DESC"
	}

	query := `SELECT ` + linkColumns + ` FROM links INDEXED BY idx_links_time`
	var args []any
	if opts.After != nil {
		query += fmt.Sprintf(" WHERE (sort_time, id) %s (?, ?)", cmp)
		args = append(args, opts.After.SortTime, opts.After.ID)
	}
	query += fmt.Sprintf(" ORDER BY sort_time %s, id %s", order, order)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("open %s cursor: %w", opts.Direction, err)
	}
	return &Cursor{rows: rows}, nil
}

// Next advances to the next entry and reports whether one exists.
func (c *Cursor) Next() bool {
	if c.closed || c.err != nil {
		return false
	}
	if !c.rows.Next() {
		c.err = c.rows.Err()
		return false
	}
	rec, pos, err := scanLink(c.rows)
	if err != nil {
		c.err = fmt.Errorf("scan link: %w", err)
		return false
	}
	c.rec, c.pos = rec, pos
	return true
}

// Advance skips up to n entries without decoding them and returns how many
// were skipped. Fewer than n means the cursor is exhausted. Record is not
// meaningful again until the next successful Next.
func (c *Cursor) Advance(n int) int {
	skipped := 0
	for skipped < n && !c.closed && c.err == nil {
		if !c.rows.Next() {
			c.err = c.rows.Err()
			break
		}
		skipped++
	}
	return skipped
}

// Record returns the entry at the cursor.
func (c *Cursor) Record() LinkRecord {
	return c.rec
}

// Position returns the index position of the entry at the cursor.
func (c *Cursor) Position() Position {
	return c.pos
}

// Err returns the first error met while iterating.
func (c *Cursor) Err() error {
	return c.err
}

// Close releases the underlying rows. It is safe to call more than once.
func (c *Cursor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.rows.Close()
}
