package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Store defines the interface for link history data operations.
type Store interface {
	Put(ctx context.Context, rec LinkRecord) error
	Get(ctx context.Context, id string) (*LinkRecord, error)
	Delete(ctx context.Context, id string) error
	Iterate(ctx context.Context, opts IterateOptions) (*Cursor, error)
	Count(ctx context.Context) (int64, error)
	IndexCount(ctx context.Context) (int64, error)
	PurgeAll(ctx context.Context) error
	GetStats(ctx context.Context) (*Stats, error)
	Close() error
}

// linkColumns is the column list every link query selects, in scanLink order.
const linkColumns = `id, host, filename, time, link, download_link, expired, size, other_links, raw, sort_time`

// SQLiteStore implements Store backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB

	// Prepared statements
	putLink    *sql.Stmt
	getLink    *sql.Stmt
	deleteLink *sql.Stmt
}

// NewSQLiteStore creates a new SQLiteStore from an already-opened and migrated database.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}

	if err := s.prepareStatements(); err != nil {
		return nil, fmt.Errorf("prepare statements: %w", err)
	}

	return s, nil
}

// DB returns the underlying database handle.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.putLink, err = s.db.Prepare(`
		INSERT INTO links (id, host, filename, time, sort_time, link, download_link, expired, size, other_links, raw)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			host          = excluded.host,
			filename      = excluded.filename,
			time          = excluded.time,
			sort_time     = excluded.sort_time,
			link          = excluded.link,
			download_link = excluded.download_link,
			expired       = excluded.expired,
			size          = excluded.size,
			other_links   = excluded.other_links,
			raw           = excluded.raw,
			updated_at    = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return err
	}

	s.getLink, err = s.db.Prepare(`SELECT ` + linkColumns + ` FROM links WHERE id = ?`)
	if err != nil {
		return err
	}

	s.deleteLink, err = s.db.Prepare(`DELETE FROM links WHERE id = ?`)
	if err != nil {
		return err
	}

	return nil
}

// Put inserts rec, replacing any record with the same id.
func (s *SQLiteStore) Put(ctx context.Context, rec LinkRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("put link: %w: empty id", ErrInvalidRecord)
	}

	raw := rec.Raw
	if len(raw) == 0 {
		var err error
		raw, err = json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode link %s: %w", rec.ID, err)
		}
	}

	var otherLinks sql.NullString
	if len(rec.OtherLinks) > 0 {
		otherLinks = sql.NullString{String: string(rec.OtherLinks), Valid: true}
	}

	_, err := s.putLink.ExecContext(ctx,
		rec.ID, rec.Host, rec.Filename, rec.Time, NormalizeTime(rec.Time),
		rec.Link, rec.DownloadLink, rec.Expired, rec.Size, otherLinks, string(raw),
	)
	if err != nil {
		return fmt.Errorf("put link %s: %w", rec.ID, err)
	}
	return nil
}

// Get retrieves a single link by id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*LinkRecord, error) {
	rec, _, err := scanLink(s.getLink.QueryRowContext(ctx, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("link %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get link: %w", err)
	}
	return &rec, nil
}

// Delete removes the link with the given id. Deleting an id that does not
// exist succeeds.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.deleteLink.ExecContext(ctx, id); err != nil {
		return fmt.Errorf("delete link %s: %w", id, err)
	}
	return nil
}

// Count returns the number of stored links.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM links").Scan(&n); err != nil {
		return 0, fmt.Errorf("count links: %w", err)
	}
	return n, nil
}

// IndexCount returns the number of entries reachable through the time index.
func (s *SQLiteStore) IndexCount(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM links INDEXED BY idx_links_time WHERE sort_time IS NOT NULL",
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count time index: %w", err)
	}
	return n, nil
}

// PurgeAll deletes every link.
func (s *SQLiteStore) PurgeAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM links"); err != nil {
		return fmt.Errorf("purge links: %w", err)
	}
	return nil
}

// GetStats returns aggregate statistics about the database.
func (s *SQLiteStore) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(expired), 0), COALESCE(SUM(size), 0) FROM links",
	).Scan(&stats.TotalLinks, &stats.ExpiredLinks, &stats.TotalBytes)
	if err != nil {
		return nil, fmt.Errorf("count links: %w", err)
	}

	// Oldest and newest (handle empty DB)
	if stats.TotalLinks > 0 {
		var oldest, newest int64
		err = s.db.QueryRowContext(ctx, "SELECT MIN(sort_time), MAX(sort_time) FROM links").Scan(&oldest, &newest)
		if err != nil {
			return nil, fmt.Errorf("link time range: %w", err)
		}
		stats.OldestLink = time.UnixMilli(oldest)
		stats.NewestLink = time.UnixMilli(newest)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT host, COUNT(*) AS cnt FROM links GROUP BY host ORDER BY cnt DESC, host ASC LIMIT 10",
	)
	if err != nil {
		return nil, fmt.Errorf("top hosts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var hc HostCount
		if err := rows.Scan(&hc.Host, &hc.Count); err != nil {
			return nil, err
		}
		stats.TopHosts = append(stats.TopHosts, hc)
	}

	return stats, rows.Err()
}

// Close releases all prepared statements. The underlying *sql.DB is NOT
// closed; that is the caller's responsibility.
func (s *SQLiteStore) Close() error {
	stmts := []*sql.Stmt{s.putLink, s.getLink, s.deleteLink}
	var firstErr error
	for _, stmt := range stmts {
		if stmt == nil {
			continue
		}
		if err := stmt.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanLink reads one row selected with linkColumns.
func scanLink(row rowScanner) (LinkRecord, Position, error) {
	var rec LinkRecord
	var otherLinks sql.NullString
	var raw string
	var pos Position

	err := row.Scan(
		&rec.ID, &rec.Host, &rec.Filename, &rec.Time, &rec.Link,
		&rec.DownloadLink, &rec.Expired, &rec.Size, &otherLinks, &raw, &pos.SortTime,
	)
	if err != nil {
		return LinkRecord{}, Position{}, err
	}

	if otherLinks.Valid {
		rec.OtherLinks = json.RawMessage(otherLinks.String)
	}
	rec.Raw = json.RawMessage(raw)
	pos.ID = rec.ID

	return rec, pos, nil
}
