package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	Apply   func(tx *sql.Tx) error
}

// MigrationRunner applies pending migrations to a SQLite database.
type MigrationRunner struct {
	db          *sql.DB
	journalMode string
	migrations  []migration
}

// NewMigrationRunner creates a MigrationRunner with all registered migrations.
func NewMigrationRunner(db *sql.DB) *MigrationRunner {
	return &MigrationRunner{
		db:          db,
		journalMode: "WAL",
		migrations: []migration{
			{Version: 1, Name: "links_table", Apply: migrateV001},
			{Version: 2, Name: "links_time_index", Apply: migrateV002},
		},
	}
}

// SetJournalMode overrides the SQLite journal mode applied by Run.
// Unknown modes are rejected.
func (r *MigrationRunner) SetJournalMode(mode string) error {
	m := strings.ToUpper(strings.TrimSpace(mode))
	switch m {
	case "":
		return nil
	case "WAL", "DELETE", "TRUNCATE", "PERSIST", "MEMORY", "OFF":
		r.journalMode = m
		return nil
	default:
		return fmt.Errorf("unknown journal mode %q", mode)
	}
}

// Versions returns the registered migration versions in order.
func (r *MigrationRunner) Versions() []int {
	out := make([]int, len(r.migrations))
	for i, m := range r.migrations {
		out[i] = m.Version
	}
	return out
}

// Run brings the schema up to date: it sets the journal mode, enables
// foreign keys, then applies every registered migration not yet listed in
// schema_migrations, each in its own transaction.
func (r *MigrationRunner) Run(ctx context.Context) error {
	setup := []struct{ what, stmt string }{
		{"set journal mode", "PRAGMA journal_mode = " + r.journalMode},
		{"enable foreign keys", "PRAGMA foreign_keys = ON"},
		{"create schema_migrations table", `CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`},
	}
	for _, s := range setup {
		if _, err := r.db.ExecContext(ctx, s.stmt); err != nil {
			return fmt.Errorf("%s: %w", s.what, err)
		}
	}

	applied, err := r.applied(ctx)
	if err != nil {
		return fmt.Errorf("read schema_migrations: %w", err)
	}

	for _, m := range r.migrations {
		if applied[m.Version] {
			continue
		}
		if err := r.apply(ctx, m); err != nil {
			return fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Name, err)
		}
	}
	return nil
}

// applied returns the set of recorded migration versions.
func (r *MigrationRunner) applied(ctx context.Context) (map[int]bool, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	versions := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions[v] = true
	}
	return versions, rows.Err()
}

func (r *MigrationRunner) apply(ctx context.Context, m migration) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := m.Apply(tx); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, name) VALUES (?, ?)", m.Version, m.Name); err != nil {
		return fmt.Errorf("record: %w", err)
	}
	return tx.Commit()
}
