package storage

import "database/sql"

// migrateV001 creates the links table. sort_time holds the record time
// normalized to epoch milliseconds.
func migrateV001(tx *sql.Tx) error {
	stmts := []string{
		// ── Tables ──────────────────────────────────────────────

		`CREATE TABLE IF NOT EXISTS links (
			id            TEXT PRIMARY KEY,
			host          TEXT NOT NULL DEFAULT '',
			filename      TEXT NOT NULL DEFAULT '',
			time          INTEGER NOT NULL DEFAULT 0,
			sort_time     INTEGER NOT NULL DEFAULT 0,
			link          TEXT NOT NULL DEFAULT '',
			download_link TEXT NOT NULL DEFAULT '',
			expired       BOOLEAN NOT NULL DEFAULT 0,
			size          INTEGER NOT NULL DEFAULT 0,
			other_links   TEXT,
			raw           TEXT NOT NULL DEFAULT '{}',
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, s := range stmts {
		if _, err := tx.Exec(s); err != nil {
			return err
		}
	}
	return nil
}
