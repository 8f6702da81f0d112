package storage

import "database/sql"

// migrateV002 adds the time index that backs cursor iteration.
func migrateV002(tx *sql.Tx) error {
	stmts := []string{
		// ── Indexes ─────────────────────────────────────────────

		`CREATE INDEX IF NOT EXISTS idx_links_time ON links(sort_time, id)`,
	}

	for _, s := range stmts {
		if _, err := tx.Exec(s); err != nil {
			return err
		}
	}
	return nil
}
