package sessionstore

import (
	"database/sql"
	"fmt"
)

// migrateBeadIDColumn renames the historical bead_id column to task_id,
// idempotently, on open. It detects the old
// column via the table-info pragma and renames only if bead_id is
// present and task_id is not — safe to run on every Open() call,
// including against a freshly-created schema that never had bead_id.
func migrateBeadIDColumn(db *sql.DB) error {
	rows, err := db.Query("PRAGMA table_info(sessions)")
	if err != nil {
		return fmt.Errorf("reading sessions table info: %w", err)
	}

	var hasBeadID, hasTaskID bool
	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			rows.Close()
			return fmt.Errorf("scanning table info: %w", err)
		}
		switch name {
		case "bead_id":
			hasBeadID = true
		case "task_id":
			hasTaskID = true
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	if hasBeadID && !hasTaskID {
		if _, err := db.Exec("ALTER TABLE sessions RENAME COLUMN bead_id TO task_id"); err != nil {
			return fmt.Errorf("renaming bead_id to task_id: %w", err)
		}
	}
	return nil
}
