// Package dbutil provides the shared sqlite-opening discipline used by
// the embedded stores (sessions, mail, events, metrics): write-ahead
// logging, a 5-second busy timeout, and normal synchronous mode, so that
// many short-lived CLI processes and the long-lived watchdog can all
// write to the same file concurrently without the caller hand-rolling
// locking.
package dbutil

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// BusyTimeoutMs is the busy-wait timeout applied to every store.
const BusyTimeoutMs = 5000

// Open opens (creating the parent directory and file if needed) a sqlite
// database at path configured with WAL mode, the shared busy timeout, and
// normal synchronous mode.
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)", path, BusyTimeoutMs)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		fmt.Sprintf("PRAGMA busy_timeout=%d", BusyTimeoutMs),
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=OFF",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying %q: %w", p, err)
		}
	}

	// Serialize writers in-process too: sqlite's WAL mode allows one
	// writer at a time across processes, but a single *sql.DB with an
	// unbounded pool can still issue concurrent writes from goroutines
	// within the same process and trip SQLITE_BUSY before the pragma
	// timeout has a chance to retry. One connection keeps each process's
	// view serialized; cross-process concurrency is still arbitrated by
	// sqlite's own file locking.
	db.SetMaxOpenConns(1)

	return db, nil
}

// Checkpoint issues a best-effort passive WAL checkpoint. Called on close
// so the WAL file doesn't grow unboundedly across short-lived CLI
// invocations.
func Checkpoint(db *sql.DB) {
	_, _ = db.Exec("PRAGMA wal_checkpoint(PASSIVE)")
}
