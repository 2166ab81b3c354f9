package sessionstore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/xcawolfe-amzn/overstory/internal/dbutil"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	name             TEXT NOT NULL UNIQUE,
	capability       TEXT NOT NULL,
	depth            INTEGER NOT NULL DEFAULT 0,
	parent_agent     TEXT NOT NULL DEFAULT '',
	task_id          TEXT NOT NULL DEFAULT '',
	branch           TEXT NOT NULL DEFAULT '',
	worktree_path    TEXT NOT NULL DEFAULT '',
	tmux_session     TEXT NOT NULL DEFAULT '',
	state            TEXT NOT NULL CHECK(state IN ('booting','working','stalled','completed','zombie')),
	pid              INTEGER NOT NULL DEFAULT 0,
	run_id           TEXT,
	escalation_level INTEGER NOT NULL DEFAULT 0,
	stalled_since    TEXT,
	last_activity    TEXT NOT NULL,
	created_at       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_state ON sessions(state);
CREATE INDEX IF NOT EXISTS idx_sessions_run_id ON sessions(run_id);
CREATE INDEX IF NOT EXISTS idx_sessions_task_id ON sessions(task_id);

CREATE TABLE IF NOT EXISTS runs (
	id                  TEXT PRIMARY KEY,
	started_at          TEXT NOT NULL,
	completed_at        TEXT,
	agent_count         INTEGER NOT NULL DEFAULT 0,
	status              TEXT NOT NULL CHECK(status IN ('active','completed','failed')),
	coordinator_session TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS groups (
	name    TEXT NOT NULL,
	member  TEXT NOT NULL,
	PRIMARY KEY (name, member)
);
`

// Store is the session + run registry.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the sessions database at path,
// applies the schema, and runs the idempotent bead_id->task_id migration.
func Open(path string) (*Store, error) {
	db, err := dbutil.Open(path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	if err := migrateBeadIDColumn(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close issues a best-effort passive checkpoint and closes the handle.
func (s *Store) Close() error {
	dbutil.Checkpoint(s.db)
	return s.db.Close()
}

func fmtTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

// Upsert inserts or replaces a session row by agent name. On replace,
// every column except created_at is overwritten.
func (s *Store) Upsert(sess *Session) error {
	if !sess.State.Valid() {
		return fmt.Errorf("invalid state %q", sess.State)
	}
	if sess.LastActivity.IsZero() {
		sess.LastActivity = time.Now()
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = sess.LastActivity
	}

	var stalledSince, runID sql.NullString
	if sess.StalledSince != nil {
		stalledSince = sql.NullString{String: fmtTime(*sess.StalledSince), Valid: true}
	}
	if sess.RunID != "" {
		runID = sql.NullString{String: sess.RunID, Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT INTO sessions (name, capability, depth, parent_agent, task_id, branch,
			worktree_path, tmux_session, state, pid, run_id, escalation_level,
			stalled_since, last_activity, created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(name) DO UPDATE SET
			capability=excluded.capability,
			depth=excluded.depth,
			parent_agent=excluded.parent_agent,
			task_id=excluded.task_id,
			branch=excluded.branch,
			worktree_path=excluded.worktree_path,
			tmux_session=excluded.tmux_session,
			state=excluded.state,
			pid=excluded.pid,
			run_id=excluded.run_id,
			escalation_level=excluded.escalation_level,
			stalled_since=excluded.stalled_since,
			last_activity=excluded.last_activity
	`,
		sess.Name, sess.Capability, sess.Depth, sess.ParentAgent, sess.TaskID, sess.Branch,
		sess.WorktreePath, sess.TmuxSession, string(sess.State), sess.PID, runID, sess.EscalationLevel,
		stalledSince, fmtTime(sess.LastActivity), fmtTime(sess.CreatedAt),
	)
	return err
}

func scanSession(row interface{ Scan(...any) error }) (*Session, error) {
	var sess Session
	var runID, stalledSince sql.NullString
	var lastActivity, createdAt string
	if err := row.Scan(
		&sess.ID, &sess.Name, &sess.Capability, &sess.Depth, &sess.ParentAgent, &sess.TaskID,
		&sess.Branch, &sess.WorktreePath, &sess.TmuxSession, &sess.State, &sess.PID, &runID,
		&sess.EscalationLevel, &stalledSince, &lastActivity, &createdAt,
	); err != nil {
		return nil, err
	}
	if runID.Valid {
		sess.RunID = runID.String
	}
	if stalledSince.Valid {
		t := parseTime(stalledSince.String)
		sess.StalledSince = &t
	}
	sess.LastActivity = parseTime(lastActivity)
	sess.CreatedAt = parseTime(createdAt)
	return &sess, nil
}

const selectCols = `id, name, capability, depth, parent_agent, task_id, branch, worktree_path,
	tmux_session, state, pid, run_id, escalation_level, stalled_since, last_activity, created_at`

// GetByName returns the session for the given agent name, or nil if none.
func (s *Store) GetByName(name string) (*Session, error) {
	row := s.db.QueryRow("SELECT "+selectCols+" FROM sessions WHERE name = ?", name)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return sess, err
}

func (s *Store) queryAll(query string, args ...any) ([]*Session, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// GetActive returns sessions in {booting, working, stalled}.
func (s *Store) GetActive() ([]*Session, error) {
	return s.queryAll("SELECT " + selectCols + " FROM sessions WHERE state IN ('booting','working','stalled') ORDER BY created_at")
}

// GetAll returns every session, oldest first.
func (s *Store) GetAll() ([]*Session, error) {
	return s.queryAll("SELECT " + selectCols + " FROM sessions ORDER BY created_at")
}

// GetByRun returns every session belonging to runID.
func (s *Store) GetByRun(runID string) ([]*Session, error) {
	return s.queryAll("SELECT "+selectCols+" FROM sessions WHERE run_id = ? ORDER BY created_at", runID)
}

// Count returns the total number of session rows.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&n)
	return n, err
}

// UpdateState transitions an agent's state.
func (s *Store) UpdateState(name string, newState State) error {
	if !newState.Valid() {
		return fmt.Errorf("invalid state %q", newState)
	}
	_, err := s.db.Exec("UPDATE sessions SET state = ? WHERE name = ?", string(newState), name)
	return err
}

// UpdateLastActivity sets last_activity to now for the given agent.
func (s *Store) UpdateLastActivity(name string) error {
	_, err := s.db.Exec("UPDATE sessions SET last_activity = ? WHERE name = ?", fmtTime(time.Now()), name)
	return err
}

// UpdateEscalation sets the escalation level and, if non-nil, stalledSince.
// Passing a nil stalledSince clears the column.
func (s *Store) UpdateEscalation(name string, level int, stalledSince *time.Time) error {
	if stalledSince == nil {
		_, err := s.db.Exec("UPDATE sessions SET escalation_level = ?, stalled_since = NULL WHERE name = ?", level, name)
		return err
	}
	_, err := s.db.Exec("UPDATE sessions SET escalation_level = ?, stalled_since = ? WHERE name = ?",
		level, fmtTime(*stalledSince), name)
	return err
}

// Remove deletes the session row for name.
func (s *Store) Remove(name string) error {
	_, err := s.db.Exec("DELETE FROM sessions WHERE name = ?", name)
	return err
}

// PurgeFilter selects which rows Purge deletes.
type PurgeFilter struct {
	All   bool
	State State
	Agent string
}

// Purge deletes rows matching filter and returns the affected-row count.
func (s *Store) Purge(filter PurgeFilter) (int64, error) {
	var res sql.Result
	var err error
	switch {
	case filter.All:
		res, err = s.db.Exec("DELETE FROM sessions")
	case filter.State != "":
		res, err = s.db.Exec("DELETE FROM sessions WHERE state = ?", string(filter.State))
	case filter.Agent != "":
		res, err = s.db.Exec("DELETE FROM sessions WHERE name = ?", filter.Agent)
	default:
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
