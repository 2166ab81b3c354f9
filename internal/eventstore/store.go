package eventstore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/xcawolfe-amzn/overstory/internal/dbutil"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      TEXT,
	agent_name  TEXT NOT NULL,
	session_id  TEXT,
	event_type  TEXT NOT NULL,
	tool_name   TEXT NOT NULL DEFAULT '',
	tool_args   TEXT NOT NULL DEFAULT '',
	duration_ms INTEGER,
	level       TEXT NOT NULL DEFAULT 'info',
	data        TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_agent_created ON events(agent_name, created_at);
CREATE INDEX IF NOT EXISTS idx_events_run_created ON events(run_id, created_at);
CREATE INDEX IF NOT EXISTS idx_events_type ON events(event_type);
`

// Store is the event log.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the events database at path.
func Open(path string) (*Store, error) {
	db, err := dbutil.Open(path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
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

// Insert appends an immutable event row. Events are never updated or
// deleted once inserted.
func (s *Store) Insert(e *Event) (*Event, error) {
	if e.Level == "" {
		e.Level = LevelInfo
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	var runID, sessionID sql.NullString
	if e.RunID != "" {
		runID = sql.NullString{String: e.RunID, Valid: true}
	}
	if e.SessionID != "" {
		sessionID = sql.NullString{String: e.SessionID, Valid: true}
	}
	var duration sql.NullInt64
	if e.DurationMs != nil {
		duration = sql.NullInt64{Int64: *e.DurationMs, Valid: true}
	}

	res, err := s.db.Exec(`
		INSERT INTO events (run_id, agent_name, session_id, event_type, tool_name, tool_args,
			duration_ms, level, data, created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		runID, e.AgentName, sessionID, string(e.Type), e.ToolName, e.ToolArgs,
		duration, string(e.Level), e.Data, fmtTime(e.CreatedAt),
	)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	e.ID = id
	return e, nil
}

func scanEvent(row interface{ Scan(...any) error }) (*Event, error) {
	var e Event
	var runID, sessionID sql.NullString
	var duration sql.NullInt64
	var createdAt string
	if err := row.Scan(&e.ID, &runID, &e.AgentName, &sessionID, &e.Type, &e.ToolName,
		&e.ToolArgs, &duration, &e.Level, &e.Data, &createdAt); err != nil {
		return nil, err
	}
	if runID.Valid {
		e.RunID = runID.String
	}
	if sessionID.Valid {
		e.SessionID = sessionID.String
	}
	if duration.Valid {
		d := duration.Int64
		e.DurationMs = &d
	}
	e.CreatedAt = parseTime(createdAt)
	return &e, nil
}

const selectCols = `id, run_id, agent_name, session_id, event_type, tool_name, tool_args,
	duration_ms, level, data, created_at`

// QueryOptions bounds a timeline query.
type QueryOptions struct {
	Since *time.Time
	Until *time.Time
	Limit int
}

func (s *Store) query(where string, whereArgs []any, opts QueryOptions) ([]*Event, error) {
	query := "SELECT " + selectCols + " FROM events"
	var args []any
	var conds []string
	if where != "" {
		conds = append(conds, where)
		args = append(args, whereArgs...)
	}
	if opts.Since != nil {
		conds = append(conds, "created_at >= ?")
		args = append(args, fmtTime(*opts.Since))
	}
	if opts.Until != nil {
		conds = append(conds, "created_at <= ?")
		args = append(args, fmtTime(*opts.Until))
	}
	if len(conds) > 0 {
		query += " WHERE " + joinAnd(conds)
	}
	query += " ORDER BY created_at ASC, id ASC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func joinAnd(conds []string) string {
	out := conds[0]
	for _, c := range conds[1:] {
		out += " AND " + c
	}
	return out
}

// GetByAgent returns agentName's events in chronological order.
func (s *Store) GetByAgent(agentName string, opts QueryOptions) ([]*Event, error) {
	return s.query("agent_name = ?", []any{agentName}, opts)
}

// GetByRun returns runID's events in chronological order.
func (s *Store) GetByRun(runID string, opts QueryOptions) ([]*Event, error) {
	return s.query("run_id = ?", []any{runID}, opts)
}

// GetTimeline returns every event in global chronological order.
func (s *Store) GetTimeline(opts QueryOptions) ([]*Event, error) {
	return s.query("", nil, opts)
}

// GetErrors returns level=error events fleet-wide, in chronological order.
func (s *Store) GetErrors(opts QueryOptions) ([]*Event, error) {
	return s.query("level = ?", []any{string(LevelError)}, opts)
}
