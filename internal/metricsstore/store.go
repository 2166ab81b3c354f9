// Package metricsstore is the optional metrics.db: a per-session rollup
// of tool activity derived from
// the event log, kept separate from events.db so `overstory metrics`
// reads a small pre-aggregated table instead of scanning the full
// history on every invocation.
package metricsstore

import (
	"database/sql"
	"time"

	"github.com/xcawolfe-amzn/overstory/internal/dbutil"
	"github.com/xcawolfe-amzn/overstory/internal/eventstore"
)

const schema = `
CREATE TABLE IF NOT EXISTS session_metrics (
	agent_name    TEXT PRIMARY KEY,
	run_id        TEXT NOT NULL DEFAULT '',
	tool_calls    INTEGER NOT NULL DEFAULT 0,
	total_tool_ms INTEGER NOT NULL DEFAULT 0,
	error_count   INTEGER NOT NULL DEFAULT 0,
	updated_at    TEXT NOT NULL
);
`

// Store is the optional aggregated session metrics database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the metrics database at path.
func Open(path string) (*Store, error) {
	db, err := dbutil.Open(path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
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

// SessionMetrics is one agent's rolled-up tool activity.
type SessionMetrics struct {
	AgentName   string
	RunID       string
	ToolCalls   int64
	TotalToolMs int64
	ErrorCount  int64
	UpdatedAt   time.Time
}

// Refresh recomputes agentName's rollup from the event log and upserts it.
func (s *Store) Refresh(events *eventstore.Store, agentName, runID string) (*SessionMetrics, error) {
	stats, err := events.GetToolStats(agentName)
	if err != nil {
		return nil, err
	}
	var calls, totalMs int64
	for _, st := range stats {
		calls += st.Count
		totalMs += st.TotalMs
	}

	errEvents, err := events.GetByAgent(agentName, eventstore.QueryOptions{})
	if err != nil {
		return nil, err
	}
	var errorCount int64
	for _, e := range errEvents {
		if e.Level == eventstore.LevelError {
			errorCount++
		}
	}

	m := &SessionMetrics{AgentName: agentName, RunID: runID, ToolCalls: calls,
		TotalToolMs: totalMs, ErrorCount: errorCount, UpdatedAt: time.Now()}
	_, err = s.db.Exec(`
		INSERT INTO session_metrics (agent_name, run_id, tool_calls, total_tool_ms, error_count, updated_at)
		VALUES (?,?,?,?,?,?)
		ON CONFLICT(agent_name) DO UPDATE SET
			run_id = excluded.run_id, tool_calls = excluded.tool_calls,
			total_tool_ms = excluded.total_tool_ms, error_count = excluded.error_count,
			updated_at = excluded.updated_at`,
		m.AgentName, m.RunID, m.ToolCalls, m.TotalToolMs, m.ErrorCount, fmtTime(m.UpdatedAt))
	if err != nil {
		return nil, err
	}
	return m, nil
}

// List returns every agent's rollup, most recently updated first.
func (s *Store) List() ([]*SessionMetrics, error) {
	rows, err := s.db.Query(`SELECT agent_name, run_id, tool_calls, total_tool_ms, error_count, updated_at
		FROM session_metrics ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*SessionMetrics
	for rows.Next() {
		var m SessionMetrics
		var updatedAt string
		if err := rows.Scan(&m.AgentName, &m.RunID, &m.ToolCalls, &m.TotalToolMs, &m.ErrorCount, &updatedAt); err != nil {
			return nil, err
		}
		m.UpdatedAt = parseTime(updatedAt)
		out = append(out, &m)
	}
	return out, rows.Err()
}

func fmtTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }
func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
