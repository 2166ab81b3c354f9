package sessionstore

import (
	"database/sql"
	"time"
)

// CreateRun inserts a new active run row.
func (s *Store) CreateRun(id string) (*Run, error) {
	run := &Run{ID: id, StartedAt: time.Now(), Status: RunActive}
	_, err := s.db.Exec(
		"INSERT INTO runs (id, started_at, agent_count, status, coordinator_session) VALUES (?,?,0,?,'')",
		run.ID, fmtTime(run.StartedAt), string(RunActive),
	)
	if err != nil {
		return nil, err
	}
	return run, nil
}

func scanRun(row interface{ Scan(...any) error }) (*Run, error) {
	var r Run
	var completedAt sql.NullString
	var startedAt string
	if err := row.Scan(&r.ID, &startedAt, &completedAt, &r.AgentCount, &r.Status, &r.CoordinatorSession); err != nil {
		return nil, err
	}
	r.StartedAt = parseTime(startedAt)
	if completedAt.Valid {
		t := parseTime(completedAt.String)
		r.CompletedAt = &t
	}
	return &r, nil
}

const runCols = "id, started_at, completed_at, agent_count, status, coordinator_session"

// GetRun returns the run with the given id, or nil if none.
func (s *Store) GetRun(id string) (*Run, error) {
	row := s.db.QueryRow("SELECT "+runCols+" FROM runs WHERE id = ?", id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return run, err
}

// GetActiveRun returns the most recently started run with status=active,
// or nil if none.
func (s *Store) GetActiveRun() (*Run, error) {
	row := s.db.QueryRow("SELECT " + runCols + " FROM runs WHERE status = 'active' ORDER BY started_at DESC LIMIT 1")
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return run, err
}

// ListRunsOptions filters ListRuns.
type ListRunsOptions struct {
	Limit  int
	Status RunStatus
}

// ListRuns returns runs newest-first, optionally filtered by status and
// capped at Limit (0 = unlimited).
func (s *Store) ListRuns(opts ListRunsOptions) ([]*Run, error) {
	query := "SELECT " + runCols + " FROM runs"
	var args []any
	if opts.Status != "" {
		query += " WHERE status = ?"
		args = append(args, string(opts.Status))
	}
	query += " ORDER BY started_at DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// IncrementAgentCount bumps a run's agent_count by one.
func (s *Store) IncrementAgentCount(id string) error {
	_, err := s.db.Exec("UPDATE runs SET agent_count = agent_count + 1 WHERE id = ?", id)
	return err
}

// CompleteRun marks a run completed or failed and stamps completed_at.
func (s *Store) CompleteRun(id string, status RunStatus) error {
	if status != RunCompleted && status != RunFailed {
		status = RunCompleted
	}
	_, err := s.db.Exec("UPDATE runs SET status = ?, completed_at = ? WHERE id = ?",
		string(status), fmtTime(time.Now()), id)
	return err
}
