package eventstore

// ToolStat is the aggregate usage profile of one tool name, used by the
// costs/metrics surface.
type ToolStat struct {
	ToolName   string
	Count      int64
	AvgMs      float64
	MaxMs      int64
	TotalMs    int64
}

// GetToolStats aggregates tool_end events by tool name. When agentName is
// non-empty the aggregation is scoped to that agent; otherwise it spans
// the whole fleet.
func (s *Store) GetToolStats(agentName string) ([]*ToolStat, error) {
	query := `
		SELECT tool_name, COUNT(*), AVG(duration_ms), MAX(duration_ms), SUM(duration_ms)
		FROM events
		WHERE event_type = ? AND tool_name != '' AND duration_ms IS NOT NULL`
	args := []any{string(EventToolEnd)}
	if agentName != "" {
		query += " AND agent_name = ?"
		args = append(args, agentName)
	}
	query += " GROUP BY tool_name ORDER BY SUM(duration_ms) DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ToolStat
	for rows.Next() {
		var st ToolStat
		if err := rows.Scan(&st.ToolName, &st.Count, &st.AvgMs, &st.MaxMs, &st.TotalMs); err != nil {
			return nil, err
		}
		out = append(out, &st)
	}
	return out, rows.Err()
}

// RunStat summarizes one run's event count, tool-call count and total
// tool duration, used by `overstory run show`.
type RunStat struct {
	RunID      string
	EventCount int64
	ToolCalls  int64
	TotalToolMs int64
}

// GetRunStats aggregates event counts for a single run.
func (s *Store) GetRunStats(runID string) (*RunStat, error) {
	rs := &RunStat{RunID: runID}
	row := s.db.QueryRow(`SELECT COUNT(*) FROM events WHERE run_id = ?`, runID)
	if err := row.Scan(&rs.EventCount); err != nil {
		return nil, err
	}
	row = s.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(duration_ms), 0)
		FROM events WHERE run_id = ? AND event_type = ? AND duration_ms IS NOT NULL`,
		runID, string(EventToolEnd))
	if err := row.Scan(&rs.ToolCalls, &rs.TotalToolMs); err != nil {
		return nil, err
	}
	return rs, nil
}
