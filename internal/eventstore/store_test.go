package eventstore

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertAssignsID(t *testing.T) {
	s := openTestStore(t)
	e, err := s.Insert(&Event{AgentName: "sb", Type: EventSessionStart})
	if err != nil {
		t.Fatal(err)
	}
	if e.ID == 0 {
		t.Fatal("expected non-zero id")
	}
	if e.Level != LevelInfo {
		t.Errorf("expected default level info, got %s", e.Level)
	}
}

func TestGetByAgentOrdersChronologically(t *testing.T) {
	s := openTestStore(t)
	s.Insert(&Event{AgentName: "a", Type: EventSessionStart})
	s.Insert(&Event{AgentName: "a", Type: EventToolStart, ToolName: "Read"})
	s.Insert(&Event{AgentName: "b", Type: EventSessionStart})

	got, err := s.GetByAgent("a", QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events for agent a, got %d", len(got))
	}
	if got[0].Type != EventSessionStart || got[1].Type != EventToolStart {
		t.Errorf("unexpected order: %+v", got)
	}
}

func TestGetByRunFiltersAcrossAgents(t *testing.T) {
	s := openTestStore(t)
	s.Insert(&Event{AgentName: "a", RunID: "run-1", Type: EventSpawn})
	s.Insert(&Event{AgentName: "b", RunID: "run-1", Type: EventSpawn})
	s.Insert(&Event{AgentName: "c", RunID: "run-2", Type: EventSpawn})

	got, err := s.GetByRun("run-1", QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events for run-1, got %d", len(got))
	}
}

func TestGetTimelineSpansAllAgents(t *testing.T) {
	s := openTestStore(t)
	s.Insert(&Event{AgentName: "a", Type: EventSessionStart})
	s.Insert(&Event{AgentName: "b", Type: EventSessionStart})

	got, err := s.GetTimeline(QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
}

func TestGetTimelineRespectsLimit(t *testing.T) {
	s := openTestStore(t)
	for i := 0; i < 5; i++ {
		s.Insert(&Event{AgentName: "a", Type: EventCustom})
	}
	got, err := s.GetTimeline(QueryOptions{Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
}

func TestInsertPreservesDurationAndLevel(t *testing.T) {
	s := openTestStore(t)
	d := int64(42)
	_, err := s.Insert(&Event{AgentName: "a", Type: EventToolEnd, ToolName: "Bash", DurationMs: &d, Level: LevelWarn})
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.GetByAgent("a", QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	if got[0].DurationMs == nil || *got[0].DurationMs != 42 {
		t.Errorf("expected duration 42, got %+v", got[0].DurationMs)
	}
	if got[0].Level != LevelWarn {
		t.Errorf("expected level warn, got %s", got[0].Level)
	}
}

func TestGetToolStatsAggregatesByTool(t *testing.T) {
	s := openTestStore(t)
	d1, d2, d3 := int64(10), int64(20), int64(30)
	s.Insert(&Event{AgentName: "a", Type: EventToolEnd, ToolName: "Edit", DurationMs: &d1})
	s.Insert(&Event{AgentName: "a", Type: EventToolEnd, ToolName: "Edit", DurationMs: &d2})
	s.Insert(&Event{AgentName: "a", Type: EventToolEnd, ToolName: "Bash", DurationMs: &d3})

	stats, err := s.GetToolStats("")
	if err != nil {
		t.Fatal(err)
	}
	byName := map[string]*ToolStat{}
	for _, st := range stats {
		byName[st.ToolName] = st
	}
	edit, ok := byName["Edit"]
	if !ok {
		t.Fatal("expected Edit stat")
	}
	if edit.Count != 2 || edit.TotalMs != 30 || edit.MaxMs != 20 {
		t.Errorf("unexpected Edit stat: %+v", edit)
	}
}

func TestGetToolStatsScopesToAgent(t *testing.T) {
	s := openTestStore(t)
	d := int64(5)
	s.Insert(&Event{AgentName: "a", Type: EventToolEnd, ToolName: "Read", DurationMs: &d})
	s.Insert(&Event{AgentName: "b", Type: EventToolEnd, ToolName: "Read", DurationMs: &d})

	stats, err := s.GetToolStats("a")
	if err != nil {
		t.Fatal(err)
	}
	if len(stats) != 1 || stats[0].Count != 1 {
		t.Fatalf("expected scoped stat with count 1, got %+v", stats)
	}
}

func TestGetRunStatsCountsToolCalls(t *testing.T) {
	s := openTestStore(t)
	d := int64(15)
	s.Insert(&Event{AgentName: "a", RunID: "run-1", Type: EventSpawn})
	s.Insert(&Event{AgentName: "a", RunID: "run-1", Type: EventToolEnd, ToolName: "Bash", DurationMs: &d})

	rs, err := s.GetRunStats("run-1")
	if err != nil {
		t.Fatal(err)
	}
	if rs.EventCount != 2 {
		t.Errorf("expected 2 events, got %d", rs.EventCount)
	}
	if rs.ToolCalls != 1 || rs.TotalToolMs != 15 {
		t.Errorf("unexpected tool aggregate: %+v", rs)
	}
}

func TestCurrentFileFindsMostRecentEditPath(t *testing.T) {
	s := openTestStore(t)
	s.Insert(&Event{AgentName: "a", Type: EventToolStart, ToolName: "Read", ToolArgs: `{"file_path":"a.go"}`})
	s.Insert(&Event{AgentName: "a", Type: EventToolStart, ToolName: "Bash", ToolArgs: `{"command":"ls"}`})
	s.Insert(&Event{AgentName: "a", Type: EventToolStart, ToolName: "Edit", ToolArgs: `{"file_path":"b.go"}`})

	path, err := s.CurrentFile("a")
	if err != nil {
		t.Fatal(err)
	}
	if path != "b.go" {
		t.Errorf("expected b.go, got %q", path)
	}
}

func TestCurrentFileReturnsEmptyWhenNoFileTools(t *testing.T) {
	s := openTestStore(t)
	s.Insert(&Event{AgentName: "a", Type: EventToolStart, ToolName: "Bash", ToolArgs: `{"command":"ls"}`})

	path, err := s.CurrentFile("a")
	if err != nil {
		t.Fatal(err)
	}
	if path != "" {
		t.Errorf("expected empty path, got %q", path)
	}
}
