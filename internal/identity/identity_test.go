package identity

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestEnsureCreatedWritesNewIdentity(t *testing.T) {
	dir := t.TempDir()
	path := Path(dir, "builder-1")

	id, err := EnsureCreated(path, "builder-1", "builder", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("EnsureCreated: %v", err)
	}
	if id.SessionsCompleted != 0 || len(id.ExpertiseDomains) != 0 || len(id.RecentTasks) != 0 {
		t.Fatalf("expected zero-value new identity, got %+v", id)
	}
	if !Exists(path) {
		t.Fatal("expected identity file to exist")
	}

	again, err := EnsureCreated(path, "builder-1", "reviewer", time.Now())
	if err != nil {
		t.Fatalf("EnsureCreated (existing): %v", err)
	}
	if again.Capability != "builder" {
		t.Errorf("expected existing identity to be left untouched, got capability %q", again.Capability)
	}
}

func TestRoundTripPreservesFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "identity.yaml")

	id := New("scout-1", "scout", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	CompleteSession(id, "proj-1", "explored the codebase", []string{"go", "sqlite"}, time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC))

	if err := Save(path, id); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Name != id.Name || loaded.Capability != id.Capability || loaded.SessionsCompleted != id.SessionsCompleted {
		t.Errorf("round trip mismatch: got %+v, want %+v", loaded, id)
	}
	if len(loaded.ExpertiseDomains) != 2 || loaded.ExpertiseDomains[0] != "go" {
		t.Errorf("expertise domains round trip: %+v", loaded.ExpertiseDomains)
	}
	if len(loaded.RecentTasks) != 1 || loaded.RecentTasks[0].TaskID != "proj-1" {
		t.Errorf("recent tasks round trip: %+v", loaded.RecentTasks)
	}
}

func TestEmptySequencesRenderAsBrackets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "identity.yaml")
	id := New("lead-1", "lead", time.Now())

	if err := Save(path, id); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := readFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(data, "expertiseDomains: []") {
		t.Errorf("expected empty expertiseDomains as [], got:\n%s", data)
	}
	if !strings.Contains(data, "recentTasks: []") {
		t.Errorf("expected empty recentTasks as [], got:\n%s", data)
	}
}

func TestCompleteSessionCapsRecentTasksRing(t *testing.T) {
	id := New("builder-9", "builder", time.Now())
	for i := 0; i < MaxRecentTasks+5; i++ {
		CompleteSession(id, "task", "summary", nil, time.Now())
	}
	if len(id.RecentTasks) != MaxRecentTasks {
		t.Fatalf("expected ring capped at %d, got %d", MaxRecentTasks, len(id.RecentTasks))
	}
	if id.SessionsCompleted != MaxRecentTasks+5 {
		t.Errorf("expected counter to keep counting past the ring cap, got %d", id.SessionsCompleted)
	}
}

func TestCompleteSessionUnionsExpertiseDomainsWithoutDuplicates(t *testing.T) {
	id := New("builder-9", "builder", time.Now())
	CompleteSession(id, "t1", "s1", []string{"go", "sqlite"}, time.Now())
	CompleteSession(id, "t2", "s2", []string{"sqlite", "cobra"}, time.Now())

	want := []string{"go", "sqlite", "cobra"}
	if len(id.ExpertiseDomains) != len(want) {
		t.Fatalf("got %v, want %v", id.ExpertiseDomains, want)
	}
	for i, d := range want {
		if id.ExpertiseDomains[i] != d {
			t.Errorf("index %d: got %q, want %q", i, id.ExpertiseDomains[i], d)
		}
	}
}

func TestAppendAndLoadHandoffs(t *testing.T) {
	dir := t.TempDir()
	path := HandoffsPath(dir, "lead-1")

	existing, err := LoadHandoffs(path)
	if err != nil {
		t.Fatalf("LoadHandoffs (missing file): %v", err)
	}
	if existing != nil {
		t.Fatalf("expected nil history for missing file, got %v", existing)
	}

	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	if err := RecordHandoff(path, "lead-1", "builder-1", "proj-1", now); err != nil {
		t.Fatalf("RecordHandoff: %v", err)
	}
	if err := RecordHandoff(path, "lead-1", "builder-2", "proj-2", now); err != nil {
		t.Fatalf("RecordHandoff: %v", err)
	}

	loaded, err := LoadHandoffs(path)
	if err != nil {
		t.Fatalf("LoadHandoffs: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 handoffs, got %d", len(loaded))
	}
	if loaded[0].ToAgent != "builder-1" || loaded[1].ToAgent != "builder-2" {
		t.Errorf("unexpected order: %+v", loaded)
	}
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
