package doctor

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/xcawolfe-amzn/overstory/internal/sessionstore"
	"github.com/xcawolfe-amzn/overstory/internal/watchdog"
	"github.com/xcawolfe-amzn/overstory/internal/worktree"
)

func openTestStore(t *testing.T) *sessionstore.Store {
	t.Helper()
	s, err := sessionstore.Open(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func initCanonicalRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if err := cmd.Run(); err != nil {
			t.Fatalf("git %v: %v", args, err)
		}
	}
	run("init")
	run("config", "user.email", "test@test.com")
	run("config", "user.name", "Test User")
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("# test\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	run("add", ".")
	run("commit", "-m", "initial")
	return dir
}

func TestDoctorRunsAllChecksInOrder(t *testing.T) {
	d := NewDoctor()
	d.RegisterAll(NewStalePIDFileCheck(), NewWALGrowthCheck())
	ctx := &CheckContext{MetadataDir: t.TempDir()}
	results := d.Run(ctx)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Name != "stale-watchdog-pid" || results[1].Name != "wal-growth" {
		t.Fatalf("unexpected order: %+v", results)
	}
	for _, r := range results {
		if r.Status != StatusOK {
			t.Errorf("%s: expected ok on an empty metadata dir, got %s (%s)", r.Name, r.Status, r.Message)
		}
	}
}

func TestStalePIDFileCheckFlagsAndFixes(t *testing.T) {
	metaDir := t.TempDir()
	ctx := &CheckContext{MetadataDir: metaDir}
	check := NewStalePIDFileCheck()

	if res := check.Run(ctx); res.Status != StatusOK {
		t.Fatalf("expected ok with no pid file, got %s", res.Status)
	}

	path := filepath.Join(metaDir, watchdogPIDFileName)
	if err := watchdog.WritePIDFile(path); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatal(err)
	}

	res := check.Run(ctx)
	if res.Status != StatusError {
		t.Fatalf("expected error for stale pid file, got %s", res.Status)
	}
	if err := check.Fix(ctx); err != nil {
		t.Fatalf("Fix: %v", err)
	}
	if res := check.Run(ctx); res.Status != StatusOK {
		t.Fatalf("expected ok after fix, got %s", res.Status)
	}
}

func TestWALGrowthCheckFlagsOversizedWAL(t *testing.T) {
	metaDir := t.TempDir()
	ctx := &CheckContext{MetadataDir: metaDir}
	check := NewWALGrowthCheck()

	dbPath := filepath.Join(metaDir, "sessions.db")
	if err := os.WriteFile(dbPath, make([]byte, 10), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dbPath+"-wal", make([]byte, 10*walGrowthRatio+1), 0o644); err != nil {
		t.Fatal(err)
	}

	res := check.Run(ctx)
	if res.Status != StatusWarning {
		t.Fatalf("expected warning for oversized wal, got %s: %s", res.Status, res.Message)
	}
}

func TestOrphanedWorktreeCheckFlagsUnreferencedWorktree(t *testing.T) {
	canonical := initCanonicalRepo(t)
	m := worktree.NewManager(canonical, filepath.Join(canonical, ".overstory"))
	store := openTestStore(t)

	wtDir := t.TempDir()
	path, _, err := m.Create("sb-builder-1", "task-1", wtDir)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	check := NewOrphanedWorktreeCheck(m, store)
	res := check.Run(&CheckContext{})
	if res.Status != StatusWarning {
		t.Fatalf("expected warning for orphaned worktree, got %s", res.Status)
	}

	if err := store.Upsert(&sessionstore.Session{Name: "sb-builder-1", Capability: "builder", TaskID: "task-1", WorktreePath: path, State: sessionstore.StateWorking}); err != nil {
		t.Fatal(err)
	}
	if res := check.Run(&CheckContext{}); res.Status != StatusOK {
		t.Fatalf("expected ok once the session references the worktree, got %s", res.Status)
	}
}

func TestZombieMissingWorktreeCheckFlagsAndFixes(t *testing.T) {
	store := openTestStore(t)
	missingPath := filepath.Join(t.TempDir(), "gone")

	if err := store.Upsert(&sessionstore.Session{Name: "sb-builder-1", Capability: "builder", TaskID: "task-1", WorktreePath: missingPath, State: sessionstore.StateWorking}); err != nil {
		t.Fatal(err)
	}

	check := NewZombieMissingWorktreeCheck(store)
	res := check.Run(&CheckContext{})
	if res.Status != StatusError {
		t.Fatalf("expected error for missing worktree, got %s", res.Status)
	}

	if err := check.Fix(&CheckContext{}); err != nil {
		t.Fatalf("Fix: %v", err)
	}
	sess, err := store.GetByName("sb-builder-1")
	if err != nil {
		t.Fatal(err)
	}
	if sess.State != sessionstore.StateZombie {
		t.Fatalf("expected zombie state after fix, got %s", sess.State)
	}
}

func TestZombieMissingWorktreeCheckIgnoresPinnedSessions(t *testing.T) {
	store := openTestStore(t)
	if err := store.Upsert(&sessionstore.Session{Name: "coordinator", Capability: "coordinator", State: sessionstore.StateWorking}); err != nil {
		t.Fatal(err)
	}

	check := NewZombieMissingWorktreeCheck(store)
	if res := check.Run(&CheckContext{}); res.Status != StatusOK {
		t.Fatalf("expected ok for pinned session with no worktree, got %s", res.Status)
	}
}

func TestHookGuardDriftCheckFlagsMissingSettings(t *testing.T) {
	store := openTestStore(t)
	worktreeDir := t.TempDir()
	if err := store.Upsert(&sessionstore.Session{Name: "sb-builder-1", Capability: "builder", TaskID: "task-1", WorktreePath: worktreeDir, State: sessionstore.StateWorking}); err != nil {
		t.Fatal(err)
	}

	check := NewHookGuardDriftCheck(store, "claude")
	res := check.Run(&CheckContext{})
	if res.Status != StatusError {
		t.Fatalf("expected error for a worktree with no deployed guards, got %s", res.Status)
	}
}
