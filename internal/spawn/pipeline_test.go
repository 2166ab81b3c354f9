package spawn

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/xcawolfe-amzn/overstory/internal/config"
	"github.com/xcawolfe-amzn/overstory/internal/errs"
	"github.com/xcawolfe-amzn/overstory/internal/sessionstore"
	"github.com/xcawolfe-amzn/overstory/internal/tmux"
	"github.com/xcawolfe-amzn/overstory/internal/worktree"
)

func testDeps(t *testing.T) (Deps, string) {
	t.Helper()
	root := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = root
		if err := cmd.Run(); err != nil {
			t.Fatalf("git %v: %v", args, err)
		}
	}
	run("init")
	run("config", "user.email", "test@test.com")
	run("config", "user.name", "Test User")
	if err := os.WriteFile(filepath.Join(root, "README.md"), []byte("# x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	run("add", ".")
	run("commit", "-m", "initial")

	metadataDir := filepath.Join(root, ".overstory")
	sessions, err := sessionstore.Open(filepath.Join(metadataDir, "sessions.db"))
	if err != nil {
		t.Fatalf("Open sessions: %v", err)
	}
	t.Cleanup(func() { sessions.Close() })

	cfg := config.Default()
	cfg.StaggerDelayMs = 0
	cfg.TUIReadyTimeoutMs = 200
	cfg.TUIReadyPollMs = 50

	return Deps{
		Config:       cfg,
		Manifest:     config.DefaultManifest(),
		Sessions:     sessions,
		Worktree:     worktree.NewManager(root, metadataDir),
		Tmux:         tmux.NewTmux("tmux"),
		WorktreesDir: filepath.Join(root, "worktrees"),
		MetadataDir:  metadataDir,
		ProjectRoot:  root,
		Now:          func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) },
	}, root
}

func TestSpawnRejectsEmptyTaskID(t *testing.T) {
	deps, _ := testDeps(t)
	_, err := Spawn(deps, Request{Name: "lead-1", Capability: config.CapabilityLead})
	if errs.CodeOf(err) != errs.Validation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSpawnEnforcesHierarchyRule(t *testing.T) {
	deps, _ := testDeps(t)
	_, err := Spawn(deps, Request{TaskID: "t-1", Name: "b-1", Capability: config.CapabilityBuilder})
	if errs.CodeOf(err) != errs.Hierarchy {
		t.Fatalf("expected hierarchy error, got %v", err)
	}
}

func TestSpawnBypassHierarchyAllowsParentless(t *testing.T) {
	deps, _ := testDeps(t)
	tm := tmux.NewTmux("tmux")
	if !tm.IsAvailable() {
		t.Skip("requires tmux for integration testing")
	}
	res, err := Spawn(deps, Request{TaskID: "t-1", Name: "b-bypass", Capability: config.CapabilityBuilder, BypassHierarchy: true})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	defer deps.Tmux.KillSession(res.Session.TmuxSession)
}

func TestSpawnRejectsUnknownCapability(t *testing.T) {
	deps, _ := testDeps(t)
	_, err := Spawn(deps, Request{TaskID: "t-1", Name: "x-1", Capability: config.Capability("bogus"), BypassHierarchy: true})
	if errs.CodeOf(err) != errs.Validation {
		t.Fatalf("expected validation error for unknown capability, got %v", err)
	}
}

func TestSpawnRejectsDepthBeyondMax(t *testing.T) {
	deps, _ := testDeps(t)
	deps.Config.MaxDepth = 1
	_, err := Spawn(deps, Request{TaskID: "t-1", Name: "lead-deep", Capability: config.CapabilityLead, Depth: 2})
	if errs.CodeOf(err) != errs.Validation {
		t.Fatalf("expected validation error for depth, got %v", err)
	}
}

func TestSpawnRejectsReuseOfNonTerminalName(t *testing.T) {
	deps, _ := testDeps(t)
	if err := deps.Sessions.Upsert(&sessionstore.Session{Name: "lead-1", Capability: "lead", State: sessionstore.StateWorking}); err != nil {
		t.Fatal(err)
	}
	_, err := Spawn(deps, Request{TaskID: "t-1", Name: "lead-1", Capability: config.CapabilityLead})
	if errs.CodeOf(err) != errs.Validation {
		t.Fatalf("expected validation error for reused active name, got %v", err)
	}
}

func TestSpawnRejectsMaxConcurrentReached(t *testing.T) {
	deps, _ := testDeps(t)
	deps.Config.MaxConcurrent = 1
	if err := deps.Sessions.Upsert(&sessionstore.Session{Name: "lead-0", Capability: "lead", State: sessionstore.StateWorking}); err != nil {
		t.Fatal(err)
	}
	_, err := Spawn(deps, Request{TaskID: "t-2", Name: "lead-1", Capability: config.CapabilityLead})
	if errs.CodeOf(err) != errs.Validation {
		t.Fatalf("expected validation error for maxConcurrent, got %v", err)
	}
}

func TestSpawnRejectsDuplicateTaskHolder(t *testing.T) {
	deps, _ := testDeps(t)
	if err := deps.Sessions.Upsert(&sessionstore.Session{Name: "builder-1", Capability: "builder", TaskID: "t-1", State: sessionstore.StateWorking}); err != nil {
		t.Fatal(err)
	}
	_, err := Spawn(deps, Request{TaskID: "t-1", Name: "lead-1", Capability: config.CapabilityLead})
	if errs.CodeOf(err) != errs.Validation {
		t.Fatalf("expected validation error for duplicate task holder, got %v", err)
	}
}

func TestSpawnAllowsParentToHandOffSameTask(t *testing.T) {
	deps, _ := testDeps(t)
	if err := deps.Sessions.Upsert(&sessionstore.Session{Name: "lead-1", Capability: "lead", TaskID: "t-1", State: sessionstore.StateWorking}); err != nil {
		t.Fatal(err)
	}
	tm := tmux.NewTmux("tmux")
	if !tm.IsAvailable() {
		t.Skip("requires tmux for integration testing")
	}
	res, err := Spawn(deps, Request{TaskID: "t-1", Name: "builder-1", Parent: "lead-1", Capability: config.CapabilityBuilder})
	if err != nil {
		t.Fatalf("expected handoff to same-task parent to succeed: %v", err)
	}
	defer deps.Tmux.KillSession(res.Session.TmuxSession)
}

func TestSpawnTracksTrackerStatusUnlessSkipped(t *testing.T) {
	deps, _ := testDeps(t)
	deps.Tracker.IssueStatus = func(taskID string) (string, error) { return "closed", nil }
	_, err := Spawn(deps, Request{TaskID: "t-1", Name: "lead-1", Capability: config.CapabilityLead})
	if errs.CodeOf(err) != errs.Tracker {
		t.Fatalf("expected tracker error for closed issue, got %v", err)
	}

	deps.Config.SkipTrackerCheck = true
	tm := tmux.NewTmux("tmux")
	if !tm.IsAvailable() {
		t.Skip("requires tmux for integration testing")
	}
	res, err := Spawn(deps, Request{TaskID: "t-1", Name: "lead-2", Capability: config.CapabilityLead})
	if err != nil {
		t.Fatalf("expected spawn to succeed once tracker check is skipped: %v", err)
	}
	defer deps.Tmux.KillSession(res.Session.TmuxSession)
}

func TestSpawnHappyPathCreatesWorktreeSessionAndIdentity(t *testing.T) {
	deps, root := testDeps(t)
	tm := tmux.NewTmux("tmux")
	if !tm.IsAvailable() {
		t.Skip("requires tmux for integration testing")
	}

	res, err := Spawn(deps, Request{TaskID: "proj-abc1", Name: "lead-1", Capability: config.CapabilityLead})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	defer deps.Tmux.KillSession(res.Session.TmuxSession)

	if res.Branch != "overstory/lead-1/proj-abc1" {
		t.Errorf("branch = %q", res.Branch)
	}
	if _, err := os.Stat(filepath.Join(res.WorktreePath, ".claude", "CLAUDE.md")); err != nil {
		t.Errorf("expected CLAUDE.md in worktree: %v", err)
	}
	if _, err := os.Stat(filepath.Join(res.WorktreePath, ".claude", "settings.local.json")); err != nil {
		t.Errorf("expected settings.local.json in worktree: %v", err)
	}

	got, err := deps.Sessions.GetByName("lead-1")
	if err != nil || got == nil {
		t.Fatalf("expected session row for lead-1, err=%v got=%v", err, got)
	}
	if got.State != sessionstore.StateBooting {
		t.Errorf("expected booting state, got %s", got.State)
	}
	if got.PID == 0 {
		t.Errorf("expected non-zero pid for spawned session")
	}

	pointerPath := filepath.Join(deps.MetadataDir, currentRunPointerName)
	if _, err := os.Stat(pointerPath); err != nil {
		t.Errorf("expected current-run pointer file: %v", err)
	}

	idPath := filepath.Join(deps.MetadataDir, "agents", "lead-1", "identity.yaml")
	if _, err := os.Stat(idPath); err != nil {
		t.Errorf("expected identity file: %v", err)
	}
	_ = root
}
