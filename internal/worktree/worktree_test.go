package worktree

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

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
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("# Test\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	run("add", ".")
	run("commit", "-m", "initial")
	return dir
}

func TestCreateAndList(t *testing.T) {
	canonical := initCanonicalRepo(t)
	m := NewManager(canonical, filepath.Join(canonical, ".overstory"))

	wtDir := t.TempDir()
	path, branch, err := m.Create("sb-builder-1", "task-42", wtDir)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if branch != "overstory/sb-builder-1/task-42" {
		t.Errorf("branch = %q", branch)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected worktree dir to exist: %v", err)
	}

	list, err := m.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].Branch != branch {
		t.Fatalf("expected 1 entry for %s, got %+v", branch, list)
	}
}

func TestIsBranchMergedAndRemove(t *testing.T) {
	canonical := initCanonicalRepo(t)
	m := NewManager(canonical, filepath.Join(canonical, ".overstory"))
	main := canonicalHead(t, canonical)

	wtDir := t.TempDir()
	path, branch, err := m.Create("sb-builder-1", "task-1", wtDir)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	merged, err := m.IsBranchMerged(branch, main)
	if err != nil {
		t.Fatalf("IsBranchMerged: %v", err)
	}
	if !merged {
		t.Error("expected fresh branch off main to report merged (no divergence yet)")
	}

	if err := m.Remove(branch, path, RemoveOptions{Force: true, Merged: true}); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	list, err := m.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Errorf("expected no worktrees after remove, got %+v", list)
	}
}

func TestPreserveSeedsNoopWhenNoDiff(t *testing.T) {
	canonical := initCanonicalRepo(t)
	m := NewManager(canonical, filepath.Join(canonical, ".overstory"))
	main := canonicalHead(t, canonical)

	preserved, err := m.PreserveSeeds("lead-1", main, main)
	if err != nil {
		t.Fatalf("PreserveSeeds: %v", err)
	}
	if preserved {
		t.Error("expected no-op when branch == canonical")
	}
}

func canonicalHead(t *testing.T, dir string) string {
	t.Helper()
	cmd := exec.Command("git", "branch", "--show-current")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("branch --show-current: %v", err)
	}
	s := string(out)
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
