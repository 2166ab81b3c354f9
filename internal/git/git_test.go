package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func initTestRepo(t *testing.T) string {
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
		t.Fatalf("write file: %v", err)
	}
	run("add", ".")
	run("commit", "-m", "initial")
	return dir
}

func TestIsRepo(t *testing.T) {
	dir := t.TempDir()
	g := NewGit(dir)
	if g.IsRepo() {
		t.Fatal("expected IsRepo false for empty dir")
	}
	if err := exec.Command("git", "-C", dir, "init").Run(); err != nil {
		t.Fatalf("git init: %v", err)
	}
	if !g.IsRepo() {
		t.Fatal("expected IsRepo true after git init")
	}
}

func TestCurrentBranchAndRev(t *testing.T) {
	dir := initTestRepo(t)
	g := NewGit(dir)

	branch, err := g.CurrentBranch()
	if err != nil {
		t.Fatalf("CurrentBranch: %v", err)
	}
	if branch != "main" && branch != "master" {
		t.Errorf("branch = %q, want main or master", branch)
	}

	hash, err := g.Rev("HEAD")
	if err != nil {
		t.Fatalf("Rev: %v", err)
	}
	if len(hash) != 40 {
		t.Errorf("hash length = %d, want 40", len(hash))
	}
}

func TestStatusReportsUntracked(t *testing.T) {
	dir := initTestRepo(t)
	g := NewGit(dir)

	st, err := g.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !st.Clean {
		t.Fatal("expected clean status initially")
	}

	if err := os.WriteFile(filepath.Join(dir, "new.txt"), []byte("new"), 0o644); err != nil {
		t.Fatal(err)
	}
	st, err = g.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.Clean || len(st.Untracked) != 1 {
		t.Errorf("expected 1 untracked file, got %+v", st)
	}
}

func TestAddCommitHasUncommittedChanges(t *testing.T) {
	dir := initTestRepo(t)
	g := NewGit(dir)

	has, err := g.HasUncommittedChanges()
	if err != nil || has {
		t.Fatalf("expected clean, got has=%v err=%v", has, err)
	}

	if err := os.WriteFile(filepath.Join(dir, "new.txt"), []byte("content"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := g.Add("new.txt"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := g.Commit("add new file"); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	has, err = g.HasUncommittedChanges()
	if err != nil || has {
		t.Fatalf("expected clean after commit, got has=%v err=%v", has, err)
	}
}

func TestCreateBranchAndCheckout(t *testing.T) {
	dir := initTestRepo(t)
	g := NewGit(dir)

	if err := g.CreateBranch("feature"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	if err := g.Checkout("feature"); err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	branch, _ := g.CurrentBranch()
	if branch != "feature" {
		t.Errorf("branch = %q, want feature", branch)
	}
}

func TestNotARepoReturnsGitErrorWithStderr(t *testing.T) {
	dir := t.TempDir()
	g := NewGit(dir)

	_, err := g.CurrentBranch()
	gitErr, ok := err.(*GitError)
	if !ok {
		t.Fatalf("expected *GitError, got %T: %v", err, err)
	}
	if gitErr.Stderr == "" {
		t.Error("expected non-empty stderr")
	}
}

func TestWorktreeAddListRemove(t *testing.T) {
	dir := initTestRepo(t)
	g := NewGit(dir)
	main, _ := g.CurrentBranch()

	wtPath := filepath.Join(t.TempDir(), "wt1")
	if err := g.WorktreeAdd(wtPath, "overstory/agent/task-1", main); err != nil {
		t.Fatalf("WorktreeAdd: %v", err)
	}

	entries, err := g.WorktreeList()
	if err != nil {
		t.Fatalf("WorktreeList: %v", err)
	}
	found := false
	for _, e := range entries {
		if e.Branch == "overstory/agent/task-1" {
			found = true
			if e.Path != wtPath {
				t.Errorf("path = %q, want %q", e.Path, wtPath)
			}
		}
	}
	if !found {
		t.Fatalf("expected worktree entry with branch overstory/agent/task-1, got %+v", entries)
	}

	if err := g.WorktreeRemove(wtPath, true); err != nil {
		t.Fatalf("WorktreeRemove: %v", err)
	}
	entries, err = g.WorktreeList()
	if err != nil {
		t.Fatalf("WorktreeList after remove: %v", err)
	}
	for _, e := range entries {
		if e.Path == wtPath {
			t.Fatalf("expected worktree removed, still present: %+v", e)
		}
	}
}

func TestIsAncestorMergedAndUnmerged(t *testing.T) {
	dir := initTestRepo(t)
	g := NewGit(dir)
	main, _ := g.CurrentBranch()

	if err := g.CreateBranch("feature"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	merged, err := g.IsAncestor("feature", main)
	if err != nil {
		t.Fatalf("IsAncestor: %v", err)
	}
	if !merged {
		t.Error("expected feature (== main) to be an ancestor of main")
	}

	if err := g.Checkout("feature"); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "feature.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := g.Add("feature.txt"); err != nil {
		t.Fatal(err)
	}
	if err := g.Commit("feature commit"); err != nil {
		t.Fatal(err)
	}
	if err := g.Checkout(main); err != nil {
		t.Fatal(err)
	}

	merged, err = g.IsAncestor("feature", main)
	if err != nil {
		t.Fatalf("IsAncestor: %v", err)
	}
	if merged {
		t.Error("expected feature to not be an ancestor of main after diverging")
	}
}

func TestDiffThreeDotAndApplyIndex(t *testing.T) {
	dir := initTestRepo(t)
	g := NewGit(dir)
	main, _ := g.CurrentBranch()

	if err := g.CreateBranch("lead"); err != nil {
		t.Fatal(err)
	}
	if err := g.Checkout("lead"); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, ".seeds"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".seeds", "task.md"), []byte("seed\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := g.Add(".seeds/task.md"); err != nil {
		t.Fatal(err)
	}
	if err := g.Commit("seed task"); err != nil {
		t.Fatal(err)
	}
	if err := g.Checkout(main); err != nil {
		t.Fatal(err)
	}

	diff, err := g.DiffThreeDot(main, "lead", ".seeds/")
	if err != nil {
		t.Fatalf("DiffThreeDot: %v", err)
	}
	if diff == "" {
		t.Fatal("expected non-empty seeds diff")
	}

	diffFile := filepath.Join(t.TempDir(), "seeds.diff")
	if err := os.WriteFile(diffFile, []byte(diff), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := g.ApplyIndex(diffFile); err != nil {
		t.Fatalf("ApplyIndex: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".seeds", "task.md")); err != nil {
		t.Errorf("expected .seeds/task.md applied to %s: %v", main, err)
	}
}
