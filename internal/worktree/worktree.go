// Package worktree owns every git-worktree and branch operation
// overstory performs, and guarantees that cleanup never silently drops
// committed work. It shells out through internal/git; the
// seeds-preservation flow below composes those subprocess
// calls defensively — best-effort side operations logged as warnings,
// the operation that must not lose data wrapped in an explicit
// revert-on-failure path.
package worktree

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xcawolfe-amzn/overstory/internal/errs"
	"github.com/xcawolfe-amzn/overstory/internal/git"
	"github.com/xcawolfe-amzn/overstory/internal/style"
)

// branchPrefix namespaces every overstory-owned branch.
const branchPrefix = "overstory/"

// Manager owns worktree/branch lifecycle for the canonical checkout
// rooted at CanonicalRoot.
type Manager struct {
	git           *git.Git
	canonicalRoot string
	metadataDir   string // project .overstory dir, used as scratch space for seeds diffs
}

// NewManager returns a Manager operating on the git repo at canonicalRoot.
func NewManager(canonicalRoot, metadataDir string) *Manager {
	return &Manager{
		git:           git.NewGit(canonicalRoot),
		canonicalRoot: canonicalRoot,
		metadataDir:   metadataDir,
	}
}

// BranchName returns the canonical branch name for an agent/task pair.
func BranchName(agentName, taskID string) string {
	return branchPrefix + agentName + "/" + taskID
}

// Create runs `git worktree add -b overstory/{agent}/{task} {path} {canonical}`
// and returns the resulting (path, branch).
func (m *Manager) Create(agentName, taskID, worktreesDir string) (path, branch string, err error) {
	branch = BranchName(agentName, taskID)
	path = filepath.Join(worktreesDir, agentName)
	canonicalBranch, err := m.git.CurrentBranch()
	if err != nil {
		return "", "", errs.Wrap(errs.Worktree, err, "resolving canonical branch")
	}
	if err := m.git.WorktreeAdd(path, branch, canonicalBranch); err != nil {
		return "", "", errs.Wrap(errs.Worktree, err, "creating worktree for %s", agentName)
	}
	return path, branch, nil
}

// Info is one worktree's identifying data, as parsed from porcelain
// output.
type Info struct {
	Path   string
	Head   string
	Branch string
}

// List returns every overstory-prefixed worktree.
func (m *Manager) List() ([]Info, error) {
	entries, err := m.git.WorktreeList()
	if err != nil {
		return nil, errs.Wrap(errs.Worktree, err, "listing worktrees")
	}
	var out []Info
	for _, e := range entries {
		if !strings.HasPrefix(e.Branch, branchPrefix) {
			continue
		}
		out = append(out, Info{Path: e.Path, Head: e.Head, Branch: e.Branch})
	}
	return out, nil
}

// IsBranchMerged reports whether branch has been merged into target,
// via `git merge-base --is-ancestor`.
func (m *Manager) IsBranchMerged(branch, target string) (bool, error) {
	merged, err := m.git.IsAncestor(branch, target)
	if err != nil {
		return false, errs.Wrap(errs.Worktree, err, "checking merge status of %s into %s", branch, target)
	}
	return merged, nil
}

// RemoveOptions controls Remove's force behavior.
type RemoveOptions struct {
	Force       bool // pass --force to `git worktree remove` (untracked sandbox files)
	ForceBranch bool // delete the branch with -D instead of -d
	Merged      bool // branch has already been verified merged; delete with -d
}

// Remove deletes the worktree at path and then its branch. Branch-delete
// failure is non-fatal: it is logged and swallowed.
func (m *Manager) Remove(branch, path string, opts RemoveOptions) error {
	if err := m.git.WorktreeRemove(path, opts.Force); err != nil {
		return errs.Wrap(errs.Worktree, err, "removing worktree at %s", path)
	}
	if branch == "" {
		return nil
	}
	forceDelete := opts.ForceBranch && !opts.Merged
	if err := m.git.BranchDelete(branch, forceDelete); err != nil {
		style.PrintWarning("could not delete branch %s: %v", branch, err)
	}
	return nil
}

// PreserveSeeds extracts .seeds/ changes from a lead's branch and commits
// them onto the canonical branch before that lead's worktree is removed.
// Returns (false, nil) when there was nothing to preserve.
func (m *Manager) PreserveSeeds(leadName, branch, canonicalBranch string) (preserved bool, err error) {
	diff, err := m.git.DiffThreeDot(canonicalBranch, branch, ".seeds/")
	if err != nil {
		return false, errs.Wrap(errs.Worktree, err, "computing seeds diff for %s", leadName)
	}
	if strings.TrimSpace(diff) == "" {
		return false, nil
	}

	current, err := m.git.CurrentBranch()
	if err != nil {
		return false, errs.Wrap(errs.Worktree, err, "resolving canonical repo branch")
	}
	if current != canonicalBranch {
		return false, errs.Worktreef("canonical repo root is on %q, expected %q", current, canonicalBranch)
	}
	clean, err := m.git.IsClean(".seeds/")
	if err != nil {
		return false, errs.Wrap(errs.Worktree, err, "checking .seeds/ cleanliness")
	}
	if !clean {
		return false, errs.Worktreef(".seeds/ has uncommitted changes on %s, refusing to preserve", canonicalBranch)
	}

	if err := os.MkdirAll(m.metadataDir, 0o755); err != nil {
		return false, errs.Wrap(errs.Worktree, err, "creating metadata directory")
	}
	diffFile := filepath.Join(m.metadataDir, fmt.Sprintf("seeds-%s-%d.diff", leadName, time.Now().UnixNano()))
	if err := os.WriteFile(diffFile, []byte(diff), 0o644); err != nil {
		return false, errs.Wrap(errs.Worktree, err, "writing seeds diff")
	}
	defer os.Remove(diffFile)

	if err := m.git.ApplyIndex(diffFile); err != nil {
		m.revertSeeds(leadName)
		return false, errs.Wrap(errs.Worktree, err, "applying seeds diff for %s", leadName)
	}
	if err := m.git.Commit(fmt.Sprintf("chore: preserve .seeds/ changes from lead %s", leadName)); err != nil {
		m.revertSeeds(leadName)
		return false, errs.Wrap(errs.Worktree, err, "committing preserved seeds for %s", leadName)
	}
	return true, nil
}

func (m *Manager) revertSeeds(leadName string) {
	if err := m.git.ResetHard(".seeds/"); err != nil {
		style.PrintWarning("failed to revert .seeds/ after failed preservation for %s: %v", leadName, err)
	}
}
