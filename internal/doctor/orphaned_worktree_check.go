package doctor

import (
	"fmt"
	"os"

	"github.com/xcawolfe-amzn/overstory/internal/sessionstore"
	"github.com/xcawolfe-amzn/overstory/internal/worktree"
)

// OrphanedWorktreeCheck cross-references git worktrees against the session
// store and flags worktrees no session references at all (
// "orphaned worktrees") — typically left behind by a crash between worktree
// creation and session row insertion, or a session row purged without its
// worktree being cleaned up first.
type OrphanedWorktreeCheck struct {
	BaseCheck
	Manager *worktree.Manager
	Store   *sessionstore.Store
}

func NewOrphanedWorktreeCheck(m *worktree.Manager, s *sessionstore.Store) *OrphanedWorktreeCheck {
	return &OrphanedWorktreeCheck{
		BaseCheck: BaseCheck{
			CheckName:        "orphaned-worktrees",
			CheckDescription: "Check for git worktrees no session references",
			CheckCategory:    CategoryWorktree,
		},
		Manager: m,
		Store:   s,
	}
}

func (c *OrphanedWorktreeCheck) Run(ctx *CheckContext) *CheckResult {
	infos, err := c.Manager.List()
	if err != nil {
		return &CheckResult{Name: c.Name(), Status: StatusError, Message: fmt.Sprintf("listing worktrees: %v", err)}
	}
	sessions, err := c.Store.GetAll()
	if err != nil {
		return &CheckResult{Name: c.Name(), Status: StatusError, Message: fmt.Sprintf("reading sessions: %v", err)}
	}
	known := make(map[string]bool, len(sessions))
	for _, sess := range sessions {
		known[sess.WorktreePath] = true
	}

	var orphans []string
	for _, info := range infos {
		if !known[info.Path] {
			orphans = append(orphans, fmt.Sprintf("%s (branch %s)", info.Path, info.Branch))
		}
	}
	if len(orphans) == 0 {
		return &CheckResult{Name: c.Name(), Status: StatusOK, Message: "every worktree has an owning session"}
	}
	return &CheckResult{
		Name: c.Name(), Status: StatusWarning,
		Message: fmt.Sprintf("%d worktree(s) have no owning session", len(orphans)),
		Details: orphans,
		FixHint: "Run 'overstory worktree clean' to remove them",
	}
}

// worktreeExists reports whether path is still a directory on disk, used
// by checks that need to tell a deleted worktree apart from a relocated one.
func worktreeExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
