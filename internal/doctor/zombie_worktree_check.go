package doctor

import (
	"fmt"

	"github.com/xcawolfe-amzn/overstory/internal/sessionstore"
)

// ZombieMissingWorktreeCheck flags non-terminal sessions whose worktree
// directory has been removed out from under them — the watchdog's Tier 0
// loop only reconciles tmux liveness, so a worktree deleted by
// hand leaves the session row stuck in a state it can never recover from.
type ZombieMissingWorktreeCheck struct {
	BaseCheck
	Store *sessionstore.Store
}

func NewZombieMissingWorktreeCheck(s *sessionstore.Store) *ZombieMissingWorktreeCheck {
	return &ZombieMissingWorktreeCheck{
		BaseCheck: BaseCheck{
			CheckName:        "zombie-missing-worktree",
			CheckDescription: "Check for active sessions whose worktree no longer exists",
			CheckCategory:    CategorySession,
		},
		Store: s,
	}
}

func (c *ZombieMissingWorktreeCheck) Run(ctx *CheckContext) *CheckResult {
	sessions, err := c.Store.GetActive()
	if err != nil {
		return &CheckResult{Name: c.Name(), Status: StatusError, Message: fmt.Sprintf("reading sessions: %v", err)}
	}

	var missing []string
	for _, sess := range sessions {
		if sess.WorktreePath == "" {
			continue // coordinator/monitor, pinned to the project root
		}
		if !worktreeExists(sess.WorktreePath) {
			missing = append(missing, fmt.Sprintf("%s (%s, worktree %s)", sess.Name, sess.State, sess.WorktreePath))
		}
	}
	if len(missing) == 0 {
		return &CheckResult{Name: c.Name(), Status: StatusOK, Message: "every active session's worktree is present"}
	}
	return &CheckResult{
		Name: c.Name(), Status: StatusError,
		Message: fmt.Sprintf("%d active session(s) have no worktree on disk", len(missing)),
		Details: missing,
		FixHint: "Run 'overstory doctor --fix' to mark them zombie",
	}
}

func (c *ZombieMissingWorktreeCheck) Fix(ctx *CheckContext) error {
	sessions, err := c.Store.GetActive()
	if err != nil {
		return err
	}
	for _, sess := range sessions {
		if sess.WorktreePath == "" || worktreeExists(sess.WorktreePath) {
			continue
		}
		if err := c.Store.UpdateState(sess.Name, sessionstore.StateZombie); err != nil {
			return fmt.Errorf("marking %s zombie: %w", sess.Name, err)
		}
	}
	return nil
}
