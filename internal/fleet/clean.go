// Package fleet implements operator-facing operations that span more
// than one store — today just the worktree-clean sweep, built in the
// same multi-collaborator, numbered-step orchestration shape as the
// spawn pipeline.
package fleet

import (
	"os"
	"strings"

	"github.com/xcawolfe-amzn/overstory/internal/mailstore"
	"github.com/xcawolfe-amzn/overstory/internal/sessionstore"
	"github.com/xcawolfe-amzn/overstory/internal/style"
	"github.com/xcawolfe-amzn/overstory/internal/tmux"
	"github.com/xcawolfe-amzn/overstory/internal/worktree"
)

// CleanOptions controls which worktrees a sweep considers.
type CleanOptions struct {
	CompletedOnly bool // only consider sessions in a terminal state
	Force         bool // remove even unmerged, non-lead worktrees
}

// CleanReport tallies the outcome of a sweep.
type CleanReport struct {
	Cleaned        []string
	Failed         map[string]error
	Skipped        []string
	Pruned         []string
	MailPurged     int64
	SeedsPreserved []string
}

// Clean walks every overstory-prefixed worktree end to end: decide
// skip/clean per session state and
// merge status, kill the live multiplexer session, preserve a lead's
// .seeds/ changes, remove the worktree and branch, purge the agent's
// mail, transition its session row to zombie, then prune zombie rows
// whose worktree path is already gone.
func Clean(wt *worktree.Manager, sessions *sessionstore.Store, mail *mailstore.Store, tm *tmux.Tmux, canonicalBranch string, opts CleanOptions) (*CleanReport, error) {
	report := &CleanReport{Failed: make(map[string]error)}

	infos, err := wt.List()
	if err != nil {
		return nil, err
	}

	for _, info := range infos {
		agentName, sess := resolveSession(sessions, info)
		if sess != nil && opts.CompletedOnly && !sess.State.Terminal() {
			report.Skipped = append(report.Skipped, agentName)
			continue
		}

		isLead := sess != nil && sess.Capability == "lead"
		if !isLead && !opts.Force {
			merged, err := wt.IsBranchMerged(info.Branch, canonicalBranch)
			if err != nil {
				report.Failed[agentName] = err
				continue
			}
			if !merged {
				report.Skipped = append(report.Skipped, agentName)
				continue
			}
		}

		if sess != nil && tm.HasSession(sess.TmuxSession) {
			if err := tm.KillSession(sess.TmuxSession); err != nil {
				style.PrintWarning("killing multiplexer session for %s: %v", agentName, err)
			}
		}

		if isLead {
			preserved, err := wt.PreserveSeeds(agentName, info.Branch, canonicalBranch)
			if err != nil {
				report.Failed[agentName] = err
				continue
			}
			if preserved {
				report.SeedsPreserved = append(report.SeedsPreserved, agentName)
			}
		}

		removeOpts := worktree.RemoveOptions{Force: true, ForceBranch: opts.Force, Merged: !isLead && !opts.Force}
		if err := wt.Remove(info.Branch, info.Path, removeOpts); err != nil {
			report.Failed[agentName] = err
			continue
		}

		if agentName != "" {
			purged, err := mail.Purge(mailstore.PurgeFilter{From: agentName, To: agentName})
			if err != nil {
				style.PrintWarning("purging mail for %s: %v", agentName, err)
			} else {
				report.MailPurged += purged
			}
			if err := sessions.UpdateState(agentName, sessionstore.StateZombie); err != nil {
				style.PrintWarning("marking %s zombie: %v", agentName, err)
			}
		}
		report.Cleaned = append(report.Cleaned, agentName)
	}

	pruned, err := pruneDeadZombies(sessions)
	if err != nil {
		return report, err
	}
	report.Pruned = pruned

	return report, nil
}

// resolveSession finds the session row owning a worktree, identifying it
// by path. The returned name falls back to the branch's agent segment
// when no session row exists (a worktree survives a purged session row).
func resolveSession(sessions *sessionstore.Store, info worktree.Info) (string, *sessionstore.Session) {
	all, err := sessions.GetAll()
	if err != nil {
		return "", nil
	}
	for _, s := range all {
		if s.WorktreePath == info.Path {
			return s.Name, s
		}
	}
	return agentFromBranch(info.Branch), nil
}

// agentFromBranch recovers the agent name segment of an
// overstory/<agent>/<task> branch, for worktrees that outlived their
// session row.
func agentFromBranch(branch string) string {
	parts := strings.Split(branch, "/")
	if len(parts) >= 2 {
		return parts[1]
	}
	return ""
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// pruneDeadZombies deletes zombie rows whose worktree no longer exists
// on disk.
func pruneDeadZombies(sessions *sessionstore.Store) ([]string, error) {
	all, err := sessions.GetAll()
	if err != nil {
		return nil, err
	}
	var pruned []string
	for _, s := range all {
		if s.State != sessionstore.StateZombie {
			continue
		}
		if s.WorktreePath != "" && pathExists(s.WorktreePath) {
			continue
		}
		if err := sessions.Remove(s.Name); err != nil {
			style.PrintWarning("pruning zombie row %s: %v", s.Name, err)
			continue
		}
		pruned = append(pruned, s.Name)
	}
	return pruned, nil
}
