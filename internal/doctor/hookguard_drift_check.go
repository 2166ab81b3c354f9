package doctor

import (
	"fmt"

	"github.com/xcawolfe-amzn/overstory/internal/config"
	"github.com/xcawolfe-amzn/overstory/internal/hookguard"
	"github.com/xcawolfe-amzn/overstory/internal/sessionstore"
)

// HookGuardDriftCheck recomputes each active session's expected hook guard
// set and compares it against what's actually deployed in its worktree's
// settings.json, flagging anyone running with a stale or hand-edited policy.
type HookGuardDriftCheck struct {
	BaseCheck
	Store      *sessionstore.Store
	TrackerCLI string
}

func NewHookGuardDriftCheck(s *sessionstore.Store, trackerCLI string) *HookGuardDriftCheck {
	return &HookGuardDriftCheck{
		BaseCheck: BaseCheck{
			CheckName:        "hook-guard-drift",
			CheckDescription: "Check that deployed hook guards match what the current policy would generate",
			CheckCategory:    CategoryHookGuard,
		},
		Store:      s,
		TrackerCLI: trackerCLI,
	}
}

func (c *HookGuardDriftCheck) Run(ctx *CheckContext) *CheckResult {
	sessions, err := c.Store.GetActive()
	if err != nil {
		return &CheckResult{Name: c.Name(), Status: StatusError, Message: fmt.Sprintf("reading sessions: %v", err)}
	}

	var drifted []string
	for _, sess := range sessions {
		if sess.WorktreePath == "" {
			continue // coordinator/monitor carry no worktree-scoped guards
		}
		expected := hookguard.BuildGuards(config.Capability(sess.Capability), sess.Name, c.TrackerCLI)
		settingsPath := hookguard.SandboxSettingsPath(sess.WorktreePath)
		deployed, err := hookguard.LoadSettings(settingsPath)
		if err != nil {
			drifted = append(drifted, fmt.Sprintf("%s: unreadable settings (%v)", sess.Name, err))
			continue
		}
		if !hookguard.HooksEqual(expected, &deployed.Hooks) {
			drifted = append(drifted, fmt.Sprintf("%s (%s)", sess.Name, settingsPath))
		}
	}
	if len(drifted) == 0 {
		return &CheckResult{Name: c.Name(), Status: StatusOK, Message: "every active session's hook guards match policy"}
	}
	return &CheckResult{
		Name: c.Name(), Status: StatusError,
		Message: fmt.Sprintf("%d session(s) have drifted from the expected hook guard policy", len(drifted)),
		Details: drifted,
		FixHint: "Re-run 'overstory sling' for the session to redeploy its guards",
	}
}
