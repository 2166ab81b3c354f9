package doctor

import (
	"fmt"
	"path/filepath"

	"github.com/xcawolfe-amzn/overstory/internal/watchdog"
)

// watchdogPIDFileName is the fixed PID file name the Tier 0 daemon
// writes in the project metadata directory.
const watchdogPIDFileName = "watchdog.pid"

// StalePIDFileCheck detects a watchdog.pid left behind by a daemon that
// crashed without removing it.
type StalePIDFileCheck struct {
	FixableCheck
}

func NewStalePIDFileCheck() *StalePIDFileCheck {
	return &StalePIDFileCheck{
		FixableCheck: FixableCheck{BaseCheck{
			CheckName:        "stale-watchdog-pid",
			CheckDescription: "Check for a watchdog.pid left behind by a crashed daemon",
			CheckCategory:    CategorySession,
		}},
	}
}

func (c *StalePIDFileCheck) path(ctx *CheckContext) string {
	return filepath.Join(ctx.MetadataDir, watchdogPIDFileName)
}

func (c *StalePIDFileCheck) Run(ctx *CheckContext) *CheckResult {
	path := c.path(ctx)
	if !watchdog.IsStale(path) {
		return &CheckResult{Name: c.Name(), Status: StatusOK, Message: "no stale watchdog PID file"}
	}
	pid, err := watchdog.ReadPIDFile(path)
	if err != nil {
		return &CheckResult{Name: c.Name(), Status: StatusWarning, Message: fmt.Sprintf("stale PID file present but unreadable: %v", err)}
	}
	return &CheckResult{
		Name: c.Name(), Status: StatusError,
		Message: fmt.Sprintf("watchdog.pid recorded pid %d and is older than the staleness window", pid),
		FixHint: "Run 'overstory doctor --fix' to remove the stale PID file",
	}
}

func (c *StalePIDFileCheck) Fix(ctx *CheckContext) error {
	return watchdog.RemovePIDFile(c.path(ctx))
}
