package watchdog

import (
	"fmt"

	"github.com/xcawolfe-amzn/overstory/internal/config"
	"github.com/xcawolfe-amzn/overstory/internal/sessionstore"
	"github.com/xcawolfe-amzn/overstory/internal/spawn"
)

// MonitorName is the fixed agent name for the Tier 2 monitor (:
// "pinned to the project root with no worktree and no task id").
const MonitorName = "monitor"

// MonitorStatus is what the monitor lifecycle commands report, after
// reconciling declared vs. actual multiplexer liveness (
// "Lifecycle commands start/stop/status reconcile ... on every call").
type MonitorStatus struct {
	Running bool
	Session *sessionstore.Session
}

// StartMonitor spawns the Tier 2 monitor through the same pipeline every
// other agent uses, bypassing hierarchy (it has no parent) and skipping
// worktree creation by giving it the project root directly.
func StartMonitor(deps spawn.Deps) (*spawn.Result, error) {
	existing, err := deps.Sessions.GetByName(MonitorName)
	if err != nil {
		return nil, err
	}
	if existing != nil && !existing.State.Terminal() {
		if deps.Tmux.HasSession(existing.TmuxSession) {
			return nil, fmt.Errorf("monitor already running in session %s", existing.TmuxSession)
		}
	}
	return spawn.Spawn(deps, spawn.Request{
		Name: MonitorName, Capability: config.CapabilityMonitor,
		BypassHierarchy: true,
	})
}

// StopMonitor kills the monitor's multiplexer session and marks it
// completed.
func StopMonitor(deps spawn.Deps) error {
	sess, err := deps.Sessions.GetByName(MonitorName)
	if err != nil {
		return err
	}
	if sess == nil {
		return fmt.Errorf("monitor is not running")
	}
	if err := deps.Tmux.KillSession(sess.TmuxSession); err != nil {
		return err
	}
	return deps.Sessions.UpdateState(MonitorName, sessionstore.StateCompleted)
}

// MonitorStatusOf reconciles the recorded monitor session against actual
// multiplexer liveness and reports both.
func MonitorStatusOf(deps spawn.Deps) (MonitorStatus, error) {
	sess, err := deps.Sessions.GetByName(MonitorName)
	if err != nil || sess == nil {
		return MonitorStatus{}, err
	}
	alive := deps.Tmux.HasSession(sess.TmuxSession)
	if !alive && !sess.State.Terminal() {
		_ = deps.Sessions.UpdateState(MonitorName, sessionstore.StateZombie)
		sess.State = sessionstore.StateZombie
	}
	return MonitorStatus{Running: alive, Session: sess}, nil
}
