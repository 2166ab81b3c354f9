// Package watchdog implements the mechanical supervisor that reconciles
// declared session state against multiplexer reality, across every
// non-terminal row in the session store.
package watchdog

import (
	"time"

	"github.com/xcawolfe-amzn/overstory/internal/sessionstore"
)

// Action is the closed decision set a health pass produces for one
// session.
type Action string

const (
	ActionOK          Action = "ok"
	ActionEscalate    Action = "escalate"
	ActionTerminate   Action = "terminate"
	ActionInvestigate Action = "investigate"
)

// HealthCheck is the callback payload a pass emits per session, for the
// foreground renderer and for fleet-wide mail summaries.
type HealthCheck struct {
	AgentName         string
	State             sessionstore.State
	TmuxAlive         bool
	PIDAlive          *bool
	Action            Action
	ReconciliationNote string
}

// decide applies a priority-ordered action table against reconciled
// session and multiplexer state.
func decide(sess *sessionstore.Session, tmuxAlive bool, elapsed time.Duration, staleThresholdMs, zombieThresholdMs int64) (Action, string) {
	zombieThreshold := time.Duration(zombieThresholdMs) * time.Millisecond
	staleThreshold := time.Duration(staleThresholdMs) * time.Millisecond

	if !tmuxAlive {
		if elapsed > zombieThreshold {
			return ActionTerminate, "multiplexer session gone, past zombie threshold"
		}
		return ActionInvestigate, "multiplexer session gone, within zombie threshold"
	}
	if elapsed > staleThreshold {
		return ActionEscalate, "multiplexer alive but no recorded activity past stale threshold"
	}
	return ActionOK, ""
}

// applyAction mutates the store row to reflect action's side effects and
// returns the HealthCheck to emit.
func applyAction(sessions *sessionstore.Store, sess *sessionstore.Session, action Action, note string, tmuxAlive bool, pidAlive *bool, now time.Time) (HealthCheck, error) {
	hc := HealthCheck{
		AgentName: sess.Name, State: sess.State, TmuxAlive: tmuxAlive,
		PIDAlive: pidAlive, Action: action, ReconciliationNote: note,
	}

	switch action {
	case ActionTerminate:
		if err := sessions.UpdateState(sess.Name, sessionstore.StateZombie); err != nil {
			return hc, err
		}
		hc.State = sessionstore.StateZombie
	case ActionEscalate:
		level := sess.EscalationLevel + 1
		stalledSince := sess.StalledSince
		if stalledSince == nil {
			stalledSince = &now
		}
		if err := sessions.UpdateEscalation(sess.Name, level, stalledSince); err != nil {
			return hc, err
		}
		if sess.State != sessionstore.StateStalled {
			if err := sessions.UpdateState(sess.Name, sessionstore.StateStalled); err != nil {
				return hc, err
			}
		}
		hc.State = sessionstore.StateStalled
	case ActionOK:
		if sess.EscalationLevel != 0 || sess.StalledSince != nil {
			if err := sessions.UpdateEscalation(sess.Name, 0, nil); err != nil {
				return hc, err
			}
		}
		if sess.State == sessionstore.StateStalled {
			if err := sessions.UpdateState(sess.Name, sessionstore.StateWorking); err != nil {
				return hc, err
			}
			hc.State = sessionstore.StateWorking
		}
	case ActionInvestigate:
		// transient: no state mutation.
	}

	return hc, nil
}
