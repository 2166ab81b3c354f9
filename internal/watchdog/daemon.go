package watchdog

import (
	"context"
	"os"
	"syscall"
	"time"

	"github.com/xcawolfe-amzn/overstory/internal/config"
	"github.com/xcawolfe-amzn/overstory/internal/mailstore"
	"github.com/xcawolfe-amzn/overstory/internal/sessionstore"
	"github.com/xcawolfe-amzn/overstory/internal/style"
)

// Daemon runs the mechanical supervision loop that reconciles
// zombie-vs-alive state across the fleet, generalized from reconciling
// one named session to a full-fleet poll.
type Daemon struct {
	Config   *config.Config
	Sessions *sessionstore.Store
	Mail     *mailstore.Store
	Tmux     tmuxOps
	Now      func() time.Time

	lastNudge map[string]time.Time
	// OnHealthCheck, if set, is invoked once per session per pass for a
	// foreground renderer.
	OnHealthCheck func(HealthCheck)
}

// pidLiveness probes whether pid still belongs to a running process,
// returning nil when no pid was recorded. Sending signal 0 performs the
// kernel's existence check without actually signaling the process.
func pidLiveness(pid int) *bool {
	if pid == 0 {
		return nil
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		alive := false
		return &alive
	}
	alive := proc.Signal(syscall.Signal(0)) == nil
	return &alive
}

func (d *Daemon) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// Pass runs one reconciliation sweep over every non-terminal session.
func (d *Daemon) Pass() error {
	if d.lastNudge == nil {
		d.lastNudge = make(map[string]time.Time)
	}
	active, err := d.Sessions.GetActive()
	if err != nil {
		return err
	}
	now := d.now()

	for _, sess := range active {
		tmuxAlive := d.Tmux.HasSession(sess.TmuxSession)
		pidAlive := pidLiveness(sess.PID)
		elapsed := now.Sub(sess.LastActivity)
		action, note := decide(sess, tmuxAlive, elapsed, d.Config.StaleThresholdMs, d.Config.ZombieThresholdMs)

		hc, err := applyAction(d.Sessions, sess, action, note, tmuxAlive, pidAlive, now)
		if err != nil {
			style.PrintWarning("applying action %s to %s: %v", action, sess.Name, err)
			continue
		}
		if d.OnHealthCheck != nil {
			d.OnHealthCheck(hc)
		}

		if action == ActionEscalate {
			escalated := *sess
			escalated.EscalationLevel++
			if shouldNudge(&escalated, d.lastNudge[sess.Name], d.Config.NudgeIntervalMs, now) {
				if err := nudge(d.Tmux, d.Mail, &escalated, escalated.EscalationLevel); err != nil {
					style.PrintWarning("nudging %s: %v", sess.Name, err)
				} else {
					d.lastNudge[sess.Name] = now
				}
			}
		}
	}
	return nil
}

// Run loops Pass at the configured poll interval until ctx is canceled,
// exiting cleanly on a graceful shutdown signal.
func (d *Daemon) Run(ctx context.Context) error {
	interval := time.Duration(d.Config.PollIntervalMs) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := d.Pass(); err != nil {
			style.PrintWarning("watchdog pass failed: %v", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
