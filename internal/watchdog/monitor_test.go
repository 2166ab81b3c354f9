package watchdog

import (
	"path/filepath"
	"testing"

	"github.com/xcawolfe-amzn/overstory/internal/sessionstore"
	"github.com/xcawolfe-amzn/overstory/internal/spawn"
	"github.com/xcawolfe-amzn/overstory/internal/tmux"
)

func TestMonitorStatusOfReconcilesDeadSessionToZombie(t *testing.T) {
	tm := tmux.NewTmux("tmux")
	if !tm.IsAvailable() {
		t.Skip("requires tmux for integration testing")
	}
	sessions, err := sessionstore.Open(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer sessions.Close()

	if err := sessions.Upsert(&sessionstore.Session{
		Name: MonitorName, Capability: "monitor", State: sessionstore.StateWorking,
		TmuxSession: "overstory-monitor-does-not-exist",
	}); err != nil {
		t.Fatal(err)
	}

	deps := spawn.Deps{Sessions: sessions, Tmux: tm}
	status, err := MonitorStatusOf(deps)
	if err != nil {
		t.Fatal(err)
	}
	if status.Running {
		t.Fatal("expected not running")
	}
	if status.Session.State != sessionstore.StateZombie {
		t.Fatalf("state = %s", status.Session.State)
	}
}

func TestMonitorStatusOfReturnsNilWhenNeverStarted(t *testing.T) {
	tm := tmux.NewTmux("tmux")
	sessions, err := sessionstore.Open(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer sessions.Close()

	deps := spawn.Deps{Sessions: sessions, Tmux: tm}
	status, err := MonitorStatusOf(deps)
	if err != nil {
		t.Fatal(err)
	}
	if status.Session != nil {
		t.Fatalf("expected nil session, got %+v", status.Session)
	}
}
