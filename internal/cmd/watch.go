package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/xcawolfe-amzn/overstory/internal/tui/watch"
	"github.com/xcawolfe-amzn/overstory/internal/watchdog"
)

var (
	watchIntervalMs int
	watchBackground bool
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	GroupID: GroupDiag,
	Short:   "Run the watchdog in the foreground with a live health-check view",
	RunE:    runWatch,
}

func init() {
	watchCmd.Flags().IntVar(&watchIntervalMs, "interval", 0, "poll interval in milliseconds, defaults to the configured poll interval")
	watchCmd.Flags().BoolVar(&watchBackground, "background", false, "run headless, writing a PID file instead of a TUI")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	intervalMs := int64(watchIntervalMs)
	if intervalMs == 0 {
		intervalMs = p.Config.PollIntervalMs
	}
	p.Config.PollIntervalMs = intervalMs

	daemon := &watchdog.Daemon{
		Config:   p.Config,
		Sessions: p.Sessions,
		Mail:     p.Mail,
		Tmux:     p.Tmux,
	}

	if watchBackground {
		return runWatchBackground(daemon, p.MetadataDir)
	}

	m := watch.New(daemon, time.Duration(intervalMs)*time.Millisecond)
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

// runWatchBackground runs the daemon headlessly, enforcing the "PID
// file absent or stale" startup precondition and removing it on a
// graceful SIGINT/SIGTERM shutdown.
func runWatchBackground(daemon *watchdog.Daemon, metadataDir string) error {
	pidPath := filepath.Join(metadataDir, "watchdog.pid")
	if _, err := os.Stat(pidPath); err == nil && !watchdog.IsStale(pidPath) {
		return fatalf("watchdog.pid already present at %s; remove it or run 'overstory doctor --fix' if stale", pidPath)
	}

	lock, err := watchdog.AcquireStartupLock(pidPath)
	if err != nil {
		return err
	}
	defer lock.Unlock()

	if err := watchdog.WritePIDFile(pidPath); err != nil {
		return err
	}
	defer watchdog.RemovePIDFile(pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return daemon.Run(ctx)
}
