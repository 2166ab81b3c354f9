package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xcawolfe-amzn/overstory/internal/style"
	"github.com/xcawolfe-amzn/overstory/internal/watchdog"
)

var monitorCmd = &cobra.Command{
	Use:     "monitor",
	GroupID: GroupAgents,
	Short:   "Manage the Tier 2 persistent monitor agent",
}

var monitorStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the monitor agent",
	RunE:  runMonitorStart,
}

var monitorStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the monitor agent",
	RunE:  runMonitorStop,
}

var monitorStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the monitor agent's status",
	RunE:  runMonitorStatus,
}

func init() {
	monitorCmd.AddCommand(monitorStartCmd, monitorStopCmd, monitorStatusCmd)
	rootCmd.AddCommand(monitorCmd)
}

func runMonitorStart(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	result, err := watchdog.StartMonitor(p.spawnDeps())
	if err != nil {
		return err
	}
	style.PrintSuccess("monitor started (%s)", result.Session.TmuxSession)
	return nil
}

func runMonitorStop(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	if err := watchdog.StopMonitor(p.spawnDeps()); err != nil {
		return err
	}
	style.PrintSuccess("monitor stopped")
	return nil
}

func runMonitorStatus(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	status, err := watchdog.MonitorStatusOf(p.spawnDeps())
	if err != nil {
		return err
	}
	if status.Session == nil {
		fmt.Println("monitor has never been started")
		return nil
	}
	fmt.Printf("monitor: running=%v state=%s\n", status.Running, status.Session.State)
	return nil
}
