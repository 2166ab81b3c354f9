package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xcawolfe-amzn/overstory/internal/config"
	"github.com/xcawolfe-amzn/overstory/internal/sessionstore"
	"github.com/xcawolfe-amzn/overstory/internal/spawn"
	"github.com/xcawolfe-amzn/overstory/internal/style"
)

const coordinatorName = "coordinator"

var coordinatorCmd = &cobra.Command{
	Use:     "coordinator",
	GroupID: GroupAgents,
	Short:   "Manage the fleet coordinator agent",
}

var coordinatorStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the coordinator, pinned to the project root",
	RunE:  runCoordinatorStart,
}

var coordinatorStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the coordinator",
	RunE:  runCoordinatorStop,
}

var coordinatorStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the coordinator's status",
	RunE:  runCoordinatorStatus,
}

func init() {
	coordinatorCmd.AddCommand(coordinatorStartCmd, coordinatorStopCmd, coordinatorStatusCmd)
	rootCmd.AddCommand(coordinatorCmd)
}

func runCoordinatorStart(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	existing, err := p.Sessions.GetByName(coordinatorName)
	if err != nil {
		return err
	}
	if existing != nil && !existing.State.Terminal() && p.Tmux.HasSession(existing.TmuxSession) {
		style.PrintWarning("coordinator is already running")
		return nil
	}

	result, err := spawn.Spawn(p.spawnDeps(), spawn.Request{
		Name:            coordinatorName,
		Capability:      config.CapabilityCoordinator,
		BypassHierarchy: true,
	})
	if err != nil {
		return err
	}
	style.PrintSuccess("coordinator started (%s)", result.Session.TmuxSession)
	return nil
}

func runCoordinatorStop(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	sess, err := p.Sessions.GetByName(coordinatorName)
	if err != nil {
		return err
	}
	if sess == nil || sess.State.Terminal() {
		style.PrintWarning("coordinator is not running")
		return nil
	}
	if p.Tmux.HasSession(sess.TmuxSession) {
		if err := p.Tmux.KillSession(sess.TmuxSession); err != nil {
			return err
		}
	}
	if err := p.Sessions.UpdateState(coordinatorName, sessionstore.StateCompleted); err != nil {
		return err
	}
	style.PrintSuccess("coordinator stopped")
	return nil
}

func runCoordinatorStatus(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	sess, err := p.Sessions.GetByName(coordinatorName)
	if err != nil {
		return err
	}
	if sess == nil {
		fmt.Println("coordinator has never been started")
		return nil
	}
	alive := p.Tmux.HasSession(sess.TmuxSession)
	fmt.Printf("coordinator: state=%s tmux-alive=%v run=%s\n", sess.State, alive, sess.RunID)
	return nil
}
