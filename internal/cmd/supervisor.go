package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xcawolfe-amzn/overstory/internal/config"
	"github.com/xcawolfe-amzn/overstory/internal/sessionstore"
	"github.com/xcawolfe-amzn/overstory/internal/spawn"
	"github.com/xcawolfe-amzn/overstory/internal/style"
)

var (
	supervisorTask   string
	supervisorName   string
	supervisorParent string
	supervisorDepth  int
)

var supervisorCmd = &cobra.Command{
	Use:     "supervisor",
	GroupID: GroupAgents,
	Short:   "Manage a supervisor agent within the hierarchy",
}

var supervisorStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a supervisor for a task",
	RunE:  runSupervisorStart,
}

var supervisorStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a named supervisor",
	RunE:  runSupervisorStop,
}

var supervisorStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show a named supervisor's status",
	RunE:  runSupervisorStatus,
}

func init() {
	for _, c := range []*cobra.Command{supervisorStartCmd, supervisorStopCmd, supervisorStatusCmd} {
		c.Flags().StringVar(&supervisorName, "name", "", "supervisor agent name")
	}
	supervisorStartCmd.Flags().StringVar(&supervisorTask, "task", "", "task id")
	supervisorStartCmd.Flags().StringVar(&supervisorParent, "parent", "", "parent agent name")
	supervisorStartCmd.Flags().IntVar(&supervisorDepth, "depth", 0, "hierarchy depth")
	_ = supervisorStartCmd.MarkFlagRequired("task")
	_ = supervisorStartCmd.MarkFlagRequired("name")
	_ = supervisorStopCmd.MarkFlagRequired("name")
	_ = supervisorStatusCmd.MarkFlagRequired("name")

	supervisorCmd.AddCommand(supervisorStartCmd, supervisorStopCmd, supervisorStatusCmd)
	rootCmd.AddCommand(supervisorCmd)
}

func runSupervisorStart(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	result, err := spawn.Spawn(p.spawnDeps(), spawn.Request{
		TaskID:     supervisorTask,
		Capability: config.CapabilitySupervisor,
		Name:       supervisorName,
		Parent:     supervisorParent,
		Depth:      supervisorDepth,
	})
	if err != nil {
		return err
	}
	style.PrintSuccess("supervisor %s started for task %s", result.Session.Name, supervisorTask)
	return nil
}

func runSupervisorStop(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	sess, err := p.Sessions.GetByName(supervisorName)
	if err != nil {
		return err
	}
	if sess == nil || sess.State.Terminal() {
		style.PrintWarning("%s is not running", supervisorName)
		return nil
	}
	if p.Tmux.HasSession(sess.TmuxSession) {
		if err := p.Tmux.KillSession(sess.TmuxSession); err != nil {
			return err
		}
	}
	return p.Sessions.UpdateState(supervisorName, sessionstore.StateCompleted)
}

func runSupervisorStatus(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	sess, err := p.Sessions.GetByName(supervisorName)
	if err != nil {
		return err
	}
	if sess == nil {
		fmt.Printf("%s has never been started\n", supervisorName)
		return nil
	}
	fmt.Printf("%s: state=%s tmux-alive=%v task=%s\n", sess.Name, sess.State, p.Tmux.HasSession(sess.TmuxSession), sess.TaskID)
	return nil
}
