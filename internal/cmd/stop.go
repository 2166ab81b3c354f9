package cmd

import (
	"github.com/spf13/cobra"

	"github.com/xcawolfe-amzn/overstory/internal/sessionstore"
	"github.com/xcawolfe-amzn/overstory/internal/style"
)

var stopCmd = &cobra.Command{
	Use:     "stop <agent>",
	GroupID: GroupAgents,
	Short:   "Stop an agent's multiplexer session and mark it completed",
	Args:    cobra.ExactArgs(1),
	RunE:    runStop,
}

func init() {
	rootCmd.AddCommand(stopCmd)
}

func runStop(cmd *cobra.Command, args []string) error {
	name := args[0]
	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	sess, err := p.Sessions.GetByName(name)
	if err != nil {
		return err
	}
	if sess == nil {
		return fatalf("no such agent %q", name)
	}
	if sess.State.Terminal() {
		style.PrintWarning("%s is already %s", name, sess.State)
		return nil
	}

	if p.Tmux.HasSession(sess.TmuxSession) {
		if err := p.Tmux.KillSession(sess.TmuxSession); err != nil {
			style.PrintWarning("killing multiplexer session %s: %v", sess.TmuxSession, err)
		}
	}
	if err := p.Sessions.UpdateState(name, sessionstore.StateCompleted); err != nil {
		return err
	}

	style.PrintSuccess("stopped %s", name)
	return nil
}
