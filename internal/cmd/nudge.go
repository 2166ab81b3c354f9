package cmd

import (
	"github.com/spf13/cobra"

	"github.com/xcawolfe-amzn/overstory/internal/style"
	"github.com/xcawolfe-amzn/overstory/internal/watchdog"
)

var nudgeMessage string

var nudgeCmd = &cobra.Command{
	Use:     "nudge <agent>",
	GroupID: GroupWork,
	Short:   "Send a manual nudge to a stalled agent",
	Args:    cobra.ExactArgs(1),
	RunE:    runNudge,
}

func init() {
	nudgeCmd.Flags().StringVar(&nudgeMessage, "message", "[watchdog] manual nudge. Reply or resume work.", "nudge text")
	rootCmd.AddCommand(nudgeCmd)
}

func runNudge(cmd *cobra.Command, args []string) error {
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
	if err := watchdog.SendNudge(p.Tmux, p.Mail, sess, nudgeMessage); err != nil {
		return err
	}
	style.PrintSuccess("nudged %s", name)
	return nil
}
