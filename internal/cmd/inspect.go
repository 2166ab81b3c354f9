package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xcawolfe-amzn/overstory/internal/identity"
)

var inspectCmd = &cobra.Command{
	Use:     "inspect <agent>",
	GroupID: GroupWork,
	Short:   "Show one agent's session, identity, and handoff history",
	Args:    cobra.ExactArgs(1),
	RunE:    runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
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

	fmt.Printf("%s (%s)\n", sess.Name, sess.Capability)
	fmt.Printf("  state:     %s\n", sess.State)
	fmt.Printf("  task:      %s\n", orDash(sess.TaskID))
	fmt.Printf("  depth:     %d\n", sess.Depth)
	fmt.Printf("  parent:    %s\n", orDash(sess.ParentAgent))
	fmt.Printf("  branch:    %s\n", orDash(sess.Branch))
	fmt.Printf("  worktree:  %s\n", orDash(sess.WorktreePath))
	fmt.Printf("  tmux:      %s\n", orDash(sess.TmuxSession))
	fmt.Printf("  run:       %s\n", orDash(sess.RunID))

	if current, err := p.Events.CurrentFile(name); err == nil && current != "" {
		fmt.Printf("  editing:   %s\n", current)
	}

	idPath := identity.Path(p.MetadataDir, name)
	if id, err := identity.Load(idPath); err == nil {
		fmt.Printf("\nidentity:\n")
		fmt.Printf("  sessions completed: %d\n", id.SessionsCompleted)
		fmt.Printf("  expertise:          %v\n", id.ExpertiseDomains)
		if len(id.RecentTasks) > 0 {
			fmt.Println("  recent tasks:")
			for _, t := range id.RecentTasks {
				fmt.Printf("    - %s (%s): %s\n", t.TaskID, t.CompletedAt, t.Summary)
			}
		}
	}

	handoffPath := identity.HandoffsPath(p.MetadataDir, name)
	if handoffs, err := identity.LoadHandoffs(handoffPath); err == nil && len(handoffs) > 0 {
		fmt.Println("\nhandoffs:")
		for _, h := range handoffs {
			fmt.Printf("  %s: %s -> %s (task %s)\n", h.At, h.FromAgent, h.ToAgent, h.TaskID)
		}
	}

	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
