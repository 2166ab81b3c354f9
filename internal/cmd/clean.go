package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xcawolfe-amzn/overstory/internal/fleet"
	"github.com/xcawolfe-amzn/overstory/internal/git"
	"github.com/xcawolfe-amzn/overstory/internal/style"
)

var (
	cleanCompletedOnly bool
	cleanForce         bool
)

var cleanCmd = &cobra.Command{
	Use:     "clean",
	GroupID: GroupWork,
	Short:   "Sweep finished worktrees, branches, and mail",
	RunE:    runClean,
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanCompletedOnly, "completed", false, "only sweep sessions in a terminal state")
	cleanCmd.Flags().BoolVar(&cleanForce, "force", false, "remove worktrees even if unmerged")
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	canonicalBranch, err := git.NewGit(p.Root).CurrentBranch()
	if err != nil {
		return err
	}

	report, err := fleet.Clean(p.Worktree, p.Sessions, p.Mail, p.Tmux, canonicalBranch, fleet.CleanOptions{
		CompletedOnly: cleanCompletedOnly,
		Force:         cleanForce,
	})
	if err != nil {
		return err
	}

	style.PrintSuccess("cleaned %d, skipped %d, pruned %d, mail purged %d, seeds preserved %d",
		len(report.Cleaned), len(report.Skipped), len(report.Pruned), report.MailPurged, len(report.SeedsPreserved))
	for name, err := range report.Failed {
		style.PrintError("%s: %v", name, err)
	}
	if len(report.Failed) > 0 {
		return fmt.Errorf("%d worktree(s) failed to clean", len(report.Failed))
	}
	return nil
}
