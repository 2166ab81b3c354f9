package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xcawolfe-amzn/overstory/internal/fleet"
	"github.com/xcawolfe-amzn/overstory/internal/git"
	"github.com/xcawolfe-amzn/overstory/internal/style"
)

var (
	worktreeCleanCompleted bool
	worktreeCleanAll       bool
	worktreeCleanForce     bool
)

var worktreeCmd = &cobra.Command{
	Use:     "worktree",
	GroupID: GroupWork,
	Short:   "Inspect and sweep agent worktrees",
}

var worktreeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every overstory-prefixed worktree",
	RunE:  runWorktreeList,
}

var worktreeCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove finished worktrees and branches",
	RunE:  runWorktreeClean,
}

func init() {
	worktreeCleanCmd.Flags().BoolVar(&worktreeCleanCompleted, "completed", false, "only sweep completed sessions")
	worktreeCleanCmd.Flags().BoolVar(&worktreeCleanAll, "all", false, "sweep every session regardless of state")
	worktreeCleanCmd.Flags().BoolVar(&worktreeCleanForce, "force", false, "remove worktrees even if unmerged")
	worktreeCmd.AddCommand(worktreeListCmd, worktreeCleanCmd)
	rootCmd.AddCommand(worktreeCmd)
}

func runWorktreeList(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	infos, err := p.Worktree.List()
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Println("no worktrees")
		return nil
	}
	table := style.NewTable(
		style.Column{Name: "BRANCH", Width: 34},
		style.Column{Name: "PATH", Width: 40},
		style.Column{Name: "HEAD", Width: 10},
	)
	for _, info := range infos {
		table.AddRow(info.Branch, info.Path, info.Head)
	}
	fmt.Print(table.Render())
	return nil
}

func runWorktreeClean(cmd *cobra.Command, args []string) error {
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
		CompletedOnly: worktreeCleanCompleted && !worktreeCleanAll,
		Force:         worktreeCleanForce,
	})
	if err != nil {
		return err
	}

	style.PrintSuccess("cleaned %d, skipped %d, pruned %d", len(report.Cleaned), len(report.Skipped), len(report.Pruned))
	return nil
}
