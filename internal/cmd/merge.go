package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xcawolfe-amzn/overstory/internal/git"
	"github.com/xcawolfe-amzn/overstory/internal/mailstore"
	"github.com/xcawolfe-amzn/overstory/internal/style"
)

var mergeCmd = &cobra.Command{
	Use:     "merge <agent>",
	GroupID: GroupWork,
	Short:   "Check an agent's branch against canonical and report the result by mail",
	Args:    cobra.ExactArgs(1),
	RunE:    runMerge,
}

func init() {
	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
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
	if sess.Branch == "" {
		return fatalf("%s has no owned branch", name)
	}

	g := git.NewGit(p.Root)
	canonicalBranch, err := g.CurrentBranch()
	if err != nil {
		return err
	}

	recipient := sess.ParentAgent
	if recipient == "" {
		recipient = coordinatorName
	}

	merged, err := p.Worktree.IsBranchMerged(sess.Branch, canonicalBranch)
	if err != nil {
		if _, sendErr := p.Mail.SendProtocol("system", recipient, mailstore.PriorityHigh, "merge check failed",
			mailstore.MergeFailedPayload{AgentName: name, Branch: sess.Branch, Reason: err.Error()}); sendErr != nil {
			style.PrintWarning("notifying %s of merge failure: %v", recipient, sendErr)
		}
		return err
	}
	if !merged {
		if _, err := p.Mail.SendProtocol("system", recipient, mailstore.PriorityNormal, "not yet merged",
			mailstore.MergeFailedPayload{AgentName: name, Branch: sess.Branch, Reason: "not an ancestor of " + canonicalBranch}); err != nil {
			return err
		}
		fmt.Printf("%s is not yet merged into %s\n", sess.Branch, canonicalBranch)
		return nil
	}

	sha, err := g.Rev(sess.Branch)
	if err != nil {
		return err
	}
	if _, err := p.Mail.SendProtocol("system", recipient, mailstore.PriorityNormal, "merged",
		mailstore.MergedPayload{AgentName: name, Branch: sess.Branch, CommitSHA: sha}); err != nil {
		return err
	}
	style.PrintSuccess("%s merged into %s at %s", sess.Branch, canonicalBranch, sha)
	return nil
}
