package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xcawolfe-amzn/overstory/internal/eventstore"
)

var traceCmd = &cobra.Command{
	Use:     "trace <agent|task>",
	GroupID: GroupDiag,
	Short:   "Show an agent's full event trace, resolving by agent name or task id",
	Args:    cobra.ExactArgs(1),
	RunE:    runTrace,
}

func init() {
	rootCmd.AddCommand(traceCmd)
}

func runTrace(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	agentName, err := resolveAgentOrTask(p, args[0])
	if err != nil {
		return err
	}

	events, err := p.Events.GetByAgent(agentName, eventstore.QueryOptions{})
	if err != nil {
		return err
	}
	printEvents(events)

	currentFile, err := p.Events.CurrentFile(agentName)
	if err != nil {
		return err
	}
	if currentFile != "" {
		fmt.Printf("currently editing: %s\n", currentFile)
	}
	return nil
}

// resolveAgentOrTask accepts either a live agent name or a task id and
// returns the owning agent's name.
func resolveAgentOrTask(p *project, ref string) (string, error) {
	if sess, err := p.Sessions.GetByName(ref); err == nil && sess != nil {
		return sess.Name, nil
	}
	sessions, err := p.Sessions.GetAll()
	if err != nil {
		return "", err
	}
	for _, s := range sessions {
		if s.TaskID == ref {
			return s.Name, nil
		}
	}
	return "", fatalf("no agent or task matching %q", ref)
}
