package cmd

import (
	"github.com/spf13/cobra"

	"github.com/xcawolfe-amzn/overstory/internal/eventstore"
)

var replayCmd = &cobra.Command{
	Use:     "replay [run-id]",
	GroupID: GroupDiag,
	Short:   "Replay a run's full event timeline in order, defaulting to the active run",
	Args:    cobra.MaximumNArgs(1),
	RunE:    runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	runID := ""
	if len(args) == 1 {
		runID = args[0]
	} else {
		run, err := p.Sessions.GetActiveRun()
		if err != nil {
			return err
		}
		if run == nil {
			return fatalf("no active run and no run id given")
		}
		runID = run.ID
	}

	events, err := p.Events.GetByRun(runID, eventstore.QueryOptions{})
	if err != nil {
		return err
	}
	printEvents(events)
	return nil
}
