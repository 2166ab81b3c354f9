package cmd

import (
	"github.com/spf13/cobra"

	"github.com/xcawolfe-amzn/overstory/internal/eventstore"
)

var feedLimit int

var feedCmd = &cobra.Command{
	Use:     "feed",
	GroupID: GroupDiag,
	Short:   "Show the fleet-wide chronological event feed",
	RunE:    runFeed,
}

func init() {
	feedCmd.Flags().IntVar(&feedLimit, "limit", 50, "max events to show")
	rootCmd.AddCommand(feedCmd)
}

func runFeed(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	events, err := p.Events.GetTimeline(eventstore.QueryOptions{Limit: feedLimit})
	if err != nil {
		return err
	}
	printEvents(events)
	return nil
}
