package cmd

import (
	"github.com/spf13/cobra"

	"github.com/xcawolfe-amzn/overstory/internal/eventstore"
)

var errorsLimit int

var errorsCmd = &cobra.Command{
	Use:     "errors",
	GroupID: GroupDiag,
	Short:   "Show recent level=error events fleet-wide",
	RunE:    runErrors,
}

func init() {
	errorsCmd.Flags().IntVar(&errorsLimit, "limit", 50, "max events to show")
	rootCmd.AddCommand(errorsCmd)
}

func runErrors(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	events, err := p.Events.GetErrors(eventstore.QueryOptions{Limit: errorsLimit})
	if err != nil {
		return err
	}
	printEvents(events)
	return nil
}
