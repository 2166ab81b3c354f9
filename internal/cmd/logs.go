package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xcawolfe-amzn/overstory/internal/eventstore"
	"github.com/xcawolfe-amzn/overstory/internal/style"
)

var (
	logsAgent string
	logsRun   string
	logsLimit int
)

var logsCmd = &cobra.Command{
	Use:     "logs",
	GroupID: GroupDiag,
	Short:   "List recent events, optionally scoped to an agent or run",
	RunE:    runLogs,
}

func init() {
	logsCmd.Flags().StringVar(&logsAgent, "agent", "", "scope to one agent")
	logsCmd.Flags().StringVar(&logsRun, "run", "", "scope to one run")
	logsCmd.Flags().IntVar(&logsLimit, "limit", 100, "max events to show")
	rootCmd.AddCommand(logsCmd)
}

func runLogs(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	opts := eventstore.QueryOptions{Limit: logsLimit}
	var events []*eventstore.Event
	switch {
	case logsAgent != "":
		events, err = p.Events.GetByAgent(logsAgent, opts)
	case logsRun != "":
		events, err = p.Events.GetByRun(logsRun, opts)
	default:
		events, err = p.Events.GetTimeline(opts)
	}
	if err != nil {
		return err
	}
	printEvents(events)
	return nil
}

func printEvents(events []*eventstore.Event) {
	if len(events) == 0 {
		fmt.Println("no events")
		return
	}
	table := style.NewTable(
		style.Column{Name: "TIME", Width: 20},
		style.Column{Name: "AGENT", Width: 18},
		style.Column{Name: "TYPE", Width: 14},
		style.Column{Name: "TOOL", Width: 14},
		style.Column{Name: "LEVEL", Width: 6},
	)
	for _, e := range events {
		table.AddRow(e.CreatedAt.Format("15:04:05.000"), e.AgentName, string(e.Type), e.ToolName, string(e.Level))
	}
	fmt.Print(table.Render())
}
