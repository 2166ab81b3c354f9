package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xcawolfe-amzn/overstory/internal/style"
)

var costsAgent string

var costsCmd = &cobra.Command{
	Use:     "costs",
	GroupID: GroupDiag,
	Short:   "Show tool-time cost breakdown, fleet-wide or for one agent",
	RunE:    runCosts,
}

func init() {
	costsCmd.Flags().StringVar(&costsAgent, "agent", "", "scope to one agent")
	rootCmd.AddCommand(costsCmd)
}

func runCosts(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	stats, err := p.Events.GetToolStats(costsAgent)
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		fmt.Println("no tool activity recorded")
		return nil
	}

	table := style.NewTable(
		style.Column{Name: "TOOL", Width: 16},
		style.Column{Name: "CALLS", Width: 8, Align: style.AlignRight},
		style.Column{Name: "AVG MS", Width: 10, Align: style.AlignRight},
		style.Column{Name: "MAX MS", Width: 10, Align: style.AlignRight},
		style.Column{Name: "TOTAL MS", Width: 10, Align: style.AlignRight},
	)
	for _, s := range stats {
		table.AddRow(s.ToolName, fmt.Sprintf("%d", s.Count), fmt.Sprintf("%.0f", s.AvgMs),
			fmt.Sprintf("%d", s.MaxMs), fmt.Sprintf("%d", s.TotalMs))
	}
	fmt.Print(table.Render())
	return nil
}
