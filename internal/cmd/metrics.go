package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xcawolfe-amzn/overstory/internal/style"
)

var metricsCmd = &cobra.Command{
	Use:     "metrics",
	GroupID: GroupDiag,
	Short:   "Refresh and show the aggregated per-session metrics rollup",
	RunE:    runMetrics,
}

func init() {
	rootCmd.AddCommand(metricsCmd)
}

func runMetrics(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	sessions, err := p.Sessions.GetAll()
	if err != nil {
		return err
	}
	for _, s := range sessions {
		if _, err := p.Metrics.Refresh(p.Events, s.Name, s.RunID); err != nil {
			return err
		}
	}

	rollups, err := p.Metrics.List()
	if err != nil {
		return err
	}
	if len(rollups) == 0 {
		fmt.Println("no metrics recorded")
		return nil
	}

	table := style.NewTable(
		style.Column{Name: "AGENT", Width: 20},
		style.Column{Name: "RUN", Width: 16},
		style.Column{Name: "TOOL CALLS", Width: 10, Align: style.AlignRight},
		style.Column{Name: "TOOL MS", Width: 10, Align: style.AlignRight},
		style.Column{Name: "ERRORS", Width: 8, Align: style.AlignRight},
	)
	for _, m := range rollups {
		table.AddRow(m.AgentName, m.RunID, fmt.Sprintf("%d", m.ToolCalls),
			fmt.Sprintf("%d", m.TotalToolMs), fmt.Sprintf("%d", m.ErrorCount))
	}
	fmt.Print(table.Render())
	return nil
}
