package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xcawolfe-amzn/overstory/internal/style"
)

var statusCmd = &cobra.Command{
	Use:     "status",
	GroupID: GroupWork,
	Short:   "List every active agent",
	RunE:    runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	sessions, err := p.Sessions.GetActive()
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sessions)
	}

	if len(sessions) == 0 {
		fmt.Println("no active agents")
		return nil
	}

	fmt.Println(style.ActiveAgentCount(len(sessions)))
	table := style.NewTable(
		style.Column{Name: "NAME", Width: 24},
		style.Column{Name: "CAPABILITY", Width: 12},
		style.Column{Name: "TASK", Width: 14},
		style.Column{Name: "STATE", Width: 10},
		style.Column{Name: "DEPTH", Width: 6, Align: style.AlignRight},
		style.Column{Name: "PARENT", Width: 18},
	)
	table.ShrinkToFit("TASK", style.TerminalWidth(100), 8)
	for _, s := range sessions {
		parent := s.ParentAgent
		if parent == "" {
			parent = "-"
		}
		task := s.TaskID
		if task == "" {
			task = "-"
		}
		table.AddRow(s.Name, s.Capability, task, string(s.State), fmt.Sprintf("%d", s.Depth), parent)
	}
	fmt.Print(table.Render())
	return nil
}
