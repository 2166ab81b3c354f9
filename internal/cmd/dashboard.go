package cmd

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/xcawolfe-amzn/overstory/internal/tui/dashboard"
)

var dashboardIntervalMs int

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	GroupID: GroupWork,
	Short:   "Live-updating table of every session in the project",
	RunE:    runDashboard,
}

func init() {
	dashboardCmd.Flags().IntVar(&dashboardIntervalMs, "interval", 1000, "refresh interval in milliseconds")
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	m := dashboard.New(p.Sessions, time.Duration(dashboardIntervalMs)*time.Millisecond)
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
