package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xcawolfe-amzn/overstory/internal/sessionstore"
	"github.com/xcawolfe-amzn/overstory/internal/style"
)

var (
	runListStatus string
	runListLimit  int
)

var runCmd = &cobra.Command{
	Use:     "run",
	GroupID: GroupWork,
	Short:   "Inspect and manage orchestration runs",
}

var runListCmd = &cobra.Command{Use: "list", Short: "List runs, newest first", RunE: runRunList}
var runShowCmd = &cobra.Command{Use: "show <run-id>", Short: "Show a run and its agent events", Args: cobra.ExactArgs(1), RunE: runRunShow}
var runCompleteCmd = &cobra.Command{Use: "complete <run-id>", Short: "Mark a run completed or failed", Args: cobra.ExactArgs(1), RunE: runRunComplete}

var runCompleteFailed bool

func init() {
	runListCmd.Flags().StringVar(&runListStatus, "status", "", "filter by status (active, completed, failed)")
	runListCmd.Flags().IntVar(&runListLimit, "limit", 20, "max runs to show")
	runCompleteCmd.Flags().BoolVar(&runCompleteFailed, "failed", false, "mark the run failed instead of completed")

	runCmd.AddCommand(runListCmd, runShowCmd, runCompleteCmd)
	rootCmd.AddCommand(runCmd)
}

func runRunList(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	runs, err := p.Sessions.ListRuns(sessionstore.ListRunsOptions{
		Status: sessionstore.RunStatus(runListStatus),
		Limit:  runListLimit,
	})
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs")
		return nil
	}

	table := style.NewTable(
		style.Column{Name: "ID", Width: 14},
		style.Column{Name: "STATUS", Width: 10},
		style.Column{Name: "AGENTS", Width: 8, Align: style.AlignRight},
		style.Column{Name: "STARTED", Width: 22},
	)
	for _, r := range runs {
		table.AddRow(r.ID, string(r.Status), fmt.Sprintf("%d", r.AgentCount), r.StartedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Print(table.Render())
	return nil
}

func runRunShow(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	run, err := p.Sessions.GetRun(args[0])
	if err != nil {
		return err
	}
	if run == nil {
		return fatalf("no such run %q", args[0])
	}
	fmt.Printf("run:    %s\n", run.ID)
	fmt.Printf("status: %s\n", run.Status)
	fmt.Printf("agents: %d\n", run.AgentCount)
	fmt.Printf("started: %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
	if run.CompletedAt != nil {
		fmt.Printf("completed: %s\n", run.CompletedAt.Format("2006-01-02 15:04:05"))
	}

	stats, err := p.Events.GetRunStats(run.ID)
	if err != nil {
		return err
	}
	fmt.Printf("events: %d (tool calls: %d, %dms total)\n", stats.EventCount, stats.ToolCalls, stats.TotalToolMs)
	return nil
}

func runRunComplete(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	status := sessionstore.RunCompleted
	if runCompleteFailed {
		status = sessionstore.RunFailed
	}
	if err := p.Sessions.CompleteRun(args[0], status); err != nil {
		return err
	}
	style.PrintSuccess("run %s marked %s", args[0], status)
	return nil
}
