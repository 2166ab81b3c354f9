package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xcawolfe-amzn/overstory/internal/doctor"
	"github.com/xcawolfe-amzn/overstory/internal/style"
)

var (
	doctorFix     bool
	doctorVerbose bool
)

var doctorCmd = &cobra.Command{
	Use:     "doctor",
	GroupID: GroupDiag,
	Short:   "Run health checks over the project and optionally fix what they find",
	RunE:    runDoctor,
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "attempt to repair failing checks")
	doctorCmd.Flags().BoolVarP(&doctorVerbose, "verbose", "v", false, "show details for passing checks too")
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	d := doctor.NewDoctor()
	d.RegisterAll(
		doctor.NewStalePIDFileCheck(),
		doctor.NewWALGrowthCheck(),
		doctor.NewOrphanedWorktreeCheck(p.Worktree, p.Sessions),
		doctor.NewZombieMissingWorktreeCheck(p.Sessions),
		doctor.NewHookGuardDriftCheck(p.Sessions, p.Config.TrackerCLI),
	)

	ctx := p.doctorContext(doctorVerbose)
	results := d.Run(ctx)

	failing := 0
	for _, r := range results {
		if r.Status == doctor.StatusOK && !doctorVerbose {
			continue
		}
		printCheckResult(r)
		if r.Status != doctor.StatusOK {
			failing++
		}
	}
	if failing == 0 {
		style.PrintSuccess("all checks passed")
	}

	if doctorFix && failing > 0 {
		fmt.Println()
		outcomes := d.Fix(ctx, results)
		for name, err := range outcomes {
			if err != nil {
				style.PrintError("fix %s: %v", name, err)
			} else {
				style.PrintSuccess("fixed %s", name)
			}
		}
	}

	if failing > 0 && !doctorFix {
		return fmt.Errorf("%d check(s) failed; re-run with --fix to attempt repair", failing)
	}
	return nil
}

func printCheckResult(r *doctor.CheckResult) {
	symbol := "ok"
	switch r.Status {
	case doctor.StatusWarning:
		symbol = "warn"
	case doctor.StatusError:
		symbol = "fail"
	}
	fmt.Printf("[%s] %s: %s\n", symbol, r.Name, r.Message)
	for _, d := range r.Details {
		fmt.Printf("       %s\n", d)
	}
	if r.FixHint != "" && r.Status != doctor.StatusOK {
		fmt.Printf("       hint: %s\n", r.FixHint)
	}
}
