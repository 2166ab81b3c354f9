// Package cmd implements the overstory CLI surface: the
// cobra command tree wiring internal/spawn, internal/sessionstore,
// internal/watchdog, internal/mailstore, internal/doctor,
// internal/worktree, internal/hookguard, and internal/identity into
// the external interface an operator drives.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xcawolfe-amzn/overstory/internal/style"
)

const (
	GroupAgents = "agents"
	GroupWork   = "work"
	GroupDiag   = "diag"
	GroupConfig = "config"
)

var jsonOutput bool

var rootCmd = &cobra.Command{
	Use:           "overstory",
	Short:         "Orchestrate a fleet of Claude Code agents across git worktrees",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupAgents, Title: "Agent lifecycle:"},
		&cobra.Group{ID: GroupWork, Title: "Work:"},
		&cobra.Group{ID: GroupDiag, Title: "Diagnostics:"},
		&cobra.Group{ID: GroupConfig, Title: "Project setup:"},
	)
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit machine-readable JSON instead of tables")
}

// Execute runs the CLI and returns the process exit code (
// "Exit codes": 0 success, 1 error including validation, help exits 0).
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		style.PrintError("%v", err)
		return 1
	}
	return 0
}

func fatalf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}
