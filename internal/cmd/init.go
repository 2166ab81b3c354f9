package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/xcawolfe-amzn/overstory/internal/config"
	"github.com/xcawolfe-amzn/overstory/internal/style"
)

var initCmd = &cobra.Command{
	Use:     "init",
	GroupID: GroupConfig,
	Short:   "Initialize an overstory project in the current directory",
	RunE:    runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := os.Getwd()
	if err != nil {
		return err
	}
	metadataDir := filepath.Join(root, metadataDirName)
	if info, err := os.Stat(metadataDir); err == nil && info.IsDir() {
		return fatalf("%s already exists", metadataDir)
	}

	if err := os.MkdirAll(filepath.Join(metadataDir, "agents"), 0o755); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(metadataDir, "worktrees"), 0o755); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(metadataDir, "specs"), 0o755); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(metadataDir, "logs"), 0o755); err != nil {
		return err
	}

	cfg := config.Default()
	cfg.ProjectName = filepath.Base(root)
	if err := config.Save(root, cfg); err != nil {
		return err
	}

	style.PrintSuccess("initialized overstory project %q in %s", cfg.ProjectName, metadataDir)
	fmt.Println("Next: run 'overstory coordinator start' to bring the fleet online.")
	return nil
}
