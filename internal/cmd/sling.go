package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xcawolfe-amzn/overstory/internal/config"
	"github.com/xcawolfe-amzn/overstory/internal/spawn"
	"github.com/xcawolfe-amzn/overstory/internal/style"
)

var (
	slingCapability string
	slingName       string
	slingFileScope  []string
	slingSpecPath   string
	slingDomainTags []string
	slingDomainKnow string
	slingSkipScout  bool
)

var slingCmd = &cobra.Command{
	Use:     "sling <task-id>",
	GroupID: GroupAgents,
	Short:   "Spawn a top-level agent for a task",
	Args:    cobra.ExactArgs(1),
	RunE:    runSling,
}

func init() {
	slingCmd.Flags().StringVar(&slingCapability, "capability", string(config.CapabilityBuilder), "agent capability")
	slingCmd.Flags().StringVar(&slingName, "name", "", "agent name (defaults to <capability>-<task-id>)")
	slingCmd.Flags().StringSliceVar(&slingFileScope, "file-scope", nil, "glob patterns the agent is scoped to")
	slingCmd.Flags().StringVar(&slingSpecPath, "spec-path", "", "path to a task spec document")
	slingCmd.Flags().StringSliceVar(&slingDomainTags, "domain-tags", nil, "domain tags for identity matching")
	slingCmd.Flags().StringVar(&slingDomainKnow, "domain-knowledge", "", "domain-knowledge extract to render into the overlay")
	slingCmd.Flags().BoolVar(&slingSkipScout, "skip-scout", false, "skip the scout precondition")
	rootCmd.AddCommand(slingCmd)
}

func runSling(cmd *cobra.Command, args []string) error {
	taskID := args[0]
	name := slingName
	if name == "" {
		name = fmt.Sprintf("%s-%s", slingCapability, taskID)
	}

	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	result, err := spawn.Spawn(p.spawnDeps(), spawn.Request{
		TaskID:          taskID,
		Capability:      config.Capability(slingCapability),
		Name:            name,
		FileScope:       slingFileScope,
		SpecPath:        slingSpecPath,
		DomainTags:      slingDomainTags,
		DomainKnowledge: slingDomainKnow,
		SkipScout:       slingSkipScout,
	})
	if err != nil {
		return err
	}

	style.PrintSuccess("spawned %s (%s) for task %s in %s", result.Session.Name, result.Session.Capability, taskID, result.WorktreePath)
	return nil
}
