package cmd

import (
	"os"
	"os/exec"

	"github.com/spf13/cobra"
)

var primeCmd = &cobra.Command{
	Use:     "prime",
	GroupID: GroupAgents,
	Short:   "Run the domain-knowledge priming helper for this agent's session",
	Long: `Prime shells out to the mulch domain-knowledge helper, run by
every agent as the first step after reading .claude/CLAUDE.md.`,
	RunE: runPrime,
}

func init() {
	rootCmd.AddCommand(primeCmd)
}

func runPrime(cmd *cobra.Command, args []string) error {
	c := exec.Command("mulch", "prime")
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	c.Stdin = os.Stdin
	return c.Run()
}
