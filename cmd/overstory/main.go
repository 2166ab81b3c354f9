// overstory is the CLI for orchestrating a fleet of Claude Code agents
// across git worktrees.
package main

import (
	"os"

	"github.com/xcawolfe-amzn/overstory/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
