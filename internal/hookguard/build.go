package hookguard

import "github.com/xcawolfe-amzn/overstory/internal/config"

const overstoryMarker = "overstory"

// command wraps a generated script body as a Hook command entry.
func command(body string) Hook {
	return Hook{Type: "command", Command: body}
}

// BuildGuards composes the full PreToolUse guard set for one agent,
// ordered so the cheap, broadly-applicable checks run before the
// capability-specific ones.
func BuildGuards(capability config.Capability, agentName, trackerCLI string) *HooksConfig {
	var entries []HookEntry

	entries = append(entries, HookEntry{
		Matcher: "Task|TeamCreate|TeamAssign|AskUserQuestion",
		Hooks:   []Hook{command(nativeToolBlockGuard())},
	})

	if !capability.IsImplementation() {
		entries = append(entries, HookEntry{
			Matcher: "Write|Edit|NotebookEdit",
			Hooks:   []Hook{command(writeToolBlockGuard(string(capability)))},
		})
	}

	entries = append(entries, HookEntry{
		Matcher: "Write|Edit|NotebookEdit",
		Hooks:   []Hook{command(pathBoundaryGuard())},
	})

	var bashHooks []Hook
	if capability.IsImplementation() {
		bashHooks = append(bashHooks, command(shellCommandGuard()))
	}
	bashHooks = append(bashHooks, command(dangerGuard(agentName)))
	if !capability.IsImplementation() {
		bashHooks = append(bashHooks, command(nonImplementationBashGuard(capability, trackerCLI)))
	}
	entries = append(entries, HookEntry{Matcher: "Bash", Hooks: bashHooks})

	return &HooksConfig{PreToolUse: entries}
}
