package hookguard

import (
	"path/filepath"
	"strings"
)

// isOverstoryEntry reports whether a hook entry was authored by this
// engine: every overstory guard command contains the literal word
// "overstory" or an OVERSTORY_ env reference.
func isOverstoryEntry(e HookEntry) bool {
	for _, h := range e.Hooks {
		if strings.Contains(h.Command, overstoryMarker) || strings.Contains(h.Command, "OVERSTORY_") {
			return true
		}
	}
	return false
}

// Merge strips any existing overstory-authored entries from existing and
// prepends generated's entries ahead of the remaining user entries, for
// every hook event type generated touches. Applying Merge twice in a row
// with the same generated config is idempotent: the second pass strips
// exactly what the first pass inserted and reinserts the same bytes.
func Merge(existing, generated *HooksConfig) *HooksConfig {
	if existing == nil {
		existing = &HooksConfig{}
	}
	if generated == nil {
		generated = &HooksConfig{}
	}

	result := &HooksConfig{}
	for _, et := range EventTypes {
		genEntries := generated.GetEntries(et)
		userEntries := stripOverstoryEntries(existing.GetEntries(et))
		if len(genEntries) == 0 && len(userEntries) == 0 {
			continue
		}
		merged := make([]HookEntry, 0, len(genEntries)+len(userEntries))
		merged = append(merged, genEntries...)
		merged = append(merged, userEntries...)
		result.SetEntries(et, merged)
	}
	return result
}

func stripOverstoryEntries(entries []HookEntry) []HookEntry {
	var out []HookEntry
	for _, e := range entries {
		if !isOverstoryEntry(e) {
			out = append(out, e)
		}
	}
	return out
}

// SandboxSettingsPath returns the path of the deployed guard file inside
// an agent's worktree: "<worktree>/.claude/settings.local.json".
func SandboxSettingsPath(worktreePath string) string {
	return filepath.Join(worktreePath, ".claude", "settings.local.json")
}

// Deploy loads any existing settings at the agent's sandbox path, merges
// in the generated guard set, and writes the result back. Returns the
// config actually written.
func Deploy(worktreePath string, generated *HooksConfig) (*HooksConfig, error) {
	path := SandboxSettingsPath(worktreePath)
	existing, err := LoadSettings(path)
	if err != nil {
		return nil, err
	}
	merged := Merge(&existing.Hooks, generated)
	existing.Hooks = *merged
	if err := SaveSettings(path, existing); err != nil {
		return nil, err
	}
	return merged, nil
}
