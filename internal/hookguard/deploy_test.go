package hookguard

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/xcawolfe-amzn/overstory/internal/config"
)

func TestBuildGuardsEveryEntryIsSessionScoped(t *testing.T) {
	for _, cap := range config.AllCapabilities() {
		cfg := BuildGuards(cap, "sb-builder-1", "beads")
		for _, e := range cfg.PreToolUse {
			for _, h := range e.Hooks {
				if !strings.Contains(h.Command, `OVERSTORY_AGENT_NAME`) {
					t.Errorf("capability %s matcher %s missing env scope prefix", cap, e.Matcher)
				}
			}
		}
	}
}

func TestBuildGuardsBlocksWriteForNonImplementation(t *testing.T) {
	cfg := BuildGuards(config.CapabilityScout, "sc-1", "beads")
	found := false
	for _, e := range cfg.PreToolUse {
		if e.Matcher == "Write|Edit|NotebookEdit" {
			for _, h := range e.Hooks {
				if strings.Contains(h.Command, "may not modify files directly") {
					found = true
				}
			}
		}
	}
	if !found {
		t.Fatal("expected a write-block guard for scout capability")
	}
}

func TestBuildGuardsOmitsWriteBlockForBuilder(t *testing.T) {
	cfg := BuildGuards(config.CapabilityBuilder, "b-1", "beads")
	for _, e := range cfg.PreToolUse {
		if e.Matcher == "Write|Edit|NotebookEdit" {
			for _, h := range e.Hooks {
				if strings.Contains(h.Command, "may not modify files directly") {
					t.Fatal("builder should not carry the non-implementation write block")
				}
			}
		}
	}
}

func TestBuildGuardsIncludesShellCommandGuardOnlyForImplementation(t *testing.T) {
	builder := BuildGuards(config.CapabilityBuilder, "b-1", "beads")
	scout := BuildGuards(config.CapabilityScout, "s-1", "beads")

	hasShellGuard := func(cfg *HooksConfig) bool {
		for _, e := range cfg.PreToolUse {
			if e.Matcher != "Bash" {
				continue
			}
			for _, h := range e.Hooks {
				if strings.Contains(h.Command, "outside this agent's worktree") && strings.Contains(h.Command, "MATCH=0") {
					return true
				}
			}
		}
		return false
	}
	if !hasShellGuard(builder) {
		t.Error("expected builder to carry the file-modifying shell guard")
	}
	if hasShellGuard(scout) {
		t.Error("did not expect scout to carry the implementation shell guard")
	}
}

func TestDangerGuardScopesBranchToAgent(t *testing.T) {
	cfg := BuildGuards(config.CapabilityBuilder, "sb-builder-1", "beads")
	var bashCmds []string
	for _, e := range cfg.PreToolUse {
		if e.Matcher == "Bash" {
			for _, h := range e.Hooks {
				bashCmds = append(bashCmds, h.Command)
			}
		}
	}
	found := false
	for _, c := range bashCmds {
		if strings.Contains(c, "overstory/sb-builder-1/*") {
			found = true
		}
	}
	if !found {
		t.Fatal("expected danger guard to scope checkout -b to overstory/<agent>/*")
	}
}

func TestIsOverstoryEntryDetectsMarker(t *testing.T) {
	e := HookEntry{Hooks: []Hook{{Command: "echo hi && overstory mail check --inject"}}}
	if !isOverstoryEntry(e) {
		t.Fatal("expected overstory marker to be detected")
	}
	user := HookEntry{Hooks: []Hook{{Command: "echo hello"}}}
	if isOverstoryEntry(user) {
		t.Fatal("did not expect plain user entry to be flagged")
	}
}

func TestMergeStripsOldOverstoryEntriesPreservingUser(t *testing.T) {
	existing := &HooksConfig{
		PreToolUse: []HookEntry{
			{Matcher: "Bash", Hooks: []Hook{{Command: "echo old-overstory OVERSTORY_AGENT_NAME guard"}}},
			{Matcher: "Write", Hooks: []Hook{{Command: "echo user-authored"}}},
		},
	}
	generated := &HooksConfig{
		PreToolUse: []HookEntry{
			{Matcher: "Bash", Hooks: []Hook{{Command: "echo new-overstory OVERSTORY_AGENT_NAME guard"}}},
		},
	}
	merged := Merge(existing, generated)
	if len(merged.PreToolUse) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(merged.PreToolUse))
	}
	if !strings.Contains(merged.PreToolUse[0].Hooks[0].Command, "new-overstory") {
		t.Error("expected generated entry first")
	}
	if !strings.Contains(merged.PreToolUse[1].Hooks[0].Command, "user-authored") {
		t.Error("expected user entry preserved")
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	generated := BuildGuards(config.CapabilityBuilder, "b-1", "beads")
	first := Merge(&HooksConfig{}, generated)
	second := Merge(first, generated)
	if !HooksEqual(first, second) {
		t.Fatal("expected merge applied twice to be byte-identical")
	}
}

func TestDeployWritesAndIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	generated := BuildGuards(config.CapabilityBuilder, "b-1", "beads")

	first, err := Deploy(dir, generated)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Deploy(dir, generated)
	if err != nil {
		t.Fatal(err)
	}
	if !HooksEqual(first, second) {
		t.Fatal("expected second deploy to be byte-identical to first")
	}

	path := filepath.Join(dir, ".claude", "settings.local.json")
	if _, err := LoadSettings(path); err != nil {
		t.Fatalf("expected settings file written at %s: %v", path, err)
	}
}

func TestShellSingleQuoteEscapesEmbeddedQuotes(t *testing.T) {
	got := ShellSingleQuote(`it's a test`)
	want := `'it'"'"'s a test'`
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}
