// Package overlay renders the per-agent overlay document: the
// .claude/CLAUDE.md dropped into a freshly created worktree describing
// the agent's identity, scope, and startup instructions to the LLM
// process it supervises. Grounded on the embed.FS + text/template
// approach used elsewhere in this repo for rendering static templates,
// narrowed to the single document the spawn pipeline needs.
package overlay

import (
	"embed"
	"os"
	"path/filepath"
	"text/template"
)

//go:embed templates/claude.md.tmpl
var templateFS embed.FS

var claudeTemplate = template.Must(template.ParseFS(templateFS, "templates/claude.md.tmpl"))

// Data carries every field the overlay renderer needs.
type Data struct {
	Name            string
	TaskID          string
	SpecPath        string
	Branch          string
	WorktreePath    string
	FileScope       []string
	DomainTags      []string
	Parent          string
	Depth           int
	CanSpawn        bool
	Capability      string
	BaseDefinition  string
	DomainKnowledge string
	SkipScout       bool
	QualityGates    []string
	TrackerCLI      string
}

// Render writes the rendered overlay document to
// <worktreePath>/.claude/CLAUDE.md.
func Render(d Data) error {
	dir := filepath.Join(d.WorktreePath, ".claude")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(dir, "CLAUDE.md"))
	if err != nil {
		return err
	}
	defer f.Close()
	return claudeTemplate.Execute(f, d)
}
