package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Capability is the closed set of agent roles.
type Capability string

const (
	CapabilityBuilder     Capability = "builder"
	CapabilityScout       Capability = "scout"
	CapabilityReviewer    Capability = "reviewer"
	CapabilityLead        Capability = "lead"
	CapabilityMerger      Capability = "merger"
	CapabilityCoordinator Capability = "coordinator"
	CapabilitySupervisor  Capability = "supervisor"
	CapabilityMonitor     Capability = "monitor"
)

// AllCapabilities lists the closed enum in a stable order, for
// exhaustiveness-checked switches and validation error messages.
func AllCapabilities() []Capability {
	return []Capability{
		CapabilityBuilder, CapabilityScout, CapabilityReviewer, CapabilityLead,
		CapabilityMerger, CapabilityCoordinator, CapabilitySupervisor, CapabilityMonitor,
	}
}

// Valid reports whether c is a member of the closed capability set.
func (c Capability) Valid() bool {
	for _, v := range AllCapabilities() {
		if v == c {
			return true
		}
	}
	return false
}

// IsImplementation reports whether the capability is permitted to invoke
// Write/Edit/NotebookEdit tools: only builder and merger are.
func (c Capability) IsImplementation() bool {
	return c == CapabilityBuilder || c == CapabilityMerger
}

// AgentDef is one capability's entry in the manifest: the model/env
// bindings the spawn pipeline injects into the multiplexer environment,
// and the base agent-definition text rendered into the overlay document.
type AgentDef struct {
	Model       string            `toml:"model"`
	Env         map[string]string `toml:"env"`
	Definition  string            `toml:"definition"`
	QualityGate []string          `toml:"quality_gate"`
}

// Manifest is the parsed .overstory/manifest.toml: the closed capability
// set and their model/env bindings.
type Manifest struct {
	Agents map[Capability]AgentDef `toml:"agents"`
}

// LoadManifest reads the TOML agent manifest under projectRoot. Missing
// file yields a manifest with the built-in default definitions so a
// freshly-initialized project can spawn agents immediately.
func LoadManifest(projectRoot string) (*Manifest, error) {
	path := filepath.Join(projectRoot, ".overstory", "manifest.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultManifest(), nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var raw struct {
		Agents map[string]AgentDef `toml:"agents"`
	}
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	m := &Manifest{Agents: make(map[Capability]AgentDef, len(raw.Agents))}
	for k, v := range raw.Agents {
		m.Agents[Capability(k)] = v
	}
	return m, nil
}

// DefaultManifest returns built-in definitions for every closed-set
// capability, so `overstory init` produces a project that can spawn
// without further manifest authoring.
func DefaultManifest() *Manifest {
	m := &Manifest{Agents: make(map[Capability]AgentDef)}
	for _, c := range AllCapabilities() {
		m.Agents[c] = AgentDef{Model: "default"}
	}
	return m
}

// Has reports whether capability c has an entry in the manifest.
func (m *Manifest) Has(c Capability) bool {
	if m == nil {
		return false
	}
	_, ok := m.Agents[c]
	return ok
}

// Get returns the AgentDef for c, or the zero value if absent.
func (m *Manifest) Get(c Capability) AgentDef {
	if m == nil {
		return AgentDef{}
	}
	return m.Agents[c]
}
