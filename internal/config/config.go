// Package config loads the operator-facing configuration for an overstory
// project: the narrow YAML config (.overstory/config.yaml) the spawn
// pipeline and watchdog read, and the TOML agent manifest that declares
// the closed capability set.
//
// Config loading itself — flag parsing, overlay templating, the "mulch"
// helper — is an external collaborator; this package only implements
// the contract those collaborators must satisfy: a closed, validated
// struct with no dynamic typing surviving past Load.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the parsed contents of .overstory/config.yaml.
type Config struct {
	ProjectName string `yaml:"projectName"`

	MaxDepth          int `yaml:"maxDepth"`
	MaxConcurrent     int `yaml:"maxConcurrent"`
	MaxSessionsPerRun int `yaml:"maxSessionsPerRun"` // 0 = unlimited

	StaggerDelayMs     int64 `yaml:"staggerDelayMs"`
	StaleThresholdMs   int64 `yaml:"staleThresholdMs"`
	ZombieThresholdMs  int64 `yaml:"zombieThresholdMs"`
	NudgeIntervalMs    int64 `yaml:"nudgeIntervalMs"`
	PollIntervalMs     int64 `yaml:"pollIntervalMs"`
	TUIReadyTimeoutMs  int64 `yaml:"tuiReadyTimeoutMs"`
	TUIReadyPollMs     int64 `yaml:"tuiReadyPollMs"`

	// ReadyMarker is the substring of pane output that indicates the TUI
	// has finished booting.
	ReadyMarker string `yaml:"readyMarker"`

	TmuxBinary string `yaml:"tmuxBinary"`
	TrackerCLI string `yaml:"trackerCli"`

	// SkipTrackerCheck bypasses tracker issue-state validation in the
	// spawn pipeline, for use when no tracker is configured.
	SkipTrackerCheck bool `yaml:"skipTrackerCheck"`

	// AllowBypassHierarchy allows a non-lead, parentless spawn in
	// emergencies.
	AllowBypassHierarchy bool `yaml:"allowBypassHierarchy"`
}

// Default returns a Config populated with reasonable defaults for a
// freshly initialized project.
func Default() *Config {
	return &Config{
		ProjectName:       "overstory",
		MaxDepth:          3,
		MaxConcurrent:     10,
		MaxSessionsPerRun: 0,
		StaggerDelayMs:    5000,
		StaleThresholdMs:  10 * 60 * 1000,
		ZombieThresholdMs: 30 * 60 * 1000,
		NudgeIntervalMs:   5 * 60 * 1000,
		PollIntervalMs:    15 * 1000,
		TUIReadyTimeoutMs: 30 * 1000,
		TUIReadyPollMs:    500,
		ReadyMarker:       "? for shortcuts",
		TmuxBinary:        "tmux",
		TrackerCLI:        "beads",
	}
}

// Load reads and parses .overstory/config.yaml under projectRoot.
// Missing file is not an error; Default() is returned instead.
func Load(projectRoot string) (*Config, error) {
	path := filepath.Join(projectRoot, ".overstory", "config.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to .overstory/config.yaml, creating the directory if
// needed. Used by `overstory init`.
func Save(projectRoot string, cfg *Config) error {
	dir := filepath.Join(projectRoot, ".overstory")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0o644)
}
