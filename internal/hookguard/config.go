// Package hookguard generates and deploys the per-agent Claude Code
// settings.json hook policy that enforces write-scope, path-boundary,
// and destructive-command prohibitions. Guards are data —
// plain POSIX shell script strings — composed from a table of rules and
// the current agent's capability and worktree, never folded into
// runtime code paths, so the policy stays portable across host runtimes.
package hookguard

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// HookEntry is a single hook matcher with its associated commands.
type HookEntry struct {
	Matcher string `json:"matcher"`
	Hooks   []Hook `json:"hooks"`
}

// Hook is one shell command bound to an event.
type Hook struct {
	Type    string `json:"type"` // always "command"
	Command string `json:"command"`
}

// HooksConfig is the hooks section of a Claude Code settings.json.
type HooksConfig struct {
	PreToolUse       []HookEntry `json:"PreToolUse,omitempty"`
	PostToolUse      []HookEntry `json:"PostToolUse,omitempty"`
	SessionStart     []HookEntry `json:"SessionStart,omitempty"`
	Stop             []HookEntry `json:"Stop,omitempty"`
	PreCompact       []HookEntry `json:"PreCompact,omitempty"`
	UserPromptSubmit []HookEntry `json:"UserPromptSubmit,omitempty"`
}

// EventTypes lists the known hook event names in display order.
var EventTypes = []string{"PreToolUse", "PostToolUse", "SessionStart", "Stop", "PreCompact", "UserPromptSubmit"}

// GetEntries returns the entries for a given event type.
func (c *HooksConfig) GetEntries(eventType string) []HookEntry {
	switch eventType {
	case "PreToolUse":
		return c.PreToolUse
	case "PostToolUse":
		return c.PostToolUse
	case "SessionStart":
		return c.SessionStart
	case "Stop":
		return c.Stop
	case "PreCompact":
		return c.PreCompact
	case "UserPromptSubmit":
		return c.UserPromptSubmit
	default:
		return nil
	}
}

// SetEntries sets the entries for a given event type.
func (c *HooksConfig) SetEntries(eventType string, entries []HookEntry) {
	switch eventType {
	case "PreToolUse":
		c.PreToolUse = entries
	case "PostToolUse":
		c.PostToolUse = entries
	case "SessionStart":
		c.SessionStart = entries
	case "Stop":
		c.Stop = entries
	case "PreCompact":
		c.PreCompact = entries
	case "UserPromptSubmit":
		c.UserPromptSubmit = entries
	}
}

// SettingsJSON is the full Claude Code settings.json, preserving unknown
// fields for roundtrip safety — overstory only ever owns the "hooks" key.
type SettingsJSON struct {
	Hooks HooksConfig
	Extra map[string]json.RawMessage
}

// LoadSettings reads settings.json at path, returning a zero-value
// SettingsJSON if the file does not exist.
func LoadSettings(path string) (*SettingsJSON, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &SettingsJSON{Extra: make(map[string]json.RawMessage)}, nil
		}
		return nil, err
	}
	return UnmarshalSettings(data)
}

// UnmarshalSettings parses settings.json bytes, preserving unrecognized
// top-level fields in Extra.
func UnmarshalSettings(data []byte) (*SettingsJSON, error) {
	s := &SettingsJSON{Extra: make(map[string]json.RawMessage)}
	if err := json.Unmarshal(data, &s.Extra); err != nil {
		return nil, err
	}
	if raw, ok := s.Extra["hooks"]; ok {
		if err := json.Unmarshal(raw, &s.Hooks); err != nil {
			return nil, fmt.Errorf("unmarshaling hooks: %w", err)
		}
	}
	return s, nil
}

// MarshalSettings serializes a SettingsJSON, writing the managed "hooks"
// key and passing through every other field untouched.
func MarshalSettings(s *SettingsJSON) ([]byte, error) {
	out := make(map[string]json.RawMessage, len(s.Extra)+1)
	for k, v := range s.Extra {
		out[k] = v
	}
	raw, err := json.Marshal(s.Hooks)
	if err != nil {
		return nil, err
	}
	out["hooks"] = raw
	return json.MarshalIndent(out, "", "  ")
}

// HooksEqual reports whether two configs are structurally identical.
func HooksEqual(a, b *HooksConfig) bool {
	aj, err1 := json.Marshal(a)
	bj, err2 := json.Marshal(b)
	if err1 != nil || err2 != nil {
		return false
	}
	return string(aj) == string(bj)
}

// SaveSettings writes a SettingsJSON to path, creating parent
// directories as needed, with a trailing newline for human editing.
func SaveSettings(path string, s *SettingsJSON) error {
	data, err := MarshalSettings(s)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
