package identity

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Handoff records a parent agent passing a task to a child, appended to
// .overstory/agents/<name>/handoffs.json. The shape below is the minimum
// that makes `overstory inspect` useful: who, to whom, which task, when.
type Handoff struct {
	FromAgent string `json:"fromAgent"`
	ToAgent   string `json:"toAgent"`
	TaskID    string `json:"taskId"`
	At        string `json:"at"`
}

// HandoffsPath returns the handoff-history file path for an agent.
func HandoffsPath(metadataDir, agentName string) string {
	return filepath.Join(metadataDir, "agents", agentName, "handoffs.json")
}

// LoadHandoffs reads the handoff history, returning nil (not an error) if
// none has been recorded yet.
func LoadHandoffs(path string) ([]Handoff, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []Handoff
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AppendHandoff adds a handoff record to an agent's history file.
func AppendHandoff(path string, h Handoff) error {
	existing, err := LoadHandoffs(path)
	if err != nil {
		return err
	}
	existing = append(existing, h)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(existing, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// RecordHandoff is a convenience wrapper stamping "now" as the time.
func RecordHandoff(path, fromAgent, toAgent, taskID string, now time.Time) error {
	return AppendHandoff(path, Handoff{
		FromAgent: fromAgent,
		ToAgent:   toAgent,
		TaskID:    taskID,
		At:        now.UTC().Format(time.RFC3339),
	})
}
