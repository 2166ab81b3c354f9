// Package identity persists the per-agent-name record carried across
// spawns: capability, creation time, sessions-completed counter,
// accumulated expertise domains, and a bounded ring of recently completed
// tasks, stored at .overstory/agents/<name>/identity.yaml.
package identity

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// MaxRecentTasks bounds the recentTasks ring.
const MaxRecentTasks = 20

// RecentTask is one completed-task entry in the identity ring.
type RecentTask struct {
	TaskID      string `yaml:"taskId"`
	Summary     string `yaml:"summary"`
	CompletedAt string `yaml:"completedAt"`
}

// Identity is the per-agent-name record.
type Identity struct {
	Name              string       `yaml:"name"`
	Capability        string       `yaml:"capability"`
	Created           string       `yaml:"created"`
	SessionsCompleted int          `yaml:"sessionsCompleted"`
	ExpertiseDomains  []string     `yaml:"expertiseDomains"`
	RecentTasks       []RecentTask `yaml:"recentTasks"`
}

// New returns a fresh identity record for a just-spawned agent name.
func New(name, capability string, created time.Time) *Identity {
	return &Identity{
		Name:              name,
		Capability:        capability,
		Created:           created.UTC().Format(time.RFC3339),
		SessionsCompleted: 0,
		ExpertiseDomains:  []string{},
		RecentTasks:       []RecentTask{},
	}
}

// Path returns the identity file path for an agent under the given
// .overstory metadata directory.
func Path(metadataDir, agentName string) string {
	return filepath.Join(metadataDir, "agents", agentName, "identity.yaml")
}

// Load reads and parses an identity file.
func Load(path string) (*Identity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var id Identity
	if err := yaml.Unmarshal(data, &id); err != nil {
		return nil, err
	}
	if id.ExpertiseDomains == nil {
		id.ExpertiseDomains = []string{}
	}
	if id.RecentTasks == nil {
		id.RecentTasks = []RecentTask{}
	}
	return &id, nil
}

// Save writes an identity record, creating parent directories as needed.
func Save(path string, id *Identity) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(id)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Exists reports whether an identity file is already present for a name.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// EnsureCreated loads the identity at path, creating one with New(...)
// if absent. An existing identity for a reused name is left untouched
// here; CompleteSession below is the only mutator of an existing record.
func EnsureCreated(path, name, capability string, created time.Time) (*Identity, error) {
	if Exists(path) {
		return Load(path)
	}
	id := New(name, capability, created)
	if err := Save(path, id); err != nil {
		return nil, err
	}
	return id, nil
}

// CompleteSession merges the outcome of a finished task into an existing
// identity: increments the session counter, unions in any new expertise
// domains (order-preserving, first-seen order), and pushes a recentTask
// onto the ring, evicting the oldest entry past MaxRecentTasks.
func CompleteSession(id *Identity, taskID, summary string, domains []string, completedAt time.Time) {
	id.SessionsCompleted++
	id.ExpertiseDomains = unionOrdered(id.ExpertiseDomains, domains)
	id.RecentTasks = append(id.RecentTasks, RecentTask{
		TaskID:      taskID,
		Summary:     summary,
		CompletedAt: completedAt.UTC().Format(time.RFC3339),
	})
	if len(id.RecentTasks) > MaxRecentTasks {
		id.RecentTasks = id.RecentTasks[len(id.RecentTasks)-MaxRecentTasks:]
	}
}

func unionOrdered(existing, additions []string) []string {
	seen := make(map[string]bool, len(existing))
	out := make([]string, 0, len(existing)+len(additions))
	for _, d := range existing {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	for _, d := range additions {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	return out
}
