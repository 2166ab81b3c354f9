package eventstore

import (
	"encoding/json"
	"strings"
)

// pathArgKeys are the tool_args JSON fields inspected, in priority order,
// to recover the file a tool call touched.
var pathArgKeys = []string{"file_path", "path", "notebook_path"}

var fileTools = map[string]bool{
	"Edit":     true,
	"Write":    true,
	"Read":     true,
	"NotebookEdit": true,
}

// CurrentFile walks agentName's most recent events backwards and returns
// the path argument of the last Edit/Write/Read/NotebookEdit tool_start
// call, or "" if none is found. This backs the "what is this agent
// touching right now" view in inspect/dashboard.
func (s *Store) CurrentFile(agentName string) (string, error) {
	events, err := s.GetByAgent(agentName, QueryOptions{})
	if err != nil {
		return "", err
	}
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		if e.Type != EventToolStart || !fileTools[e.ToolName] {
			continue
		}
		if path := extractPath(e.ToolArgs); path != "" {
			return path, nil
		}
	}
	return "", nil
}

func extractPath(rawArgs string) string {
	if rawArgs == "" {
		return ""
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return ""
	}
	for _, key := range pathArgKeys {
		if v, ok := args[key]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
	}
	return ""
}
