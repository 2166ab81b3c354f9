// Package eventstore is the append-only tool/lifecycle event history used
// for trace/replay/inspect. Inserts are issued from
// short-lived hook-invoked processes and must stay fast; readers may be
// snapshot-stale by up to one WAL checkpoint.
package eventstore

import "time"

// Level is the closed set of event severity levels.
type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventType is the closed set of event types.
type EventType string

const (
	EventToolStart    EventType = "tool_start"
	EventToolEnd      EventType = "tool_end"
	EventSessionStart EventType = "session_start"
	EventSessionEnd   EventType = "session_end"
	EventMailSent     EventType = "mail_sent"
	EventMailReceived EventType = "mail_received"
	EventSpawn        EventType = "spawn"
	EventError        EventType = "error"
	EventCustom       EventType = "custom"
)

// Event is one immutable row of the events table.
type Event struct {
	ID          int64
	RunID       string // "" if none
	AgentName   string
	SessionID   string // "" if none
	Type        EventType
	ToolName    string // "" if not a tool event
	ToolArgs    string // opaque, "" if none
	DurationMs  *int64
	Level       Level
	Data        string // opaque, "" if none
	CreatedAt   time.Time
}
