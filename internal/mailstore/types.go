// Package mailstore is the persistent inter-agent mail bus:
// reliable, durable, at-most-once delivery of typed messages between
// named endpoints, backed by a sqlite database configured for WAL +
// busy-timeout.
package mailstore

import "time"

// Priority is the closed set of message priorities.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// MessageType is the closed set of mail message types: a few
// general conversational types plus the protocol types used by the
// spawn/watchdog/worktree subsystems to talk to each other over mail.
type MessageType string

const (
	TypeStatus   MessageType = "status"
	TypeQuestion MessageType = "question"
	TypeResult   MessageType = "result"
	TypeError    MessageType = "error"
	TypeInfo     MessageType = "info"

	// Protocol types — each carries its own payload shape (see payload.go).
	TypeWorkerDone   MessageType = "worker_done"
	TypeMergeReady   MessageType = "merge_ready"
	TypeMerged       MessageType = "merged"
	TypeMergeFailed  MessageType = "merge_failed"
	TypeEscalation   MessageType = "escalation"
	TypeHealthCheck  MessageType = "health_check"
	TypeDispatch     MessageType = "dispatch"
	TypeAssign       MessageType = "assign"
)

// IsProtocol reports whether t is one of the typed-payload protocol
// message types.
func (t MessageType) IsProtocol() bool {
	switch t {
	case TypeWorkerDone, TypeMergeReady, TypeMerged, TypeMergeFailed,
		TypeEscalation, TypeHealthCheck, TypeDispatch, TypeAssign:
		return true
	}
	return false
}

// Message is one row of the messages table.
type Message struct {
	ID        string
	From      string
	To        string
	Subject   string
	Body      string
	Type      MessageType
	Priority  Priority
	ThreadID  string // "" means no explicit thread
	Payload   string // opaque serialized protocol payload, "" if none
	Read      bool
	CreatedAt time.Time
}

// EffectiveThreadID returns the message's thread id, defaulting to its
// own id when none was set explicitly.
func (m *Message) EffectiveThreadID() string {
	if m.ThreadID != "" {
		return m.ThreadID
	}
	return m.ID
}
