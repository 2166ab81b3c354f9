package mailstore

import "encoding/json"

// Payload is implemented by one struct per protocol MessageType: a
// tagged-variant model for the protocol-mail payloads rather than
// string typing. Each variant knows which MessageType it serializes
// for, so SendProtocol never needs a separate type switch.
type Payload interface {
	MessageType() MessageType
}

type WorkerDonePayload struct {
	AgentName string `json:"agentName"`
	TaskID    string `json:"taskId"`
	Summary   string `json:"summary"`
}

func (WorkerDonePayload) MessageType() MessageType { return TypeWorkerDone }

type MergeReadyPayload struct {
	AgentName string `json:"agentName"`
	Branch    string `json:"branch"`
	TaskID    string `json:"taskId"`
}

func (MergeReadyPayload) MessageType() MessageType { return TypeMergeReady }

type MergedPayload struct {
	AgentName string `json:"agentName"`
	Branch    string `json:"branch"`
	CommitSHA string `json:"commitSha"`
}

func (MergedPayload) MessageType() MessageType { return TypeMerged }

type MergeFailedPayload struct {
	AgentName string `json:"agentName"`
	Branch    string `json:"branch"`
	Reason    string `json:"reason"`
}

func (MergeFailedPayload) MessageType() MessageType { return TypeMergeFailed }

type EscalationPayload struct {
	AgentName       string `json:"agentName"`
	EscalationLevel int    `json:"escalationLevel"`
	Reason          string `json:"reason"`
}

func (EscalationPayload) MessageType() MessageType { return TypeEscalation }

type HealthCheckPayload struct {
	AgentName string `json:"agentName"`
	State     string `json:"state"`
	TmuxAlive bool   `json:"tmuxAlive"`
	Action    string `json:"action"`
}

func (HealthCheckPayload) MessageType() MessageType { return TypeHealthCheck }

type DispatchPayload struct {
	TaskID     string `json:"taskId"`
	Capability string `json:"capability"`
}

func (DispatchPayload) MessageType() MessageType { return TypeDispatch }

type AssignPayload struct {
	TaskID    string `json:"taskId"`
	AgentName string `json:"agentName"`
}

func (AssignPayload) MessageType() MessageType { return TypeAssign }

// EncodePayload serializes a Payload variant to its opaque string form.
func EncodePayload(p Payload) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodePayload parses raw into the given Payload variant (caller passes
// a pointer to the expected type, selected by Message.Type).
func DecodePayload(raw string, into Payload) error {
	return json.Unmarshal([]byte(raw), into)
}
