package watchdog

import (
	"fmt"
	"strings"

	"github.com/xcawolfe-amzn/overstory/internal/mailstore"
)

// FleetSummary aggregates one pass's health checks by action, for
// Tier 1's mail digest.
type FleetSummary struct {
	Total       int
	OK          int
	Escalated   int
	Terminated  int
	Investigate int
	Stalled     []string
	Zombied     []string
}

// Summarize folds a batch of HealthChecks into a FleetSummary.
func Summarize(checks []HealthCheck) FleetSummary {
	var s FleetSummary
	for _, hc := range checks {
		s.Total++
		switch hc.Action {
		case ActionOK:
			s.OK++
		case ActionEscalate:
			s.Escalated++
			s.Stalled = append(s.Stalled, hc.AgentName)
		case ActionTerminate:
			s.Terminated++
			s.Zombied = append(s.Zombied, hc.AgentName)
		case ActionInvestigate:
			s.Investigate++
		}
	}
	return s
}

// body renders the summary as the digest body sent to the coordinator.
func (s FleetSummary) body() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d active, %d ok, %d escalated, %d terminated, %d investigating\n", s.Total, s.OK, s.Escalated, s.Terminated, s.Investigate)
	if len(s.Stalled) > 0 {
		fmt.Fprintf(&b, "stalled: %s\n", strings.Join(s.Stalled, ", "))
	}
	if len(s.Zombied) > 0 {
		fmt.Fprintf(&b, "zombied: %s\n", strings.Join(s.Zombied, ", "))
	}
	return b.String()
}

// SendFleetSummary implements Tier 1: a mail digest from
// system to coordinator, skipped entirely when nothing changed from ok.
func SendFleetSummary(mail *mailstore.Store, coordinator string, s FleetSummary) error {
	if s.Escalated == 0 && s.Terminated == 0 && s.Investigate == 0 {
		return nil
	}
	_, err := mail.Send(&mailstore.Message{
		From: "system", To: coordinator, Type: mailstore.TypeInfo,
		Priority: mailstore.PriorityNormal, Subject: "fleet health", Body: s.body(),
	})
	return err
}

// SendHealthCheckRecords emits one protocol health_check message per
// non-ok HealthCheck in the pass, so the coordinator's inbox carries a
// structured per-agent record alongside the digest.
func SendHealthCheckRecords(mail *mailstore.Store, coordinator string, checks []HealthCheck) error {
	for _, hc := range checks {
		if hc.Action == ActionOK {
			continue
		}
		if _, err := mail.SendProtocol("system", coordinator, mailstore.PriorityNormal, "health check", mailstore.HealthCheckPayload{
			AgentName: hc.AgentName, State: string(hc.State), TmuxAlive: hc.TmuxAlive, Action: string(hc.Action),
		}); err != nil {
			return err
		}
	}
	return nil
}
