package mailstore

import (
	"fmt"
	"strings"
)

// FormatForHookInjection renders a drained inbox as the human-readable
// text block the mail-check hook injects into an agent's context.
// Returns "" when messages is empty so the hook injects nothing.
func FormatForHookInjection(messages []*Message) string {
	if len(messages) == 0 {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "You have %d new message(s):\n", len(messages))
	for _, m := range messages {
		sb.WriteString("---\n")
		sender := m.From
		if m.Priority != PriorityNormal && m.Priority != "" {
			sender = fmt.Sprintf("%s [%s]", sender, strings.ToUpper(string(m.Priority)))
		}
		fmt.Fprintf(&sb, "From: %s\n", sender)
		fmt.Fprintf(&sb, "Type: %s\n", m.Type)
		fmt.Fprintf(&sb, "Subject: %s\n", m.Subject)
		fmt.Fprintf(&sb, "%s\n", m.Body)
		if m.Type.IsProtocol() && m.Payload != "" {
			fmt.Fprintf(&sb, "Payload: %s\n", m.Payload)
		}
		fmt.Fprintf(&sb, "(reply: overstory mail reply %s --from %s --body \"<your reply>\")\n", m.ID, m.To)
	}
	return sb.String()
}
