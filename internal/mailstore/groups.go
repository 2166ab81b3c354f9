package mailstore

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xcawolfe-amzn/overstory/internal/errs"
)

// ActiveAgent is the narrow view of a session the mail bus needs to
// resolve group addresses — decoupled from sessionstore.Session so this
// package has no import-cycle dependency on the session store.
type ActiveAgent struct {
	Name       string
	Capability string
}

// ResolveGroup expands a "@..." address into concrete agent names:
//   - "@all" -> every non-sender active agent
//   - "@<capability>" / "@<capability>s" -> active agents of that
//     capability, excluding the sender
//
// Resolution that yields zero recipients is an error. Unknown group
// names are an error naming valid options.
func ResolveGroup(address, sender string, active []ActiveAgent) ([]string, error) {
	if !strings.HasPrefix(address, "@") {
		return nil, errs.Groupf("not a group address: %s", address)
	}
	name := strings.ToLower(strings.TrimPrefix(address, "@"))

	if name == "all" {
		return excludeSender(allNames(active), sender, address)
	}

	capabilities := capabilitySet(active)
	singular := strings.TrimSuffix(name, "s")
	for _, cap := range []string{name, singular} {
		if _, ok := capabilities[cap]; ok {
			var names []string
			for _, a := range active {
				if strings.EqualFold(a.Capability, cap) {
					names = append(names, a.Name)
				}
			}
			return excludeSender(names, sender, address)
		}
	}

	valid := make([]string, 0, len(capabilities)+1)
	valid = append(valid, "all")
	for cap := range capabilities {
		valid = append(valid, cap)
	}
	sort.Strings(valid)
	return nil, errs.Groupf("unknown group %q, valid groups: @%s", address, strings.Join(valid, ", @"))
}

func allNames(active []ActiveAgent) []string {
	names := make([]string, 0, len(active))
	for _, a := range active {
		names = append(names, a.Name)
	}
	return names
}

func capabilitySet(active []ActiveAgent) map[string]bool {
	set := make(map[string]bool)
	for _, a := range active {
		set[strings.ToLower(a.Capability)] = true
	}
	return set
}

func excludeSender(names []string, sender, address string) ([]string, error) {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != sender {
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		return nil, errs.Groupf("%s resolved to zero recipients", address)
	}
	return out, nil
}

// IsGroupAddress reports whether address uses the "@" group syntax.
func IsGroupAddress(address string) bool {
	return strings.HasPrefix(address, "@")
}

// SendToGroup resolves a group address and sends msg (with To overridden
// per-recipient) to each resolved agent, returning the sent messages.
func (s *Store) SendToGroup(address, sender string, active []ActiveAgent, subject, body string, msgType MessageType, priority Priority) ([]*Message, error) {
	recipients, err := ResolveGroup(address, sender, active)
	if err != nil {
		return nil, err
	}
	sent := make([]*Message, 0, len(recipients))
	for _, r := range recipients {
		m, err := s.Send(&Message{From: sender, To: r, Subject: subject, Body: body, Type: msgType, Priority: priority})
		if err != nil {
			return sent, fmt.Errorf("sending to %s: %w", r, err)
		}
		sent = append(sent, m)
	}
	return sent, nil
}
