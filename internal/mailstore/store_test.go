package mailstore

import (
	"path/filepath"
	"regexp"
	"testing"
)

var messageIDPattern = regexp.MustCompile(`^[a-z0-9]{12}$`)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "mail.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSendAssignsIDAndDefaults(t *testing.T) {
	s := openTestStore(t)
	m, err := s.Send(&Message{From: "orch", To: "sb", Subject: "Task", Body: "go"})
	if err != nil {
		t.Fatal(err)
	}
	if !messageIDPattern.MatchString(m.ID) {
		t.Fatalf("expected 12-char lowercase alphanumeric id, got %q", m.ID)
	}
	if m.Type != TypeStatus || m.Priority != PriorityNormal {
		t.Errorf("unexpected defaults: %+v", m)
	}
}

func TestNewMessageIDFormat(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewMessageID()
		if !messageIDPattern.MatchString(id) {
			t.Fatalf("id %q does not match 12-char lowercase alphanumeric format", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id generated: %q", id)
		}
		seen[id] = true
	}
}

func TestCheckDrainsAndMarksReadAtomically(t *testing.T) {
	s := openTestStore(t)
	s.Send(&Message{From: "a", To: "b", Subject: "1"})
	s.Send(&Message{From: "a", To: "b", Subject: "2"})

	first, err := s.Check("b")
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(first))
	}

	second, err := s.Check("b")
	if err != nil {
		t.Fatal(err)
	}
	if len(second) != 0 {
		t.Fatalf("expected no messages on second check, got %d", len(second))
	}
}

func TestCheckOrdersChronologically(t *testing.T) {
	s := openTestStore(t)
	first, _ := s.Send(&Message{From: "a", To: "b", Subject: "first"})
	second, _ := s.Send(&Message{From: "a", To: "b", Subject: "second"})

	got, err := s.Check("b")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != first.ID || got[1].ID != second.ID {
		t.Fatalf("expected chronological order, got %+v", got)
	}
}

func TestReplyRoutingFromSenderGoesToOriginalRecipient(t *testing.T) {
	s := openTestStore(t)
	orig, _ := s.Send(&Message{From: "orch", To: "sb", Subject: "Task", Body: "go"})

	reply, err := s.Reply(orig.ID, "orch", "also Y")
	if err != nil {
		t.Fatal(err)
	}
	if reply.From != "orch" || reply.To != "sb" {
		t.Errorf("unexpected routing: %+v", reply)
	}
	if reply.Subject != "Re: Task" {
		t.Errorf("expected Re: prefix, got %q", reply.Subject)
	}
	if reply.ThreadID != orig.ID {
		t.Errorf("expected thread id %s, got %s", orig.ID, reply.ThreadID)
	}
}

func TestReplyRoutingFromRecipientGoesToOriginalSender(t *testing.T) {
	s := openTestStore(t)
	orig, _ := s.Send(&Message{From: "orch", To: "sb", Subject: "Task", Body: "go"})

	reply, err := s.Reply(orig.ID, "sb", "ok")
	if err != nil {
		t.Fatal(err)
	}
	if reply.From != "sb" || reply.To != "orch" {
		t.Errorf("unexpected routing: %+v", reply)
	}
}

func TestReplyToMissingIDFails(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Reply("does-not-exist", "orch", "x"); err == nil {
		t.Fatal("expected error replying to missing message")
	}
}

func TestMarkReadIdempotent(t *testing.T) {
	s := openTestStore(t)
	m, _ := s.Send(&Message{From: "a", To: "b", Subject: "x"})

	already, err := s.MarkRead(m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if already {
		t.Fatal("expected first MarkRead to report not already read")
	}

	already, err = s.MarkRead(m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !already {
		t.Fatal("expected second MarkRead to report already read")
	}
}

func TestMarkReadUnknownIDFails(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.MarkRead("nope"); err == nil {
		t.Fatal("expected error marking unknown id read")
	}
}

func TestPurgeZeroMatch(t *testing.T) {
	s := openTestStore(t)
	s.Send(&Message{From: "a", To: "b", Subject: "x"})
	n, err := s.Purge(PurgeFilter{From: "nobody"})
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("expected 0 purged, got %d", n)
	}
}

func TestFormatForHookInjectionEmpty(t *testing.T) {
	if got := FormatForHookInjection(nil); got != "" {
		t.Errorf("expected empty string for no messages, got %q", got)
	}
}

func TestFormatForHookInjectionIncludesPayload(t *testing.T) {
	msg := &Message{
		From: "system", Type: TypeHealthCheck, Subject: "health", Body: "check in",
		Priority: PriorityHigh, Payload: `{"agentName":"a"}`,
	}
	got := FormatForHookInjection([]*Message{msg})
	if got == "" {
		t.Fatal("expected non-empty output")
	}
	if !containsAll(got, "Payload:", "HIGH", "health_check") {
		t.Errorf("missing expected sections: %s", got)
	}
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !contains(s, sub) {
			return false
		}
	}
	return true
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}

func TestResolveGroupAll(t *testing.T) {
	active := []ActiveAgent{{Name: "a", Capability: "builder"}, {Name: "b", Capability: "scout"}}
	got, err := ResolveGroup("@all", "a", active)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "b" {
		t.Fatalf("expected [b], got %v", got)
	}
}

func TestResolveGroupAllOnlySenderErrors(t *testing.T) {
	active := []ActiveAgent{{Name: "a", Capability: "builder"}}
	_, err := ResolveGroup("@all", "a", active)
	if err == nil {
		t.Fatal("expected zero-recipients error")
	}
}

func TestResolveGroupByCapabilityPlural(t *testing.T) {
	active := []ActiveAgent{
		{Name: "b1", Capability: "builder"},
		{Name: "b2", Capability: "builder"},
		{Name: "s1", Capability: "scout"},
	}
	got, err := ResolveGroup("@builders", "s1", active)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 builders, got %v", got)
	}
}

func TestResolveGroupUnknownNamesValidOptions(t *testing.T) {
	active := []ActiveAgent{{Name: "a", Capability: "builder"}}
	_, err := ResolveGroup("@bogus", "x", active)
	if err == nil {
		t.Fatal("expected error")
	}
	if !contains(err.Error(), "builder") {
		t.Errorf("expected error to list valid groups, got %v", err)
	}
}
