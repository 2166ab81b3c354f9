package watchdog

import (
	"fmt"
	"time"

	"github.com/xcawolfe-amzn/overstory/internal/mailstore"
	"github.com/xcawolfe-amzn/overstory/internal/sessionstore"
)

// tmuxOps is the narrow multiplexer contract the daemon needs, kept as
// a local interface so a pass can be unit tested against a fake instead
// of a real tmux binary.
type tmuxOps interface {
	HasSession(name string) bool
	NudgeSession(session, message string) error
}

// shouldNudge reports whether an agent at escalation level >= 1 is due
// another nudge, at most one per nudgeIntervalMs.
func shouldNudge(sess *sessionstore.Session, lastNudge time.Time, nudgeIntervalMs int64, now time.Time) bool {
	if sess.EscalationLevel < 1 {
		return false
	}
	if lastNudge.IsZero() {
		return true
	}
	return now.Sub(lastNudge) >= time.Duration(nudgeIntervalMs)*time.Millisecond
}

// nudge sends the structured text nudge via the multiplexer and records
// it as a system->agent mail message.
func nudge(tm tmuxOps, mail *mailstore.Store, sess *sessionstore.Session, level int) error {
	text := fmt.Sprintf("[watchdog] no recorded activity, escalation level %d. Reply or resume work.", level)
	return SendNudge(tm, mail, sess, text)
}

// SendNudge delivers an arbitrary nudge both via the multiplexer's input
// surface and as a recorded mail message, exported for the operator-facing
// `overstory nudge` command as well as the Tier 0 loop's own automatic
// nudges.
func SendNudge(tm tmuxOps, mail *mailstore.Store, sess *sessionstore.Session, text string) error {
	if err := tm.NudgeSession(sess.TmuxSession, text); err != nil {
		return err
	}
	_, err := mail.Send(&mailstore.Message{
		From: "system", To: sess.Name, Type: mailstore.TypeStatus,
		Priority: mailstore.PriorityHigh, Subject: "stalled", Body: text,
	})
	return err
}
