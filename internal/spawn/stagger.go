package spawn

import (
	"time"

	"github.com/xcawolfe-amzn/overstory/internal/sessionstore"
)

// calculateStaggerDelay returns the amount of time still left to sleep,
// given staggerDelayMs and the time elapsed since the most recently
// started non-terminal session. Returns 0 if there are no other active
// sessions or the delay is non-positive.
func calculateStaggerDelay(active []*sessionstore.Session, staggerDelayMs int64, now time.Time) time.Duration {
	if staggerDelayMs <= 0 || len(active) == 0 {
		return 0
	}
	var lastStart time.Time
	for _, s := range active {
		if s.CreatedAt.After(lastStart) {
			lastStart = s.CreatedAt
		}
	}
	if lastStart.IsZero() {
		return 0
	}
	elapsed := now.Sub(lastStart)
	want := time.Duration(staggerDelayMs) * time.Millisecond
	remaining := want - elapsed
	if remaining <= 0 {
		return 0
	}
	return remaining
}
