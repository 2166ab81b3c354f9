package spawn

import (
	"fmt"
	"time"
)

// BeaconData carries the fields the startup beacon renders.
type BeaconData struct {
	Name       string
	Capability string
	TaskID     string
	Depth      int
	Parent     string // "" renders as "none"
	TrackerCLI string
}

// FormatStartupBeacon renders the one-logical-message, three-segment
// startup beacon: segments joined by an em-dash with spaces on
// either side.
func FormatStartupBeacon(d BeaconData, now time.Time) string {
	parent := d.Parent
	if parent == "" {
		parent = "none"
	}
	header := fmt.Sprintf("[OVERSTORY] %s (%s) %s task:%s",
		d.Name, d.Capability, now.UTC().Format(time.RFC3339), d.TaskID)
	depth := fmt.Sprintf("Depth: %d | Parent: %s", d.Depth, parent)
	startup := fmt.Sprintf(
		"Startup: read .claude/CLAUDE.md, run mulch prime, check mail (%s mail check), then begin task %s",
		d.TrackerCLI, d.TaskID)
	return header + " — " + depth + " — " + startup
}

// BeaconDelays are the ascending delays, around 1s then 2s, between the
// beacon send and each follow-up empty submission, which nudge a
// still-initializing TUI into accepting the pending input.
var BeaconDelays = []time.Duration{1 * time.Second, 2 * time.Second}
