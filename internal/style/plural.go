package style

import (
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var countPrinter = message.NewPrinter(language.English)

func init() {
	message.Set(language.English, "%d active agent",
		plural.Selectf(1, "%d",
			"=1", "%d active agent",
			"other", "%d active agents",
		),
	)
	message.Set(language.English, "%d message",
		plural.Selectf(1, "%d",
			"=1", "%d message",
			"other", "%d messages",
		),
	)
}

// ActiveAgentCount renders "N active agent(s)", pluralized for n.
func ActiveAgentCount(n int) string {
	return countPrinter.Sprintf("%d active agent", n)
}

// MessageCount renders "N message(s)", pluralized for n.
func MessageCount(n int) string {
	return countPrinter.Sprintf("%d message", n)
}
