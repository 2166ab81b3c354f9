package style

import (
	"os"

	"golang.org/x/term"
)

// TerminalWidth returns stdout's terminal column width, or fallback when
// stdout is not a terminal (piped output, CI logs, tests).
func TerminalWidth(fallback int) int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return fallback
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return fallback
	}
	return w
}
