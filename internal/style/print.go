package style

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Shared text styles used across table rendering and CLI output.
var (
	Bold    = lipgloss.NewStyle().Bold(true)
	Dim     = lipgloss.NewStyle().Faint(true)
	Success = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	Warn    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	Danger  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// PrintWarning writes a dimmed warning line to stderr. Used for recoverable
// failures that must not fail the enclosing command.
func PrintWarning(format string, args ...any) {
	fmt.Fprintln(os.Stderr, Warn.Render("warning:")+" "+fmt.Sprintf(format, args...))
}

// PrintError writes a danger-styled error line to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintln(os.Stderr, Danger.Render("error:")+" "+fmt.Sprintf(format, args...))
}

// PrintSuccess writes a success-styled line to stdout.
func PrintSuccess(format string, args ...any) {
	fmt.Println(Success.Render("✓") + " " + fmt.Sprintf(format, args...))
}
