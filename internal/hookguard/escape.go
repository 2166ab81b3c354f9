package hookguard

import "strings"

// ShellSingleQuote wraps s in single quotes, escaping any embedded single
// quote with the POSIX idiom: end-quote, escaped-quote, start-quote
// (`'"'"'`). Use this whenever dynamic content is interpolated into a
// single-quoted shell literal inside a guard template.
func ShellSingleQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

// jsonField emits a grep/sed pair that extracts a top-level string field
// from a JSON blob held in shell variable srcVar, POSIX sed/grep only —
// no jq, per the hook-guard's "no runtime dependencies beyond shell and
// sed/grep" constraint.
func jsonField(srcVar, field string) string {
	return "$(printf '%s' \"$" + srcVar + "\" | grep -o '\"" + field + "\"[[:space:]]*:[[:space:]]*\"[^\"]*\"' | " +
		"sed 's/.*\"" + field + "\"[[:space:]]*:[[:space:]]*\"\\([^\"]*\\)\"/\\1/' | head -n1)"
}

// envScopePrefix is prepended to every guard: if this process is not an
// overstory-managed agent, it exits 0 immediately so the same guards
// deployed at a project root are inert for the human operator's own
// Claude Code invocations.
const envScopePrefix = `if [ -z "$OVERSTORY_AGENT_NAME" ]; then exit 0; fi
`

// blockResponse emits the exact JSON block response the guard writes to
// stdout before exiting 0.
func blockResponse(reason string) string {
	return `printf '{"decision":"block","reason":"%s"}\n' ` + ShellSingleQuote(reason) + `
exit 0
`
}
