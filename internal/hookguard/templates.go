package hookguard

import (
	"fmt"
	"strings"

	"github.com/xcawolfe-amzn/overstory/internal/config"
)

// blockedNativeTools are blocked for every agent: delegation must go
// through the orchestrator's own spawn command, not a native task/team
// tool, and interactive tools require a human responder agents don't have.
var blockedNativeTools = []string{"Task", "TeamCreate", "TeamAssign", "AskUserQuestion"}

// fileModifyingPatterns are grep -E alternatives recognized as
// file-modifying shell commands: in-place edits, redirections, and the
// classic mutating coreutils.
var fileModifyingPatterns = []string{
	`sed -i`, `>>`, `[^><]>[^>]`, `\bcp\b`, `\bmv\b`, `\brm\b`,
	`\bmkdir\b`, `\btouch\b`, `\bchmod\b`, `\bchown\b`, `\binstall\b`, `\brsync\b`,
}

// safeCommandPrefixes bypass the non-implementation Bash block entirely,
// a whitelist-first exception list.
func safeCommandPrefixes(trackerCLI string) []string {
	return []string{
		`^overstory `, `^` + regexpQuote(trackerCLI) + ` `,
		`^git (status|log|diff|show|blame|branch)\b`,
		`^mulch `,
		`^(go test|npm test|yarn test|pnpm test|pytest|cargo test)\b`,
	}
}

// blockedDestructivePatterns catch destructive commands and shell evals
// for the non-implementation Bash block.
var blockedDestructivePatterns = []string{
	`sed -i`, `>>`, `[^><]>[^>]`, `\brm\b`, `\bmkdir\b`, `\btouch\b`, `\bchmod\b`, `\bchown\b`,
	`\bgit (add|commit|merge|push|reset|checkout|rebase|stash)\b`,
	`(npm|yarn|pnpm|pip|cargo|gem) install`, `apt(-get)? install`,
	`\bbun -e\b`, `\bnode -e\b`, `\bpython -c\b`, `\bperl -e\b`, `\bruby -e\b`, `\bdeno eval\b`,
}

func regexpQuote(s string) string {
	special := `.^$*+?()[]{}|\`
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(special, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// sessionScopeGuard builds a standalone session-scoping guard: the
// envScopePrefix followed by "exit 0". BuildGuards does not deploy it;
// each guard it builds starts with envScopePrefix itself.
func sessionScopeGuard() string {
	return envScopePrefix + "exit 0\n"
}

// nativeToolBlockGuard blocks the fixed set of native task/team/interactive
// tools for every agent.
func nativeToolBlockGuard() string {
	return envScopePrefix + blockResponse("delegation and interactive tools are not available to overstory agents; use overstory sling or mail instead")
}

// writeToolBlockGuard blocks Write/Edit/NotebookEdit for capabilities
// that are not builder/merger.
func writeToolBlockGuard(agentCapability string) string {
	return envScopePrefix + blockResponse(fmt.Sprintf("capability %s may not modify files directly; delegate via mail or escalate", agentCapability))
}

// pathBoundaryGuard extracts the target path from the tool's stdin JSON
// and rejects any Write/Edit/NotebookEdit whose resolved absolute path
// falls outside the agent's worktree. Unparseable input fails open so a
// later guard can still catch it.
func pathBoundaryGuard() string {
	var b strings.Builder
	b.WriteString(envScopePrefix)
	b.WriteString(`INPUT=$(cat)
TARGET=` + jsonField("INPUT", "file_path") + `
if [ -z "$TARGET" ]; then
  TARGET=` + jsonField("INPUT", "notebook_path") + `
fi
if [ -z "$TARGET" ]; then
  exit 0
fi
case "$TARGET" in
  /*) ABS="$TARGET" ;;
  *) ABS="$(pwd)/$TARGET" ;;
esac
ABS=$(cd "$(dirname "$ABS")" 2>/dev/null && pwd)/$(basename "$ABS")
case "$ABS" in
  "$OVERSTORY_WORKTREE_PATH"|"$OVERSTORY_WORKTREE_PATH"/*) exit 0 ;;
esac
`)
	b.WriteString(blockResponse("path is outside this agent's worktree"))
	return b.String()
}

// shellCommandGuard runs only for implementation capabilities (builder,
// merger): if the Bash command matches a file-modifying pattern, every
// absolute-path token in it must resolve inside the worktree, /dev, or
// /tmp.
func shellCommandGuard() string {
	var b strings.Builder
	b.WriteString(envScopePrefix)
	b.WriteString(`INPUT=$(cat)
CMD=` + jsonField("INPUT", "command") + `
if [ -z "$CMD" ]; then
  exit 0
fi
MATCH=0
`)
	for _, pat := range fileModifyingPatterns {
		fmt.Fprintf(&b, "if printf '%%s' \"$CMD\" | grep -Eq %s; then MATCH=1; fi\n", ShellSingleQuote(pat))
	}
	b.WriteString(`if [ "$MATCH" -eq 0 ]; then
  exit 0
fi
for TOKEN in $CMD; do
  case "$TOKEN" in
    /*)
      case "$TOKEN" in
        "$OVERSTORY_WORKTREE_PATH"/*|/dev/*|/tmp/*) ;;
        *)
`)
	b.WriteString(indentLines(blockResponse("file-modifying command touches a path outside this agent's worktree"), "          "))
	b.WriteString(`        ;;
      esac
      ;;
  esac
done
exit 0
`)
	return b.String()
}

// dangerGuard rejects git push, git reset --hard, and any git checkout -b
// whose branch name does not match this agent's overstory namespace, for
// every capability.
func dangerGuard(agentName string) string {
	var b strings.Builder
	b.WriteString(envScopePrefix)
	b.WriteString(`INPUT=$(cat)
CMD=` + jsonField("INPUT", "command") + `
if [ -z "$CMD" ]; then
  exit 0
fi
if printf '%s' "$CMD" | grep -Eq '\bgit push\b'; then
`)
	b.WriteString(indentLines(blockResponse("git push is not permitted from an overstory agent"), "  "))
	b.WriteString(`fi
if printf '%s' "$CMD" | grep -Eq '\bgit reset --hard\b'; then
`)
	b.WriteString(indentLines(blockResponse("git reset --hard is not permitted from an overstory agent"), "  "))
	fmt.Fprintf(&b, `fi
if printf '%%s' "$CMD" | grep -Eq '\bgit checkout -b [^ ]+'; then
  BRANCH=$(printf '%%s' "$CMD" | sed -n 's/.*git checkout -b \([^ ]*\).*/\1/p')
  case "$BRANCH" in
    overstory/%s/*) ;;
    *)
`, agentName)
	b.WriteString(indentLines(blockResponse("new branch must be named overstory/<agent>/<task>"), "      "))
	b.WriteString(`    ;;
  esac
fi
exit 0
`)
	return b.String()
}

// nonImplementationBashGuard is the whitelist-first Bash block for
// capabilities that may not modify files. Coordination capabilities
// additionally whitelist git add/commit so they can sync tracker files;
// git push remains blocked by dangerGuard.
func nonImplementationBashGuard(capability config.Capability, trackerCLI string) string {
	var b strings.Builder
	b.WriteString(envScopePrefix)
	b.WriteString(`INPUT=$(cat)
CMD=` + jsonField("INPUT", "command") + `
if [ -z "$CMD" ]; then
  exit 0
fi
`)
	for _, pat := range safeCommandPrefixes(trackerCLI) {
		fmt.Fprintf(&b, "if printf '%%s' \"$CMD\" | grep -Eq %s; then exit 0; fi\n", ShellSingleQuote(pat))
	}
	if isCoordination(capability) {
		b.WriteString("if printf '%s' \"$CMD\" | grep -Eq '^git (add|commit)\\b'; then exit 0; fi\n")
	}
	b.WriteString("MATCH=0\n")
	for _, pat := range blockedDestructivePatterns {
		fmt.Fprintf(&b, "if printf '%%s' \"$CMD\" | grep -Eq %s; then MATCH=1; fi\n", ShellSingleQuote(pat))
	}
	b.WriteString(`if [ "$MATCH" -eq 1 ]; then
`)
	b.WriteString(indentLines(blockResponse("this command is not permitted for a non-implementation agent"), "  "))
	b.WriteString(`fi
exit 0
`)
	return b.String()
}

func isCoordination(c config.Capability) bool {
	switch c {
	case config.CapabilityCoordinator, config.CapabilitySupervisor, config.CapabilityLead:
		return true
	default:
		return false
	}
}

func indentLines(s, indent string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = indent + l
	}
	return strings.Join(lines, "\n") + "\n"
}
