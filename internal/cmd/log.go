package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xcawolfe-amzn/overstory/internal/eventstore"
)

var (
	logAgent    string
	logTool     string
	logArgs     string
	logData     string
	logLevel    string
	logDuration int64
)

var logCmd = &cobra.Command{
	Use:     "log <event-type>",
	GroupID: GroupDiag,
	Short:   "Record one event to the event log (typically invoked from a hook)",
	Args:    cobra.ExactArgs(1),
	RunE:    runLog,
}

func init() {
	logCmd.Flags().StringVar(&logAgent, "agent", os.Getenv("OVERSTORY_AGENT_NAME"), "agent name, defaults to $OVERSTORY_AGENT_NAME")
	logCmd.Flags().StringVar(&logTool, "tool", "", "tool name, for tool_start/tool_end events")
	logCmd.Flags().StringVar(&logArgs, "args", "", "opaque tool args (typically JSON)")
	logCmd.Flags().StringVar(&logData, "data", "", "opaque event payload")
	logCmd.Flags().StringVar(&logLevel, "level", string(eventstore.LevelInfo), "info, warn, or error")
	logCmd.Flags().Int64Var(&logDuration, "duration-ms", 0, "duration in milliseconds, for tool_end events")
	rootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, args []string) error {
	if logAgent == "" {
		return fatalf("no agent name given and $OVERSTORY_AGENT_NAME is unset")
	}
	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	var runID string
	if run, err := p.Sessions.GetActiveRun(); err == nil && run != nil {
		runID = run.ID
	}

	event := &eventstore.Event{
		RunID:     runID,
		AgentName: logAgent,
		Type:      eventstore.EventType(strings.TrimSpace(args[0])),
		ToolName:  logTool,
		ToolArgs:  logArgs,
		Level:     eventstore.Level(logLevel),
		Data:      logData,
	}
	if logDuration > 0 {
		event.DurationMs = &logDuration
	}
	_, err = p.Events.Insert(event)
	return err
}
