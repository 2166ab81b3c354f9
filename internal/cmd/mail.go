package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xcawolfe-amzn/overstory/internal/mailstore"
	"github.com/xcawolfe-amzn/overstory/internal/style"
)

var (
	mailFrom     string
	mailTo       string
	mailSubject  string
	mailBody     string
	mailType     string
	mailPriority string
	mailLimit    int
	mailPurgeAll bool
)

var mailCmd = &cobra.Command{
	Use:     "mail",
	GroupID: GroupWork,
	Short:   "Send and read inter-agent mail",
}

var mailSendCmd = &cobra.Command{Use: "send", Short: "Send a message", RunE: runMailSend}
var mailCheckCmd = &cobra.Command{Use: "check <agent>", Short: "List unread mail for an agent", Args: cobra.ExactArgs(1), RunE: runMailCheck}
var mailListCmd = &cobra.Command{Use: "list [agent]", Short: "List recent mail, optionally for one recipient", Args: cobra.MaximumNArgs(1), RunE: runMailList}
var mailReadCmd = &cobra.Command{Use: "read <id>", Short: "Mark a message read and print it", Args: cobra.ExactArgs(1), RunE: runMailRead}
var mailReplyCmd = &cobra.Command{Use: "reply <id>", Short: "Reply to a message", Args: cobra.ExactArgs(1), RunE: runMailReply}
var mailPurgeCmd = &cobra.Command{Use: "purge", Short: "Purge mail by sender/recipient", RunE: runMailPurge}

func init() {
	mailSendCmd.Flags().StringVar(&mailFrom, "from", "operator", "sender identity")
	mailSendCmd.Flags().StringVar(&mailTo, "to", "", "recipient (agent name, @capability, or @group)")
	mailSendCmd.Flags().StringVar(&mailSubject, "subject", "", "subject")
	mailSendCmd.Flags().StringVar(&mailBody, "body", "", "body")
	mailSendCmd.Flags().StringVar(&mailType, "type", string(mailstore.TypeStatus), "message type")
	mailSendCmd.Flags().StringVar(&mailPriority, "priority", string(mailstore.PriorityNormal), "priority")
	_ = mailSendCmd.MarkFlagRequired("to")

	mailListCmd.Flags().IntVar(&mailLimit, "limit", 50, "max messages to show")

	mailReplyCmd.Flags().StringVar(&mailFrom, "from", "operator", "replying identity")
	mailReplyCmd.Flags().StringVar(&mailBody, "body", "", "reply body")

	mailPurgeCmd.Flags().StringVar(&mailFrom, "from", "", "purge messages sent by this agent")
	mailPurgeCmd.Flags().StringVar(&mailTo, "to", "", "purge messages addressed to this agent")
	mailPurgeCmd.Flags().BoolVar(&mailPurgeAll, "all", false, "purge every message")

	mailCmd.AddCommand(mailSendCmd, mailCheckCmd, mailListCmd, mailReadCmd, mailReplyCmd, mailPurgeCmd)
	rootCmd.AddCommand(mailCmd)
}

func runMailSend(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	msg, err := p.Mail.Send(&mailstore.Message{
		From: mailFrom, To: mailTo, Subject: mailSubject, Body: mailBody,
		Type: mailstore.MessageType(mailType), Priority: mailstore.Priority(mailPriority),
	})
	if err != nil {
		return err
	}
	style.PrintSuccess("sent %s", msg.ID)
	return nil
}

func runMailCheck(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	messages, err := p.Mail.Check(args[0])
	if err != nil {
		return err
	}
	printMessages(messages)
	return nil
}

func runMailList(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	var recipient string
	if len(args) == 1 {
		recipient = args[0]
	}
	messages, err := p.Mail.List(recipient, mailLimit)
	if err != nil {
		return err
	}
	printMessages(messages)
	return nil
}

func runMailRead(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	msg, err := p.Mail.Get(args[0])
	if err != nil {
		return err
	}
	if msg == nil {
		return fatalf("no such message %q", args[0])
	}
	if _, err := p.Mail.MarkRead(msg.ID); err != nil {
		return err
	}
	printMessages([]*mailstore.Message{msg})
	return nil
}

func runMailReply(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	msg, err := p.Mail.Reply(args[0], mailFrom, mailBody)
	if err != nil {
		return err
	}
	style.PrintSuccess("replied %s", msg.ID)
	return nil
}

func runMailPurge(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	n, err := p.Mail.Purge(mailstore.PurgeFilter{From: mailFrom, To: mailTo, All: mailPurgeAll})
	if err != nil {
		return err
	}
	style.PrintSuccess("purged %s", style.MessageCount(int(n)))
	return nil
}

func printMessages(messages []*mailstore.Message) {
	if len(messages) == 0 {
		fmt.Println("no messages")
		return
	}
	fmt.Println(style.MessageCount(len(messages)))
	table := style.NewTable(
		style.Column{Name: "ID", Width: 14},
		style.Column{Name: "FROM", Width: 14},
		style.Column{Name: "TO", Width: 14},
		style.Column{Name: "TYPE", Width: 12},
		style.Column{Name: "SUBJECT", Width: 30},
	)
	table.ShrinkToFit("SUBJECT", style.TerminalWidth(120), 10)
	for _, m := range messages {
		table.AddRow(m.ID, m.From, m.To, string(m.Type), m.Subject)
	}
	fmt.Print(table.Render())
}
