package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xcawolfe-amzn/overstory/internal/style"
)

var groupCmd = &cobra.Command{
	Use:     "group",
	GroupID: GroupWork,
	Short:   "Manage named agent groups addressed as @<name> over the mail bus",
}

var groupCreateCmd = &cobra.Command{Use: "create <name>", Short: "Create an empty named group", Args: cobra.ExactArgs(1), RunE: runGroupCreate}
var groupAddCmd = &cobra.Command{Use: "add <name> <agent>", Short: "Add an agent to a group", Args: cobra.ExactArgs(2), RunE: runGroupAdd}
var groupRemoveCmd = &cobra.Command{Use: "remove <name> <agent>", Short: "Remove an agent from a group", Args: cobra.ExactArgs(2), RunE: runGroupRemove}
var groupStatusCmd = &cobra.Command{Use: "status <name>", Short: "Show a group's members and which are currently active", Args: cobra.ExactArgs(1), RunE: runGroupStatus}
var groupListCmd = &cobra.Command{Use: "list", Short: "List every named group", RunE: runGroupList}

func init() {
	groupCmd.AddCommand(groupCreateCmd, groupAddCmd, groupRemoveCmd, groupStatusCmd, groupListCmd)
	rootCmd.AddCommand(groupCmd)
}

func runGroupCreate(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	if err := p.Sessions.CreateGroup(args[0]); err != nil {
		return err
	}
	style.PrintSuccess("group %q created", args[0])
	return nil
}

func runGroupAdd(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	if err := p.Sessions.AddGroupMember(args[0], args[1]); err != nil {
		return err
	}
	style.PrintSuccess("added %s to %q", args[1], args[0])
	return nil
}

func runGroupRemove(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	if err := p.Sessions.RemoveGroupMember(args[0], args[1]); err != nil {
		return err
	}
	style.PrintSuccess("removed %s from %q", args[1], args[0])
	return nil
}

func runGroupStatus(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	members, err := p.Sessions.GroupMembers(args[0])
	if err != nil {
		return err
	}
	if len(members) == 0 {
		fmt.Printf("group %q has no members\n", args[0])
		return nil
	}

	active, err := p.Sessions.GetActive()
	if err != nil {
		return err
	}
	activeNames := make(map[string]bool, len(active))
	for _, s := range active {
		activeNames[s.Name] = true
	}

	table := style.NewTable(
		style.Column{Name: "MEMBER", Width: 24},
		style.Column{Name: "ACTIVE", Width: 8},
	)
	for _, m := range members {
		status := "no"
		if activeNames[m] {
			status = "yes"
		}
		table.AddRow(m, status)
	}
	fmt.Print(table.Render())
	return nil
}

func runGroupList(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	names, err := p.Sessions.ListGroups()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("no groups defined")
		return nil
	}
	for _, n := range names {
		fmt.Printf("@%s\n", n)
	}
	return nil
}
