package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func rulesCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect and manage taught rules",
	}
	cmd.AddCommand(rulesListCmd(configPath))
	cmd.AddCommand(ruleToggleCmd(configPath, "disable", false))
	cmd.AddCommand(ruleToggleCmd(configPath, "enable", true))
	return cmd
}

func rulesListCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every rule in evaluation order",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := openStore(*configPath)
			if err != nil {
				return err
			}
			defer closeStore()

			rules, err := store.ListRules(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(rules) == 0 {
				fmt.Fprintln(out, "No rules found.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPRIORITY\tACTIVE\tCONDITION\tACTION")
			for _, r := range rules {
				fmt.Fprintf(w, "%d\t%d\t%t\t%s\t%s\n", r.ID, r.Priority, r.IsActive, r.Condition, r.Action)
			}
			return w.Flush()
		},
	}
}

func ruleToggleCmd(configPath *string, verb string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " [rule-id]",
		Short: fmt.Sprintf("Mark a rule as %sd", verb),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid rule id %q", args[0])
			}
			store, closeStore, err := openStore(*configPath)
			if err != nil {
				return err
			}
			defer closeStore()

			if err := store.SetRuleActive(cmd.Context(), uint(id), active); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rule %d %sd.\n", id, verb)
			return nil
		},
	}
}
