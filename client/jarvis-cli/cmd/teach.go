package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func teachCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "teach [rule]",
		Short: "Teach a rule such as \"If it rains, then bring an umbrella\"",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			var reply struct {
				Text string `json:"text"`
			}
			if err := client.PostJSON(cmd.Context(), "/api/teach_rule", map[string]string{"rule": args[0]}, &reply); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply.Text)
			return nil
		},
	}
}
