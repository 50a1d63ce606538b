package main

import (
	"fmt"

	"jarvis/backend/go/internal/learning"

	"github.com/spf13/cobra"
)

func factsCmd(configPath *string) *cobra.Command {
	var concept string
	cmd := &cobra.Command{
		Use:   "facts",
		Short: "List facts stored under a concept",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := openStore(*configPath)
			if err != nil {
				return err
			}
			defer closeStore()

			facts, err := store.FactsByConcept(cmd.Context(), concept)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(facts) == 0 {
				fmt.Fprintln(out, "No facts found.")
				return nil
			}
			for _, f := range facts {
				fmt.Fprintf(out, "%d\t%s\t(%s, %s, %.2f)\n", f.ID, f.Fact, f.Relationship, f.Source, f.Confidence)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&concept, "concept", learning.FactConcept, "concept to filter by")
	return cmd
}
