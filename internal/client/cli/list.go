package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newListCommand() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your memories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			if err := a.requireLogin(cmd.Context()); err != nil {
				return err
			}

			list, err := a.api.ListMemories(cmd.Context(), strings.ToUpper(status))
			if err != nil {
				return err
			}
			printMemories(a.out, list)
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by status: draft, paid or archived")
	return cmd
}

func newStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			if err := a.requireLogin(cmd.Context()); err != nil {
				return err
			}

			s, err := a.api.Stats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Memories:  %d\n", s.Total)
			fmt.Fprintf(a.out, "Drafts:    %d\n", s.Drafts)
			fmt.Fprintf(a.out, "Published: %d\n", s.Published)
			fmt.Fprintf(a.out, "Archived:  %d\n", s.Archived)
			fmt.Fprintf(a.out, "Views:     %d\n", s.TotalViews)
			return nil
		},
	}
}
