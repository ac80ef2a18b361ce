package main

import (
	"github.com/spf13/cobra"
)

func newHistoryCmd(c *cli) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent uploads and questions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := c.application(cmd.Context())
			if err != nil {
				return err
			}
			view, err := app.svc.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd, view)
			}
			cmd.Println("Uploads:")
			for _, u := range view.Uploads {
				cmd.Printf("  %s  %-32s %d chunks\n", u.CreatedAt.Local().Format("2006-01-02 15:04"), u.Source, u.Chunks)
			}
			cmd.Println("Questions:")
			for _, q := range view.Queries {
				by := q.Provider
				if q.Fallback {
					by = "fallback"
				}
				cmd.Printf("  %s  %s [%s]\n", q.CreatedAt.Local().Format("2006-01-02 15:04"), q.Question, by)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "rows of each kind to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}
