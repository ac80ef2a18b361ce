package main

import (
	"github.com/spf13/cobra"
)

func newQuoteCmd(c *cli) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "quote [symbols...]",
		Short: "Show market quotes (all reference symbols when none given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.application(cmd.Context())
			if err != nil {
				return err
			}
			quotes, qerr := app.quotes.Quotes(cmd.Context(), args)
			if asJSON {
				if err := printJSON(cmd, quotes); err != nil {
					return err
				}
				return qerr
			}
			for _, q := range quotes {
				label := ""
				if q.Fallback {
					label = "  (reference " + q.AsOf.Format("2006-01-02") + ")"
				}
				cmd.Printf("  %-14s %12.2f %s  %+8.2f (%+.2f%%)  %s%s\n",
					q.Symbol, q.Price, q.Currency, q.Change, q.ChangePercent, q.Name, label)
			}
			return qerr
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output quotes as JSON")
	return cmd
}
