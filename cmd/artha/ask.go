package main

import (
	"strings"

	"github.com/spf13/cobra"

	"arthagpt/internal/service"
)

func newAskCmd(c *cli) *cobra.Command {
	var (
		req    service.AskRequest
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a question answered from your documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.application(cmd.Context())
			if err != nil {
				return err
			}
			req.Question = strings.Join(args, " ")
			ans, err := app.svc.Ask(cmd.Context(), req)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd, ans)
			}
			cmd.Println(ans.Text)
			if len(ans.Sources) > 0 {
				cmd.Printf("\nSources: %s\n", strings.Join(ans.Sources, ", "))
			}
			if ans.Fallback {
				cmd.PrintErrln("(no language model was reachable)")
			} else {
				cmd.Printf("Answered by %s\n", ans.Provider)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Context, "context", "", "extra context to include, e.g. your risk profile")
	cmd.Flags().StringSliceVar(&req.Symbols, "symbols", nil, "market symbols to include (e.g. NIFTY50,GOLD)")
	cmd.Flags().IntVarP(&req.TopK, "limit", "n", 0, "chunks to retrieve (default retrieval.top_k)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output the answer as JSON")
	return cmd
}
