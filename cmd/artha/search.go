package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"arthagpt/internal/domain"
)

func newSearchCmd(c *cli) *cobra.Command {
	var (
		topK   int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Rank stored chunks against a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.application(cmd.Context())
			if err != nil {
				return err
			}
			results, err := app.svc.Search(cmd.Context(), strings.Join(args, " "), topK)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			if asJSON {
				return printJSON(cmd, results)
			}
			printResults(cmd, results)
			return nil
		},
	}
	cmd.Flags().IntVarP(&topK, "limit", "n", 0, "maximum number of results (default retrieval.top_k)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output results as JSON")
	return cmd
}

func printResults(cmd *cobra.Command, results []domain.SearchResult) {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return
	}
	for i, r := range results {
		cmd.Printf("  [%d] %s (%.3f)\n", i+1, r.Chunk.Metadata.Source, r.Score)
		cmd.Printf("      %s\n\n", snippet(r.Chunk.Content, 160))
	}
}

func snippet(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
