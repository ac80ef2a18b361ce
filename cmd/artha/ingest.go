package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newIngestCmd(c *cli) *cobra.Command {
	var docType string
	cmd := &cobra.Command{
		Use:   "ingest [files...]",
		Short: "Add .txt or .md documents (globs allowed)",
		Long: `Splits each file into chunks, fingerprints them and stores them under the
file's base name. Re-ingesting a file with the same name replaces it.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.application(cmd.Context())
			if err != nil {
				return err
			}
			results, err := app.svc.IngestFiles(cmd.Context(), args, docType)
			out := cmd.OutOrStdout()
			for _, r := range results {
				fmt.Fprintf(out, "Ingested %s: %d chunks", r.Source, r.Chunks)
				if r.Replaced > 0 {
					fmt.Fprintf(out, " (replaced %d)", r.Replaced)
				}
				fmt.Fprintln(out)
				if r.Summary != "" {
					fmt.Fprintf(out, "  %s\n", r.Summary)
				}
			}
			if err != nil {
				return err
			}
			st := app.svc.Stats()
			fmt.Fprintf(out, "Store: %d documents, %d chunks\n", st.Documents, st.Chunks)
			return nil
		},
	}
	cmd.Flags().StringVarP(&docType, "type", "t", "", "document type label (default from extension)")
	return cmd
}
