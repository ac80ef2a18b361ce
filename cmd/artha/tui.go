package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"arthagpt/internal/tui"
)

func newTUICmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "tui [files...]",
		Short: "Interactive search and ask, optionally ingesting files first",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.application(cmd.Context())
			if err != nil {
				return err
			}
			var summary string
			if len(args) > 0 {
				results, err := app.svc.IngestFiles(cmd.Context(), args, "")
				if err != nil {
					return fmt.Errorf("ingest failed: %w", err)
				}
				if len(results) == 1 {
					summary = results[0].Summary
				}
			}
			st := app.svc.Stats()
			header := fmt.Sprintf("%d documents, %d chunks", st.Documents, st.Chunks)
			if summary != "" {
				header += "  |  " + summary
			}
			_, err = tea.NewProgram(tui.New(app.svc, header), tea.WithAltScreen()).Run()
			return err
		},
	}
}
