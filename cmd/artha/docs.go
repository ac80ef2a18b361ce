package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDocsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Manage stored documents",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := c.application(cmd.Context())
			if err != nil {
				return err
			}
			docs := app.svc.Documents()
			if len(docs) == 0 {
				cmd.Println("No documents stored.")
				return nil
			}
			for _, d := range docs {
				cmd.Printf("  %-32s %-16s %4d chunks  %s\n", d.Source, d.Type, d.Chunks, d.UploadedAt.Local().Format("2006-01-02 15:04"))
			}
			st := app.svc.Stats()
			cmd.Printf("\n%d documents, %d chunks\n", st.Documents, st.Chunks)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete [source]",
		Short: "Remove a document and all its chunks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.application(cmd.Context())
			if err != nil {
				return err
			}
			removed, err := app.svc.DeleteDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if removed == 0 {
				return fmt.Errorf("document %q not found", args[0])
			}
			cmd.Printf("Deleted %s (%d chunks)\n", args[0], removed)
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every stored document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := c.application(cmd.Context())
			if err != nil {
				return err
			}
			if err := app.svc.ClearAll(cmd.Context()); err != nil {
				return err
			}
			cmd.Println("All documents removed.")
			return nil
		},
	}

	cmd.AddCommand(list, del, clearCmd)
	return cmd
}
