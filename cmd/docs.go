package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nabilh/coursepilot/internal/documents"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Manage uploaded documents",
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List uploaded documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		course, _ := cmd.Flags().GetString("course")
		status, _ := cmd.Flags().GetString("status")

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		docs, err := a.docs.List(ctx, documents.ListFilter{
			Course: course,
			Status: documents.Status(status),
		})
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			fmt.Println("No documents.")
			return nil
		}
		for _, d := range docs {
			line := fmt.Sprintf("%s  %-10s  %s", d.ID, d.Status, d.Filename)
			if d.Status == documents.StatusCompleted {
				line += fmt.Sprintf("  (%d chunks)", d.ChunkCount)
			}
			if d.Status == documents.StatusFailed {
				line += fmt.Sprintf("  (%s)", d.ErrorMessage)
			}
			fmt.Println(line)
		}
		return nil
	},
}

var docsStatusCmd = &cobra.Command{
	Use:   "status [id]",
	Short: "Show a document's processing status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		d, err := a.docs.Get(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("ID:        %s\n", d.ID)
		fmt.Printf("Filename:  %s\n", d.Filename)
		fmt.Printf("Course:    %s\n", d.Course)
		fmt.Printf("Status:    %s\n", d.Status)
		fmt.Printf("Chunks:    %d\n", d.ChunkCount)
		if d.ErrorMessage != "" {
			fmt.Printf("Error:     %s\n", d.ErrorMessage)
		}
		return nil
	},
}

var docsResubmitCmd = &cobra.Command{
	Use:   "resubmit [id]",
	Short: "Reprocess a failed document from scratch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.orch.Resubmit(ctx, args[0]); err != nil {
			return err
		}
		if err := a.persistIndex(ctx); err != nil {
			return err
		}
		d, err := a.docs.Get(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Reprocessed %s: status %s, %d chunks\n", d.Filename, d.Status, d.ChunkCount)
		return nil
	},
}

var docsDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a document, its chunks and its stored file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.orch.DeleteDocument(ctx, args[0]); err != nil {
			return err
		}
		if err := a.persistIndex(ctx); err != nil {
			return err
		}
		fmt.Println("Deleted.")
		return nil
	},
}

func init() {
	docsListCmd.Flags().String("course", "", "filter by course label")
	docsListCmd.Flags().String("status", "", "filter by status: queued, processing, completed, failed")
	docsCmd.AddCommand(docsListCmd, docsStatusCmd, docsResubmitCmd, docsDeleteCmd)
	rootCmd.AddCommand(docsCmd)
}

// openApp loads config and wires the app, shared by the docs subcommands.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return newApp(ctx, cfg)
}
