package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nabilh/coursepilot/internal/documents"
	"github.com/nabilh/coursepilot/internal/progress"
)

var uploadCmd = &cobra.Command{
	Use:   "upload [file.pdf]",
	Short: "Upload and process a course PDF",
	Long:  `Extracts, chunks, embeds and indexes a PDF so it becomes part of the searchable course material.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runUpload,
}

func init() {
	uploadCmd.Flags().String("course", "", "course label")
	uploadCmd.Flags().String("by", "", "uploader identity")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	course, _ := cmd.Flags().GetString("course")
	uploadedBy, _ := cmd.Flags().GetString("by")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	// Keep a copy under the data dir so a failed document can be
	// resubmitted later.
	id := uuid.NewString()
	stored := filepath.Join(cfg.UploadsDir(), id+filepath.Ext(args[0]))
	if err := os.MkdirAll(cfg.UploadsDir(), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(stored, data, 0o644); err != nil {
		return err
	}

	doc, err := a.docs.Create(ctx, documents.Document{
		ID:         id,
		Filename:   filepath.Base(args[0]),
		FilePath:   stored,
		UploadedBy: uploadedBy,
		Course:     course,
	})
	if err != nil {
		return err
	}

	reporter := progress.NewReporter()
	a.orch.SetStepFunc(progress.StepFunc(reporter))
	ingestErr := a.orch.Ingest(ctx, doc.ID, data)
	reporter.Finish()

	doc, err = a.docs.Get(ctx, doc.ID)
	if err != nil {
		return err
	}

	if ingestErr != nil {
		fmt.Printf("Processing failed: %s\n", doc.ErrorMessage)
		fmt.Printf("Document %s is recorded as %s; fix the input and run `coursepilot docs resubmit %s`.\n",
			doc.ID, doc.Status, doc.ID)
		return nil
	}

	if err := a.persistIndex(ctx); err != nil {
		return fmt.Errorf("persisting vector index: %w", err)
	}

	fmt.Printf("Processed %s: %d chunks indexed (document id %s)\n", doc.Filename, doc.ChunkCount, doc.ID)
	return nil
}
