package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nabilh/coursepilot/internal/content"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate faculty content (assignment, mcq, viva) from documents",
	Long:  `Grounds a generation prompt on the chunks of the selected documents and produces structured questions as JSON.`,
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().String("type", "assignment", "content type: assignment, mcq, viva")
	generateCmd.Flags().String("docs", "", "comma-separated document ids (required)")
	generateCmd.Flags().String("difficulty", "medium", "difficulty: easy, medium, hard")
	generateCmd.Flags().Int("n", 0, "number of questions (0 = type default)")
	generateCmd.Flags().String("author", "", "author identity recorded on the content")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	typeStr, _ := cmd.Flags().GetString("type")
	docsFlag, _ := cmd.Flags().GetString("docs")
	difficulty, _ := cmd.Flags().GetString("difficulty")
	n, _ := cmd.Flags().GetInt("n")
	author, _ := cmd.Flags().GetString("author")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	gen, err := a.generator.Generate(ctx, content.Request{
		Type:         content.Type(typeStr),
		DocumentIDs:  splitIDs(docsFlag),
		NumQuestions: n,
		Difficulty:   difficulty,
		AuthorID:     author,
	})
	if err != nil {
		return err
	}

	// Pretty-print the question array.
	var pretty json.RawMessage = []byte(gen.Content)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(pretty); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Saved as %s (id %s)\n", gen.Type, gen.ID)
	return nil
}
