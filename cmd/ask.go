package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nabilh/coursepilot/internal/rag"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question grounded on the uploaded course material",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		modeStr, _ := cmd.Flags().GetString("mode")
		docsFlag, _ := cmd.Flags().GetString("docs")
		return runAnswer(args[0], modeStr, docsFlag)
	},
}

var notesCmd = &cobra.Command{
	Use:   "notes [topic]",
	Short: "Generate study notes on a topic from the course material",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		docsFlag, _ := cmd.Flags().GetString("docs")
		return runAnswer(args[0], string(rag.ModeStudyNotes), docsFlag)
	},
}

var quizCmd = &cobra.Command{
	Use:   "quiz [topic]",
	Short: "Generate practice questions on a topic from the course material",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		docsFlag, _ := cmd.Flags().GetString("docs")
		return runAnswer(args[0], string(rag.ModePracticeQuestions), docsFlag)
	},
}

func init() {
	askCmd.Flags().String("mode", "qa", "answer mode: qa, study_notes, practice_questions")
	for _, c := range []*cobra.Command{askCmd, notesCmd, quizCmd} {
		c.Flags().String("docs", "", "comma-separated document ids to scope retrieval to")
		rootCmd.AddCommand(c)
	}
}

func runAnswer(query, modeStr, docsFlag string) error {
	ctx := context.Background()

	mode, err := rag.ParseMode(modeStr)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	answer, err := a.engine.Answer(ctx, query, mode, splitIDs(docsFlag))
	if err != nil {
		return err
	}

	fmt.Println(answer.Text)
	if len(answer.Sources) > 0 {
		fmt.Printf("\nSources: %s\n", strings.Join(answer.Sources, ", "))
	}
	return nil
}

func splitIDs(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
