package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "coursepilot",
	Short: "Course material ingestion and retrieval-augmented answering",
	Long: `Coursepilot ingests course PDFs into a searchable knowledge base and
answers questions grounded on the uploaded material. It can also produce
study notes, practice questions and faculty content (assignments, MCQs,
viva questions) from selected documents.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".coursepilot.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
