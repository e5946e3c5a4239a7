package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nabilh/coursepilot/internal/vectordb"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Run a raw similarity search over the indexed chunks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		k, _ := cmd.Flags().GetInt("k")
		docsFlag, _ := cmd.Flags().GetString("docs")

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		results, err := a.engine.Search(ctx, args[0], k, splitIDs(docsFlag))
		if err != nil {
			return err
		}

		fmt.Print(vectordb.FormatResults(results))
		return nil
	},
}

func init() {
	searchCmd.Flags().Int("k", 5, "number of chunks to return")
	searchCmd.Flags().String("docs", "", "comma-separated document ids to scope the search to")
	rootCmd.AddCommand(searchCmd)
}
