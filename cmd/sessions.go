package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect retrieval session history",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a user's sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		user, _ := cmd.Flags().GetString("user")
		if user == "" {
			return fmt.Errorf("--user is required")
		}

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		out, err := a.sessions.ListSessions(ctx, user)
		if err != nil {
			return err
		}
		if len(out) == 0 {
			fmt.Println("No sessions.")
			return nil
		}
		for _, s := range out {
			fmt.Printf("%s  %s  %s\n", s.ID, s.CreatedAt.Format("2006-01-02 15:04"), s.Title)
		}
		return nil
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a session's entries in order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		entries, err := a.sessions.Entries(ctx, args[0])
		if err != nil {
			return err
		}
		for i, e := range entries {
			if i > 0 {
				fmt.Println()
			}
			fmt.Printf("Q [%s]: %s\n", e.Mode, e.Query)
			fmt.Printf("A: %s\n", e.Answer)
			if len(e.Sources) > 0 {
				fmt.Printf("Sources: %s\n", strings.Join(e.Sources, ", "))
			}
		}
		return nil
	},
}

func init() {
	sessionsListCmd.Flags().String("user", "", "user id")
	sessionsCmd.AddCommand(sessionsListCmd, sessionsShowCmd)
	rootCmd.AddCommand(sessionsCmd)
}
