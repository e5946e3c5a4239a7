package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nabilh/coursepilot/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize coursepilot configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure coursepilot and generates a .coursepilot.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
