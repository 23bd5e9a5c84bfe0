package cmd

import (
	"github.com/spf13/cobra"

	"github.com/hirepulse/tadash/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize tadash configuration with an interactive wizard",
	Long:  `Runs an interactive wizard that points tadash at your tracker exports and generates a .tadash.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
