package cmd

import (
	"io"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hirepulse/tadash/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "tadash",
	Short: "Recruiting pipeline analytics for TA tracker exports",
	Long: `tadash reads the TA tracker exported as CSV or XLSX, classifies every
candidate into a pipeline category and reports KPIs, the hiring funnel,
status distribution and per-team breakdowns. Results are served over a
JSON API, printed in the terminal, exported to Excel or exposed to AI
agents via MCP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A .env file is optional; it may carry TADASH_* and AWS_* settings.
		_ = godotenv.Load()
		// Package logs are noise for one-shot commands unless asked for.
		if !verbose && cmd.Name() != "serve" {
			log.SetOutput(io.Discard)
		}
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
