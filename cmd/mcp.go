package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hirepulse/tadash/internal/candidate"
	mcpserver "github.com/hirepulse/tadash/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing pipeline summary, classification, candidate search and breakdown tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		p, err := openPipeline(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer p.Close()

		p.notify()

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "tadash MCP server started on stdio (sources=%d, ttl=%s)\n", len(cfg.Data.Sources), p.cache.TTL())

		srv := mcpserver.NewServer(p.cache, candidate.NewClassifier(cfg.Classifier), reportOptions(cfg))
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
