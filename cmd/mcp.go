package cmd

import (
	"github.com/agentic-research/divtree/internal/logger"
	"github.com/agentic-research/divtree/internal/mcpserver"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the division store to agents over MCP (stdio)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// stdout carries the protocol; logs stay on stderr.
		log := logger.L()
		s, err := openStore(cfg, log)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }() // read-only

		log.Info("serving mcp on stdio", "db", cfg.DB)
		return mcpserver.ServeStdio(mcpserver.New(s, Version))
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
