package cmd

import (
	"fmt"
	"os"

	"github.com/agentic-research/divtree/internal/config"
	"github.com/agentic-research/divtree/internal/logger"
	"github.com/spf13/cobra"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

var cfg = config.Load()

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.DB, "db", cfg.DB, "SQLite file, postgres:// DSN, or JSON-lines file to browse")
	pf.StringVar(&cfg.Table, "table", cfg.Table, "Divisions table name")
	pf.StringVar(&cfg.Locale, "locale", cfg.Locale, "Locale used for common names")
	pf.StringVar(&cfg.Format, "format", cfg.Format, "JSON-lines layout: flat or geojson")
	pf.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "Redis address for caching child lists (empty disables)")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")

	rootCmd.Flags().BoolVar(&plain, "plain", false, "Use the line-oriented shell instead of the full-screen UI")
}

var rootCmd = &cobra.Command{
	Use:   "divtree",
	Short: "Browse an administrative-division hierarchy as a lazily expanded tree",
	Long: `divtree shows countries, regions, counties and the rest of a division
dataset as a tree. Only the roots are loaded at start; each expansion fetches
one level from the backing store.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	},
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
