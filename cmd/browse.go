package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/agentic-research/divtree/internal/logger"
	"github.com/agentic-research/divtree/internal/shell"
	"github.com/agentic-research/divtree/internal/tree"
	"github.com/agentic-research/divtree/internal/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var plain bool

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Open the interactive tree (default command)",
	Args:  cobra.NoArgs,
	RunE:  runBrowse,
}

func init() {
	browseCmd.Flags().BoolVar(&plain, "plain", false, "Use the line-oriented shell instead of the full-screen UI")
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	interactive := !plain && term.IsTerminal(int(os.Stdout.Fd()))

	// The full-screen UI owns the terminal, so logs go to a file.
	log := logger.L()
	if interactive {
		l, closer, err := logger.SetupFile(cfg.LogFile, cfg.LogLevel, cfg.LogFormat)
		if err != nil {
			return err
		}
		defer func() { _ = closer.Close() }() // best-effort
		log = l
	}

	s, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }() // read-only

	t := tree.New(s, tree.WithLogger(log))
	if err := t.Initialize(); err != nil {
		return err
	}
	log.Info("tree initialized", "db", cfg.DB, "roots", len(t.Roots()))

	if interactive {
		return tui.Run(t)
	}

	var history string
	if dir, err := os.UserCacheDir(); err == nil {
		history = filepath.Join(dir, "divtree", "history")
		_ = os.MkdirAll(filepath.Dir(history), 0o755) // history is optional
	}
	rl, err := shell.NewReadline(history)
	if err != nil {
		return fmt.Errorf("start line shell: %w", err)
	}
	defer func() { _ = rl.Close() }()
	return shell.New(t, rl, rl.Stdout()).Run()
}
