package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/agentic-research/divtree/api"
	"github.com/agentic-research/divtree/internal/ingest"
	"github.com/agentic-research/divtree/internal/logger"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var quiet bool

var buildCmd = &cobra.Command{
	Use:   "build [input.jsonl] [output.db]",
	Short: "Build a divisions SQLite database from a JSON-lines export",
	Long: `build reads one division per line (flat rows or GeoJSON features, see
--format), writes them to the divisions table, then computes has_children in
a single aggregate pass and indexes parent_division_id.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, output := args[0], args[1]
		log := logger.L()

		fm, ok := api.FieldMapFor(cfg.Format)
		if !ok {
			return fmt.Errorf("unknown format %q (want flat or geojson)", cfg.Format)
		}
		reader, err := ingest.NewReader(fm, log)
		if err != nil {
			return err
		}

		f, err := os.Open(input)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }() // read-only

		var src io.Reader = f
		if !quiet {
			bar, err := progressBar(f, "Loading "+input)
			if err != nil {
				return err
			}
			defer func() { _ = bar.Finish() }()
			src = io.TeeReader(f, bar)
		}

		_ = os.Remove(output) // Overwrite
		writer, err := ingest.NewSQLiteWriter(output, cfg.Table)
		if err != nil {
			return err
		}

		start := time.Now()
		st, err := reader.Load(src, writer)
		if err != nil {
			_ = writer.Close() // the load error wins
			return err
		}
		if err := writer.Close(); err != nil {
			return err
		}
		log.Info("build complete", "output", output, "records", st.Records, "skipped", st.Skipped,
			"elapsed", time.Since(start).Round(time.Millisecond))
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d divisions to %s (%d skipped) in %v.\n",
			st.Records, output, st.Skipped, time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func progressBar(f *os.File, description string) (*progressbar.ProgressBar, error) {
	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to get file stats: %w", err)
	}
	return progressbar.NewOptions64(
		stat.Size(),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(50),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
		progressbar.OptionSetWriter(os.Stderr),
	), nil
}

func init() {
	buildCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not show a progress bar")
	rootCmd.AddCommand(buildCmd)
}
