package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/agentic-research/divtree/internal/logger"
	"github.com/agentic-research/divtree/internal/store"
	"github.com/agentic-research/divtree/internal/tree"
	"github.com/spf13/cobra"
)

var childrenCmd = &cobra.Command{
	Use:   "children [id]",
	Short: "Print the child divisions of id, or the roots when id is omitted",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := store.RootID
		if len(args) == 1 {
			id = args[0]
		}

		s, err := openStore(cfg, logger.L())
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }() // read-only

		divs, err := s.ChildrenOf(id)
		if err != nil {
			return err
		}
		tree.SortByName(divs)

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, d := range divs {
			fmt.Fprintf(w, "%s\t%s\t%v\n", d.ID, d.Label(), d.HasChildren)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(childrenCmd)
}
