package cli

import (
	"fmt"

	"github.com/OFFIS-RIT/findetective/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	cleanOut     string
	cleanMermaid string
)

var cleanCmd = &cobra.Command{
	Use:   "clean <graph.json>",
	Short: "Remove meaningless nodes from a graph file",
	Long: `Clean drops nodes whose names are bare numbers, table cell references or
units without context, together with their relationships and any nodes
left unconnected.

Example:
  findetective clean graph_output.json --out graph_clean.json --mermaid graph_clean.mmd`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cleanOut
		if out == "" {
			out = args[0]
		}
		g, report, err := pipeline.CleanFile(args[0], out, cleanMermaid)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d nodes, %d relationships, %d orphans -> %s (%d nodes, %d relationships)\n",
			report.MeaninglessNodes, report.Relationships, report.OrphanNodes, out, len(g.Nodes), len(g.Relationships))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)

	cleanCmd.Flags().StringVar(&cleanOut, "out", "", "output path (default overwrites the input)")
	cleanCmd.Flags().StringVar(&cleanMermaid, "mermaid", "", "also write a Mermaid diagram to this path")
}
