package cli

import (
	"fmt"

	"github.com/OFFIS-RIT/findetective/internal/pipeline"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <graph.json>",
	Short: "Check a graph file without changing it",
	Long: `Validate loads a graph file and checks that node ids are unique and every
relationship references existing nodes with an allowed type combination.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := pipeline.ValidateFile(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: valid (%d nodes, %d relationships)\n",
			args[0], len(g.Nodes), len(g.Relationships))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
