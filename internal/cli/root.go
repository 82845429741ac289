// Package cli implements the findetective command line.
package cli

import (
	"fmt"

	"github.com/OFFIS-RIT/findetective/internal/util"
	"github.com/OFFIS-RIT/findetective/pkg/logger"
	"github.com/OFFIS-RIT/findetective/pkg/logger/console"

	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

var (
	envFiles []string
	debug    bool
)

var rootCmd = &cobra.Command{
	Use:   "findetective",
	Short: "Extract financial risk knowledge graphs from annual reports",
	Long: `findetective reads the text of a financial report, asks a language model
to extract organizations, risk factors and monetary amounts chunk by chunk,
and merges the results into one validated knowledge graph.

The graph is written as JSON and as a Mermaid flowchart.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		util.LoadEnv(envFiles...)
		if !cmd.Flags().Changed("debug") {
			debug = util.GetEnvBool("DEBUG", false)
		}
		logger.Init(console.NewConsoleLogger(console.ConsoleLoggerParams{
			Debug: debug,
		}))
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "findetective %s\n", Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env", nil, "additional .env files to load")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging (default from DEBUG)")

	rootCmd.AddCommand(versionCmd)
}
