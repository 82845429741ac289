package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/OFFIS-RIT/findetective/internal/config"
	"github.com/OFFIS-RIT/findetective/internal/pipeline"
	"github.com/OFFIS-RIT/findetective/internal/storage"

	"github.com/spf13/cobra"
)

var (
	runOutJSON    string
	runOutMermaid string
	runParallel   int
	runNoChunking bool
)

var runCmd = &cobra.Command{
	Use:   "run [report.txt]",
	Short: "Extract a knowledge graph from a report",
	Long: `Run splits the report into chunks, extracts a partial graph from each
chunk, merges them, repairs the result and writes graph JSON and Mermaid.

Chunks that fail are skipped. The run only fails when every chunk fails or
the merged graph is unusable.

Example:
  findetective run data/raw_report.txt
  findetective run report.txt --out graph.json --mermaid graph.mmd --parallel 4`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runOutJSON, "out", "", "graph JSON output path (default from OUTPUT_JSON)")
	runCmd.Flags().StringVar(&runOutMermaid, "mermaid", "", "Mermaid output path (default from OUTPUT_MERMAID)")
	runCmd.Flags().IntVar(&runParallel, "parallel", 0, "chunks extracted concurrently (default from PARALLEL_CHUNKS)")
	runCmd.Flags().BoolVar(&runNoChunking, "no-chunking", false, "send the whole report as one chunk")
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := applyRunFlags(cfg); err != nil {
		return err
	}

	input := cfg.InputPath
	if len(args) == 1 {
		input = args[0]
	}

	aiClient, err := pipeline.NewAIClient(cfg)
	if err != nil {
		return err
	}

	var bucket *storage.Bucket
	if cfg.S3.Enabled() {
		client, err := storage.NewS3Client(ctx, storage.NewS3ClientParams{
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
		})
		if err != nil {
			return err
		}
		bucket = storage.NewBucket(client, cfg.S3.Bucket)
	}

	p, err := pipeline.New(pipeline.NewPipelineParams{
		Config:   cfg,
		AIClient: aiClient,
		Bucket:   bucket,
	})
	if err != nil {
		return err
	}

	summary, err := p.Run(ctx, input)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s: %d/%d chunks extracted, %d skipped\n",
		summary.RunID, summary.Succeeded, summary.Chunks, summary.Skipped)
	for _, f := range summary.Failures {
		fmt.Fprintf(out, "  skipped %v\n", f)
	}
	fmt.Fprintf(out, "Repaired: %d relationships, %d nodes removed\n",
		summary.Repair.RemovedRelationships(), summary.Repair.RemovedNodes())
	fmt.Fprintf(out, "Graph: %d nodes, %d relationships -> %s\n",
		summary.Nodes, summary.Relationships, cfg.OutputJSON)
	if cfg.OutputMermaid != "" {
		fmt.Fprintf(out, "Diagram: %s\n", cfg.OutputMermaid)
	}
	return nil
}

func applyRunFlags(cfg *config.Config) error {
	if runOutJSON != "" {
		cfg.OutputJSON = runOutJSON
	}
	if runOutMermaid != "" {
		cfg.OutputMermaid = runOutMermaid
	}
	if runParallel != 0 {
		cfg.ParallelChunks = runParallel
	}
	if runNoChunking {
		cfg.Chunk.Enabled = false
	}
	return cfg.Validate()
}
