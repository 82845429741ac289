// Package pipeline runs a full extraction: read the report, split it,
// extract and merge partial graphs, repair the result and write it out.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/OFFIS-RIT/findetective/internal/config"
	"github.com/OFFIS-RIT/findetective/internal/storage"
	"github.com/OFFIS-RIT/findetective/internal/util"
	"github.com/OFFIS-RIT/findetective/pkg/ai"
	"github.com/OFFIS-RIT/findetective/pkg/chunk"
	"github.com/OFFIS-RIT/findetective/pkg/common"
	"github.com/OFFIS-RIT/findetective/pkg/graph"
	"github.com/OFFIS-RIT/findetective/pkg/logger"
	"github.com/OFFIS-RIT/findetective/pkg/render"
)

// ErrEmptyInput is returned when the report contains no text.
var ErrEmptyInput = errors.New("input contains no text")

// Pipeline runs extractions with one configuration.
type Pipeline struct {
	cfg      *config.Config
	provider graph.ExtractionProvider
	aiClient ai.GraphAIClient
	bucket   *storage.Bucket
}

// NewPipelineParams configures a Pipeline.
//
// AIClient is used for model preloading and metrics and may be nil when
// Provider does not talk to a model. Provider defaults to an LLM provider
// on AIClient. Bucket enables uploads and may be nil.
type NewPipelineParams struct {
	Config   *config.Config
	Provider graph.ExtractionProvider
	AIClient ai.GraphAIClient
	Bucket   *storage.Bucket
}

// New creates a Pipeline.
func New(params NewPipelineParams) (*Pipeline, error) {
	if params.Config == nil {
		return nil, errors.New("pipeline: config is required")
	}
	provider := params.Provider
	if provider == nil {
		if params.AIClient == nil {
			return nil, errors.New("pipeline: either a provider or an ai client is required")
		}
		provider = NewProvider(params.Config, params.AIClient)
	}
	return &Pipeline{
		cfg:      params.Config,
		provider: provider,
		aiClient: params.AIClient,
		bucket:   params.Bucket,
	}, nil
}

// Summary describes a finished run.
type Summary struct {
	RunID         string
	Chunks        int
	Succeeded     int
	Skipped       int
	Failures      []*graph.ExtractionFailure
	Repair        graph.RepairReport
	Nodes         int
	Relationships int
	Metrics       ai.ModelMetrics
	Duration      time.Duration
	Graph         *common.Graph
}

// Run extracts the knowledge graph of the report at inputPath and writes
// the configured outputs.
func (p *Pipeline) Run(ctx context.Context, inputPath string) (*Summary, error) {
	start := time.Now()

	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	text := util.SanitizeReportText(string(raw))
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%s: %w", inputPath, ErrEmptyInput)
	}

	chunks, err := chunk.Plan(text, p.cfg.Chunk)
	if err != nil {
		return nil, err
	}
	logger.Info("[Pipeline] Planned chunks", "input", inputPath, "chunks", len(chunks), "estimated_tokens", chunk.EstimateTokens(text))
	if p.cfg.Debug {
		if tokens, err := chunk.CountTokens(text, chunk.DefaultEncoding); err == nil {
			logger.Debug("[Pipeline] Counted input tokens", "tokens", tokens, "encoding", chunk.DefaultEncoding)
		}
	}

	if p.aiClient != nil {
		p.aiClient.ResetMetrics()
		if err := p.aiClient.LoadModel(ctx); err != nil {
			return nil, fmt.Errorf("failed to load model: %w", err)
		}
	}

	progress := util.NewRunProgress(len(chunks))
	client, err := graph.NewGraphClient(graph.NewGraphClientParams{
		ParallelChunks: p.cfg.ParallelChunks,
		ChunkTimeout:   p.cfg.ChunkTimeout,
		MaxRetries:     p.cfg.MaxRetries,
		RetryBackoff:   p.cfg.RetryBackoff,
		OnChunkOutcome: func(o graph.ChunkOutcome) {
			s := progress.Done(!o.Succeeded())
			logger.Info("[Pipeline] Progress", "chunk", o.Chunk, "extracted", s.Extracted, "failed", s.Failed,
				"percent", s.Percentage, "remaining", s.TimeRemaining.Round(time.Second))
		},
	})
	if err != nil {
		return nil, err
	}

	result, err := client.Run(ctx, chunks, p.provider, func(n, total int, soFar *common.Graph) {
		p.writeSnapshot(ctx, n, total, soFar)
	})
	if err != nil {
		return nil, err
	}

	final, report, err := graph.ValidateAndRepair(result.Graph)
	if err != nil {
		return nil, fmt.Errorf("extracted graph is unusable: %w", err)
	}

	if err := p.writeOutputs(ctx, final); err != nil {
		return nil, err
	}

	summary := &Summary{
		RunID:         result.RunID,
		Chunks:        len(chunks),
		Succeeded:     result.Succeeded,
		Skipped:       result.Skipped,
		Failures:      result.Failures(),
		Repair:        report,
		Nodes:         len(final.Nodes),
		Relationships: len(final.Relationships),
		Duration:      time.Since(start),
		Graph:         final,
	}
	if p.aiClient != nil {
		summary.Metrics = p.aiClient.GetMetrics()
	}

	logger.Info("[Pipeline] Run finished",
		"run", summary.RunID,
		"chunks", summary.Chunks,
		"skipped", summary.Skipped,
		"repaired_relationships", report.RemovedRelationships(),
		"repaired_nodes", report.RemovedNodes(),
		"nodes", summary.Nodes,
		"relationships", summary.Relationships,
		"duration", summary.Duration.Round(time.Millisecond),
	)
	if summary.Metrics.Requests > 0 {
		logger.Info("[Pipeline] Model usage",
			"requests", summary.Metrics.Requests,
			"input_tokens", summary.Metrics.InputTokens,
			"output_tokens", summary.Metrics.OutputTokens,
			"tokens_per_second", summary.Metrics.TokenPerSecond,
		)
	}
	return summary, nil
}

// writeSnapshot persists the merged graph so far. Failures are logged and
// never abort the run.
func (p *Pipeline) writeSnapshot(ctx context.Context, n, total int, soFar *common.Graph) {
	if !p.cfg.Snapshots {
		return
	}
	if err := common.WriteGraphFile(p.cfg.OutputJSON, soFar); err != nil {
		logger.Warn("[Pipeline] Failed to write snapshot", "chunk", n, "err", err)
	}
	if p.cfg.OutputMermaid != "" {
		if err := render.WriteMermaidFile(p.cfg.OutputMermaid, soFar); err != nil {
			logger.Warn("[Pipeline] Failed to write snapshot diagram", "chunk", n, "err", err)
		}
	}
	if p.bucket != nil && p.cfg.S3.Snapshots {
		key := p.objectKey(fmt.Sprintf("snapshots/chunk_%04d_of_%04d.json", n, total))
		if err := p.bucket.PutGraph(ctx, key, soFar); err != nil {
			logger.Warn("[Pipeline] Failed to upload snapshot", "chunk", n, "key", key, "err", err)
		}
	}
}

func (p *Pipeline) writeOutputs(ctx context.Context, g *common.Graph) error {
	if err := common.WriteGraphFile(p.cfg.OutputJSON, g); err != nil {
		return err
	}
	logger.Info("[Pipeline] Wrote graph", "path", p.cfg.OutputJSON)

	if p.cfg.OutputMermaid != "" {
		if err := render.WriteMermaidFile(p.cfg.OutputMermaid, g); err != nil {
			return err
		}
		logger.Info("[Pipeline] Wrote diagram", "path", p.cfg.OutputMermaid)
	}

	if p.bucket == nil {
		return nil
	}
	key := p.objectKey(filepath.Base(p.cfg.OutputJSON))
	if err := p.bucket.PutGraph(ctx, key, g); err != nil {
		return err
	}
	if p.cfg.OutputMermaid != "" {
		mkey := p.objectKey(filepath.Base(p.cfg.OutputMermaid))
		if err := p.bucket.PutFile(ctx, mkey, []byte(render.Mermaid(g))); err != nil {
			return err
		}
	}
	logger.Info("[Pipeline] Uploaded graph", "key", key)
	return nil
}

func (p *Pipeline) objectKey(name string) string {
	return path.Join(p.cfg.S3.Prefix, name)
}
