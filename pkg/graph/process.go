package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/OFFIS-RIT/findetective/internal/util"
	"github.com/OFFIS-RIT/findetective/pkg/common"
	"github.com/OFFIS-RIT/findetective/pkg/logger"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/sync/errgroup"
)

// ProgressFunc is called once per chunk, in chunk order, with the merge of
// every partial graph extracted so far. chunk is 1-based. soFar must be
// treated as read-only.
type ProgressFunc func(chunk, total int, soFar *common.Graph)

// ChunkOutcome describes what happened to one chunk. Failure is nil when
// the chunk produced a graph.
type ChunkOutcome struct {
	Chunk         int
	Nodes         int
	Relationships int
	Duration      time.Duration
	Failure       *ExtractionFailure
}

// Succeeded reports whether the chunk produced a graph.
func (o ChunkOutcome) Succeeded() bool {
	return o.Failure == nil
}

// RunResult is the outcome of a run with at least one successful chunk.
// Graph is the merge of all successful partial graphs and has not been
// validated yet.
type RunResult struct {
	RunID     string
	Graph     *common.Graph
	Outcomes  []ChunkOutcome
	Succeeded int
	Skipped   int
}

// Failures returns the failures of skipped chunks in chunk order.
func (r *RunResult) Failures() []*ExtractionFailure {
	var out []*ExtractionFailure
	for _, o := range r.Outcomes {
		if o.Failure != nil {
			out = append(out, o.Failure)
		}
	}
	return out
}

type chunkResult struct {
	graph    *common.Graph
	err      error
	duration time.Duration
}

// runState is owned by a single Run call and only touched by the goroutine
// emitting results in chunk order.
type runState struct {
	id       string
	total    int
	partials []*common.Graph
	outcomes []ChunkOutcome
	failures []*ExtractionFailure
	soFar    *common.Graph
}

func newRunState(id string, total int) *runState {
	return &runState{
		id:       id,
		total:    total,
		partials: make([]*common.Graph, 0, total),
		outcomes: make([]ChunkOutcome, 0, total),
		soFar:    Merge(nil),
	}
}

func (s *runState) record(chunk int, res chunkResult) ChunkOutcome {
	outcome := ChunkOutcome{Chunk: chunk, Duration: res.duration}
	if res.err != nil {
		outcome.Failure = &ExtractionFailure{Chunk: chunk, Reason: res.err}
		s.failures = append(s.failures, outcome.Failure)
	} else {
		outcome.Nodes = len(res.graph.Nodes)
		outcome.Relationships = len(res.graph.Relationships)
		s.partials = append(s.partials, res.graph)
		s.soFar = Merge(s.partials)
	}
	s.outcomes = append(s.outcomes, outcome)
	return outcome
}

// Run extracts a partial graph from every chunk and merges them.
//
// Up to the client's ParallelChunks chunks are extracted at once, but
// results are applied strictly in chunk order: after each chunk, failed or
// not, onChunkComplete (if set) receives the merged graph so far. A failed
// chunk is recorded as an ExtractionFailure and skipped. When every chunk
// fails Run returns a *TotalExtractionFailure. Canceling ctx aborts the run
// with ctx.Err().
func (g *GraphClient) Run(
	ctx context.Context,
	chunks []string,
	provider ExtractionProvider,
	onChunkComplete ProgressFunc,
) (*RunResult, error) {
	if len(chunks) == 0 {
		return nil, ErrNoChunks
	}
	if provider == nil {
		return nil, errors.New("extraction provider is nil")
	}

	runID, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create run id: %w", err)
	}
	state := newRunState(runID, len(chunks))
	logger.Info("[Graph] Starting extraction", "run", runID, "chunks", len(chunks), "parallel", g.parallelChunks)

	results := make([]chan chunkResult, len(chunks))
	for i := range results {
		results[i] = make(chan chunkResult, 1)
	}

	eg := new(errgroup.Group)
	eg.SetLimit(g.parallelChunks)
	dispatched := make(chan struct{})
	go func() {
		defer close(dispatched)
		for i, text := range chunks {
			eg.Go(func() error {
				results[i] <- g.extractChunk(ctx, i+1, text, provider)
				return nil
			})
		}
	}()
	defer func() {
		<-dispatched
		eg.Wait()
	}()

	for i := range chunks {
		res := <-results[i]
		if ctx.Err() != nil {
			logger.Warn("[Graph] Extraction canceled", "run", runID, "chunk", i+1, "err", ctx.Err())
			return nil, ctx.Err()
		}

		outcome := state.record(i+1, res)
		if outcome.Succeeded() {
			logger.Info("[Graph] Chunk extracted", "run", runID, "chunk", i+1, "total", state.total,
				"nodes", outcome.Nodes, "relationships", outcome.Relationships, "duration", outcome.Duration.Round(time.Millisecond))
		} else {
			logger.Warn("[Graph] Chunk failed, skipping", "run", runID, "chunk", i+1, "total", state.total, "err", res.err)
		}

		if g.onOutcome != nil {
			g.onOutcome(outcome)
		}
		if onChunkComplete != nil {
			onChunkComplete(i+1, state.total, state.soFar)
		}
	}

	if len(state.partials) == 0 {
		logger.Error("[Graph] All chunks failed", "run", runID, "chunks", state.total)
		return nil, newTotalExtractionFailure(state.failures)
	}

	result := &RunResult{
		RunID:     runID,
		Graph:     state.soFar,
		Outcomes:  state.outcomes,
		Succeeded: len(state.partials),
		Skipped:   len(state.failures),
	}
	logger.Info("[Graph] Extraction finished", "run", runID, "succeeded", result.Succeeded, "skipped", result.Skipped,
		"nodes", len(result.Graph.Nodes), "relationships", len(result.Graph.Relationships))
	return result, nil
}

// extractChunk runs the provider for one chunk with per-attempt timeout and
// retries. It never panics and always yields a result.
func (g *GraphClient) extractChunk(ctx context.Context, chunk int, text string, provider ExtractionProvider) (res chunkResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = chunkResult{err: fmt.Errorf("provider panicked: %v", r)}
		}
		res.duration = time.Since(start)
	}()

	if err := ctx.Err(); err != nil {
		return chunkResult{err: err}
	}

	graph, err := util.RetryWithBackoff(ctx, g.maxRetries+1, g.retryBackoff, func(ctx context.Context) (*common.Graph, error) {
		callCtx, cancel := context.WithTimeout(ctx, g.chunkTimeout)
		defer cancel()

		pg, err := provider.Extract(callCtx, text)
		if err != nil {
			if errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
				return nil, fmt.Errorf("timed out after %s: %w", g.chunkTimeout, context.DeadlineExceeded)
			}
			logger.Debug("[Graph] Extraction attempt failed", "chunk", chunk, "err", err)
			return nil, err
		}
		if pg == nil {
			return nil, errors.New("provider returned no graph")
		}
		if err := pg.Validate(); err != nil {
			return nil, err
		}
		return pg, nil
	})
	return chunkResult{graph: graph, err: err}
}
