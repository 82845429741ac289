package graph

import (
	"fmt"
	"time"
)

const (
	defaultChunkTimeout = 10 * time.Minute
	defaultRetryBackoff = 2 * time.Second
)

// GraphClient runs chunk extraction. It holds only configuration; every
// call to Run keeps its own state, so one client can serve concurrent runs.
//
// A GraphClient should be created using NewGraphClient.
type GraphClient struct {
	parallelChunks int
	chunkTimeout   time.Duration
	maxRetries     int
	retryBackoff   time.Duration
	onOutcome      func(ChunkOutcome)
}

// NewGraphClientParams defines the configuration parameters for creating
// a new GraphClient.
//
// ParallelChunks bounds how many chunks are extracted at once (default 1).
// ChunkTimeout caps a single provider call (default 10 minutes).
// MaxRetries is the number of extra attempts after a failed call.
// RetryBackoff is the wait before the first retry; it doubles after each one.
// OnChunkOutcome, if set, sees every chunk outcome in chunk order right
// before the progress callback of a run.
type NewGraphClientParams struct {
	ParallelChunks int
	ChunkTimeout   time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	OnChunkOutcome func(ChunkOutcome)
}

// NewGraphClient creates a GraphClient.
//
//	client, err := graph.NewGraphClient(graph.NewGraphClientParams{
//		ParallelChunks: 4,
//		ChunkTimeout:   5 * time.Minute,
//		MaxRetries:     1,
//	})
func NewGraphClient(params NewGraphClientParams) (*GraphClient, error) {
	if params.MaxRetries < 0 {
		return nil, fmt.Errorf("max retries must not be negative, got %d", params.MaxRetries)
	}
	if params.ChunkTimeout < 0 {
		return nil, fmt.Errorf("chunk timeout must not be negative, got %s", params.ChunkTimeout)
	}

	parallel := params.ParallelChunks
	if parallel <= 0 {
		parallel = 1
	}
	timeout := params.ChunkTimeout
	if timeout == 0 {
		timeout = defaultChunkTimeout
	}
	backoff := params.RetryBackoff
	if backoff == 0 {
		backoff = defaultRetryBackoff
	}

	return &GraphClient{
		parallelChunks: parallel,
		chunkTimeout:   timeout,
		maxRetries:     params.MaxRetries,
		retryBackoff:   backoff,
		onOutcome:      params.OnChunkOutcome,
	}, nil
}
