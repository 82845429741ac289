package graph

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/OFFIS-RIT/findetective/pkg/common"
	"github.com/OFFIS-RIT/findetective/pkg/logger"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// ExtractionProvider turns the text of one chunk into a partial graph.
// Implementations must be safe for concurrent use.
type ExtractionProvider interface {
	Extract(ctx context.Context, text string) (*common.Graph, error)
}

// ProviderFunc adapts a function to ExtractionProvider.
type ProviderFunc func(ctx context.Context, text string) (*common.Graph, error)

func (f ProviderFunc) Extract(ctx context.Context, text string) (*common.Graph, error) {
	return f(ctx, text)
}

type rateLimitedProvider struct {
	next    ExtractionProvider
	limiter *rate.Limiter
}

// WithRateLimit delays calls to next so they do not exceed the limiter's rate.
// A nil limiter returns next unchanged.
func WithRateLimit(next ExtractionProvider, limiter *rate.Limiter) ExtractionProvider {
	if limiter == nil {
		return next
	}
	return &rateLimitedProvider{next: next, limiter: limiter}
}

func (p *rateLimitedProvider) Extract(ctx context.Context, text string) (*common.Graph, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return p.next.Extract(ctx, text)
}

type cachedProvider struct {
	next  ExtractionProvider
	store *cache.Cache
}

// WithCache memoizes successful extractions by the hash of the chunk text,
// so overlapping reruns of the same document do not pay for a chunk twice.
// Failures are never cached. A nil cache returns next unchanged.
func WithCache(next ExtractionProvider, store *cache.Cache) ExtractionProvider {
	if store == nil {
		return next
	}
	return &cachedProvider{next: next, store: store}
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func (p *cachedProvider) Extract(ctx context.Context, text string) (*common.Graph, error) {
	key := cacheKey(text)
	if v, ok := p.store.Get(key); ok {
		if g, ok := v.(*common.Graph); ok {
			logger.Debug("[Graph] Extraction cache hit", "key", key[:12])
			return g.Clone(), nil
		}
	}

	g, err := p.next.Extract(ctx, text)
	if err != nil {
		return nil, err
	}
	p.store.SetDefault(key, g.Clone())
	return g, nil
}
