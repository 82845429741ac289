package pipeline

import (
	"fmt"

	"github.com/OFFIS-RIT/findetective/internal/config"
	"github.com/OFFIS-RIT/findetective/pkg/ai"
	oai "github.com/OFFIS-RIT/findetective/pkg/ai/ollama"
	gai "github.com/OFFIS-RIT/findetective/pkg/ai/openai"
	"github.com/OFFIS-RIT/findetective/pkg/graph"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// sdkRetries is the transport level retry count of the OpenAI SDK.
const sdkRetries = 2

// NewAIClient creates the model client selected by cfg.Provider.
func NewAIClient(cfg *config.Config) (ai.GraphAIClient, error) {
	switch cfg.Provider {
	case ai.ProviderOllama:
		client, err := oai.NewGraphOllamaClient(oai.NewGraphOllamaClientParams{
			Model:                 cfg.Ollama.Model,
			BaseURL:               cfg.Ollama.BaseURL,
			APIKey:                cfg.Ollama.APIKey,
			MaxConcurrentRequests: int64(cfg.Ollama.MaxConcurrent),
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	case ai.ProviderGemini:
		client, err := gai.NewGraphGeminiClient(gai.NewGraphOpenAIClientParams{
			Model:      cfg.Gemini.Model,
			APIKey:     cfg.Gemini.APIKey,
			MaxRetries: sdkRetries,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	case ai.ProviderOpenAI:
		client, err := gai.NewGraphOpenAIClient(gai.NewGraphOpenAIClientParams{
			Model:      cfg.OpenAI.Model,
			BaseURL:    cfg.OpenAI.BaseURL,
			APIKey:     cfg.OpenAI.APIKey,
			MaxRetries: sdkRetries,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// NewProvider wraps client in an extraction provider and applies the rate
// limit and result cache configured in cfg.
func NewProvider(cfg *config.Config, client ai.GraphAIClient) graph.ExtractionProvider {
	opts := make([]ai.GenerateOption, 0, 1)
	if cfg.Temperature > 0 {
		opts = append(opts, ai.WithTemperature(cfg.Temperature))
	}

	var provider graph.ExtractionProvider = graph.NewLLMProvider(graph.NewLLMProviderParams{
		Client:     client,
		Structured: cfg.Structured,
		Options:    opts,
	})
	return decorate(cfg, provider)
}

func decorate(cfg *config.Config, provider graph.ExtractionProvider) graph.ExtractionProvider {
	if cfg.RateLimit > 0 {
		provider = graph.WithRateLimit(provider, rate.NewLimiter(rate.Limit(cfg.RateLimit), 1))
	}
	// The cache sits outside the limiter so hits are never throttled.
	if cfg.CacheTTL > 0 {
		provider = graph.WithCache(provider, cache.New(cfg.CacheTTL, 2*cfg.CacheTTL))
	}
	return provider
}
