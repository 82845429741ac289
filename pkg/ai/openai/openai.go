package openai

import (
	"errors"
	"sync"

	"github.com/OFFIS-RIT/findetective/pkg/ai"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// GeminiBaseURL is Google's OpenAI compatible endpoint for Gemini models.
const GeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// GraphOpenAIClient implements ai.GraphAIClient on top of the OpenAI chat
// completions API. Any server speaking that API can be used by setting a
// base URL, which is how Gemini is reached.
//
// A GraphOpenAIClient should be created using NewGraphOpenAIClient.
type GraphOpenAIClient struct {
	model   string
	baseURL string

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	ChatClient *openai.Client
}

// NewGraphOpenAIClientParams configures a GraphOpenAIClient.
//
// BaseURL is optional and defaults to the public OpenAI API. MaxRetries is
// the transport level retry count of the SDK; extraction retries are
// handled by the graph client.
type NewGraphOpenAIClientParams struct {
	Model      string
	BaseURL    string
	APIKey     string
	MaxRetries int
}

// NewGraphOpenAIClient creates a client for the OpenAI API or a compatible server.
//
//	client, err := openai.NewGraphOpenAIClient(openai.NewGraphOpenAIClientParams{
//		Model:  "gpt-4o",
//		APIKey: os.Getenv("OPENAI_API_KEY"),
//	})
func NewGraphOpenAIClient(params NewGraphOpenAIClientParams) (*GraphOpenAIClient, error) {
	if params.APIKey == "" {
		return nil, errors.New("openai: api key is required")
	}
	if params.Model == "" {
		return nil, errors.New("openai: model is required")
	}

	return &GraphOpenAIClient{
		model:      params.Model,
		baseURL:    params.BaseURL,
		ChatClient: newOpenaiClient(params.BaseURL, params.APIKey, params.MaxRetries),
	}, nil
}

// NewGraphGeminiClient creates a client for Gemini through its OpenAI
// compatible endpoint.
func NewGraphGeminiClient(params NewGraphOpenAIClientParams) (*GraphOpenAIClient, error) {
	if params.BaseURL == "" {
		params.BaseURL = GeminiBaseURL
	}
	return NewGraphOpenAIClient(params)
}

func newOpenaiClient(baseURL, apiKey string, maxRetries int) *openai.Client {
	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(maxRetries),
	}
	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(options...)
	return &client
}

// ResetMetrics clears the accumulated token and timing metrics.
func (c *GraphOpenAIClient) ResetMetrics() {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	c.metrics = ai.ModelMetrics{}
}

// GetMetrics returns the metrics accumulated since the last reset.
func (c *GraphOpenAIClient) GetMetrics() ai.ModelMetrics {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	return c.metrics
}

func (c *GraphOpenAIClient) modifyMetrics(m ai.ModelMetrics) {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	c.metrics.Add(m)
}
