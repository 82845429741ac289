// Package config reads the runtime configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/OFFIS-RIT/findetective/internal/util"
	"github.com/OFFIS-RIT/findetective/pkg/ai"
	"github.com/OFFIS-RIT/findetective/pkg/chunk"

	"github.com/go-playground/validator"
)

const (
	DefaultInputPath     = "data/raw_report.txt"
	DefaultOutputJSON    = "data/graph_output.json"
	DefaultOutputMermaid = "visuals/graph.mmd"
)

// ErrInvalidConfig is wrapped by every error returned from Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

type OpenAIConfig struct {
	APIKey  string
	Model   string `validate:"required"`
	BaseURL string
}

type OllamaConfig struct {
	Model         string `validate:"required"`
	BaseURL       string `validate:"required"`
	APIKey        string
	MaxConcurrent int `validate:"gt=0"`
}

type GeminiConfig struct {
	APIKey string
	Model  string `validate:"required"`
}

// S3Config enables uploading results when Bucket is set.
type S3Config struct {
	Bucket    string
	Prefix    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Snapshots bool
}

// Enabled reports whether results should be uploaded.
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// Config is the complete runtime configuration of an extraction run.
type Config struct {
	Provider    string `validate:"oneof=openai ollama gemini"`
	OpenAI      OpenAIConfig
	Ollama      OllamaConfig
	Gemini      GeminiConfig
	Structured  bool
	Temperature float64 `validate:"gte=0,lte=2"`

	Chunk          chunk.Options
	ParallelChunks int           `validate:"gt=0"`
	ChunkTimeout   time.Duration `validate:"gt=0"`
	MaxRetries     int           `validate:"gte=0"`
	RetryBackoff   time.Duration `validate:"gte=0"`
	RateLimit      float64       `validate:"gte=0"`
	CacheTTL       time.Duration `validate:"gte=0"`

	InputPath     string `validate:"required"`
	OutputJSON    string `validate:"required"`
	OutputMermaid string
	Snapshots     bool

	S3    S3Config
	Debug bool
}

// Load reads the configuration from the environment and validates it.
// Call util.LoadEnv first to pick up a .env file.
func Load() (*Config, error) {
	cfg := &Config{
		Provider:    util.GetEnvString("LLM_PROVIDER", ai.ProviderOpenAI),
		Structured:  util.GetEnvBool("LLM_STRUCTURED_OUTPUT", false),
		Temperature: util.GetEnvNumeric("LLM_TEMPERATURE", 0),
		OpenAI: OpenAIConfig{
			APIKey:  util.GetEnv("OPENAI_API_KEY"),
			Model:   util.GetEnvString("OPENAI_MODEL", "gpt-4o"),
			BaseURL: util.GetEnv("OPENAI_BASE_URL"),
		},
		Ollama: OllamaConfig{
			Model:         util.GetEnvString("OLLAMA_MODEL", "llama3:latest"),
			BaseURL:       util.GetEnvString("OLLAMA_BASE_URL", "http://localhost:11434"),
			APIKey:        util.GetEnv("OLLAMA_API_KEY"),
			MaxConcurrent: util.GetEnvInt("OLLAMA_MAX_CONCURRENT", 1),
		},
		Gemini: GeminiConfig{
			APIKey: util.GetEnv("GEMINI_API_KEY"),
			Model:  util.GetEnvString("GEMINI_MODEL", "gemini-2.0-flash"),
		},
		Chunk: chunk.Options{
			Enabled:       util.GetEnvBool("CHUNK_ENABLED", true),
			TargetTokens:  util.GetEnvInt("CHUNK_SIZE_TOKENS", 4000),
			OverlapTokens: util.GetEnvInt("CHUNK_OVERLAP_TOKENS", 200),
		},
		ParallelChunks: util.GetEnvInt("PARALLEL_CHUNKS", 1),
		ChunkTimeout:   util.GetEnvDuration("CHUNK_TIMEOUT", 10*time.Minute),
		MaxRetries:     util.GetEnvInt("MAX_RETRIES", 1),
		RetryBackoff:   util.GetEnvDuration("RETRY_BACKOFF", 2*time.Second),
		RateLimit:      util.GetEnvNumeric("LLM_RATE_LIMIT", 0),
		CacheTTL:       util.GetEnvDuration("EXTRACTION_CACHE_TTL", time.Hour),
		InputPath:      util.GetEnvString("INPUT_PATH", DefaultInputPath),
		OutputJSON:     util.GetEnvString("OUTPUT_JSON", DefaultOutputJSON),
		OutputMermaid:  util.GetEnvString("OUTPUT_MERMAID", DefaultOutputMermaid),
		Snapshots:      util.GetEnvBool("WRITE_SNAPSHOTS", true),
		S3: S3Config{
			Bucket:    util.GetEnv("S3_BUCKET"),
			Prefix:    util.GetEnvString("S3_PREFIX", "graphs"),
			Region:    util.GetEnvString("AWS_REGION", "us-east-1"),
			Endpoint:  util.GetEnv("AWS_ENDPOINT"),
			AccessKey: util.GetEnv("AWS_ACCESS_KEY"),
			SecretKey: util.GetEnv("AWS_SECRET_KEY"),
			Snapshots: util.GetEnvBool("S3_SNAPSHOTS", false),
		},
		Debug: util.GetEnvBool("DEBUG", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field ranges and the rules that span several fields.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed on %q (value %v)", ErrInvalidConfig, fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	switch c.Provider {
	case ai.ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY is required for provider %s", ErrInvalidConfig, c.Provider)
		}
	case ai.ProviderGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("%w: GEMINI_API_KEY is required for provider %s", ErrInvalidConfig, c.Provider)
		}
	}

	if c.S3.Enabled() && c.S3.Region == "" {
		return fmt.Errorf("%w: AWS_REGION is required when S3_BUCKET is set", ErrInvalidConfig)
	}
	if c.S3.AccessKey != "" && c.S3.SecretKey == "" {
		return fmt.Errorf("%w: AWS_SECRET_KEY is required with AWS_ACCESS_KEY", ErrInvalidConfig)
	}
	return nil
}

// Model returns the model name of the selected provider.
func (c *Config) Model() string {
	switch c.Provider {
	case ai.ProviderOllama:
		return c.Ollama.Model
	case ai.ProviderGemini:
		return c.Gemini.Model
	default:
		return c.OpenAI.Model
	}
}
