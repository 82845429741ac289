package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != "openai" || cfg.Model() != "gpt-4o" {
		t.Fatalf("provider/model = %s/%s", cfg.Provider, cfg.Model())
	}
	if !cfg.Chunk.Enabled || cfg.Chunk.TargetTokens != 4000 || cfg.Chunk.OverlapTokens != 200 {
		t.Fatalf("chunk options = %+v", cfg.Chunk)
	}
	if cfg.ParallelChunks != 1 || cfg.ChunkTimeout != 10*time.Minute || cfg.MaxRetries != 1 {
		t.Fatalf("orchestration = %d/%s/%d", cfg.ParallelChunks, cfg.ChunkTimeout, cfg.MaxRetries)
	}
	if cfg.OutputJSON != DefaultOutputJSON || cfg.OutputMermaid != DefaultOutputMermaid || cfg.InputPath != DefaultInputPath {
		t.Fatalf("paths = %s %s %s", cfg.InputPath, cfg.OutputJSON, cfg.OutputMermaid)
	}
	if cfg.S3.Enabled() {
		t.Fatalf("S3 should be disabled without a bucket")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "ollama")
	t.Setenv("OLLAMA_MODEL", "qwen3:8b")
	t.Setenv("CHUNK_ENABLED", "false")
	t.Setenv("CHUNK_SIZE_TOKENS", "1000")
	t.Setenv("CHUNK_OVERLAP_TOKENS", "0")
	t.Setenv("PARALLEL_CHUNKS", "4")
	t.Setenv("CHUNK_TIMEOUT", "90")
	t.Setenv("S3_BUCKET", "reports")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Model() != "qwen3:8b" || cfg.Chunk.Enabled || cfg.ParallelChunks != 4 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.ChunkTimeout != 90*time.Second {
		t.Fatalf("chunk timeout = %s", cfg.ChunkTimeout)
	}
	if !cfg.S3.Enabled() {
		t.Fatalf("S3 should be enabled")
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "unknown provider",
			env:  map[string]string{"LLM_PROVIDER": "anthropic"},
			want: "Provider",
		},
		{
			name: "missing openai key",
			env:  map[string]string{"LLM_PROVIDER": "openai", "OPENAI_API_KEY": ""},
			want: "OPENAI_API_KEY",
		},
		{
			name: "missing gemini key",
			env:  map[string]string{"LLM_PROVIDER": "gemini", "GEMINI_API_KEY": ""},
			want: "GEMINI_API_KEY",
		},
		{
			name: "overlap not below size",
			env:  map[string]string{"LLM_PROVIDER": "ollama", "CHUNK_SIZE_TOKENS": "100", "CHUNK_OVERLAP_TOKENS": "100"},
			want: "OverlapTokens",
		},
		{
			name: "zero chunk size",
			env:  map[string]string{"LLM_PROVIDER": "ollama", "CHUNK_SIZE_TOKENS": "0", "CHUNK_OVERLAP_TOKENS": "0"},
			want: "TargetTokens",
		},
		{
			name: "negative retries",
			env:  map[string]string{"LLM_PROVIDER": "ollama", "MAX_RETRIES": "-1"},
			want: "MaxRetries",
		},
		{
			name: "access key without secret",
			env:  map[string]string{"LLM_PROVIDER": "ollama", "AWS_ACCESS_KEY": "AKIA", "AWS_SECRET_KEY": ""},
			want: "AWS_SECRET_KEY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("err = %v, want ErrInvalidConfig", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want mention of %s", err, tt.want)
			}
		})
	}
}
