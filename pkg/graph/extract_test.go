package graph

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/OFFIS-RIT/findetective/pkg/ai"
	"github.com/OFFIS-RIT/findetective/pkg/common"
)

type mockAIClient struct {
	reply      string
	err        error
	prompts    []string
	formatName string
	opts       ai.GenerateOptions
}

func (m *mockAIClient) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	m.prompts = append(m.prompts, prompt)
	m.opts = ai.ApplyOptions(ai.GenerateOptions{}, opts...)
	return m.reply, m.err
}

func (m *mockAIClient) GenerateCompletionWithFormat(
	ctx context.Context,
	name string,
	description string,
	prompt string,
	out any,
	opts ...ai.GenerateOption,
) error {
	m.prompts = append(m.prompts, prompt)
	m.formatName = name
	m.opts = ai.ApplyOptions(ai.GenerateOptions{}, opts...)
	if m.err != nil {
		return m.err
	}
	return json.Unmarshal([]byte(m.reply), out)
}

func (m *mockAIClient) LoadModel(ctx context.Context, opts ...ai.GenerateOption) error { return nil }
func (m *mockAIClient) ResetMetrics()                                                {}
func (m *mockAIClient) GetMetrics() ai.ModelMetrics                                  { return ai.ModelMetrics{} }

const sampleReply = "Here is the graph:\n```json\n" + `{
  "schema_version": "1.0.0",
  "nodes": [
    {"id": "org_1", "type": "Organization", "name": "Acme"},
    {"id: risk_1": "RiskFactor", "name": "Currency volatility"},
    {"id": "amount_1", "type": "DollarAmount", "name": "$5M", "context": "FY24 revenue"},
    {"id": "x_1", "type": "Person", "name": "Jane"}
  ],
  "relationships": [
    {"source": "org_1", "target": "risk_1", "relation": "faces risk", "confidence": 0.9},
    {"source": "org_1", "target": "amount_1", "relation": "REPORTS_AMOUNT", "confidence": 1.7},
    {"source": "org_1", "target": "risk_1", "relation": "OPERATES"}
  ]
}` + "\n```"

func TestParseExtraction(t *testing.T) {
	got, err := ParseExtraction(sampleReply)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := &common.Graph{
		SchemaVersion: "1.0.0",
		Nodes: []common.Node{
			node("org_1", common.NodeTypeOrganization, "Acme"),
			node("risk_1", common.NodeTypeRiskFactor, "Currency volatility"),
			{ID: "amount_1", Type: common.NodeTypeMonetaryAmount, Name: "$5M", Context: "FY24 revenue"},
		},
		Relationships: []common.Relationship{
			{Source: "org_1", Target: "risk_1", Relation: common.RelationHasRisk, Confidence: common.Float(0.9)},
			rel("org_1", "amount_1", common.RelationReportsAmount),
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseExtraction\n got: %#v\nwant: %#v", got, want)
	}
}

func TestParseExtractionDefaults(t *testing.T) {
	got, err := ParseExtraction(`{"nodes": [{"id": "o", "type": "company", "context": "A listed company"}]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.SchemaVersion != common.SchemaVersion {
		t.Fatalf("schema version = %q", got.SchemaVersion)
	}
	if len(got.Nodes) != 1 || got.Nodes[0].Name != "A listed company" {
		t.Fatalf("nodes = %#v", got.Nodes)
	}
	if got.Relationships == nil {
		t.Fatalf("expected non-nil relationships")
	}
}

func TestParseExtractionInvalid(t *testing.T) {
	if _, err := ParseExtraction("I could not find any entities."); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLLMProviderPlain(t *testing.T) {
	client := &mockAIClient{reply: sampleReply}
	provider := NewLLMProvider(NewLLMProviderParams{
		Client:  client,
		Options: []ai.GenerateOption{ai.WithTemperature(0.2)},
	})

	g, err := provider.Extract(context.Background(), "chunk text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(g.Nodes) != 3 {
		t.Fatalf("nodes = %d, want 3", len(g.Nodes))
	}
	if len(client.prompts) != 1 || client.prompts[0] != "chunk text" {
		t.Fatalf("prompts = %v", client.prompts)
	}
	if len(client.opts.SystemPrompts) != 1 || client.opts.SystemPrompts[0] != ai.ExtractionPrompt {
		t.Fatalf("system prompt not set: %v", client.opts.SystemPrompts)
	}
	if client.opts.Temperature != 0.2 {
		t.Fatalf("temperature = %v", client.opts.Temperature)
	}
}

func TestLLMProviderStructured(t *testing.T) {
	client := &mockAIClient{reply: `{
		"schema_version": "1.0.0",
		"nodes": [
			{"id": "org_1", "type": "Organization", "name": "Acme", "context": ""},
			{"id": "risk_1", "type": "RiskFactor", "name": "Inflation", "context": ""}
		],
		"relationships": [{"source": "org_1", "target": "risk_1", "relation": "HAS_RISK", "confidence": null}]
	}`}
	provider := NewLLMProvider(NewLLMProviderParams{Client: client, Structured: true})

	g, err := provider.Extract(context.Background(), "text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.formatName != ai.ExtractionFormatName {
		t.Fatalf("format name = %q", client.formatName)
	}
	if len(g.Nodes) != 2 || len(g.Relationships) != 1 || g.Relationships[0].Confidence != nil {
		t.Fatalf("graph = %#v", g)
	}
}

func TestLLMProviderError(t *testing.T) {
	boom := errors.New("boom")
	provider := NewLLMProvider(NewLLMProviderParams{Client: &mockAIClient{err: boom}})
	if _, err := provider.Extract(context.Background(), "text"); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}
