package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/OFFIS-RIT/findetective/pkg/ai"
	"github.com/OFFIS-RIT/findetective/pkg/common"
	"github.com/OFFIS-RIT/findetective/pkg/logger"
)

type extractionNode struct {
	ID      string `json:"id"`
	Type    string `json:"type" jsonschema:"enum=Organization,enum=RiskFactor,enum=MonetaryAmount"`
	Name    string `json:"name"`
	Context string `json:"context"`
}

type extractionRelationship struct {
	Source     string   `json:"source"`
	Target     string   `json:"target"`
	Relation   string   `json:"relation"`
	Confidence *float64 `json:"confidence" jsonschema:"minimum=0,maximum=1"`
}

// extractionOutput is the schema requested from models that support
// structured output.
type extractionOutput struct {
	SchemaVersion string                   `json:"schema_version"`
	Nodes         []extractionNode         `json:"nodes"`
	Relationships []extractionRelationship `json:"relationships"`
}

// looseExtraction accepts the free-form JSON of models without structured
// output, where node objects are sometimes malformed.
type looseExtraction struct {
	SchemaVersion string                   `json:"schema_version"`
	Nodes         []map[string]any         `json:"nodes"`
	Relationships []extractionRelationship `json:"relationships"`
}

// LLMProvider extracts partial graphs with a language model.
type LLMProvider struct {
	client     ai.GraphAIClient
	structured bool
	opts       []ai.GenerateOption
}

// NewLLMProviderParams configures an LLMProvider.
//
// Structured requests the JSON schema response format; without it the
// model answers in free text and the JSON is recovered from the reply.
type NewLLMProviderParams struct {
	Client     ai.GraphAIClient
	Structured bool
	Options    []ai.GenerateOption
}

// NewLLMProvider creates an ExtractionProvider backed by a GraphAIClient.
func NewLLMProvider(params NewLLMProviderParams) *LLMProvider {
	opts := append([]ai.GenerateOption{ai.WithSystemPrompts(ai.ExtractionPrompt)}, params.Options...)
	return &LLMProvider{
		client:     params.Client,
		structured: params.Structured,
		opts:       opts,
	}
}

// Extract asks the model for the graph of text and normalizes the answer.
func (p *LLMProvider) Extract(ctx context.Context, text string) (*common.Graph, error) {
	if p.structured {
		var out extractionOutput
		if err := p.client.GenerateCompletionWithFormat(
			ctx,
			ai.ExtractionFormatName,
			ai.ExtractionFormatDescription,
			text,
			&out,
			p.opts...,
		); err != nil {
			return nil, err
		}
		return normalizeExtraction(out)
	}

	content, err := p.client.GenerateCompletion(ctx, text, p.opts...)
	if err != nil {
		return nil, err
	}
	return ParseExtraction(content)
}

// ParseExtraction converts a free-form model reply into a graph. It strips
// markdown fences, repairs malformed JSON and node objects, maps type and
// relation synonyms onto the known vocabulary and drops what cannot be
// mapped. The result must pass struct validation.
func ParseExtraction(content string) (*common.Graph, error) {
	var loose looseExtraction
	if err := ai.UnmarshalFlexible(ai.ExtractJSON(content), &loose); err != nil {
		return nil, fmt.Errorf("invalid extraction output: %w", err)
	}

	out := extractionOutput{
		SchemaVersion: loose.SchemaVersion,
		Nodes:         make([]extractionNode, 0, len(loose.Nodes)),
		Relationships: loose.Relationships,
	}
	for _, raw := range loose.Nodes {
		if n, ok := fixMalformedNode(raw); ok {
			out.Nodes = append(out.Nodes, n)
		}
	}
	return normalizeExtraction(out)
}

// fixMalformedNode reads a node object, accepting the `"id: risk_1":
// "RiskFactor"` shape some models produce in place of separate id and type.
func fixMalformedNode(raw map[string]any) (extractionNode, bool) {
	var n extractionNode
	for key, value := range raw {
		s, _ := value.(string)
		switch {
		case key == "id":
			n.ID = s
		case key == "type":
			n.Type = s
		case key == "name":
			n.Name = s
		case key == "context":
			n.Context = s
		case strings.HasPrefix(key, "id:"):
			n.ID = strings.TrimSpace(strings.TrimPrefix(key, "id:"))
			n.Type = s
		}
	}
	return n, n.ID != "" && n.Type != ""
}

func normalizeExtraction(out extractionOutput) (*common.Graph, error) {
	version := strings.TrimSpace(out.SchemaVersion)
	if version == "" {
		version = common.SchemaVersion
	}
	g := common.NewGraph(version)

	droppedNodes, droppedRels := 0, 0
	for _, n := range out.Nodes {
		nodeType, ok := common.ParseNodeType(n.Type)
		name := strings.TrimSpace(n.Name)
		if name == "" {
			name = strings.TrimSpace(n.Context)
		}
		id := strings.TrimSpace(n.ID)
		if !ok || name == "" || id == "" {
			droppedNodes++
			continue
		}
		g.Nodes = append(g.Nodes, common.Node{
			ID:      id,
			Type:    nodeType,
			Name:    name,
			Context: strings.TrimSpace(n.Context),
		})
	}

	for _, r := range out.Relationships {
		relation, ok := common.ParseRelationType(r.Relation)
		source, target := strings.TrimSpace(r.Source), strings.TrimSpace(r.Target)
		if !ok || source == "" || target == "" {
			droppedRels++
			continue
		}
		rel := common.Relationship{Source: source, Target: target, Relation: relation}
		if r.Confidence != nil && *r.Confidence >= 0 && *r.Confidence <= 1 {
			rel.Confidence = common.Float(*r.Confidence)
		}
		g.Relationships = append(g.Relationships, rel)
	}

	if droppedNodes > 0 || droppedRels > 0 {
		logger.Debug("[Graph] Dropped unusable extraction items", "nodes", droppedNodes, "relationships", droppedRels)
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}
