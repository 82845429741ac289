package ai

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

type testNode struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type testGraph struct {
	SchemaVersion string     `json:"schema_version"`
	Nodes         []testNode `json:"nodes"`
}

func TestUnmarshalFlexible_ObjectVariants(t *testing.T) {
	want := testGraph{SchemaVersion: "1.0.0", Nodes: []testNode{{ID: "org_1", Name: "Acme"}}}

	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "valid json object",
			input: `{"schema_version":"1.0.0","nodes":[{"id":"org_1","name":"Acme"}]}`,
		},
		{
			name:  "unquoted keys and single quotes",
			input: `{schema_version: '1.0.0', nodes: [{id: 'org_1', name: 'Acme'}]}`,
		},
		{
			name:  "trailing comma",
			input: `{"schema_version":"1.0.0","nodes":[{"id":"org_1","name":"Acme"},],}`,
		},
		{
			name:  "missing end brackets",
			input: `{"schema_version":"1.0.0","nodes":[{"id":"org_1","name":"Acme"`,
		},
		{
			name:  "stringified json object",
			input: `"{\"schema_version\":\"1.0.0\",\"nodes\":[{\"id\":\"org_1\",\"name\":\"Acme\"}]}"`,
		},
		{
			name:  "markdown fence",
			input: "```json\n{\"schema_version\":\"1.0.0\",\"nodes\":[{\"id\":\"org_1\",\"name\":\"Acme\"}]}\n```",
		},
		{
			name:  "prose around the object",
			input: "Here is the graph:\n{\"schema_version\":\"1.0.0\",\"nodes\":[{\"id\":\"org_1\",\"name\":\"Acme\"}]}\nDone.",
		},
		{
			name:  "duplicate leading brace",
			input: "{\n{\n  \"schema_version\": \"1.0.0\", \"nodes\": [{\"id\": \"org_1\", \"name\": \"Acme\"}]\n}\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got testGraph
			if err := UnmarshalFlexible(tc.input, &got); err != nil {
				t.Fatalf("UnmarshalFlexible() error = %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("UnmarshalFlexible() got = %+v, want %+v", got, want)
			}
		})
	}
}

func TestUnmarshalFlexible_ArrayVariants(t *testing.T) {
	input := `[{id:'org_1'},{id:'org_2',}]`
	var got []testNode
	if err := UnmarshalFlexible(input, &got); err != nil {
		t.Fatalf("UnmarshalFlexible() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != "org_1" || got[1].ID != "org_2" {
		t.Fatalf("UnmarshalFlexible() got = %+v, want org_1 and org_2", got)
	}
}

func TestUnmarshalFlexible_Unrecoverable(t *testing.T) {
	for _, input := range []string{"", "   ", "hello"} {
		var got testGraph
		if err := UnmarshalFlexible(input, &got); err == nil {
			t.Fatalf("UnmarshalFlexible(%q) expected error", input)
		}
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain object", `{"a":1}`, `{"a":1}`},
		{"fenced with language", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"fenced without language", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"leading prose", `Sure! {"a":1} hope this helps`, `{"a":1}`},
		{"no object", "nothing here", "nothing here"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractJSON(tc.input); got != tc.want {
				t.Fatalf("ExtractJSON() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestGenerateSchemaDisallowsAdditionalProperties(t *testing.T) {
	schema := GenerateSchema(&testGraph{})
	raw, err := json.Marshal(schema)
	if err != nil {
		t.Fatalf("marshal schema: %v", err)
	}
	data := string(raw)
	if !strings.Contains(data, `"additionalProperties":false`) {
		t.Fatalf("expected closed schema, got %s", data)
	}
	if !strings.Contains(data, `"schema_version"`) {
		t.Fatalf("expected schema_version property, got %s", data)
	}
}

func TestApplyOptions(t *testing.T) {
	got := ApplyOptions(
		GenerateOptions{Model: "base", Temperature: 0.3},
		WithModel("override"),
		WithSystemPrompts("a", "b"),
		WithTemperature(0),
	)
	want := GenerateOptions{Model: "override", SystemPrompts: []string{"a", "b"}, Temperature: 0}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ApplyOptions() = %+v, want %+v", got, want)
	}
}

func TestModelMetricsAdd(t *testing.T) {
	var m ModelMetrics
	m.Add(ModelMetrics{Requests: 1, InputTokens: 100, OutputTokens: 50, TotalTokens: 150, DurationMs: 1000})
	m.Add(ModelMetrics{Requests: 1, InputTokens: 100, OutputTokens: 50, TotalTokens: 150, DurationMs: 1000})

	if m.Requests != 2 || m.TotalTokens != 300 || m.DurationMs != 2000 {
		t.Fatalf("unexpected totals: %+v", m)
	}
	if m.TokenPerSecond != 150 {
		t.Fatalf("expected 150 tokens/s, got %v", m.TokenPerSecond)
	}
}
