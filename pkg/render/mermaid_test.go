package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/OFFIS-RIT/findetective/pkg/common"
)

func TestEscapeLabel(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Acme Corp", "Acme Corp"},
		{"double quotes", `Company "Best"`, "Company 'Best'"},
		{"backticks", "Code `example`", "Code 'example'"},
		{"hash", "Item #1", "Item 1"},
		{"ampersand", "A & B", "A and B"},
		{"angle brackets", "<html>", "html"},
		{"square brackets", "[item]", "(item)"},
		{"curly braces", "{value}", "(value)"},
		{"pipe", "A | B", "A - B"},
		{"newline", "two\nlines", "two lines"},
		{"mixed", `Test "quoted" & <html> [array]`, "Test 'quoted' and html (array)"},
		{"exactly sixty", strings.Repeat("A", 60), strings.Repeat("A", 60)},
		{"too long", strings.Repeat("A", 100), strings.Repeat("A", 57) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EscapeLabel(tt.in); got != tt.want {
				t.Fatalf("EscapeLabel(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNodeShape(t *testing.T) {
	tests := []struct {
		name string
		node common.Node
		want string
	}{
		{
			name: "organization",
			node: common.Node{ID: "org_1", Type: common.NodeTypeOrganization, Name: "Acme"},
			want: `org_1["Acme"]`,
		},
		{
			name: "organization with context",
			node: common.Node{ID: "org_1", Type: common.NodeTypeOrganization, Name: "Acme", Context: "parent"},
			want: `org_1["Acme (parent)"]`,
		},
		{
			name: "risk",
			node: common.Node{ID: "risk_1", Type: common.NodeTypeRiskFactor, Name: "Inflation"},
			want: `risk_1("Inflation")`,
		},
		{
			name: "amount with context",
			node: common.Node{ID: "amount_1", Type: common.NodeTypeMonetaryAmount, Name: "$38.7B", Context: "Revenue"},
			want: `amount_1[/"Revenue: $38.7B"/]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NodeShape(tt.node); got != tt.want {
				t.Fatalf("NodeShape = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNodeShapeTruncatesCombinedLabel(t *testing.T) {
	n := common.Node{
		ID:      "org_1",
		Type:    common.NodeTypeOrganization,
		Name:    strings.Repeat("N", 50),
		Context: strings.Repeat("C", 50),
	}
	got := NodeShape(n)
	label := strings.TrimSuffix(strings.TrimPrefix(got, `org_1["`), `"]`)
	if len(label) != 80 || !strings.HasSuffix(label, "...") {
		t.Fatalf("label = %q (%d chars)", label, len(label))
	}
}

func sampleGraph() *common.Graph {
	return &common.Graph{
		SchemaVersion: "1.0.0",
		Nodes: []common.Node{
			{ID: "org_1", Type: common.NodeTypeOrganization, Name: "Acme"},
			{ID: "risk_1", Type: common.NodeTypeRiskFactor, Name: "Inflation"},
			{ID: "amount_1", Type: common.NodeTypeMonetaryAmount, Name: "$5M"},
		},
		Relationships: []common.Relationship{
			{Source: "org_1", Target: "risk_1", Relation: common.RelationHasRisk},
			{Source: "org_1", Target: "amount_1", Relation: common.RelationReportsAmount},
		},
	}
}

func TestMermaid(t *testing.T) {
	want := `flowchart TD

    %% Node definitions
    org_1["Acme"]
    risk_1("Inflation")
    amount_1[/"$5M"/]

    %% Relationships
    org_1 -->|HAS_RISK| risk_1
    org_1 -->|REPORTS_AMOUNT| amount_1
`
	if got := Mermaid(sampleGraph()); got != want {
		t.Fatalf("Mermaid\n got:\n%s\nwant:\n%s", got, want)
	}
}

func TestPages(t *testing.T) {
	pages := Pages(sampleGraph(), 2)
	if len(pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(pages))
	}
	if !strings.Contains(pages[0], "org_1 -->|HAS_RISK| risk_1") {
		t.Fatalf("first page misses its relationship:\n%s", pages[0])
	}
	if strings.Contains(pages[0], "REPORTS_AMOUNT") || strings.Contains(pages[1], "-->") {
		t.Fatalf("relationship crossing pages was rendered")
	}
	if got := Pages(common.NewGraph("1.0.0"), 0); len(got) != 0 {
		t.Fatalf("empty graph produced %d pages", len(got))
	}
}

func TestWriteMermaidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "visuals", "graph.mmd")
	if err := WriteMermaidFile(path, sampleGraph()); err != nil {
		t.Fatalf("WriteMermaidFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != Mermaid(sampleGraph()) {
		t.Fatalf("file content differs from Mermaid output")
	}
}
