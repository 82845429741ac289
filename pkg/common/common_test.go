package common

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestAllowed(t *testing.T) {
	org, risk, amount := NodeTypeOrganization, NodeTypeRiskFactor, NodeTypeMonetaryAmount

	tests := []struct {
		name     string
		relation RelationType
		src, tgt NodeType
		want     bool
	}{
		{"owns org to org", RelationOwns, org, org, true},
		{"owns org to risk", RelationOwns, org, risk, false},
		{"has risk", RelationHasRisk, org, risk, true},
		{"has risk reversed", RelationHasRisk, risk, org, false},
		{"reports amount", RelationReportsAmount, org, amount, true},
		{"invested in org", RelationInvestedIn, org, org, true},
		{"invested in amount", RelationInvestedIn, org, amount, true},
		{"invested in risk", RelationInvestedIn, org, risk, false},
		{"impacted by from org", RelationImpactedBy, org, risk, true},
		{"impacted by from amount", RelationImpactedBy, amount, risk, true},
		{"declined due to", RelationDeclinedDueTo, amount, risk, true},
		{"declined due to from org", RelationDeclinedDueTo, org, risk, false},
		{"subject to", RelationSubjectTo, org, risk, true},
		{"unknown relation", RelationType("ACQUIRED"), org, org, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Allowed(tt.relation, tt.src, tt.tgt); got != tt.want {
				t.Fatalf("Allowed(%s, %s, %s) = %v, want %v", tt.relation, tt.src, tt.tgt, got, tt.want)
			}
		})
	}
}

func TestRelationTypesCoverTable(t *testing.T) {
	rels := RelationTypes()
	if len(rels) != len(compatibility) {
		t.Fatalf("expected %d relations, got %d", len(compatibility), len(rels))
	}
	for _, rel := range rels {
		if !rel.Valid() {
			t.Fatalf("relation %s missing from compatibility table", rel)
		}
	}
}

func TestParseNodeType(t *testing.T) {
	tests := []struct {
		raw    string
		want   NodeType
		wantOK bool
	}{
		{"Organization", NodeTypeOrganization, true},
		{"organisation", NodeTypeOrganization, true},
		{"Risk Factor", NodeTypeRiskFactor, true},
		{"RISK_FACTOR", NodeTypeRiskFactor, true},
		{"DollarAmount", NodeTypeMonetaryAmount, true},
		{"monetary-amount", NodeTypeMonetaryAmount, true},
		{"Person", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseNodeType(tt.raw)
		if got != tt.want || ok != tt.wantOK {
			t.Fatalf("ParseNodeType(%q) = (%q, %v), want (%q, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseRelationType(t *testing.T) {
	tests := []struct {
		raw    string
		want   RelationType
		wantOK bool
	}{
		{"OWNS", RelationOwns, true},
		{"owns", RelationOwns, true},
		{"subsidiary of", RelationOwns, true},
		{"joint-venture", RelationJointVentureWith, true},
		{"Affected_By", RelationImpactedBy, true},
		{"COMPETES_WITH", "", false},
		{"  ", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseRelationType(tt.raw)
		if got != tt.want || ok != tt.wantOK {
			t.Fatalf("ParseRelationType(%q) = (%q, %v), want (%q, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	g := &Graph{
		SchemaVersion: SchemaVersion,
		Nodes:         []Node{{ID: "org_1", Type: NodeTypeOrganization, Name: "Acme"}},
		Relationships: []Relationship{{Source: "org_1", Target: "org_1", Relation: RelationOwns, Confidence: Float(0.5)}},
	}
	c := g.Clone()
	if !reflect.DeepEqual(g, c) {
		t.Fatalf("clone differs from original")
	}

	c.Nodes[0].Name = "Changed"
	*c.Relationships[0].Confidence = 0.9
	if g.Nodes[0].Name != "Acme" {
		t.Fatalf("clone shares node storage")
	}
	if *g.Relationships[0].Confidence != 0.5 {
		t.Fatalf("clone shares confidence pointer")
	}
}

func TestGraphValidate(t *testing.T) {
	tests := []struct {
		name    string
		graph   *Graph
		wantErr bool
	}{
		{
			name: "valid graph",
			graph: &Graph{
				SchemaVersion: SchemaVersion,
				Nodes:         []Node{{ID: "org_1", Type: NodeTypeOrganization, Name: "Acme"}},
			},
		},
		{
			name: "missing schema version",
			graph: &Graph{
				Nodes: []Node{{ID: "org_1", Type: NodeTypeOrganization, Name: "Acme"}},
			},
			wantErr: true,
		},
		{
			name: "unknown node type",
			graph: &Graph{
				SchemaVersion: SchemaVersion,
				Nodes:         []Node{{ID: "p_1", Type: "Person", Name: "Jane"}},
			},
			wantErr: true,
		},
		{
			name: "confidence out of range",
			graph: &Graph{
				SchemaVersion: SchemaVersion,
				Relationships: []Relationship{{Source: "a", Target: "b", Relation: RelationOwns, Confidence: Float(1.5)}},
			},
			wantErr: true,
		},
		{
			name: "missing relationship source",
			graph: &Graph{
				SchemaVersion: SchemaVersion,
				Relationships: []Relationship{{Target: "b", Relation: RelationOwns}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.graph.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWriteReadGraph(t *testing.T) {
	g := &Graph{
		SchemaVersion: SchemaVersion,
		Nodes: []Node{
			{ID: "org_1", Type: NodeTypeOrganization, Name: "Acme", Context: "parent"},
			{ID: "risk_1", Type: NodeTypeRiskFactor, Name: "Inflation"},
		},
		Relationships: []Relationship{
			{Source: "org_1", Target: "risk_1", Relation: RelationHasRisk, Confidence: Float(0.8)},
		},
	}

	var buf bytes.Buffer
	if err := WriteGraph(&buf, g); err != nil {
		t.Fatalf("WriteGraph: %v", err)
	}
	if !strings.Contains(buf.String(), `"schema_version": "1.0.0"`) {
		t.Fatalf("expected indented schema_version, got %s", buf.String())
	}

	got, err := ReadGraph(&buf)
	if err != nil {
		t.Fatalf("ReadGraph: %v", err)
	}
	if !reflect.DeepEqual(g, got) {
		t.Fatalf("round trip mismatch:\nwant %+v\ngot  %+v", g, got)
	}
}

func TestReadGraphRejectsUnknownFields(t *testing.T) {
	input := `{"schema_version":"1.0.0","nodes":[],"relationships":[],"extra":true}`
	if _, err := ReadGraph(strings.NewReader(input)); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestReadGraphFillsEmptyCollections(t *testing.T) {
	g, err := ReadGraph(strings.NewReader(`{"schema_version":"1.0.0"}`))
	if err != nil {
		t.Fatalf("ReadGraph: %v", err)
	}
	if g.Nodes == nil || g.Relationships == nil {
		t.Fatal("expected non-nil node and relationship slices")
	}
}

func TestWriteGraphFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "graph.json")
	g := NewGraph(SchemaVersion)

	if err := WriteGraphFile(path, g); err != nil {
		t.Fatalf("WriteGraphFile: %v", err)
	}
	got, err := ReadGraphFile(path)
	if err != nil {
		t.Fatalf("ReadGraphFile: %v", err)
	}
	if !reflect.DeepEqual(g, got) {
		t.Fatalf("expected %+v, got %+v", g, got)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the graph file, found %d entries", len(entries))
	}
}
