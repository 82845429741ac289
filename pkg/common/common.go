package common

// SchemaVersion is the schema version written when a provider omits one.
const SchemaVersion = "1.0.0"

// NodeType is the category of an extracted entity.
type NodeType string

const (
	NodeTypeOrganization   NodeType = "Organization"
	NodeTypeRiskFactor     NodeType = "RiskFactor"
	NodeTypeMonetaryAmount NodeType = "MonetaryAmount"
)

// NodeTypes lists every known node type in a stable order.
var NodeTypes = []NodeType{
	NodeTypeOrganization,
	NodeTypeRiskFactor,
	NodeTypeMonetaryAmount,
}

// Valid reports whether t is one of the known node types.
func (t NodeType) Valid() bool {
	for _, known := range NodeTypes {
		if t == known {
			return true
		}
	}
	return false
}

// RelationType is the kind of a directed relationship between two nodes.
type RelationType string

const (
	RelationOwns             RelationType = "OWNS"
	RelationHasRisk          RelationType = "HAS_RISK"
	RelationReportsAmount    RelationType = "REPORTS_AMOUNT"
	RelationPartneredWith    RelationType = "PARTNERED_WITH"
	RelationJointVentureWith RelationType = "JOINT_VENTURE_WITH"
	RelationInvestedIn       RelationType = "INVESTED_IN"
	RelationRaisedCapital    RelationType = "RAISED_CAPITAL"
	RelationCommittedCapex   RelationType = "COMMITTED_CAPEX"
	RelationImpactedBy       RelationType = "IMPACTED_BY"
	RelationDeclinedDueTo    RelationType = "DECLINED_DUE_TO"
	RelationSubjectTo        RelationType = "SUBJECT_TO"
)

// Valid reports whether r has an entry in the compatibility table.
func (r RelationType) Valid() bool {
	_, ok := compatibility[r]
	return ok
}

// Graph is a knowledge graph of financial entities and the relationships
// between them. A graph is either a partial graph produced from a single
// chunk of text, or the merged result of many partial graphs.
//
// Graph values are treated as immutable once handed to another stage:
// merging, validating and pruning always return a new Graph.
type Graph struct {
	SchemaVersion string         `json:"schema_version" validate:"required"`
	Nodes         []Node         `json:"nodes" validate:"dive"`
	Relationships []Relationship `json:"relationships" validate:"dive"`
}

// Node represents an extracted entity such as an organization, a risk
// factor or a monetary amount. Context holds an optional short explanation
// taken from the source text.
type Node struct {
	ID      string   `json:"id" validate:"required"`
	Type    NodeType `json:"type" validate:"required,oneof=Organization RiskFactor MonetaryAmount"`
	Name    string   `json:"name" validate:"required"`
	Context string   `json:"context,omitempty"`
}

// Relationship is a directed, typed edge between two node ids.
// Confidence is optional; when set it lies in [0, 1].
type Relationship struct {
	Source     string       `json:"source" validate:"required"`
	Target     string       `json:"target" validate:"required"`
	Relation   RelationType `json:"relation" validate:"required"`
	Confidence *float64     `json:"confidence,omitempty" validate:"omitempty,min=0,max=1"`
}

// NewGraph returns an empty graph with the given schema version.
func NewGraph(schemaVersion string) *Graph {
	return &Graph{
		SchemaVersion: schemaVersion,
		Nodes:         make([]Node, 0),
		Relationships: make([]Relationship, 0),
	}
}

// Clone returns a deep copy of g.
func (g *Graph) Clone() *Graph {
	if g == nil {
		return nil
	}
	out := &Graph{
		SchemaVersion: g.SchemaVersion,
		Nodes:         make([]Node, len(g.Nodes)),
		Relationships: make([]Relationship, len(g.Relationships)),
	}
	copy(out.Nodes, g.Nodes)
	for i, rel := range g.Relationships {
		out.Relationships[i] = rel.Clone()
	}
	return out
}

// NodeByID indexes the nodes of g by id. When ids repeat, the first node wins.
func (g *Graph) NodeByID() map[string]Node {
	index := make(map[string]Node, len(g.Nodes))
	for _, n := range g.Nodes {
		if _, exists := index[n.ID]; !exists {
			index[n.ID] = n
		}
	}
	return index
}

// Clone returns a copy of r that does not share its confidence pointer.
func (r Relationship) Clone() Relationship {
	if r.Confidence != nil {
		c := *r.Confidence
		r.Confidence = &c
	}
	return r
}

// Float returns a pointer to v, for building relationships with a confidence.
func Float(v float64) *float64 {
	return &v
}
