package graph

import (
	"fmt"
	"strings"

	"github.com/OFFIS-RIT/findetective/pkg/common"
	"github.com/OFFIS-RIT/findetective/pkg/logger"
)

// idPrefixes maps node types to the prefix of their renumbered ids.
var idPrefixes = map[common.NodeType]string{
	common.NodeTypeOrganization:   "org",
	common.NodeTypeRiskFactor:     "risk",
	common.NodeTypeMonetaryAmount: "amount",
}

func idPrefix(t common.NodeType) string {
	if p, ok := idPrefixes[t]; ok {
		return p
	}
	return strings.ToLower(string(t))
}

type dedupeKey struct {
	name     string
	nodeType common.NodeType
}

func normalizeDedupeKey(n common.Node) dedupeKey {
	return dedupeKey{name: strings.ToLower(n.Name), nodeType: n.Type}
}

type scopedID struct {
	graph int
	id    string
}

// unresolvedID marks a relationship endpoint that pointed at no node of its
// own graph. The '~' keeps it from ever matching a renumbered id.
func unresolvedID(graphIndex int, oldID string) string {
	return fmt.Sprintf("g%d~%s", graphIndex+1, oldID)
}

// Merge combines partial graphs into one.
//
// Nodes sharing a lowercased name and type collapse into the first one
// seen, which keeps its context. Surviving nodes are renumbered per type
// (org_1, risk_1, amount_1, ...) in first-seen order, and every
// relationship is rewritten through a per-graph id map. Relationships are
// concatenated in input order; none are dropped here, endpoints that did
// not resolve inside their own graph are left for the validator to remove.
//
// Nil graphs are skipped and the inputs are never modified. The schema
// version is taken from the first non-nil graph that has one.
func Merge(graphs []*common.Graph) *common.Graph {
	out := common.NewGraph("")

	counters := make(map[common.NodeType]int)
	survivors := make(map[dedupeKey]string)
	idMap := make(map[scopedID]string)

	for gi, g := range graphs {
		if g == nil {
			continue
		}
		if out.SchemaVersion == "" {
			out.SchemaVersion = g.SchemaVersion
		}

		for _, n := range g.Nodes {
			key := normalizeDedupeKey(n)
			newID, seen := survivors[key]
			if !seen {
				counters[n.Type]++
				newID = fmt.Sprintf("%s_%d", idPrefix(n.Type), counters[n.Type])
				survivors[key] = newID

				node := n
				node.ID = newID
				out.Nodes = append(out.Nodes, node)
			}

			// A repeated id inside one graph keeps its first mapping.
			sid := scopedID{graph: gi, id: n.ID}
			if _, mapped := idMap[sid]; !mapped {
				idMap[sid] = newID
			}
		}

		for _, rel := range g.Relationships {
			merged := rel.Clone()
			merged.Source = remap(idMap, gi, rel.Source)
			merged.Target = remap(idMap, gi, rel.Target)
			out.Relationships = append(out.Relationships, merged)
		}
	}

	if out.SchemaVersion == "" {
		out.SchemaVersion = common.SchemaVersion
	}

	logger.Debug("[Merge] Merged partial graphs", "graphs", len(graphs), "nodes", len(out.Nodes), "relationships", len(out.Relationships))
	return out
}

func remap(idMap map[scopedID]string, graphIndex int, oldID string) string {
	if newID, ok := idMap[scopedID{graph: graphIndex, id: oldID}]; ok {
		return newID
	}
	return unresolvedID(graphIndex, oldID)
}
