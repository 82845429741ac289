package graph

import (
	"github.com/OFFIS-RIT/findetective/pkg/common"
	"github.com/OFFIS-RIT/findetective/pkg/logger"
)

// RepairReport counts what ValidateAndRepair removed.
type RepairReport struct {
	DanglingRelationships     int `json:"dangling_relationships"`
	IncompatibleRelationships int `json:"incompatible_relationships"`
	OrphanNodes               int `json:"orphan_nodes"`
}

// RemovedRelationships is the total number of relationships removed.
func (r RepairReport) RemovedRelationships() int {
	return r.DanglingRelationships + r.IncompatibleRelationships
}

// RemovedNodes is the number of nodes removed.
func (r RepairReport) RemovedNodes() int {
	return r.OrphanNodes
}

// Empty reports whether nothing was repaired.
func (r RepairReport) Empty() bool {
	return r.RemovedRelationships() == 0 && r.RemovedNodes() == 0
}

// checkFatal returns a GraphIntegrityError for graphs that cannot be repaired.
func checkFatal(g *common.Graph) error {
	if g == nil || len(g.Nodes) == 0 {
		return &GraphIntegrityError{Kind: ErrEmptyGraph}
	}
	seen := make(map[string]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		if _, dup := seen[n.ID]; dup {
			return &GraphIntegrityError{Kind: ErrDuplicateNodeID, NodeID: n.ID}
		}
		seen[n.ID] = struct{}{}
	}
	return nil
}

// Validate checks g without changing it. It fails on the same fatal
// conditions as ValidateAndRepair and additionally on relationships whose
// endpoints do not exist.
func Validate(g *common.Graph) error {
	if err := checkFatal(g); err != nil {
		return err
	}
	nodes := g.NodeByID()
	for _, rel := range g.Relationships {
		for _, id := range []string{rel.Source, rel.Target} {
			if _, ok := nodes[id]; !ok {
				return &GraphIntegrityError{Kind: ErrDanglingReference, NodeID: id}
			}
		}
	}
	return nil
}

// ValidateAndRepair returns a repaired copy of g.
//
// An empty graph or duplicate node ids are fatal. Otherwise, in one pass
// and in this order, it removes relationships with an endpoint that does not
// exist, relationships whose endpoint types the relation does not allow,
// and finally every node no remaining relationship touches. If that leaves
// no node the graph is reported as empty. g itself is not modified.
func ValidateAndRepair(g *common.Graph) (*common.Graph, RepairReport, error) {
	var report RepairReport
	if err := checkFatal(g); err != nil {
		return nil, report, err
	}

	nodes := g.NodeByID()

	resolved := make([]common.Relationship, 0, len(g.Relationships))
	for _, rel := range g.Relationships {
		_, srcOK := nodes[rel.Source]
		_, tgtOK := nodes[rel.Target]
		if !srcOK || !tgtOK {
			report.DanglingRelationships++
			logger.Debug("[Validate] Removing dangling relationship", "source", rel.Source, "target", rel.Target, "relation", rel.Relation)
			continue
		}
		resolved = append(resolved, rel)
	}

	compatible := make([]common.Relationship, 0, len(resolved))
	for _, rel := range resolved {
		src, tgt := nodes[rel.Source], nodes[rel.Target]
		if !common.Allowed(rel.Relation, src.Type, tgt.Type) {
			report.IncompatibleRelationships++
			logger.Debug("[Validate] Removing incompatible relationship", "relation", rel.Relation, "source_type", src.Type, "target_type", tgt.Type)
			continue
		}
		compatible = append(compatible, rel.Clone())
	}

	referenced := make(map[string]struct{}, len(compatible)*2)
	for _, rel := range compatible {
		referenced[rel.Source] = struct{}{}
		referenced[rel.Target] = struct{}{}
	}

	out := common.NewGraph(g.SchemaVersion)
	for _, n := range g.Nodes {
		if _, ok := referenced[n.ID]; !ok {
			report.OrphanNodes++
			continue
		}
		out.Nodes = append(out.Nodes, n)
	}
	out.Relationships = compatible

	if len(out.Nodes) == 0 {
		return nil, report, &GraphIntegrityError{Kind: ErrEmptyGraph}
	}

	if !report.Empty() {
		logger.Info("[Validate] Repaired graph",
			"dangling", report.DanglingRelationships,
			"incompatible", report.IncompatibleRelationships,
			"orphans", report.OrphanNodes,
		)
	}
	return out, report, nil
}
