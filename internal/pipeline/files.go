package pipeline

import (
	"github.com/OFFIS-RIT/findetective/pkg/common"
	"github.com/OFFIS-RIT/findetective/pkg/graph"
	"github.com/OFFIS-RIT/findetective/pkg/logger"
	"github.com/OFFIS-RIT/findetective/pkg/render"
)

// ValidateFile loads a persisted graph and checks it without repairing.
func ValidateFile(path string) (*common.Graph, error) {
	g, err := common.ReadGraphFile(path)
	if err != nil {
		return nil, err
	}
	if err := graph.Validate(g); err != nil {
		return nil, err
	}
	logger.Info("[Pipeline] Graph is valid", "path", path, "nodes", len(g.Nodes), "relationships", len(g.Relationships))
	return g, nil
}

// CleanFile prunes meaningless nodes from the graph at inPath and writes
// the result to outPath, and its diagram to mermaidPath when set.
func CleanFile(inPath, outPath, mermaidPath string) (*common.Graph, graph.PruneReport, error) {
	g, err := common.ReadGraphFile(inPath)
	if err != nil {
		return nil, graph.PruneReport{}, err
	}

	cleaned, report := graph.Prune(g)
	if err := common.WriteGraphFile(outPath, cleaned); err != nil {
		return nil, report, err
	}
	if mermaidPath != "" {
		if err := render.WriteMermaidFile(mermaidPath, cleaned); err != nil {
			return nil, report, err
		}
	}
	logger.Info("[Pipeline] Cleaned graph",
		"before_nodes", len(g.Nodes),
		"after_nodes", len(cleaned.Nodes),
		"before_relationships", len(g.Relationships),
		"after_relationships", len(cleaned.Relationships),
		"pages", len(render.Pages(cleaned, render.DefaultPageSize)),
	)
	return cleaned, report, nil
}
