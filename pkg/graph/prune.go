package graph

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/OFFIS-RIT/findetective/pkg/common"
	"github.com/OFFIS-RIT/findetective/pkg/logger"
)

var (
	// "H 10", "J 5,74,956": a table cell reference rather than an entity.
	cellRefPattern = regexp.MustCompile(`^[A-Z]\s+[\d,.]+$`)
	// A bare capacity or volume such as "2.5 GW" or "~10 MMTPA".
	unitOnlyPattern = regexp.MustCompile(`(?i)^[\d,.~]+\s*(GW|GWh|MMTPA|MTPA|TPD|TPA|MW|MWh|acres?|lacs?\s*TPA|\+)h?$`)

	currencyMarkers = []string{"$", "₹", "Rs", "USD", "INR", "crore", "billion", "million", "lakh"}
)

const (
	minNameLength        = 3
	minUnitContextLength = 10
	minAmountContext     = 6
)

// PruneReport counts what Prune removed.
type PruneReport struct {
	MeaninglessNodes int `json:"meaningless_nodes"`
	Relationships    int `json:"relationships"`
	OrphanNodes      int `json:"orphan_nodes"`
}

// Meaningful reports whether a node carries enough content to keep.
//
// Names shorter than three characters, bare numbers and table cell
// references are dropped. Unit-only quantities need a context of at least
// ten characters, and monetary amounts need either a currency marker in
// the name or a context longer than five characters.
func Meaningful(n common.Node) bool {
	name := strings.TrimSpace(n.Name)
	context := strings.TrimSpace(n.Context)

	if utf8.RuneCountInString(name) < minNameLength {
		return false
	}
	if isBareNumber(name) {
		return false
	}
	if cellRefPattern.MatchString(name) {
		return false
	}
	if unitOnlyPattern.MatchString(name) && utf8.RuneCountInString(context) < minUnitContextLength {
		return false
	}
	if n.Type == common.NodeTypeMonetaryAmount {
		hasCurrency := false
		for _, marker := range currencyMarkers {
			if strings.Contains(name, marker) {
				hasCurrency = true
				break
			}
		}
		if !hasCurrency && utf8.RuneCountInString(context) < minAmountContext {
			return false
		}
	}
	return true
}

func isBareNumber(name string) bool {
	digits := 0
	for _, r := range name {
		switch {
		case r == ',' || r == '.' || r == ' ' || r == '-':
		case unicode.IsDigit(r):
			digits++
		default:
			return false
		}
	}
	return digits > 0
}

// Prune returns a copy of g without meaningless nodes, the relationships
// that touched them, and the nodes left without any relationship. g is not
// modified. Unlike ValidateAndRepair it does not fail on an emptied graph.
func Prune(g *common.Graph) (*common.Graph, PruneReport) {
	var report PruneReport
	if g == nil {
		return common.NewGraph(common.SchemaVersion), report
	}

	kept := make(map[string]struct{}, len(g.Nodes))
	meaningful := make([]common.Node, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		if !Meaningful(n) {
			report.MeaninglessNodes++
			continue
		}
		kept[n.ID] = struct{}{}
		meaningful = append(meaningful, n)
	}

	out := common.NewGraph(g.SchemaVersion)
	referenced := make(map[string]struct{}, len(g.Relationships)*2)
	for _, rel := range g.Relationships {
		_, srcOK := kept[rel.Source]
		_, tgtOK := kept[rel.Target]
		if !srcOK || !tgtOK {
			report.Relationships++
			continue
		}
		out.Relationships = append(out.Relationships, rel.Clone())
		referenced[rel.Source] = struct{}{}
		referenced[rel.Target] = struct{}{}
	}

	for _, n := range meaningful {
		if _, ok := referenced[n.ID]; !ok {
			report.OrphanNodes++
			continue
		}
		out.Nodes = append(out.Nodes, n)
	}

	logger.Info("[Prune] Cleaned graph",
		"meaningless", report.MeaninglessNodes,
		"relationships", report.Relationships,
		"orphans", report.OrphanNodes,
		"nodes", len(out.Nodes),
	)
	return out, report
}
