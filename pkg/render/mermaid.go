// Package render turns knowledge graphs into Mermaid flowcharts.
package render

import (
	"fmt"
	"strings"

	"github.com/OFFIS-RIT/findetective/pkg/common"
)

const (
	maxPartLength  = 60
	maxLabelLength = 80
	// DefaultPageSize is the number of nodes per diagram in Pages.
	DefaultPageSize = 50
)

var labelReplacer = strings.NewReplacer(
	`"`, "'",
	"`", "'",
	"#", "",
	"&", "and",
	"<", "",
	">", "",
	"[", "(",
	"]", ")",
	"{", "(",
	"}", ")",
	"|", "-",
	"\r\n", " ",
	"\n", " ",
)

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

// EscapeLabel makes text safe to use inside a quoted Mermaid label and
// shortens it to at most 60 characters.
func EscapeLabel(text string) string {
	return truncate(labelReplacer.Replace(text), maxPartLength)
}

// NodeShape returns the Mermaid definition of n. Organizations are
// rectangles, risk factors are rounded and monetary amounts are
// parallelograms. Amounts with context read "context: name", other nodes
// "name (context)".
func NodeShape(n common.Node) string {
	label := EscapeLabel(n.Name)
	if n.Context != "" {
		context := EscapeLabel(n.Context)
		if n.Type == common.NodeTypeMonetaryAmount {
			label = context + ": " + label
		} else {
			label = label + " (" + context + ")"
		}
	}
	label = truncate(label, maxLabelLength)

	switch n.Type {
	case common.NodeTypeRiskFactor:
		return fmt.Sprintf(`%s("%s")`, n.ID, label)
	case common.NodeTypeMonetaryAmount:
		return fmt.Sprintf(`%s[/"%s"/]`, n.ID, label)
	default:
		return fmt.Sprintf(`%s["%s"]`, n.ID, label)
	}
}

func flowchart(nodes []common.Node, rels []common.Relationship) string {
	var b strings.Builder
	b.WriteString("flowchart TD\n\n")
	b.WriteString("    %% Node definitions\n")
	for _, n := range nodes {
		b.WriteString("    ")
		b.WriteString(NodeShape(n))
		b.WriteByte('\n')
	}
	b.WriteString("\n    %% Relationships\n")
	for _, r := range rels {
		fmt.Fprintf(&b, "    %s -->|%s| %s\n", r.Source, r.Relation, r.Target)
	}
	return b.String()
}

// Mermaid renders g as a top-down flowchart.
func Mermaid(g *common.Graph) string {
	if g == nil {
		return flowchart(nil, nil)
	}
	return flowchart(g.Nodes, g.Relationships)
}

// Pages splits g into diagrams of at most pageSize nodes each. A page only
// shows relationships with both endpoints on that page.
func Pages(g *common.Graph, pageSize int) []string {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if g == nil || len(g.Nodes) == 0 {
		return []string{}
	}

	pages := make([]string, 0, (len(g.Nodes)+pageSize-1)/pageSize)
	for start := 0; start < len(g.Nodes); start += pageSize {
		end := min(start+pageSize, len(g.Nodes))
		nodes := g.Nodes[start:end]

		onPage := make(map[string]struct{}, len(nodes))
		for _, n := range nodes {
			onPage[n.ID] = struct{}{}
		}
		var rels []common.Relationship
		for _, r := range g.Relationships {
			_, src := onPage[r.Source]
			_, tgt := onPage[r.Target]
			if src && tgt {
				rels = append(rels, r)
			}
		}
		pages = append(pages, flowchart(nodes, rels))
	}
	return pages
}

// WriteMermaidFile renders g to path, replacing the file atomically.
func WriteMermaidFile(path string, g *common.Graph) error {
	if err := common.WriteFileAtomic(path, []byte(Mermaid(g))); err != nil {
		return fmt.Errorf("failed to write mermaid diagram: %w", err)
	}
	return nil
}
