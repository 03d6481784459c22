// Package render produces debug renderings of computed diagrams.
//
// Only text formats live here. Turning the output into pixels (SVG, canvas)
// is the consumer's job; the engine and its tooling stay free of drawing
// dependencies.
package render

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/kintreehq/kintree/pkg/layout"
)

// ToDOT converts a diagram to Graphviz DOT format for quick inspection.
//
// Generation rows become same-rank groups, the focal node gets a bold
// outline, spouse edges are drawn without rank constraints (dashed when
// divorced), and parent-child edges point downward.
func ToDOT(d layout.Diagram) string {
	var buf bytes.Buffer
	buf.WriteString("digraph family {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	for _, n := range d.Nodes {
		attrs := nodeAttrs(n)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	writeRanks(&buf, d.Nodes)

	buf.WriteString("\n")
	for _, e := range d.Edges {
		switch e.Kind {
		case layout.EdgeKindSpouse:
			style := "solid"
			if e.Divorced {
				style = "dashed"
			}
			fmt.Fprintf(&buf, "  %q -> %q [dir=none, constraint=false, style=%s];\n", e.From, e.To, style)
		default:
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n layout.Node) []string {
	label := n.GivenName
	if n.FamilyName != "" {
		if label != "" {
			label += " "
		}
		label += n.FamilyName
	}
	if label == "" {
		label = n.ID
	}
	if n.BirthDate != "" {
		label += "\\n*" + n.BirthDate
	}
	if n.DeathDate != "" {
		label += " †" + n.DeathDate
	}

	// The label carries DOT escape sequences (\n), so quote it by hand
	// instead of with %q, which would double the backslashes.
	attrs := []string{fmt.Sprintf("label=\"%s\"", strings.ReplaceAll(label, `"`, `\"`))}
	if n.Focal {
		attrs = append(attrs, "penwidth=2", "color=black")
	}
	if n.HasHiddenParents || n.HasHiddenChildren || n.HasHiddenSpouses || n.HasHiddenSiblings {
		attrs = append(attrs, `fillcolor="grey95"`)
	}
	return attrs
}

// writeRanks groups nodes by their y coordinate into same-rank statements so
// Graphviz keeps generation rows level.
func writeRanks(buf *bytes.Buffer, nodes []layout.Node) {
	rows := make(map[float64][]string)
	for _, n := range nodes {
		rows[n.Y] = append(rows[n.Y], n.ID)
	}

	ys := make([]float64, 0, len(rows))
	for y := range rows {
		ys = append(ys, y)
	}
	sort.Float64s(ys)

	buf.WriteString("\n")
	for _, y := range ys {
		ids := rows[y]
		sort.Strings(ids)
		buf.WriteString("  { rank=same;")
		for _, id := range ids {
			fmt.Fprintf(buf, " %q;", id)
		}
		buf.WriteString(" }\n")
	}
}
