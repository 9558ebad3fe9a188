package graph

import (
	"fmt"
	"strings"
)

const emptyDOT = `digraph empty_graph {
	bgcolor="transparent"
	label="No story data available\nStart the editor to create your story"
	labelloc="c"
	fontsize="16"
	fontcolor="gray"
}
`

var fillColors = map[Kind]string{
	KindEnd:     "lightcoral",
	KindSingle:  "lightyellow",
	KindMulti:   "lightblue",
	KindMissing: "lightgray",
}

// DOT renders g as Graphviz source. A graph without nodes renders a placeholder.
func DOT(g *Graph) string {
	if len(g.Nodes) == 0 {
		return emptyDOT
	}

	var b strings.Builder
	b.WriteString("// CYOA Story Structure\n")
	b.WriteString("digraph {\n")
	b.WriteString("\tbgcolor=transparent fontname=Arial nodesep=0.5 rankdir=TB ranksep=0.8\n")
	b.WriteString("\tnode [fontname=Arial fontsize=10 shape=box style=filled]\n")
	b.WriteString("\tedge [fontname=Arial fontsize=9]\n")

	for _, n := range g.Nodes {
		if n.Kind == KindMissing {
			fmt.Fprintf(&b, "\t%s [label=\"%s\\n(missing)\" fillcolor=%s style=\"filled,dashed\"]\n",
				quote(n.ID), escape(n.ID), fillColors[n.Kind])
			continue
		}
		attrs := ""
		if n.ID == g.Start {
			attrs = " penwidth=2"
		}
		fmt.Fprintf(&b, "\t%s [label=\"%s\\n%s\" fillcolor=%s%s]\n",
			quote(n.ID), escape(n.ID), escape(n.Summary), fillColors[n.Kind], attrs)
	}
	for _, e := range g.Edges {
		fmt.Fprintf(&b, "\t%s -> %s [label=%s fontcolor=lightblue]\n",
			quote(e.From), quote(e.To), quote(e.Label))
	}
	b.WriteString("}\n")
	return b.String()
}

func quote(s string) string {
	return `"` + escape(s) + `"`
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", "")
	return r.Replace(s)
}
