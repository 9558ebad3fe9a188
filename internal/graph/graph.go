// Package graph derives the choice graph of a story map and renders it.
package graph

import (
	"maps"
	"slices"
	"strings"
	"unicode/utf8"

	"cyoa-maker/shared/models"
)

// Kind classifies a node by its outgoing choices.
type Kind string

const (
	KindEnd     Kind = "end"
	KindSingle  Kind = "single"
	KindMulti   Kind = "multi"
	KindMissing Kind = "missing"
)

const labelWidth = 17

// Node is a vertex of the story graph. Missing nodes are referenced by a choice
// but absent from the story map.
type Node struct {
	ID          string `json:"id" yaml:"id"`
	Kind        Kind   `json:"kind" yaml:"kind"`
	Summary     string `json:"summary" yaml:"summary"`
	Ending      string `json:"ending,omitempty" yaml:"ending,omitempty"`
	ChoiceCount int    `json:"choice_count" yaml:"choice_count"`
}

// Edge is one choice leading from a node to the node named by the choice id.
type Edge struct {
	From  string `json:"from" yaml:"from"`
	To    string `json:"to" yaml:"to"`
	Label string `json:"label" yaml:"label"`
	Emoji string `json:"emoji,omitempty" yaml:"emoji,omitempty"`
}

// Graph is the derived view of a story map.
type Graph struct {
	Start string `json:"start" yaml:"start"`
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// Build derives the graph of p. Nodes are sorted by id and edges follow node order
// then choice order, so output is stable.
func Build(p *models.Project) *Graph {
	g := &Graph{
		Start: p.Metadata.Start,
		Nodes: []Node{},
		Edges: []Edge{},
	}

	ids := slices.Sorted(maps.Keys(p.StoryMap))
	referenced := make(map[string]struct{})

	for _, id := range ids {
		node := p.StoryMap[id]
		g.Nodes = append(g.Nodes, Node{
			ID:          id,
			Kind:        kindOf(node),
			Summary:     truncate(firstLine(node.Description), labelWidth),
			Ending:      endingOf(node),
			ChoiceCount: len(node.Choices),
		})
		for _, c := range node.Choices {
			if c.ID == "" {
				continue
			}
			label := truncate(c.Text, labelWidth)
			if label == "" {
				label = "Choice"
			}
			g.Edges = append(g.Edges, Edge{From: id, To: c.ID, Label: label, Emoji: c.Emoji})
			referenced[c.ID] = struct{}{}
		}
	}

	for _, id := range slices.Sorted(maps.Keys(referenced)) {
		if _, ok := p.StoryMap[id]; !ok {
			g.Nodes = append(g.Nodes, Node{ID: id, Kind: KindMissing})
		}
	}
	slices.SortStableFunc(g.Nodes, func(a, b Node) int { return strings.Compare(a.ID, b.ID) })
	return g
}

func kindOf(n *models.StoryNode) Kind {
	switch len(n.Choices) {
	case 0:
		return KindEnd
	case 1:
		return KindSingle
	default:
		return KindMulti
	}
}

func endingOf(n *models.StoryNode) string {
	if n.IsEnding() {
		return n.Ending
	}
	return ""
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// truncate keeps at most n runes of s.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
