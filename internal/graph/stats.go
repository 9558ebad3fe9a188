package graph

import (
	"maps"
	"slices"

	"cyoa-maker/shared/models"
)

// Stats summarizes the structure of a story map.
type Stats struct {
	TotalNodes   int            `json:"total_nodes" yaml:"total_nodes"`
	TotalChoices int            `json:"total_choices" yaml:"total_choices"`
	Endings      int            `json:"endings" yaml:"endings"`
	EndingTypes  map[string]int `json:"ending_types" yaml:"ending_types"`
	Missing      []string       `json:"missing" yaml:"missing"`
	Unreachable  []string       `json:"unreachable" yaml:"unreachable"`
	DeadEnds     []string       `json:"dead_ends" yaml:"dead_ends"`
}

// ComputeStats walks the story map of p. Reachability is measured from the start
// node; when the start node does not exist every node counts as unreachable.
func ComputeStats(p *models.Project) Stats {
	s := Stats{
		EndingTypes: map[string]int{},
		Missing:     []string{},
		Unreachable: []string{},
		DeadEnds:    []string{},
	}

	missing := make(map[string]struct{})
	for _, id := range slices.Sorted(maps.Keys(p.StoryMap)) {
		node := p.StoryMap[id]
		s.TotalNodes++
		s.TotalChoices += len(node.Choices)
		if node.IsEnding() {
			s.Endings++
			s.EndingTypes[node.Ending]++
		} else if len(node.Choices) == 0 {
			s.DeadEnds = append(s.DeadEnds, id)
		}
		for _, c := range node.Choices {
			if _, ok := p.StoryMap[c.ID]; !ok && c.ID != "" {
				missing[c.ID] = struct{}{}
			}
		}
	}
	s.Missing = append(s.Missing, slices.Sorted(maps.Keys(missing))...)

	reached := reachable(p, p.Metadata.Start)
	for _, id := range slices.Sorted(maps.Keys(p.StoryMap)) {
		if _, ok := reached[id]; !ok {
			s.Unreachable = append(s.Unreachable, id)
		}
	}
	return s
}

func reachable(p *models.Project, start string) map[string]struct{} {
	seen := make(map[string]struct{})
	if _, ok := p.StoryMap[start]; !ok {
		return seen
	}
	queue := []string{start}
	seen[start] = struct{}{}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, c := range p.StoryMap[id].Choices {
			if _, ok := p.StoryMap[c.ID]; !ok {
				continue
			}
			if _, ok := seen[c.ID]; ok {
				continue
			}
			seen[c.ID] = struct{}{}
			queue = append(queue, c.ID)
		}
	}
	return seen
}
