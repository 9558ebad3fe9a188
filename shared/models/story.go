package models

import "maps"

// EndingNone marks a node that is not an ending.
const EndingNone = "None"

// Choice is an edge from a story node to the node whose id equals Choice.ID.
type Choice struct {
	ID     string `json:"id" yaml:"id"`
	Emoji  string `json:"emoji" yaml:"emoji"`
	Text   string `json:"text" yaml:"text"`
	Script string `json:"script" yaml:"script"`
	Parent string `json:"parent,omitempty" yaml:"parent,omitempty"`
}

// StoryNode is one unit of narrative in the story map.
type StoryNode struct {
	ID          string   `json:"id" yaml:"id"`
	URL         string   `json:"url" yaml:"url"`
	Description string   `json:"description" yaml:"description"`
	Choices     []Choice `json:"choices" yaml:"choices"`
	Ending      string   `json:"ending" yaml:"ending"`
	Script      string   `json:"script" yaml:"script"`
}

// NewStoryNode returns an empty node with the defaults the editor expects.
func NewStoryNode(id string) *StoryNode {
	return &StoryNode{
		ID:      id,
		Choices: []Choice{},
		Ending:  EndingNone,
	}
}

// NodeData extracts the sandbox input from the node.
func (n *StoryNode) NodeData() NodeData {
	choices := make([]Choice, len(n.Choices))
	copy(choices, n.Choices)
	return NodeData{URL: n.URL, Description: n.Description, Choices: choices}
}

// ChoiceIndex returns the position of the choice with the given id, or -1.
func (n *StoryNode) ChoiceIndex(id string) int {
	for i, c := range n.Choices {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// IsEnding reports whether the node carries an ending classification.
func (n *StoryNode) IsEnding() bool {
	return n.Ending != "" && n.Ending != EndingNone
}

// Clone returns a deep copy of the node.
func (n *StoryNode) Clone() *StoryNode {
	c := *n
	c.Choices = make([]Choice, len(n.Choices))
	copy(c.Choices, n.Choices)
	return &c
}

// PlayerData is the flat variable map threaded through every script run.
type PlayerData map[string]any

// Clone returns a copy of the map. Values are scalars, so a shallow copy suffices
// for everything the editor stores.
func (p PlayerData) Clone() PlayerData {
	if p == nil {
		return PlayerData{}
	}
	return maps.Clone(p)
}
