package models

import (
	"maps"
	"slices"
)

// Player data keys the editor maintains itself.
const (
	PlayerKeyStartID   = "StartID"
	PlayerKeyCurrentID = "currentID"
)

// Metadata describes a project. JSON keys follow the .cy file format.
type Metadata struct {
	Author      string   `json:"Author" yaml:"author"`
	Name        string   `json:"name" yaml:"name"`
	ID          string   `json:"id" yaml:"id"`
	Description string   `json:"description" yaml:"description"`
	Start       string   `json:"start" yaml:"start"`
	Tag         []string `json:"tag" yaml:"tag"`
	Footer      string   `json:"footer" yaml:"footer"`
}

// Project is the whole authoring document persisted to a .cy file.
type Project struct {
	Metadata    Metadata              `json:"metadata" yaml:"metadata"`
	PlayerData  PlayerData            `json:"playerdata" yaml:"playerdata"`
	StoryMap    map[string]*StoryNode `json:"storymap" yaml:"storymap"`
	EmojiSchema map[string]string     `json:"EmojiSchema" yaml:"emoji_schema"`
}

// NewProject returns an empty project with the default emoji schema.
func NewProject(meta Metadata) *Project {
	if meta.Tag == nil {
		meta.Tag = []string{}
	}
	return &Project{
		Metadata:    meta,
		PlayerData:  PlayerData{},
		StoryMap:    map[string]*StoryNode{},
		EmojiSchema: DefaultEmojiSchema(),
	}
}

// Normalize fills in nil collections and per-node defaults after decoding.
func (p *Project) Normalize() {
	if p.PlayerData == nil {
		p.PlayerData = PlayerData{}
	}
	if p.StoryMap == nil {
		p.StoryMap = map[string]*StoryNode{}
	}
	if p.EmojiSchema == nil {
		p.EmojiSchema = DefaultEmojiSchema()
	}
	if p.Metadata.Tag == nil {
		p.Metadata.Tag = []string{}
	}
	for id, node := range p.StoryMap {
		if node == nil {
			node = NewStoryNode(id)
			p.StoryMap[id] = node
		}
		if node.ID == "" {
			node.ID = id
		}
		if node.Choices == nil {
			node.Choices = []Choice{}
		}
		if node.Ending == "" {
			node.Ending = EndingNone
		}
	}
}

// NodeIDs returns the story map keys in sorted order.
func (p *Project) NodeIDs() []string {
	return slices.Sorted(maps.Keys(p.StoryMap))
}

// Clone returns a deep copy of the project.
func (p *Project) Clone() *Project {
	c := &Project{
		Metadata:    p.Metadata,
		PlayerData:  p.PlayerData.Clone(),
		StoryMap:    make(map[string]*StoryNode, len(p.StoryMap)),
		EmojiSchema: maps.Clone(p.EmojiSchema),
	}
	c.Metadata.Tag = slices.Clone(p.Metadata.Tag)
	for id, node := range p.StoryMap {
		c.StoryMap[id] = node.Clone()
	}
	return c
}
