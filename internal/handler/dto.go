package handler

import (
	"cyoa-maker/internal/graph"
	"cyoa-maker/shared/models"
)

// ProjectNameRequest names a project file to load or save.
type ProjectNameRequest struct {
	Name string `json:"name"`
}

// SaveProjectResponse reports where the project was written.
type SaveProjectResponse struct {
	Path string `json:"path"`
}

// ProjectListResponse lists the project files in the projects directory.
type ProjectListResponse struct {
	Projects []string `json:"projects"`
}

// EmojiSchemaRequest replaces the emoji schema, either as a map or in the
// "VAR -> EMOJI" text form. Text wins when both are set.
type EmojiSchemaRequest struct {
	Schema map[string]string `json:"schema"`
	Text   string            `json:"text"`
}

// CreateNodeRequest names a node to create.
type CreateNodeRequest struct {
	ID string `json:"id" binding:"required"`
}

// NodeListResponse lists node ids in sorted order.
type NodeListResponse struct {
	Nodes []string `json:"nodes"`
}

// PlayerVarRequest sets one player variable.
type PlayerVarRequest struct {
	Value any `json:"value"`
}

// RunNodeResponse is the outcome of running a node script, plus the choices the
// player would see.
type RunNodeResponse struct {
	*models.ScriptResult
	VisibleChoices []models.Choice `json:"visible_choices"`
}

// ExecuteScriptRequest runs a script against caller-provided state.
type ExecuteScriptRequest struct {
	Node       models.NodeData   `json:"node"`
	PlayerData models.PlayerData `json:"player_data"`
	Script     string            `json:"script"`
}

// CheckScriptRequest carries a script to compile.
type CheckScriptRequest struct {
	Script string `json:"script"`
}

// CheckScriptResponse reports a script that compiled.
type CheckScriptResponse struct {
	Valid bool `json:"valid"`
}

// GraphResponse is the story graph with its statistics.
type GraphResponse struct {
	Graph *graph.Graph `json:"graph"`
	Stats graph.Stats  `json:"stats"`
}
