package interfaces

import (
	"context"

	"cyoa-maker/shared/models"
)

// ProjectRepository persists whole projects.
type ProjectRepository interface {
	// Load reads the project stored under name, which is either a path or a bare project name.
	Load(ctx context.Context, name string) (*models.Project, error)
	// Save writes the project and returns the path it was written to.
	Save(ctx context.Context, name string, project *models.Project) (string, error)
	// List returns the project files available in the repository directory.
	List(ctx context.Context) ([]string, error)
}

// ScriptRunner compiles and runs node scripts.
type ScriptRunner interface {
	Check(source string) error
	Execute(ctx context.Context, node models.NodeData, player models.PlayerData, source string) (*models.ScriptResult, error)
}
