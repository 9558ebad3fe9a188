package project

import (
	"fmt"
	"io"

	"cyoa-maker/shared/models"

	"gopkg.in/yaml.v3"
)

// ExportYAML writes a readable YAML rendition of the project to w.
func ExportYAML(w io.Writer, p *models.Project) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
