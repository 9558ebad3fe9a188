package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"cyoa-maker/internal/project"
	"cyoa-maker/shared/models"

	"github.com/spf13/cobra"
)

func newInitCmd(opts *rootOptions) *cobra.Command {
	var meta models.Metadata
	cmd := &cobra.Command{
		Use:   "init <file>",
		Short: "Create an empty project with a start node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open()
			if err != nil {
				return err
			}
			defer a.Close()

			if meta.Name == "" {
				meta.Name = strings.TrimSuffix(filepath.Base(args[0]), project.Extension)
			}
			p := a.service.NewProject(meta)
			path, err := a.service.SaveProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (start node %s)\n", path, p.Metadata.Start)
			return nil
		},
	}
	cmd.Flags().StringVar(&meta.Name, "name", "", "project name (defaults to the file name)")
	cmd.Flags().StringVar(&meta.Author, "author", "", "project author")
	cmd.Flags().StringVar(&meta.Description, "description", "", "project description")
	cmd.Flags().StringVar(&meta.Start, "start", "", "id of the start node (generated when empty)")
	return cmd
}
