package cli

import (
	"cyoa-maker/internal/project"

	"github.com/spf13/cobra"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Print the decoded project as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open()
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := a.repo.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return project.ExportYAML(cmd.OutOrStdout(), p)
		},
	}
}
