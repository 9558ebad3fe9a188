package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"cyoa-maker/internal/graph"
	"cyoa-maker/shared/models"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type graphOutput struct {
	Graph *graph.Graph `json:"graph" yaml:"graph"`
	Stats graph.Stats  `json:"stats" yaml:"stats"`
}

func newGraphCmd(opts *rootOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "graph <file>",
		Short: "Print the story structure as Graphviz DOT, JSON or YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open()
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := a.service.LoadProject(cmd.Context(), args[0]); err != nil {
				return err
			}
			g, err := a.service.Graph()
			if err != nil {
				return err
			}
			stats, err := a.service.Stats()
			if err != nil {
				return err
			}
			return writeGraph(cmd.OutOrStdout(), format, graphOutput{Graph: g, Stats: stats})
		},
	}
	cmd.Flags().StringVar(&format, "format", "dot", "output format: dot, json or yaml")
	return cmd
}

func writeGraph(w io.Writer, format string, out graphOutput) error {
	switch format {
	case "dot":
		_, err := io.WriteString(w, graph.DOT(out.Graph))
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: unknown format %q", models.ErrInvalidInput, format)
	}
}
