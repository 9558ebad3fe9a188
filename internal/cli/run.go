package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"cyoa-maker/internal/service"
	"cyoa-maker/shared/models"

	"github.com/spf13/cobra"
)

type runOutput struct {
	*models.ScriptResult
	VisibleChoices []models.Choice `json:"visible_choices"`
}

func newRunCmd(opts *rootOptions) *cobra.Command {
	var (
		vars       []string
		scriptFile string
		save       bool
	)
	cmd := &cobra.Command{
		Use:   "run <file> <node>",
		Short: "Run the script of a node against the project's player data",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			file, nodeID := args[0], args[1]
			if _, err := a.service.LoadProject(ctx, file); err != nil {
				return err
			}
			for _, kv := range vars {
				key, value, err := parseVar(kv)
				if err != nil {
					return err
				}
				if err := a.service.SetPlayerVar(key, value); err != nil {
					return err
				}
			}
			if scriptFile != "" {
				if err := replaceScript(a.service, nodeID, scriptFile); err != nil {
					return err
				}
			}

			res, err := a.service.RunNodeScript(ctx, nodeID)
			if err != nil {
				return err
			}
			node, err := a.service.GetNode(nodeID)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(runOutput{ScriptResult: res, VisibleChoices: res.VisibleChoices(node.Choices)}); err != nil {
				return err
			}

			if save {
				path, err := a.service.SaveProject(ctx, file)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "saved %s\n", path)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&vars, "var", nil, "set a player variable before running, as key=value (value parsed as JSON when possible)")
	cmd.Flags().StringVar(&scriptFile, "script", "", "run this Lua file instead of the node's stored script")
	cmd.Flags().BoolVar(&save, "save", false, "write the updated node and player data back to the project")
	return cmd
}

// parseVar splits key=value. The value is decoded as JSON and falls back to the raw string.
func parseVar(kv string) (string, any, error) {
	key, raw, ok := strings.Cut(kv, "=")
	if !ok || key == "" {
		return "", nil, fmt.Errorf("%w: --var expects key=value, got %q", models.ErrInvalidInput, kv)
	}
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		value = raw
	}
	return key, value, nil
}

func replaceScript(s service.EditorService, nodeID, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	node, err := s.GetNode(nodeID)
	if err != nil {
		return err
	}
	_, err = s.SaveNode(nodeID, service.NodeUpdate{
		URL:         node.URL,
		Description: node.Description,
		Script:      string(src),
		Ending:      node.Ending,
	})
	return err
}
