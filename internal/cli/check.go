package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Compile every node and choice script without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open()
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := a.service.LoadProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			checked, failed := 0, 0
			check := func(where, src string) {
				if src == "" {
					return
				}
				checked++
				if err := a.service.CheckScript(src); err != nil {
					failed++
					fmt.Fprintf(out, "FAIL %s: %v\n", where, err)
				}
			}
			for _, id := range p.NodeIDs() {
				node := p.StoryMap[id]
				check("node "+id, node.Script)
				for _, c := range node.Choices {
					check(fmt.Sprintf("node %s choice %s", id, c.ID), c.Script)
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d scripts failed to compile", failed, checked)
			}
			fmt.Fprintf(out, "ok: %d scripts compiled\n", checked)
			return nil
		},
	}
}
