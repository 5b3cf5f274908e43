package main

import (
	"fmt"
	"io"

	"github.com/4thel00z/memtree/internal"
	"github.com/spf13/cobra"
)

func NewListCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls", "tree"},
		Short:   "Show the memory tree",
		Long:    `Show every active memory as a tree.`,
		Args:    cobra.NoArgs,
		RunE:    makeListRunner(a),
	}

	return cmd
}

func makeListRunner(a *app) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		svc, err := a.service(cmd)
		if err != nil {
			return err
		}

		forest := svc.ListActive()
		if wantJSON(cmd) {
			return writeJSON(cmd, forest)
		}

		if len(forest) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No memories yet.")
			return nil
		}

		renderForest(cmd.OutOrStdout(), forest)
		return nil
	}
}

func renderForest(w io.Writer, forest []*internal.MemoryNode) {
	for _, root := range forest {
		fmt.Fprintf(w, "%s\n", nodeLine(root))
		renderChildren(w, root.Children, "")
	}
}

func renderChildren(w io.Writer, children []*internal.MemoryNode, prefix string) {
	for i, c := range children {
		branch, next := "├── ", "│   "
		if i == len(children)-1 {
			branch, next = "└── ", "    "
		}
		fmt.Fprintf(w, "%s%s%s\n", prefix, branch, nodeLine(c))
		renderChildren(w, c.Children, prefix+next)
	}
}

func nodeLine(n *internal.MemoryNode) string {
	line := fmt.Sprintf("%s  %s  %s", n.DisplayDate(), n.Title, n.ID)
	if len(n.Media) > 0 {
		line += fmt.Sprintf("  [%d]", len(n.Media))
	}
	return line
}
