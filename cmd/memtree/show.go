package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/4thel00z/memtree/internal"
	"github.com/spf13/cobra"
)

func NewShowCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one memory",
		Long:  `Show a memory with its attachments and direct children. Archived memories are found too.`,
		Args:  cobra.ExactArgs(1),
		RunE:  makeShowRunner(a),
	}

	cmd.Flags().String("save-media", "", "Write the attachments into this directory")
	return cmd
}

func makeShowRunner(a *app) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		svc, err := a.service(cmd)
		if err != nil {
			return err
		}

		node, err := svc.GetMemory(args[0])
		if err != nil {
			return err
		}

		if dir, _ := cmd.Flags().GetString("save-media"); dir != "" {
			if err := saveMedia(cmd, dir, node.Media); err != nil {
				return err
			}
		}

		if wantJSON(cmd) {
			return writeJSON(cmd, node)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s\n", node.Title)
		fmt.Fprintf(out, "id:   %s\n", node.ID)
		fmt.Fprintf(out, "date: %s\n", node.DisplayDate())
		if node.ArchiveDate != "" {
			fmt.Fprintf(out, "archived: %s\n", node.ArchiveDate)
		}
		fmt.Fprintf(out, "\n%s\n", node.Content)

		if len(node.Media) > 0 {
			fmt.Fprintln(out, "\nAttachments:")
			for _, m := range node.Media {
				fmt.Fprintf(out, "  %s  %s (%s)\n", m.ID, m.Name, m.Type)
			}
		}
		if len(node.Children) > 0 {
			fmt.Fprintln(out, "\nChildren:")
			for _, c := range node.Children {
				fmt.Fprintf(out, "  %s  %s  %s\n", c.ID, c.DisplayDate(), c.Title)
			}
		}
		return nil
	}
}

func saveMedia(cmd *cobra.Command, dir string, media []internal.MediaAttachment) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	for _, m := range media {
		_, data, err := internal.DecodeDataURI(m.Data)
		if err != nil {
			return fmt.Errorf("decode %s: %w", m.Name, err)
		}
		name := filepath.Base(m.Name)
		if name == "." || name == string(filepath.Separator) {
			name = m.ID
		}
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved %s\n", path)
	}
	return nil
}
