package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/4thel00z/memtree/internal"
	"github.com/spf13/cobra"
)

func NewAddCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <title> [content]",
		Short: "Record a memory",
		Long:  `Record a new memory, as a root or under --parent. Reads the content from stdin if it is not given.`,
		Args:  cobra.RangeArgs(1, 2),
		RunE:  makeAddRunner(a),
	}

	cmd.Flags().StringP("parent", "p", "", "Id of the parent memory")
	cmd.Flags().StringP("date", "d", "", "Date of the memory (YYYY-MM-DD, default today)")
	cmd.Flags().StringSliceP("attach", "a", nil, "Files to attach")
	return cmd
}

func makeAddRunner(a *app) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		svc, err := a.service(cmd)
		if err != nil {
			return err
		}

		content, err := resolveAddContent(cmd, args)
		if err != nil {
			return err
		}

		parentID, _ := cmd.Flags().GetString("parent")
		date, _ := cmd.Flags().GetString("date")
		files, _ := cmd.Flags().GetStringSlice("attach")

		draft := svc.NewMediaDraft()
		defer draft.Close()

		for _, path := range files {
			if _, err := draft.AttachFile(path); err != nil {
				return fmt.Errorf("attach %s: %w", path, err)
			}
		}

		media, err := draft.Submit()
		if err != nil {
			return err
		}

		node, err := svc.AddMemory(cmd.Context(), parentID, internal.NewMemoryInput{
			Title:   args[0],
			Content: content,
			Date:    date,
			Media:   media,
		})
		if err != nil {
			return fmt.Errorf("add memory: %w", err)
		}

		if wantJSON(cmd) {
			return writeJSON(cmd, node)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", node.ID)
		return nil
	}
}

func resolveAddContent(cmd *cobra.Command, args []string) (string, error) {
	if len(args) >= 2 {
		return args[1], nil
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
