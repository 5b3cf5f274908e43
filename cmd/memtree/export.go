package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func NewExportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export everything as one JSON document",
		Long:  `Export active and archived memories with settings and theme. Writes to stdout unless --output is given.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.service(cmd)
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(svc.ExportAll(cmd.Context()), "", "  ")
			if err != nil {
				return fmt.Errorf("encode export: %w", err)
			}
			data = append(data, '\n')

			output, _ := cmd.Flags().GetString("output")
			if output == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if output == "auto" {
				output = fmt.Sprintf("memory_tree_export_%s.json", time.Now().UTC().Format(time.DateOnly))
			}

			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "", "Write to this file ('auto' picks a dated name)")
	return cmd
}

func NewImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Import a JSON export",
		Long:  `Import a document written by 'memtree export'. Collections present in the document replace the current ones; absent ones are kept.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd)
			if err != nil {
				return err
			}

			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			doc, err := svc.ImportAll(cmd.Context(), data)
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d active and %d archived memories\n",
				len(doc.Memories), len(doc.Archived))
			return nil
		},
	}
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
