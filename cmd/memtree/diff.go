package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewDiffCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff [ref]",
		Short: "Show changes",
		Long:  `Show what changed since a saved snapshot, or against an exported backup with --backup.`,
		Args:  cobra.MaximumNArgs(1),
		RunE:  makeDiffRunner(a),
	}

	cmd.Flags().String("backup", "", "Compare with an exported JSON file")
	return cmd
}

func makeDiffRunner(a *app) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		svc, err := a.service(cmd)
		if err != nil {
			return err
		}

		if backup, _ := cmd.Flags().GetString("backup"); backup != "" {
			data, err := readInput(cmd, backup)
			if err != nil {
				return err
			}

			d, err := svc.DiffBackup(cmd.Context(), data)
			if err != nil {
				return fmt.Errorf("diff backup: %w", err)
			}
			if d.Empty() {
				fmt.Fprintln(cmd.OutOrStdout(), "No changes.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), d.String())
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d added, %d removed\n", d.Added, d.Removed)
			return nil
		}

		ref := "HEAD~1"
		if len(args) > 0 {
			ref = args[0]
		}

		patch, err := svc.Diff(cmd.Context(), ref)
		if err != nil {
			return fmt.Errorf("get diff: %w", err)
		}

		if patch == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "No changes.")
			return nil
		}

		fmt.Fprint(cmd.OutOrStdout(), patch)
		return nil
	}
}
