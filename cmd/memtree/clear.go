package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewClearCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every memory",
		Long:  `Delete all active and archived memories. Settings and theme are kept, and 'memtree revert' can bring the memories back.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.service(cmd)
			if err != nil {
				return err
			}

			ok, err := confirm(cmd, svc, "Delete ALL memories, including the archive?")
			if err != nil || !ok {
				return err
			}

			if err := svc.ClearAll(cmd.Context()); err != nil {
				return fmt.Errorf("clear: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "All memories deleted.")
			return nil
		},
	}

	cmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	return cmd
}
