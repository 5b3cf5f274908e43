package main

import (
	"fmt"

	"github.com/4thel00z/memtree/internal"
	"github.com/spf13/cobra"
)

func NewInitCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new memory workspace",
		Long:  `Initialize a new .memtree directory with git-versioned storage in the current directory, or in your home directory with --global.`,
		RunE:  makeInitRunner(a),
	}

	cmd.Flags().Bool("global", false, "Initialize global scope (~/.memtree)")
	cmd.Flags().String("seed", "", "Import this JSON export into the new workspace")
	return cmd
}

func makeInitRunner(a *app) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		isGlobal, _ := cmd.Flags().GetBool("global")

		scope := a.resolver.Here()
		if isGlobal {
			scope = a.resolver.Global()
		}

		if scope.Initialized() {
			return fmt.Errorf("already initialized at %s", scope.DataPath)
		}

		if _, err := internal.InitGitBlobStore(scope); err != nil {
			return fmt.Errorf("init store: %w", err)
		}

		if err := internal.SaveConfig(scope, internal.DefaultConfig()); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Initialized memory workspace at %s\n", scope.DataPath)

		seed, _ := cmd.Flags().GetString("seed")
		if seed == "" {
			return nil
		}

		data, err := readInput(cmd, seed)
		if err != nil {
			return err
		}
		svc, err := a.serviceAt(cmd, scope)
		if err != nil {
			return err
		}
		if _, err := svc.ImportAll(cmd.Context(), data); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded from %s\n", seed)
		return nil
	}
}
