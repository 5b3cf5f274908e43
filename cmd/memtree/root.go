package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/4thel00z/memtree/internal"
	"github.com/spf13/cobra"
)

func NewRootCmd(version string, a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "memtree",
		Short:         "A personal tree of memories",
		Long:          `Record memories as a tree, archive and restore them, and see statistics. Every change is versioned with git.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	addPersistentFlags(rootCmd)

	if a != nil {
		addSubcommands(rootCmd, a)
	}

	return rootCmd
}

func addPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("scope", "", "Target scope (global|project)")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
}

func addSubcommands(root *cobra.Command, a *app) {
	root.AddCommand(
		NewInitCmd(a),
		NewAddCmd(a),
		NewShowCmd(a),
		NewListCmd(a),
		NewArchiveCmd(a),
		NewRestoreCmd(a),
		NewRmCmd(a),
		NewArchivedCmd(a),
		NewPurgeCmd(a),
		NewStatsCmd(a),
		NewExportCmd(a),
		NewImportCmd(a),
		NewDiffCmd(a),
		NewSettingsCmd(a),
		NewThemeCmd(a),
		NewClearCmd(a),
		NewLogCmd(a),
		NewRevertCmd(a),
		NewWatchCmd(a),
		NewSummarizeCmd(a),
		NewProviderCmd(a),
	)
}

func wantJSON(cmd *cobra.Command) bool {
	asJSON, _ := cmd.Flags().GetBool("json")
	return asJSON
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// confirm asks before a destructive action unless --yes was given or the
// workspace disabled delete confirmation.
func confirm(cmd *cobra.Command, svc *internal.MemoryService, prompt string) (bool, error) {
	yes, _ := cmd.Flags().GetBool("yes")
	if yes || !svc.Settings(cmd.Context()).ConfirmDeleteEnabled {
		return true, nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return false, nil
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
