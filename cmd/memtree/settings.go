package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewSettingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change settings",
		Long:  `Show the stored settings. Any flag given updates that setting.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.service(cmd)
			if err != nil {
				return err
			}

			settings := svc.Settings(cmd.Context())
			changed := false

			if cmd.Flags().Changed("font-size") {
				settings.FontSize, _ = cmd.Flags().GetString("font-size")
				changed = true
			}
			if cmd.Flags().Changed("auto-save") {
				settings.AutoSave, _ = cmd.Flags().GetBool("auto-save")
				changed = true
			}
			if cmd.Flags().Changed("confirm-delete") {
				settings.ConfirmDeleteEnabled, _ = cmd.Flags().GetBool("confirm-delete")
				changed = true
			}

			if changed {
				if err := svc.UpdateSettings(cmd.Context(), settings); err != nil {
					return fmt.Errorf("update settings: %w", err)
				}
			}

			if wantJSON(cmd) {
				return writeJSON(cmd, settings)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "font-size:      %s\n", settings.FontSize)
			fmt.Fprintf(out, "auto-save:      %t\n", settings.AutoSave)
			fmt.Fprintf(out, "confirm-delete: %t\n", settings.ConfirmDeleteEnabled)
			return nil
		},
	}

	cmd.Flags().String("font-size", "", "small, medium or large")
	cmd.Flags().Bool("auto-save", true, "Save changes automatically")
	cmd.Flags().Bool("confirm-delete", true, "Ask before deleting")
	return cmd
}
