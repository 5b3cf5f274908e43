package main

import (
	"fmt"

	"github.com/4thel00z/memtree/internal"
	"github.com/spf13/cobra"
)

func NewThemeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [light|dark|toggle]",
		Short:     "Show or change the theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"light", "dark", "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			var theme internal.Theme

			switch {
			case len(args) == 0:
				theme = svc.Theme(ctx)
			case args[0] == "toggle":
				if theme, err = svc.ToggleTheme(ctx); err != nil {
					return fmt.Errorf("toggle theme: %w", err)
				}
			default:
				if theme, err = internal.ParseTheme(args[0]); err != nil {
					return err
				}
				if err := svc.SetTheme(ctx, theme); err != nil {
					return fmt.Errorf("set theme: %w", err)
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), theme)
			return nil
		},
	}
}
