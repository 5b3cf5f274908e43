package main

import (
	"fmt"

	"github.com/4thel00z/memtree/internal"
	"github.com/spf13/cobra"
)

func NewArchiveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "archive <id>",
		Short: "Move a memory and its children to the archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd)
			if err != nil {
				return err
			}

			node, err := svc.ArchiveMemory(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("archive: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Archived %s (%d memories)\n", node.ID, internal.TotalCount([]*internal.MemoryNode{node}))
			return nil
		},
	}
}

func NewRestoreCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <id>",
		Short: "Bring an archived memory back as a root",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd)
			if err != nil {
				return err
			}

			node, err := svc.RestoreMemory(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("restore: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Restored %s\n", node.ID)
			return nil
		},
	}
}

func NewRmCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a memory and its children",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd)
			if err != nil {
				return err
			}

			node, err := svc.GetMemory(args[0])
			if err != nil {
				return err
			}
			if node.ArchiveDate != "" {
				return fmt.Errorf("%s is archived, use 'memtree purge'", node.ID)
			}

			ok, err := confirm(cmd, svc, fmt.Sprintf("Delete %q? This cannot be undone.", node.Title))
			if err != nil || !ok {
				return err
			}

			removed, err := svc.DeleteMemory(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("delete: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (%d memories)\n", removed.ID, internal.TotalCount([]*internal.MemoryNode{removed}))
			return nil
		},
	}

	cmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func NewPurgeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "purge <id>",
		Short: "Permanently delete an archived memory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd)
			if err != nil {
				return err
			}

			ok, err := confirm(cmd, svc, fmt.Sprintf("Permanently delete archived memory %s?", args[0]))
			if err != nil || !ok {
				return err
			}

			if _, err := svc.DeleteArchived(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("purge: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Purged %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func NewArchivedCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archived",
		Short: "List archived memories",
		Long:  `List archived memories, optionally filtered by a search term and a year.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.service(cmd)
			if err != nil {
				return err
			}

			term, _ := cmd.Flags().GetString("search")
			year, _ := cmd.Flags().GetInt("year")

			found := svc.SearchArchive(term, year)
			if wantJSON(cmd) {
				return writeJSON(cmd, found)
			}

			out := cmd.OutOrStdout()
			if len(found) == 0 {
				fmt.Fprintln(out, "No archived memories.")
				return nil
			}

			for _, n := range found {
				fmt.Fprintf(out, "%s  %s  %s  (archived %s)\n", n.DisplayDate(), n.Title, n.ID, n.ArchivedOn())
			}

			if years := svc.ArchiveYears(); len(years) > 1 && year == 0 {
				fmt.Fprintf(out, "\nYears: %v\n", years)
			}
			return nil
		},
	}

	cmd.Flags().StringP("search", "s", "", "Match title or content")
	cmd.Flags().Int("year", 0, "Only memories dated in this year")
	return cmd
}
