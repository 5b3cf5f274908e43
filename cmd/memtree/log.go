package main

import (
	"fmt"

	"github.com/4thel00z/memtree/internal"
	"github.com/spf13/cobra"
)

func NewLogCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the save history",
		Long:  `Show every saved snapshot of the workspace, newest first.`,
		Args:  cobra.NoArgs,
		RunE:  makeLogRunner(a),
	}

	cmd.Flags().IntP("number", "n", 10, "Limit number of snapshots")
	cmd.Flags().Bool("oneline", false, "Show each snapshot on one line")
	return cmd
}

func makeLogRunner(a *app) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		svc, err := a.service(cmd)
		if err != nil {
			return err
		}

		limit, _ := cmd.Flags().GetInt("number")
		oneline, _ := cmd.Flags().GetBool("oneline")

		commits, err := svc.History(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("get log: %w", err)
		}

		if wantJSON(cmd) {
			return outputCommitsJSON(cmd, commits)
		}

		for _, c := range commits {
			if oneline {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", c.Hash[:7], c.Message)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "commit %s\n", c.Hash)
				fmt.Fprintf(cmd.OutOrStdout(), "Date:   %s\n\n", c.Timestamp.Format("Mon Jan 2 15:04:05 2006 -0700"))
				fmt.Fprintf(cmd.OutOrStdout(), "    %s\n\n", c.Message)
			}
		}
		return nil
	}
}

func outputCommitsJSON(cmd *cobra.Command, commits []*internal.Commit) error {
	out := make([]map[string]any, 0, len(commits))
	for _, c := range commits {
		out = append(out, map[string]any{
			"hash":      c.Hash,
			"message":   c.Message,
			"timestamp": c.Timestamp,
		})
	}
	return writeJSON(cmd, out)
}

func NewRevertCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "revert <ref>",
		Short: "Restore the workspace as it was at a snapshot",
		Long:  `Restore memories, archive, settings and theme to their state at ref. The revert is itself recorded as a new snapshot.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd)
			if err != nil {
				return err
			}

			c, err := svc.Revert(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if c == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to revert.")
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", c.Hash[:7], c.Message)
			return nil
		},
	}
}
