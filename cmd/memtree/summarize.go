package main

import (
	"fmt"

	"github.com/4thel00z/memtree/internal"
	"github.com/spf13/cobra"
)

func NewSummarizeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summarize [id]",
		Short: "Summarize memories using AI",
		Long:  `Generate an AI-powered summary of one memory and its children, or of the whole tree.`,
		Args:  cobra.MaximumNArgs(1),
		RunE:  makeSummarizeRunner(a),
	}

	cmd.Flags().String("provider", "", "Provider to use (default from config)")
	return cmd
}

func makeSummarizeRunner(a *app) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		svc, err := a.service(cmd)
		if err != nil {
			return err
		}

		roots := svc.ListActive()
		if len(args) > 0 {
			node, err := svc.GetMemory(args[0])
			if err != nil {
				return err
			}
			roots = []*internal.MemoryNode{node}
		}

		name, _ := cmd.Flags().GetString("provider")
		provider, err := a.providers(cmd).Open(cmd.Context(), name)
		if err != nil {
			return fmt.Errorf("open provider: %w", err)
		}

		out, err := internal.SummarizeMemories(cmd.Context(), provider, roots)
		if err != nil {
			return fmt.Errorf("summarize: %w", err)
		}

		if wantJSON(cmd) {
			return writeJSON(cmd, out)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "# %s\n\n%s\n", out.Title, out.Overview)
		if out.Period != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "\nPeriod: %s\n", out.Period)
		}
		if len(out.KeyPoints) > 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "\nKey Points:")
			for _, p := range out.KeyPoints {
				fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", p)
			}
		}
		if len(out.Tags) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "\nTags: %v\n", out.Tags)
		}
		return nil
	}
}
