package main

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/4thel00z/memtree/internal"
	"github.com/spf13/cobra"
)

func NewStatsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show statistics about your memories",
		Long:  `Show counts, tree depth, activity by year and month, and recent memories. Archived memories are not counted.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.service(cmd)
			if err != nil {
				return err
			}

			stats := svc.ComputeStatistics()
			if wantJSON(cmd) {
				return writeJSON(cmd, stats)
			}

			printStats(cmd.OutOrStdout(), stats)
			return nil
		},
	}

	return cmd
}

func printStats(w io.Writer, s internal.Statistics) {
	fmt.Fprintf(w, "Memories:       %d\n", s.TotalMemories)
	fmt.Fprintf(w, "Root memories:  %d\n", s.RootMemories)
	fmt.Fprintf(w, "Deepest branch: %d\n", s.DeepestBranch)

	if len(s.ByYear) > 0 {
		fmt.Fprintln(w, "\nBy year:")
		years := make([]int, 0, len(s.ByYear))
		for y := range s.ByYear {
			years = append(years, y)
		}
		slices.Sort(years)
		for _, y := range years {
			fmt.Fprintf(w, "  %d  %s %d\n", y, bar(s.ByYear[y]), s.ByYear[y])
		}
	}

	fmt.Fprintf(w, "\nBy month (%d):\n", s.MonthYear)
	for m := 1; m <= 12; m++ {
		fmt.Fprintf(w, "  %s  %s %d\n", time.Month(m).String()[:3], bar(s.ByMonth[m]), s.ByMonth[m])
	}

	if len(s.RecentActivity) > 0 {
		fmt.Fprintln(w, "\nRecent:")
		for _, r := range s.RecentActivity {
			fmt.Fprintf(w, "  %s  %s  %s\n", r.When.Format(internal.DateLayout), r.Title, r.ID)
		}
	}
}

func bar(n int) string {
	return strings.Repeat("█", min(n, 40))
}
