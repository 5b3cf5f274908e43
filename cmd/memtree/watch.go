package main

import (
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/4thel00z/memtree/internal"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

func NewWatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Reload and report when the workspace changes",
		Long:  `Watch the stored memories for changes made by other memtree processes, reload them, and print fresh statistics.`,
		Args:  cobra.NoArgs,
		RunE:  makeWatchRunner(a),
	}

	cmd.Flags().Duration("debounce", 500*time.Millisecond, "Debounce window for batching changes")
	return cmd
}

func makeWatchRunner(a *app) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		debounce, _ := cmd.Flags().GetDuration("debounce")

		svc, err := a.service(cmd)
		if err != nil {
			return err
		}
		dir := a.scope.BlobPath()

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("create watcher: %w", err)
		}
		defer watcher.Close()

		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Watching %s for changes...\n", dir)

		timer := time.NewTimer(0)
		if !timer.Stop() {
			<-timer.C
		}
		pending := false

		for {
			select {
			case <-cmd.Context().Done():
				return nil
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if shouldIgnoreEvent(event) {
					continue
				}
				if !pending {
					timer.Reset(debounce)
					pending = true
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "watch error: %v\n", err)
			case <-timer.C:
				pending = false
				if err := svc.Reload(cmd.Context()); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "reload: %v\n", err)
					continue
				}
				s := svc.ComputeStatistics()
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %d memories, %d roots, depth %d, %d archived\n",
					time.Now().Format(time.TimeOnly), s.TotalMemories, s.RootMemories, s.DeepestBranch, len(svc.ListArchived()))
			}
		}
	}
}

// shouldIgnoreEvent keeps content changes to the memory blobs only.
func shouldIgnoreEvent(event fsnotify.Event) bool {
	name := filepath.Base(event.Name)
	if !slices.ContainsFunc(internal.MemoryKeys, func(k internal.Key) bool { return k.String() == name }) {
		return true
	}

	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return true
	}

	return false
}
