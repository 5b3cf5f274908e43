package main

import (
	"context"
	"fmt"
	"os"

	"github.com/4thel00z/memtree/internal"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

// version is set via ldflags at build time
var version = "dev"

func main() {
	ctx := context.Background()

	rootCmd := NewRootCmd(version, newApp(internal.NewScopeResolver()))
	if err := fang.Execute(ctx, rootCmd); err != nil {
		os.Exit(1)
	}
}

// app opens the workspace store lazily, once the --scope flag is known.
type app struct {
	resolver *internal.ScopeResolver

	scope internal.Scope
	cfg   *internal.Config
	svc   *internal.MemoryService
}

func newApp(resolver *internal.ScopeResolver) *app {
	return &app{resolver: resolver}
}

func (a *app) resolve(cmd *cobra.Command) internal.Scope {
	scopeHint, _ := cmd.Flags().GetString("scope")
	return a.resolver.Resolve(scopeHint)
}

// service returns the memory service of the resolved workspace, loading the
// stored tree on first use.
func (a *app) service(cmd *cobra.Command) (*internal.MemoryService, error) {
	return a.serviceAt(cmd, a.resolve(cmd))
}

func (a *app) serviceAt(cmd *cobra.Command, scope internal.Scope) (*internal.MemoryService, error) {
	if a.svc != nil && a.scope.DataPath == scope.DataPath {
		return a.svc, nil
	}

	if !scope.Initialized() {
		return nil, fmt.Errorf("no memtree workspace at %s, run 'memtree init': %w", scope.DataPath, internal.ErrStorageUnavailable)
	}

	cfg, err := internal.LoadConfig(scope)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	store, err := internal.OpenGitBlobStore(scope)
	if err != nil {
		return nil, err
	}

	logger := internal.NewLogger(cmd.ErrOrStderr(), cfg.Log.Level)
	svc := internal.NewMemoryService(internal.NewPersistence(store),
		internal.WithLogger(logger),
		internal.WithStatsOptions(cfg.StatsOptions()),
		internal.WithMaxMediaSize(cfg.Media.MaxSizeBytes),
	)
	if err := svc.Reload(cmd.Context()); err != nil {
		return nil, err
	}

	a.scope, a.cfg, a.svc = scope, cfg, svc
	return svc, nil
}

func (a *app) providers(cmd *cobra.Command) *internal.ProviderService {
	return internal.NewProviderService(a.resolve(cmd))
}
