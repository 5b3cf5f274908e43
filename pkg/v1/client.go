package v1

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/4thel00z/memtree/internal"
)

// Client provides programmatic access to the memory tree.
type Client struct {
	svc *internal.MemoryService
}

// New opens the memory store selected by the options and loads it.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	var (
		store    *internal.GitBlobStore
		settings = internal.DefaultConfig()
		err      error
	)

	if cfg.inMemory {
		store, err = internal.NewMemoryBlobStore()
	} else {
		scope := internal.NewScopeResolver().Resolve(cfg.scope)
		if cfg.dir != "" {
			scope = internal.NewScope(internal.ScopeProject, cfg.dir)
		}
		if settings, err = internal.LoadConfig(scope); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		store, err = internal.OpenOrInitGitBlobStore(scope)
	}
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	svcOpts := []internal.ServiceOption{
		internal.WithStatsOptions(settings.StatsOptions()),
		internal.WithMaxMediaSize(settings.Media.MaxSizeBytes),
	}
	if cfg.logger != nil {
		svcOpts = append(svcOpts, internal.WithLogger(cfg.logger))
	}

	svc := internal.NewMemoryService(internal.NewPersistence(store), svcOpts...)
	if err := svc.Reload(context.Background()); err != nil {
		return nil, err
	}

	return &Client{svc: svc}, nil
}

// Add records a memory under parentID, or as a root when parentID is empty.
func (c *Client) Add(ctx context.Context, parentID string, m NewMemory) (Memory, error) {
	draft := c.svc.NewMediaDraft()
	defer draft.Close()

	for _, name := range slices.Sorted(maps.Keys(m.Attachments)) {
		if _, err := draft.Attach(name, m.Attachments[name]); err != nil {
			return Memory{}, fmt.Errorf("attach %s: %w", name, err)
		}
	}
	media, err := draft.Submit()
	if err != nil {
		return Memory{}, err
	}

	node, err := c.svc.AddMemory(ctx, parentID, internal.NewMemoryInput{
		Title:   m.Title,
		Content: m.Content,
		Date:    m.Date,
		Media:   media,
	})
	if err != nil {
		return Memory{}, fmt.Errorf("add: %w", err)
	}
	return toMemory(node), nil
}

// Get returns a memory with its children. Archived memories are found too.
func (c *Client) Get(_ context.Context, id string) (Memory, error) {
	node, err := c.svc.GetMemory(id)
	if err != nil {
		return Memory{}, err
	}
	return toMemory(node), nil
}

// List returns the active memory roots.
func (c *Client) List(_ context.Context) []Memory {
	return toMemories(c.svc.ListActive())
}

// Archived returns archived memories matching term and year. Zero values
// match everything.
func (c *Client) Archived(_ context.Context, term string, year int) []Memory {
	return toMemories(c.svc.SearchArchive(term, year))
}

// Archive moves a memory and its children to the archive.
func (c *Client) Archive(ctx context.Context, id string) error {
	if _, err := c.svc.ArchiveMemory(ctx, id); err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	return nil
}

// Restore brings an archived memory back as a root.
func (c *Client) Restore(ctx context.Context, id string) error {
	if _, err := c.svc.RestoreMemory(ctx, id); err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	return nil
}

// Delete removes an active memory and its children.
func (c *Client) Delete(ctx context.Context, id string) error {
	if _, err := c.svc.DeleteMemory(ctx, id); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

// Purge removes an archived memory for good.
func (c *Client) Purge(ctx context.Context, id string) error {
	if _, err := c.svc.DeleteArchived(ctx, id); err != nil {
		return fmt.Errorf("purge: %w", err)
	}
	return nil
}

// Stats computes statistics over the active tree.
func (c *Client) Stats(_ context.Context) Stats {
	s := c.svc.ComputeStatistics()
	recent := make([]string, 0, len(s.RecentActivity))
	for _, r := range s.RecentActivity {
		recent = append(recent, r.ID)
	}
	return Stats{
		Total:         s.TotalMemories,
		Roots:         s.RootMemories,
		DeepestBranch: s.DeepestBranch,
		ByYear:        s.ByYear,
		ByMonth:       s.ByMonth,
		Recent:        recent,
	}
}

// Export returns the whole store as a JSON document.
func (c *Client) Export(ctx context.Context) ([]byte, error) {
	data, err := json.MarshalIndent(c.svc.ExportAll(ctx), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return data, nil
}

// Import loads a document written by Export.
func (c *Client) Import(ctx context.Context, data []byte) error {
	if _, err := c.svc.ImportAll(ctx, data); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	return nil
}

// History returns up to limit snapshots, newest first.
func (c *Client) History(ctx context.Context, limit int) ([]Commit, error) {
	commits, err := c.svc.History(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}

	out := make([]Commit, 0, len(commits))
	for _, cm := range commits {
		out = append(out, Commit{Hash: cm.Hash, Message: cm.Message, Timestamp: cm.Timestamp})
	}
	return out, nil
}

// Close releases any resources held by the client.
func (c *Client) Close() error {
	return nil
}

func toMemories(nodes []*internal.MemoryNode) []Memory {
	out := make([]Memory, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, toMemory(n))
	}
	return out
}

func toMemory(n *internal.MemoryNode) Memory {
	m := Memory{
		ID:         n.ID,
		Title:      n.Title,
		Content:    n.Content,
		Date:       n.DisplayDate(),
		ArchivedAt: n.ArchiveDate,
	}
	for _, a := range n.Media {
		m.Media = append(m.Media, Media{ID: a.ID, Name: a.Name, Type: a.Type, Data: a.Data})
	}
	if len(n.Children) > 0 {
		m.Children = toMemories(n.Children)
	}
	return m
}
