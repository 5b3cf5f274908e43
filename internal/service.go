package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// MemoryService is the single entry point the presentation layer uses. It
// serialises every find, mutate and persist sequence and keeps the tree in
// memory between calls.
type MemoryService struct {
	mu       sync.Mutex
	tree     *TreeStore
	store    *Persistence
	ids      IDGenerator
	logger   *log.Logger
	now      func() time.Time
	stats    StatsOptions
	maxMedia int64
}

type ServiceOption func(*MemoryService)

func WithIDGenerator(ids IDGenerator) ServiceOption {
	return func(s *MemoryService) {
		s.ids = ids
	}
}

func WithLogger(logger *log.Logger) ServiceOption {
	return func(s *MemoryService) {
		s.logger = logger
	}
}

func WithClock(now func() time.Time) ServiceOption {
	return func(s *MemoryService) {
		s.now = now
	}
}

func WithStatsOptions(opts StatsOptions) ServiceOption {
	return func(s *MemoryService) {
		s.stats = opts
	}
}

func WithMaxMediaSize(n int64) ServiceOption {
	return func(s *MemoryService) {
		s.maxMedia = n
	}
}

func NewMemoryService(store *Persistence, opts ...ServiceOption) *MemoryService {
	s := &MemoryService{
		tree:     NewTreeStore(),
		store:    store,
		ids:      UUIDGenerator{},
		logger:   NopLogger(),
		now:      time.Now,
		maxMedia: DefaultMaxMediaSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reload replaces the in-memory tree with the stored one. Corrupt blobs are
// logged and replaced by empty collections.
func (s *MemoryService) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reload(ctx)
}

func (s *MemoryService) reload(ctx context.Context) error {
	active, archived, err := s.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrCorruptState) {
			return fmt.Errorf("reload: %w", err)
		}
		s.logger.Warn("stored memories are unreadable, starting empty", "err", err)
	}

	if err := s.tree.Replace(active, archived); err != nil {
		s.logger.Warn("stored memories reuse ids, starting empty", "err", err)
		s.tree.Clear()
	}

	s.logger.Debug("loaded memories", "active", TotalCount(s.tree.Active()), "archived", len(s.tree.Archived()))
	return nil
}

func (s *MemoryService) ListActive() []*MemoryNode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.ListActive()
}

func (s *MemoryService) ListArchived() []*MemoryNode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.ListArchived()
}

// GetMemory looks in the active forest first, then among archived roots.
func (s *MemoryService) GetMemory(id string) (*MemoryNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n, _, err := s.tree.FindByID(id); err == nil {
		return n.Clone(), nil
	}
	n, _, err := s.tree.FindArchived(id)
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", id, ErrNodeNotFound)
	}
	return n.Clone(), nil
}

// NewMediaDraft starts collecting attachments for the next AddMemory call.
func (s *MemoryService) NewMediaDraft() *MediaDraft {
	return NewMediaDraft(s.ids, s.maxMedia)
}

// AddMemory creates a memory under parentID, or as a new root when parentID
// is empty. A missing date defaults to today.
func (s *MemoryService) AddMemory(ctx context.Context, parentID string, in NewMemoryInput) (*MemoryNode, error) {
	if err := ValidateMemoryInput(&in); err != nil {
		return nil, err
	}
	if in.Date == "" {
		in.Date = s.now().Format(DateLayout)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	node := NewMemoryNode(s.ids.NewID(), in)
	if parentID == "" {
		if err := s.tree.InsertAsRoot(node); err != nil {
			return nil, err
		}
	} else if err := s.tree.InsertAsChild(parentID, node); err != nil {
		return nil, fmt.Errorf("add memory: %w", err)
	}

	s.logger.Info("added memory", "id", node.ID, "parent", parentID)
	return node.Clone(), s.persist(ctx, fmt.Sprintf("add: %s", node.Title))
}

// ArchiveMemory moves the subtree rooted at id into the archive.
func (s *MemoryService) ArchiveMemory(ctx context.Context, id string) (*MemoryNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, err := s.tree.ArchiveByID(id, s.now())
	if err != nil {
		return nil, err
	}

	s.logger.Info("archived memory", "id", id)
	return node.Clone(), s.persist(ctx, fmt.Sprintf("archive: %s", node.Title))
}

// RestoreMemory moves an archived subtree back as the last root.
func (s *MemoryService) RestoreMemory(ctx context.Context, id string) (*MemoryNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, err := s.tree.RestoreFromArchive(id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("restored memory", "id", id)
	return node.Clone(), s.persist(ctx, fmt.Sprintf("restore: %s", node.Title))
}

// DeleteMemory removes an active memory and its whole subtree.
func (s *MemoryService) DeleteMemory(ctx context.Context, id string) (*MemoryNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, err := s.tree.RemoveByID(id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("deleted memory", "id", id, "removed", TotalCount([]*MemoryNode{node}))
	return node, s.persist(ctx, fmt.Sprintf("delete: %s", node.Title))
}

// DeleteArchived removes an archived subtree for good.
func (s *MemoryService) DeleteArchived(ctx context.Context, id string) (*MemoryNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, err := s.tree.DeleteFromArchive(id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("purged archived memory", "id", id)
	return node, s.persist(ctx, fmt.Sprintf("purge: %s", node.Title))
}

// SearchArchive filters archived roots by a case-insensitive term matched
// against title and content, and by year when year is non-zero.
func (s *MemoryService) SearchArchive(term string, year int) []*MemoryNode {
	s.mu.Lock()
	defer s.mu.Unlock()

	term = strings.ToLower(strings.TrimSpace(term))
	out := []*MemoryNode{}
	for _, n := range s.tree.Archived() {
		if term != "" &&
			!strings.Contains(strings.ToLower(n.Title), term) &&
			!strings.Contains(strings.ToLower(n.Content), term) {
			continue
		}
		if year != 0 {
			t, ok := n.ParsedDate()
			if !ok || t.Year() != year {
				continue
			}
		}
		out = append(out, n.Clone())
	}
	return out
}

// ArchiveYears lists the distinct years of archived roots, newest first.
func (s *MemoryService) ArchiveYears() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var years []int
	for _, n := range s.tree.Archived() {
		if t, ok := n.ParsedDate(); ok && !slices.Contains(years, t.Year()) {
			years = append(years, t.Year())
		}
	}
	slices.SortFunc(years, func(a, b int) int { return b - a })
	return years
}

func (s *MemoryService) ComputeStatistics() Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()

	opts := s.stats
	opts.Now = s.now()
	return ComputeStatistics(s.tree.Active(), opts)
}

// ExportAll snapshots both collections with the stored settings and theme.
func (s *MemoryService) ExportAll(ctx context.Context) *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.ExportSnapshot(ctx, s.tree.ListActive(), s.tree.ListArchived(), s.now())
}

// ImportAll parses an export document and applies it. Present collections
// replace the current ones; a document that cannot be applied changes
// nothing.
func (s *MemoryService) ImportAll(ctx context.Context, data []byte) (*ImportDocument, error) {
	doc, err := ParseSnapshot(data)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	active, archived := s.tree.Active(), s.tree.Archived()
	if doc.HasMemories() {
		active = doc.Memories
	}
	if doc.HasArchived() {
		archived = doc.Archived
	}
	if err := s.tree.Replace(active, archived); err != nil {
		return nil, fmt.Errorf("import: %w: %v", ErrInvalidFormat, err)
	}

	if err := s.store.ImportSnapshot(ctx, doc); err != nil {
		return doc, storageError(err)
	}

	s.logger.Info("imported snapshot",
		"memories", doc.HasMemories(),
		"archived", doc.HasArchived(),
		"settings", doc.Settings != nil,
		"theme", doc.Theme != nil,
	)
	return doc, nil
}

func (s *MemoryService) Settings(ctx context.Context) Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.store.LoadSettings(ctx)
	if err != nil {
		s.logger.Warn("settings unreadable, using defaults", "err", err)
	}
	return settings
}

func (s *MemoryService) UpdateSettings(ctx context.Context, settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ValidateSettings(settings); err != nil {
		return err
	}
	if err := s.store.SaveSettings(ctx, settings); err != nil {
		return storageError(err)
	}
	return nil
}

func (s *MemoryService) Theme(ctx context.Context) Theme {
	s.mu.Lock()
	defer s.mu.Unlock()

	theme, err := s.store.LoadTheme(ctx)
	if err != nil {
		s.logger.Warn("theme unreadable, using light", "err", err)
	}
	return theme
}

func (s *MemoryService) SetTheme(ctx context.Context, theme Theme) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := ParseTheme(string(theme)); err != nil {
		return err
	}
	if err := s.store.SaveTheme(ctx, theme); err != nil {
		return storageError(err)
	}
	return nil
}

// ToggleTheme flips the stored theme and returns the new one.
func (s *MemoryService) ToggleTheme(ctx context.Context) (Theme, error) {
	next := s.Theme(ctx).Toggle()
	if err := s.SetTheme(ctx, next); err != nil {
		return "", err
	}
	return next, nil
}

// ClearAll drops every active and archived memory. Settings and theme stay.
func (s *MemoryService) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tree.Clear()
	if err := s.store.Clear(ctx); err != nil {
		return storageError(err)
	}
	s.logger.Info("cleared all memories")
	return nil
}

func (s *MemoryService) History(ctx context.Context, limit int) ([]*Commit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.History(ctx, limit)
}

// Revert restores the stored state at ref and reloads it.
func (s *MemoryService) Revert(ctx context.Context, ref string) (*Commit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	commit, err := s.store.Revert(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("revert: %w", err)
	}
	return commit, s.reload(ctx)
}

// Diff shows the stored changes since ref.
func (s *MemoryService) Diff(ctx context.Context, ref string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Diff(ctx, ref)
}

// DiffBackup compares a previously exported document with the current state.
func (s *MemoryService) DiffBackup(ctx context.Context, backup []byte) (*DocumentDiff, error) {
	current, err := json.Marshal(s.ExportAll(ctx))
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return DiffDocuments(backup, current)
}

// persist writes both collections. On failure the in-memory tree is kept.
func (s *MemoryService) persist(ctx context.Context, reason string) error {
	if err := s.store.Save(ctx, s.tree.Active(), s.tree.Archived(), reason); err != nil {
		s.logger.Error("save failed", "reason", reason, "err", err)
		return storageError(err)
	}
	return nil
}

func storageError(err error) error {
	if errors.Is(err, ErrStorageUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}
