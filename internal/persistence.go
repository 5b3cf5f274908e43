package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Blob keys of the persisted documents.
const (
	KeyMemories Key = "memories"
	KeyArchived Key = "archived_memories"
	KeySettings Key = "app_settings"
	KeyTheme    Key = "app_theme"
)

// MemoryKeys are the blobs holding memory trees.
var MemoryKeys = []Key{KeyMemories, KeyArchived}

// AllKeys are every blob memtree owns.
var AllKeys = []Key{KeyMemories, KeyArchived, KeySettings, KeyTheme}

// HistoryStore is implemented by blob stores that keep past snapshots.
type HistoryStore interface {
	Log(ctx context.Context, limit int) ([]*Commit, error)
	Revert(ctx context.Context, ref string, keys []Key) (*Commit, error)
	Diff(ctx context.Context, ref string) (string, error)
}

// Persistence maps the tree collections, settings and theme onto blobs.
type Persistence struct {
	store BlobStore
}

func NewPersistence(store BlobStore) *Persistence {
	return &Persistence{store: store}
}

// Load reads both collections. An absent blob yields an empty collection.
// A blob that does not decode yields ErrCorruptState; the other collection
// is still returned.
func (p *Persistence) Load(ctx context.Context) ([]*MemoryNode, []*MemoryNode, error) {
	active, activeErr := p.loadForest(ctx, KeyMemories)
	archived, archivedErr := p.loadForest(ctx, KeyArchived)
	return active, archived, errors.Join(activeErr, archivedErr)
}

func (p *Persistence) loadForest(ctx context.Context, key Key) ([]*MemoryNode, error) {
	data, err := p.store.Get(ctx, key)
	if errors.Is(err, ErrBlobNotFound) {
		return []*MemoryNode{}, nil
	}
	if err != nil {
		return []*MemoryNode{}, fmt.Errorf("load %s: %w", key, err)
	}

	forest, err := decodeForest(data)
	if err != nil {
		return []*MemoryNode{}, fmt.Errorf("load %s: %w: %v", key, ErrCorruptState, err)
	}
	return forest, nil
}

// Save overwrites both collections and records them as one snapshot.
func (p *Persistence) Save(ctx context.Context, active, archived []*MemoryNode, reason string) error {
	if err := p.putJSON(ctx, KeyMemories, nonNil(active)); err != nil {
		return err
	}
	if err := p.putJSON(ctx, KeyArchived, nonNil(archived)); err != nil {
		return err
	}
	return p.commit(ctx, reason)
}

func (p *Persistence) LoadSettings(ctx context.Context) (Settings, error) {
	settings := DefaultSettings()

	data, err := p.store.Get(ctx, KeySettings)
	if errors.Is(err, ErrBlobNotFound) {
		return settings, nil
	}
	if err != nil {
		return settings, fmt.Errorf("load settings: %w", err)
	}

	if err := json.Unmarshal(data, &settings); err != nil {
		return DefaultSettings(), fmt.Errorf("load settings: %w: %v", ErrCorruptState, err)
	}
	if err := ValidateSettings(settings); err != nil {
		return DefaultSettings(), fmt.Errorf("load settings: %w: %v", ErrCorruptState, err)
	}
	return settings, nil
}

func (p *Persistence) SaveSettings(ctx context.Context, settings Settings) error {
	if err := ValidateSettings(settings); err != nil {
		return err
	}
	if err := p.putJSON(ctx, KeySettings, settings); err != nil {
		return err
	}
	return p.commit(ctx, "settings: update")
}

// LoadTheme returns the stored theme, light when none is stored.
func (p *Persistence) LoadTheme(ctx context.Context) (Theme, error) {
	data, err := p.store.Get(ctx, KeyTheme)
	if errors.Is(err, ErrBlobNotFound) {
		return ThemeLight, nil
	}
	if err != nil {
		return ThemeLight, fmt.Errorf("load theme: %w", err)
	}

	theme, err := ParseTheme(string(data))
	if err != nil {
		return ThemeLight, fmt.Errorf("load theme: %w: %v", ErrCorruptState, err)
	}
	return theme, nil
}

func (p *Persistence) SaveTheme(ctx context.Context, theme Theme) error {
	if _, err := ParseTheme(string(theme)); err != nil {
		return err
	}
	if err := p.store.Put(ctx, KeyTheme, []byte(theme)); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return p.commit(ctx, fmt.Sprintf("theme: %s", theme))
}

// Clear removes both memory collections. Settings and theme are kept.
func (p *Persistence) Clear(ctx context.Context) error {
	for _, key := range MemoryKeys {
		if err := p.store.Delete(ctx, key); err != nil && !errors.Is(err, ErrBlobNotFound) {
			return fmt.Errorf("clear: %w", err)
		}
	}
	return p.commit(ctx, "clear: remove all memories")
}

// Snapshot is the export document.
type Snapshot struct {
	Memories         []*MemoryNode `json:"memories"`
	ArchivedMemories []*MemoryNode `json:"archived_memories"`
	Settings         Settings      `json:"settings"`
	Theme            Theme         `json:"theme"`
	ExportDate       string        `json:"exportDate"`
}

// ExportSnapshot bundles the given collections with the stored settings and
// theme. Unreadable settings or theme fall back to defaults.
func (p *Persistence) ExportSnapshot(ctx context.Context, active, archived []*MemoryNode, now time.Time) *Snapshot {
	settings, _ := p.LoadSettings(ctx)
	theme, _ := p.LoadTheme(ctx)

	return &Snapshot{
		Memories:         nonNil(active),
		ArchivedMemories: nonNil(archived),
		Settings:         settings,
		Theme:            theme,
		ExportDate:       now.UTC().Format(TimestampLayout),
	}
}

// ImportDocument is a decoded import. Nil fields were absent.
type ImportDocument struct {
	Memories []*MemoryNode
	Archived []*MemoryNode
	Settings *Settings
	Theme    *Theme
}

func (d *ImportDocument) HasMemories() bool {
	return d.Memories != nil
}

func (d *ImportDocument) HasArchived() bool {
	return d.Archived != nil
}

// ParseSnapshot decodes an export document. Any subset of the top-level keys
// may be present, but at least one must be; a present key that does not
// decode rejects the whole document.
func ParseSnapshot(data []byte) (*ImportDocument, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	doc := &ImportDocument{}
	recognized := false

	if msg, ok := present(raw, string(KeyMemories)); ok {
		forest, err := decodeForest(msg)
		if err != nil {
			return nil, fmt.Errorf("%w: memories: %v", ErrInvalidFormat, err)
		}
		doc.Memories = forest
		recognized = true
	}

	if msg, ok := present(raw, string(KeyArchived)); ok {
		forest, err := decodeForest(msg)
		if err != nil {
			return nil, fmt.Errorf("%w: archived_memories: %v", ErrInvalidFormat, err)
		}
		doc.Archived = forest
		recognized = true
	}

	if msg, ok := present(raw, "settings"); ok {
		settings := DefaultSettings()
		if err := json.Unmarshal(msg, &settings); err != nil {
			return nil, fmt.Errorf("%w: settings: %v", ErrInvalidFormat, err)
		}
		if err := ValidateSettings(settings); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		doc.Settings = &settings
		recognized = true
	}

	if msg, ok := present(raw, "theme"); ok {
		var s string
		if err := json.Unmarshal(msg, &s); err != nil {
			return nil, fmt.Errorf("%w: theme: %v", ErrInvalidFormat, err)
		}
		theme, err := ParseTheme(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		doc.Theme = &theme
		recognized = true
	}

	if !recognized {
		return nil, fmt.Errorf("%w: no memories, archived_memories, settings or theme", ErrInvalidFormat)
	}
	return doc, nil
}

// ImportSnapshot writes every part present in doc, leaving the rest alone,
// and records the result as one snapshot.
func (p *Persistence) ImportSnapshot(ctx context.Context, doc *ImportDocument) error {
	if doc.HasMemories() {
		if err := p.putJSON(ctx, KeyMemories, doc.Memories); err != nil {
			return err
		}
	}
	if doc.HasArchived() {
		if err := p.putJSON(ctx, KeyArchived, doc.Archived); err != nil {
			return err
		}
	}
	if doc.Settings != nil {
		if err := p.putJSON(ctx, KeySettings, *doc.Settings); err != nil {
			return err
		}
	}
	if doc.Theme != nil {
		if err := p.store.Put(ctx, KeyTheme, []byte(*doc.Theme)); err != nil {
			return fmt.Errorf("save theme: %w", err)
		}
	}
	return p.commit(ctx, "import: restore snapshot")
}

func (p *Persistence) History(ctx context.Context, limit int) ([]*Commit, error) {
	hs, ok := p.store.(HistoryStore)
	if !ok {
		return nil, fmt.Errorf("history: store keeps no history")
	}
	return hs.Log(ctx, limit)
}

// Revert restores every memtree blob to its content at ref.
func (p *Persistence) Revert(ctx context.Context, ref string) (*Commit, error) {
	hs, ok := p.store.(HistoryStore)
	if !ok {
		return nil, fmt.Errorf("revert: store keeps no history")
	}
	return hs.Revert(ctx, ref, AllKeys)
}

// Diff shows what changed in the stored blobs since ref.
func (p *Persistence) Diff(ctx context.Context, ref string) (string, error) {
	hs, ok := p.store.(HistoryStore)
	if !ok {
		return "", fmt.Errorf("diff: store keeps no history")
	}
	return hs.Diff(ctx, ref)
}

func (p *Persistence) putJSON(ctx context.Context, key Key, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := p.store.Put(ctx, key, data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (p *Persistence) commit(ctx context.Context, reason string) error {
	if _, err := p.store.Commit(ctx, reason); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

func decodeForest(data []byte) ([]*MemoryNode, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("empty document")
	}
	var forest []*MemoryNode
	if err := json.Unmarshal(data, &forest); err != nil {
		return nil, err
	}
	if hasNull(forest) {
		return nil, errors.New("null memory in list")
	}
	return normalizeForest(forest), nil
}

func hasNull(nodes []*MemoryNode) bool {
	for _, n := range nodes {
		if n == nil || hasNull(n.Children) {
			return true
		}
	}
	return false
}

// present reports whether key exists with a non-null value.
func present(raw map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	msg, ok := raw[key]
	if !ok || bytes.Equal(bytes.TrimSpace(msg), []byte("null")) {
		return nil, false
	}
	return msg, true
}

func nonNil(forest []*MemoryNode) []*MemoryNode {
	if forest == nil {
		return []*MemoryNode{}
	}
	return forest
}
