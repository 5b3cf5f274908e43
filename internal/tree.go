package internal

import (
	"fmt"
	"slices"
	"time"
)

// TimestampLayout matches the millisecond UTC timestamps archive dates were
// historically written with.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Path addresses a node in the active forest: the first element indexes the
// roots, each following element indexes the previous node's children.
type Path []int

// Parent returns the path of the enclosing node, or nil for a root.
func (p Path) Parent() Path {
	if len(p) <= 1 {
		return nil
	}
	return p[:len(p)-1]
}

func (p Path) Depth() int {
	return len(p)
}

// TreeStore owns the active forest and the flat archive. It is not safe for
// concurrent use; MemoryService serialises access to it.
type TreeStore struct {
	active   []*MemoryNode
	archived []*MemoryNode
}

func NewTreeStore() *TreeStore {
	return &TreeStore{
		active:   []*MemoryNode{},
		archived: []*MemoryNode{},
	}
}

// Replace swaps both collections for the given ones. Identifiers must be
// unique across the two; nothing changes otherwise.
func (t *TreeStore) Replace(active, archived []*MemoryNode) error {
	seen := make(map[string]struct{})
	if err := collectIDs(active, seen); err != nil {
		return err
	}
	if err := collectIDs(archived, seen); err != nil {
		return err
	}

	t.active = normalizeForest(active)
	t.archived = normalizeForest(archived)
	return nil
}

func (t *TreeStore) Clear() {
	t.active = []*MemoryNode{}
	t.archived = []*MemoryNode{}
}

// Active exposes the live forest. Callers must not mutate it.
func (t *TreeStore) Active() []*MemoryNode {
	return t.active
}

// Archived exposes the live archive. Callers must not mutate it.
func (t *TreeStore) Archived() []*MemoryNode {
	return t.archived
}

func (t *TreeStore) ListActive() []*MemoryNode {
	return cloneForest(t.active)
}

func (t *TreeStore) ListArchived() []*MemoryNode {
	return cloneForest(t.archived)
}

// FindByID searches the active forest depth-first in child order. Archived
// nodes are not searched.
func (t *TreeStore) FindByID(id string) (*MemoryNode, Path, error) {
	path, ok := findPath(t.active, id, nil)
	if !ok {
		return nil, nil, fmt.Errorf("find %q: %w", id, ErrNodeNotFound)
	}
	return t.nodeAt(path), path, nil
}

// FindArchived scans the archive for a top-level entry.
func (t *TreeStore) FindArchived(id string) (*MemoryNode, int, error) {
	idx := t.archivedIndex(id)
	if idx < 0 {
		return nil, -1, fmt.Errorf("find archived %q: %w", id, ErrNodeNotFound)
	}
	return t.archived[idx], idx, nil
}

// Contains reports whether id is used anywhere in either collection.
func (t *TreeStore) Contains(id string) bool {
	found := false
	visit := func(n *MemoryNode, _ int) {
		if n.ID == id {
			found = true
		}
	}
	for _, root := range t.active {
		root.Walk(visit)
	}
	for _, root := range t.archived {
		root.Walk(visit)
	}
	return found
}

func (t *TreeStore) InsertAsRoot(node *MemoryNode) error {
	if err := t.checkFresh(node); err != nil {
		return err
	}
	t.active = append(t.active, node)
	return nil
}

func (t *TreeStore) InsertAsChild(parentID string, node *MemoryNode) error {
	parent, _, err := t.FindByID(parentID)
	if err != nil {
		return err
	}
	if err := t.checkFresh(node); err != nil {
		return err
	}
	if parent.Children == nil {
		parent.Children = []*MemoryNode{}
	}
	parent.Children = append(parent.Children, node)
	return nil
}

// RemoveByID detaches the node and its subtree from wherever it sits and
// returns it. Remaining siblings keep their order.
func (t *TreeStore) RemoveByID(id string) (*MemoryNode, error) {
	_, path, err := t.FindByID(id)
	if err != nil {
		return nil, err
	}
	return t.detach(path), nil
}

// ArchiveByID moves the subtree rooted at id into the archive, stamping the
// root with archivedAt. If the archive refuses the node it is put back where
// it was.
func (t *TreeStore) ArchiveByID(id string, archivedAt time.Time) (*MemoryNode, error) {
	_, path, err := t.FindByID(id)
	if err != nil {
		return nil, err
	}

	node := t.detach(path)
	previous := node.ArchiveDate
	node.ArchiveDate = archivedAt.UTC().Format(TimestampLayout)

	if err := t.appendArchived(node); err != nil {
		node.ArchiveDate = previous
		t.insertAt(path, node)
		return nil, fmt.Errorf("archive %q: %w", id, err)
	}
	return node, nil
}

// RestoreFromArchive moves an archived subtree back as the last root of the
// active forest.
func (t *TreeStore) RestoreFromArchive(id string) (*MemoryNode, error) {
	node, idx, err := t.FindArchived(id)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	if err := collectIDs(t.active, seen); err != nil {
		return nil, err
	}
	if err := collectIDs([]*MemoryNode{node}, seen); err != nil {
		return nil, fmt.Errorf("restore %q: %w", id, err)
	}

	t.archived = slices.Delete(t.archived, idx, idx+1)
	node.ArchiveDate = ""
	t.active = append(t.active, node)
	return node, nil
}

func (t *TreeStore) DeleteFromArchive(id string) (*MemoryNode, error) {
	node, idx, err := t.FindArchived(id)
	if err != nil {
		return nil, err
	}
	t.archived = slices.Delete(t.archived, idx, idx+1)
	return node, nil
}

func (t *TreeStore) appendArchived(node *MemoryNode) error {
	if t.archivedIndex(node.ID) >= 0 {
		return ErrDuplicateID
	}
	t.archived = append(t.archived, node)
	return nil
}

func (t *TreeStore) archivedIndex(id string) int {
	return slices.IndexFunc(t.archived, func(n *MemoryNode) bool {
		return n.ID == id
	})
}

// checkFresh rejects a node whose subtree reuses an id already present.
func (t *TreeStore) checkFresh(node *MemoryNode) error {
	if node == nil || node.ID == "" {
		return fmt.Errorf("insert: %w: missing id", ErrInvalidMemory)
	}
	seen := make(map[string]struct{})
	var err error
	node.Walk(func(n *MemoryNode, _ int) {
		if _, dup := seen[n.ID]; dup && err == nil {
			err = fmt.Errorf("insert %q: %w", n.ID, ErrDuplicateID)
		}
		seen[n.ID] = struct{}{}
		if err == nil && t.Contains(n.ID) {
			err = fmt.Errorf("insert %q: %w", n.ID, ErrDuplicateID)
		}
	})
	return err
}

func (t *TreeStore) siblings(path Path) *[]*MemoryNode {
	list := &t.active
	for _, idx := range path.Parent() {
		list = &(*list)[idx].Children
	}
	return list
}

func (t *TreeStore) nodeAt(path Path) *MemoryNode {
	list := t.siblings(path)
	return (*list)[path[len(path)-1]]
}

func (t *TreeStore) detach(path Path) *MemoryNode {
	list := t.siblings(path)
	idx := path[len(path)-1]
	node := (*list)[idx]
	*list = slices.Delete(*list, idx, idx+1)
	return node
}

func (t *TreeStore) insertAt(path Path, node *MemoryNode) {
	list := t.siblings(path)
	idx := min(path[len(path)-1], len(*list))
	*list = slices.Insert(*list, idx, node)
}

func findPath(nodes []*MemoryNode, id string, prefix Path) (Path, bool) {
	for i, n := range nodes {
		p := append(prefix[:len(prefix):len(prefix)], i)
		if n.ID == id {
			return p, true
		}
		if found, ok := findPath(n.Children, id, p); ok {
			return found, true
		}
	}
	return nil, false
}

func collectIDs(nodes []*MemoryNode, seen map[string]struct{}) error {
	for _, n := range nodes {
		if n == nil {
			return fmt.Errorf("%w: null memory", ErrInvalidMemory)
		}
		if _, dup := seen[n.ID]; dup {
			return fmt.Errorf("id %q: %w", n.ID, ErrDuplicateID)
		}
		seen[n.ID] = struct{}{}
		if err := collectIDs(n.Children, seen); err != nil {
			return err
		}
	}
	return nil
}

// normalizeForest replaces nil slices so the forest encodes as [] rather
// than null.
func normalizeForest(nodes []*MemoryNode) []*MemoryNode {
	if nodes == nil {
		return []*MemoryNode{}
	}
	for _, n := range nodes {
		if n.Media == nil {
			n.Media = []MediaAttachment{}
		}
		n.Children = normalizeForest(n.Children)
	}
	return nodes
}
