package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(id string, children ...*MemoryNode) *MemoryNode {
	if children == nil {
		children = []*MemoryNode{}
	}
	return &MemoryNode{
		ID:       id,
		Title:    "title " + id,
		Media:    []MediaAttachment{},
		Children: children,
	}
}

func ids(nodes []*MemoryNode) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}

// sampleTree builds:
//
//	a
//	├── b
//	│   └── c
//	└── d
//	e
func sampleTree(t *testing.T) *TreeStore {
	t.Helper()
	ts := NewTreeStore()
	require.NoError(t, ts.Replace(
		[]*MemoryNode{
			node("a", node("b", node("c")), node("d")),
			node("e"),
		},
		nil,
	))
	return ts
}

func assertUniqueIDs(t *testing.T, ts *TreeStore) {
	t.Helper()
	seen := make(map[string]struct{})
	assert.NoError(t, collectIDs(ts.Active(), seen))
	assert.NoError(t, collectIDs(ts.Archived(), seen))
}

func TestFindByIDEmptyForest(t *testing.T) {
	ts := NewTreeStore()
	_, _, err := ts.FindByID("missing")
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestFindByIDReturnsPath(t *testing.T) {
	ts := sampleTree(t)

	n, path, err := ts.FindByID("c")
	require.NoError(t, err)
	assert.Equal(t, "c", n.ID)
	assert.Equal(t, Path{0, 0, 0}, path)
	assert.Equal(t, Path{0, 0}, path.Parent())

	n, path, err = ts.FindByID("e")
	require.NoError(t, err)
	assert.Equal(t, "e", n.ID)
	assert.Equal(t, Path{1}, path)
	assert.Nil(t, path.Parent())
}

func TestFindByIDIgnoresArchive(t *testing.T) {
	ts := sampleTree(t)
	_, err := ts.ArchiveByID("d", time.Now())
	require.NoError(t, err)

	_, _, err = ts.FindByID("d")
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestInsertAsRootAppends(t *testing.T) {
	ts := sampleTree(t)
	require.NoError(t, ts.InsertAsRoot(node("f")))
	assert.Equal(t, []string{"a", "e", "f"}, ids(ts.Active()))
}

func TestInsertAsChildAtDepth(t *testing.T) {
	ts := sampleTree(t)
	require.NoError(t, ts.InsertAsChild("c", node("x")))
	require.NoError(t, ts.InsertAsChild("c", node("y")))

	c, _, err := ts.FindByID("c")
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, ids(c.Children))
}

func TestInsertAsChildNilChildren(t *testing.T) {
	ts := NewTreeStore()
	require.NoError(t, ts.InsertAsRoot(&MemoryNode{ID: "p"}))
	require.NoError(t, ts.InsertAsChild("p", node("q")))

	p, _, err := ts.FindByID("p")
	require.NoError(t, err)
	assert.Equal(t, []string{"q"}, ids(p.Children))
}

func TestInsertAsChildMissingParentLeavesStateUnchanged(t *testing.T) {
	ts := sampleTree(t)
	before := ts.ListActive()

	err := ts.InsertAsChild("nope", node("x"))
	assert.ErrorIs(t, err, ErrNodeNotFound)
	assert.Equal(t, before, ts.ListActive())
	assert.Empty(t, ts.Archived())
}

func TestInsertRejectsDuplicateID(t *testing.T) {
	ts := sampleTree(t)
	assert.ErrorIs(t, ts.InsertAsRoot(node("c")), ErrDuplicateID)
	assert.ErrorIs(t, ts.InsertAsChild("a", node("z", node("e"))), ErrDuplicateID)

	_, err := ts.ArchiveByID("d", time.Now())
	require.NoError(t, err)
	assert.ErrorIs(t, ts.InsertAsRoot(node("d")), ErrDuplicateID)
	assertUniqueIDs(t, ts)
}

func TestRemoveChildOfRoot(t *testing.T) {
	ts := NewTreeStore()
	require.NoError(t, ts.Replace([]*MemoryNode{node("root1", node("child1"))}, nil))

	removed, err := ts.RemoveByID("child1")
	require.NoError(t, err)
	assert.Equal(t, "child1", removed.ID)

	require.Len(t, ts.Active(), 1)
	assert.Equal(t, "root1", ts.Active()[0].ID)
	assert.Empty(t, ts.Active()[0].Children)
}

func TestRemoveKeepsSiblingOrder(t *testing.T) {
	ts := NewTreeStore()
	require.NoError(t, ts.Replace([]*MemoryNode{node("p", node("1"), node("2"), node("3"))}, nil))

	_, err := ts.RemoveByID("2")
	require.NoError(t, err)

	p, _, err := ts.FindByID("p")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3"}, ids(p.Children))
}

func TestRemoveSubtreeCount(t *testing.T) {
	ts := sampleTree(t)
	before := TotalCount(ts.Active())

	removed, err := ts.RemoveByID("b")
	require.NoError(t, err)

	removedCount := TotalCount([]*MemoryNode{removed})
	assert.Equal(t, 2, removedCount)
	assert.Equal(t, before-removedCount, TotalCount(ts.Active()))
	assert.Equal(t, []string{"c"}, ids(removed.Children))
}

func TestRemoveMissing(t *testing.T) {
	ts := sampleTree(t)
	_, err := ts.RemoveByID("zzz")
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestArchiveThenRestore(t *testing.T) {
	ts := sampleTree(t)
	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	archived, err := ts.ArchiveByID("b", at)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-06T07:08:09.000Z", archived.ArchiveDate)
	assert.Equal(t, []string{"b"}, ids(ts.Archived()))
	assert.Equal(t, []string{"c"}, ids(ts.Archived()[0].Children))

	a, _, err := ts.FindByID("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"d"}, ids(a.Children))

	restored, err := ts.RestoreFromArchive("b")
	require.NoError(t, err)
	assert.Empty(t, restored.ArchiveDate)
	assert.Empty(t, ts.Archived())
	assert.Equal(t, []string{"a", "e", "b"}, ids(ts.Active()))
	assert.Equal(t, []string{"c"}, ids(ts.Active()[2].Children))
	assertUniqueIDs(t, ts)
}

func TestArchiveTwiceIsNotFound(t *testing.T) {
	ts := sampleTree(t)
	_, err := ts.ArchiveByID("e", time.Now())
	require.NoError(t, err)

	_, err = ts.ArchiveByID("e", time.Now())
	assert.ErrorIs(t, err, ErrNodeNotFound)
	assert.Len(t, ts.Archived(), 1)
}

func TestArchiveConflictRestoresPosition(t *testing.T) {
	ts := NewTreeStore()
	ts.active = []*MemoryNode{node("a", node("x"), node("y"))}
	ts.archived = []*MemoryNode{node("x")}

	_, err := ts.ArchiveByID("x", time.Now())
	assert.ErrorIs(t, err, ErrDuplicateID)

	a, path, err := ts.FindByID("x")
	require.NoError(t, err)
	assert.Equal(t, Path{0, 0}, path)
	assert.Empty(t, a.ArchiveDate)
	assert.Equal(t, []string{"x", "y"}, ids(ts.Active()[0].Children))
	assert.Len(t, ts.Archived(), 1)
}

func TestRestoreMissing(t *testing.T) {
	ts := sampleTree(t)
	_, err := ts.RestoreFromArchive("a")
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestDeleteFromArchive(t *testing.T) {
	ts := sampleTree(t)
	_, err := ts.ArchiveByID("a", time.Now())
	require.NoError(t, err)

	deleted, err := ts.DeleteFromArchive("a")
	require.NoError(t, err)
	assert.Equal(t, "a", deleted.ID)
	assert.Empty(t, ts.Archived())
	assert.False(t, ts.Contains("c"))

	_, err = ts.DeleteFromArchive("a")
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestReplaceRejectsDuplicates(t *testing.T) {
	ts := sampleTree(t)
	err := ts.Replace([]*MemoryNode{node("a")}, []*MemoryNode{node("a")})
	assert.ErrorIs(t, err, ErrDuplicateID)
	assert.Equal(t, []string{"a", "e"}, ids(ts.Active()))
}

func TestListActiveIsCopy(t *testing.T) {
	ts := sampleTree(t)
	list := ts.ListActive()
	list[0].Title = "changed"
	list[0].Children = nil

	a, _, err := ts.FindByID("a")
	require.NoError(t, err)
	assert.Equal(t, "title a", a.Title)
	assert.Len(t, a.Children, 2)
}

func TestMixedOperationsKeepIDsUnique(t *testing.T) {
	ts := NewTreeStore()
	gen := NewSequenceGenerator("m")

	var created []string
	for i := 0; i < 20; i++ {
		n := node(gen.NewID())
		if i%3 == 0 || len(created) == 0 {
			require.NoError(t, ts.InsertAsRoot(n))
		} else {
			require.NoError(t, ts.InsertAsChild(created[i/2], n))
		}
		created = append(created, n.ID)
	}

	_, err := ts.ArchiveByID(created[4], time.Now())
	require.NoError(t, err)
	_, err = ts.RemoveByID(created[0])
	require.NoError(t, err)
	_, err = ts.RestoreFromArchive(created[4])
	require.NoError(t, err)

	assertUniqueIDs(t, ts)
}
