package internal

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKey(t *testing.T) {
	for _, s := range []string{"memories", "archived_memories", "app_theme", "a.b", "config/db"} {
		k, err := NewKey(s)
		assert.NoError(t, err)
		assert.Equal(t, s, k.String())
	}
	for _, s := range []string{"", "-x", "has space", ".hidden", "_x", "special!char"} {
		_, err := NewKey(s)
		assert.ErrorIs(t, err, ErrInvalidKey)
	}
}

func TestMemoryNodeJSONShape(t *testing.T) {
	n := NewMemoryNode("mem_1", NewMemoryInput{Title: "t", Content: "c", Date: "2024-01-01"})

	data, err := json.Marshal(n)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"mem_1","title":"t","content":"c","date":"2024-01-01","media":[],"children":[]}`, string(data))

	n.ArchiveDate = "2024-02-01T00:00:00.000Z"
	data, err = json.Marshal(n)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"archiveDate":"2024-02-01T00:00:00.000Z"`)
}

func TestMemoryNodeDecodesMalformedDate(t *testing.T) {
	var n MemoryNode
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a","date":"last summer"}`), &n))

	_, ok := n.ParsedDate()
	assert.False(t, ok)
	assert.Equal(t, "last summer", n.DisplayDate())
}

func TestParsedDateLayouts(t *testing.T) {
	for _, s := range []string{
		"2024-03-05",
		"2024-03-05T10:00:00Z",
		"2024-03-05T10:00:00.123Z",
		"2024-03-05T10:00:00",
		"2024-03-05T10:00",
	} {
		n := &MemoryNode{Date: s}
		got, ok := n.ParsedDate()
		if assert.True(t, ok, s) {
			assert.Equal(t, 2024, got.Year())
			assert.Equal(t, "2024-03-05", n.DisplayDate())
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := node("a", node("b"))
	orig.Media = []MediaAttachment{{ID: "m1", Name: "x.png"}}

	c := orig.Clone()
	c.Title = "changed"
	c.Children[0].Title = "changed"
	c.Media[0].Name = "changed"

	assert.Equal(t, "title a", orig.Title)
	assert.Equal(t, "title b", orig.Children[0].Title)
	assert.Equal(t, "x.png", orig.Media[0].Name)
}

func TestWalkDepths(t *testing.T) {
	root := node("a", node("b", node("c")), node("d"))

	var visited []string
	var depths []int
	root.Walk(func(n *MemoryNode, depth int) {
		visited = append(visited, n.ID)
		depths = append(depths, depth)
	})

	assert.Equal(t, []string{"a", "b", "c", "d"}, visited)
	assert.Equal(t, []int{1, 2, 3, 2}, depths)
}
