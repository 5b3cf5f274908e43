package internal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUUIDGeneratorUnique(t *testing.T) {
	gen := UUIDGenerator{}
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := gen.NewID()
		assert.True(t, strings.HasPrefix(id, "mem_"))
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestSequenceGenerator(t *testing.T) {
	gen := NewSequenceGenerator("n")
	assert.Equal(t, "n1", gen.NewID())
	assert.Equal(t, "n2", gen.NewID())
	assert.Equal(t, "n3", gen.NewID())
}
