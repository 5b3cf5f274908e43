package internal

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

const idPrefix = "mem_"

// IDGenerator hands out identifiers for new memories and attachments.
type IDGenerator interface {
	NewID() string
}

type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return idPrefix + uuid.NewString()
}

// SequenceGenerator yields prefix-1, prefix-2, ... Used where ids must be
// predictable.
type SequenceGenerator struct {
	prefix string
	n      atomic.Uint64
}

func NewSequenceGenerator(prefix string) *SequenceGenerator {
	return &SequenceGenerator{prefix: prefix}
}

func (g *SequenceGenerator) NewID() string {
	return fmt.Sprintf("%s%d", g.prefix, g.n.Add(1))
}
