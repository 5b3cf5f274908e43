package internal

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

var (
	ErrNodeNotFound       = errors.New("memory not found")
	ErrDuplicateID        = errors.New("memory id already exists")
	ErrCorruptState       = errors.New("stored state is corrupt")
	ErrInvalidFormat      = errors.New("invalid import format")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrInvalidMemory      = errors.New("invalid memory")
	ErrInvalidKey         = errors.New("invalid key")
)

// DateLayout is the calendar date format memories are recorded with.
const DateLayout = "2006-01-02"

var keyPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._/-]*$`)

// Key names a blob in the durable store.
type Key string

func NewKey(s string) (Key, error) {
	if s == "" {
		return "", ErrInvalidKey
	}
	if !keyPattern.MatchString(s) {
		return "", ErrInvalidKey
	}
	return Key(s), nil
}

func (k Key) String() string {
	return string(k)
}

type MediaAttachment struct {
	ID   string `json:"id"`
	Data string `json:"data"`
	Type string `json:"type"`
	Name string `json:"name"`
}

type MemoryNode struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Content     string            `json:"content"`
	Date        string            `json:"date"`
	Media       []MediaAttachment `json:"media"`
	Children    []*MemoryNode     `json:"children"`
	ArchiveDate string            `json:"archiveDate,omitempty"`
}

// ParsedDate interprets Date. Legacy data may carry full timestamps or
// garbage; ok is false when nothing usable is found.
func (n *MemoryNode) ParsedDate() (time.Time, bool) {
	return parseMemoryDate(n.Date)
}

// DisplayDate returns the date as YYYY-MM-DD, or the raw string when it
// cannot be parsed.
func (n *MemoryNode) DisplayDate() string {
	if t, ok := n.ParsedDate(); ok {
		return t.Format(DateLayout)
	}
	return n.Date
}

// ArchivedOn returns the calendar day the node was archived, or "" when it
// is not archived.
func (n *MemoryNode) ArchivedOn() string {
	if t, ok := parseMemoryDate(n.ArchiveDate); ok {
		return t.UTC().Format(DateLayout)
	}
	return n.ArchiveDate
}

// Clone deep-copies the node and its subtree.
func (n *MemoryNode) Clone() *MemoryNode {
	if n == nil {
		return nil
	}
	c := *n
	c.Media = append([]MediaAttachment(nil), n.Media...)
	if c.Media == nil {
		c.Media = []MediaAttachment{}
	}
	c.Children = cloneForest(n.Children)
	return &c
}

// Walk visits the node and all descendants depth-first, in child order.
func (n *MemoryNode) Walk(fn func(node *MemoryNode, depth int)) {
	n.walk(fn, 1)
}

func (n *MemoryNode) walk(fn func(*MemoryNode, int), depth int) {
	fn(n, depth)
	for _, child := range n.Children {
		child.walk(fn, depth+1)
	}
}

func cloneForest(nodes []*MemoryNode) []*MemoryNode {
	out := make([]*MemoryNode, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Clone())
	}
	return out
}

var dateLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

func parseMemoryDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NewMemoryInput carries the user supplied fields of a new memory.
type NewMemoryInput struct {
	Title   string            `validate:"required,max=200"`
	Content string            `validate:"required"`
	Date    string            `validate:"omitempty,datetime=2006-01-02"`
	Media   []MediaAttachment `validate:"dive"`
}

// NewMemoryNode builds a childless node from validated input.
func NewMemoryNode(id string, in NewMemoryInput) *MemoryNode {
	media := in.Media
	if media == nil {
		media = []MediaAttachment{}
	}
	return &MemoryNode{
		ID:       id,
		Title:    in.Title,
		Content:  in.Content,
		Date:     in.Date,
		Media:    media,
		Children: []*MemoryNode{},
	}
}
