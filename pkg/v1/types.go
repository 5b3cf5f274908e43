package v1

import "time"

// Memory is one node of the memory tree.
type Memory struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Date       string   `json:"date"`
	Media      []Media  `json:"media,omitempty"`
	Children   []Memory `json:"children,omitempty"`
	ArchivedAt string   `json:"archived_at,omitempty"`
}

// Media is an attachment stored inline as a data URI.
type Media struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
	Data string `json:"data"`
}

// NewMemory describes a memory to record.
type NewMemory struct {
	Title   string
	Content string
	// Date is YYYY-MM-DD. Empty means today.
	Date string
	// Attachments maps file names to their content.
	Attachments map[string][]byte
}

// Stats summarizes the active memory tree.
type Stats struct {
	Total         int         `json:"total"`
	Roots         int         `json:"roots"`
	DeepestBranch int         `json:"deepest_branch"`
	ByYear        map[int]int `json:"by_year"`
	ByMonth       map[int]int `json:"by_month"`
	Recent        []string    `json:"recent"`
}

// Commit represents one saved snapshot of the memory store.
type Commit struct {
	Hash      string    `json:"hash"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
