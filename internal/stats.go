package internal

import (
	"slices"
	"time"
)

const (
	DefaultRecentWindowMonths = 6
	DefaultRecentLimit        = 5
)

type RecentMemory struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Date  string    `json:"date"`
	When  time.Time `json:"-"`
}

type Statistics struct {
	TotalMemories  int            `json:"totalMemories"`
	RootMemories   int            `json:"rootMemories"`
	DeepestBranch  int            `json:"deepestBranch"`
	ByYear         map[int]int    `json:"byYear"`
	ByMonth        map[int]int    `json:"byMonth"`
	MonthYear      int            `json:"monthYear"`
	RecentActivity []RecentMemory `json:"recentActivity"`
}

type StatsOptions struct {
	Now          time.Time
	Year         int // month buckets; zero means the year of Now
	WindowMonths int
	Limit        int
}

// ComputeStatistics aggregates the active forest. Archived memories are never
// passed in here.
func ComputeStatistics(forest []*MemoryNode, opts StatsOptions) Statistics {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.Year == 0 {
		opts.Year = opts.Now.Year()
	}
	if opts.WindowMonths <= 0 {
		opts.WindowMonths = DefaultRecentWindowMonths
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultRecentLimit
	}

	return Statistics{
		TotalMemories:  TotalCount(forest),
		RootMemories:   RootCount(forest),
		DeepestBranch:  MaxDepth(forest),
		ByYear:         ActivityByYear(forest),
		ByMonth:        ActivityByMonth(forest, opts.Year),
		MonthYear:      opts.Year,
		RecentActivity: RecentActivity(forest, opts.Now, opts.WindowMonths, opts.Limit),
	}
}

func TotalCount(forest []*MemoryNode) int {
	count := 0
	walkForest(forest, func(*MemoryNode, int) { count++ })
	return count
}

func RootCount(forest []*MemoryNode) int {
	return len(forest)
}

// MaxDepth counts levels on the longest root-to-leaf path.
func MaxDepth(forest []*MemoryNode) int {
	deepest := 0
	walkForest(forest, func(_ *MemoryNode, depth int) {
		deepest = max(deepest, depth)
	})
	return deepest
}

func ActivityByYear(forest []*MemoryNode) map[int]int {
	buckets := make(map[int]int)
	walkForest(forest, func(n *MemoryNode, _ int) {
		if t, ok := n.ParsedDate(); ok {
			buckets[t.Year()]++
		}
	})
	return buckets
}

// ActivityByMonth buckets memories dated in year by month number (1-12).
func ActivityByMonth(forest []*MemoryNode, year int) map[int]int {
	buckets := make(map[int]int)
	walkForest(forest, func(n *MemoryNode, _ int) {
		if t, ok := n.ParsedDate(); ok && t.Year() == year {
			buckets[int(t.Month())]++
		}
	})
	return buckets
}

// RecentActivity lists memories dated within the trailing window, newest
// first, at most limit entries.
func RecentActivity(forest []*MemoryNode, now time.Time, windowMonths, limit int) []RecentMemory {
	cutoff := now.AddDate(0, -windowMonths, 0)

	recent := []RecentMemory{}
	walkForest(forest, func(n *MemoryNode, _ int) {
		t, ok := n.ParsedDate()
		if !ok || t.Before(cutoff) {
			return
		}
		recent = append(recent, RecentMemory{ID: n.ID, Title: n.Title, Date: n.Date, When: t})
	})

	slices.SortStableFunc(recent, func(a, b RecentMemory) int {
		return b.When.Compare(a.When)
	})

	if limit >= 0 && len(recent) > limit {
		recent = recent[:limit]
	}
	return recent
}

func walkForest(forest []*MemoryNode, fn func(*MemoryNode, int)) {
	for _, root := range forest {
		root.Walk(fn)
	}
}
