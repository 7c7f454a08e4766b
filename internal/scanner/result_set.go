package scanner

import (
	"slices"
	"sync"
)

// ResultSet is the deduplicated collection of resolved script URLs of a run.
// It is safe for concurrent use.
type ResultSet struct {
	mu   sync.RWMutex
	urls map[string]struct{}
}

// NewResultSet creates an empty ResultSet
func NewResultSet() *ResultSet {
	return &ResultSet{urls: make(map[string]struct{})}
}

// Add inserts a URL and reports whether it was new.
func (rs *ResultSet) Add(url string) bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if _, exists := rs.urls[url]; exists {
		return false
	}
	rs.urls[url] = struct{}{}
	return true
}

// AddAll inserts every URL and returns how many were new.
func (rs *ResultSet) AddAll(urls []string) int {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	added := 0
	for _, url := range urls {
		if _, exists := rs.urls[url]; exists {
			continue
		}
		rs.urls[url] = struct{}{}
		added++
	}
	return added
}

// Contains reports whether the URL is in the set.
func (rs *ResultSet) Contains(url string) bool {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	_, exists := rs.urls[url]
	return exists
}

// Len returns the number of unique URLs.
func (rs *ResultSet) Len() int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return len(rs.urls)
}

// Sorted returns the URLs in lexicographic order.
func (rs *ResultSet) Sorted() []string {
	rs.mu.RLock()
	urls := make([]string, 0, len(rs.urls))
	for url := range rs.urls {
		urls = append(urls, url)
	}
	rs.mu.RUnlock()

	slices.Sort(urls)
	return urls
}
