package discovery

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// fsCacheSize bounds the number of distinct test directories kept per run
const fsCacheSize = 256

// FSCache remembers directory walks for the duration of one assembly run.
// It is safe for concurrent use; two goroutines may both miss and walk the
// same directory, the second result simply replaces the first.
type FSCache struct {
	entries *lru.Cache[string, []string]
}

// NewFSCache creates an empty cache
func NewFSCache() *FSCache {
	entries, err := lru.New[string, []string](fsCacheSize)
	if err != nil {
		// only returned for a non-positive size
		panic(err)
	}
	return &FSCache{entries: entries}
}

// Get returns the cached walk of dir
func (c *FSCache) Get(dir string) ([]string, bool) {
	if c == nil {
		return nil, false
	}
	return c.entries.Get(dir)
}

// Add stores the walk of dir
func (c *FSCache) Add(dir string, files []string) {
	if c == nil {
		return
	}
	c.entries.Add(dir, files)
}

// Len returns the number of cached directories
func (c *FSCache) Len() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}
