// Package cache holds comics resolved during the current process.
package cache

import (
	"sort"
	"sync"

	"github.com/pders01/panels/internal/comic"
)

// Cache maps comic numbers to decoded comics. Entries are never evicted.
// It is safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[int]comic.Comic
}

func New() *Cache {
	return &Cache{entries: make(map[int]comic.Comic)}
}

// Get returns the cached comic for num, or false on miss.
func (c *Cache) Get(num int) (comic.Comic, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[num]
	return v, ok
}

// Put stores v under num, replacing any previous entry.
func (c *Cache) Put(num int, v comic.Comic) {
	c.mu.Lock()
	c.entries[num] = v
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Numbers returns the cached comic numbers in descending order.
func (c *Cache) Numbers() []int {
	c.mu.RLock()
	nums := make([]int, 0, len(c.entries))
	for n := range c.entries {
		nums = append(nums, n)
	}
	c.mu.RUnlock()

	sort.Sort(sort.Reverse(sort.IntSlice(nums)))
	return nums
}
