package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/panels/internal/comic"
)

func TestCache_GetMiss(t *testing.T) {
	c := New()

	_, ok := c.Get(1)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCache_PutAndGet(t *testing.T) {
	c := New()
	c.Put(42, comic.Comic{Num: 42, Title: "Geico"})

	got, ok := c.Get(42)
	require.True(t, ok)
	assert.Equal(t, "Geico", got.Title)
}

func TestCache_PutOverwrites(t *testing.T) {
	c := New()
	c.Put(7, comic.Comic{Num: 7, Title: "first"})
	c.Put(7, comic.Comic{Num: 7, Title: "second"})

	got, ok := c.Get(7)
	require.True(t, ok)
	assert.Equal(t, "second", got.Title)
	assert.Equal(t, 1, c.Len())
}

func TestCache_Numbers(t *testing.T) {
	c := New()
	for _, n := range []int{3, 10, 1, 7} {
		c.Put(n, comic.Comic{Num: n})
	}

	assert.Equal(t, []int{10, 7, 3, 1}, c.Numbers())
}

func TestCache_ConcurrentPut(t *testing.T) {
	c := New()

	var wg sync.WaitGroup
	for i := 1; i <= 500; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			c.Put(n, comic.Comic{Num: n})
			_, _ = c.Get(n)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 500, c.Len())
	for i := 1; i <= 500; i++ {
		_, ok := c.Get(i)
		assert.True(t, ok, "missing %d", i)
	}
}
