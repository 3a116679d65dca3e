package browse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/panels/internal/cache"
	"github.com/pders01/panels/internal/comic"
)

func TestPager_TotalPages(t *testing.T) {
	p := NewPager(newFakeFetcher(1), cache.New(), 20)

	tests := []struct {
		latest int
		want   int
	}{
		{0, 0},
		{-3, 0},
		{1, 1},
		{20, 1},
		{21, 2},
		{55, 3},
		{2000, 100},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, p.TotalPages(tt.latest), "latest=%d", tt.latest)
	}
}

func TestPager_DefaultSize(t *testing.T) {
	p := NewPager(newFakeFetcher(1), cache.New(), 0)
	assert.Equal(t, 20, p.Size())
}

func TestPager_RangesCoverCollection(t *testing.T) {
	p := NewPager(newFakeFetcher(1), cache.New(), 20)

	for latest := 1; latest <= 130; latest++ {
		total := p.TotalPages(latest)
		seen := make(map[int]bool)
		next := latest

		for page := 1; page <= total; page++ {
			nums := p.Numbers(latest, page)
			require.NotEmpty(t, nums)

			if page < total {
				assert.Len(t, nums, 20, "latest=%d page=%d", latest, page)
			} else {
				assert.LessOrEqual(t, len(nums), 20)
			}

			for _, n := range nums {
				assert.Equal(t, next, n, "pages must be contiguous and descending")
				assert.False(t, seen[n], "duplicate %d", n)
				assert.GreaterOrEqual(t, n, 1)
				assert.LessOrEqual(t, n, latest)
				seen[n] = true
				next--
			}
		}
		assert.Len(t, seen, latest)
	}
}

func TestPager_OutOfRange(t *testing.T) {
	p := NewPager(newFakeFetcher(55), cache.New(), 20)

	_, _, ok := p.Range(55, 0)
	assert.False(t, ok)
	_, _, ok = p.Range(55, 4)
	assert.False(t, ok)
	_, _, ok = p.Range(0, 1)
	assert.False(t, ok)

	assert.Nil(t, p.Load(context.Background(), 55, 4, nil))
	assert.Empty(t, p.RangeText(0, 1))
}

func TestPager_LoadScenario(t *testing.T) {
	f := newFakeFetcher(55)
	p := NewPager(f, cache.New(), 20)
	ctx := context.Background()

	assert.Equal(t, 3, p.TotalPages(55))
	assert.Equal(t, descending(55, 36), numbersOf(p.Load(ctx, 55, 1, nil)))

	last := p.Load(ctx, 55, 3, nil)
	assert.Equal(t, descending(15, 1), numbersOf(last))
	assert.Len(t, last, 15)

	assert.Equal(t, "Comics #36 - #55", p.RangeText(55, 1))
	assert.Equal(t, "Comics #1 - #15", p.RangeText(55, 3))
}

func TestPager_SkipsFailedComics(t *testing.T) {
	f := newFakeFetcher(40)
	f.setMissing(38, 30)
	p := NewPager(f, cache.New(), 20)

	items := p.Load(context.Background(), 40, 1, nil)

	want := []int{40, 39, 37, 36, 35, 34, 33, 32, 31, 29, 28, 27, 26, 25, 24, 23, 22, 21}
	assert.Equal(t, want, numbersOf(items))
}

func TestPager_AllFailedIsEmpty(t *testing.T) {
	f := newFakeFetcher(5)
	f.setMissing(1, 2, 3, 4, 5)
	p := NewPager(f, cache.New(), 20)

	assert.Empty(t, p.Load(context.Background(), 5, 1, nil))
}

func TestPager_LoadIsIdempotentAndCached(t *testing.T) {
	f := newFakeFetcher(55)
	c := cache.New()
	p := NewPager(f, c, 20)
	ctx := context.Background()

	first := p.Load(ctx, 55, 2, nil)
	callsAfterFirst := f.totalCalls()
	second := p.Load(ctx, 55, 2, nil)

	assert.Equal(t, first, second)
	assert.Equal(t, 20, callsAfterFirst)
	assert.Equal(t, callsAfterFirst, f.totalCalls(), "cached comics must not be refetched")
	assert.Equal(t, 20, c.Len())
}

func TestPager_CacheHitMatchesFetch(t *testing.T) {
	f := newFakeFetcher(3)
	c := cache.New()
	c.Put(2, comic.Comic{Num: 2, Title: "Comic 2"})
	p := NewPager(f, c, 20)

	items := p.Load(context.Background(), 3, 1, nil)

	assert.Equal(t, []int{3, 2, 1}, numbersOf(items))
	assert.Equal(t, 0, f.callsFor(2))
}

func TestPager_LoadStopsWhenInactive(t *testing.T) {
	f := newFakeFetcher(55)
	p := NewPager(f, cache.New(), 20)

	n := 0
	items := p.Load(context.Background(), 55, 1, func() bool {
		n++
		return n <= 5
	})

	assert.Len(t, items, 5)
	assert.Equal(t, 5, f.totalCalls())
}
