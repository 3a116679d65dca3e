package browse

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/pders01/panels/internal/comic"
)

// fakeFetcher serves comics 1..latest from memory and counts calls.
type fakeFetcher struct {
	mu          sync.Mutex
	latest      int
	title       func(n int) string
	missing     map[int]bool
	failLatest  bool
	calls       map[int]int
	latestCalls int

	// before runs at the start of every FetchByNumber call.
	before func(n int)

	inFlight  atomic.Int32
	peak      atomic.Int32
	completed atomic.Int32
}

func newFakeFetcher(latest int) *fakeFetcher {
	return &fakeFetcher{
		latest:  latest,
		missing: make(map[int]bool),
		calls:   make(map[int]int),
	}
}

func (f *fakeFetcher) titleFor(n int) string {
	if f.title != nil {
		return f.title(n)
	}
	return fmt.Sprintf("Comic %d", n)
}

func (f *fakeFetcher) FetchLatest(ctx context.Context) (comic.Comic, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latestCalls++
	if f.failLatest {
		return comic.Comic{}, &comic.FetchError{Kind: comic.KindTransport, Err: fmt.Errorf("connection refused")}
	}
	return comic.Comic{Num: f.latest, Title: f.titleFor(f.latest)}, nil
}

func (f *fakeFetcher) FetchByNumber(ctx context.Context, n int) (comic.Comic, error) {
	cur := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if cur <= p || f.peak.CompareAndSwap(p, cur) {
			break
		}
	}
	defer f.completed.Add(1)

	f.mu.Lock()
	f.calls[n]++
	before := f.before
	missing := f.missing[n] || n < 1 || n > f.latest
	f.mu.Unlock()

	if before != nil {
		before(n)
	}
	if err := ctx.Err(); err != nil {
		return comic.Comic{}, &comic.FetchError{Kind: comic.KindTransport, Number: n, Err: err}
	}
	if missing {
		return comic.Comic{}, &comic.FetchError{Kind: comic.KindInvalidTarget, Number: n}
	}
	return comic.Comic{Num: n, Title: f.titleFor(n)}, nil
}

func (f *fakeFetcher) callsFor(n int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[n]
}

func (f *fakeFetcher) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, c := range f.calls {
		total += c
	}
	return total
}

func (f *fakeFetcher) setMissing(nums ...int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range nums {
		f.missing[n] = true
	}
}

func numbersOf(items []comic.Comic) []int {
	nums := make([]int, len(items))
	for i, c := range items {
		nums[i] = c.Num
	}
	return nums
}

func descending(from, to int) []int {
	var nums []int
	for n := from; n >= to; n-- {
		nums = append(nums, n)
	}
	return nums
}

func strictlyDescending(items []comic.Comic) bool {
	for i := 1; i < len(items); i++ {
		if items[i-1].Num <= items[i].Num {
			return false
		}
	}
	return true
}
