package browse

import (
	"context"
	"fmt"

	"github.com/pders01/panels/internal/cache"
	"github.com/pders01/panels/internal/comic"
	"github.com/pders01/panels/internal/config"
	"github.com/pders01/panels/internal/debuglog"
)

// Pager maps page numbers onto descending comic-number ranges over
// [1, latest] and materializes one page at a time. Page 1 holds the newest
// comics.
type Pager struct {
	size int
	res  resolver
}

func NewPager(fetcher comic.Fetcher, c *cache.Cache, size int) *Pager {
	if size <= 0 {
		size = config.DefaultPageSize
	}
	return &Pager{size: size, res: resolver{fetcher: fetcher, cache: c}}
}

func (p *Pager) Size() int {
	return p.size
}

// TotalPages is ceil(latest / size), or 0 while latest is unknown.
func (p *Pager) TotalPages(latest int) int {
	if latest <= 0 {
		return 0
	}
	return (latest + p.size - 1) / p.size
}

// Range returns the inclusive bounds of page, start >= end.
func (p *Pager) Range(latest, page int) (start, end int, ok bool) {
	if page < 1 || page > p.TotalPages(latest) {
		return 0, 0, false
	}
	start = latest - (page-1)*p.size
	end = max(1, start-p.size+1)
	return start, end, true
}

// Numbers lists the comic numbers on page, newest first.
func (p *Pager) Numbers(latest, page int) []int {
	start, end, ok := p.Range(latest, page)
	if !ok {
		return nil
	}
	nums := make([]int, 0, start-end+1)
	for n := start; n >= end; n-- {
		nums = append(nums, n)
	}
	return nums
}

// RangeText describes the page for display, e.g. "Comics #36 - #55".
func (p *Pager) RangeText(latest, page int) string {
	start, end, ok := p.Range(latest, page)
	if !ok {
		return ""
	}
	return fmt.Sprintf("Comics #%d - #%d", end, start)
}

// Load resolves every comic on page sequentially, newest first. Comics
// that fail to resolve are left out. Loading stops early once active
// reports false or ctx is done; a nil active never stops.
func (p *Pager) Load(ctx context.Context, latest, page int, active func() bool) []comic.Comic {
	nums := p.Numbers(latest, page)
	if len(nums) == 0 {
		return nil
	}

	log := debuglog.WithFields(debuglog.Fields{"page": page, "start": nums[0], "end": nums[len(nums)-1]})

	items := make([]comic.Comic, 0, len(nums))
	for _, n := range nums {
		if ctx.Err() != nil || (active != nil && !active()) {
			log.Debugf("page load stopped after %d comics", len(items))
			return items
		}
		c, err := p.res.resolve(ctx, n)
		if err != nil {
			continue
		}
		items = append(items, c)
	}

	log.Infof("page loaded: %d of %d comics", len(items), len(nums))
	return items
}
