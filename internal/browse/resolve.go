package browse

import (
	"context"

	"github.com/pders01/panels/internal/cache"
	"github.com/pders01/panels/internal/comic"
	"github.com/pders01/panels/internal/debuglog"
)

// resolver looks comics up in the cache first and writes every successful
// fetch back to it.
type resolver struct {
	fetcher comic.Fetcher
	cache   *cache.Cache
}

func (r resolver) resolve(ctx context.Context, num int) (comic.Comic, error) {
	if c, ok := r.cache.Get(num); ok {
		return c, nil
	}
	return r.fetch(ctx, num)
}

func (r resolver) fetch(ctx context.Context, num int) (comic.Comic, error) {
	c, err := r.fetcher.FetchByNumber(ctx, num)
	if err != nil {
		debuglog.WithFields(debuglog.Fields{"num": num}).Debugf("fetch failed: %v", err)
		return comic.Comic{}, err
	}
	r.cache.Put(num, c)
	return c, nil
}

func (r resolver) latest(ctx context.Context) (comic.Comic, error) {
	c, err := r.fetcher.FetchLatest(ctx)
	if err != nil {
		return comic.Comic{}, err
	}
	r.cache.Put(c.Num, c)
	return c, nil
}
