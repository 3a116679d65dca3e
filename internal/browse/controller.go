package browse

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/pders01/panels/internal/cache"
	"github.com/pders01/panels/internal/comic"
	"github.com/pders01/panels/internal/debuglog"
)

// Controller owns browse/search state and runs one operation at a time.
// Starting an operation supersedes the previous one: the older operation
// may still finish its in-flight fetches, which are cached, but it can no
// longer change State. Operations block until they finish or are
// superseded.
type Controller struct {
	pager    *Pager
	searcher *Searcher
	res      resolver

	// pub serializes state publication so subscribers see updates in order.
	pub sync.Mutex

	mu      sync.Mutex
	state   State
	gen     uint64
	subs    map[int]func(State)
	nextSub int
}

// Options tunes a Controller. Zero values pick the defaults.
type Options struct {
	PageSize  int
	BatchSize int
}

func NewController(fetcher comic.Fetcher, c *cache.Cache, opts Options) *Controller {
	return &Controller{
		pager:    NewPager(fetcher, c, opts.PageSize),
		searcher: NewSearcher(fetcher, c, opts.BatchSize),
		res:      resolver{fetcher: fetcher, cache: c},
		subs:     make(map[int]func(State)),
	}
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Subscribe registers fn for every state change and returns a function
// that removes it. fn runs on the goroutine that changed the state and
// must not call Controller operations synchronously.
func (c *Controller) Subscribe(fn func(State)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// begin supersedes the running operation and applies fn as the first
// change of the new one.
func (c *Controller) begin(fn func(*State)) uint64 {
	c.pub.Lock()
	defer c.pub.Unlock()

	c.mu.Lock()
	c.gen++
	gen := c.gen
	fn(&c.state)
	snap, subs := c.snapshotLocked()
	c.mu.Unlock()

	publish(subs, snap)
	return gen
}

// commit applies fn only while gen is still the active operation.
func (c *Controller) commit(gen uint64, fn func(*State)) bool {
	c.pub.Lock()
	defer c.pub.Unlock()

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		debuglog.Debugf("discarding result of superseded operation %d", gen)
		return false
	}
	fn(&c.state)
	snap, subs := c.snapshotLocked()
	c.mu.Unlock()

	publish(subs, snap)
	return true
}

func (c *Controller) active(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen == c.gen
}

// snapshotLocked refreshes derived fields and copies state and subscribers.
func (c *Controller) snapshotLocked() (State, []func(State)) {
	s := &c.state
	s.TotalPages = c.pager.TotalPages(s.Latest)
	browsing := s.Mode == ModeBrowsing && s.CurrentPage >= 1
	s.CanGoPrevious = browsing && s.CurrentPage > 1
	s.CanGoNext = browsing && s.CurrentPage < s.TotalPages
	s.RangeText = ""
	if browsing {
		s.RangeText = c.pager.RangeText(s.Latest, s.CurrentPage)
	}

	subs := make([]func(State), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	return s.clone(), subs
}

func publish(subs []func(State), s State) {
	for _, fn := range subs {
		fn(s.clone())
	}
}

// LoadLatestAndFirstPage resolves the latest comic number on first use and
// loads page 1. After a failure it can be called again to retry.
func (c *Controller) LoadLatestAndFirstPage(ctx context.Context) {
	c.mu.Lock()
	latest := c.state.Latest
	c.mu.Unlock()

	if latest > 0 {
		c.loadPage(ctx, 1, true)
		return
	}

	gen := c.begin(func(s *State) {
		s.Mode = ModeBrowsing
		s.Loading = true
		s.Err = nil
		s.Progress = ""
	})

	lc, err := c.res.latest(ctx)
	if err != nil {
		debuglog.Errorf("resolving latest comic: %v", err)
		c.commit(gen, func(s *State) {
			s.Loading = false
			s.Err = initializationError(err)
		})
		return
	}

	debuglog.Infof("latest comic is #%d", lc.Num)
	c.mu.Lock()
	c.state.Latest = lc.Num
	c.mu.Unlock()

	if c.active(gen) {
		c.loadPage(ctx, 1, true)
	}
}

// LoadPage shows page while browsing. Out-of-range pages and calls made
// while showing search results are ignored.
func (c *Controller) LoadPage(ctx context.Context, page int) {
	c.loadPage(ctx, page, false)
}

func (c *Controller) LoadNextPage(ctx context.Context) {
	s := c.State()
	if !s.CanGoNext {
		return
	}
	c.loadPage(ctx, s.CurrentPage+1, false)
}

func (c *Controller) LoadPreviousPage(ctx context.Context) {
	s := c.State()
	if !s.CanGoPrevious {
		return
	}
	c.loadPage(ctx, s.CurrentPage-1, false)
}

// loadPage enters browsing mode when enter is set; otherwise it requires
// browsing mode already.
func (c *Controller) loadPage(ctx context.Context, page int, enter bool) {
	s := c.State()
	if s.Latest <= 0 {
		return
	}
	if page < 1 || page > c.pager.TotalPages(s.Latest) {
		return
	}
	if !enter && s.Mode != ModeBrowsing {
		return
	}

	gen := c.begin(func(s *State) {
		s.Mode = ModeBrowsing
		s.Query = ""
		s.Loading = true
		s.Err = nil
		s.Progress = ""
		s.CurrentPage = page
	})

	items := c.pager.Load(ctx, s.Latest, page, func() bool { return c.active(gen) })

	c.commit(gen, func(s *State) {
		s.Items = items
		s.Loading = false
	})
}

// Search runs text as a number lookup or title search and shows the
// results. Empty text only sets an error.
func (c *Controller) Search(ctx context.Context, text string) {
	query := strings.TrimSpace(text)
	if query == "" {
		c.mu.Lock()
		gen := c.gen
		c.mu.Unlock()
		c.commit(gen, func(s *State) { s.Err = inputError() })
		return
	}

	gen := c.begin(func(s *State) {
		s.Mode = ModeSearchResults
		s.Query = query
		s.CurrentPage = 0
		s.Loading = true
		s.Err = nil
		s.Progress = ""
		s.Items = nil
	})

	latest := c.State().Latest
	if latest <= 0 {
		c.commit(gen, func(s *State) { s.Loading = false })
		return
	}

	report := func(p Progress) bool {
		return c.commit(gen, func(s *State) {
			s.Items = p.Matches
			s.Progress = p.Message()
		})
	}

	res, err := c.searcher.Search(ctx, query, latest, report)
	switch {
	case res.Exact && err != nil:
		c.commit(gen, func(s *State) {
			s.Loading = false
			s.Err = lookupError(res.Number, err)
		})
	case errors.Is(err, ErrSuperseded):
		// A newer operation owns the state now.
	case err != nil:
		c.commit(gen, func(s *State) {
			s.Items = res.Matches
			s.Loading = false
			s.Progress = ""
		})
	default:
		c.commit(gen, func(s *State) {
			s.Items = res.Matches
			s.Loading = false
			s.Progress = ""
			if len(res.Matches) == 0 {
				s.Err = noMatchesError(query)
			}
		})
	}
}

// ClearSearch leaves search results and shows page 1 again.
func (c *Controller) ClearSearch(ctx context.Context) {
	s := c.State()
	if s.Mode != ModeSearchResults {
		return
	}
	if s.Latest <= 0 {
		c.begin(func(s *State) {
			s.Mode = ModeBrowsing
			s.Query = ""
			s.Items = nil
			s.Loading = false
			s.Err = nil
			s.Progress = ""
		})
		return
	}
	c.loadPage(ctx, 1, true)
}

// QueryChanged follows edits of the search text: emptying it while search
// results are shown returns to browsing.
func (c *Controller) QueryChanged(ctx context.Context, text string) {
	if strings.TrimSpace(text) != "" {
		return
	}
	c.ClearSearch(ctx)
}
