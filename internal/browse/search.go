package browse

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pders01/panels/internal/cache"
	"github.com/pders01/panels/internal/comic"
	"github.com/pders01/panels/internal/config"
	"github.com/pders01/panels/internal/debuglog"
)

// ErrSuperseded is returned by Scan when its report callback asks it to stop.
var ErrSuperseded = errors.New("search superseded")

// Batch is an inclusive, descending range of comic numbers scanned together.
type Batch struct {
	Start int
	End   int
}

func (b Batch) Len() int {
	return b.Start - b.End + 1
}

// Progress is reported after every completed batch. Matches is sorted by
// descending number and owned by the receiver.
type Progress struct {
	Query   string
	Batch   Batch
	Scanned int
	Total   int
	Matches []comic.Comic
}

func (p Progress) Message() string {
	return fmt.Sprintf("Searched %d of %d comics...", p.Scanned, p.Total)
}

// Result is the outcome of Search. Number is set for exact lookups.
type Result struct {
	Exact   bool
	Number  int
	Matches []comic.Comic
}

// Searcher finds comics by number or by case-insensitive title substring.
// The upstream has no search endpoint, so title search fetches every comic
// in [1, latest] in batches of batchSize, newest first. Fetches within a
// batch run concurrently; the next batch starts only after the whole batch
// has finished.
type Searcher struct {
	batchSize int
	res       resolver
}

func NewSearcher(fetcher comic.Fetcher, c *cache.Cache, batchSize int) *Searcher {
	if batchSize <= 0 {
		batchSize = config.DefaultBatchSize
	}
	return &Searcher{batchSize: batchSize, res: resolver{fetcher: fetcher, cache: c}}
}

func (s *Searcher) BatchSize() int {
	return s.batchSize
}

// Batches partitions [1, latest] newest first.
func (s *Searcher) Batches(latest int) []Batch {
	if latest <= 0 {
		return nil
	}
	batches := make([]Batch, 0, (latest+s.batchSize-1)/s.batchSize)
	for start := latest; start >= 1; start -= s.batchSize {
		batches = append(batches, Batch{Start: start, End: max(1, start-s.batchSize+1)})
	}
	return batches
}

// ParseNumber reports whether query names an existing comic number.
func ParseNumber(query string, latest int) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(query))
	if err != nil || n < 1 || n > latest {
		return 0, false
	}
	return n, true
}

// Search looks query up as a comic number when it is one, and scans titles
// otherwise. Errors from an exact lookup are returned as is.
func (s *Searcher) Search(ctx context.Context, query string, latest int, report func(Progress) bool) (Result, error) {
	if n, ok := ParseNumber(query, latest); ok {
		c, err := s.Lookup(ctx, n)
		if err != nil {
			return Result{Exact: true, Number: n}, err
		}
		return Result{Exact: true, Number: n, Matches: []comic.Comic{c}}, nil
	}

	matches, err := s.Scan(ctx, query, latest, report)
	return Result{Matches: matches}, err
}

// Lookup resolves a single comic through the cache.
func (s *Searcher) Lookup(ctx context.Context, num int) (comic.Comic, error) {
	return s.res.resolve(ctx, num)
}

// Scan runs the batched title search. report is called after each batch
// and may return false to stop before the next batch is scheduled; Scan
// then returns the matches so far with ErrSuperseded. A nil report never
// stops. Individual fetch failures are skipped.
func (s *Searcher) Scan(ctx context.Context, query string, latest int, report func(Progress) bool) ([]comic.Comic, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	log := debuglog.WithFields(debuglog.Fields{"query": needle})

	var (
		matches   []comic.Comic
		processed int
	)

	for _, b := range s.Batches(latest) {
		if err := ctx.Err(); err != nil {
			return matches, err
		}

		found, hits, fetched := s.scanBatch(ctx, b, needle)
		if err := ctx.Err(); err != nil {
			return matches, err
		}

		matches = mergeDescending(matches, found)
		processed += s.batchSize

		log.With("batch", fmt.Sprintf("%d-%d", b.Start, b.End)).
			Debugf("batch done: %d cached, %d fetched, %d matched", hits, fetched, len(found))

		if report == nil {
			continue
		}
		p := Progress{
			Query:   query,
			Batch:   b,
			Scanned: min(processed, latest),
			Total:   latest,
			Matches: append([]comic.Comic(nil), matches...),
		}
		if !report(p) {
			log.Infof("search superseded at batch %d-%d", b.Start, b.End)
			return matches, ErrSuperseded
		}
	}

	log.Infof("search done: %d matches", len(matches))
	return matches, nil
}

// scanBatch evaluates cached comics inline and fetches the rest
// concurrently, waiting for all of them.
func (s *Searcher) scanBatch(ctx context.Context, b Batch, needle string) (found []comic.Comic, hits, fetched int) {
	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(s.batchSize)

	for n := b.Start; n >= b.End; n-- {
		if c, ok := s.res.cache.Get(n); ok {
			hits++
			if matchesTitle(c, needle) {
				mu.Lock()
				found = append(found, c)
				mu.Unlock()
			}
			continue
		}

		fetched++
		num := n
		g.Go(func() error {
			c, err := s.res.fetch(ctx, num)
			if err != nil {
				return nil
			}
			if matchesTitle(c, needle) {
				mu.Lock()
				found = append(found, c)
				mu.Unlock()
			}
			return nil
		})
	}

	_ = g.Wait()
	return found, hits, fetched
}

func matchesTitle(c comic.Comic, needle string) bool {
	return strings.Contains(strings.ToLower(c.Title), needle)
}

// mergeDescending merges found into acc, keeping descending order by
// number and dropping duplicates.
func mergeDescending(acc, found []comic.Comic) []comic.Comic {
	if len(found) == 0 {
		return acc
	}
	out := make([]comic.Comic, 0, len(acc)+len(found))
	out = append(out, acc...)
	out = append(out, found...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Num > out[j].Num })

	deduped := out[:0]
	for i, c := range out {
		if i > 0 && c.Num == deduped[len(deduped)-1].Num {
			continue
		}
		deduped = append(deduped, c)
	}
	return deduped
}
