// Package aggregator fans configured sources out through the per-source
// fetcher in bounded concurrent batches, then trims, merges, filters and
// orders the combined article pool.
package aggregator

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"sonagg/internal/filter"
	"sonagg/internal/models"

	"golang.org/x/time/rate"
)

// SourceFetcher is the per-source pipeline the aggregator fans out to.
type SourceFetcher interface {
	Fetch(ctx context.Context, source *models.FeedSource) []models.Article
}

// Options holds the aggregation tunables.
type Options struct {
	// BatchSize bounds how many sources are fetched concurrently, keeping
	// load on the conversion endpoint within its informal limits.
	BatchSize int
	// BatchPause is the pacing delay between consecutive batches.
	BatchPause time.Duration
	// MaxPerSource caps how many articles a standard source contributes.
	MaxPerSource int
	// MaxPerVideoSource caps video sources, lower than standard ones.
	MaxPerVideoSource int
}

// DefaultOptions mirror the conversion endpoint's tolerated request shape.
func DefaultOptions() Options {
	return Options{
		BatchSize:         4,
		BatchPause:        250 * time.Millisecond,
		MaxPerSource:      5,
		MaxPerVideoSource: 2,
	}
}

type Aggregator struct {
	fetcher SourceFetcher
	sets    *filter.Sets
	opts    Options
	pacer   *rate.Limiter
}

func New(fetcher SourceFetcher, sets *filter.Sets, opts Options) *Aggregator {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 1
	}
	// One batch per pause interval, first batch immediate.
	interval := rate.Inf
	if opts.BatchPause > 0 {
		interval = rate.Every(opts.BatchPause)
	}
	return &Aggregator{
		fetcher: fetcher,
		sets:    sets,
		opts:    opts,
		pacer:   rate.NewLimiter(interval, 1),
	}
}

// Aggregate runs the full pipeline over the active sources and returns the
// merged, filtered, newest-first pool. A failing source contributes nothing;
// the run itself never fails.
func (a *Aggregator) Aggregate(ctx context.Context, sources []models.FeedSource) *models.StoryPool {
	var active []models.FeedSource
	for _, s := range sources {
		if s.IsActive {
			active = append(active, s)
		}
	}

	var pool []models.Article
	for start := 0; start < len(active); start += a.opts.BatchSize {
		if err := a.pacer.Wait(ctx); err != nil {
			log.Printf("Aggregation cancelled: %v", err)
			break
		}

		end := start + a.opts.BatchSize
		if end > len(active) {
			end = len(active)
		}
		batch := active[start:end]

		// Results land at their source's index so the merge order is the
		// configuration order, not completion order.
		results := make([][]models.Article, len(batch))
		var wg sync.WaitGroup
		for i := range batch {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				results[idx] = a.fetcher.Fetch(ctx, &batch[idx])
			}(i)
		}
		wg.Wait()

		for i := range batch {
			pool = append(pool, a.trimSource(&batch[i], results[i])...)
		}
	}

	pool = a.sets.ApplyExclusions(pool)
	sortNewestFirst(pool)

	return &models.StoryPool{
		Articles: pool,
		Count:    len(pool),
		Updated:  time.Now(),
	}
}

// trimSource applies the source's inclusion filter, orders its articles
// newest-first and enforces the per-source cap.
func (a *Aggregator) trimSource(source *models.FeedSource, articles []models.Article) []models.Article {
	if a.sets.HasInclusionList(source.ID) {
		var kept []models.Article
		for i := range articles {
			if a.sets.MatchesInclusion(source.ID, &articles[i]) {
				kept = append(kept, articles[i])
			}
		}
		articles = kept
	}

	sortNewestFirst(articles)

	limit := a.opts.MaxPerSource
	if source.IsVideoSource {
		limit = a.opts.MaxPerVideoSource
	}
	if len(articles) > limit {
		articles = articles[:limit]
	}
	return articles
}

// sortNewestFirst orders articles by parsed publish date descending.
// Unparseable dates parse to the zero time and sort last; the comparator
// itself cannot fail.
func sortNewestFirst(articles []models.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt().After(articles[j].PublishedAt())
	})
}
