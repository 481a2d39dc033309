// Package backfill is the post-hoc enrichment pass: after the primary pool
// has been delivered, it resolves page images for articles that came out of
// the pipeline without one and reports each hit through a callback. It
// never blocks or fails the primary flow.
package backfill

import (
	"context"
	"log"
	"sync"
	"time"

	"sonagg/internal/models"
)

// UpdateFunc receives one resolved article image. Invoked exactly once per
// article for which an image was found, never for unresolved ones.
type UpdateFunc func(update models.ImageUpdate)

// Options holds the backfill pass tunables.
type Options struct {
	// MaxArticles caps how many imageless articles one pass attempts.
	MaxArticles int
	// BatchSize bounds concurrent page retrievals.
	BatchSize int
	// BatchPause is the pacing delay between batches.
	BatchPause time.Duration
}

func DefaultOptions() Options {
	return Options{
		MaxArticles: 12,
		BatchSize:   3,
		BatchPause:  300 * time.Millisecond,
	}
}

type Backfill struct {
	resolver *Resolver
	opts     Options
}

func New(resolver *Resolver, opts Options) *Backfill {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 1
	}
	if opts.MaxArticles <= 0 {
		opts.MaxArticles = 12
	}
	return &Backfill{resolver: resolver, opts: opts}
}

// Run resolves images for up to MaxArticles non-video articles whose
// thumbnail is empty, in bounded batches. Articles that already have a
// thumbnail are never touched. Errors stay inside this pass.
func (b *Backfill) Run(ctx context.Context, articles []models.Article, onUpdate UpdateFunc) {
	var targets []models.Article
	for _, a := range articles {
		if a.Thumbnail == "" && !a.IsVideo {
			targets = append(targets, a)
			if len(targets) == b.opts.MaxArticles {
				break
			}
		}
	}
	if len(targets) == 0 {
		return
	}

	log.Printf("Backfill: resolving images for %d articles", len(targets))

	resolved := 0
	for start := 0; start < len(targets); start += b.opts.BatchSize {
		if ctx.Err() != nil {
			return
		}

		end := start + b.opts.BatchSize
		if end > len(targets) {
			end = len(targets)
		}
		batch := targets[start:end]

		// Resolutions run concurrently; the callback fires from this
		// goroutine only, after the batch settles.
		found := make([]string, len(batch))
		var wg sync.WaitGroup
		for i := range batch {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				found[idx] = b.resolver.Resolve(ctx, batch[idx].Link)
			}(i)
		}
		wg.Wait()

		for i := range batch {
			if found[i] == "" {
				continue
			}
			resolved++
			if onUpdate != nil {
				onUpdate(models.ImageUpdate{ArticleID: batch[i].ID, ImageURL: found[i]})
			}
		}

		if end < len(targets) && b.opts.BatchPause > 0 {
			select {
			case <-time.After(b.opts.BatchPause):
			case <-ctx.Done():
				return
			}
		}
	}

	log.Printf("Backfill: resolved %d of %d articles", resolved, len(targets))
}
