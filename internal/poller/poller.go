package poller

import (
	"context"
	"log"
	"sync"
	"time"

	"sonagg/internal/aggregator"
	"sonagg/internal/backfill"
	"sonagg/internal/cache"
	"sonagg/internal/events"
	"sonagg/internal/models"
	"sonagg/internal/storage"
)

const poolCacheKey = "pool"

// Poller refreshes the story pool on an interval: aggregate all active
// sources, snapshot the result, then resolve missing images in the
// background while the fresh pool is already being served.
type Poller struct {
	aggregator   *aggregator.Aggregator
	backfill     *backfill.Backfill
	cacheManager *cache.Manager
	storage      storage.Storage
	hub          *events.Hub
	pollInterval time.Duration
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	mu           sync.RWMutex
	lastRun      time.Time
	isPolling    bool
	stopped      bool
}

func New(agg *aggregator.Aggregator, bf *backfill.Backfill, cacheManager *cache.Manager, store storage.Storage, hub *events.Hub, pollInterval time.Duration) *Poller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Poller{
		aggregator:   agg,
		backfill:     bf,
		cacheManager: cacheManager,
		storage:      store,
		hub:          hub,
		pollInterval: pollInterval,
		ctx:          ctx,
		cancel:       cancel,
	}
}

func (p *Poller) Start() {
	p.mu.Lock()
	if p.isPolling || p.stopped {
		p.mu.Unlock()
		return
	}
	p.isPolling = true
	p.mu.Unlock()

	log.Printf("Starting story poller with interval: %v", p.pollInterval)

	p.wg.Add(1)
	go p.pollLoop()
}

// Stop cancels the poll loop and any in-flight backfill, then waits for
// them. After Stop, Refresh still aggregates but spawns no new backfills.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.isPolling = false
	p.mu.Unlock()

	log.Println("Stopping story poller...")
	p.cancel()
	p.wg.Wait()
	log.Println("Story poller stopped")
}

func (p *Poller) pollLoop() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	// Poll immediately on start
	p.Refresh(p.ctx)

	for {
		select {
		case <-ticker.C:
			p.Refresh(p.ctx)
		case <-p.ctx.Done():
			return
		}
	}
}

// Refresh runs one full aggregation cycle and returns the new pool. The
// image backfill continues in the background after it returns.
func (p *Poller) Refresh(ctx context.Context) *models.StoryPool {
	log.Println("Refreshing story pool...")

	sources, err := p.storage.ListSources()
	if err != nil {
		log.Printf("Error listing sources: %v", err)
		return p.CurrentPool()
	}

	pool := p.aggregator.Aggregate(ctx, sources)

	if err := p.storage.SavePool(pool); err != nil {
		log.Printf("Error saving pool snapshot: %v", err)
	}
	p.cacheManager.Set(poolCacheKey, pool, 0)

	p.mu.Lock()
	p.lastRun = time.Now()
	p.mu.Unlock()

	log.Printf("Story pool refreshed: %d articles", pool.Count)

	// Fire and forget: serve the pool now, patch images as they resolve.
	// The Add must not race Stop's Wait, so both run under the mutex
	// against the stopped flag.
	articles := make([]models.Article, len(pool.Articles))
	copy(articles, pool.Articles)
	p.mu.Lock()
	if !p.stopped {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.backfill.Run(p.ctx, articles, p.applyImageUpdate)
		}()
	}
	p.mu.Unlock()

	return pool
}

// applyImageUpdate patches one resolved image into the snapshot and the
// served pool, then notifies stream subscribers.
func (p *Poller) applyImageUpdate(update models.ImageUpdate) {
	if err := p.storage.UpdateThumbnail(update.ArticleID, update.ImageURL); err != nil {
		log.Printf("Error patching thumbnail for %s: %v", update.ArticleID, err)
	}

	p.mu.Lock()
	if cached, found := p.cacheManager.Get(poolCacheKey); found {
		if pool, ok := cached.(*models.StoryPool); ok {
			p.cacheManager.Set(poolCacheKey, patchPool(pool, update), 0)
		}
	}
	p.mu.Unlock()

	p.hub.Publish(update)
}

// patchPool returns a copy of the pool with the update applied. Articles
// that already carry an image are left alone.
func patchPool(pool *models.StoryPool, update models.ImageUpdate) *models.StoryPool {
	patched := &models.StoryPool{
		Articles: make([]models.Article, len(pool.Articles)),
		Count:    pool.Count,
		Updated:  pool.Updated,
	}
	copy(patched.Articles, pool.Articles)
	for i := range patched.Articles {
		if patched.Articles[i].ID == update.ArticleID && patched.Articles[i].Thumbnail == "" {
			patched.Articles[i].Thumbnail = update.ImageURL
		}
	}
	return patched
}

// CurrentPool returns the pool being served: the cached one when present,
// otherwise the stored snapshot. Returns nil when nothing has been
// aggregated yet.
func (p *Poller) CurrentPool() *models.StoryPool {
	if cached, found := p.cacheManager.Get(poolCacheKey); found {
		if pool, ok := cached.(*models.StoryPool); ok {
			return pool
		}
	}

	pool, err := p.storage.LoadPool()
	if err != nil {
		log.Printf("Error loading pool snapshot: %v", err)
		return nil
	}
	if pool != nil {
		p.cacheManager.Set(poolCacheKey, pool, 0)
	}
	return pool
}

func (p *Poller) LastRun() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastRun
}

func (p *Poller) IsPolling() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.isPolling
}
