package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"sonagg/internal/aggregator"
	"sonagg/internal/api"
	"sonagg/internal/backfill"
	"sonagg/internal/cache"
	"sonagg/internal/config"
	"sonagg/internal/events"
	"sonagg/internal/fetcher"
	"sonagg/internal/filter"
	"sonagg/internal/images"
	"sonagg/internal/poller"
	"sonagg/internal/storage"

	_ "sonagg/docs"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize cache for hot data
	cacheManager := cache.NewManager(cfg.CacheTTL)

	// Initialize persistent storage
	storageManager, err := storage.NewStorage(cfg.DataDir)
	if err != nil {
		log.Fatal("Failed to initialize storage:", err)
	}

	// Seed the source registry on first start
	if err := storageManager.SeedSources(cfg.DefaultSources); err != nil {
		log.Printf("Warning: failed to seed default sources: %v", err)
	}

	// Feed conversion: remote endpoint when configured, local parsing
	// otherwise
	var converter fetcher.Converter
	if cfg.Pipeline.ConversionEndpoint != "" {
		converter = fetcher.NewEndpointConverter(cfg.Pipeline.ConversionEndpoint, cfg.Pipeline.FetchTimeout)
	} else {
		converter = fetcher.NewLocalConverter()
	}

	sourceFetcher := fetcher.New(converter, images.DefaultRules(), fetcher.Options{
		DetectLanguage: cfg.Pipeline.DetectLanguage,
	})

	sets := filter.NewSets(cfg.ExcludedKeywords, cfg.IncludedKeywords)
	agg := aggregator.New(sourceFetcher, sets, aggregator.Options{
		BatchSize:         cfg.Pipeline.BatchSize,
		BatchPause:        cfg.Pipeline.BatchPause,
		MaxPerSource:      cfg.Pipeline.MaxPerSource,
		MaxPerVideoSource: cfg.Pipeline.MaxPerVideoSource,
	})

	// The og:image cache lives apart from the pool cache: resolution
	// outcomes (including negatives) stick around for OG_CACHE_TTL.
	ogCache := cache.NewManager(cfg.Backfill.OgCacheTTL)
	resolver := backfill.NewResolver(ogCache, backfill.ResolverOptions{
		Endpoints:      cfg.Backfill.PageEndpoints,
		MinContentLen:  cfg.Backfill.MinContentLen,
		AttemptTimeout: cfg.Backfill.AttemptTimeout,
	})
	imageBackfill := backfill.New(resolver, backfill.Options{
		MaxArticles: cfg.Backfill.MaxArticles,
		BatchSize:   cfg.Backfill.BatchSize,
		BatchPause:  cfg.Backfill.BatchPause,
	})

	hub := events.NewHub()

	// Initialize and start the background poller
	backgroundPoller := poller.New(agg, imageBackfill, cacheManager, storageManager, hub, cfg.PollInterval)
	backgroundPoller.Start()

	// Initialize API server
	server := api.NewServer(backgroundPoller, storageManager, hub, cfg)

	log.Printf("Starting feed aggregator server on port %d", cfg.Port)
	log.Printf("Data directory: %s", cfg.DataDir)
	log.Printf("Cache TTL: %v", cfg.CacheTTL)
	log.Printf("Background polling interval: %v", cfg.PollInterval)

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		<-sigChan
		log.Println("Received shutdown signal, stopping services...")
		backgroundPoller.Stop()
		if err := storageManager.Close(); err != nil {
			log.Printf("Warning: failed to close storage: %v", err)
		}
		cancel()
	}()

	if err := server.StartWithContext(ctx); err != nil && err != context.Canceled {
		log.Fatal("Failed to start server:", err)
	}
}
