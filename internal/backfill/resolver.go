package backfill

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sonagg/internal/cache"

	"github.com/PuerkitoBio/goquery"
)

// Resolver fetches an article's page and extracts its representative
// image, memoizing every outcome (including failures) per article link.
type Resolver struct {
	// endpoints are tried in order. "" fetches the article URL directly;
	// any other entry is a mirror prefix the url-encoded target is appended
	// to. One endpoint failing or returning a stub page falls through to
	// the next.
	endpoints      []string
	client         *http.Client
	cache          *cache.Manager
	minContentLen  int
	attemptTimeout time.Duration
}

// ResolverOptions tunes page retrieval.
type ResolverOptions struct {
	Endpoints      []string
	MinContentLen  int
	AttemptTimeout time.Duration
}

func NewResolver(cacheManager *cache.Manager, opts ResolverOptions) *Resolver {
	if len(opts.Endpoints) == 0 {
		opts.Endpoints = []string{""}
	}
	if opts.MinContentLen <= 0 {
		opts.MinContentLen = 500
	}
	if opts.AttemptTimeout <= 0 {
		opts.AttemptTimeout = 6 * time.Second
	}
	return &Resolver{
		endpoints:      opts.Endpoints,
		client:         &http.Client{Timeout: opts.AttemptTimeout},
		cache:          cacheManager,
		minContentLen:  opts.MinContentLen,
		attemptTimeout: opts.AttemptTimeout,
	}
}

// Resolve returns the page image for an article link, or "" when none was
// found. The cache is consulted before any network attempt and the outcome
// is cached before returning, so repeated calls for one link cost a single
// retrieval sequence.
func (r *Resolver) Resolve(ctx context.Context, link string) string {
	if cached, found := r.cache.GetImage(link); found {
		return cached
	}

	image := r.resolve(ctx, link)
	r.cache.SetImage(link, image)
	return image
}

func (r *Resolver) resolve(ctx context.Context, link string) string {
	pageURL, err := url.Parse(link)
	if err != nil || pageURL.Host == "" {
		return ""
	}

	for _, endpoint := range r.endpoints {
		body, err := r.fetchPage(ctx, endpoint, link)
		if err != nil {
			continue
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
		if err != nil {
			continue
		}
		if image := extractPageImage(doc, pageURL); image != "" {
			return image
		}
	}
	return ""
}

// fetchPage retrieves the article HTML through one endpoint with a bounded
// timeout, rejecting stub responses shorter than the sanity minimum.
func (r *Resolver) fetchPage(ctx context.Context, endpoint, link string) (string, error) {
	target := link
	if endpoint != "" {
		target = endpoint + url.QueryEscape(link)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, r.attemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; sonagg/1.0)")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("page fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page fetch HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read page: %w", err)
	}
	if len(body) < r.minContentLen {
		return "", fmt.Errorf("page body too short: %d bytes", len(body))
	}

	return string(body), nil
}
