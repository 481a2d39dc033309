package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"sonagg/internal/aggregator"
	"sonagg/internal/backfill"
	"sonagg/internal/cache"
	"sonagg/internal/config"
	"sonagg/internal/events"
	"sonagg/internal/filter"
	"sonagg/internal/models"
	"sonagg/internal/poller"
	"sonagg/internal/storage"
)

type stubFetcher struct {
	articles map[string][]models.Article
}

func (f *stubFetcher) Fetch(ctx context.Context, source *models.FeedSource) []models.Article {
	return f.articles[source.ID]
}

func newTestServer(t *testing.T, fetcher aggregator.SourceFetcher) (*Server, storage.Storage, *events.Hub) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := storage.NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cacheManager := cache.NewManager(0)
	hub := events.NewHub()

	agg := aggregator.New(fetcher, filter.NewSets(nil, nil), aggregator.Options{
		BatchSize: 4, MaxPerSource: 5, MaxPerVideoSource: 2,
	})
	resolver := backfill.NewResolver(cacheManager, backfill.ResolverOptions{Endpoints: []string{""}})
	bf := backfill.New(resolver, backfill.Options{MaxArticles: 1, BatchSize: 1})
	p := poller.New(agg, bf, cacheManager, store, hub, time.Hour)
	t.Cleanup(p.Stop)

	cfg := &config.Config{
		Port: 8080,
		Security: config.SecurityConfig{
			MaxRequestSize: 1 << 20,
		},
	}
	return NewServer(p, store, hub, cfg), store, hub
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(w, req)

	var decoded map[string]interface{}
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("response is not JSON: %v: %s", err, w.Body.String())
		}
	}
	return w, decoded
}

func TestHealthCheck(t *testing.T) {
	s, _, _ := newTestServer(t, &stubFetcher{})

	w, body := doJSON(t, s.Handler(), http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body["status"] != "healthy" || body["service"] != "sonagg" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestSourceLifecycle(t *testing.T) {
	s, _, _ := newTestServer(t, &stubFetcher{})
	h := s.Handler()

	// Create with an explicit id.
	src := map[string]interface{}{
		"id":            "my-source",
		"name":          "My Source",
		"feed_endpoint": "https://example.com/feed",
		"is_active":     true,
	}
	w, _ := doJSON(t, h, http.MethodPost, "/api/v1/sources", src)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	// Duplicate create conflicts.
	w, _ = doJSON(t, h, http.MethodPost, "/api/v1/sources", src)
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate create: expected 409, got %d", w.Code)
	}

	// Read it back.
	w, body := doJSON(t, h, http.MethodGet, "/api/v1/sources/my-source", nil)
	if w.Code != http.StatusOK || body["name"] != "My Source" {
		t.Errorf("get: %d %v", w.Code, body)
	}

	// Update.
	src["name"] = "Renamed"
	src["is_active"] = false
	w, body = doJSON(t, h, http.MethodPut, "/api/v1/sources/my-source", src)
	if w.Code != http.StatusOK || body["name"] != "Renamed" {
		t.Errorf("update: %d %v", w.Code, body)
	}

	// List.
	w, body = doJSON(t, h, http.MethodGet, "/api/v1/sources", nil)
	if w.Code != http.StatusOK || body["count"].(float64) != 1 {
		t.Errorf("list: %d %v", w.Code, body)
	}

	// Delete and confirm gone.
	w, _ = doJSON(t, h, http.MethodDelete, "/api/v1/sources/my-source", nil)
	if w.Code != http.StatusOK {
		t.Errorf("delete: expected 200, got %d", w.Code)
	}
	w, _ = doJSON(t, h, http.MethodGet, "/api/v1/sources/my-source", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete: expected 404, got %d", w.Code)
	}
	w, _ = doJSON(t, h, http.MethodDelete, "/api/v1/sources/my-source", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("delete missing: expected 404, got %d", w.Code)
	}
}

func TestCreateSourceValidation(t *testing.T) {
	s, _, _ := newTestServer(t, &stubFetcher{})
	h := s.Handler()

	w, _ := doJSON(t, h, http.MethodPost, "/api/v1/sources", map[string]interface{}{"name": "No endpoint"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing endpoint, got %d", w.Code)
	}

	// Server assigns an id when none is given.
	w, body := doJSON(t, h, http.MethodPost, "/api/v1/sources", map[string]interface{}{
		"name":          "Auto ID",
		"feed_endpoint": "https://example.com/feed",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if id, _ := body["id"].(string); id == "" {
		t.Error("expected a generated id")
	}
}

func TestGetStoriesEmptyBeforeFirstRefresh(t *testing.T) {
	s, _, _ := newTestServer(t, &stubFetcher{})

	w, body := doJSON(t, s.Handler(), http.MethodGet, "/api/v1/stories", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body["count"].(float64) != 0 {
		t.Errorf("expected empty pool, got %v", body)
	}
}

func TestRefreshThenGetStories(t *testing.T) {
	fetcher := &stubFetcher{articles: map[string][]models.Article{
		"src": {
			{ID: "a", Title: "Synth news", Link: "https://s.example/a", SourceID: "src",
				PubDate: "Mon, 02 Jan 2006 15:04:05 +0000", Thumbnail: "https://img.example/a.jpg"},
			{ID: "b", Title: "Studio video", Link: "https://s.example/b", SourceID: "src",
				PubDate: "Mon, 02 Jan 2006 16:04:05 +0000", Thumbnail: "https://img.example/b.jpg", IsVideo: true},
		},
	}}
	s, store, _ := newTestServer(t, fetcher)
	h := s.Handler()

	if err := store.SaveSource(&models.FeedSource{ID: "src", Name: "Src", FeedEndpoint: "https://s.example/feed", IsActive: true}); err != nil {
		t.Fatalf("save source failed: %v", err)
	}

	w, body := doJSON(t, h, http.MethodPost, "/api/v1/stories/refresh", nil)
	if w.Code != http.StatusOK || body["count"].(float64) != 2 {
		t.Fatalf("refresh: %d %v", w.Code, body)
	}

	w, body = doJSON(t, h, http.MethodGet, "/api/v1/stories", nil)
	if w.Code != http.StatusOK || body["count"].(float64) != 2 {
		t.Fatalf("stories: %d %v", w.Code, body)
	}

	// Filtering narrows the list but total reports the whole pool.
	w, body = doJSON(t, h, http.MethodGet, "/api/v1/stories?video=true", nil)
	if w.Code != http.StatusOK || body["count"].(float64) != 1 || body["total"].(float64) != 2 {
		t.Errorf("video filter: %d %v", w.Code, body)
	}

	w, body = doJSON(t, h, http.MethodGet, "/api/v1/stories?limit=1", nil)
	if w.Code != http.StatusOK || body["count"].(float64) != 1 {
		t.Errorf("limit: %d %v", w.Code, body)
	}

	w, _ = doJSON(t, h, http.MethodGet, "/api/v1/stories?video=maybe", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad video flag: expected 400, got %d", w.Code)
	}

	// Pool info reflects the refreshed snapshot.
	w, body = doJSON(t, h, http.MethodGet, "/api/v1/stories/info", nil)
	if w.Code != http.StatusOK || body["article_count"].(float64) != 2 {
		t.Errorf("info: %d %v", w.Code, body)
	}
}

func TestPoolInfoBeforeFirstRefresh(t *testing.T) {
	s, _, _ := newTestServer(t, &stubFetcher{})

	w, _ := doJSON(t, s.Handler(), http.MethodGet, "/api/v1/stories/info", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 before first refresh, got %d", w.Code)
	}
}

func TestPollerStatus(t *testing.T) {
	s, _, _ := newTestServer(t, &stubFetcher{})

	w, body := doJSON(t, s.Handler(), http.MethodGet, "/api/v1/poller/status", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if _, ok := body["is_polling"]; !ok {
		t.Errorf("missing is_polling: %v", body)
	}
}

func TestStreamUpdatesDeliversEvents(t *testing.T) {
	s, _, hub := newTestServer(t, &stubFetcher{})

	server := httptest.NewServer(s.Handler())
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/v1/stories/updates", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("stream request failed: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Errorf("unexpected content type %q", ct)
	}

	// Wait for the subscription before publishing.
	deadline := time.Now().Add(2 * time.Second)
	for hub.SubscriberCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("stream never subscribed")
		}
		time.Sleep(5 * time.Millisecond)
	}
	hub.Publish(models.ImageUpdate{ArticleID: "art", ImageURL: "https://img.example/x.jpg"})

	scanner := bufio.NewScanner(resp.Body)
	var sawEvent, sawData bool
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "event:") && strings.Contains(line, "image") {
			sawEvent = true
		}
		if strings.HasPrefix(line, "data:") && strings.Contains(line, "art") {
			sawData = true
		}
		if sawEvent && sawData {
			break
		}
	}
	if !sawEvent || !sawData {
		t.Errorf("image update not streamed: event=%v data=%v", sawEvent, sawData)
	}
}
