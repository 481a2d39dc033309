package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sonagg/internal/images"
	"sonagg/internal/models"
)

func newTestFetcher(endpoint string) *Fetcher {
	converter := NewEndpointConverter(endpoint+"?rss_url=", 5*time.Second)
	return New(converter, images.DefaultRules(), Options{})
}

func TestFetch_SoftFailureOnHTTP500(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	f := newTestFetcher(server.URL)
	source := &models.FeedSource{ID: "broken", FeedEndpoint: "https://x.test/feed"}

	articles := f.Fetch(context.Background(), source)
	if len(articles) != 0 {
		t.Errorf("expected empty list on HTTP 500, got %d articles", len(articles))
	}
}

func TestFetch_SoftFailureOnErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"error","message":"rate limited"}`))
	}))
	defer server.Close()

	f := newTestFetcher(server.URL)
	articles := f.Fetch(context.Background(), &models.FeedSource{ID: "limited", FeedEndpoint: "https://x.test/feed"})
	if len(articles) != 0 {
		t.Errorf("expected empty list on status!=ok, got %d", len(articles))
	}
}

func TestFetch_SoftFailureOnMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer server.Close()

	f := newTestFetcher(server.URL)
	articles := f.Fetch(context.Background(), &models.FeedSource{ID: "junk", FeedEndpoint: "https://x.test/feed"})
	if len(articles) != 0 {
		t.Errorf("expected empty list on malformed body, got %d", len(articles))
	}
}

func TestFetch_PassesFeedURLEscaped(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("rss_url")
		w.Write([]byte(`{"status":"ok","feed":{},"items":[]}`))
	}))
	defer server.Close()

	f := newTestFetcher(server.URL)
	f.Fetch(context.Background(), &models.FeedSource{ID: "s", FeedEndpoint: "https://x.test/feed?a=1&b=2"})

	if gotQuery != "https://x.test/feed?a=1&b=2" {
		t.Errorf("feed URL not passed through escaped, got %q", gotQuery)
	}
}

func TestFetch_BuildsArticles(t *testing.T) {
	body := `{
		"status": "ok",
		"feed": {"title": "Example", "image": "https://example.com/site-header-img.png"},
		"items": [
			{
				"title": "Moog announces new synth &amp;amp; sequencer",
				"pubDate": "Mon, 02 Jan 2023 15:04:05 +0000",
				"link": "https://example.com/moog-announcement",
				"guid": "https://example.com/?p=1",
				"description": "<p>The new <b>Moog</b> synth is here.</p><img src=\"https://example.com/uploads/moog-synth_full-1200.jpg\">",
				"categories": ["synths"]
			},
			{
				"title": "No image here",
				"pubDate": "not a date",
				"link": "https://example.com/plain",
				"description": "<p>Short text only.</p>"
			}
		]
	}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer server.Close()

	f := newTestFetcher(server.URL)
	source := &models.FeedSource{ID: "example", Name: "Example Feed", FeedEndpoint: "https://example.com/feed"}
	articles := f.Fetch(context.Background(), source)

	if len(articles) != 2 {
		t.Fatalf("expected 2 articles (imageless items are kept), got %d", len(articles))
	}

	first := articles[0]
	if first.ID != "https://example.com/?p=1" {
		t.Errorf("id should prefer guid, got %q", first.ID)
	}
	if first.Title != "Moog announces new synth & sequencer" {
		t.Errorf("doubly-encoded entities not decoded: %q", first.Title)
	}
	if first.Thumbnail != "https://example.com/uploads/moog-synth_full-1200.jpg" {
		t.Errorf("unexpected thumbnail: %q", first.Thumbnail)
	}
	if strings.Contains(first.ContentSnippet, "<") {
		t.Errorf("snippet contains markup: %q", first.ContentSnippet)
	}
	if first.SourceTitle != "Example Feed" || first.SourceID != "example" {
		t.Error("source attribution missing")
	}

	second := articles[1]
	if second.ID != "https://example.com/plain" {
		t.Errorf("id should fall back to link, got %q", second.ID)
	}
	if second.Thumbnail != "" {
		t.Errorf("expected empty thumbnail, got %q", second.Thumbnail)
	}
}

func TestFetch_SnippetTruncation(t *testing.T) {
	long := strings.Repeat("word ", 60) // 300 chars
	body := `{"status":"ok","feed":{},"items":[
		{"title":"t","link":"https://example.com/a","description":"` + long + `"}
	]}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer server.Close()

	f := newTestFetcher(server.URL)

	standard := f.Fetch(context.Background(), &models.FeedSource{ID: "s", FeedEndpoint: "https://x.test/feed"})
	if got := standard[0].ContentSnippet; len([]rune(got)) != snippetLenStandard+3 || !strings.HasSuffix(got, "...") {
		t.Errorf("standard snippet not truncated to %d+ellipsis: %d chars", snippetLenStandard, len(got))
	}

	video := f.Fetch(context.Background(), &models.FeedSource{ID: "v", FeedEndpoint: "https://x.test/feed", IsVideoSource: true})
	if got := video[0].ContentSnippet; len([]rune(got)) != snippetLenVideo+3 {
		t.Errorf("video snippet not truncated to %d+ellipsis: %d chars", snippetLenVideo, len(got))
	}
}

func TestFetch_VideoThumbnailUpgrade(t *testing.T) {
	body := `{"status":"ok","feed":{},"items":[
		{"title":"Video drop","link":"https://youtube.com/watch?v=abc",
		 "thumbnail":"http://i.ytimg.com/vi/abcdefghijk/mqdefault.jpg",
		 "description":"new video"}
	]}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer server.Close()

	f := newTestFetcher(server.URL)
	articles := f.Fetch(context.Background(), &models.FeedSource{ID: "yt", FeedEndpoint: "https://x.test/feed", IsVideoSource: true})

	want := "https://i.ytimg.com/vi/abcdefghijk/hqdefault.jpg"
	if articles[0].Thumbnail != want {
		t.Errorf("thumbnail = %q, want https upgrade and hqdefault: %q", articles[0].Thumbnail, want)
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"plain text", "hello world", "hello world"},
		{"tags removed", "<p>hello <b>world</b></p>", "hello world"},
		{"entities decoded", "a &amp; b", "a & b"},
		{"blocks spaced", "<p>one</p><p>two</p>", "one two"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripHTML(tt.html); got != tt.want {
				t.Errorf("stripHTML(%q) = %q, want %q", tt.html, got, tt.want)
			}
		})
	}
}

func TestEnsureHTTPS(t *testing.T) {
	if got := ensureHTTPS("http://site.com/a.jpg"); got != "https://site.com/a.jpg" {
		t.Errorf("got %q", got)
	}
	if got := ensureHTTPS("https://site.com/a.jpg"); got != "https://site.com/a.jpg" {
		t.Errorf("https must pass through, got %q", got)
	}
	if got := ensureHTTPS("//site.com/a.jpg"); got != "//site.com/a.jpg" {
		t.Errorf("protocol-relative must pass through, got %q", got)
	}
}
