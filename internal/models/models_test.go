package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParsePubDate_CommonLayouts(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{
			name:  "RFC1123Z",
			input: "Mon, 02 Jan 2006 15:04:05 -0700",
			want:  time.Date(2006, 1, 2, 15, 4, 5, 0, time.FixedZone("", -7*3600)),
		},
		{
			name:  "RFC1123",
			input: "Mon, 02 Jan 2006 15:04:05 UTC",
			want:  time.Date(2006, 1, 2, 15, 4, 5, 0, time.UTC),
		},
		{
			name:  "RFC3339",
			input: "2023-06-15T10:30:00Z",
			want:  time.Date(2023, 6, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			name:  "space separated",
			input: "2023-06-15 10:30:00",
			want:  time.Date(2023, 6, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			name:  "single digit day",
			input: "Mon, 2 Jan 2006 15:04:05 -0700",
			want:  time.Date(2006, 1, 2, 15, 4, 5, 0, time.FixedZone("", -7*3600)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePubDate(tt.input)
			if !got.Equal(tt.want) {
				t.Errorf("ParsePubDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParsePubDate_Unparseable(t *testing.T) {
	for _, input := range []string{"", "yesterday", "14 messidor an II", "2023-99-99"} {
		if got := ParsePubDate(input); !got.IsZero() {
			t.Errorf("ParsePubDate(%q) = %v, want zero time", input, got)
		}
	}
}

func TestArticle_PublishedAt_SortsUnparseableOldest(t *testing.T) {
	dated := Article{PubDate: "Mon, 02 Jan 2023 15:04:05 +0000"}
	undated := Article{PubDate: "not a date"}

	if !dated.PublishedAt().After(undated.PublishedAt()) {
		t.Error("article with a valid date should sort after one with an unparseable date")
	}
}

func TestConvertedFeed_UnmarshalEndpointResponse(t *testing.T) {
	body := `{
		"status": "ok",
		"feed": {"title": "Synth News", "image": "https://site.com/logo.png"},
		"items": [
			{
				"title": "New polysynth announced",
				"pubDate": "2023-06-15 10:30:00",
				"link": "https://site.com/poly",
				"guid": "https://site.com/?p=42",
				"thumbnail": "https://site.com/wp-content/uploads/poly.jpg",
				"description": "<p>Big news</p>",
				"enclosure": {"link": "https://site.com/poly.jpg", "type": "image/jpeg"},
				"categories": ["synths", "news"]
			}
		]
	}`

	var feed ConvertedFeed
	if err := json.Unmarshal([]byte(body), &feed); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if feed.Status != "ok" {
		t.Errorf("expected status ok, got %q", feed.Status)
	}
	if feed.Feed.Image != "https://site.com/logo.png" {
		t.Errorf("unexpected feed image: %q", feed.Feed.Image)
	}
	if len(feed.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(feed.Items))
	}
	item := feed.Items[0]
	if item.Enclosure == nil || item.Enclosure.Type != "image/jpeg" {
		t.Error("enclosure not decoded")
	}
	if len(item.Categories) != 2 {
		t.Errorf("expected 2 categories, got %d", len(item.Categories))
	}
}

func TestConvertedItem_MissingEnclosure(t *testing.T) {
	var item ConvertedItem
	if err := json.Unmarshal([]byte(`{"title":"x"}`), &item); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if item.Enclosure != nil {
		t.Error("expected nil enclosure when field is absent")
	}
}
