package models

import (
	"time"
)

// FeedSource describes one configured feed. Sources are managed through the
// sources API and stored in sqlite; the pipeline treats them as read-only.
type FeedSource struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	DisplayURL    string `json:"display_url"`
	FeedEndpoint  string `json:"feed_endpoint"`
	IsActive      bool   `json:"is_active"`
	IsVideoSource bool   `json:"is_video_source"`
}

// ConvertedFeed is the shape the feed conversion endpoint returns for one
// feed: a status field, feed-level metadata and the raw item list.
type ConvertedFeed struct {
	Status string          `json:"status"`
	Feed   ConvertedMeta   `json:"feed"`
	Items  []ConvertedItem `json:"items"`
}

// ConvertedMeta carries feed-level metadata. Image is the feed's declared
// logo, used by the validator to reject recurring masthead images.
type ConvertedMeta struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Link        string `json:"link"`
	Author      string `json:"author"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// ConvertedItem is one raw feed item as delivered by the conversion
// endpoint. PubDate is a feed-supplied string and is not guaranteed to
// parse. Description and Content are HTML.
type ConvertedItem struct {
	Title       string     `json:"title"`
	PubDate     string     `json:"pubDate"`
	Link        string     `json:"link"`
	GUID        string     `json:"guid"`
	Author      string     `json:"author"`
	Thumbnail   string     `json:"thumbnail"`
	Description string     `json:"description"`
	Content     string     `json:"content"`
	Enclosure   *Enclosure `json:"enclosure,omitempty"`
	Categories  []string   `json:"categories"`
}

// Enclosure is an item's media attachment as declared by the feed.
type Enclosure struct {
	Link string `json:"link"`
	Type string `json:"type"`
}

// Article is the pipeline's output record. Thumbnail is empty when no
// validated image survived selection; the backfill pass may fill it in
// later but never overwrites a non-empty value.
type Article struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Link           string   `json:"link"`
	PubDate        string   `json:"pub_date"`
	ContentSnippet string   `json:"content_snippet"`
	Thumbnail      string   `json:"thumbnail"`
	SourceID       string   `json:"source_id"`
	SourceTitle    string   `json:"source_title"`
	SourceIcon     string   `json:"source_icon,omitempty"`
	Categories     []string `json:"categories"`
	IsVideo        bool     `json:"is_video,omitempty"`
	Language       string   `json:"language,omitempty"`
}

// PublishedAt parses the feed-supplied publish date. Unparseable dates
// return the zero time so they sort as oldest instead of failing.
func (a *Article) PublishedAt() time.Time {
	return ParsePubDate(a.PubDate)
}

// ParsePubDate tries the date layouts feeds actually emit. The zero time is
// returned for anything unrecognized.
func ParsePubDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	layouts := []string{
		time.RFC1123Z,
		time.RFC1123,
		time.RFC822Z,
		time.RFC822,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"Mon, 2 Jan 2006 15:04:05 -0700",
		"Mon, 2 Jan 2006 15:04:05 MST",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// StoryPool is one aggregation run's merged, filtered and ordered result.
type StoryPool struct {
	Articles []Article `json:"articles"`
	Count    int       `json:"count"`
	Updated  time.Time `json:"updated"`
}

// ImageUpdate is one backfill result: the article that was resolved and the
// image URL found for it.
type ImageUpdate struct {
	ArticleID string `json:"article_id"`
	ImageURL  string `json:"image_url"`
}

// PoolInfo is metadata about the stored pool snapshot.
type PoolInfo struct {
	ArticleCount int       `json:"article_count"`
	WithImage    int       `json:"with_image"`
	Updated      time.Time `json:"updated"`
}
