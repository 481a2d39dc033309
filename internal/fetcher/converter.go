package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"sonagg/internal/models"

	"github.com/mmcdole/gofeed"
)

// Converter turns one feed source into the conversion-endpoint item shape.
type Converter interface {
	Convert(ctx context.Context, source *models.FeedSource) (*models.ConvertedFeed, error)
}

// EndpointConverter calls the third-party feed-to-JSON conversion endpoint.
type EndpointConverter struct {
	endpoint string
	client   *http.Client
}

// NewEndpointConverter builds a converter against an endpoint prefix such as
// "https://api.rss2json.com/v1/api.json?rss_url="; the feed URL is appended
// query-escaped.
func NewEndpointConverter(endpoint string, timeout time.Duration) *EndpointConverter {
	return &EndpointConverter{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (c *EndpointConverter) Convert(ctx context.Context, source *models.FeedSource) (*models.ConvertedFeed, error) {
	reqURL := c.endpoint + url.QueryEscape(source.FeedEndpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; sonagg/1.0)")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("conversion request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("conversion endpoint returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read conversion response: %w", err)
	}

	var feed models.ConvertedFeed
	if err := json.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("malformed conversion response: %w", err)
	}
	if feed.Status != "ok" {
		return nil, fmt.Errorf("conversion endpoint status %q", feed.Status)
	}

	return &feed, nil
}

// LocalConverter parses the feed XML directly with gofeed and maps it onto
// the same converted shape. Used when no conversion endpoint is configured.
type LocalConverter struct {
	parser *gofeed.Parser
}

func NewLocalConverter() *LocalConverter {
	return &LocalConverter{parser: gofeed.NewParser()}
}

func (c *LocalConverter) Convert(ctx context.Context, source *models.FeedSource) (*models.ConvertedFeed, error) {
	parsed, err := c.parser.ParseURLWithContext(source.FeedEndpoint, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	feed := &models.ConvertedFeed{
		Status: "ok",
		Feed: models.ConvertedMeta{
			URL:         source.FeedEndpoint,
			Title:       parsed.Title,
			Link:        parsed.Link,
			Description: parsed.Description,
		},
	}
	if parsed.Image != nil {
		feed.Feed.Image = parsed.Image.URL
	}

	for _, item := range parsed.Items {
		converted := models.ConvertedItem{
			Title:       item.Title,
			PubDate:     item.Published,
			Link:        item.Link,
			GUID:        item.GUID,
			Description: item.Description,
			Content:     item.Content,
			Categories:  item.Categories,
		}
		if item.Author != nil {
			converted.Author = item.Author.Name
		}
		if item.Image != nil {
			converted.Thumbnail = item.Image.URL
		}
		if len(item.Enclosures) > 0 {
			converted.Enclosure = &models.Enclosure{
				Link: item.Enclosures[0].URL,
				Type: item.Enclosures[0].Type,
			}
		}
		feed.Items = append(feed.Items, converted)
	}

	return feed, nil
}
