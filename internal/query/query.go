package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"sonagg/internal/models"
)

const maxLimit = 200

// Options narrows the story list returned by the API. The zero value
// returns everything.
type Options struct {
	Limit    int
	Offset   int
	Search   string
	SourceID string
	// Video filters by article kind: nil means both, otherwise only
	// videos (true) or only standard articles (false).
	Video *bool
}

// Parse reads filter options from request query parameters.
func Parse(values url.Values) (*Options, error) {
	opts := &Options{}

	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return nil, fmt.Errorf("invalid limit %q", raw)
		}
		if limit > maxLimit {
			limit = maxLimit
		}
		opts.Limit = limit
	}

	if raw := values.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return nil, fmt.Errorf("invalid offset %q", raw)
		}
		opts.Offset = offset
	}

	opts.Search = strings.TrimSpace(values.Get("search"))
	opts.SourceID = strings.TrimSpace(values.Get("source"))

	if raw := values.Get("video"); raw != "" {
		video, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid video flag %q", raw)
		}
		opts.Video = &video
	}

	return opts, nil
}

// Apply filters and pages the given articles without mutating the input.
// Pool order is preserved.
func (o *Options) Apply(articles []models.Article) []models.Article {
	filtered := make([]models.Article, 0, len(articles))
	search := strings.ToLower(o.Search)

	for _, a := range articles {
		if o.SourceID != "" && a.SourceID != o.SourceID {
			continue
		}
		if o.Video != nil && a.IsVideo != *o.Video {
			continue
		}
		if search != "" && !matchesSearch(&a, search) {
			continue
		}
		filtered = append(filtered, a)
	}

	if o.Offset >= len(filtered) {
		return []models.Article{}
	}
	filtered = filtered[o.Offset:]
	if o.Limit > 0 && o.Limit < len(filtered) {
		filtered = filtered[:o.Limit]
	}
	return filtered
}

func matchesSearch(a *models.Article, search string) bool {
	if strings.Contains(strings.ToLower(a.Title), search) {
		return true
	}
	if strings.Contains(strings.ToLower(a.ContentSnippet), search) {
		return true
	}
	for _, c := range a.Categories {
		if strings.Contains(strings.ToLower(c), search) {
			return true
		}
	}
	return false
}
