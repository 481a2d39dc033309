// Package fetcher turns one configured feed source into ranked articles:
// it calls the feed conversion endpoint once, selects at most one thumbnail
// per item and cleans up item text for display.
package fetcher

import (
	"context"
	"log"

	"sonagg/internal/images"
	"sonagg/internal/models"
)

// Snippet character budgets per source type.
const (
	snippetLenStandard = 150
	snippetLenVideo    = 100
)

// Options tunes a Fetcher beyond its defaults.
type Options struct {
	// DetectLanguage enables lingua-based language tagging of articles.
	// Off in tests to keep them fast.
	DetectLanguage bool
}

type Fetcher struct {
	converter Converter
	rules     *images.Rules
	tagger    *languageTagger
}

// New builds a per-source fetcher on the given converter and image rules.
func New(converter Converter, rules *images.Rules, opts Options) *Fetcher {
	f := &Fetcher{
		converter: converter,
		rules:     rules,
	}
	if opts.DetectLanguage {
		f.tagger = newLanguageTagger()
	}
	return f
}

// Fetch retrieves and processes one source. Failures are soft: an
// unreachable endpoint, a non-2xx status or a non-"ok" body all yield an
// empty list, never an error, so one broken source cannot abort a run.
// Every item becomes an article, with or without an image.
func (f *Fetcher) Fetch(ctx context.Context, source *models.FeedSource) []models.Article {
	feed, err := f.converter.Convert(ctx, source)
	if err != nil {
		log.Printf("Source %s: conversion failed, skipping: %v", source.ID, err)
		return []models.Article{}
	}

	feedLogo := feed.Feed.Image
	freq := images.Frequencies(feed.Items)

	articles := make([]models.Article, 0, len(feed.Items))
	for i := range feed.Items {
		item := &feed.Items[i]

		thumbnail := f.rules.SelectBest(item, feedLogo, freq)
		if thumbnail != "" {
			thumbnail = ensureHTTPS(thumbnail)
			if source.IsVideoSource {
				thumbnail = upgradeVideoThumb(thumbnail)
			}
		}

		raw := item.Description
		if raw == "" {
			raw = item.Content
		}
		maxLen := snippetLenStandard
		if source.IsVideoSource {
			maxLen = snippetLenVideo
		}
		snippet := truncateSnippet(stripHTML(raw), maxLen)

		id := item.GUID
		if id == "" {
			id = item.Link
		}

		title := decodeTitle(item.Title)

		article := models.Article{
			ID:             id,
			Title:          title,
			Link:           item.Link,
			PubDate:        item.PubDate,
			ContentSnippet: snippet,
			Thumbnail:      thumbnail,
			SourceID:       source.ID,
			SourceTitle:    source.Name,
			SourceIcon:     feedLogo,
			Categories:     item.Categories,
			IsVideo:        source.IsVideoSource,
		}
		if f.tagger != nil {
			article.Language = f.tagger.tag(title + " " + snippet)
		}
		if article.Categories == nil {
			article.Categories = []string{}
		}

		articles = append(articles, article)
	}

	return articles
}
