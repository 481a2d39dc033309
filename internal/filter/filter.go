package filter

import (
	"strings"

	"sonagg/internal/models"
)

// Sets holds the keyword classification tables the pipeline filters with.
// The tables are injected at construction and never mutated afterwards, so
// a Sets value is safe to share across goroutines.
type Sets struct {
	excluded []string
	included map[string][]string
}

// NewSets builds filter sets from an exclusion list and a per-source
// inclusion table. All keywords are normalized to lower case once here so
// the per-article predicates only do substring checks.
func NewSets(excluded []string, includedBySource map[string][]string) *Sets {
	s := &Sets{
		excluded: make([]string, 0, len(excluded)),
		included: make(map[string][]string, len(includedBySource)),
	}
	for _, kw := range excluded {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			s.excluded = append(s.excluded, kw)
		}
	}
	for sourceID, keywords := range includedBySource {
		cleaned := make([]string, 0, len(keywords))
		for _, kw := range keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				cleaned = append(cleaned, kw)
			}
		}
		if len(cleaned) > 0 {
			s.included[sourceID] = cleaned
		}
	}
	return s
}

// searchText builds the combined text an article is matched against:
// title, categories and snippet, lower-cased.
func searchText(article *models.Article) string {
	return strings.ToLower(article.Title + " " + strings.Join(article.Categories, " ") + " " + article.ContentSnippet)
}

// IsExcluded reports whether the article matches any globally excluded
// keyword. Pure predicate: calling it repeatedly on the same article always
// yields the same answer.
func (s *Sets) IsExcluded(article *models.Article) bool {
	text := searchText(article)
	for _, kw := range s.excluded {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// HasInclusionList reports whether the source is a curated/ambiguous-genre
// source, i.e. one whose items must match a topical allowlist to be kept.
func (s *Sets) HasInclusionList(sourceID string) bool {
	_, ok := s.included[sourceID]
	return ok
}

// MatchesInclusion reports whether the article contains at least one of the
// source's allowlisted keywords. Sources without an inclusion list accept
// everything.
func (s *Sets) MatchesInclusion(sourceID string, article *models.Article) bool {
	keywords, ok := s.included[sourceID]
	if !ok {
		return true
	}
	text := searchText(article)
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// ApplyExclusions returns the articles that survive the global exclusion
// filter, preserving order. The input slice is not modified.
func (s *Sets) ApplyExclusions(articles []models.Article) []models.Article {
	kept := make([]models.Article, 0, len(articles))
	for i := range articles {
		if !s.IsExcluded(&articles[i]) {
			kept = append(kept, articles[i])
		}
	}
	return kept
}
