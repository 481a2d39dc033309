package images

import (
	"regexp"
	"strings"
)

var (
	smallDimRe = regexp.MustCompile(`[_-](50|100|150|32|64|thumb|small|mini)`)
	largeDimRe = regexp.MustCompile(`[_-](800|1200|1024|large|full|featured)`)
)

// Score ranks a validated candidate URL by how likely it is to be the
// article's own image. Scores are only comparable within one article's
// candidate set, never across articles. Deterministic for identical input.
func (r *Rules) Score(candidate, articleTitle string) int {
	score := 0
	lower := strings.ToLower(candidate)

	// A URL carrying the article's own words is almost certainly about it.
	for _, word := range strings.Fields(strings.ToLower(articleTitle)) {
		if len(word) > 3 && strings.Contains(lower, word) {
			score += 10
		}
	}

	for _, domain := range r.GoodDomains {
		if strings.Contains(lower, domain) {
			score += 5
			break
		}
	}

	for _, token := range r.ContentTokens {
		if strings.Contains(lower, token) {
			score += 3
		}
	}

	if smallDimRe.MatchString(lower) {
		score -= 5
	}
	if largeDimRe.MatchString(lower) {
		score += 5
	}

	return score
}
