package images

import (
	"sort"

	"sonagg/internal/models"
)

type scoredCandidate struct {
	url   string
	score int
}

// SelectBest runs the full in-feed selection for one item: extract, validate
// against the feed logo and denylists, drop over-frequent template assets,
// score the survivors and return the top URL. Returns "" when nothing
// survives. Ties keep discovery order (stable sort).
func (r *Rules) SelectBest(item *models.ConvertedItem, feedImage string, freq map[string]int) string {
	var scored []scoredCandidate
	for _, url := range Candidates(item) {
		if !r.IsValidImageURL(url, feedImage, item.Link) {
			continue
		}
		if TooFrequent(freq, url) {
			continue
		}
		scored = append(scored, scoredCandidate{url: url, score: r.Score(url, item.Title)})
	}
	if len(scored) == 0 {
		return ""
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	return scored[0].url
}
