package images

import (
	"sonagg/internal/models"
)

// maxFrequency is the most items one candidate URL may appear in within a
// single feed before being treated as a shared template asset (banner,
// author avatar, fallback graphic) rather than an item-specific image.
const maxFrequency = 2

// Frequencies counts, for one feed's item batch, how many distinct items
// produced each candidate URL. A URL repeated inside one item's markup is
// counted once for that item.
func Frequencies(items []models.ConvertedItem) map[string]int {
	freq := make(map[string]int)
	for i := range items {
		for _, url := range uniqueStrings(Candidates(&items[i])) {
			freq[url]++
		}
	}
	return freq
}

// TooFrequent reports whether a candidate appears in enough items of the
// same feed to be disqualified from scoring.
func TooFrequent(freq map[string]int, url string) bool {
	return freq[url] > maxFrequency
}
