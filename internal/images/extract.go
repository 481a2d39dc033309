package images

import (
	"regexp"
	"strings"

	"sonagg/internal/models"
)

// imgTagRe isolates each <img> tag; imgTagURL probes its attributes.
var imgTagRe = regexp.MustCompile(`(?i)<img\b[^>]*`)

// Attribute probes in priority order. Lazy-loaded markup often leaves src
// pointing at a placeholder, so data-src and data-lazy-src win over src
// within one tag regardless of attribute order. The plain src probe
// requires leading whitespace so it cannot land inside data-src.
var imgAttrRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\sdata-src\s*=\s*["']([^"']+)["']`),
	regexp.MustCompile(`(?i)\sdata-lazy-src\s*=\s*["']([^"']+)["']`),
	regexp.MustCompile(`(?i)\ssrc\s*=\s*["']([^"']+)["']`),
}

// imgTagURL returns the best image URL declared by one <img> tag, or "".
func imgTagURL(tag string) string {
	for _, re := range imgAttrRes {
		if m := re.FindStringSubmatch(tag); m != nil && m[1] != "" {
			return m[1]
		}
	}
	return ""
}

// imageExtRe matches file extensions that identify an enclosure link as an
// image even when the declared MIME type is missing or wrong.
var imageExtRe = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|webp|gif)$`)

// Candidates extracts every plausible image URL from one raw feed item, in
// discovery order. No validation happens here; a permissive superset is
// deliberate so later stages can choose among all matches.
func Candidates(item *models.ConvertedItem) []string {
	var candidates []string

	if item.Enclosure != nil && item.Enclosure.Link != "" {
		if strings.HasPrefix(item.Enclosure.Type, "image") || imageExtRe.MatchString(item.Enclosure.Link) {
			candidates = append(candidates, item.Enclosure.Link)
		}
	}

	if len(item.Thumbnail) > 5 {
		candidates = append(candidates, item.Thumbnail)
	}

	for _, html := range []string{item.Description, item.Content} {
		if html == "" {
			continue
		}
		for _, tag := range imgTagRe.FindAllString(html, -1) {
			if url := imgTagURL(tag); url != "" {
				candidates = append(candidates, url)
			}
		}
	}

	return candidates
}

// uniqueStrings returns the distinct values of s, first occurrence order.
func uniqueStrings(s []string) []string {
	seen := make(map[string]bool, len(s))
	out := make([]string, 0, len(s))
	for _, v := range s {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
