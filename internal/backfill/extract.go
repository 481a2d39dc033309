package backfill

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// junkImageRe disqualifies page images that are near-certainly not the
// article's representative image: logos, icons, avatars, UI chrome.
var junkImageRe = regexp.MustCompile(`(?i)(logo|icon|avatar|sprite|placeholder|spacer|blank|1x1|pixel|spinner|loading|badge|emoji)`)

// smallTokenRe matches URL tokens that advertise icon-sized assets.
var smallTokenRe = regexp.MustCompile(`[_-](50|100|150|32|64|thumb|small|mini)`)

// articleContainers are the selectors tried, in order, for the last-resort
// in-content image search.
var articleContainers = []string{
	"article",
	"main article",
	".article-body",
	".article__content",
	".post-content",
	".entry-content",
	"main",
}

// extractPageImage finds the page's representative image, in priority
// order: Open Graph meta tags, JSON-LD structured data, Twitter card tags,
// then the first plausible <img> inside an article-like container. Returns
// "" when nothing acceptable is found.
func extractPageImage(doc *goquery.Document, pageURL *url.URL) string {
	metaContent := func(attr, val string) string {
		if s, ok := doc.Find(`meta[` + attr + `="` + val + `"]`).Attr("content"); ok {
			return strings.TrimSpace(s)
		}
		return ""
	}

	candidates := []string{
		metaContent("property", "og:image"),
		metaContent("property", "og:image:secure_url"),
		metaContent("name", "og:image"),
	}
	candidates = append(candidates, jsonLDImages(doc)...)
	candidates = append(candidates,
		metaContent("name", "twitter:image"),
		metaContent("name", "twitter:image:src"),
		metaContent("property", "twitter:image"),
	)

	for _, c := range candidates {
		if normalized := normalizeImage(c, pageURL); normalized != "" {
			return normalized
		}
	}

	return contentImage(doc, pageURL)
}

// jsonLDImages pulls image and thumbnailUrl values out of every JSON-LD
// block on the page. Structured data is wildly inconsistent: image may be a
// string, a list, or an ImageObject, and blocks may be arrays of entities.
func jsonLDImages(doc *goquery.Document) []string {
	var found []string
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var data interface{}
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return
		}
		found = append(found, imagesFromLD(data)...)
	})
	return found
}

func imagesFromLD(data interface{}) []string {
	var out []string
	switch v := data.(type) {
	case map[string]interface{}:
		for _, key := range []string{"image", "thumbnailUrl"} {
			if raw, ok := v[key]; ok {
				out = append(out, imageValue(raw)...)
			}
		}
	case []interface{}:
		for _, entry := range v {
			out = append(out, imagesFromLD(entry)...)
		}
	}
	return out
}

// imageValue flattens one JSON-LD image field into URL strings.
func imageValue(raw interface{}) []string {
	switch v := raw.(type) {
	case string:
		return []string{v}
	case map[string]interface{}:
		if u, ok := v["url"].(string); ok {
			return []string{u}
		}
	case []interface{}:
		var out []string
		for _, entry := range v {
			out = append(out, imageValue(entry)...)
		}
		return out
	}
	return nil
}

// contentImage is the last resort: the first acceptable <img> inside an
// article-like container.
func contentImage(doc *goquery.Document, pageURL *url.URL) string {
	for _, selector := range articleContainers {
		container := doc.Find(selector)
		if container.Length() == 0 {
			continue
		}
		var result string
		container.First().Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
			src, ok := img.Attr("src")
			if !ok || src == "" {
				if src, ok = img.Attr("data-src"); !ok {
					return true
				}
			}
			if smallTokenRe.MatchString(strings.ToLower(src)) {
				return true
			}
			if normalized := normalizeImage(src, pageURL); normalized != "" {
				result = normalized
				return false
			}
			return true
		})
		if result != "" {
			return result
		}
	}
	return ""
}

// normalizeImage resolves a candidate to an absolute https URL and rejects
// junk-looking matches. Returns "" when the candidate is unusable.
func normalizeImage(candidate string, pageURL *url.URL) string {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" || strings.HasPrefix(candidate, "data:") {
		return ""
	}
	if junkImageRe.MatchString(candidate) {
		return ""
	}

	ref, err := url.Parse(candidate)
	if err != nil {
		return ""
	}
	abs := pageURL.ResolveReference(ref)
	if abs.Host == "" {
		return ""
	}
	abs.Scheme = "https"
	return abs.String()
}
