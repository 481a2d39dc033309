package images

import (
	"net/url"
	"strings"
)

// extractDomain returns the lower-cased hostname of rawURL without a
// leading "www.", or "" when the URL does not parse.
func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// IsValidImageURL decides whether a candidate survives the denylist, the
// feed-logo exclusion and the domain trust check. feedImage is the feed's
// declared logo (may be empty); articleURL is the item's canonical link.
//
// A candidate is accepted only when its host shares the article link's root
// domain token or sits on the trusted-domain allowlist. Everything else is
// rejected, trading recall for near-zero unrelated images.
func (r *Rules) IsValidImageURL(candidate, feedImage, articleURL string) bool {
	if len(candidate) < 20 {
		return false
	}
	lower := strings.ToLower(candidate)

	for _, pattern := range r.DenyPatterns {
		if strings.Contains(lower, pattern) {
			return false
		}
	}

	// Feed logos recur as the first <img> of every article's markup. Match
	// both exactly and by query-stripped containment.
	if feedImage != "" {
		if candidate == feedImage {
			return false
		}
		cleanLogo := strings.ToLower(strings.SplitN(feedImage, "?", 2)[0])
		if cleanLogo != "" && strings.Contains(lower, cleanLogo) {
			return false
		}
	}

	imageDomain := extractDomain(candidate)
	articleDomain := extractDomain(articleURL)

	if imageDomain != "" && articleDomain != "" {
		rootToken := strings.SplitN(articleDomain, ".", 2)[0]
		if rootToken != "" && strings.Contains(imageDomain, rootToken) {
			return true
		}
	}

	for _, trusted := range r.TrustedDomains {
		if strings.Contains(imageDomain, trusted) || strings.Contains(lower, trusted) {
			return true
		}
	}

	return false
}
