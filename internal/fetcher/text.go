package fetcher

import (
	"html"
	"regexp"
	"strings"

	nethtml "golang.org/x/net/html"
)

var (
	tagRe   = regexp.MustCompile(`<[^>]*>`)
	spaceRe = regexp.MustCompile(`\s+`)
)

// stripHTML converts an HTML fragment to plain text. The fragment is parsed
// rather than regex-stripped so entities and nesting survive; block elements
// become word boundaries. Falls back to tag stripping when parsing fails.
func stripHTML(fragment string) string {
	if fragment == "" {
		return ""
	}

	doc, err := nethtml.Parse(strings.NewReader(fragment))
	if err != nil {
		text := tagRe.ReplaceAllString(fragment, " ")
		return strings.TrimSpace(spaceRe.ReplaceAllString(html.UnescapeString(text), " "))
	}

	var sb strings.Builder
	var walk func(*nethtml.Node)
	walk = func(n *nethtml.Node) {
		if n.Type == nethtml.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == nethtml.ElementNode {
			switch n.Data {
			case "br", "p", "div", "li", "tr", "h1", "h2", "h3", "h4", "h5", "h6":
				sb.WriteString(" ")
			}
		}
	}
	walk(doc)

	return strings.TrimSpace(spaceRe.ReplaceAllString(sb.String(), " "))
}

// decodeTitle unescapes HTML entities twice: conversion endpoints routinely
// deliver titles that were already entity-encoded in the feed XML.
func decodeTitle(title string) string {
	return html.UnescapeString(html.UnescapeString(title))
}

// truncateSnippet cuts text to maxLen runes and appends an ellipsis marker
// when something was cut.
func truncateSnippet(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen]) + "..."
}

// ensureHTTPS rewrites an http scheme to https so thumbnails render without
// mixed-content blocking.
func ensureHTTPS(url string) string {
	if strings.HasPrefix(url, "http:") {
		return "https:" + strings.TrimPrefix(url, "http:")
	}
	return url
}

// upgradeVideoThumb replaces the medium-quality YouTube thumbnail naming
// convention with its high-quality equivalent when recognized.
func upgradeVideoThumb(url string) string {
	if strings.Contains(url, "default.jpg") && strings.Contains(url, "mqdefault") {
		return strings.Replace(url, "mqdefault", "hqdefault", 1)
	}
	return url
}
