// Package images selects a representative image for a feed item out of the
// noisy candidates its markup offers: extraction, denylist/allowlist
// validation, per-feed frequency suppression and heuristic scoring.
package images

// Rules holds the heuristic tables the validator and scorer run against.
// A Rules value is immutable after construction; tests inject synthetic
// tables and deployments may override the defaults through config.
type Rules struct {
	// DenyPatterns are substrings that disqualify a candidate URL outright:
	// tracking pixels, ad servers, share buttons, avatars, CMS icon paths,
	// stock photo hosts and generic stock-photography keywords.
	DenyPatterns []string

	// TrustedDomains is the closed-world allowlist of hosts a candidate may
	// come from when it does not share a domain with the article itself:
	// first-party CMS media buckets, CDN providers and video-thumbnail
	// hosts. Sacrifices recall for precision.
	TrustedDomains []string

	// GoodDomains earn a scoring bonus: publishing domains and CMS upload
	// paths whose images are almost always article-specific.
	GoodDomains []string

	// ContentTokens are generic "this is a content asset" path tokens that
	// earn a small scoring bonus each.
	ContentTokens []string
}

// DefaultRules returns the curated production tables.
func DefaultRules() *Rules {
	return &Rules{
		DenyPatterns: []string{
			"feeds.feedburner.com", "~r/",
			"doubleclick.net", "gravatar.com", "emoji", "facebook.com/tr",
			"pixel", "blank.gif", "spacer.gif", "1x1",
			"share-icon", "button", "avatar", "logo", "icon", "author",
			"googleusercontent", "feed-icon", "icon-",
			// Stock photo hosts, usually generic or unrelated
			"shutterstock", "istockphoto", "gettyimages", "depositphotos",
			"stock-photo", "stock_photo", "stockphoto",
			"unsplash.com", "pexels.com", "pixabay.com", "freepik.com",
			// Ad networks and trackers
			"ad.", "ads.", "adserver", "advertising", "banner",
			// Social share endpoints
			"twitter.com/intent", "facebook.com/sharer", "pinterest.com/pin",
			// Placeholder conventions
			"placeholder", "default-image", "no-image", "noimage",
			// Generic stock photography keywords
			"flower", "flowers", "nature", "landscape", "sunset", "sunrise",
			"abstract-background", "business-people", "happy-people", "smiling",
			"handshake", "teamwork", "office-worker",
		},
		TrustedDomains: []string{
			// WordPress / common CMS CDNs
			"wp.com", "wordpress.com", "i0.wp.com", "i1.wp.com", "i2.wp.com", "i3.wp.com",
			// Music publishing domains
			"synthanatomy.com", "gearnews.com", "musicradar.com", "attackmagazine.com",
			"cdm.link", "kvraudio.com", "soundonsound.com", "bedroomproducersblog.com",
			"pluginboutique.com", "xlr8r.com", "mixmag.net", "ra.co", "residentadvisor.net",
			"guettapen.com", "tsugi.fr", "electro-news.eu", "traxmag.com", "bandcamp.com",
			"audiofanzine.com", "gearspace.com", "musictech.com", "synthtopia.com",
			// Tech news domains
			"tomsguide.com", "theverge.com", "petapixel.com", "engadget.com",
			"9to5google.com", "frandroid.com", "korben.info", "clubic.com",
			"lesnumeriques.com", "jeuxvideo.com", "iphon.fr",
			// Video thumbnails
			"i.ytimg.com", "img.youtube.com", "ytimg.com",
			// Generic CDNs
			"cloudinary.com", "imgix.net", "fastly.net", "akamaized.net",
			"cloudfront.net", "amazonaws.com", "s3.amazonaws.com",
		},
		GoodDomains: []string{
			"synthanatomy", "gearnews", "musicradar", "attackmagazine",
			"cdm.link", "kvraudio", "soundonsound", "bedroomproducers",
			"pluginboutique", "wordpress", "wp-content",
		},
		ContentTokens: []string{
			"product", "feature", "upload", "content", "article",
			"post", "news", "review", "synth", "plugin", "vst",
		},
	}
}
