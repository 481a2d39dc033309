package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"sonagg/internal/models"
)

// SecurityConfig represents API security configuration
type SecurityConfig struct {
	EnableRateLimit       bool
	RateLimitPerSecond    float64
	RateLimitBurst        int
	EnableCORS            bool
	AllowedOrigins        []string
	EnableSecurityHeaders bool
	MaxRequestSize        int64
	EnableRequestID       bool
}

// PipelineConfig holds the aggregation pipeline tunables.
type PipelineConfig struct {
	// ConversionEndpoint is the feed-to-JSON service prefix the feed URL is
	// appended to. Empty means feeds are parsed locally instead.
	ConversionEndpoint string
	FetchTimeout       time.Duration
	BatchSize          int
	BatchPause         time.Duration
	MaxPerSource       int
	MaxPerVideoSource  int
	DetectLanguage     bool
}

// BackfillConfig holds the image backfill tunables.
type BackfillConfig struct {
	// PageEndpoints are the page retrieval endpoints tried in order; an
	// empty entry fetches the article URL directly, others are mirror
	// prefixes the url-encoded target is appended to.
	PageEndpoints  []string
	MaxArticles    int
	BatchSize      int
	BatchPause     time.Duration
	MinContentLen  int
	AttemptTimeout time.Duration
	// OgCacheTTL bounds the og:image cache; zero disables expiry, which is
	// fine for session-scale use.
	OgCacheTTL time.Duration
}

type Config struct {
	Port          int
	DataDir       string
	CacheTTL      time.Duration
	PollInterval  time.Duration
	LogLevel      string
	EnableSwagger bool
	Pipeline      PipelineConfig
	Backfill      BackfillConfig
	Security      SecurityConfig

	// ExcludedKeywords drop any article containing one of them; keyed
	// inclusion lists restrict curated sources to their topic.
	ExcludedKeywords []string
	IncludedKeywords map[string][]string

	// DefaultSources seed the source registry on first start.
	DefaultSources []models.FeedSource
}

func Load() *Config {
	return &Config{
		Port:          getEnvAsInt("PORT", 8080),
		DataDir:       getEnv("DATA_DIR", "./data"),
		CacheTTL:      getEnvAsDuration("CACHE_TTL", 15*time.Minute),
		PollInterval:  getEnvAsDuration("POLL_INTERVAL", 15*time.Minute),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnableSwagger: getEnvAsBool("ENABLE_SWAGGER", true),
		Pipeline: PipelineConfig{
			ConversionEndpoint: getEnv("CONVERSION_ENDPOINT", "https://api.rss2json.com/v1/api.json?rss_url="),
			FetchTimeout:       getEnvAsDuration("FETCH_TIMEOUT", 20*time.Second),
			BatchSize:          getEnvAsInt("FETCH_BATCH_SIZE", 4),
			BatchPause:         getEnvAsDuration("FETCH_BATCH_PAUSE", 250*time.Millisecond),
			MaxPerSource:       getEnvAsInt("MAX_PER_SOURCE", 5),
			MaxPerVideoSource:  getEnvAsInt("MAX_PER_VIDEO_SOURCE", 2),
			DetectLanguage:     getEnvAsBool("DETECT_LANGUAGE", true),
		},
		Backfill: BackfillConfig{
			PageEndpoints: getEnvAsStringSlice("PAGE_ENDPOINTS", []string{
				"", // direct fetch first
				"https://api.allorigins.win/raw?url=",
				"https://corsproxy.io/?",
			}),
			MaxArticles:    getEnvAsInt("BACKFILL_MAX_ARTICLES", 12),
			BatchSize:      getEnvAsInt("BACKFILL_BATCH_SIZE", 3),
			BatchPause:     getEnvAsDuration("BACKFILL_BATCH_PAUSE", 300*time.Millisecond),
			MinContentLen:  getEnvAsInt("BACKFILL_MIN_CONTENT_LEN", 500),
			AttemptTimeout: getEnvAsDuration("BACKFILL_ATTEMPT_TIMEOUT", 6*time.Second),
			OgCacheTTL:     getEnvAsDuration("OG_CACHE_TTL", 0),
		},
		Security:         loadSecurityConfig(),
		ExcludedKeywords: getEnvAsStringSlice("EXCLUDED_KEYWORDS", defaultExcludedKeywords()),
		IncludedKeywords: defaultIncludedKeywords(),
		DefaultSources:   defaultSources(),
	}
}

func loadSecurityConfig() SecurityConfig {
	return SecurityConfig{
		EnableRateLimit:       getEnvAsBool("ENABLE_RATE_LIMIT", true),
		RateLimitPerSecond:    getEnvAsFloat("RATE_LIMIT_PER_SECOND", 10.0),
		RateLimitBurst:        getEnvAsInt("RATE_LIMIT_BURST", 20),
		EnableCORS:            getEnvAsBool("ENABLE_CORS", true),
		AllowedOrigins:        getEnvAsStringSlice("ALLOWED_ORIGINS", []string{"*"}),
		EnableSecurityHeaders: getEnvAsBool("ENABLE_SECURITY_HEADERS", true),
		MaxRequestSize:        getEnvAsInt64("MAX_REQUEST_SIZE", 10<<20), // 10MB
		EnableRequestID:       getEnvAsBool("ENABLE_REQUEST_ID", true),
	}
}

// defaultExcludedKeywords is the global topical ban list: anything matching
// is dropped from every source. The deployment this service grew out of
// aggregates electronic-music and tech news, so acoustic-instrument and
// stage-rigging coverage is cut.
func defaultExcludedKeywords() []string {
	return []string{
		// Guitars: brands and models
		"guitar", "guitare", "fender", "gibson", "stratocaster", "telecaster",
		"les paul", "epiphone", "squier", "ibanez", "gretsch", "rickenbacker",
		"jazzmaster", "charvel", "danelectro",
		// Body types and luthier terms
		"solid body", "hollow body", "semi-hollow", "archtop", "dreadnought",
		"fretboard", "fret", "humbucker", "single coil", "pickguard",
		"truss rod", "headstock", "tuning pegs",
		// Pedals, amps, accessories
		"pedalboard", "stompbox", "guitar pedal", "overdrive", "distortion",
		"fuzz", "wah wah", "capo", "plectrum", "guitar strap", "guitar amp",
		"combo amp", "whammy bar", "floyd rose",
		// Bass and drums
		"electric bass", "jazz bass", "precision bass", "bass amp",
		"drum kit", "cymbals", "snare drum", "hi-hat", "zildjian",
		"drumsticks", "acoustic drum",
		// Stage lighting and rigging
		"lighting", "éclairage", "projecteur", "fresnel", "moving head",
		"dmx", "stroboscope", "strobe", "fog machine", "hazer",
		"par can", "par led", "blinder", "dimmer", "rigging",
		// Orchestral and wind
		"saxophone", "trumpet", "trompette", "clarinet", "violin", "violon",
		"cello", "orchestra", "trombone", "tuba", "ukulele", "banjo",
		"mandolin", "harmonica", "accordion", "grand piano",
	}
}

// defaultIncludedKeywords restricts broad "all genres" feeds to the topics
// this aggregation is about. Keyed by source ID.
func defaultIncludedKeywords() map[string][]string {
	return map[string][]string{
		"bandcamp-daily": {
			"electronic", "synth", "techno", "house", "ambient", "drone",
			"experimental", "club", "dance", "beat", "modular", "eurorack",
			"idm", "jungle", "drum and bass", "dubstep", "garage", "electro",
			"lo-fi", "vaporwave", "trance", "breakbeat",
		},
	}
}

func defaultSources() []models.FeedSource {
	return []models.FeedSource{
		{ID: "resident-advisor", Name: "Resident Advisor", DisplayURL: "https://ra.co/", FeedEndpoint: "https://ra.co/xml/news.xml", IsActive: true},
		{ID: "mixmag", Name: "Mixmag", DisplayURL: "https://mixmag.net/", FeedEndpoint: "https://mixmag.net/rss", IsActive: true},
		{ID: "xlr8r", Name: "XLR8R", DisplayURL: "https://xlr8r.com/", FeedEndpoint: "https://xlr8r.com/feed/", IsActive: true},
		{ID: "bandcamp-daily", Name: "Bandcamp Daily", DisplayURL: "https://daily.bandcamp.com/", FeedEndpoint: "https://daily.bandcamp.com/feed", IsActive: true},
		{ID: "attack-mag", Name: "Attack Magazine", DisplayURL: "https://www.attackmagazine.com/", FeedEndpoint: "https://www.attackmagazine.com/feed/", IsActive: true},
		{ID: "kvraudio", Name: "KVR Audio", DisplayURL: "https://www.kvraudio.com/", FeedEndpoint: "https://www.kvraudio.com/news/rss", IsActive: true},
		{ID: "soundonsound", Name: "Sound On Sound", DisplayURL: "https://www.soundonsound.com/", FeedEndpoint: "https://www.soundonsound.com/news/rss", IsActive: true},
		{ID: "musicradar", Name: "MusicRadar", DisplayURL: "https://www.musicradar.com/", FeedEndpoint: "https://www.musicradar.com/feeds/all", IsActive: true},
		{ID: "bedroom-producers-blog", Name: "Bedroom Producers Blog", DisplayURL: "https://bedroomproducersblog.com/", FeedEndpoint: "https://bedroomproducersblog.com/feed/", IsActive: true},
		{ID: "synth-anatomy", Name: "Synth Anatomy", DisplayURL: "https://synthanatomy.com/", FeedEndpoint: "https://synthanatomy.com/feed/", IsActive: true},
		{ID: "theverge", Name: "The Verge", DisplayURL: "https://www.theverge.com/", FeedEndpoint: "https://www.theverge.com/rss/index.xml", IsActive: true},
		{ID: "engadget", Name: "Engadget", DisplayURL: "https://www.engadget.com/", FeedEndpoint: "https://www.engadget.com/rss.xml", IsActive: true},
		{ID: "musictech", Name: "MusicTech", DisplayURL: "https://musictech.com/", FeedEndpoint: "https://musictech.com/feed/", IsActive: true},
		{ID: "andrew-huang", Name: "Andrew Huang", DisplayURL: "https://www.youtube.com/user/songstowearpantsto", FeedEndpoint: "https://www.youtube.com/feeds/videos.xml?channel_id=UCWD5sObqPThm2hU6iF27E9Q", IsActive: true, IsVideoSource: true},
		{ID: "loopop", Name: "Loopop", DisplayURL: "https://www.youtube.com/channel/UC4K6tc2C0hauYw5SoXNtkbA", FeedEndpoint: "https://www.youtube.com/feeds/videos.xml?channel_id=UC4K6tc2C0hauYw5SoXNtkbA", IsActive: true, IsVideoSource: true},
		{ID: "benn-jordan", Name: "Benn Jordan", DisplayURL: "https://www.youtube.com/@BennJordan", FeedEndpoint: "https://www.youtube.com/feeds/videos.xml?channel_id=UCshObcm-nLhbu8fv58OGB4g", IsActive: true, IsVideoSource: true},
	}
}

func getEnv(key string, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsInt64(key string, defaultVal int64) int64 {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.ParseInt(val, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if floatVal, err := strconv.ParseFloat(val, 64); err == nil {
			return floatVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			return duration
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if boolVal, err := strconv.ParseBool(val); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsStringSlice(key string, defaultVal []string) []string {
	if val := os.Getenv(key); val != "" {
		parts := strings.Split(val, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultVal
}
