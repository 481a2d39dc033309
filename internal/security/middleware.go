package security

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"sonagg/internal/config"
)

// RateLimiter stores rate limit information per IP
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	r        rate.Limit
	b        int
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(r rate.Limit, b int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		r:        r,
		b:        b,
	}
}

// GetLimiter returns the rate limiter for the given key (IP address)
func (rl *RateLimiter) GetLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(rl.r, rl.b)
		rl.limiters[key] = limiter
	}

	return limiter
}

// Setup configures all security middleware on the router.
func Setup(router *gin.Engine, cfg *config.SecurityConfig) {
	if cfg == nil {
		defaults := config.Load().Security
		cfg = &defaults
	}

	if cfg.EnableRequestID {
		router.Use(requestid.New())
	}

	if cfg.EnableSecurityHeaders {
		router.Use(secure.New(secure.Config{
			SSLRedirect:           false,
			STSSeconds:            31536000,
			STSIncludeSubdomains:  true,
			FrameDeny:             true,
			ContentTypeNosniff:    true,
			BrowserXssFilter:      true,
			ContentSecurityPolicy: "default-src 'self'",
			ReferrerPolicy:        "strict-origin-when-cross-origin",
		}))
	}

	if cfg.EnableCORS {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"}
		corsConfig.ExposeHeaders = []string{"X-Request-ID"}
		router.Use(cors.New(corsConfig))
	}

	if cfg.EnableRateLimit {
		limiter := NewRateLimiter(rate.Limit(cfg.RateLimitPerSecond), cfg.RateLimitBurst)
		router.Use(RateLimitMiddleware(limiter))
	}

	router.Use(RequestSizeMiddleware(cfg.MaxRequestSize))
	router.Use(InputValidationMiddleware())
	router.Use(RequestLoggingMiddleware())
}

// RateLimitMiddleware implements rate limiting per IP
func RateLimitMiddleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := getClientIP(c)
		if !limiter.GetLimiter(ip).Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "Rate limit exceeded",
				"message": "Too many requests, please try again later",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequestSizeMiddleware limits request body size
func RequestSizeMiddleware(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error":   "Request too large",
				"message": "Request body exceeds maximum allowed size",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// InputValidationMiddleware validates query and path parameters before
// handlers see them.
func InputValidationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := validateQueryParams(c); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid query parameters",
				"message": err.Error(),
			})
			c.Abort()
			return
		}

		if err := validatePathParams(c); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid path parameters",
				"message": err.Error(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequestLoggingMiddleware logs security-relevant request information
func RequestLoggingMiddleware() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		info := []string{
			"ip=" + param.ClientIP,
			"method=" + param.Method,
			"path=" + param.Path,
			"status=" + fmt.Sprintf("%d", param.StatusCode),
			"latency=" + param.Latency.String(),
			"user_agent=" + param.Request.UserAgent(),
		}

		if param.StatusCode >= 400 {
			info = append(info, "error=true")
		}

		return strings.Join(info, " ") + "\n"
	})
}

func validateQueryParams(c *gin.Context) error {
	if limit := c.Query("limit"); limit != "" {
		if !isValidNumber(limit) {
			return fmt.Errorf("invalid limit parameter: must be a non-negative integer")
		}
	}

	if offset := c.Query("offset"); offset != "" {
		if !isValidNumber(offset) {
			return fmt.Errorf("invalid offset parameter: must be a non-negative integer")
		}
	}

	if search := c.Query("search"); search != "" {
		if len(search) > 500 {
			return fmt.Errorf("search parameter too long: maximum 500 characters")
		}
	}

	if source := c.Query("source"); source != "" {
		if !isValidSourceID(source) {
			return fmt.Errorf("invalid source parameter: must contain only alphanumeric characters and hyphens")
		}
	}

	return nil
}

func validatePathParams(c *gin.Context) error {
	if id := c.Param("id"); id != "" {
		if !isValidSourceID(id) {
			return fmt.Errorf("invalid source id: must contain only alphanumeric characters and hyphens")
		}
	}

	return nil
}

// getClientIP extracts the real client IP address
func getClientIP(c *gin.Context) string {
	// X-Forwarded-For can contain multiple IPs, take the first one
	if ip := c.GetHeader("X-Forwarded-For"); ip != "" {
		if commaIndex := strings.Index(ip, ","); commaIndex != -1 {
			return strings.TrimSpace(ip[:commaIndex])
		}
		return strings.TrimSpace(ip)
	}

	if ip := c.GetHeader("X-Real-IP"); ip != "" {
		return strings.TrimSpace(ip)
	}

	return c.ClientIP()
}

func isValidNumber(s string) bool {
	if s == "" {
		return false
	}
	for _, char := range s {
		if char < '0' || char > '9' {
			return false
		}
	}
	return true
}

func isValidSourceID(s string) bool {
	if s == "" || len(s) > 64 {
		return false
	}
	for _, char := range s {
		if !((char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') ||
			char == '-') {
			return false
		}
	}
	return true
}
