package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"sonagg/internal/config"
	"sonagg/internal/events"
	"sonagg/internal/models"
	"sonagg/internal/poller"
	"sonagg/internal/query"
	"sonagg/internal/security"
	"sonagg/internal/storage"
	"sonagg/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const heartbeatInterval = 25 * time.Second

type Server struct {
	router        *gin.Engine
	poller        *poller.Poller
	storage       storage.Storage
	hub           *events.Hub
	port          int
	swaggerServer *web.SwaggerServer
}

func NewServer(p *poller.Poller, store storage.Storage, hub *events.Hub, cfg *config.Config) *Server {
	router := gin.New()
	router.Use(gin.Recovery())

	security.Setup(router, &cfg.Security)

	server := &Server{
		router:        router,
		poller:        p,
		storage:       store,
		hub:           hub,
		port:          cfg.Port,
		swaggerServer: web.NewSwaggerServer(cfg.EnableSwagger),
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)

	api := s.router.Group("/api/v1")
	{
		api.GET("/sources", s.listSources)
		api.GET("/sources/:id", s.getSource)
		api.POST("/sources", s.createSource)
		api.PUT("/sources/:id", s.updateSource)
		api.DELETE("/sources/:id", s.deleteSource)

		api.GET("/stories", s.getStories)
		api.GET("/stories/info", s.getPoolInfo)
		api.POST("/stories/refresh", s.refreshStories)
		api.GET("/stories/updates", s.streamUpdates)

		api.GET("/poller/status", s.getPollerStatus)
	}

	s.swaggerServer.RegisterRoutes(s.router)
}

func (s *Server) Start() error {
	return s.router.Run(":" + strconv.Itoa(s.port))
}

// StartWithContext serves until the context is cancelled, then shuts down
// gracefully.
func (s *Server) StartWithContext(ctx context.Context) error {
	srv := &http.Server{
		Addr:    ":" + strconv.Itoa(s.port),
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// healthCheck godoc
// @Summary Health check
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "healthy",
		"service":       "sonagg",
		"poller_active": s.poller.IsPolling(),
	})
}

// listSources godoc
// @Summary List feed sources
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /sources [get]
func (s *Server) listSources(c *gin.Context) {
	sources, err := s.storage.ListSources()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if sources == nil {
		sources = []models.FeedSource{}
	}
	c.JSON(http.StatusOK, gin.H{
		"sources": sources,
		"count":   len(sources),
	})
}

func (s *Server) getSource(c *gin.Context) {
	source, err := s.storage.GetSource(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if source == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "source not found"})
		return
	}
	c.JSON(http.StatusOK, source)
}

// createSource godoc
// @Summary Register a feed source
// @Accept json
// @Produce json
// @Success 201 {object} models.FeedSource
// @Router /sources [post]
func (s *Server) createSource(c *gin.Context) {
	var source models.FeedSource
	if err := c.ShouldBindJSON(&source); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if source.Name == "" || source.FeedEndpoint == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and feed_endpoint are required"})
		return
	}
	if source.ID == "" {
		source.ID = uuid.NewString()
	}

	existing, err := s.storage.GetSource(source.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "source already exists"})
		return
	}

	if err := s.storage.SaveSource(&source); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, source)
}

func (s *Server) updateSource(c *gin.Context) {
	id := c.Param("id")
	existing, err := s.storage.GetSource(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if existing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "source not found"})
		return
	}

	var source models.FeedSource
	if err := c.ShouldBindJSON(&source); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	source.ID = id
	if source.Name == "" || source.FeedEndpoint == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and feed_endpoint are required"})
		return
	}

	if err := s.storage.SaveSource(&source); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, source)
}

func (s *Server) deleteSource(c *gin.Context) {
	if err := s.storage.DeleteSource(c.Param("id")); err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "source deleted"})
}

// getStories godoc
// @Summary Get the aggregated story pool
// @Produce json
// @Param limit query int false "Maximum articles to return"
// @Param offset query int false "Articles to skip"
// @Param search query string false "Text search over title, snippet and categories"
// @Param source query string false "Restrict to one source"
// @Param video query bool false "Only videos (true) or only articles (false)"
// @Success 200 {object} map[string]interface{}
// @Router /stories [get]
func (s *Server) getStories(c *gin.Context) {
	opts, err := query.Parse(c.Request.URL.Query())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pool := s.poller.CurrentPool()
	if pool == nil {
		c.JSON(http.StatusOK, gin.H{
			"articles": []models.Article{},
			"count":    0,
			"total":    0,
		})
		return
	}

	articles := opts.Apply(pool.Articles)
	c.JSON(http.StatusOK, gin.H{
		"articles": articles,
		"count":    len(articles),
		"total":    pool.Count,
		"updated":  pool.Updated,
	})
}

func (s *Server) getPoolInfo(c *gin.Context) {
	info, err := s.storage.GetPoolInfo()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if info == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no pool has been aggregated yet"})
		return
	}
	c.JSON(http.StatusOK, info)
}

// refreshStories godoc
// @Summary Rebuild the story pool now
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /stories/refresh [post]
func (s *Server) refreshStories(c *gin.Context) {
	pool := s.poller.Refresh(c.Request.Context())
	count := 0
	if pool != nil {
		count = pool.Count
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "story pool refreshed",
		"count":   count,
	})
}

// streamUpdates pushes image backfill results to the client as
// server-sent events until the client disconnects.
func (s *Server) streamUpdates(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	sub := s.hub.Subscribe()
	defer s.hub.Unsubscribe(sub)

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	c.Writer.Flush()
	for {
		select {
		case update, ok := <-sub:
			if !ok {
				return
			}
			c.SSEvent("image", update)
			c.Writer.Flush()
		case <-heartbeat.C:
			c.SSEvent("heartbeat", time.Now().Unix())
			c.Writer.Flush()
		case <-c.Request.Context().Done():
			return
		}
	}
}

func (s *Server) getPollerStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"is_polling": s.poller.IsPolling(),
		"last_run":   s.poller.LastRun(),
	})
}
