// Package api exposes the HTTP control plane: status queries, webhook
// registration, and Prometheus metrics.
package api

import (
	"log"
	"net/http"
	"strings"

	"CrossWatch/internal/detector"
	"CrossWatch/internal/metrics"
	"CrossWatch/internal/model"
	"CrossWatch/internal/registry"
	"CrossWatch/internal/store"

	"github.com/gin-gonic/gin"
)

// Server wires the HTTP endpoints around the store and detector.
type Server struct {
	Router   *gin.Engine
	Store    *store.Store
	Detector *detector.Detector
	Registry *registry.Registry
	Metrics  *metrics.Metrics
	Tickers  []string // configured tickers, fallback when the store is empty
}

// NewServer builds the gin engine and registers all routes.
func NewServer(st *store.Store, det *detector.Detector, reg *registry.Registry, m *metrics.Metrics, tickers []string) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	s := &Server{
		Router:   r,
		Store:    st,
		Detector: det,
		Registry: reg,
		Metrics:  m,
		Tickers:  tickers,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.Router.GET("/health", s.health)
	s.Router.GET("/status", s.status)
	s.Router.GET("/tickers", s.tickers)
	s.Router.GET("/webhooks", s.listWebhooks)
	s.Router.POST("/webhooks", s.registerWebhook)
	s.Router.DELETE("/webhooks", s.unregisterWebhook)
	s.Router.GET("/metrics", gin.WrapH(s.Metrics.Handler()))
}

// Run serves HTTP until the listener fails.
func (s *Server) Run(addr string) error {
	log.Printf("[INFO] API server listening on %s", addr)
	return s.Router.Run(addr)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// status returns the current snapshot for one ticker (?ticker=X) or all
// tracked tickers. Snapshots are recomputed from stored closes on every
// request.
func (s *Server) status(c *gin.Context) {
	if ticker := c.Query("ticker"); ticker != "" {
		snap, err := s.snapshot(strings.ToUpper(ticker))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, snap)
		return
	}

	tracked, err := s.Store.Tickers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(tracked) == 0 {
		tracked = s.Tickers
	}

	statuses := make(map[string]model.StatusSnapshot, len(tracked))
	for _, t := range tracked {
		snap, err := s.snapshot(t)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		statuses[t] = snap
	}
	c.JSON(http.StatusOK, gin.H{"tickers": statuses})
}

func (s *Server) snapshot(ticker string) (model.StatusSnapshot, error) {
	closes, err := s.Store.LoadCloses(ticker)
	if err != nil {
		return model.StatusSnapshot{}, err
	}
	return s.Detector.Status(ticker, closes), nil
}

func (s *Server) tickers(c *gin.Context) {
	tracked, err := s.Store.Tickers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"configured_tickers": s.Tickers,
		"tracked_tickers":    tracked,
	})
}

func (s *Server) listWebhooks(c *gin.Context) {
	hooks := s.Registry.List()
	if hooks == nil {
		hooks = []registry.Webhook{}
	}
	c.JSON(http.StatusOK, gin.H{"webhooks": hooks})
}

type webhookRequest struct {
	URL     string   `json:"url"`
	Name    string   `json:"name"`
	Type    string   `json:"type"`
	Tickers []string `json:"tickers"`
}

func (s *Server) registerWebhook(c *gin.Context) {
	var req webhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}
	if req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing 'url' in request body"})
		return
	}
	if !strings.HasPrefix(req.URL, "https://") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "URL must use HTTPS"})
		return
	}
	if req.Type == "" {
		req.Type = "generic"
	}

	hook, err := s.Registry.Register(req.URL, req.Name, req.Type, req.Tickers)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Webhook registered", "webhook": hook})
}

func (s *Server) unregisterWebhook(c *gin.Context) {
	var req webhookRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing 'url' in request body"})
		return
	}

	removed, err := s.Registry.Unregister(req.URL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "webhook not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Webhook removed"})
}
