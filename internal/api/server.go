// Package api exposes the forge core as a JSON HTTP service.
package api

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	maxBodyBytes    = 64 << 10
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

type Options struct {
	Logger         *slog.Logger
	BatchWorkers   int
	RequestTimeout time.Duration
}

type Server struct {
	logger         *slog.Logger
	batchWorkers   int
	requestTimeout time.Duration
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Code    string `json:"code,omitempty"`
}

func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	workers := opts.BatchWorkers
	if workers < 1 {
		workers = 1
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Server{
		logger:         logger,
		batchWorkers:   workers,
		requestTimeout: timeout,
	}
}

func (s *Server) Handler() http.Handler {
	router := gin.New()
	router.Use(requestID(), withLogging(s.logger), s.recovery(), limitBody(maxBodyBytes))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.POST("/generate", s.handleGenerate)
		api.POST("/batch", s.handleBatch)
		api.POST("/mutate", s.handleMutate)
		api.POST("/vision", s.handleVision)
		api.POST("/lyrics", s.handleLyrics)
		api.GET("/genres", s.handleGenres)
		api.GET("/genres/:name", s.handleGenre)
		api.GET("/packs", s.handlePacks)
		api.GET("/packs/random", s.handleRandomPack)
		api.GET("/packs/:id", s.handlePack)
		api.POST("/packs/:id/generate", s.handlePackGenerate)
		api.GET("/mutations", s.handleMutations)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorResponse{Error: "Not found"})
	})
	return router
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func withLogging(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"dur_ms", time.Since(start).Milliseconds(),
			"request_id", c.GetString(requestIDKey),
		)
	}
}

func (s *Server) recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		s.logger.Error("panic in handler", "err", recovered, "request_id", c.GetString(requestIDKey))
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
	})
}

func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}
