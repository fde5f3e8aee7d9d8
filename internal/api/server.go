// Package api exposes the scan pipeline over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Veraticus/qrpay/internal/orchestrator"
	"github.com/Veraticus/qrpay/internal/service"
)

// DefaultUserID is used when a request does not name a user.
const DefaultUserID = "api-user"

const (
	maxUploadSize   = 10 << 20 // 10MB
	maxPayloadSize  = 4 << 10  // 4KB
	shutdownTimeout = 10 * time.Second
)

// Scanner runs scans. *orchestrator.Orchestrator implements it.
type Scanner interface {
	HandleTextScan(ctx context.Context, req orchestrator.ScanRequest) (*orchestrator.Result, error)
	HandleImageScan(ctx context.Context, req orchestrator.ImageScanRequest) (*orchestrator.Result, error)
	CompletionState() orchestrator.CompletionState
}

// Deps are the services the API serves. History may be nil.
type Deps struct {
	Scanner  Scanner
	Profiles service.ProfileStore
	Sessions service.SessionStore
	History  service.HistoryStore
	Logger   *slog.Logger
	// UploadDir holds uploaded images while they are scanned; empty uses the OS temp dir.
	UploadDir string
}

// Server is the HTTP API server.
type Server struct {
	scanner   Scanner
	profiles  service.ProfileStore
	sessions  service.SessionStore
	history   service.HistoryStore
	logger    *slog.Logger
	router    *gin.Engine
	uploadDir string
}

// NewServer creates the server and registers its routes.
func NewServer(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger), allowCORS())
	router.MaxMultipartMemory = maxUploadSize

	s := &Server{
		scanner:   deps.Scanner,
		profiles:  deps.Profiles,
		sessions:  deps.Sessions,
		history:   deps.History,
		logger:    logger,
		router:    router,
		uploadDir: deps.UploadDir,
	}

	api := router.Group("/api")
	{
		api.GET("/health", s.handleHealth)
		api.POST("/scan-text", s.handleScanText)
		api.POST("/scan-image", s.handleScanImage)
		api.GET("/history", s.handleHistoryList)
		api.GET("/history/:id", s.handleHistoryItem)
		api.GET("/profile/:user_id", s.handleProfileGet)
		api.PUT("/profile/:user_id", s.handleProfileUpdate)
		api.GET("/sessions/:id", s.handleSessionGet)
		api.DELETE("/sessions/:id/history", s.handleSessionClear)
	}

	return s
}

// Handler returns the router for embedding or tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down API server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

func allowCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
