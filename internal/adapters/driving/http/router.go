// Package http exposes the label services as a JSON REST API.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/labelrag/internal/core/ports/driving"
	"github.com/custodia-labs/labelrag/internal/logger"
)

// Deps are the services the router serves.
type Deps struct {
	Label    driving.LabelService
	Document driving.DocumentService
	Version  string
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(requestLogger(), gin.Recovery())

	health := &HealthHandler{version: deps.Version, startedAt: time.Now()}
	router.GET("/healthz", health.Check)

	v1 := router.Group("/api/v1")
	if deps.Label != nil {
		find := &FindHandler{label: deps.Label}
		v1.POST("/find", find.Find)
	}
	if deps.Document != nil {
		docs := &DocumentHandler{documents: deps.Document}
		v1.GET("/documents", docs.List)
		v1.GET("/documents/:id", docs.Get)
		v1.GET("/documents/:id/chunks", docs.Chunks)
		v1.GET("/cache", docs.Cached)
	}

	return router
}

// requestLogger traces each request through the application logger.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http %s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path,
			c.Writer.Status(), time.Since(start).Round(time.Millisecond))
	}
}

// Serve runs the router on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	logger.Info("REST API listening on %s", addr)
	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
