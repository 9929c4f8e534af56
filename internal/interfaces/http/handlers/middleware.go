// Package handlers implements the HTTP API surface.
package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/turtacn/naps/internal/infrastructure/monitoring"
	"github.com/turtacn/naps/pkg/constants"
	"github.com/turtacn/naps/pkg/logger"
)

// Middleware bundles the cross-cutting request handlers.
type Middleware struct {
	logger  logger.Logger
	metrics *monitoring.Metrics
}

// NewMiddleware creates the middleware set.
func NewMiddleware(log logger.Logger, metrics *monitoring.Metrics) *Middleware {
	return &Middleware{
		logger:  log.WithComponent(constants.ComponentHTTP),
		metrics: metrics,
	}
}

// RequestID assigns every request an ID, honoring one supplied by the
// client, and echoes it in the response header.
func (m *Middleware) RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(string(constants.ContextKeyRequestID), requestID)
		c.Header("X-Request-ID", requestID)

		ctx := context.WithValue(c.Request.Context(), constants.ContextKeyRequestID, requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// Logger emits one structured entry per request.
func (m *Middleware) Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		m.logger.Info(c.Request.Context(), "http request", logger.Fields{
			"method":     c.Request.Method,
			"path":       path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
		})
	}
}

// Metrics records request counts and latencies. The route template is used
// as the path label to keep cardinality bounded.
func (m *Middleware) Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.metrics.RecordHTTPRequest(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
		)
	}
}

// RequestIDFromContext extracts the request ID set by the middleware.
func RequestIDFromContext(c *gin.Context) string {
	if v, ok := c.Get(string(constants.ContextKeyRequestID)); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
