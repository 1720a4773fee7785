package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/latoulicious/pokedex/pkg/logging"
	"github.com/latoulicious/pokedex/pkg/pokedex"
)

const viewerKey = "viewer"

// requestMiddleware logs each request and records its metrics
func requestMiddleware(factory logging.LoggerFactory, metrics *pokedex.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()
		duration := time.Since(start)

		metrics.ObserveHTTP(c.Request.Method, path, strconv.Itoa(status), duration)

		logger := factory.CreateRequestLogger(c.Request.Method, path)
		if viewer := viewerFrom(c); viewer != nil {
			logger = logger.WithContext(map[string]interface{}{"user_id": viewer.String()})
		}

		var err error
		if last := c.Errors.Last(); last != nil {
			err = last.Err
		}

		fields := map[string]interface{}{
			"status":      status,
			"duration_ms": duration.Milliseconds(),
			"client_ip":   c.ClientIP(),
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("Request failed", err, fields)
		case err != nil:
			fields["error"] = err.Error()
			logger.Info("Request rejected", fields)
		default:
			logger.Debug("Request handled", fields)
		}
	}
}

// authMiddleware resolves the viewer once per request. Anonymous requests
// pass through; a malformed identity is rejected.
func authMiddleware(auth AuthProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer, err := auth.Viewer(c.Request)
		if err != nil {
			abortWithError(c, err)
			return
		}
		if viewer != nil {
			c.Set(viewerKey, *viewer)
		}
		c.Next()
	}
}

// viewerFrom returns the viewer stored by authMiddleware, or nil
func viewerFrom(c *gin.Context) *uuid.UUID {
	v, ok := c.Get(viewerKey)
	if !ok {
		return nil
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return nil
	}
	return &id
}
