// Package middleware holds the gin middleware shared by every route.
package middleware

import (
	"strings"
	"time"

	"github.com/miniblog/miniblog/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// RequestIDMiddleware tags every request with an id, reusing one sent by a
// proxy in front of the server.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestID returns the id assigned by RequestIDMiddleware.
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// AccessLogMiddleware logs every completed request.
func AccessLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if shouldSkipLog(path) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		latency := time.Since(start)
		if status >= 500 {
			logger.Warningf("[%s] %s %s %d %v", RequestID(c), c.Request.Method, path, status, latency)
			return
		}
		logger.Debugf("[%s] %s %s %d %v", RequestID(c), c.Request.Method, path, status, latency)
	}
}

// shouldSkipLog checks if path should be skipped from the access log
func shouldSkipLog(path string) bool {
	skipPaths := []string{
		"/assets/",
		"/static/",
		"/favicon.ico",
	}
	for _, skipPath := range skipPaths {
		if strings.HasPrefix(path, skipPath) {
			return true
		}
	}
	return false
}
