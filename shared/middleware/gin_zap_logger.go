package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// RequestIDHeader is echoed back on every response.
	RequestIDHeader = "X-Request-ID"
	// RequestIDKey is the gin context key holding the request id.
	RequestIDKey = "request_id"
)

// DefaultSkipPaths are probe endpoints that would otherwise flood the request log.
var DefaultSkipPaths = []string{"/health", "/metrics"}

// RequestID reuses the caller's X-Request-ID or generates one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GinZapLogger writes one entry per request, at a level chosen by the response status.
// Paths in skip are not logged; with no skip paths DefaultSkipPaths apply.
func GinZapLogger(log *zap.Logger, skip ...string) gin.HandlerFunc {
	if len(skip) == 0 {
		skip = DefaultSkipPaths
	}
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skipped[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		log.Check(levelFor(c), messageFor(c)).Write(requestFields(c, time.Since(start))...)
	}
}

func requestFields(c *gin.Context, latency time.Duration) []zap.Field {
	path := c.Request.URL.Path
	if q := c.Request.URL.RawQuery; q != "" {
		path += "?" + q
	}

	fields := []zap.Field{
		zap.Int("status", c.Writer.Status()),
		zap.String("method", c.Request.Method),
		zap.String("path", path),
		zap.String("route", c.FullPath()),
		zap.Int("bytes", c.Writer.Size()),
		zap.String("ip", c.ClientIP()),
		zap.Duration("latency", latency),
		zap.String("user_agent", c.Request.UserAgent()),
	}
	if id := c.GetString(RequestIDKey); id != "" {
		fields = append(fields, zap.String(RequestIDKey, id))
	}
	if userID, ok := c.Get("user_id"); ok {
		fields = append(fields, zap.Any("user_id", userID))
	}
	if errs := c.Errors.ByType(gin.ErrorTypeAny); len(errs) > 0 {
		fields = append(fields, zap.Strings("errors", errs.Errors()))
	}
	return fields
}

func levelFor(c *gin.Context) zapcore.Level {
	status := c.Writer.Status()
	switch {
	case status >= http.StatusInternalServerError || len(c.Errors) > 0:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

func messageFor(c *gin.Context) string {
	status := c.Writer.Status()
	switch {
	case status >= http.StatusInternalServerError:
		return "Request failed"
	case status >= http.StatusBadRequest:
		return "Request rejected"
	default:
		return "Request served"
	}
}
