package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"pigeon/internal/api/response"
	"pigeon/internal/apperr"
	"pigeon/internal/metrics"
)

const HeaderRequestID = "X-Request-ID"

// RequestID 沿用上游传入的 X-Request-ID，否则生成新的
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(response.KeyRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// Logger 注入请求级 logger，并在请求结束后记录访问日志
func Logger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqLog := log.With(zap.String("request_id", c.GetString(response.KeyRequestID)))
		c.Set(response.KeyLogger, reqLog)
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		switch status := c.Writer.Status(); {
		case status >= 500:
			reqLog.Error("request", fields...)
		case status >= 400:
			reqLog.Warn("request", fields...)
		default:
			reqLog.Info("request", fields...)
		}
	}
}

// Recovery panic 转为 500 信封
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec any) {
		response.Fail(c, apperr.Wrap(apperr.CodeStorageFailure, "panic", fmt.Errorf("%v", rec)))
	})
}

// Metrics 以路由模板而非原始路径作为标签
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.IncInFlight()
		defer metrics.DecInFlight()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.ObserveHTTP(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
