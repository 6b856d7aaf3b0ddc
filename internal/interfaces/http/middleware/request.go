package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pyassist/backend/internal/infrastructure/log"
)

// HeaderRequestID 请求 ID 头
const HeaderRequestID = "X-Request-ID"

// RequestID 为每个请求分配 ID，写入 context 与响应头；客户端传入的 ID 原样沿用
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.New().String()
		}
		c.Request = c.Request.WithContext(log.WithRequestID(c.Request.Context(), id))
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// Timeout 为请求 context 设置截止时间，下游调用超时后按超时错误返回
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// HTTPRecorder 请求指标记录
type HTTPRecorder interface {
	RecordHTTPRequest(method, route string, status int, seconds float64)
}

// AccessLog 请求日志与指标；route 使用路由模板，避免路径参数造成标签膨胀
func AccessLog(logger *slog.Logger, recorder HTTPRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		status := c.Writer.Status()

		if recorder != nil {
			recorder.RecordHTTPRequest(c.Request.Method, route, status, elapsed.Seconds())
		}

		attrs := []any{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"duration_ms", elapsed.Milliseconds(),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.Last().Err)
		}

		ctx := c.Request.Context()
		switch {
		case status >= 500:
			logger.ErrorContext(ctx, "Request failed", attrs...)
		case status >= 400:
			logger.WarnContext(ctx, "Request rejected", attrs...)
		default:
			logger.InfoContext(ctx, "Request completed", attrs...)
		}
	}
}
