package log

import (
	"context"
	"log/slog"
)

type contextKey string

// 上下文键定义
const (
	// RequestContextID HTTP 请求 ID
	RequestContextID contextKey = "request_id"

	// RunContextID 运行记录 ID
	RunContextID contextKey = "run_id"
)

// WithRequestID 在上下文中添加请求 ID
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestContextID, requestID)
}

// WithRunID 在上下文中添加运行记录 ID
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunContextID, runID)
}

// RequestIDFromContext 读取请求 ID
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(RequestContextID).(string)
	return id
}

// LogCtxFromContext 从上下文中提取日志字段
func LogCtxFromContext(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr

	if requestID, ok := ctx.Value(RequestContextID).(string); ok && requestID != "" {
		attrs = append(attrs, slog.String(string(RequestContextID), requestID))
	}
	if runID, ok := ctx.Value(RunContextID).(string); ok && runID != "" {
		attrs = append(attrs, slog.String(string(RunContextID), runID))
	}

	return attrs
}
