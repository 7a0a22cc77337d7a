package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"robot-arena/internal/pkg/ctxkey"
)

// TraceHeader 响应中回写的追踪头
const TraceHeader = "X-Trace-Id"

// TraceMiddleware 链路追踪中间件
// 优先沿用调用方的 X-Trace-Id / X-Request-Id / traceparent，否则生成新的 UUID
func TraceMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			traceID := ExtractTraceID(c.Request().Header)

			ctx := ctxkey.WithValue(c.Request().Context(), ctxkey.TraceID, traceID)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set("trace_id", traceID)
			c.Response().Header().Set(TraceHeader, traceID)

			return next(c)
		}
	}
}

// ExtractTraceID 从请求头提取 trace ID，缺失时生成
func ExtractTraceID(h http.Header) string {
	if id := h.Get(TraceHeader); id != "" {
		return id
	}
	if id := h.Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	// W3C 格式: "00-<trace-id>-<parent-id>-<flags>"
	if tp := h.Get("Traceparent"); tp != "" {
		if parts := strings.Split(tp, "-"); len(parts) == 4 && len(parts[1]) == 32 {
			return parts[1]
		}
	}
	return uuid.NewString()
}
