// File: internal/pkg/metrics/middleware.go
package metrics

import (
	"errors"
	"net/http"
	"time"

	"robot-arena/internal/pkg/ctxkey"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Middleware Echo 中间件 - 记录请求数/延迟, 并将 HTTP 方法存储到 context 中
func Middleware(m *HTTPMetrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := ctxkey.WithValue(req.Context(), ctxkey.HTTPMethod, req.Method)
			c.SetRequest(req.WithContext(ctx))

			if m == nil || IsHealthCheckEndpoint(req.URL.Path) {
				return next(c)
			}

			m.RequestsInProgress.Inc()
			defer m.RequestsInProgress.Dec()

			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				// 错误尚未被 HTTPErrorHandler 写出, 以错误本身的状态码为准
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				} else if !c.Response().Committed {
					status = http.StatusInternalServerError
				}
			}
			m.RecordRequest(c.Path(), req.Method, status, time.Since(start))
			return err
		}
	}
}

// EchoHandler 暴露 /metrics 端点; gatherer 为 nil 时使用默认注册表
func EchoHandler(gatherer prometheus.Gatherer) echo.HandlerFunc {
	var h http.Handler
	if gatherer == nil {
		h = promhttp.Handler()
	} else {
		h = promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	}
	return echo.WrapHandler(h)
}
