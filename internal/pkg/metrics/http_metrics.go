// File: internal/pkg/metrics/http_metrics.go
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPMetrics HTTP 性能指标收集器
type HTTPMetrics struct {
	// HTTP 请求总数（按路由模板、方法、状态码分组）
	RequestsTotal *prometheus.CounterVec

	// HTTP 请求延迟直方图（按路由模板分组）
	RequestDuration *prometheus.HistogramVec

	// 当前进行中的请求数
	RequestsInProgress prometheus.Gauge
}

// HTTPBuckets 针对动作接口优化的 buckets
// 移动/雷达/激光都在内存中完成, 绝大部分请求应低于 50ms
// 单位：秒
var HTTPBuckets = []float64{
	0.005,
	0.01,
	0.025,
	0.05,
	0.1,
	0.25,
	0.5,
	1,
	2.5,
}

// NewHTTPMetrics 创建新的 HTTP 指标收集器
func NewHTTPMetrics(namespace string) *HTTPMetrics {
	return NewHTTPMetricsWithRegistry(namespace, GetRegisterer())
}

// NewHTTPMetricsWithRegistry 创建新的 HTTP 指标收集器（使用自定义注册表）
func NewHTTPMetricsWithRegistry(namespace string, registerer prometheus.Registerer) *HTTPMetrics {
	factory := promauto.With(registerer)
	constLabels := ConstLabels()

	return &HTTPMetrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Name:        "http_requests_total",
				Help:        "Total number of HTTP requests by route template, method, and status code",
				ConstLabels: constLabels,
			},
			[]string{"route", "method", "status_code"},
		),

		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Name:        "http_request_duration_seconds",
				Help:        "HTTP request latency histogram by route template",
				Buckets:     HTTPBuckets,
				ConstLabels: constLabels,
			},
			[]string{"route"},
		),

		RequestsInProgress: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace:   namespace,
				Name:        "http_requests_in_progress",
				Help:        "Current number of HTTP requests being processed",
				ConstLabels: constLabels,
			},
		),
	}
}

// RecordRequest 记录 HTTP 请求指标
//
// 参数:
//   - route: 路由模板（如 "/api/v1/arena/battles/:battle_id"，而非具体 ID）
//   - method: HTTP 方法
//   - statusCode: HTTP 状态码
//   - duration: 请求耗时
func (m *HTTPMetrics) RecordRequest(route, method string, statusCode int, duration time.Duration) {
	route = NormalizeRoute(route)
	m.RequestsTotal.WithLabelValues(route, method, strconv.Itoa(statusCode)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// IsHealthCheckEndpoint 判断是否为健康检查端点
// 这些端点不应被监控，以避免指标噪音
func IsHealthCheckEndpoint(path string) bool {
	switch path {
	case "/metrics", "/health", "/healthz", "/readyz", "/livez":
		return true
	}
	return false
}

// NormalizeRoute 规范化路由，防止标签基数爆炸。
// 未匹配路由时 echo 返回空模板, 统一归为 unknown。
func NormalizeRoute(route string) string {
	if route == "" {
		return "unknown"
	}
	return route
}
