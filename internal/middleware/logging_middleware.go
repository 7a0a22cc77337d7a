package middleware

import (
	"strings"
	"time"

	"robot-arena/internal/pkg/ctxkey"
	"robot-arena/internal/pkg/log"

	"github.com/labstack/echo/v4"
)

// LoggingConfig 日志配置
type LoggingConfig struct {
	// SkipPaths 跳过日志记录的路径前缀
	SkipPaths []string

	// DetailedLog 是否记录 query、user agent
	DetailedLog bool
}

// DefaultLoggingConfig 默认日志配置
func DefaultLoggingConfig() *LoggingConfig {
	return &LoggingConfig{
		SkipPaths: []string{
			"/health",
			"/metrics",
			"/swagger",
			"/favicon.ico",
		},
	}
}

// LoggingMiddleware 日志中间件
func LoggingMiddleware(logger log.Logger) echo.MiddlewareFunc {
	return LoggingMiddlewareWithConfig(logger, DefaultLoggingConfig())
}

// LoggingMiddlewareWithConfig 带配置的日志中间件
// battle_id / robot_id 路由参数会写入 context，后续业务日志自动带上
func LoggingMiddlewareWithConfig(logger log.Logger, config *LoggingConfig) echo.MiddlewareFunc {
	if config == nil {
		config = DefaultLoggingConfig()
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if shouldSkip(c.Request().URL.Path, config.SkipPaths) {
				return next(c)
			}

			start := time.Now()
			ctx := c.Request().Context()
			if battleID := c.Param("battle_id"); battleID != "" {
				ctx = ctxkey.WithValue(ctx, ctxkey.BattleID, battleID)
			}
			if robotID := c.Param("robot_id"); robotID != "" {
				ctx = ctxkey.WithValue(ctx, ctxkey.RobotID, robotID)
			}
			c.SetRequest(c.Request().WithContext(ctx))

			fields := []any{
				log.String("method", c.Request().Method),
				log.String("path", c.Request().URL.Path),
				log.String("route", c.Path()),
				log.String("client_ip", c.RealIP()),
			}
			if config.DetailedLog {
				if q := c.Request().URL.RawQuery; q != "" {
					fields = append(fields, log.String("query", q))
				}
				fields = append(fields, log.String("user_agent", c.Request().UserAgent()))
			}

			err := next(c)

			statusCode := c.Response().Status
			fields = append(fields,
				log.Int("status_code", statusCode),
				log.Duration("duration", time.Since(start).Milliseconds()),
				log.Int64("response_size", c.Response().Size),
			)

			switch {
			case err != nil:
				fields = append(fields, log.Any("error", err))
				logger.ErrorContext(ctx, "请求处理出错", fields...)
			case statusCode >= 500:
				logger.ErrorContext(ctx, "请求完成（服务器错误）", fields...)
			case statusCode >= 400:
				logger.WarnContext(ctx, "请求完成（客户端错误）", fields...)
			default:
				logger.InfoContext(ctx, "请求完成", fields...)
			}

			return err
		}
	}
}

// shouldSkip 检查是否应该跳过日志记录
func shouldSkip(path string, skipPaths []string) bool {
	for _, skipPath := range skipPaths {
		if strings.HasPrefix(path, skipPath) {
			return true
		}
	}
	return false
}
