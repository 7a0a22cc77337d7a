package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"robot-arena/internal/pkg/log"
	"robot-arena/internal/pkg/response"
	"robot-arena/internal/pkg/xerrors"

	"github.com/labstack/echo/v4"
)

// ErrorMiddleware 统一错误处理中间件
// 把 handler 返回的错误统一写成响应信封，已提交的响应不再重复写
func ErrorMiddleware(respWriter response.Writer, logger log.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil || c.Response().Committed {
				return err
			}

			ctx := c.Request().Context()

			var appErr *xerrors.AppError
			var httpErr *echo.HTTPError
			switch {
			case errors.As(err, &appErr):
				return respWriter.WriteError(ctx, c.Response(), appErr)

			case errors.As(err, &httpErr):
				return respWriter.WriteError(ctx, c.Response(), convertEchoError(httpErr))

			default:
				logger.ErrorContext(ctx, "未处理的错误",
					log.Any("original_error", err),
					log.String("error_type", fmt.Sprintf("%T", err)),
				)
				wrapped := xerrors.NewWithError(xerrors.CodeInternalError, "系统内部错误", err).
					WithService("echo-middleware", "error_handler")
				return respWriter.WriteError(ctx, c.Response(), wrapped)
			}
		}
	}
}

// convertEchoError 将 Echo 错误转换为业务错误
func convertEchoError(echoErr *echo.HTTPError) *xerrors.AppError {
	message := fmt.Sprintf("%v", echoErr.Message)
	switch echoErr.Code {
	case http.StatusBadRequest, http.StatusUnsupportedMediaType:
		return xerrors.FromCode(xerrors.CodeInvalidParams).WithMetadata("reason", message)
	case http.StatusNotFound:
		return xerrors.FromCode(xerrors.CodeResourceNotFound).WithMetadata("reason", message)
	case http.StatusMethodNotAllowed:
		return xerrors.FromCode(xerrors.CodeInvalidRequest).WithMetadata("reason", message)
	case http.StatusConflict:
		return xerrors.FromCode(xerrors.CodeDuplicateResource).WithMetadata("reason", message)
	default:
		return xerrors.FromCode(xerrors.CodeInternalError).
			WithMetadata("echo_code", echoErr.Code).
			WithMetadata("reason", message)
	}
}

// HTTPErrorHandler 替换 echo 默认错误处理器，路由未匹配等框架级错误也走统一信封
func HTTPErrorHandler(respWriter response.Writer) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		ctx := c.Request().Context()
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			_ = respWriter.WriteError(ctx, c.Response(), convertEchoError(httpErr))
			return
		}
		_ = respWriter.WriteError(ctx, c.Response(), err)
	}
}
