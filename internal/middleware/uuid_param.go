package middleware

import (
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"robot-arena/internal/pkg/response"
)

// UUIDParamMiddleware 验证路径参数中的 ID 格式
// 以 _id 结尾的参数必须是合法 UUID，否则直接按资源不存在返回 404
func UUIDParamMiddleware(respWriter response.Writer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			for _, name := range c.ParamNames() {
				if name != "id" && !strings.HasSuffix(name, "_id") {
					continue
				}
				value := c.Param(name)
				if value == "" {
					continue
				}
				if _, err := uuid.Parse(value); err != nil {
					return response.EchoNotFound(c, respWriter, resourceName(name), value)
				}
			}
			return next(c)
		}
	}
}

func resourceName(param string) string {
	switch param {
	case "battle_id":
		return "battle"
	case "robot_id":
		return "robot"
	default:
		return "resource"
	}
}
