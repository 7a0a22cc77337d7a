// File: internal/pkg/xerrors/codes.go
package xerrors

import (
	"fmt"
	"net/http"
)

// ErrorCode 错误码类型（类型安全）
type ErrorCode int

// IsValid 检查错误码是否在预定义列表中
func (c ErrorCode) IsValid() bool {
	_, exists := codeMessages[c]
	return exists
}

// String 返回错误码的字符串表示
func (c ErrorCode) String() string {
	if msg, ok := codeMessages[c]; ok {
		return fmt.Sprintf("%d (%s)", c, msg)
	}
	return fmt.Sprintf("%d (未定义的错误码)", c)
}

// Message 返回错误码对应的消息
func (c ErrorCode) Message() string {
	if msg, ok := codeMessages[c]; ok {
		return msg
	}
	return "未知错误"
}

// ToInt 转换为 int（用于 JSON 序列化等场景）
func (c ErrorCode) ToInt() int {
	return int(c)
}

// -----------------------------------------------------------------------------
// 业务错误码统一定义
// 按模块或领域对错误码进行分段，便于管理。
// -----------------------------------------------------------------------------
const (
	// 1xxxxx: 通用错误码
	CodeSuccess           ErrorCode = 100000 // 操作成功
	CodeInternalError     ErrorCode = 100001 // 内部服务错误
	CodeInvalidParams     ErrorCode = 100002 // 参数错误
	CodeInvalidRequest    ErrorCode = 100003 // 请求格式错误
	CodeResourceNotFound  ErrorCode = 100404 // 资源不存在
	CodeDuplicateResource ErrorCode = 100409 // 资源已存在
	CodeRateLimitExceeded ErrorCode = 100429 // 请求过于频繁

	// 7xxxxx: 外部服务错误码
	CodeExternalServiceError ErrorCode = 700001 // 外部服务错误
	CodeDatabaseError        ErrorCode = 700003 // 数据库错误
	CodeCacheError           ErrorCode = 700004 // 缓存服务错误
	CodeMessageQueueError    ErrorCode = 700005 // 消息队列错误

	// 83xxxx: 竞技场（机器人对战）错误码
	CodeBattleNotFound      ErrorCode = 830001 // 战斗不存在
	CodeRobotNotFound       ErrorCode = 830002 // 机器人不存在
	CodeRobotNotInBattle    ErrorCode = 830003 // 机器人不属于该战斗
	CodeBattleNameExists    ErrorCode = 830004 // 战斗名称已存在
	CodeBattleStateConflict ErrorCode = 830005 // 战斗状态不允许该操作
	CodeRobotInactive       ErrorCode = 830006 // 机器人已失去行动能力
	CodeBattleNotCompleted  ErrorCode = 830007 // 战斗尚未结束
	CodeArenaFull           ErrorCode = 830008 // 竞技场没有空闲位置
)

// -----------------------------------------------------------------------------
// 错误消息映射
// -----------------------------------------------------------------------------
var codeMessages = map[ErrorCode]string{
	CodeSuccess:           "操作成功",
	CodeInternalError:     "内部服务错误",
	CodeInvalidParams:     "参数错误",
	CodeInvalidRequest:    "请求格式错误",
	CodeResourceNotFound:  "资源不存在",
	CodeDuplicateResource: "资源已存在",
	CodeRateLimitExceeded: "请求过于频繁",

	CodeExternalServiceError: "外部服务错误",
	CodeDatabaseError:        "数据库错误",
	CodeCacheError:           "缓存服务错误",
	CodeMessageQueueError:    "消息队列错误",

	CodeBattleNotFound:      "战斗不存在",
	CodeRobotNotFound:       "机器人不存在",
	CodeRobotNotInBattle:    "机器人不属于该战斗",
	CodeBattleNameExists:    "战斗名称已存在",
	CodeBattleStateConflict: "战斗状态不允许该操作",
	CodeRobotInactive:       "机器人已失去行动能力",
	CodeBattleNotCompleted:  "战斗尚未结束",
	CodeArenaFull:           "竞技场没有空闲位置",
}

// httpStatusByCode 显式映射，优先于号段规则
var httpStatusByCode = map[ErrorCode]int{
	CodeSuccess:             http.StatusOK,
	CodeInvalidParams:       http.StatusBadRequest,
	CodeInvalidRequest:      http.StatusBadRequest,
	CodeResourceNotFound:    http.StatusNotFound,
	CodeDuplicateResource:   http.StatusConflict,
	CodeRateLimitExceeded:   http.StatusTooManyRequests,
	CodeBattleNotFound:      http.StatusNotFound,
	CodeRobotNotFound:       http.StatusNotFound,
	CodeRobotNotInBattle:    http.StatusNotFound,
	CodeBattleNameExists:    http.StatusConflict,
	CodeBattleStateConflict: http.StatusConflict,
	CodeRobotInactive:       http.StatusConflict,
	CodeBattleNotCompleted:  http.StatusConflict,
	CodeArenaFull:           http.StatusConflict,
}

// GetHTTPStatus 根据业务错误码获取HTTP状态码
func GetHTTPStatus(code ErrorCode) int {
	if status, ok := httpStatusByCode[code]; ok {
		return status
	}
	switch {
	case code >= 700000 && code < 800000:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// 辅助函数
// getCategoryByCode 根据错误码获取分类
func getCategoryByCode(code ErrorCode) string {
	switch {
	case code >= 100000 && code < 200000:
		return "system"
	case code >= 700000 && code < 800000:
		return "external"
	case code >= 830000 && code < 840000:
		return "arena"
	default:
		return "unknown"
	}
}

// getLevelByCode 根据错误码获取级别
func getLevelByCode(code ErrorCode) ErrorLevel {
	switch {
	case code == CodeSuccess:
		return LevelInfo
	case code >= 100002 && code <= 100409: // 参数错误、资源不存在等
		return LevelWarn
	case code >= 830000 && code < 840000: // 业务拒绝，属于调用方问题
		return LevelWarn
	case code >= 700001 && code < 800000: // 外部服务错误
		return LevelCritical
	default:
		return LevelError
	}
}

// isRetryableByCode 根据错误码判断是否可重试
func isRetryableByCode(code ErrorCode) bool {
	switch code {
	case CodeInternalError, CodeExternalServiceError, CodeDatabaseError, CodeCacheError, CodeMessageQueueError:
		return true
	}
	return false
}
