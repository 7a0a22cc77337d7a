// File: internal/pkg/i18n/error_messages.go
package i18n

import (
	"robot-arena/internal/pkg/xerrors"

	"golang.org/x/text/language"
)

// ErrorMessages 错误消息的多语言映射
var ErrorMessages = map[xerrors.ErrorCode]map[language.Tag]string{
	xerrors.CodeSuccess:           {language.Chinese: "操作成功", language.English: "Operation successful"},
	xerrors.CodeInternalError:     {language.Chinese: "内部服务错误", language.English: "Internal server error"},
	xerrors.CodeInvalidParams:     {language.Chinese: "参数错误", language.English: "Invalid parameters"},
	xerrors.CodeInvalidRequest:    {language.Chinese: "请求格式错误", language.English: "Invalid request format"},
	xerrors.CodeResourceNotFound:  {language.Chinese: "资源不存在", language.English: "Resource not found"},
	xerrors.CodeDuplicateResource: {language.Chinese: "资源已存在", language.English: "Resource already exists"},
	xerrors.CodeRateLimitExceeded: {language.Chinese: "请求过于频繁", language.English: "Too many requests"},

	xerrors.CodeExternalServiceError: {language.Chinese: "外部服务错误", language.English: "External service error"},
	xerrors.CodeDatabaseError:        {language.Chinese: "数据库错误", language.English: "Database error"},
	xerrors.CodeCacheError:           {language.Chinese: "缓存服务错误", language.English: "Cache service error"},
	xerrors.CodeMessageQueueError:    {language.Chinese: "消息队列错误", language.English: "Message queue error"},

	// 83xxxx: 竞技场
	xerrors.CodeBattleNotFound:      {language.Chinese: "战斗不存在", language.English: "Battle not found"},
	xerrors.CodeRobotNotFound:       {language.Chinese: "机器人不存在", language.English: "Robot not found"},
	xerrors.CodeRobotNotInBattle:    {language.Chinese: "机器人不属于该战斗", language.English: "Robot does not belong to this battle"},
	xerrors.CodeBattleNameExists:    {language.Chinese: "战斗名称已存在", language.English: "Battle name already exists"},
	xerrors.CodeBattleStateConflict: {language.Chinese: "战斗状态不允许该操作", language.English: "Operation not allowed in the current battle state"},
	xerrors.CodeRobotInactive:       {language.Chinese: "机器人已失去行动能力", language.English: "Robot is no longer active"},
	xerrors.CodeBattleNotCompleted:  {language.Chinese: "战斗尚未结束", language.English: "Battle is not completed"},
	xerrors.CodeArenaFull:           {language.Chinese: "竞技场没有空闲位置", language.English: "No free cell left in the arena"},
}

// GetErrorMessage 获取错误码的本地化消息
func GetErrorMessage(code xerrors.ErrorCode, lang language.Tag) string {
	if messages, ok := ErrorMessages[code]; ok {
		if msg, ok := messages[lang]; ok {
			return msg
		}
		if msg, ok := messages[DefaultLanguage]; ok {
			return msg
		}
	}
	if lang == language.Chinese {
		return "未知错误"
	}
	return "Unknown error"
}
