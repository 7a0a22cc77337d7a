package handler

import (
	"encoding/json"
	"time"

	"github.com/labstack/echo/v4"

	"robot-arena/internal/modules/arena/service"
	"robot-arena/internal/pkg/log"
	"robot-arena/internal/pkg/response"
	"robot-arena/internal/pkg/wshub"
	"robot-arena/internal/pkg/xerrors"
)

// WatchHandler websocket 观战
type WatchHandler struct {
	registry   *service.BattleRegistry
	hub        *wshub.Hub
	respWriter response.Writer
	logger     log.Logger
}

// NewWatchHandler creates a new watch handler
func NewWatchHandler(registry *service.BattleRegistry, hub *wshub.Hub, respWriter response.Writer, logger log.Logger) *WatchHandler {
	if logger == nil {
		logger = log.GetLogger()
	}
	return &WatchHandler{
		registry:   registry,
		hub:        hub,
		respWriter: respWriter,
		logger:     logger.With("component", "watch_handler"),
	}
}

// Watch 订阅战斗快照推送
// @Summary 观战（websocket）
// @Description 升级为 websocket 后先推送当前快照，之后每次状态变更推送 battle.updated，战斗删除时推送 battle.deleted 并关闭连接
// @Tags 战斗
// @Param battle_id path string true "战斗ID"
// @Success 101 "Switching Protocols"
// @Failure 404 {object} response.Response "战斗不存在"
// @Router /arena/battles/{battle_id}/watch [get]
func (h *WatchHandler) Watch(c echo.Context) error {
	battleID := c.Param("battle_id")
	battle, err := h.registry.GetBattle(battleID)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	initial, err := json.Marshal(service.BattleEvent{
		Type:       service.EventBattleUpdated,
		BattleID:   battleID,
		Battle:     battle,
		OccurredAt: time.Now(),
	})
	if err != nil {
		return response.EchoError(c, h.respWriter, xerrors.Wrap(err, xerrors.CodeInternalError, "序列化战斗快照失败"))
	}

	conn, err := wshub.Upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade 失败时已经写出了 HTTP 错误
		h.logger.WarnContext(c.Request().Context(), "websocket 升级失败",
			log.String("battle_id", battleID),
			log.Any("error", err),
		)
		return nil
	}

	h.logger.DebugContext(c.Request().Context(), "观战连接建立", log.String("battle_id", battleID))
	h.hub.Serve(battleID, conn, initial)
	return nil
}
