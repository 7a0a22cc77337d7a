package handler

import (
	"github.com/labstack/echo/v4"

	"robot-arena/internal/modules/arena/service"
	"robot-arena/internal/pkg/response"
)

// BattleHandler 战斗生命周期 HTTP 接口
type BattleHandler struct {
	registry   *service.BattleRegistry
	respWriter response.Writer
}

// NewBattleHandler creates a new battle handler
func NewBattleHandler(registry *service.BattleRegistry, respWriter response.Writer) *BattleHandler {
	return &BattleHandler{
		registry:   registry,
		respWriter: respWriter,
	}
}

// CreateBattle 创建战斗
// @Summary 创建战斗
// @Description 创建新的战斗，状态为 WAITING_ON_ROBOTS。名称包含 empty 时不生成墙（测试用）
// @Tags 战斗
// @Accept json
// @Produce json
// @Param request body CreateBattleRequest true "创建战斗请求"
// @Success 200 {object} response.Response{data=service.BattleSnapshot} "创建成功"
// @Failure 400 {object} response.Response "参数错误（尺寸/移动耗时超出范围）"
// @Failure 409 {object} response.Response "战斗名称已存在"
// @Router /arena/battles [post]
func (h *BattleHandler) CreateBattle(c echo.Context) error {
	var req CreateBattleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	battle, err := h.registry.CreateBattle(c.Request().Context(), service.CreateBattleRequest{
		Name:                req.Name,
		Width:               req.Width,
		Height:              req.Height,
		MovementTimeSeconds: req.MovementTimeSeconds,
	})
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}
	return response.EchoOK(c, h.respWriter, battle)
}

// ListBattles 战斗列表
// @Summary 战斗列表
// @Tags 战斗
// @Produce json
// @Success 200 {object} response.Response{data=[]service.BattleSummary} "按创建时间排序"
// @Router /arena/battles [get]
func (h *BattleHandler) ListBattles(c echo.Context) error {
	return response.EchoOK(c, h.respWriter, h.registry.ListBattles())
}

// GetBattle 战斗状态
// @Summary 查询战斗状态
// @Description 带 robotId 时校验机器人属于该战斗，返回内容相同（不按机器人视角过滤）
// @Tags 战斗
// @Produce json
// @Param battle_id path string true "战斗ID"
// @Param robotId query string false "机器人ID"
// @Success 200 {object} response.Response{data=service.BattleSnapshot}
// @Failure 404 {object} response.Response "战斗或机器人不存在"
// @Router /arena/battles/{battle_id} [get]
func (h *BattleHandler) GetBattle(c echo.Context) error {
	battleID := c.Param("battle_id")

	var (
		battle *service.BattleSnapshot
		err    error
	)
	if robotID := c.QueryParam("robotId"); robotID != "" {
		battle, err = h.registry.GetBattleForRobot(battleID, robotID)
	} else {
		battle, err = h.registry.GetBattle(battleID)
	}
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}
	return response.EchoOK(c, h.respWriter, battle)
}

// StartBattle 开始战斗
// @Summary 开始战斗
// @Description 只有 READY（至少两个机器人）的战斗可以开始
// @Tags 战斗
// @Produce json
// @Param battle_id path string true "战斗ID"
// @Success 200 {object} response.Response{data=service.BattleSnapshot}
// @Failure 404 {object} response.Response "战斗不存在"
// @Failure 409 {object} response.Response "战斗状态不允许开始"
// @Router /arena/battles/{battle_id}/start [post]
func (h *BattleHandler) StartBattle(c echo.Context) error {
	battle, err := h.registry.StartBattle(c.Request().Context(), c.Param("battle_id"))
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}
	return response.EchoOK(c, h.respWriter, battle)
}

// DeleteBattle 删除战斗
// @Summary 删除已结束的战斗
// @Tags 战斗
// @Param battle_id path string true "战斗ID"
// @Success 204 "删除成功"
// @Failure 404 {object} response.Response "战斗不存在"
// @Failure 409 {object} response.Response "战斗尚未结束"
// @Router /arena/battles/{battle_id} [delete]
func (h *BattleHandler) DeleteBattle(c echo.Context) error {
	if err := h.registry.DeleteBattle(c.Request().Context(), c.Param("battle_id")); err != nil {
		return response.EchoError(c, h.respWriter, err)
	}
	return response.EchoNoContent(c)
}
