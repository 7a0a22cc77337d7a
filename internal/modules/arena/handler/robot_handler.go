package handler

import (
	"github.com/labstack/echo/v4"

	"robot-arena/internal/modules/arena/service"
	"robot-arena/internal/pkg/response"
)

// RobotHandler 机器人注册与动作 HTTP 接口
type RobotHandler struct {
	registry   *service.BattleRegistry
	respWriter response.Writer
}

// NewRobotHandler creates a new robot handler
func NewRobotHandler(registry *service.BattleRegistry, respWriter response.Writer) *RobotHandler {
	return &RobotHandler{
		registry:   registry,
		respWriter: respWriter,
	}
}

// RegisterRobot 注册机器人
// @Summary 注册机器人
// @Description 不指定 battleId 时加入最早创建的可加入战斗，没有则自动创建。出生点随机且不与墙/机器人重叠
// @Tags 机器人
// @Accept json
// @Produce json
// @Param request body RegisterRobotRequest true "注册请求"
// @Success 200 {object} response.Response{data=service.RobotSnapshot} "注册成功"
// @Failure 404 {object} response.Response "战斗不存在"
// @Failure 409 {object} response.Response "战斗已开始/已结束，或竞技场已满"
// @Router /arena/robots [post]
func (h *RobotHandler) RegisterRobot(c echo.Context) error {
	var req RegisterRobotRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	robot, err := h.registry.RegisterRobot(c.Request().Context(), service.RegisterRobotRequest{
		Name:     req.Name,
		BattleID: req.BattleID,
	})
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}
	return response.EchoOK(c, h.respWriter, robot)
}

// GetRobotStatus 机器人状态
// @Summary 查询机器人状态
// @Description 只返回身份、状态和生命值，不包含坐标
// @Tags 机器人
// @Produce json
// @Param battle_id path string true "战斗ID"
// @Param robot_id path string true "机器人ID"
// @Success 200 {object} response.Response{data=service.RobotStatusSnapshot}
// @Failure 404 {object} response.Response "战斗/机器人不存在或不匹配"
// @Router /arena/battles/{battle_id}/robots/{robot_id} [get]
func (h *RobotHandler) GetRobotStatus(c echo.Context) error {
	status, err := h.registry.GetRobotStatus(c.Param("battle_id"), c.Param("robot_id"))
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}
	return response.EchoOK(c, h.respWriter, status)
}

// Move 移动指令
// @Summary 移动机器人
// @Description 立即返回指令下达后的机器人快照，之后每个移动周期前进一格。新指令会取代正在执行的移动
// @Tags 机器人
// @Accept json
// @Produce json
// @Param battle_id path string true "战斗ID"
// @Param robot_id path string true "机器人ID"
// @Param request body MoveRequest true "移动指令"
// @Success 200 {object} response.Response{data=service.RobotSnapshot}
// @Failure 400 {object} response.Response "方向或格数无效"
// @Failure 409 {object} response.Response "战斗未进行中或机器人已失去行动能力"
// @Router /arena/battles/{battle_id}/robots/{robot_id}/move [post]
func (h *RobotHandler) Move(c echo.Context) error {
	var req MoveRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	robot, err := h.registry.MoveRobot(c.Request().Context(), service.MoveRequest{
		BattleID:  c.Param("battle_id"),
		RobotID:   c.Param("robot_id"),
		Direction: parseDirection(req.Direction),
		Blocks:    req.Blocks,
	})
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}
	return response.EchoOK(c, h.respWriter, robot)
}

// Radar 雷达扫描
// @Summary 雷达扫描
// @Description 返回曼哈顿距离内的墙、边界和机器人，坐标相对于扫描者
// @Tags 机器人
// @Accept json
// @Produce json
// @Param battle_id path string true "战斗ID"
// @Param robot_id path string true "机器人ID"
// @Param request body RadarRequest true "扫描范围"
// @Success 200 {object} response.Response{data=service.RadarResult}
// @Failure 409 {object} response.Response "战斗未进行中或机器人已失去行动能力"
// @Router /arena/battles/{battle_id}/robots/{robot_id}/radar [post]
func (h *RobotHandler) Radar(c echo.Context) error {
	var req RadarRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	result, err := h.registry.RadarScan(c.Request().Context(), c.Param("battle_id"), c.Param("robot_id"), req.Range)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}
	return response.EchoOK(c, h.respWriter, result)
}

// Laser 激光射击
// @Summary 激光射击
// @Description 沿方向逐格推进，遇到墙、边界或存活机器人停止；命中造成 20 点伤害
// @Tags 机器人
// @Accept json
// @Produce json
// @Param battle_id path string true "战斗ID"
// @Param robot_id path string true "机器人ID"
// @Param request body LaserRequest true "射击参数"
// @Success 200 {object} response.Response{data=service.LaserResult}
// @Failure 400 {object} response.Response "方向或射程无效"
// @Failure 409 {object} response.Response "战斗未进行中或机器人已失去行动能力"
// @Router /arena/battles/{battle_id}/robots/{robot_id}/laser [post]
func (h *RobotHandler) Laser(c echo.Context) error {
	var req LaserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	result, err := h.registry.FireLaser(c.Request().Context(), service.LaserRequest{
		BattleID:  c.Param("battle_id"),
		RobotID:   c.Param("robot_id"),
		Direction: parseDirection(req.Direction),
		Range:     req.Range,
	})
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}
	return response.EchoOK(c, h.respWriter, result)
}
