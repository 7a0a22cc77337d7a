package handler

import (
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"

	"robot-arena/internal/modules/arena/service"
	"robot-arena/internal/pkg/xerrors"
	"robot-arena/internal/repository/interfaces"
)

// ==================== HTTP Request Models ====================

// CreateBattleRequest 创建战斗请求
// 名称包含 empty（不区分大小写）时不生成墙；宽高 10-1000；每格耗时 0.1-10.0 秒
type CreateBattleRequest struct {
	Name                string   `json:"name" validate:"required,battle_name" example:"Arena One"`
	Width               *int     `json:"width,omitempty" example:"20"`
	Height              *int     `json:"height,omitempty" example:"20"`
	MovementTimeSeconds *float64 `json:"movementTimeSeconds,omitempty" example:"1.0"`
}

// RegisterRobotRequest 注册机器人请求，battleId 为空时加入最早的可加入战斗
type RegisterRobotRequest struct {
	Name     string `json:"name" validate:"required,max=64" example:"robo-1"`
	BattleID string `json:"battleId,omitempty" example:"6f1c2a9e-1d3b-4f51-9a5e-2b7c8d9e0f11"`
}

// MoveRequest 移动指令，方向支持 N/NE 等缩写，格数 1-10
type MoveRequest struct {
	Direction string `json:"direction" validate:"required,direction" example:"NORTH"`
	Blocks    int    `json:"blocks" validate:"required,min=1" example:"3"`
}

// RadarRequest 雷达扫描请求，超过上限的范围按上限处理
type RadarRequest struct {
	Range int `json:"range" validate:"required,min=1" example:"5"`
}

// LaserRequest 激光射击请求，range 默认 10，最大 20
type LaserRequest struct {
	Direction string `json:"direction" validate:"required,direction" example:"EAST"`
	Range     int    `json:"range,omitempty" validate:"omitempty,min=1" example:"10"`
}

// HistoryResponse 历史战报
type HistoryResponse struct {
	Reports []*interfaces.BattleReport `json:"reports"`
	Count   int                        `json:"count"`
}

// DirectionRule 供 validator 注册 direction 规则
func DirectionRule(value string) bool {
	return service.IsValidDirection(value)
}

// bindAndValidate 绑定并校验请求体，失败统一转换为参数错误
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return xerrors.NewValidationError("body", "请求格式错误")
	}
	if err := c.Validate(req); err != nil {
		msg := err.Error()
		var he *echo.HTTPError
		if errors.As(err, &he) {
			msg = fmt.Sprint(he.Message)
		}
		return xerrors.NewValidationError("body", msg)
	}
	return nil
}

func parseDirection(value string) service.Direction {
	dir, _ := service.ParseDirection(value)
	return dir
}
