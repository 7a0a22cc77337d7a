package handler

import (
	"context"
	"encoding/json"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"robot-arena/internal/modules/arena/service"
	"robot-arena/internal/pkg/xerrors"
)

// ArenaRPCHandler 战斗运维 RPC 处理器
// 请求/响应均为 structpb.Struct 的 protobuf 编码
type ArenaRPCHandler struct {
	registry *service.BattleRegistry
}

// NewArenaRPCHandler 创建战斗 RPC Handler
func NewArenaRPCHandler(registry *service.BattleRegistry) *ArenaRPCHandler {
	return &ArenaRPCHandler{registry: registry}
}

// ==================== RPC Methods ====================

// ListBattles 战斗列表
func (h *ArenaRPCHandler) ListBattles(data []byte) ([]byte, error) {
	battles := h.registry.ListBattles()
	return encodeStruct(map[string]interface{}{
		"battles": battles,
		"total":   len(battles),
	})
}

// ForceDeleteBattle 不论状态强制移除战斗
func (h *ArenaRPCHandler) ForceDeleteBattle(data []byte) ([]byte, error) {
	req, err := decodeStruct(data)
	if err != nil {
		return nil, err
	}
	battleID, err := requiredField(req, "battle_id")
	if err != nil {
		return nil, err
	}

	if err := h.registry.EvictBattle(context.Background(), battleID, service.ReasonForced); err != nil {
		return nil, err
	}
	return encodeStruct(map[string]interface{}{"battle_id": battleID, "deleted": true})
}

// CrashRobot 让机器人立即坠毁
func (h *ArenaRPCHandler) CrashRobot(data []byte) ([]byte, error) {
	battleID, robotID, err := decodeActor(data)
	if err != nil {
		return nil, err
	}

	robot, err := h.registry.CrashRobot(context.Background(), battleID, robotID)
	if err != nil {
		return nil, err
	}
	return encodeStruct(robot)
}

// DeclareWinner 宣布胜者并结束战斗
func (h *ArenaRPCHandler) DeclareWinner(data []byte) ([]byte, error) {
	battleID, robotID, err := decodeActor(data)
	if err != nil {
		return nil, err
	}

	battle, err := h.registry.DeclareWinner(context.Background(), battleID, robotID)
	if err != nil {
		return nil, err
	}
	return encodeStruct(battle)
}

// ==================== 编解码 ====================

func decodeStruct(data []byte) (*structpb.Struct, error) {
	req := &structpb.Struct{}
	if err := proto.Unmarshal(data, req); err != nil {
		return nil, xerrors.NewValidationError("request", "invalid protobuf data")
	}
	return req, nil
}

func decodeActor(data []byte) (string, string, error) {
	req, err := decodeStruct(data)
	if err != nil {
		return "", "", err
	}
	battleID, err := requiredField(req, "battle_id")
	if err != nil {
		return "", "", err
	}
	robotID, err := requiredField(req, "robot_id")
	if err != nil {
		return "", "", err
	}
	return battleID, robotID, nil
}

func requiredField(req *structpb.Struct, key string) (string, error) {
	value := req.GetFields()[key].GetStringValue()
	if value == "" {
		return "", xerrors.NewValidationError(key, key+" 不能为空")
	}
	return value, nil
}

// encodeStruct 先转 JSON 再转 structpb，v 必须序列化为 JSON 对象
func encodeStruct(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, xerrors.Wrap(err, xerrors.CodeInternalError, "序列化RPC响应失败")
	}
	resp := &structpb.Struct{}
	if err := resp.UnmarshalJSON(raw); err != nil {
		return nil, xerrors.Wrap(err, xerrors.CodeInternalError, "序列化RPC响应失败")
	}
	return proto.Marshal(resp)
}
