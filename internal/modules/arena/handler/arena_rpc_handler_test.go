package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"robot-arena/internal/modules/arena/service"
	"robot-arena/internal/pkg/xerrors"
)

func rpcRequest(t *testing.T, fields map[string]interface{}) []byte {
	t.Helper()
	req, err := structpb.NewStruct(fields)
	require.NoError(t, err)
	data, err := proto.Marshal(req)
	require.NoError(t, err)
	return data
}

func rpcResponse(t *testing.T, data []byte) map[string]interface{} {
	t.Helper()
	resp := &structpb.Struct{}
	require.NoError(t, proto.Unmarshal(data, resp))
	return resp.AsMap()
}

func TestArenaRPCHandler_ListBattles(t *testing.T) {
	s := newTestServer(t)
	h := NewArenaRPCHandler(s.registry)
	b, _, _ := s.inProgress(t, "rpc list")

	data, err := h.ListBattles(nil)
	require.NoError(t, err)
	resp := rpcResponse(t, data)
	assert.Equal(t, float64(1), resp["total"])

	battles := resp["battles"].([]interface{})
	require.Len(t, battles, 1)
	first := battles[0].(map[string]interface{})
	assert.Equal(t, b.ID, first["id"])
	assert.Equal(t, string(service.BattleInProgress), first["state"])
}

func TestArenaRPCHandler_CrashAndDeclare(t *testing.T) {
	s := newTestServer(t)
	h := NewArenaRPCHandler(s.registry)
	b, a, o := s.inProgress(t, "rpc actions")

	data, err := h.CrashRobot(rpcRequest(t, map[string]interface{}{"battle_id": b.ID, "robot_id": a.ID}))
	require.NoError(t, err)
	robot := rpcResponse(t, data)
	assert.Equal(t, string(service.RobotCrashed), robot["status"])
	assert.Equal(t, float64(0), robot["hitPoints"])

	battle, err := s.registry.GetBattle(b.ID)
	require.NoError(t, err)
	assert.Equal(t, service.BattleCompleted, battle.State)
	assert.Equal(t, o.ID, *battle.WinnerID)

	_, err = h.DeclareWinner(rpcRequest(t, map[string]interface{}{"battle_id": b.ID, "robot_id": o.ID}))
	assert.True(t, xerrors.IsCode(err, xerrors.CodeBattleStateConflict), "已结束的战斗不能再宣布胜者")

	c, x, _ := s.inProgress(t, "rpc declare")
	data, err = h.DeclareWinner(rpcRequest(t, map[string]interface{}{"battle_id": c.ID, "robot_id": x.ID}))
	require.NoError(t, err)
	declared := rpcResponse(t, data)
	assert.Equal(t, string(service.BattleCompleted), declared["state"])
	assert.Equal(t, x.ID, declared["winnerId"])
}

func TestArenaRPCHandler_ForceDeleteBattle(t *testing.T) {
	s := newTestServer(t)
	h := NewArenaRPCHandler(s.registry)
	b, _, _ := s.inProgress(t, "rpc delete")

	data, err := h.ForceDeleteBattle(rpcRequest(t, map[string]interface{}{"battle_id": b.ID}))
	require.NoError(t, err)
	assert.Equal(t, true, rpcResponse(t, data)["deleted"])

	_, err = s.registry.GetBattle(b.ID)
	assert.True(t, xerrors.IsCode(err, xerrors.CodeBattleNotFound))

	_, err = h.ForceDeleteBattle(rpcRequest(t, map[string]interface{}{"battle_id": b.ID}))
	assert.True(t, xerrors.IsCode(err, xerrors.CodeBattleNotFound))

	_, err = h.ForceDeleteBattle(rpcRequest(t, map[string]interface{}{}))
	assert.True(t, xerrors.IsCode(err, xerrors.CodeInvalidParams))

	_, err = h.ForceDeleteBattle([]byte{0xff, 0xff})
	assert.True(t, xerrors.IsCode(err, xerrors.CodeInvalidParams))
}
