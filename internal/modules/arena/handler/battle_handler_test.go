package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"robot-arena/internal/modules/arena/service"
	"robot-arena/internal/pkg/xerrors"
)

func TestBattleHandler_CreateBattle(t *testing.T) {
	s := newTestServer(t)
	h := NewBattleHandler(s.registry, s.writer)

	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
		expectedCode   xerrors.ErrorCode
	}{
		{"创建成功", CreateBattleRequest{Name: "Arena"}, http.StatusOK, xerrors.CodeSuccess},
		{"名称重复", CreateBattleRequest{Name: "Arena"}, http.StatusConflict, xerrors.CodeBattleNameExists},
		{"缺少名称", map[string]interface{}{"width": 20}, http.StatusBadRequest, xerrors.CodeInvalidParams},
		{"名称全为空白", CreateBattleRequest{Name: "   "}, http.StatusBadRequest, xerrors.CodeInvalidParams},
		{"宽度超出范围", map[string]interface{}{"name": "wide", "width": 1001}, http.StatusBadRequest, xerrors.CodeInvalidParams},
		{"移动耗时超出范围", map[string]interface{}{"name": "slow", "movementTimeSeconds": 0.01}, http.StatusBadRequest, xerrors.CodeInvalidParams},
		{"请求体格式错误", "not an object", http.StatusBadRequest, xerrors.CodeInvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.call(t, h.CreateBattle, http.MethodPost, "/api/v1/arena/battles", tt.body)
			assert.Equal(t, tt.expectedStatus, rec.Code)
			env := decode(t, rec, nil)
			assert.Equal(t, int(tt.expectedCode), env.Code)
		})
	}

	var battle service.BattleSnapshot
	rec := s.call(t, h.CreateBattle, http.MethodPost, "/api/v1/arena/battles",
		map[string]interface{}{"name": "Custom", "width": 30, "height": 40, "movementTimeSeconds": 0.5})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &battle)
	assert.Equal(t, 30, battle.ArenaWidth)
	assert.Equal(t, 40, battle.ArenaHeight)
	assert.Equal(t, 0.5, battle.RobotMovementTimeSeconds)
	assert.Equal(t, service.BattleWaiting, battle.State)
	assert.Contains(t, rec.Body.String(), `"winnerId":null`)
}

func TestBattleHandler_Lifecycle(t *testing.T) {
	s := newTestServer(t)
	battles := NewBattleHandler(s.registry, s.writer)
	robots := NewRobotHandler(s.registry, s.writer)
	ctx := context.Background()

	b, err := s.registry.CreateBattle(ctx, service.CreateBattleRequest{Name: "life empty"})
	require.NoError(t, err)

	rec := s.call(t, battles.StartBattle, http.MethodPost, "/", nil, "battle_id", b.ID)
	assert.Equal(t, http.StatusConflict, rec.Code, "WAITING 不能开始")

	var first, second service.RobotSnapshot
	rec = s.call(t, robots.RegisterRobot, http.MethodPost, "/", RegisterRobotRequest{Name: "one", BattleID: b.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &first)
	rec = s.call(t, robots.RegisterRobot, http.MethodPost, "/", RegisterRobotRequest{Name: "two", BattleID: b.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &second)

	var started service.BattleSnapshot
	rec = s.call(t, battles.StartBattle, http.MethodPost, "/", nil, "battle_id", b.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &started)
	assert.Equal(t, service.BattleInProgress, started.State)
	assert.Len(t, started.Robots, 2)

	rec = s.call(t, battles.DeleteBattle, http.MethodDelete, "/", nil, "battle_id", b.ID)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, int(xerrors.CodeBattleNotCompleted), decode(t, rec, nil).Code)

	_, err = s.registry.DeclareWinner(ctx, b.ID, first.ID)
	require.NoError(t, err)

	rec = s.call(t, battles.DeleteBattle, http.MethodDelete, "/", nil, "battle_id", b.ID)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = s.call(t, battles.GetBattle, http.MethodGet, "/", nil, "battle_id", b.ID)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBattleHandler_GetBattle(t *testing.T) {
	s := newTestServer(t)
	h := NewBattleHandler(s.registry, s.writer)
	b, a, _ := s.inProgress(t, "get")
	other, _, _ := s.inProgress(t, "other")

	var battle service.BattleSnapshot
	rec := s.call(t, h.GetBattle, http.MethodGet, "/?robotId="+a.ID, nil, "battle_id", b.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &battle)
	assert.Equal(t, b.ID, battle.ID)
	assert.Len(t, battle.Robots, 2, "按机器人查询不做视角过滤")

	rec = s.call(t, h.GetBattle, http.MethodGet, "/?robotId="+a.ID, nil, "battle_id", other.ID)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, int(xerrors.CodeRobotNotInBattle), decode(t, rec, nil).Code)

	var list []service.BattleSummary
	rec = s.call(t, h.ListBattles, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &list)
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID)
}
