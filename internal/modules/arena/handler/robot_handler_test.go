package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"robot-arena/internal/modules/arena/service"
	"robot-arena/internal/pkg/xerrors"
)

func TestRobotHandler_RegisterRobot(t *testing.T) {
	s := newTestServer(t)
	h := NewRobotHandler(s.registry, s.writer)

	var robot service.RobotSnapshot
	rec := s.call(t, h.RegisterRobot, http.MethodPost, "/", RegisterRobotRequest{Name: "solo"})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &robot)
	assert.NotEmpty(t, robot.BattleID, "没有可加入的战斗时自动创建")
	assert.Equal(t, 100, robot.HitPoints)
	assert.Equal(t, service.RobotIdle, robot.Status)

	rec = s.call(t, h.RegisterRobot, http.MethodPost, "/", RegisterRobotRequest{Name: "lost", BattleID: "3f8e4a1c-0000-4000-8000-000000000000"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, int(xerrors.CodeBattleNotFound), decode(t, rec, nil).Code)

	rec = s.call(t, h.RegisterRobot, http.MethodPost, "/", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	b, _, _ := s.inProgress(t, "started")
	rec = s.call(t, h.RegisterRobot, http.MethodPost, "/", RegisterRobotRequest{Name: "late", BattleID: b.ID})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRobotHandler_StatusHidesPosition(t *testing.T) {
	s := newTestServer(t)
	h := NewRobotHandler(s.registry, s.writer)
	b, a, _ := s.inProgress(t, "status")

	var status service.RobotStatusSnapshot
	rec := s.call(t, h.GetRobotStatus, http.MethodGet, "/", nil, "battle_id", b.ID, "robot_id", a.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &status)
	assert.Equal(t, a.ID, status.ID)
	assert.True(t, status.Active)
	assert.NotContains(t, rec.Body.String(), "positionX")
	assert.NotContains(t, rec.Body.String(), "positionY")
}

func TestRobotHandler_Move(t *testing.T) {
	s := newTestServer(t)
	h := NewRobotHandler(s.registry, s.writer)
	b, a, _ := s.inProgress(t, "move")
	params := []string{"battle_id", b.ID, "robot_id", a.ID}

	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
	}{
		{"无效方向", map[string]interface{}{"direction": "UP", "blocks": 1}, http.StatusBadRequest},
		{"格数为 0", map[string]interface{}{"direction": "NORTH", "blocks": 0}, http.StatusBadRequest},
		{"格数超过上限", map[string]interface{}{"direction": "NORTH", "blocks": 11}, http.StatusBadRequest},
		{"格数不是整数", map[string]interface{}{"direction": "NORTH", "blocks": 1.5}, http.StatusBadRequest},
		{"缩写方向", map[string]interface{}{"direction": "ne", "blocks": 1}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.call(t, h.Move, http.MethodPost, "/", tt.body, params...)
			assert.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
		})
	}

	var robot service.RobotSnapshot
	rec := s.call(t, h.Move, http.MethodPost, "/", MoveRequest{Direction: "SOUTH", Blocks: 2}, params...)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &robot)
	assert.Equal(t, service.South, robot.Direction)
	assert.Equal(t, service.RobotMoving, robot.Status)
	assert.Equal(t, 2, robot.BlocksRemaining)

	waiting, err := s.registry.CreateBattle(t.Context(), service.CreateBattleRequest{Name: "waiting empty"})
	require.NoError(t, err)
	r, err := s.registry.RegisterRobot(t.Context(), service.RegisterRobotRequest{Name: "w", BattleID: waiting.ID})
	require.NoError(t, err)
	rec = s.call(t, h.Move, http.MethodPost, "/", MoveRequest{Direction: "SOUTH", Blocks: 2}, "battle_id", waiting.ID, "robot_id", r.ID)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, int(xerrors.CodeBattleStateConflict), decode(t, rec, nil).Code)
}

func TestRobotHandler_RadarAndLaser(t *testing.T) {
	s := newTestServer(t)
	h := NewRobotHandler(s.registry, s.writer)
	b, a, _ := s.inProgress(t, "combat")
	params := []string{"battle_id", b.ID, "robot_id", a.ID}

	var radar service.RadarResult
	rec := s.call(t, h.Radar, http.MethodPost, "/", RadarRequest{Range: 50}, params...)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &radar)
	assert.Equal(t, 20, radar.Range, "超过上限按上限扫描")

	rec = s.call(t, h.Radar, http.MethodPost, "/", map[string]interface{}{"range": 0}, params...)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var laser service.LaserResult
	rec = s.call(t, h.Laser, http.MethodPost, "/", LaserRequest{Direction: "WEST"}, params...)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &laser)
	assert.Equal(t, 10, laser.Range)
	assert.Equal(t, service.West, laser.Direction)
	assert.NotEmpty(t, laser.LaserPath)
	assert.Equal(t, service.Cell{X: a.PositionX, Y: a.PositionY}, laser.LaserPath[0], "路径从射击者所在格开始")

	rec = s.call(t, h.Laser, http.MethodPost, "/", LaserRequest{Direction: "WEST", Range: 21}, params...)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.call(t, h.Laser, http.MethodPost, "/", nil, params...)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "缺少方向")
}

func TestRobotHandler_RadarRangeBounds(t *testing.T) {
	s := newTestServer(t)
	h := NewRobotHandler(s.registry, s.writer)
	b, a, _ := s.inProgress(t, "radar-bounds")
	params := []string{"battle_id", b.ID, "robot_id", a.ID}

	tests := []struct {
		name      string
		rangeVal  int
		wantCode  int
		wantRange int
	}{
		{"最小范围", 1, http.StatusOK, 1},
		{"上限", 20, http.StatusOK, 20},
		{"超出上限一格", 21, http.StatusOK, 20},
		{"远超上限", 50, http.StatusOK, 20},
		{"零", 0, http.StatusBadRequest, 0},
		{"负数", -3, http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.call(t, h.Radar, http.MethodPost, "/", map[string]interface{}{"range": tt.rangeVal}, params...)
			require.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode != http.StatusOK {
				return
			}
			var radar service.RadarResult
			decode(t, rec, &radar)
			assert.Equal(t, tt.wantRange, radar.Range)
		})
	}
}
