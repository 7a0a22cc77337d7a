package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"robot-arena/internal/modules/arena/service"
	"robot-arena/internal/pkg/log"
	"robot-arena/internal/pkg/response"
	"robot-arena/internal/pkg/validator"
	"robot-arena/internal/pkg/wshub"
)

type testServer struct {
	e        *echo.Echo
	registry *service.BattleRegistry
	hub      *wshub.Hub
	writer   response.Writer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := log.NewDiscardLogger()
	hub := wshub.NewHub(logger)

	settings := service.DefaultSettings()
	settings.DefaultMovementTime = 100 * time.Millisecond
	registry := service.NewBattleRegistry(settings, service.Dependencies{
		Logger:   logger,
		Observer: service.NewHubObserver(hub, logger),
		Rand:     rand.New(rand.NewSource(7)),
	})
	t.Cleanup(func() {
		hub.Close()
		_ = registry.Shutdown(context.Background())
	})

	e := echo.New()
	e.Validator = validator.New(validator.StringRule{Tag: "direction", Check: DirectionRule})

	return &testServer{e: e, registry: registry, hub: hub, writer: response.DefaultResponseHandler()}
}

// call 直接调用 handler，params 为 name/value 对
func (s *testServer) call(t *testing.T, h echo.HandlerFunc, method, target string, body interface{}, params ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := s.e.NewContext(req, rec)

	var names, values []string
	for i := 0; i+1 < len(params); i += 2 {
		names = append(names, params[i])
		values = append(values, params[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)

	require.NoError(t, h(c))
	return rec
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

// inProgress 创建一场无墙、已开始的双人战斗
func (s *testServer) inProgress(t *testing.T, name string) (*service.BattleSnapshot, *service.RobotSnapshot, *service.RobotSnapshot) {
	t.Helper()
	ctx := context.Background()
	b, err := s.registry.CreateBattle(ctx, service.CreateBattleRequest{Name: name + " empty"})
	require.NoError(t, err)
	a, err := s.registry.RegisterRobot(ctx, service.RegisterRobotRequest{Name: "a", BattleID: b.ID})
	require.NoError(t, err)
	o, err := s.registry.RegisterRobot(ctx, service.RegisterRobotRequest{Name: "b", BattleID: b.ID})
	require.NoError(t, err)
	b, err = s.registry.StartBattle(ctx, b.ID)
	require.NoError(t, err)
	return b, a, o
}
