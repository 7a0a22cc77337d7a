package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"robot-arena/internal/pkg/ctxkey"
	"robot-arena/internal/pkg/log"
	"robot-arena/internal/pkg/response"
	"robot-arena/internal/pkg/xerrors"
)

func newTestEcho() (*echo.Echo, response.Writer) {
	e := echo.New()
	w := response.DefaultResponseHandler()
	logger := log.NewDiscardLogger()
	e.HTTPErrorHandler = HTTPErrorHandler(w)
	e.Use(TraceMiddleware())
	e.Use(LoggingMiddleware(logger))
	e.Use(RecoveryMiddleware(w, logger))
	e.Use(ErrorMiddleware(w, logger))
	return e, w
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestTraceMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]string
		want   string
	}{
		{"沿用 X-Trace-Id", map[string]string{"X-Trace-Id": "abc"}, "abc"},
		{"沿用 X-Request-Id", map[string]string{"X-Request-Id": "req-1"}, "req-1"},
		{"解析 traceparent", map[string]string{"Traceparent": "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"}, "4bf92f3577b34da6a3ce929d0e0e4736"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			var seen string
			e.Use(TraceMiddleware())
			e.GET("/", func(c echo.Context) error {
				seen = ctxkey.GetString(c.Request().Context(), ctxkey.TraceID)
				return c.NoContent(http.StatusOK)
			})
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, seen)
			assert.Equal(t, tt.want, rec.Header().Get(TraceHeader))
		})
	}

	t.Run("缺失时生成 UUID", func(t *testing.T) {
		id := ExtractTraceID(http.Header{})
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
	})
}

func TestUUIDParamMiddleware(t *testing.T) {
	e, w := newTestEcho()
	g := e.Group("", UUIDParamMiddleware(w))
	g.GET("/battles/:battle_id", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/battles/not-a-uuid", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, xerrors.CodeResourceNotFound, decode(t, rec).Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/battles/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestErrorMiddleware(t *testing.T) {
	e, _ := newTestEcho()
	e.GET("/app", func(c echo.Context) error {
		return xerrors.NewBattleNotFoundError("b1")
	})
	e.GET("/wrapped", func(c echo.Context) error {
		return xerrors.Wrap(errors.New("boom"), xerrors.CodeBattleStateConflict, "state")
	})
	e.GET("/plain", func(c echo.Context) error {
		return errors.New("boom")
	})
	e.GET("/bind", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusBadRequest, "bad json")
	})

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantCode   xerrors.ErrorCode
	}{
		{"业务错误", "/app", http.StatusNotFound, xerrors.CodeBattleNotFound},
		{"包装错误", "/wrapped", http.StatusConflict, xerrors.CodeBattleStateConflict},
		{"未知错误", "/plain", http.StatusInternalServerError, xerrors.CodeInternalError},
		{"echo 错误", "/bind", http.StatusBadRequest, xerrors.CodeInvalidParams},
		{"路由不存在", "/nope", http.StatusNotFound, xerrors.CodeResourceNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, decode(t, rec).Code)
		})
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	e, _ := newTestEcho()
	e.GET("/panic", func(c echo.Context) error {
		panic("kaboom")
	})

	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, xerrors.CodeInternalError, resp.Code)
	assert.NotEmpty(t, resp.TraceID)
}

func TestRateLimitMiddleware(t *testing.T) {
	e, _ := newTestEcho()
	e.Use(RateLimitMiddleware(RateLimitConfig{RequestsPerSecond: 1, Burst: 2}))
	e.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, "pong")
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
		if i == 2 {
			resp := decode(t, rec)
			assert.Equal(t, xerrors.CodeRateLimitExceeded, resp.Code)
		}
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
