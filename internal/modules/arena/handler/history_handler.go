package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"robot-arena/internal/pkg/response"
	"robot-arena/internal/pkg/xerrors"
	"robot-arena/internal/repository/interfaces"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// HistoryHandler 已结束战斗的归档查询
type HistoryHandler struct {
	reports    interfaces.BattleReportRepository
	respWriter response.Writer
}

// NewHistoryHandler reports 为空表示未配置归档
func NewHistoryHandler(reports interfaces.BattleReportRepository, respWriter response.Writer) *HistoryHandler {
	return &HistoryHandler{
		reports:    reports,
		respWriter: respWriter,
	}
}

// ListHistory 最近的战报
// @Summary 战斗历史
// @Description 按结束时间倒序返回最近的战报
// @Tags 战斗
// @Produce json
// @Param limit query int false "条数，默认 20，最大 100"
// @Success 200 {object} response.Response{data=HistoryResponse}
// @Failure 400 {object} response.Response "limit 无效"
// @Failure 503 {object} response.Response "未配置归档数据库"
// @Router /arena/history [get]
func (h *HistoryHandler) ListHistory(c echo.Context) error {
	if h.reports == nil {
		return response.EchoError(c, h.respWriter, xerrors.New(xerrors.CodeDatabaseError, "战斗归档未配置"))
	}

	limit := defaultHistoryLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return response.EchoBadRequest(c, h.respWriter, "limit", "limit 必须为正整数")
		}
		limit = min(n, maxHistoryLimit)
	}

	reports, err := h.reports.ListRecent(c.Request().Context(), limit)
	if err != nil {
		return response.EchoError(c, h.respWriter, xerrors.NewDatabaseError("list", "battle_reports", err))
	}
	return response.EchoOK(c, h.respWriter, HistoryResponse{Reports: reports, Count: len(reports)})
}
