package response

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"robot-arena/internal/pkg/ctxkey"
	"robot-arena/internal/pkg/i18n"
	"robot-arena/internal/pkg/log"
	"robot-arena/internal/pkg/xerrors"
)

// Response 统一的 API 响应结构体
type Response struct {
	Code      xerrors.ErrorCode `json:"code"`               // 业务响应码
	Message   string            `json:"message"`            // 响应消息（按请求语言本地化）
	Data      interface{}       `json:"data,omitempty"`     // 响应数据，成功时返回
	Error     string            `json:"error,omitempty"`    // 错误详情，仅非生产环境返回
	Details   map[string]any    `json:"details,omitempty"`  // 错误元数据（字段名、状态等）
	Timestamp int64             `json:"timestamp"`          // Unix时间戳
	TraceID   string            `json:"trace_id,omitempty"` // 请求追踪ID
}

// Writer 响应写入器（在消费端以接口形式使用，便于测试替换）
type Writer interface {
	WriteSuccess(ctx context.Context, w http.ResponseWriter, data any) error
	WriteError(ctx context.Context, w http.ResponseWriter, err error) error
	WriteJSON(ctx context.Context, w http.ResponseWriter, data any, statusCode int) error
}

// ResponseHandler Writer 的默认实现
type ResponseHandler struct {
	logger      log.Logger
	environment string
}

// NewResponseHandler 创建响应处理器
func NewResponseHandler(logger log.Logger, environment string) *ResponseHandler {
	if logger == nil {
		logger = log.GetLogger()
	}
	return &ResponseHandler{
		logger:      logger.With("component", "response"),
		environment: environment,
	}
}

// DefaultResponseHandler 开发环境默认配置（测试中使用）
func DefaultResponseHandler() *ResponseHandler {
	return NewResponseHandler(log.NewDiscardLogger(), "development")
}

// WriteSuccess 写入成功响应
func (h *ResponseHandler) WriteSuccess(ctx context.Context, w http.ResponseWriter, data any) error {
	resp := &Response{
		Code:      xerrors.CodeSuccess,
		Message:   i18n.GetErrorMessage(xerrors.CodeSuccess, i18n.GetLanguage(ctx)),
		Data:      data,
		Timestamp: time.Now().Unix(),
		TraceID:   ctxkey.GetString(ctx, ctxkey.TraceID),
	}
	return h.WriteJSON(ctx, w, resp, http.StatusOK)
}

// WriteError 写入错误响应，非 AppError 一律视为内部错误
func (h *ResponseHandler) WriteError(ctx context.Context, w http.ResponseWriter, err error) error {
	appErr := xerrors.Wrap(err, xerrors.CodeInternalError, "内部服务错误")
	if appErr == nil {
		appErr = xerrors.FromCode(xerrors.CodeInternalError)
	}

	traceID := ctxkey.GetString(ctx, ctxkey.TraceID)
	if traceID != "" {
		appErr.WithTraceID(traceID)
	}

	status := xerrors.GetHTTPStatus(appErr.Code)
	if status >= http.StatusInternalServerError {
		log.LogAppError(ctx, h.logger, "请求处理失败", appErr)
	} else {
		h.logger.DebugContext(ctx, "业务错误", log.Any("app_error", appErr))
	}

	resp := &Response{
		Code:      appErr.Code,
		Message:   i18n.GetErrorMessage(appErr.Code, i18n.GetLanguage(ctx)),
		Timestamp: time.Now().Unix(),
		TraceID:   traceID,
	}
	if appErr.Context != nil && len(appErr.Context.Metadata) > 0 {
		resp.Details = appErr.Context.Metadata
	}
	if h.environment != "production" {
		resp.Error = appErr.Error()
	}
	return h.WriteJSON(ctx, w, resp, status)
}

// WriteJSON 直接写入 JSON
func (h *ResponseHandler) WriteJSON(ctx context.Context, w http.ResponseWriter, data any, statusCode int) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// header 已写出，只能记录日志
		h.logger.ErrorContext(ctx, "写入JSON响应失败", log.Any("error", err))
		return err
	}
	return nil
}
