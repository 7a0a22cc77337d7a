// Package log 竞技场的结构化日志：slog 之上的 Logger 接口，
// 请求上下文中的 trace_id、battle_id、robot_id 自动写入每条记录。
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"robot-arena/internal/pkg/ctxkey"
	"robot-arena/internal/pkg/xerrors"
)

// Logger 组件通过构造函数注入；Error 单独接收 err，统一写成 error 字段
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, err error, args ...any)

	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)

	With(args ...any) Logger
	WithGroup(name string) Logger
}

// contextFields 从 context 提取并附加到日志记录的字段，顺序即输出顺序
var contextFields = []struct {
	key  ctxkey.ContextKey
	attr string
}{
	{ctxkey.TraceID, "trace_id"},
	{ctxkey.BattleID, "battle_id"},
	{ctxkey.RobotID, "robot_id"},
}

var (
	defaultMu     sync.RWMutex
	defaultLogger Logger
)

// Init 初始化进程默认 logger；production 输出 JSON，其余环境输出带源码位置的文本
func Init(level slog.Level, environment string) {
	InitWithWriter(os.Stdout, level, environment)
}

// InitWithWriter 同 Init，输出到指定 writer
func InitWithWriter(w io.Writer, level slog.Level, environment string) {
	sl := slog.New(NewContextHandler(newHandler(w, level, environment)))

	defaultMu.Lock()
	defaultLogger = &slogLogger{sl: sl}
	defaultMu.Unlock()

	slog.SetDefault(sl)
}

func newHandler(w io.Writer, level slog.Level, environment string) slog.Handler {
	if environment == "production" {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level, AddSource: true})
}

// ParseLevel 解析日志级别字符串（debug/info/warn/error），无法识别时返回 info
func ParseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// GetLogger 返回进程默认 logger，未初始化时按 development/info 初始化
func GetLogger() Logger {
	defaultMu.RLock()
	l := defaultLogger
	defaultMu.RUnlock()
	if l != nil {
		return l
	}
	Init(slog.LevelInfo, "development")
	return GetLogger()
}

// NewLogger 基于任意 slog.Handler 创建 Logger（同样附加上下文字段）
func NewLogger(handler slog.Handler) Logger {
	return &slogLogger{sl: slog.New(NewContextHandler(handler))}
}

// NewDiscardLogger 丢弃所有输出，测试用
func NewDiscardLogger() Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, nil))
}

type slogLogger struct {
	sl *slog.Logger
}

func (l *slogLogger) Debug(msg string, args ...any) { l.sl.Debug(msg, args...) }
func (l *slogLogger) Info(msg string, args ...any)  { l.sl.Info(msg, args...) }
func (l *slogLogger) Warn(msg string, args ...any)  { l.sl.Warn(msg, args...) }

func (l *slogLogger) Error(msg string, err error, args ...any) {
	l.sl.Error(msg, append(args, slog.Any("error", err))...)
}

func (l *slogLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.sl.DebugContext(ctx, msg, args...)
}

func (l *slogLogger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.sl.InfoContext(ctx, msg, args...)
}

func (l *slogLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.sl.WarnContext(ctx, msg, args...)
}

func (l *slogLogger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.sl.ErrorContext(ctx, msg, args...)
}

func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{sl: l.sl.With(args...)}
}

func (l *slogLogger) WithGroup(name string) Logger {
	return &slogLogger{sl: l.sl.WithGroup(name)}
}

// ContextHandler 把 contextFields 中存在的值写入记录
type ContextHandler struct {
	next slog.Handler
}

func NewContextHandler(next slog.Handler) *ContextHandler {
	return &ContextHandler{next: next}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		for _, f := range contextFields {
			if v := ctxkey.GetString(ctx, f.key); v != "" {
				r.AddAttrs(slog.String(f.attr, v))
			}
		}
	}
	return h.next.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{next: h.next.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{next: h.next.WithGroup(name)}
}

// LogAppError 按 AppError 的级别选择日志级别
func LogAppError(ctx context.Context, logger Logger, msg string, appErr *xerrors.AppError) {
	if logger == nil {
		logger = GetLogger()
	}
	attr := slog.Any("app_error", appErr)
	switch appErr.Level {
	case xerrors.LevelCritical, xerrors.LevelError:
		logger.ErrorContext(ctx, msg, attr)
	case xerrors.LevelWarn:
		logger.WarnContext(ctx, msg, attr)
	default:
		logger.InfoContext(ctx, msg, attr)
	}
}

// ==================== 属性 ====================

func String(key, value string) slog.Attr          { return slog.String(key, value) }
func Int(key string, value int) slog.Attr         { return slog.Int(key, value) }
func Int64(key string, value int64) slog.Attr     { return slog.Int64(key, value) }
func Bool(key string, value bool) slog.Attr       { return slog.Bool(key, value) }
func Any(key string, value interface{}) slog.Attr { return slog.Any(key, value) }

// Duration 以毫秒记录，键名追加 _ms
func Duration(key string, ms int64) slog.Attr {
	return slog.Int64(key+"_ms", ms)
}
