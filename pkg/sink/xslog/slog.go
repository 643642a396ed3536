package xslog

import (
	"context"
	"log/slog"

	"github.com/omeyang/metr/pkg/metr"
)

// DefaultMessage 默认日志消息文本。
const DefaultMessage = "metr record"

// Handler 把 Record 写入 slog。
//
// Handle 在调用方 goroutine 上同步执行且不返回错误：
// 日志输出失败由 slog Handler 自行处理，不应中止指标分发。
type Handler struct {
	logger    *slog.Logger
	level     slog.Level
	msg       string
	formatter metr.Formatter
}

// Option 是 Handler 的配置选项。
type Option func(*Handler)

// WithLevel 设置输出级别，默认 slog.LevelInfo。
func WithLevel(level slog.Level) Option {
	return func(h *Handler) {
		h.level = level
	}
}

// WithMessage 设置日志消息文本，默认 DefaultMessage。
func WithMessage(msg string) Option {
	return func(h *Handler) {
		if msg != "" {
			h.msg = msg
		}
	}
}

// WithFormatter 设置文本格式化器。
// 设置后不再输出结构化字段，而是把格式化结果作为消息整行输出。
func WithFormatter(f metr.Formatter) Option {
	return func(h *Handler) {
		h.formatter = f
	}
}

// New 创建日志 Sink。
// logger 为 nil 时使用 slog.Default()。
func New(logger *slog.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		logger: logger,
		level:  slog.LevelInfo,
		msg:    DefaultMessage,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Handle 实现 metr.Handler 接口。
func (h *Handler) Handle(ctx context.Context, r metr.Record) error {
	if h.formatter != nil {
		h.logger.Log(ctx, h.level, h.formatter.Format(r))
		return nil
	}
	h.logger.LogAttrs(ctx, h.level, h.msg,
		slog.String("session_id", r.SessionID),
		slog.Time("created", r.Created),
		slog.String("tag", r.Tag),
		slog.Int64("value", r.Value),
	)
	return nil
}

// 编译期接口检查。
var _ metr.Handler = (*Handler)(nil)
