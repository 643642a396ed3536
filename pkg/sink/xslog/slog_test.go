package xslog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/metr/pkg/metr"
)

func newBufLogger(level slog.Level) (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level})), &buf
}

func TestHandleStructured(t *testing.T) {
	logger, buf := newBufLogger(slog.LevelInfo)
	h := New(logger)

	reg := metr.NewRegistry()
	m := reg.MustGet("api.login")
	require.NoError(t, m.AddHandler(h))
	require.NoError(t, m.Rec(context.Background(), 7))

	out := buf.String()
	assert.Contains(t, out, "msg=\"metr record\"")
	assert.Contains(t, out, "tag=api.login")
	assert.Contains(t, out, "value=7")
	assert.Contains(t, out, "session_id="+metr.SessionID())
	assert.Contains(t, out, "created=")
}

func TestHandleWithFormatter(t *testing.T) {
	logger, buf := newBufLogger(slog.LevelInfo)
	h := New(logger, WithFormatter(metr.TextFormatter{}))

	reg := metr.NewRegistry()
	m := reg.MustGet("fmt.line")
	require.NoError(t, m.AddHandler(h))
	require.NoError(t, m.Rec(context.Background(), 3))

	out := buf.String()
	assert.Contains(t, out, "[tag:fmt.line]")
	assert.Contains(t, out, "[value:3]")
	// 格式化模式下不输出结构化字段
	assert.NotContains(t, out, "tag=fmt.line")
}

func TestHandleLevel(t *testing.T) {
	logger, buf := newBufLogger(slog.LevelInfo)
	h := New(logger, WithLevel(slog.LevelDebug))

	rec := metr.Record{Tag: "quiet", Value: 1, SessionID: "s"}
	require.NoError(t, h.Handle(context.Background(), rec))

	// Debug 级别低于 logger 阈值，无输出
	assert.Empty(t, buf.String())
}

func TestHandleCustomMessage(t *testing.T) {
	logger, buf := newBufLogger(slog.LevelInfo)
	h := New(logger, WithMessage("observation"))

	require.NoError(t, h.Handle(context.Background(), metr.Record{Tag: "m", Value: 2}))
	assert.Contains(t, buf.String(), "msg=observation")
}

func TestNewNilLogger(t *testing.T) {
	h := New(nil)
	assert.NotNil(t, h)
	// 回退到 slog.Default()，Handle 不 panic
	assert.NoError(t, h.Handle(context.Background(), metr.Record{Tag: "d", Value: 1}))
}
