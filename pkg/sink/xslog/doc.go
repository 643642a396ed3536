// Package xslog 提供基于 log/slog 的日志 Sink。
//
// 每条 Record 以结构化日志输出，字段包括会话标识、构造时间、tag
// 和观测值。级别与目标 logger 在构造时指定，构造后不可变。
//
// # 快速开始
//
//	h := xslog.New(slog.Default(), xslog.WithLevel(slog.LevelInfo))
//	m := metr.MustGet("api.login")
//	_ = m.AddHandler(h)
package xslog
