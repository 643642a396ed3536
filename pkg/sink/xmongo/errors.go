package xmongo

import "errors"

// 包级别错误定义。
var (
	// ErrNilCollection 表示传入了 nil 集合。
	ErrNilCollection = errors.New("xmongo: nil collection")

	// ErrClosed 表示 Sink 已关闭。
	ErrClosed = errors.New("xmongo: handler closed")
)
