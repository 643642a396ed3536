package metr

import "errors"

// 包级别错误定义。
var (
	// ErrEmptyTag 表示 tag 为空字符串。
	ErrEmptyTag = errors.New("metr: empty tag")

	// ErrInvalidTag 表示 tag 含有非法字符或空的点分段（如 "a..b"）。
	// 校验失败时不会创建任何节点。
	ErrInvalidTag = errors.New("metr: invalid tag")

	// ErrNilHandler 表示传入了 nil Handler。
	ErrNilHandler = errors.New("metr: nil handler")

	// ErrNilRegistry 表示注册表实例为 nil 或未通过 NewRegistry 创建。
	ErrNilRegistry = errors.New("metr: nil registry (use NewRegistry to create)")

	// ErrAlreadyInitialized 表示默认注册表已初始化。
	// 第二次调用 Init 时返回此错误。如需多个注册表，请使用 NewRegistry。
	ErrAlreadyInitialized = errors.New("metr: default registry already initialized")

	// ErrCounterClosed 表示计数器已提交。
	// Close 只提交一次，重复调用返回此错误且不会再次分发。
	ErrCounterClosed = errors.New("metr: counter already committed")

	// ErrNilFunc 表示传入了 nil 函数。
	ErrNilFunc = errors.New("metr: nil function")
)
