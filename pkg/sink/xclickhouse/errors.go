package xclickhouse

import "errors"

// 包级别错误定义。
var (
	// ErrNilConn 表示传入了 nil 连接。
	ErrNilConn = errors.New("xclickhouse: nil connection")

	// ErrClosed 表示 Sink 已关闭。
	ErrClosed = errors.New("xclickhouse: handler closed")

	// ErrEmptyTable 表示表名为空。
	ErrEmptyTable = errors.New("xclickhouse: empty table name")

	// ErrInvalidTableName 表示表名包含非法字符。
	// 表名会被拼入 INSERT 语句，严格校验防止 SQL 注入。
	ErrInvalidTableName = errors.New("xclickhouse: invalid table name, contains illegal characters")
)
