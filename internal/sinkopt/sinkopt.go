// Package sinkopt 提供 sink 子包共享的统计计数器与超时工具。
//
// 本包是 internal 包，仅供 pkg/sink 下的子包（xclickhouse、xmongo 等）
// 使用，外部用户不应直接导入。
package sinkopt

import (
	"context"
	"sync/atomic"
	"time"
)

// DefaultWriteTimeout 默认单条写入超时时间。
// 同步分发链路上的 Sink 阻塞会被调用方直接承担，超时必须收紧。
const DefaultWriteTimeout = 5 * time.Second

// WriteContext 创建带写入超时的 context。
// timeout <= 0 时返回原始 context 和空的 cancel 函数。
func WriteContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// InsertCounter 写入计数器。
// 提供原子计数器用于追踪 Sink 的写入状态。
type InsertCounter struct {
	insertCount  atomic.Int64
	insertErrors atomic.Int64
}

// IncInsert 增加写入计数。
func (c *InsertCounter) IncInsert() {
	c.insertCount.Add(1)
}

// IncInsertError 增加写入错误计数。
func (c *InsertCounter) IncInsertError() {
	c.insertErrors.Add(1)
}

// InsertCount 返回写入计数。
func (c *InsertCounter) InsertCount() int64 {
	return c.insertCount.Load()
}

// InsertErrors 返回写入错误计数。
func (c *InsertCounter) InsertErrors() int64 {
	return c.insertErrors.Load()
}
