package xmongo

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/omeyang/metr/internal/sinkopt"
	"github.com/omeyang/metr/pkg/metr"
)

// =============================================================================
// Handler 实现
// =============================================================================

// Stats 是 Sink 的统计信息。
type Stats struct {
	// InsertCount 成功写入条数。
	InsertCount int64
	// InsertErrors 写入失败条数。
	InsertErrors int64
}

// Handler 把 Record 逐条写入 MongoDB 集合。
//
// 集合的所有权归调用方：Close 只停用 Sink，不断开客户端连接。
type Handler struct {
	coll collectionOperations
	opts *Options

	// closed 标记 Sink 是否已停用，防止关闭后继续写入。
	closed atomic.Bool

	insertCounter sinkopt.InsertCounter
}

// New 创建 MongoDB Sink。coll 为 nil 返回 ErrNilCollection。
func New(coll *mongo.Collection, opts ...Option) (*Handler, error) {
	return newWithOps(adaptCollection(coll), opts...)
}

// newWithOps 以注入的集合接口创建 Sink，便于测试。
func newWithOps(coll collectionOperations, opts ...Option) (*Handler, error) {
	if coll == nil {
		return nil, ErrNilCollection
	}
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return &Handler{coll: coll, opts: o}, nil
}

// Handle 实现 metr.Handler 接口。
// 在调用方 goroutine 上同步写入一个文档；失败时返回错误，
// 由核心中止本次分发。
func (h *Handler) Handle(ctx context.Context, r metr.Record) error {
	if h.closed.Load() {
		return ErrClosed
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := sinkopt.WriteContext(ctx, h.opts.WriteTimeout)
	defer cancel()

	doc := bson.M{
		"created":    r.Created,
		"tag":        r.Tag,
		"value":      r.Value,
		"session_id": r.SessionID,
	}
	if _, err := h.coll.InsertOne(ctx, doc); err != nil {
		h.insertCounter.IncInsertError()
		return fmt.Errorf("xmongo: insert into %q failed: %w", h.coll.Name(), err)
	}
	h.insertCounter.IncInsert()
	return nil
}

// Stats 返回统计信息。
func (h *Handler) Stats() Stats {
	return Stats{
		InsertCount:  h.insertCounter.InsertCount(),
		InsertErrors: h.insertCounter.InsertErrors(),
	}
}

// Close 停用 Sink。幂等，第二次及后续调用返回 ErrClosed。
// 不断开底层连接，客户端由调用方管理。
func (h *Handler) Close() error {
	if !h.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	return nil
}

// 编译期接口检查。
var _ metr.Handler = (*Handler)(nil)
