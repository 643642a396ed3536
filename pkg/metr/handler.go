package metr

import "context"

// Handler 定义 Sink 消费 Record 的能力。
//
// Handle 在调用方 goroutine 上同步执行；实现可以阻塞（如数据库 IO），
// 阻塞会被整条 HandleValue 调用链承担，因此实现不应无限期阻塞。
// 返回非 nil 错误会中止本次分发中尚未调用的 Handler 及向上传播，
// 核心不做重试；实现如需恢复策略（重试、熔断）应在内部自理。
type Handler interface {
	Handle(ctx context.Context, r Record) error
}

// HandlerFunc 把普通函数适配为 Handler。
type HandlerFunc func(ctx context.Context, r Record) error

// Handle 实现 Handler 接口。
func (f HandlerFunc) Handle(ctx context.Context, r Record) error {
	return f(ctx, r)
}

// NoopHandler 是空实现，丢弃所有 Record。
// 适用于按配置关闭某个 Sink 而保持接线不变的场景。
type NoopHandler struct{}

// Handle 空实现，不做任何处理。
func (NoopHandler) Handle(_ context.Context, _ Record) error { return nil }

// 编译期接口检查。
var (
	_ Handler = HandlerFunc(nil)
	_ Handler = NoopHandler{}
)
