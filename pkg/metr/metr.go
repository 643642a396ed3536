package metr

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Metr 是层级中的一个命名指标节点。
//
// 节点由 Registry 按 tag 唯一创建，进程生命周期内不销毁。
// Handler 集合可随时追加，对后续分发生效（不回溯）。
// 所有方法并发安全。
type Metr struct {
	tag      string
	parent   *Metr
	registry *Registry

	mu       sync.RWMutex
	handlers []Handler
}

// Tag 返回节点的点分标识。
func (m *Metr) Tag() string {
	return m.tag
}

// Parent 返回父节点；根节点（tag 不含点）返回 nil。
func (m *Metr) Parent() *Metr {
	return m.parent
}

// AddHandler 把 h 追加到节点的 Handler 集合，保持注册顺序。
// 与分发并发调用是安全的：进行中的分发可能看到也可能看不到
// 刚追加的 Handler，但集合本身不会损坏。
//
// 不做去重：Handler 可能是 HandlerFunc 等不可比较类型，接口相等性
// 判断会在运行时 panic。调用方自行保证不重复注册同一实例。
func (m *Metr) AddHandler(h Handler) error {
	if h == nil {
		return ErrNilHandler
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = append(m.handlers, h)
	return nil
}

// Handlers 返回当前 Handler 集合的快照，按注册顺序。
func (m *Metr) Handlers() []Handler {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.handlers)
}

// Child 返回 tag 为 "<本节点 tag>.<suffix>" 的子节点，等价于
// 在所属注册表上执行 Get。
func (m *Metr) Child(suffix string) (*Metr, error) {
	return m.registry.Get(m.tag + "." + suffix)
}

// HandleValue 构造一条 Record（本节点 tag、当前时间、进程会话标识）
// 并同步分发：先按注册顺序调用本节点 Handler，再沿父链向上，每级
// 同样按注册顺序，全程传递同一个 Record。任一 Handler 失败即中止
// 剩余分发并返回该错误；节点树与 Handler 集合保持一致，不影响下次调用。
//
// ctx 为 nil 时使用 context.Background()。
func (m *Metr) HandleValue(ctx context.Context, value int64) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return m.dispatch(ctx, newRecord(m.tag, value))
}

// dispatch 在本节点及祖先链上扇出 r。
// 每级取 Handler 快照遍历，遍历期间的 AddHandler 不影响本次扫描。
func (m *Metr) dispatch(ctx context.Context, r Record) error {
	for node := m; node != nil; node = node.parent {
		for _, h := range node.Handlers() {
			if err := h.Handle(ctx, r); err != nil {
				return fmt.Errorf("metr: handler at %q failed: %w", node.tag, err)
			}
		}
	}
	return nil
}
