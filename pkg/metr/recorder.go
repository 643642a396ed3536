package metr

import (
	"context"
	"errors"
	"sync"
)

// =============================================================================
// 立即记录
// =============================================================================

// Rec 立即同步记录一个整数观测值，不做缓冲。
// 等价于 HandleValue。
func (m *Metr) Rec(ctx context.Context, value int64) error {
	return m.HandleValue(ctx, value)
}

// =============================================================================
// 作用域累加
// =============================================================================

// Counter 是作用域内的累加器。
//
// 创建后通过 Add 累加，Close 把最终总和作为单条 Record 提交（恰好
// 一次）；零次 Add 提交 0。提交后即废弃，不可复用。
// Add 并发安全；Close 幂等，重复调用返回 ErrCounterClosed 且不会
// 再次分发。
type Counter struct {
	metr *Metr

	mu     sync.Mutex
	sum    int64
	closed bool
}

// Counter 创建一个挂在本节点上的累加器。
func (m *Metr) Counter() *Counter {
	return &Counter{metr: m}
}

// Add 累加 delta（可为负）。提交后调用不生效。
func (c *Counter) Add(delta int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.sum += delta
}

// Sum 返回当前累加值。
func (c *Counter) Sum() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sum
}

// Close 把最终总和作为单条 Record 提交到所属节点。
// 只有第一次调用会分发，后续调用返回 ErrCounterClosed。
func (c *Counter) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrCounterClosed
	}
	c.closed = true
	sum := c.sum
	c.mu.Unlock()

	return c.metr.HandleValue(ctx, sum)
}

// Count 在一个累加作用域内执行 fn，并保证退出时提交恰好一次，
// 无论 fn 正常返回还是出错。fn 内部已显式 Close 的情况下不会重复
// 提交。fn 的错误与提交分发的错误通过 errors.Join 合并返回。
func (m *Metr) Count(ctx context.Context, fn func(c *Counter) error) (err error) {
	if fn == nil {
		return ErrNilFunc
	}
	c := m.Counter()
	defer func() {
		closeErr := c.Close(ctx)
		if closeErr != nil && !errors.Is(closeErr, ErrCounterClosed) {
			err = errors.Join(err, closeErr)
		}
	}()
	return fn(c)
}

// =============================================================================
// 按错误种类计数
// =============================================================================

// ErrorRecorder 拦截指定种类的错误并按次计数。
//
// 包装的函数照常执行；返回的错误与任一目标错误 errors.Is 匹配时，
// 恰好提交一条 value=1 的 Record，随后错误原样返回给调用方——
// 记录是旁路观测，绝不吞掉应用错误。每次调用相互独立，不跨调用
// 累计状态。
type ErrorRecorder struct {
	metr    *Metr
	targets []error
}

// ErrorRecorder 创建一个挂在本节点上的错误记录器。
// targets 为空时匹配任意非 nil 错误。
func (m *Metr) ErrorRecorder(targets ...error) *ErrorRecorder {
	return &ErrorRecorder{metr: m, targets: targets}
}

// matches 判断 err 是否命中目标错误种类。
func (r *ErrorRecorder) matches(err error) bool {
	if len(r.targets) == 0 {
		return true
	}
	for _, target := range r.targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Do 执行 fn 并按错误计数。
//
// fn 返回 nil 或不匹配的错误时不产生 Record，错误原样透传。
// 命中目标错误时提交一条 value=1 的 Record；若提交分发本身失败，
// 通过 errors.Join 附带分发错误，errors.Is 对原错误仍然成立。
func (r *ErrorRecorder) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if fn == nil {
		return ErrNilFunc
	}
	err := fn(ctx)
	if err == nil || !r.matches(err) {
		return err
	}
	if recErr := r.metr.HandleValue(ctx, 1); recErr != nil {
		return errors.Join(err, recErr)
	}
	return err
}

// Wrap 返回 fn 的包装版本，行为同 Do。
// 适合一次包装、多处调用的装饰器用法。
func (r *ErrorRecorder) Wrap(fn func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return r.Do(ctx, fn)
	}
}
