package metr

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

// =============================================================================
// tag 校验
// =============================================================================

// ValidateTag 校验点分 tag 的合法性。
//
// 合法 tag 非空、不含空白字符、每个点分段非空（"a..b"、".a"、"a."
// 均非法）。校验失败不会创建任何节点。
func ValidateTag(tag string) error {
	if tag == "" {
		return ErrEmptyTag
	}
	if strings.ContainsFunc(tag, unicode.IsSpace) {
		return fmt.Errorf("%w: whitespace in %q", ErrInvalidTag, tag)
	}
	for _, seg := range strings.Split(tag, ".") {
		if seg == "" {
			return fmt.Errorf("%w: empty segment in %q", ErrInvalidTag, tag)
		}
	}
	return nil
}

// tagPrefixes 返回 tag 从最短到最长的全部点分前缀。
// 如 "a.b.c" 返回 ["a", "a.b", "a.b.c"]。
func tagPrefixes(tag string) []string {
	segs := strings.Split(tag, ".")
	prefixes := make([]string, len(segs))
	for i := range segs {
		prefixes[i] = strings.Join(segs[:i+1], ".")
	}
	return prefixes
}

// =============================================================================
// Registry
// =============================================================================

// DefaultShardCount 默认分片数（2 的幂）。
const DefaultShardCount = 32

// Registry 是 tag 到 Metr 节点的进程级映射。
//
// 节点按 tag 唯一创建且不销毁，映射只增不减，进程退出时随之销毁。
// 内部按 tag 哈希分片加锁，读多写少场景下并发友好。
// 注册表状态仅存于内存，进程重启后重新开始。
type Registry struct {
	shards []registryShard
	mask   uint64
}

type registryShard struct {
	mu    sync.RWMutex
	nodes map[string]*Metr
}

// RegistryOption 是 Registry 的配置选项。
type RegistryOption func(*registryOptions)

type registryOptions struct {
	shardCount uint
}

// WithShardCount 设置分片数。非正值被忽略；非 2 的幂向上取整到
// 最近的 2 的幂，保证掩码取模正确。
func WithShardCount(n uint) RegistryOption {
	return func(o *registryOptions) {
		if n > 0 {
			o.shardCount = nextPowerOfTwo(n)
		}
	}
}

// nextPowerOfTwo 返回不小于 n 的最小 2 的幂。
func nextPowerOfTwo(n uint) uint {
	p := uint(1)
	for p < n {
		p <<= 1
	}
	return p
}

// NewRegistry 创建空注册表。
func NewRegistry(opts ...RegistryOption) *Registry {
	o := &registryOptions{shardCount: DefaultShardCount}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	shards := make([]registryShard, o.shardCount)
	for i := range shards {
		shards[i].nodes = make(map[string]*Metr)
	}
	return &Registry{
		shards: shards,
		mask:   uint64(o.shardCount - 1),
	}
}

func (r *Registry) shard(tag string) *registryShard {
	h := xxhash.Sum64String(tag)
	return &r.shards[h&r.mask]
}

// Get 返回 tag 对应的节点；不存在时沿层级自根向下补齐缺失的中间
// 节点并逐级链接父引用，最终返回完整 tag 的节点。
//
// 幂等：相同 tag 的重复调用返回同一个节点实例。并发安全：同一或
// 重叠 tag 的并发调用不会产生重复节点，父链接不会竞争错乱，进程
// 生命周期内每个 tag 恰好对应一个节点。
func (r *Registry) Get(tag string) (*Metr, error) {
	if r == nil || r.shards == nil {
		return nil, ErrNilRegistry
	}
	if err := ValidateTag(tag); err != nil {
		return nil, err
	}

	// 快速路径：节点已存在时只读锁查找。
	if m := r.lookup(tag); m != nil {
		return m, nil
	}

	var node *Metr
	for _, prefix := range tagPrefixes(tag) {
		node = r.getOrCreate(prefix, node)
	}
	return node, nil
}

// MustGet 与 Get 相同，但失败时 panic。
// 适用于 tag 为编译期常量、校验失败即编程错误的场景。
func (r *Registry) MustGet(tag string) *Metr {
	m, err := r.Get(tag)
	if err != nil {
		panic(err)
	}
	return m
}

func (r *Registry) lookup(tag string) *Metr {
	s := r.shard(tag)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nodes[tag]
}

// getOrCreate 返回 tag 的既有节点，缺失时以 parent 为父创建。
// 同一 tag 的并发创建由分片锁串行化，后到者拿到先创建的节点，
// 因此父引用全程指向唯一实例。
func (r *Registry) getOrCreate(tag string, parent *Metr) *Metr {
	s := r.shard(tag)
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.nodes[tag]; ok {
		return m
	}
	m := &Metr{tag: tag, parent: parent, registry: r}
	s.nodes[tag] = m
	return m
}

// Len 返回当前节点数。
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	n := 0
	for i := range r.shards {
		s := &r.shards[i]
		s.mu.RLock()
		n += len(s.nodes)
		s.mu.RUnlock()
	}
	return n
}

// Tags 返回当前全部节点 tag，顺序不定。
func (r *Registry) Tags() []string {
	if r == nil {
		return nil
	}
	tags := make([]string, 0, r.Len())
	for i := range r.shards {
		s := &r.shards[i]
		s.mu.RLock()
		for tag := range s.nodes {
			tags = append(tags, tag)
		}
		s.mu.RUnlock()
	}
	return tags
}

// =============================================================================
// 默认注册表
// =============================================================================

var (
	defaultRegistry atomic.Pointer[Registry]
	initMu          sync.Mutex
)

// Init 以指定选项初始化默认注册表。
//
// 不调用 Init 时，首次访问默认注册表会以默认配置自动初始化。
// Init 只能成功一次，之后（包括已发生自动初始化后）返回
// ErrAlreadyInitialized。建议在应用启动时调用。
// 如需多个独立注册表（如测试隔离），请使用 NewRegistry。
func Init(opts ...RegistryOption) error {
	initMu.Lock()
	defer initMu.Unlock()
	if defaultRegistry.Load() != nil {
		return ErrAlreadyInitialized
	}
	defaultRegistry.Store(NewRegistry(opts...))
	return nil
}

// Default 返回默认注册表，必要时以默认配置自动初始化。
// 使用 double-checked locking，快速路径只需一次原子 Load。
func Default() *Registry {
	if r := defaultRegistry.Load(); r != nil {
		return r
	}
	initMu.Lock()
	defer initMu.Unlock()
	if r := defaultRegistry.Load(); r != nil {
		return r
	}
	r := NewRegistry()
	defaultRegistry.Store(r)
	return r
}

// Get 在默认注册表上获取或创建节点。
func Get(tag string) (*Metr, error) {
	return Default().Get(tag)
}

// MustGet 在默认注册表上获取或创建节点，失败时 panic。
func MustGet(tag string) *Metr {
	return Default().MustGet(tag)
}
