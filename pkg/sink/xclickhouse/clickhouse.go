package xclickhouse

import (
	"context"
	"fmt"
	"regexp"
	"sync/atomic"

	retry "github.com/avast/retry-go/v5"
	"github.com/sony/gobreaker/v2"

	"github.com/omeyang/metr/internal/sinkopt"
	"github.com/omeyang/metr/pkg/metr"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// =============================================================================
// 接口定义
// =============================================================================

// Execer 是写入所需的最小连接能力。
// clickhouse-go 的 driver.Conn 满足此接口；按最小能力接收参数，
// 便于测试注入假实现。
type Execer interface {
	Exec(ctx context.Context, query string, args ...any) error
}

// 编译期检查：clickhouse-go 的 driver.Conn 可直接作为 Execer 传入。
var _ Execer = driver.Conn(nil)

// Stats 是 Sink 的统计信息。
type Stats struct {
	// InsertCount 成功写入条数。
	InsertCount int64
	// InsertErrors 写入失败条数（重试耗尽后计一次）。
	InsertErrors int64
}

// =============================================================================
// Handler 实现
// =============================================================================

// tableNamePattern 用于校验表名的合法性。
// 支持 table_name 和 database.table_name 两种格式，
// 只允许字母、数字、下划线。
var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)?$`)

// validateTableName 校验表名是否合法，防止 SQL 注入。
func validateTableName(table string) error {
	if table == "" {
		return ErrEmptyTable
	}
	if !tableNamePattern.MatchString(table) {
		return ErrInvalidTableName
	}
	return nil
}

// Handler 把 Record 逐条写入 ClickHouse。
//
// 连接的所有权归调用方：Close 只停用 Sink，不关闭底层连接。
type Handler struct {
	conn  Execer
	opts  *Options
	query string

	// closed 标记 Sink 是否已停用，防止关闭后继续写入。
	closed atomic.Bool

	insertCounter sinkopt.InsertCounter
	breaker       *gobreaker.CircuitBreaker[any]
}

// New 创建 ClickHouse Sink。
// conn 为 nil 返回 ErrNilConn；表名非法返回 ErrInvalidTableName。
//
// 表名在此处一次性校验并拼入预构建的 INSERT 语句，
// 之后的写入全部走参数化占位符。
func New(conn Execer, opts ...Option) (*Handler, error) {
	if conn == nil {
		return nil, ErrNilConn
	}
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if err := validateTableName(o.Table); err != nil {
		return nil, err
	}

	h := &Handler{
		conn:  conn,
		opts:  o,
		query: fmt.Sprintf("INSERT INTO %s (created, tag, value, session_id) VALUES (?, ?, ?, ?)", o.Table),
	}
	if o.BreakerEnabled {
		failures := o.BreakerFailures
		h.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
			Name:    "xclickhouse:" + o.Table,
			Timeout: o.BreakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= failures
			},
		})
	}
	return h, nil
}

// Handle 实现 metr.Handler 接口。
// 在调用方 goroutine 上同步执行一次参数化插入；
// 失败（重试耗尽、熔断打开）时返回错误，由核心中止本次分发。
func (h *Handler) Handle(ctx context.Context, r metr.Record) error {
	if h.closed.Load() {
		return ErrClosed
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := sinkopt.WriteContext(ctx, h.opts.WriteTimeout)
	defer cancel()

	if err := h.execute(ctx, r); err != nil {
		h.insertCounter.IncInsertError()
		return fmt.Errorf("xclickhouse: insert failed: %w", err)
	}
	h.insertCounter.IncInsert()
	return nil
}

// execute 组合重试与熔断执行一次写入。
// 熔断在最外层：重试耗尽才计入一次失败，避免单条记录的多次尝试
// 把熔断器快速打满。
func (h *Handler) execute(ctx context.Context, r metr.Record) error {
	do := func() error {
		return h.conn.Exec(ctx, h.query, r.Created, r.Tag, r.Value, r.SessionID)
	}

	attempt := do
	if h.opts.RetryAttempts > 1 {
		attempt = func() error {
			return retry.New(
				retry.Context(ctx),
				retry.Attempts(h.opts.RetryAttempts),
				retry.Delay(h.opts.RetryDelay),
				retry.DelayType(retry.FixedDelay),
				retry.LastErrorOnly(true),
			).Do(do)
		}
	}

	if h.breaker != nil {
		_, err := h.breaker.Execute(func() (any, error) {
			return nil, attempt()
		})
		return err
	}
	return attempt()
}

// Stats 返回统计信息。
func (h *Handler) Stats() Stats {
	return Stats{
		InsertCount:  h.insertCounter.InsertCount(),
		InsertErrors: h.insertCounter.InsertErrors(),
	}
}

// Close 停用 Sink。幂等，第二次及后续调用返回 ErrClosed。
// 不关闭底层连接，连接由调用方管理。
func (h *Handler) Close() error {
	if !h.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	return nil
}

// 编译期接口检查。
var _ metr.Handler = (*Handler)(nil)

// =============================================================================
// SQL 值列表格式化
// =============================================================================

// sqlTimeLayout 是值列表中时间的格式。
const sqlTimeLayout = "2006-01-02 15:04:05.000000"

// SQLValuesFormatter 把 Record 转换为有序的 SQL 值列表，
// 形如 '<created>', '<tag>', <value>, '<sessionID>'，
// 供需要手工拼 VALUES 子句的工具使用。写入路径不用它，
// Handle 始终走参数化占位符。
type SQLValuesFormatter struct{}

// Format 实现 metr.Formatter 接口。
func (SQLValuesFormatter) Format(r metr.Record) string {
	return fmt.Sprintf("'%s', '%s', %d, '%s'",
		r.Created.Format(sqlTimeLayout), r.Tag, r.Value, r.SessionID)
}

// 编译期接口检查。
var _ metr.Formatter = SQLValuesFormatter{}
