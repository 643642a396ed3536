package xclickhouse

import (
	"time"

	"github.com/omeyang/metr/internal/sinkopt"
)

// 默认值常量。
const (
	// DefaultTable 默认目标表名。
	DefaultTable = "metr_records"

	// DefaultRetryDelay 默认重试间隔。
	DefaultRetryDelay = 50 * time.Millisecond

	// DefaultBreakerFailures 默认连续失败多少次触发熔断。
	DefaultBreakerFailures uint32 = 5

	// DefaultBreakerTimeout 默认熔断后多久进入半开状态。
	DefaultBreakerTimeout = 30 * time.Second
)

// Options 包含 ClickHouse Sink 的配置选项。
type Options struct {
	// Table 是目标表名，构造时校验并固定。
	Table string

	// WriteTimeout 是单条写入的超时时间。
	// 为 0 时使用 context 自带的超时。
	WriteTimeout time.Duration

	// RetryAttempts 是单条写入的最大尝试次数（含首次）。
	// 小于等于 1 表示不重试。
	RetryAttempts uint

	// RetryDelay 是重试间隔（固定间隔）。
	RetryDelay time.Duration

	// BreakerEnabled 是否启用熔断器。
	// 熔断打开期间写入立即失败，错误沿分发链返回调用方。
	BreakerEnabled bool

	// BreakerFailures 连续失败多少次触发熔断。
	BreakerFailures uint32

	// BreakerTimeout 熔断打开后多久进入半开状态。
	BreakerTimeout time.Duration
}

// Option 是用于配置 Options 的函数类型。
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		Table:           DefaultTable,
		WriteTimeout:    sinkopt.DefaultWriteTimeout,
		RetryDelay:      DefaultRetryDelay,
		BreakerFailures: DefaultBreakerFailures,
		BreakerTimeout:  DefaultBreakerTimeout,
	}
}

// WithTable 设置目标表名。
// 空字符串被忽略（保持默认值）；合法性在 New 中统一校验。
func WithTable(table string) Option {
	return func(o *Options) {
		if table != "" {
			o.Table = table
		}
	}
}

// WithWriteTimeout 设置单条写入超时时间。设置为 0 表示不额外限时。
func WithWriteTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		if timeout >= 0 {
			o.WriteTimeout = timeout
		}
	}
}

// WithRetry 设置写入重试：attempts 为最大尝试次数（含首次），
// delay 为固定重试间隔。attempts <= 1 表示不重试。
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(o *Options) {
		o.RetryAttempts = attempts
		if delay > 0 {
			o.RetryDelay = delay
		}
	}
}

// WithBreaker 启用熔断器：连续失败 failures 次后打开，
// timeout 后进入半开试探。非正参数使用默认值。
func WithBreaker(failures uint32, timeout time.Duration) Option {
	return func(o *Options) {
		o.BreakerEnabled = true
		if failures > 0 {
			o.BreakerFailures = failures
		}
		if timeout > 0 {
			o.BreakerTimeout = timeout
		}
	}
}
