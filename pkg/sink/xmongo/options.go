package xmongo

import (
	"time"

	"github.com/omeyang/metr/internal/sinkopt"
)

// Options 包含 MongoDB Sink 的配置选项。
type Options struct {
	// WriteTimeout 是单条写入的超时时间。
	// 为 0 时使用 context 自带的超时。
	WriteTimeout time.Duration
}

// Option 是用于配置 Options 的函数类型。
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		WriteTimeout: sinkopt.DefaultWriteTimeout,
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
