package xotel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/omeyang/metr/pkg/metr"
)

const (
	defaultInstrumentationName = "github.com/omeyang/metr/xotel"

	// DefaultMetricName 默认的 counter 名称。
	DefaultMetricName = "metr.records"
)

type config struct {
	instrumentationName string
	metricName          string
	meterProvider       metric.MeterProvider
	sessionAttr         bool
}

// Option 定义 OTel Sink 的配置选项。
type Option func(*config)

// WithInstrumentationName 设置 OTel instrumentation 名称。
func WithInstrumentationName(name string) Option {
	return func(cfg *config) {
		if name != "" {
			cfg.instrumentationName = name
		}
	}
}

// WithMetricName 设置 counter 名称。
func WithMetricName(name string) Option {
	return func(cfg *config) {
		if name != "" {
			cfg.metricName = name
		}
	}
}

// WithMeterProvider 设置 MeterProvider。
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(cfg *config) {
		if provider != nil {
			cfg.meterProvider = provider
		}
	}
}

// WithSessionAttribute 把会话 ID 作为 attribute 上报。
// 会话 ID 每个进程唯一，长期运行的采集后端会积累大量序列，按需开启。
func WithSessionAttribute() Option {
	return func(cfg *config) {
		cfg.sessionAttr = true
	}
}

// Handler 把 Record 累加到 OpenTelemetry Int64Counter。
type Handler struct {
	counter     metric.Int64Counter
	sessionAttr bool
}

// New 创建 OTel 桥接 Sink。
// 未指定 MeterProvider 时使用全局 Provider。
func New(opts ...Option) (*Handler, error) {
	cfg := &config{
		instrumentationName: defaultInstrumentationName,
		metricName:          DefaultMetricName,
		meterProvider:       otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	meter := cfg.meterProvider.Meter(cfg.instrumentationName)
	counter, err := meter.Int64Counter(
		cfg.metricName,
		metric.WithDescription("recorded metric values"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("xotel: create counter failed: %w", err)
	}
	return &Handler{counter: counter, sessionAttr: cfg.sessionAttr}, nil
}

// Handle 实现 metr.Handler 接口。
// 使用不可取消的 context 上报，请求 context 已取消时指标仍能记录。
func (h *Handler) Handle(ctx context.Context, r metr.Record) error {
	if ctx == nil {
		ctx = context.Background()
	}
	attrs := make([]attribute.KeyValue, 0, 2)
	attrs = append(attrs, attribute.String("tag", r.Tag))
	if h.sessionAttr {
		attrs = append(attrs, attribute.String("session_id", r.SessionID))
	}
	h.counter.Add(context.WithoutCancel(ctx), r.Value, metric.WithAttributes(attrs...))
	return nil
}

// 编译期接口检查。
var _ metr.Handler = (*Handler)(nil)
