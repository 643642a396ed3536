package xotel

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/omeyang/metr/pkg/metr"
)

func newTestMeterProvider() (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
	)
	return mp, reader
}

func testRecord(tag string, value int64) metr.Record {
	return metr.Record{
		Created:   time.Now(),
		Tag:       tag,
		Value:     value,
		SessionID: "sess-1",
	}
}

// collectSum 从 reader 中提取指定名称 counter 的数据点。
func collectSum(t *testing.T, reader *sdkmetric.ManualReader, name string) metricdata.Sum[int64] {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				sum, ok := m.Data.(metricdata.Sum[int64])
				require.True(t, ok)
				return sum
			}
		}
	}
	t.Fatalf("metric %q not found", name)
	return metricdata.Sum[int64]{}
}

func TestHandleAddsToCounter(t *testing.T) {
	mp, reader := newTestMeterProvider()
	h, err := New(WithMeterProvider(mp))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, h.Handle(ctx, testRecord("api.login", 7)))
	require.NoError(t, h.Handle(ctx, testRecord("api.login", 5)))
	require.NoError(t, h.Handle(ctx, testRecord("api.logout", 1)))

	sum := collectSum(t, reader, DefaultMetricName)
	require.Len(t, sum.DataPoints, 2)

	byTag := make(map[string]int64)
	for _, dp := range sum.DataPoints {
		tag, ok := dp.Attributes.Value(attribute.Key("tag"))
		require.True(t, ok)
		byTag[tag.AsString()] = dp.Value
	}
	assert.EqualValues(t, 12, byTag["api.login"])
	assert.EqualValues(t, 1, byTag["api.logout"])
}

func TestHandleCustomMetricName(t *testing.T) {
	mp, reader := newTestMeterProvider()
	h, err := New(WithMeterProvider(mp), WithMetricName("app.events"))
	require.NoError(t, err)

	require.NoError(t, h.Handle(context.Background(), testRecord("a", 1)))
	sum := collectSum(t, reader, "app.events")
	require.Len(t, sum.DataPoints, 1)
}

func TestHandleSessionAttribute(t *testing.T) {
	mp, reader := newTestMeterProvider()
	h, err := New(WithMeterProvider(mp), WithSessionAttribute())
	require.NoError(t, err)

	require.NoError(t, h.Handle(context.Background(), testRecord("a", 1)))

	sum := collectSum(t, reader, DefaultMetricName)
	require.Len(t, sum.DataPoints, 1)
	sess, ok := sum.DataPoints[0].Attributes.Value(attribute.Key("session_id"))
	require.True(t, ok)
	assert.Equal(t, "sess-1", sess.AsString())
}

func TestHandleCanceledContext(t *testing.T) {
	mp, reader := newTestMeterProvider()
	h, err := New(WithMeterProvider(mp))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// context 已取消仍应记录
	require.NoError(t, h.Handle(ctx, testRecord("a", 1)))

	sum := collectSum(t, reader, DefaultMetricName)
	require.Len(t, sum.DataPoints, 1)
}

func TestDispatchThroughMetr(t *testing.T) {
	mp, reader := newTestMeterProvider()
	h, err := New(WithMeterProvider(mp))
	require.NoError(t, err)

	reg := metr.NewRegistry()
	m := reg.MustGet("api.login")
	require.NoError(t, reg.MustGet("api").AddHandler(h))

	// 挂在父节点上的 Sink 按原始标签记录子节点的值
	require.NoError(t, m.Rec(context.Background(), 3))

	sum := collectSum(t, reader, DefaultMetricName)
	require.Len(t, sum.DataPoints, 1)
	tag, ok := sum.DataPoints[0].Attributes.Value(attribute.Key("tag"))
	require.True(t, ok)
	assert.Equal(t, "api.login", tag.AsString())
	assert.EqualValues(t, 3, sum.DataPoints[0].Value)
}
