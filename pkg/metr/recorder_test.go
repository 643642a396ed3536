package metr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountScope(t *testing.T) {
	r := NewRegistry()
	log := &callLog{}
	m := r.MustGet("counter.scope")
	require.NoError(t, m.AddHandler(log.handler("h")))

	err := m.Count(context.Background(), func(c *Counter) error {
		c.Add(1)
		c.Add(2)
		c.Add(3)
		return nil
	})
	require.NoError(t, err)

	// 恰好一条 Record，值为最终总和
	require.Len(t, log.records, 1)
	assert.EqualValues(t, 6, log.records[0].Value)
	assert.Equal(t, "counter.scope", log.records[0].Tag)
}

func TestCountEmptyScope(t *testing.T) {
	r := NewRegistry()
	log := &callLog{}
	m := r.MustGet("counter.empty")
	require.NoError(t, m.AddHandler(log.handler("h")))

	require.NoError(t, m.Count(context.Background(), func(_ *Counter) error { return nil }))

	// 零次 Add 提交 0
	require.Len(t, log.records, 1)
	assert.EqualValues(t, 0, log.records[0].Value)
}

func TestCountCommitsOnError(t *testing.T) {
	r := NewRegistry()
	log := &callLog{}
	m := r.MustGet("counter.fail")
	require.NoError(t, m.AddHandler(log.handler("h")))
	scopeErr := errors.New("scope failed")

	err := m.Count(context.Background(), func(c *Counter) error {
		c.Add(4)
		return scopeErr
	})
	assert.ErrorIs(t, err, scopeErr)

	// 作用域出错同样提交，且恰好一次
	require.Len(t, log.records, 1)
	assert.EqualValues(t, 4, log.records[0].Value)
}

func TestCountExplicitCloseInScope(t *testing.T) {
	r := NewRegistry()
	log := &callLog{}
	m := r.MustGet("counter.explicit")
	require.NoError(t, m.AddHandler(log.handler("h")))

	err := m.Count(context.Background(), func(c *Counter) error {
		c.Add(8)
		return c.Close(context.Background())
	})
	require.NoError(t, err)

	// fn 内已提交，defer 不重复提交
	require.Len(t, log.records, 1)
	assert.EqualValues(t, 8, log.records[0].Value)
}

func TestCountNilFunc(t *testing.T) {
	r := NewRegistry()
	m := r.MustGet("counter.nil")
	assert.ErrorIs(t, m.Count(context.Background(), nil), ErrNilFunc)
}

func TestCounterManual(t *testing.T) {
	r := NewRegistry()
	log := &callLog{}
	m := r.MustGet("counter.manual")
	require.NoError(t, m.AddHandler(log.handler("h")))

	c := m.Counter()
	c.Add(8)
	c.Add(7)
	assert.EqualValues(t, 15, c.Sum())
	require.NoError(t, c.Close(context.Background()))

	// Close 幂等：第二次报错且不再分发
	assert.ErrorIs(t, c.Close(context.Background()), ErrCounterClosed)
	require.Len(t, log.records, 1)
	assert.EqualValues(t, 15, log.records[0].Value)

	// 提交后 Add 不生效
	c.Add(100)
	assert.EqualValues(t, 15, c.Sum())
}

func TestCounterNegativeDelta(t *testing.T) {
	r := NewRegistry()
	log := &callLog{}
	m := r.MustGet("counter.negative")
	require.NoError(t, m.AddHandler(log.handler("h")))

	c := m.Counter()
	c.Add(10)
	c.Add(-3)
	require.NoError(t, c.Close(context.Background()))
	require.Len(t, log.records, 1)
	assert.EqualValues(t, 7, log.records[0].Value)
}

func TestErrorRecorderCounts(t *testing.T) {
	r := NewRegistry()
	log := &callLog{}
	m := r.MustGet("errs.assert")
	require.NoError(t, m.AddHandler(log.handler("h")))
	target := errors.New("assertion failed")

	calls := 0
	fn := m.ErrorRecorder(target).Wrap(func(_ context.Context) error {
		calls++
		if calls%2 == 1 {
			return target
		}
		return nil
	})

	var failed int
	for range 5 {
		if err := fn(context.Background()); err != nil {
			// 错误原样透传给调用方
			assert.ErrorIs(t, err, target)
			failed++
		}
	}

	// 5 次调用中 3 次出错，每次恰好一条 value=1 的 Record
	assert.Equal(t, 3, failed)
	require.Len(t, log.records, 3)
	for _, rec := range log.records {
		assert.EqualValues(t, 1, rec.Value)
		assert.Equal(t, "errs.assert", rec.Tag)
	}
}

func TestErrorRecorderUnmatched(t *testing.T) {
	r := NewRegistry()
	log := &callLog{}
	m := r.MustGet("errs.unmatched")
	require.NoError(t, m.AddHandler(log.handler("h")))
	target := errors.New("target")
	other := errors.New("other")

	err := m.ErrorRecorder(target).Do(context.Background(), func(_ context.Context) error {
		return other
	})

	// 未命中目标：不产生 Record，错误原样返回
	assert.Equal(t, other, err)
	assert.Empty(t, log.records)
}

func TestErrorRecorderSuccessPassThrough(t *testing.T) {
	r := NewRegistry()
	log := &callLog{}
	m := r.MustGet("errs.ok")
	require.NoError(t, m.AddHandler(log.handler("h")))

	err := m.ErrorRecorder(errors.New("x")).Do(context.Background(), func(_ context.Context) error {
		return nil
	})
	assert.NoError(t, err)
	assert.Empty(t, log.records)
}

func TestErrorRecorderAnyError(t *testing.T) {
	r := NewRegistry()
	log := &callLog{}
	m := r.MustGet("errs.any")
	require.NoError(t, m.AddHandler(log.handler("h")))
	boom := errors.New("boom")

	// 无目标时匹配任意非 nil 错误
	err := m.ErrorRecorder().Do(context.Background(), func(_ context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	require.Len(t, log.records, 1)
	assert.EqualValues(t, 1, log.records[0].Value)
}

func TestErrorRecorderWrappedTarget(t *testing.T) {
	r := NewRegistry()
	log := &callLog{}
	m := r.MustGet("errs.wrapped")
	require.NoError(t, m.AddHandler(log.handler("h")))
	target := errors.New("deadline")

	// errors.Is 沿包装链匹配
	err := m.ErrorRecorder(target).Do(context.Background(), func(_ context.Context) error {
		return errors.Join(errors.New("outer"), target)
	})
	assert.ErrorIs(t, err, target)
	require.Len(t, log.records, 1)
}

func TestErrorRecorderDispatchFailure(t *testing.T) {
	r := NewRegistry()
	sinkErr := errors.New("sink down")
	appErr := errors.New("app failed")
	m := r.MustGet("errs.sinkfail")
	require.NoError(t, m.AddHandler(HandlerFunc(func(_ context.Context, _ Record) error {
		return sinkErr
	})))

	err := m.ErrorRecorder(appErr).Do(context.Background(), func(_ context.Context) error {
		return appErr
	})

	// 原错误绝不被吞掉；分发失败以 Join 附带
	assert.ErrorIs(t, err, appErr)
	assert.ErrorIs(t, err, sinkErr)
}

func TestErrorRecorderNilFunc(t *testing.T) {
	r := NewRegistry()
	m := r.MustGet("errs.nil")
	rec := m.ErrorRecorder()
	assert.ErrorIs(t, rec.Do(context.Background(), nil), ErrNilFunc)
	assert.ErrorIs(t, rec.Wrap(nil)(context.Background()), ErrNilFunc)
}
