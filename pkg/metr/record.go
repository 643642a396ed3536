package metr

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Record
// =============================================================================

// Record 表示一次不可变观测。
//
// 构造后字段不再变化；向上传播时祖先节点收到同一个 Record 值，
// Tag 始终是发起观测的节点，不会被改写为祖先的 tag。
type Record struct {
	// Created 是观测构造时的挂钟时间。
	// 同一会话内的 Record 时间单调不减，但不保证严格递增。
	Created time.Time

	// Tag 是发起观测的 Metr 节点标识。
	Tag string

	// Value 是整数观测值。
	Value int64

	// SessionID 是进程生命周期会话标识，同一进程内所有 Record 共享。
	SessionID string
}

// String 返回 Record 的文本表示，与 TextFormatter 输出一致。
func (r Record) String() string {
	return fmt.Sprintf("[session:%s][created:%s][tag:%s][value:%d]",
		r.SessionID, r.Created.Format(time.RFC3339Nano), r.Tag, r.Value)
}

// =============================================================================
// 会话标识
// =============================================================================

// sessionID 进程启动后首次读取时生成，之后只读。
var sessionID = sync.OnceValue(uuid.NewString)

// SessionID 返回进程生命周期会话标识（uuid4 字符串）。
// 用于关联同一次运行产生的全部观测点。
func SessionID() string {
	return sessionID()
}

// newRecord 以当前时间和进程会话标识构造 Record。
func newRecord(tag string, value int64) Record {
	return Record{
		Created:   time.Now(),
		Tag:       tag,
		Value:     value,
		SessionID: SessionID(),
	}
}

// =============================================================================
// Formatter
// =============================================================================

// Formatter 把 Record 转换为面向特定 Sink 的序列化表示。
// 纯函数，与节点树和分发逻辑无交互。
type Formatter interface {
	Format(r Record) string
}

// TextFormatter 把 Record 转换为文本行。
type TextFormatter struct{}

// Format 实现 Formatter 接口。
func (TextFormatter) Format(r Record) string {
	return r.String()
}
