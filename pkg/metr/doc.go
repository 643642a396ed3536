// Package metr 提供轻量级、可嵌入的层级指标记录核心。
//
// # 设计理念
//
// metr 不做缓冲、不做异步投递，只负责三件事：
//   - 全局唯一、按点分层寻址的指标节点（Metr）
//   - 并发安全的节点创建与查找（Registry）
//   - 每次观测值的同步分发与向上传播（Handler 扇出）
//
// 具体 Sink（日志输出、数据库写入等）是外部协作者，
// 只需实现 Handler 接口；见 pkg/sink 下各实现。
//
// # 核心概念
//
//   - Tag：点分字符串标识（如 "api.login.fail"），同时编码层级位置
//   - Metr：层级中的一个命名节点，持有 Handler 集合与父节点引用
//   - Record：一次不可变观测（created/tag/value/sessionID）
//   - Recorder：把应用事件整形为观测的策略（立即、累加、按错误计数）
//
// 一次 HandleValue 调用的分发顺序是确定的：先按注册顺序调用本节点
// 的 Handler，再沿父链逐级向上，每级同样按注册顺序。Record 在传播
// 过程中不被改写，祖先节点看到的 tag 仍是发起节点的 tag。
//
// # 快速开始
//
//	m, err := metr.Get("api.login")
//	if err != nil { ... }
//	m.AddHandler(sink)
//
//	// 立即记录单值
//	_ = m.Rec(ctx, 7)
//
//	// 作用域内累加，退出时一次性提交
//	_ = m.Count(ctx, func(c *metr.Counter) error {
//	    c.Add(2)
//	    c.Add(3)
//	    return nil
//	})
//
//	// 按错误种类计数，错误原样透传
//	do := m.ErrorRecorder(io.ErrUnexpectedEOF).Wrap(load)
//	err = do(ctx)
package metr
