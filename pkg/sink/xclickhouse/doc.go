// Package xclickhouse 提供写入 ClickHouse 的数据库 Sink。
//
// # 设计理念
//
// 每条 Record 作为一行参数化插入到构造时指定的表：
//
//	INSERT INTO <table> (created, tag, value, session_id) VALUES (?, ?, ?, ?)
//
// 表名等配置在构造时传入且不可变，不存在可被运行时改写的共享状态。
// 指标核心不做重试；本包的重试（retry-go）与熔断（gobreaker）是
// Sink 自身的恢复策略，按需通过选项开启。
//
// # 快速开始
//
//	h, err := xclickhouse.New(conn,
//	    xclickhouse.WithTable("app_metrics"),
//	    xclickhouse.WithRetry(3, 50*time.Millisecond),
//	)
//	if err != nil { ... }
//	_ = metr.MustGet("api.login").AddHandler(h)
package xclickhouse
