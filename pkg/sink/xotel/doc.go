// Package xotel 提供桥接到 OpenTelemetry 指标体系的 Sink。
//
// # 设计理念
//
// 每条 Record 转换为一次 Int64Counter.Add，节点标签作为
// metric attribute 附带。会话 ID 基数过高，默认不作为
// attribute 上报，可通过选项开启。
//
// # 快速开始
//
//	h, err := xotel.New(xotel.WithMeterProvider(provider))
//	if err != nil { ... }
//	_ = metr.MustGet("api.login").AddHandler(h)
package xotel
