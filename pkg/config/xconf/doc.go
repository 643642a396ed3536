// Package xconf 提供指标管线的配置加载能力。
//
// # 设计理念
//
// 基于 koanf 实现，支持 YAML 和 JSON 两种格式，
// 可从文件或字节数据（如 K8s ConfigMap）加载。
// 除通用的 Unmarshal 外，提供面向指标管线的类型化
// Settings 结构与一次性加载入口 LoadSettings。
//
// # 快速开始
//
//	cfg, err := xconf.New("/etc/metr/config.yaml")
//	if err != nil { ... }
//
//	settings, err := xconf.LoadSettings(cfg)
//	if err != nil { ... }
//
// 需要热更新时可监视配置文件：
//
//	w, _ := xconf.Watch(cfg, func(c xconf.Config, err error) { ... })
//	w.StartAsync()
//	defer w.Stop()
package xconf
