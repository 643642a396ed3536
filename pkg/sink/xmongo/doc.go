// Package xmongo 提供写入 MongoDB 的文档 Sink。
//
// # 设计理念
//
// 每条 Record 作为一个文档写入构造时指定的集合：
//
//	{created: <time>, tag: <string>, value: <int64>, session_id: <string>}
//
// 集合由调用方创建并传入，本包不管理客户端的生命周期，
// Close 只停用 Sink 本身。
//
// # 快速开始
//
//	coll := client.Database("metrics").Collection("records")
//	h, err := xmongo.New(coll)
//	if err != nil { ... }
//	_ = metr.MustGet("api.login").AddHandler(h)
package xmongo
