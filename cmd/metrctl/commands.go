package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/metr/pkg/config/xconf"
	"github.com/omeyang/metr/pkg/metr"
	"github.com/omeyang/metr/pkg/sink/xslog"
)

// usageError 表示参数错误，run 将其映射为退出码 2。
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

// 创建所有子命令。
func createCommands() []*cli.Command {
	return []*cli.Command{
		createCheckCommand(),
		createEmitCommand(),
	}
}

// createCheckCommand 创建 check 子命令（校验配置文件）。
func createCheckCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "校验配置文件并打印生效配置",
		Action: func(_ context.Context, cmd *cli.Command) error {
			path := cmd.String("config")
			if path == "" {
				return &usageError{msg: "check 需要 --config 参数"}
			}
			return cmdCheck(os.Stdout, path)
		},
	}
}

// createEmitCommand 创建 emit 子命令（发送一条测试记录）。
func createEmitCommand() *cli.Command {
	return &cli.Command{
		Name:  "emit",
		Usage: "通过日志 Sink 发送一条测试记录",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "tag",
				Usage: "记录的节点标签，例如 api.login",
			},
			&cli.IntFlag{
				Name:  "value",
				Usage: "记录的整数值",
				Value: 1,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			tag := cmd.String("tag")
			if tag == "" {
				return &usageError{msg: "emit 需要 --tag 参数"}
			}
			return cmdEmit(ctx, os.Stderr, cmd.String("config"), tag, int64(cmd.Int("value")))
		},
	}
}

// loadSettings 加载配置；path 为空时使用默认配置。
func loadSettings(path string) (xconf.Settings, error) {
	if path == "" {
		return xconf.DefaultSettings(), nil
	}
	cfg, err := xconf.New(path)
	if err != nil {
		return xconf.Settings{}, err
	}
	return xconf.LoadSettings(cfg)
}

// cmdCheck 校验配置文件并打印生效配置。
func cmdCheck(w io.Writer, path string) error {
	s, err := loadSettings(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "配置文件: %s\n", path)
	fmt.Fprintf(w, "log:        enabled=%t level=%s\n", s.Log.Enabled, s.Log.Level)
	fmt.Fprintf(w, "clickhouse: enabled=%t table=%s retry=%d breaker=%t\n",
		s.Sinks.ClickHouse.Enabled, s.Sinks.ClickHouse.Table,
		s.Sinks.ClickHouse.RetryAttempts, s.Sinks.ClickHouse.Breaker.Enabled)
	fmt.Fprintf(w, "mongo:      enabled=%t database=%s collection=%s\n",
		s.Sinks.Mongo.Enabled, s.Sinks.Mongo.Database, s.Sinks.Mongo.Collection)
	fmt.Fprintf(w, "otel:       enabled=%t metric=%s\n",
		s.Sinks.OTel.Enabled, s.Sinks.OTel.MetricName)
	fmt.Fprintln(w, "配置校验通过")
	return nil
}

// cmdEmit 通过日志 Sink 发送一条测试记录。
// 只接日志 Sink：emit 用于验证标签与分发链路，不触达外部存储。
func cmdEmit(ctx context.Context, logOut io.Writer, path, tag string, value int64) error {
	s, err := loadSettings(path)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if s.Log.Enabled {
		if level, err = s.Log.SlogLevel(); err != nil {
			return err
		}
	}

	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))
	sink := xslog.New(logger,
		xslog.WithLevel(level),
		xslog.WithMessage(s.Log.Message),
	)

	reg := metr.NewRegistry()
	m, err := reg.Get(tag)
	if err != nil {
		return &usageError{msg: fmt.Sprintf("非法标签 %q: %v", tag, err)}
	}
	if err := m.AddHandler(sink); err != nil {
		return err
	}
	return m.Rec(ctx, value)
}
