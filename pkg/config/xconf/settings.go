package xconf

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// =============================================================================
// 指标管线配置
// =============================================================================

// Settings 是指标管线的类型化配置。
// 各 Sink 默认关闭，按需在配置文件中开启。
type Settings struct {
	Log   LogSettings   `koanf:"log"`
	Sinks SinksSettings `koanf:"sinks"`
}

// LogSettings 是日志 Sink 的配置。
type LogSettings struct {
	Enabled bool   `koanf:"enabled"`
	Level   string `koanf:"level"`
	Message string `koanf:"message"`
}

// SinksSettings 汇总各后端 Sink 的配置。
type SinksSettings struct {
	ClickHouse ClickHouseSettings `koanf:"clickhouse"`
	Mongo      MongoSettings      `koanf:"mongo"`
	OTel       OTelSettings       `koanf:"otel"`
}

// ClickHouseSettings 是 ClickHouse Sink 的配置。
type ClickHouseSettings struct {
	Enabled       bool            `koanf:"enabled"`
	Addr          []string        `koanf:"addr"`
	Database      string          `koanf:"database"`
	Table         string          `koanf:"table"`
	WriteTimeout  time.Duration   `koanf:"write_timeout"`
	RetryAttempts uint            `koanf:"retry_attempts"`
	RetryDelay    time.Duration   `koanf:"retry_delay"`
	Breaker       BreakerSettings `koanf:"breaker"`
}

// BreakerSettings 是熔断器配置。
type BreakerSettings struct {
	Enabled  bool          `koanf:"enabled"`
	Failures uint32        `koanf:"failures"`
	Timeout  time.Duration `koanf:"timeout"`
}

// MongoSettings 是 MongoDB Sink 的配置。
type MongoSettings struct {
	Enabled      bool          `koanf:"enabled"`
	URI          string        `koanf:"uri"`
	Database     string        `koanf:"database"`
	Collection   string        `koanf:"collection"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// OTelSettings 是 OpenTelemetry 桥接 Sink 的配置。
type OTelSettings struct {
	Enabled          bool   `koanf:"enabled"`
	MetricName       string `koanf:"metric_name"`
	SessionAttribute bool   `koanf:"session_attribute"`
}

// DefaultSettings 返回默认配置：只开启日志 Sink。
func DefaultSettings() Settings {
	return Settings{
		Log: LogSettings{
			Enabled: true,
			Level:   "info",
			Message: "metr record",
		},
		Sinks: SinksSettings{
			ClickHouse: ClickHouseSettings{
				Table:      "metr_records",
				RetryDelay: 50 * time.Millisecond,
				Breaker: BreakerSettings{
					Failures: 5,
					Timeout:  30 * time.Second,
				},
			},
			Mongo: MongoSettings{
				Database:   "metrics",
				Collection: "records",
			},
			OTel: OTelSettings{
				MetricName: "metr.records",
			},
		},
	}
}

// LoadSettings 从 Config 加载指标管线配置。
// 未出现在配置文件中的字段保持默认值；加载后做合法性校验。
func LoadSettings(cfg Config) (Settings, error) {
	s := DefaultSettings()
	if cfg == nil {
		return s, nil
	}
	if err := cfg.Unmarshal("", &s); err != nil {
		return Settings{}, err
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate 校验配置的合法性。
func (s Settings) Validate() error {
	if s.Log.Enabled {
		if _, err := s.Log.SlogLevel(); err != nil {
			return err
		}
	}
	ch := s.Sinks.ClickHouse
	if ch.Enabled {
		if len(ch.Addr) == 0 {
			return fmt.Errorf("%w: clickhouse enabled without addr", ErrInvalidSettings)
		}
		if ch.Table == "" {
			return fmt.Errorf("%w: clickhouse enabled without table", ErrInvalidSettings)
		}
		if ch.WriteTimeout < 0 || ch.RetryDelay < 0 {
			return fmt.Errorf("%w: negative clickhouse timeout", ErrInvalidSettings)
		}
	}
	mg := s.Sinks.Mongo
	if mg.Enabled {
		if mg.URI == "" {
			return fmt.Errorf("%w: mongo enabled without uri", ErrInvalidSettings)
		}
		if mg.Database == "" || mg.Collection == "" {
			return fmt.Errorf("%w: mongo enabled without database/collection", ErrInvalidSettings)
		}
		if mg.WriteTimeout < 0 {
			return fmt.Errorf("%w: negative mongo timeout", ErrInvalidSettings)
		}
	}
	return nil
}

// SlogLevel 把配置的日志级别转换为 slog.Level。
func (l LogSettings) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(l.Level) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: unknown log level %q", ErrInvalidSettings, l.Level)
	}
}
