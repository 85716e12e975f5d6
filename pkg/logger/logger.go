package logger

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/config"
)

const serviceName = "attendance"

// NewLogger 根据配置初始化 Zap 日志实例
//
//   - format=console：开发模式，彩色级别、不采样
//   - 其他：JSON，ISO8601 时间；同一条消息每秒超过 100 条后按 1/100 采样，
//     避免上课高峰的签到日志刷屏
//   - output 支持逗号分隔的多个目标，如 "stderr,/var/log/attendance.log"
func NewLogger(cfg *config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("无效的日志级别 %q: %w", cfg.Level, err)
	}

	sink, _, err := zap.Open(outputPaths(cfg.Output)...)
	if err != nil {
		return nil, fmt.Errorf("打开日志输出失败: %w", err)
	}

	console := cfg.Format == "console"
	core := zapcore.NewCore(newEncoder(console), sink, zap.NewAtomicLevelAt(level))
	if !console {
		core = zapcore.NewSamplerWithOptions(core, time.Second, 100, 100)
	}

	opts := []zap.Option{
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.ErrorOutput(sink),
		zap.Fields(zap.String("service", serviceName)),
	}
	if console {
		opts = append(opts, zap.Development())
	}
	return zap.New(core, opts...), nil
}

func newEncoder(console bool) zapcore.Encoder {
	if console {
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		return zapcore.NewConsoleEncoder(ec)
	}
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "ts"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.EncodeDuration = zapcore.MillisDurationEncoder
	return zapcore.NewJSONEncoder(ec)
}

// outputPaths 为空时写 stderr
func outputPaths(output string) []string {
	var paths []string
	for _, p := range strings.Split(output, ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return []string{"stderr"}
	}
	return paths
}
