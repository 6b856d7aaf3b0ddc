package log

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pyassist/backend/internal/infrastructure/log/handler"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ServiceName 日志中的服务标识
const ServiceName = "pyassist-backend"

// 全局 logger 实例
var (
	defaultLogger *slog.Logger
	debugMode     bool
)

// Init 初始化日志系统
func Init(cfg *Config) {
	if cfg == nil {
		cfg = NewConfigFromEnv()
	}
	defaultLogger = New(cfg, openOutput(cfg))
	debugMode = strings.ToLower(cfg.Level) == "debug"

	slog.SetDefault(defaultLogger)
}

// New 按配置在指定输出上创建 logger，请求 ID 与运行 ID 会从 context 中自动附加
func New(cfg *Config, out io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: cfg.AddSource,
	}

	// 根据格式选择处理器
	var logHandler slog.Handler
	if strings.ToLower(cfg.Format) == "json" {
		logHandler = slog.NewJSONHandler(out, opts)
	} else {
		logHandler = slog.NewTextHandler(out, opts)
	}

	// 添加服务标识
	return slog.New(handler.NewContextHandler(logHandler, LogCtxFromContext).WithAttrs([]slog.Attr{
		slog.String("service", ServiceName),
	}))
}

// openOutput 解析输出目标，文件输出使用 lumberjack 轮转
func openOutput(cfg *Config) io.Writer {
	if path := cfg.FilePath(); path != "" {
		return &lumberjack.Logger{
			Filename:   path,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
	}
	if strings.EqualFold(cfg.Output, "stderr") {
		return os.Stderr
	}
	return os.Stdout
}

// GetLogger 获取默认 logger
func GetLogger() *slog.Logger {
	if defaultLogger == nil {
		// 未初始化，使用默认配置
		Init(nil)
	}
	return defaultLogger
}

// With 创建带有额外字段的 logger
func With(args ...any) *slog.Logger {
	return GetLogger().With(args...)
}

// NewModuleLogger 为特定模块创建 logger
func NewModuleLogger(module, component string) *slog.Logger {
	return GetLogger().With(
		slog.String("module", module),
		slog.String("component", component),
	)
}

// IsDebugMode 检查是否为调试模式
func IsDebugMode() bool {
	return debugMode
}

// parseLevel 解析日志级别
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
