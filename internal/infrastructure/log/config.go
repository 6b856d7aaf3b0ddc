package log

import (
	"os"
	"strconv"
	"strings"
)

// Config 日志配置
type Config struct {
	// Level 日志级别：debug, info, warn, error
	Level string `json:"level" yaml:"level" env:"LOG_LEVEL"`

	// Format 日志格式：console, json
	Format string `json:"format" yaml:"format" env:"LOG_FORMAT"`

	// Output 输出目标：stdout, stderr, file:/path/to/log
	Output string `json:"output" yaml:"output" env:"LOG_OUTPUT"`

	// AddSource 是否添加源文件信息（开发环境）
	AddSource bool `json:"add_source" yaml:"add_source" env:"LOG_ADD_SOURCE"`

	// MaxSizeMB 文件输出时单个日志文件的最大大小
	MaxSizeMB int `json:"max_size_mb" yaml:"max_size_mb" env:"LOG_MAX_SIZE_MB"`

	// MaxBackups 保留的轮转文件数
	MaxBackups int `json:"max_backups" yaml:"max_backups" env:"LOG_MAX_BACKUPS"`

	// MaxAgeDays 轮转文件保留天数
	MaxAgeDays int `json:"max_age_days" yaml:"max_age_days" env:"LOG_MAX_AGE_DAYS"`
}

// NewConfigFromEnv 从环境变量创建配置
func NewConfigFromEnv() *Config {
	cfg := &Config{
		Level:      getEnvWithDefault("LOG_LEVEL", "info"),
		Format:     getEnvWithDefault("LOG_FORMAT", "console"),
		Output:     getEnvWithDefault("LOG_OUTPUT", "stdout"),
		AddSource:  getEnvBool("LOG_ADD_SOURCE", false),
		MaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 5),
		MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
		MaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 14),
	}

	// 在开发环境自动设置
	if cfg.isDevelopment() {
		cfg.Level = "debug"
		cfg.Format = "console"
		cfg.AddSource = true
	}

	return cfg
}

// FilePath 返回文件输出路径，非文件输出返回空串
func (c *Config) FilePath() string {
	path, ok := strings.CutPrefix(c.Output, "file:")
	if !ok {
		return ""
	}
	return strings.TrimSpace(path)
}

// isDevelopment 检查是否为开发环境
func (c *Config) isDevelopment() bool {
	env := getEnvWithDefault("ENV", "production")
	return strings.ToLower(env) == "development"
}

// getEnvWithDefault 获取环境变量，带默认值
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvBool 获取布尔型环境变量
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return boolValue
}

// getEnvInt 获取整型环境变量
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
