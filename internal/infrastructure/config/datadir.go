package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvDataDir 数据目录环境变量名
	EnvDataDir = "PYASSIST_DATA_DIR"
	// DefaultDataDirName 默认数据目录名
	DefaultDataDirName = ".pyassist"
)

// DataDir 数据根目录，优先读取 PYASSIST_DATA_DIR，默认 ~/.pyassist
// 无法获取用户目录时回退到当前目录下的 .pyassist
func DataDir() string {
	if dir := os.Getenv(EnvDataDir); dir != "" {
		return dir
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return DefaultDataDirName
	}
	return filepath.Join(homeDir, DefaultDataDirName)
}
