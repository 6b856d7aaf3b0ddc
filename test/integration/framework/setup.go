//go:build integration
// +build integration

// 测试框架的全局设置和清理
package framework

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
)

var (
	// BinaryPath 编译后的服务二进制路径
	BinaryPath string
)

// BuildServer 编译 pyassist-server 二进制（在 TestMain 中调用一次）
func BuildServer() error {
	_, currentFile, _, _ := runtime.Caller(0)
	rootDir := filepath.Join(filepath.Dir(currentFile), "..", "..", "..")

	tmpDir, err := os.MkdirTemp("", "pyassist-test-bin-")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}

	binaryName := "pyassist-server"
	if runtime.GOOS == "windows" {
		binaryName += ".exe"
	}
	BinaryPath = filepath.Join(tmpDir, binaryName)

	cmd := exec.Command("go", "build", "-o", BinaryPath, "./cmd/server")
	cmd.Dir = rootDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to build server binary: %w", err)
	}
	return nil
}

// Cleanup 清理构建的二进制（在 TestMain 结束时调用）
func Cleanup() {
	if BinaryPath != "" {
		os.RemoveAll(filepath.Dir(BinaryPath))
	}
}

// RequireServerBinary 检查二进制是否已构建
func RequireServerBinary(t *testing.T) {
	t.Helper()
	if BinaryPath == "" {
		t.Fatal("server binary not built, call BuildServer() in TestMain first")
	}
	if _, err := os.Stat(BinaryPath); os.IsNotExist(err) {
		t.Fatal("server binary not found at: " + BinaryPath)
	}
}
