package singleton

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"syscall"
	"time"
)

// HealthCheckTimeout 健康检查超时时间
const HealthCheckTimeout = 2 * time.Second

// ErrAlreadyRunning 同一地址上已有健康的实例
var ErrAlreadyRunning = errors.New("another instance is already serving this address")

// Acquire 占用监听地址
// 地址被占用且 /health 正常时返回 ErrAlreadyRunning，调用者应直接退出
func Acquire(addr string) (net.Listener, error) {
	listener, err := net.Listen("tcp", addr)
	if err == nil {
		return listener, nil
	}

	if !isAddrInUse(err) {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	if isInstanceRunning(addr) {
		return nil, ErrAlreadyRunning
	}
	return nil, fmt.Errorf("address %s is in use but health check failed", addr)
}

// isAddrInUse 检查错误是否是地址已在使用
func isAddrInUse(err error) bool {
	if errors.Is(err, syscall.EADDRINUSE) {
		return true
	}

	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		return false
	}
	var sysErr *os.SyscallError
	if !errors.As(opErr.Err, &sysErr) {
		return false
	}

	// Windows: WSAEADDRINUSE (10048)
	errno, ok := sysErr.Err.(syscall.Errno)
	return ok && (errno == 10048 || errno == syscall.EADDRINUSE)
}

// probeURL 监听地址对应的本机健康检查地址
func probeURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr + "/health"
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port) + "/health"
}

// isInstanceRunning 检查是否有实例在运行
func isInstanceRunning(addr string) bool {
	client := &http.Client{Timeout: HealthCheckTimeout}
	resp, err := client.Get(probeURL(addr))
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
