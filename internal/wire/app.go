package wire

import (
	"log/slog"

	"github.com/pyassist/backend/internal/infrastructure/config"
	applog "github.com/pyassist/backend/internal/infrastructure/log"
	"github.com/pyassist/backend/internal/infrastructure/singleton"
	"github.com/pyassist/backend/internal/interfaces"
)

// App 应用主结构，组合所有服务
type App struct {
	HTTPServer *interfaces.HTTPServer
	MCPServer  *interfaces.MCPServer
	addr       string
	errCh      chan error
	logger     *slog.Logger
}

// NewApp 创建应用实例
func NewApp(
	httpServer *interfaces.HTTPServer,
	mcpServer *interfaces.MCPServer,
	serverCfg *config.ServerConfig,
) *App {
	return &App{
		HTTPServer: httpServer,
		MCPServer:  mcpServer,
		addr:       serverCfg.HTTPAddr,
		errCh:      make(chan error, 1),
		logger:     applog.NewModuleLogger("app", "main"),
	}
}

// Start 占用监听地址并在后台启动 HTTP 服务器
// 同一地址已有健康实例时返回 singleton.ErrAlreadyRunning
func (a *App) Start() error {
	a.logger.Info("Starting PyAssist backend application", "addr", a.addr)

	listener, err := singleton.Acquire(a.addr)
	if err != nil {
		return err
	}

	// MCP 通过 HTTP 的 /mcp/sse 提供服务，不需要单独启动
	go func() {
		if err := a.HTTPServer.Serve(listener); err != nil {
			a.logger.Error("HTTP server stopped unexpectedly", "error", err)
			a.errCh <- err
		}
	}()

	a.logger.Info("PyAssist backend application started successfully")
	return nil
}

// Errors HTTP 服务器异常退出时收到错误
func (a *App) Errors() <-chan error {
	return a.errCh
}

// Stop 停止所有服务
func (a *App) Stop() error {
	a.logger.Info("Stopping PyAssist backend application")

	if err := a.HTTPServer.Stop(); err != nil {
		a.logger.Error("Failed to stop HTTP server", "error", err)
		return err
	}

	a.logger.Info("PyAssist backend application stopped successfully")
	return nil
}
