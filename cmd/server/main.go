// @title PyAssist Backend API
// @version 1.0
// @description 基于 FAQ 检索增强的对话与语音转写服务
// @host localhost:8000
// @BasePath /api/v1
// @schemes http
package main

import (
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/pyassist/backend/internal/infrastructure/config"
	applog "github.com/pyassist/backend/internal/infrastructure/log"
	"github.com/pyassist/backend/internal/infrastructure/singleton"
	"github.com/pyassist/backend/internal/wire"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (defaults to $PYASSIST_CONFIG)")
	flag.Parse()

	// 初始化日志系统
	applog.Init(nil)
	logger := applog.GetLogger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Wire 自动生成的初始化函数
	app, cleanup, err := wire.InitializeAll(cfg)
	if err != nil {
		logger.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	if err := app.Start(); err != nil {
		if errors.Is(err, singleton.ErrAlreadyRunning) {
			// 已有实例运行，直接退出
			logger.Info("Another instance is already running, exiting", "addr", cfg.Server.HTTPAddr)
			cleanup()
			os.Exit(0)
		}
		logger.Error("Failed to start application", "error", err)
		cleanup()
		os.Exit(1)
	}

	// 优雅关闭
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigChan:
	case err := <-app.Errors():
		logger.Error("Application failed", "error", err)
	}

	logger.Info("Shutting down application...")
	if err := app.Stop(); err != nil {
		logger.Error("Error during application shutdown", "error", err)
	}
	logger.Info("Application stopped")
}
