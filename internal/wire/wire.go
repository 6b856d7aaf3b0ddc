//go:build wireinject
// +build wireinject

package wire

import (
	"github.com/google/wire"
	"github.com/pyassist/backend/internal/application"
	appRAG "github.com/pyassist/backend/internal/application/rag"
	"github.com/pyassist/backend/internal/application/transcribe"
	"github.com/pyassist/backend/internal/infrastructure"
	"github.com/pyassist/backend/internal/infrastructure/config"
	"github.com/pyassist/backend/internal/infrastructure/metrics"
	"github.com/pyassist/backend/internal/infrastructure/prompt"
	"github.com/pyassist/backend/internal/interfaces"
)

// InitializeAll 初始化所有服务（HTTP + MCP），返回的清理函数按逆序释放资源
func InitializeAll(cfg *config.Config) (*App, func(), error) {
	wire.Build(
		// 按层组合 ProviderSet
		infrastructure.ProviderSet, // 基础设施层
		application.ProviderSet,    // 应用层
		interfaces.ProviderSet,     // 接口层
		// 接口绑定：application 端口 -> infrastructure 实现
		wire.Bind(new(appRAG.SystemPromptSource), new(*prompt.Store)),
		wire.Bind(new(appRAG.Observer), new(*metrics.Metrics)),
		wire.Bind(new(transcribe.Observer), new(*metrics.Metrics)),
		NewApp, // 组合所有服务的应用结构
	)
	return nil, nil, nil
}
