package storage

import "github.com/google/wire"

// ProviderSet Storage 基础设施层 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideDB,            // 运行记录数据库
	ProvideRunRepository, // 运行记录仓储
	ProvideRunTracker,    // 作为 RunTracker 提供给对话服务
)
