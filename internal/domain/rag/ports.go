package rag

import "context"

// Embedder 文本向量化
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex 向量索引查询，结果按相似度降序
type VectorIndex interface {
	Query(ctx context.Context, vector []float32, namespace string, topK int) ([]ScoredPoint, error)
}

// IndexProvisioner 索引初始化（一次性脚本使用，不参与请求处理）
type IndexProvisioner interface {
	Recreate(ctx context.Context, dimension uint64) error
	Upsert(ctx context.Context, namespace string, points []Point) error
}

// RunTracker 记录一次请求的运行参数
type RunTracker interface {
	StartRun(ctx context.Context, name string) (Run, error)
}

// Run 一次运行记录
type Run interface {
	ID() string
	LogParam(key string, value any)
	End(ctx context.Context, status string) error
}

// TokenCounter 估算文本的 token 数
type TokenCounter interface {
	CountTokens(text string) int
}
