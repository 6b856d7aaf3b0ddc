package rag

import (
	"context"

	domainRAG "github.com/pyassist/backend/internal/domain/rag"
)

// ContextRetriever 上下文检索接口
type ContextRetriever interface {
	// Retrieve 检索与查询最相近的 k 条问答对，按相似度降序
	Retrieve(ctx context.Context, query string, k int) ([]domainRAG.Match, error)
}

// SystemPromptSource 系统提示来源（文件热加载或固定文本）
type SystemPromptSource interface {
	SystemPrompt() string
}

// StaticPrompt 固定系统提示
type StaticPrompt string

// SystemPrompt 返回固定文本
func (p StaticPrompt) SystemPrompt() string { return string(p) }

// TokenCounter 估算提示的 token 数
type TokenCounter = domainRAG.TokenCounter

// RunTracker 运行记录端口
type RunTracker = domainRAG.RunTracker

// Run 一次运行记录
type Run = domainRAG.Run

// Observer 编排过程的观测回调（指标等），实现必须并发安全
type Observer interface {
	ObserveRetrieval(seconds float64, matches int, err error)
	ObserveGeneration(branch string, seconds float64, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveRetrieval(float64, int, error)     {}
func (nopObserver) ObserveGeneration(string, float64, error) {}
