package rag

import (
	"github.com/google/wire"
	"github.com/pyassist/backend/internal/domain/chat"
	domainRAG "github.com/pyassist/backend/internal/domain/rag"
	"github.com/pyassist/backend/internal/infrastructure/config"
)

// ProvideRetriever 根据索引配置创建检索器
func ProvideRetriever(embedder domainRAG.Embedder, index domainRAG.VectorIndex, cfg *config.IndexConfig) *Retriever {
	return NewRetriever(embedder, index, cfg.Namespace, MetadataKeys{
		Question: cfg.QuestionKey,
		Answer:   cfg.AnswerKey,
	})
}

// ProvideOrchestrator 创建编排器并挂上观测回调
func ProvideOrchestrator(
	retriever *Retriever,
	model chat.LanguageModel,
	prompt SystemPromptSource,
	observer Observer,
	indexCfg *config.IndexConfig,
	promptCfg *config.PromptConfig,
) *Orchestrator {
	o := NewOrchestrator(retriever, model, prompt, OrchestratorConfig{
		TopK:   indexCfg.TopK,
		Labels: domainRAG.LabelsFor(promptCfg.Language),
	})
	o.SetObserver(observer)
	return o
}

// ProviderSet RAG 应用层 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideRetriever,
	ProvideOrchestrator,
	NewChatService,
)
