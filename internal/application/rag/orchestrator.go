package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pyassist/backend/internal/domain/chat"
	domainRAG "github.com/pyassist/backend/internal/domain/rag"
	"github.com/pyassist/backend/internal/infrastructure/log"
)

// Branch 生成分支
type Branch string

const (
	// BranchRetrieval 检索增强分支
	BranchRetrieval Branch = "rag"
	// BranchDirect 直接对话分支（没有可检索的查询文本，例如只有图片）
	BranchDirect Branch = "direct"
)

// Result 一次生成的结果
type Result struct {
	Response  string
	Branch    Branch
	QueryText string
	Matches   []domainRAG.Match
	// Outbound 实际发送给模型的消息（含系统提示），调用方的历史不受影响
	Outbound chat.History
}

// OrchestratorConfig 编排参数
type OrchestratorConfig struct {
	TopK   int
	Labels domainRAG.Labels
}

// Orchestrator 根据最后一条用户消息选择检索分支或直接对话分支，并调用语言模型
type Orchestrator struct {
	retriever ContextRetriever
	model     chat.LanguageModel
	prompt    SystemPromptSource
	config    OrchestratorConfig
	observer  Observer
	logger    *slog.Logger
}

// NewOrchestrator 创建编排器
func NewOrchestrator(
	retriever ContextRetriever,
	model chat.LanguageModel,
	prompt SystemPromptSource,
	config OrchestratorConfig,
) *Orchestrator {
	if config.TopK <= 0 {
		config.TopK = DefaultTopK
	}
	if config.Labels == (domainRAG.Labels{}) {
		config.Labels = domainRAG.SpanishLabels
	}
	if prompt == nil {
		prompt = StaticPrompt("")
	}
	return &Orchestrator{
		retriever: retriever,
		model:     model,
		prompt:    prompt,
		config:    config,
		observer:  nopObserver{},
		logger:    log.NewModuleLogger("rag", "orchestrator"),
	}
}

// SetObserver 设置观测回调
func (o *Orchestrator) SetObserver(observer Observer) {
	if observer == nil {
		observer = nopObserver{}
	}
	o.observer = observer
}

// Respond 处理一次对话请求
// 分支只根据最后一条用户消息是否含非空查询文本决定一次；检索失败直接返回 ErrRetrieval，不回退到直接对话
func (o *Orchestrator) Respond(ctx context.Context, history chat.History) (*Result, error) {
	query, err := chat.QueryText(history)
	if err != nil {
		return nil, err
	}

	if query == "" {
		o.logger.Debug("No query text, chatting directly", "history_len", len(history))
		return o.DirectChat(ctx, history)
	}

	o.logger.Debug("Query text present, running retrieval", "history_len", len(history))
	return o.GenerationMainWorkflow(ctx, query, history)
}

// GenerationMainWorkflow 检索分支：检索上下文 → 组合提示 → 替换最后一轮 → 生成
func (o *Orchestrator) GenerationMainWorkflow(ctx context.Context, query string, history chat.History) (*Result, error) {
	start := time.Now()
	matches, err := o.retriever.Retrieve(ctx, query, o.config.TopK)
	o.observer.ObserveRetrieval(time.Since(start).Seconds(), len(matches), err)
	if err != nil {
		return nil, chat.Wrap(chat.ErrRetrieval, err)
	}

	prompt := o.config.Labels.BuildPrompt(o.config.Labels.FormatMatches(matches), query)

	spliced, err := chat.SpliceUserTurn(prompt, history)
	if err != nil {
		return nil, err
	}

	response, outbound, err := o.generate(ctx, BranchRetrieval, spliced)
	if err != nil {
		return nil, err
	}

	return &Result{
		Response:  response,
		Branch:    BranchRetrieval,
		QueryText: query,
		Matches:   matches,
		Outbound:  outbound,
	}, nil
}

// DirectChat 直接对话分支：历史原样发送给模型（前置系统提示）
func (o *Orchestrator) DirectChat(ctx context.Context, history chat.History) (*Result, error) {
	if err := chat.ValidateHistory(history); err != nil {
		return nil, err
	}

	response, outbound, err := o.generate(ctx, BranchDirect, history)
	if err != nil {
		return nil, err
	}

	return &Result{
		Response: response,
		Branch:   BranchDirect,
		Outbound: outbound,
	}, nil
}

// generate 前置系统提示（只作用于发往模型的副本）并调用模型
func (o *Orchestrator) generate(ctx context.Context, branch Branch, history chat.History) (string, chat.History, error) {
	outbound := chat.WithSystemPrompt(o.prompt.SystemPrompt(), history)

	start := time.Now()
	response, err := o.model.Complete(ctx, outbound)
	if err == nil && strings.TrimSpace(response) == "" {
		err = fmt.Errorf("model returned no content")
	}
	o.observer.ObserveGeneration(string(branch), time.Since(start).Seconds(), err)
	if err != nil {
		o.logger.Error("Generation failed",
			"branch", branch,
			"error", err,
		)
		return "", outbound, chat.Wrap(chat.ErrGeneration, err)
	}

	o.logger.Info("Generation completed",
		"branch", branch,
		"messages", len(outbound),
		"response_len", len(response),
	)

	return response, outbound, nil
}
