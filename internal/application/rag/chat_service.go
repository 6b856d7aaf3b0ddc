package rag

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/pyassist/backend/internal/domain/chat"
	"github.com/pyassist/backend/internal/infrastructure/log"
)

// 运行状态
const (
	RunStatusFinished = "FINISHED"
	RunStatusFailed   = "FAILED"
)

// ChatRunName 对话请求的运行名
const ChatRunName = "chat_with_history"

// runEndTimeout 结束运行记录的写入时限，与请求上下文的取消无关
const runEndTimeout = 5 * time.Second

// ChatResponse 对话响应
type ChatResponse struct {
	Response string `json:"response"`
	Branch   Branch `json:"branch,omitempty"`
	RunID    string `json:"run_id,omitempty"`
}

// ChatService 对外暴露的对话入口，负责运行记录
type ChatService struct {
	orchestrator *Orchestrator
	tracker      RunTracker
	tokens       TokenCounter
	endpoint     string
	logger       *slog.Logger
}

// NewChatService 创建对话服务；tracker 与 tokens 可为 nil
func NewChatService(orchestrator *Orchestrator, tracker RunTracker, tokens TokenCounter) *ChatService {
	return &ChatService{
		orchestrator: orchestrator,
		tracker:      tracker,
		tokens:       tokens,
		endpoint:     "/chat_with_history",
		logger:       log.NewModuleLogger("rag", "chat_service"),
	}
}

// ChatWithHistory 校验历史并生成回复；历史为空或最后一条不是用户消息时返回 ErrInvalidHistory
func (s *ChatService) ChatWithHistory(ctx context.Context, history chat.History) (*ChatResponse, error) {
	query, err := chat.QueryText(history)
	if err != nil {
		return nil, err
	}

	run := s.startRun(ctx)
	if run != nil {
		ctx = log.WithRunID(ctx, run.ID())
		run.LogParam("endpoint", s.endpoint)
		run.LogParam("user_query_len", len(query))
		run.LogParam("chat_history_len", len(history))
	}

	result, err := s.orchestrator.Respond(ctx, history)
	if err != nil {
		s.endRun(ctx, run, RunStatusFailed)
		return nil, err
	}

	if run != nil {
		run.LogParam("branch", string(result.Branch))
		run.LogParam("retrieved_matches", len(result.Matches))
		if s.tokens != nil {
			run.LogParam("prompt_tokens", s.tokens.CountTokens(historyText(result.Outbound)))
		}
	}
	s.endRun(ctx, run, RunStatusFinished)

	resp := &ChatResponse{Response: result.Response, Branch: result.Branch}
	if run != nil {
		resp.RunID = run.ID()
	}
	return resp, nil
}

func (s *ChatService) startRun(ctx context.Context) Run {
	if s.tracker == nil {
		return nil
	}
	run, err := s.tracker.StartRun(ctx, ChatRunName)
	if err != nil {
		s.logger.Warn("Failed to start run, continuing without tracking", "error", err)
		return nil
	}
	return run
}

// endRun 请求超时或被取消后仍需落盘，因此脱离请求上下文
func (s *ChatService) endRun(ctx context.Context, run Run, status string) {
	if run == nil {
		return
	}
	endCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), runEndTimeout)
	defer cancel()
	if err := run.End(endCtx, status); err != nil {
		s.logger.Warn("Failed to end run",
			"run_id", run.ID(),
			"error", err,
		)
	}
}

// historyText 拼接所有文本内容，用于 token 估算
func historyText(history chat.History) string {
	var sb strings.Builder
	for _, m := range history {
		switch c := m.Content.(type) {
		case chat.TextContent:
			sb.WriteString(string(c))
		case chat.MultiPartContent:
			for _, p := range c {
				if tp, ok := p.(chat.TextPart); ok {
					sb.WriteString(tp.Text)
				}
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
