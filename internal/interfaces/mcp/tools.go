package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/pyassist/backend/internal/domain/chat"
	"github.com/pyassist/backend/internal/infrastructure/config"
)

// maxSearchTopK search_faq 的条数上限
const maxSearchTopK = 10

// ChatMessageInput 对话消息（工具入参只支持文本内容）
type ChatMessageInput struct {
	Role    string `json:"role" jsonschema:"Message author: system, user or assistant"`
	Content string `json:"content" jsonschema:"Message text"`
}

// ChatWithHistoryInput chat_with_history 工具输入
type ChatWithHistoryInput struct {
	ChatHistory []ChatMessageInput `json:"chat_history" jsonschema:"Conversation in chronological order; the last message must be from the user"`
}

// ChatWithHistoryOutput chat_with_history 工具输出
type ChatWithHistoryOutput struct {
	Response string `json:"response" jsonschema:"Assistant answer"`
	Branch   string `json:"branch" jsonschema:"rag when FAQ context was used, direct otherwise"`
	RunID    string `json:"run_id,omitempty" jsonschema:"Tracking run id"`
}

func (s *MCPServer) chatWithHistoryTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input ChatWithHistoryInput,
) (*mcp.CallToolResult, ChatWithHistoryOutput, error) {
	var output ChatWithHistoryOutput

	history := make(chat.History, 0, len(input.ChatHistory))
	for i, m := range input.ChatHistory {
		role := chat.Role(strings.ToLower(strings.TrimSpace(m.Role)))
		if !role.Valid() {
			return nil, output, fmt.Errorf("chat_history[%d]: invalid role %q", i, m.Role)
		}
		history = append(history, chat.Message{Role: role, Content: chat.TextContent(m.Content)})
	}

	resp, err := s.chat.ChatWithHistory(ctx, history)
	if err != nil {
		s.logger.ErrorContext(ctx, "chat_with_history tool failed", "error", err)
		return nil, output, err
	}

	output.Response = resp.Response
	output.Branch = string(resp.Branch)
	output.RunID = resp.RunID
	return nil, output, nil
}

// TranscribeAudioInput transcribe_audio 工具输入
type TranscribeAudioInput struct {
	RecordingPath string `json:"recording_path" jsonschema:"Path of the audio file on the server"`
}

// TranscribeAudioOutput transcribe_audio 工具输出
type TranscribeAudioOutput struct {
	Text string `json:"text" jsonschema:"Transcript, empty when nothing was recognized"`
}

func (s *MCPServer) transcribeAudioTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input TranscribeAudioInput,
) (*mcp.CallToolResult, TranscribeAudioOutput, error) {
	var output TranscribeAudioOutput
	if input.RecordingPath == "" {
		return nil, output, fmt.Errorf("recording_path is required")
	}

	path, err := config.ResolveAudioPath(s.audioDir, input.RecordingPath)
	if err != nil {
		return nil, output, err
	}

	resp, err := s.transcriber.Transcribe(ctx, path)
	if err != nil {
		s.logger.ErrorContext(ctx, "transcribe_audio tool failed", "error", err)
		return nil, output, err
	}
	output.Text = resp.Text
	return nil, output, nil
}

// SearchFAQInput search_faq 工具输入
type SearchFAQInput struct {
	Query string `json:"query" jsonschema:"Natural language question"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"Number of results, defaults to 3, max 10"`
}

// FAQMatch 一条命中
type FAQMatch struct {
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Score    float32 `json:"score"`
}

// SearchFAQOutput search_faq 工具输出
type SearchFAQOutput struct {
	Matches    []FAQMatch `json:"matches" jsonschema:"Matches ordered by descending similarity"`
	TotalCount int        `json:"total_count"`
}

func (s *MCPServer) searchFAQTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input SearchFAQInput,
) (*mcp.CallToolResult, SearchFAQOutput, error) {
	output := SearchFAQOutput{Matches: []FAQMatch{}}
	if strings.TrimSpace(input.Query) == "" {
		return nil, output, fmt.Errorf("query is required")
	}

	k := input.TopK
	if k > maxSearchTopK {
		k = maxSearchTopK
	}

	matches, err := s.searcher.Retrieve(ctx, input.Query, k)
	if err != nil {
		return nil, output, err
	}
	for _, m := range matches {
		output.Matches = append(output.Matches, FAQMatch{Question: m.Question, Answer: m.Answer, Score: m.Score})
	}
	output.TotalCount = len(output.Matches)
	return nil, output, nil
}
