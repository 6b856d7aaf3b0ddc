package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/pyassist/backend/internal/domain/chat"
	"github.com/pyassist/backend/internal/infrastructure/log"
)

const (
	openAIDefaultAPIURL = "https://api.openai.com/v1"
	openAIDefaultModel  = "gpt-4o"
)

// OpenAIClient 基于 OpenAI Chat Completions 的语言模型
type OpenAIClient struct {
	client openai.Client
	model  string
	logger *slog.Logger
}

// NewOpenAIClient 创建 OpenAI 客户端，客户端在进程内复用
func NewOpenAIClient(baseURL, apiKey, model string, timeout time.Duration) (*OpenAIClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	if baseURL == "" {
		baseURL = openAIDefaultAPIURL
	}
	if model == "" {
		model = openAIDefaultModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
		// 核心不做重试，失败直接上报
		option.WithMaxRetries(0),
	}

	return &OpenAIClient{
		client: openai.NewClient(opts...),
		model:  model,
		logger: log.NewModuleLogger("llm", "openai"),
	}, nil
}

// Complete 发送完整对话并返回第一条候选的文本
func (c *OpenAIClient) Complete(ctx context.Context, history chat.History) (string, error) {
	messages, err := toOpenAIMessages(history)
	if err != nil {
		return "", err
	}

	c.logger.DebugContext(ctx, "Sending chat completion",
		"model", c.model,
		"messages", len(messages),
	)

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: messages,
	})
	if err != nil {
		c.logger.ErrorContext(ctx, "Chat completion failed", "model", c.model, "error", err)
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	content := resp.Choices[0].Message.Content
	c.logger.DebugContext(ctx, "Chat completion received",
		"model", resp.Model,
		"finish_reason", resp.Choices[0].FinishReason,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
	)
	return content, nil
}

// toOpenAIMessages 转换为 OpenAI 消息；用户多段内容保持段顺序，图片以 image_url 发送
func toOpenAIMessages(history chat.History) ([]openai.ChatCompletionMessageParamUnion, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history))
	for i, m := range history {
		switch m.Role {
		case chat.RoleSystem:
			messages = append(messages, openai.SystemMessage(flattenText(m.Content)))
		case chat.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(flattenText(m.Content)))
		case chat.RoleUser:
			param, err := userMessage(m.Content)
			if err != nil {
				return nil, fmt.Errorf("message %d: %w", i, err)
			}
			messages = append(messages, param)
		default:
			return nil, fmt.Errorf("message %d: unsupported role %q", i, m.Role)
		}
	}
	return messages, nil
}

func userMessage(content chat.Content) (openai.ChatCompletionMessageParamUnion, error) {
	switch c := content.(type) {
	case nil:
		return openai.UserMessage(""), nil
	case chat.TextContent:
		return openai.UserMessage(string(c)), nil
	case chat.MultiPartContent:
		parts := make([]openai.ChatCompletionContentPartUnionParam, 0, len(c))
		for _, p := range c {
			switch pv := p.(type) {
			case chat.TextPart:
				parts = append(parts, openai.TextContentPart(pv.Text))
			case chat.ImagePart:
				parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: pv.URL,
				}))
			default:
				return openai.ChatCompletionMessageParamUnion{}, fmt.Errorf("unsupported part %T", p)
			}
		}
		return openai.UserMessage(parts), nil
	default:
		return openai.ChatCompletionMessageParamUnion{}, fmt.Errorf("unsupported content %T", content)
	}
}

// flattenText 取出内容中的全部文本段（系统和助手消息只支持文本）
func flattenText(content chat.Content) string {
	switch c := content.(type) {
	case chat.TextContent:
		return string(c)
	case chat.MultiPartContent:
		texts := make([]string, 0, len(c))
		for _, p := range c {
			if tp, ok := p.(chat.TextPart); ok {
				texts = append(texts, tp.Text)
			}
		}
		return strings.Join(texts, "\n")
	default:
		return ""
	}
}

var _ chat.LanguageModel = (*OpenAIClient)(nil)
