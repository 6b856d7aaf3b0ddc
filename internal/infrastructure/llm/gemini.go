package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pyassist/backend/internal/domain/chat"
	"github.com/pyassist/backend/internal/infrastructure/log"
	"google.golang.org/genai"
)

const geminiDefaultModel = "gemini-2.0-flash"

type geminiModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

var newGeminiClient = func(ctx context.Context, cfg *genai.ClientConfig) (*genai.Client, error) {
	return genai.NewClient(ctx, cfg)
}

// GeminiClient 基于 Gemini API 的语言模型
type GeminiClient struct {
	models  geminiModels
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewGeminiClient 创建 Gemini 客户端
func NewGeminiClient(ctx context.Context, apiKey, model string, timeout time.Duration) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = geminiDefaultModel
	}

	client, err := newGeminiClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiClient{
		models:  client.Models,
		model:   model,
		timeout: timeout,
		logger:  log.NewModuleLogger("llm", "gemini"),
	}, nil
}

// Complete 系统消息合并为 SystemInstruction，其余消息按顺序作为 contents 发送
func (c *GeminiClient) Complete(ctx context.Context, history chat.History) (string, error) {
	contents, config, err := toGeminiRequest(history)
	if err != nil {
		return "", err
	}

	callCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	c.logger.DebugContext(ctx, "Sending generate content",
		"model", c.model,
		"contents", len(contents),
	)

	resp, err := c.models.GenerateContent(callCtx, c.model, contents, config)
	if err != nil {
		c.logger.ErrorContext(ctx, "Generate content failed", "model", c.model, "error", err)
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := extractVisibleText(resp)
	if text == "" {
		return "", fmt.Errorf("generate content returned no text")
	}
	return text, nil
}

func (c *GeminiClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline || c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

func toGeminiRequest(history chat.History) ([]*genai.Content, *genai.GenerateContentConfig, error) {
	contents := make([]*genai.Content, 0, len(history))
	var system []string

	for i, m := range history {
		switch m.Role {
		case chat.RoleSystem:
			if text := strings.TrimSpace(flattenText(m.Content)); text != "" {
				system = append(system, text)
			}
		case chat.RoleAssistant:
			contents = append(contents, &genai.Content{
				Role:  genai.RoleModel,
				Parts: []*genai.Part{{Text: flattenText(m.Content)}},
			})
		case chat.RoleUser:
			parts, err := geminiParts(m.Content)
			if err != nil {
				return nil, nil, fmt.Errorf("message %d: %w", i, err)
			}
			contents = append(contents, &genai.Content{Role: genai.RoleUser, Parts: parts})
		default:
			return nil, nil, fmt.Errorf("message %d: unsupported role %q", i, m.Role)
		}
	}
	if len(contents) == 0 {
		return nil, nil, fmt.Errorf("at least one user or assistant message is required")
	}

	config := &genai.GenerateContentConfig{}
	if len(system) > 0 {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: strings.Join(system, "\n\n")}},
		}
	}
	return contents, config, nil
}

func geminiParts(content chat.Content) ([]*genai.Part, error) {
	switch c := content.(type) {
	case nil:
		return []*genai.Part{{Text: ""}}, nil
	case chat.TextContent:
		return []*genai.Part{{Text: string(c)}}, nil
	case chat.MultiPartContent:
		parts := make([]*genai.Part, 0, len(c))
		for _, p := range c {
			switch pv := p.(type) {
			case chat.TextPart:
				parts = append(parts, &genai.Part{Text: pv.Text})
			case chat.ImagePart:
				part, err := imagePart(pv)
				if err != nil {
					return nil, err
				}
				parts = append(parts, part)
			default:
				return nil, fmt.Errorf("unsupported part %T", p)
			}
		}
		return parts, nil
	default:
		return nil, fmt.Errorf("unsupported content %T", content)
	}
}

// imagePart data URL 以内联数据发送，其他 URL 作为文件引用
func imagePart(p chat.ImagePart) (*genai.Part, error) {
	mime := p.MIMEType()
	if encoded := p.Base64Data(); encoded != "" {
		data, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("decode image data: %w", err)
		}
		return &genai.Part{InlineData: &genai.Blob{MIMEType: mime, Data: data}}, nil
	}
	if mime == "" {
		mime = "image/png"
	}
	return &genai.Part{FileData: &genai.FileData{FileURI: p.URL, MIMEType: mime}}, nil
}

func extractVisibleText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}

var _ chat.LanguageModel = (*GeminiClient)(nil)
