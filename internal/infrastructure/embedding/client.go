package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/pyassist/backend/internal/domain/rag"
	"github.com/pyassist/backend/internal/infrastructure/config"
	"github.com/pyassist/backend/internal/infrastructure/log"
)

// OpenAI embeddings API 批量限制：每次最多 2048 个文本
const maxBatchSize = 2048

// Client Embedding API 客户端
type Client struct {
	client    openai.Client
	model     string
	dimension int64
	logger    *slog.Logger
}

// NewClient 创建 Embedding 客户端
// dimension 只对 text-embedding-3 系列生效，0 表示使用模型默认维度
func NewClient(baseURL, apiKey, model string, dimension int64, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("embedding api key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &Client{
		client:    openai.NewClient(opts...),
		model:     model,
		dimension: dimension,
		logger:    log.NewModuleLogger("embedding", "client"),
	}, nil
}

// ProvideClient 根据配置创建客户端
func ProvideClient(cfg *config.EmbeddingConfig) (*Client, error) {
	return NewClient(cfg.BaseURL, cfg.APIKey, cfg.Model, int64(cfg.Dimension), cfg.Timeout)
}

// Embed 向量化单条文本
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.embed(ctx, openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)}, 1)
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedTexts 批量向量化文本，结果顺序与输入一致
func (c *Client) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("texts cannot be empty")
	}

	allVectors := make([][]float32, 0, len(texts))
	totalBatches := (len(texts) + maxBatchSize - 1) / maxBatchSize

	for i := 0; i < len(texts); i += maxBatchSize {
		end := min(i+maxBatchSize, len(texts))
		batch := texts[i:end]
		batchNum := (i / maxBatchSize) + 1

		c.logger.DebugContext(ctx, "Processing batch",
			"batch", batchNum,
			"total_batches", totalBatches,
			"batch_size", len(batch),
		)

		vectors, err := c.embed(ctx, openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: batch}, len(batch))
		if err != nil {
			return nil, fmt.Errorf("failed to embed batch %d: %w", batchNum, err)
		}
		allVectors = append(allVectors, vectors...)
	}

	c.logger.InfoContext(ctx, "Successfully embedded texts", "total_vectors", len(allVectors))
	return allVectors, nil
}

func (c *Client) embed(ctx context.Context, input openai.EmbeddingNewParamsInputUnion, expected int) ([][]float32, error) {
	params := openai.EmbeddingNewParams{
		Input: input,
		Model: openai.EmbeddingModel(c.model),
	}
	if c.dimension > 0 && strings.HasPrefix(c.model, "text-embedding-3") {
		params.Dimensions = openai.Int(c.dimension)
	}

	resp, err := c.client.Embeddings.New(ctx, params)
	if err != nil {
		c.logger.ErrorContext(ctx, "Embedding request failed", "model", c.model, "error", err)
		return nil, fmt.Errorf("embedding request: %w", err)
	}
	if len(resp.Data) != expected {
		return nil, fmt.Errorf("expected %d embeddings, got %d", expected, len(resp.Data))
	}

	vectors := make([][]float32, expected)
	for _, data := range resp.Data {
		if data.Index < 0 || int(data.Index) >= expected {
			return nil, fmt.Errorf("embedding index %d out of range", data.Index)
		}
		vectors[data.Index] = toFloat32(data.Embedding)
	}
	for i, v := range vectors {
		if len(v) == 0 {
			return nil, fmt.Errorf("embedding %d is empty", i)
		}
	}

	c.logger.DebugContext(ctx, "Embedding request completed",
		"count", expected,
		"dimension", len(vectors[0]),
		"prompt_tokens", resp.Usage.PromptTokens,
	)
	return vectors, nil
}

// ProbeDimension 向量化一条短文本，返回模型实际输出的维度
func (c *Client) ProbeDimension(ctx context.Context) (int, error) {
	vector, err := c.Embed(ctx, "dimension probe")
	if err != nil {
		return 0, fmt.Errorf("failed to probe embedding dimension: %w", err)
	}
	c.logger.DebugContext(ctx, "Embedding dimension probed",
		"model", c.model,
		"dimension", len(vector),
	)
	return len(vector), nil
}

func toFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}

var _ rag.Embedder = (*Client)(nil)
