//go:build integration
// +build integration

// APIClient 基于 resty 封装的 HTTP 客户端，直接复用业务结构体
package framework

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/pyassist/backend/internal/application/rag"
	"github.com/pyassist/backend/internal/application/transcribe"
	"github.com/pyassist/backend/internal/domain/chat"
	"github.com/pyassist/backend/internal/infrastructure/storage"
)

// APIClient 测试用 HTTP 客户端
type APIClient struct {
	client  *resty.Client
	baseURL string
}

// NewAPIClient 创建测试用 HTTP 客户端
func NewAPIClient(baseURL string) *APIClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(20*time.Second).
		SetHeader("Content-Type", "application/json")

	return &APIClient{
		client:  client,
		baseURL: baseURL,
	}
}

// APIResponse 通用 API 响应（与 response.Response 的 JSON 结构一致）
type APIResponse[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Data    T      `json:"data,omitempty"`
}

// LegacyError 无前缀接口的错误体
type LegacyError struct {
	Detail string `json:"detail"`
}

// do 执行请求并统一处理成功/错误响应的 JSON 解析
func do[T any](r *resty.Request, result *APIResponse[T]) *resty.Request {
	return r.SetResult(result).SetError(result)
}

// HealthCheck 健康检查
func (c *APIClient) HealthCheck() error {
	resp, err := c.client.R().Get("/health")
	if err != nil {
		return err
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("health check failed: status %d", resp.StatusCode())
	}
	return nil
}

// Get 原始 GET 请求
func (c *APIClient) Get(path string) (*resty.Response, error) {
	return c.client.R().Get(path)
}

// ChatWithHistory 带历史的对话
func (c *APIClient) ChatWithHistory(history []chat.Message) (*APIResponse[rag.ChatResponse], int, error) {
	var result APIResponse[rag.ChatResponse]
	resp, err := do(c.client.R().SetBody(map[string]any{"chat_history": history}), &result).
		Post("/api/v1/chat_with_history")
	if err != nil {
		return nil, 0, err
	}
	return &result, resp.StatusCode(), nil
}

// ChatWithHistoryLegacy 无前缀对话接口
func (c *APIClient) ChatWithHistoryLegacy(history []chat.Message) (*rag.ChatResponse, int, error) {
	var result rag.ChatResponse
	var failure LegacyError
	resp, err := c.client.R().
		SetBody(map[string]any{"chat_history": history}).
		SetResult(&result).
		SetError(&failure).
		Post("/chat_with_history")
	if err != nil {
		return nil, 0, err
	}
	return &result, resp.StatusCode(), nil
}

// TranscribeLegacy 无前缀转写接口
func (c *APIClient) TranscribeLegacy(recordingPath string) (*transcribe.Response, *LegacyError, int, error) {
	var result transcribe.Response
	var failure LegacyError
	resp, err := c.client.R().
		SetBody(map[string]string{"recording_path": recordingPath}).
		SetResult(&result).
		SetError(&failure).
		Post("/transcribe")
	if err != nil {
		return nil, nil, 0, err
	}
	return &result, &failure, resp.StatusCode(), nil
}

// UploadAudio 上传音频并转写
func (c *APIClient) UploadAudio(path string) (*APIResponse[transcribe.Response], int, error) {
	var result APIResponse[transcribe.Response]
	resp, err := do(c.client.R().SetFile("file", path), &result).
		Post("/api/v1/transcribe/upload")
	if err != nil {
		return nil, 0, err
	}
	return &result, resp.StatusCode(), nil
}

// ListRuns 运行记录列表
func (c *APIClient) ListRuns() (*APIResponse[[]storage.RunRecord], error) {
	var result APIResponse[[]storage.RunRecord]
	_, err := do(c.client.R(), &result).Get("/api/v1/runs")
	return &result, err
}
