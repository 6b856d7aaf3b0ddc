package handler

import (
	"context"

	appRAG "github.com/pyassist/backend/internal/application/rag"
	"github.com/pyassist/backend/internal/application/transcribe"
	"github.com/pyassist/backend/internal/domain/chat"
	domainRAG "github.com/pyassist/backend/internal/domain/rag"
	"github.com/pyassist/backend/internal/infrastructure/storage"
)

// ChatService 对话入口
type ChatService interface {
	ChatWithHistory(ctx context.Context, history chat.History) (*appRAG.ChatResponse, error)
}

// Transcriber 音频转写入口
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (*transcribe.Response, error)
}

// FAQSearcher FAQ 检索
type FAQSearcher interface {
	Retrieve(ctx context.Context, query string, k int) ([]domainRAG.Match, error)
}

// RunReader 运行记录查询
type RunReader interface {
	Page(ctx context.Context, page, pageSize int) ([]*storage.RunRecord, int, error)
	Get(ctx context.Context, id string) (*storage.RunRecord, error)
}

var (
	_ ChatService = (*appRAG.ChatService)(nil)
	_ Transcriber = (*transcribe.Service)(nil)
	_ FAQSearcher = (*appRAG.Retriever)(nil)
	_ RunReader   = (*storage.RunRepository)(nil)
)
