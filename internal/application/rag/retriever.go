package rag

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/pyassist/backend/internal/domain/chat"
	domainRAG "github.com/pyassist/backend/internal/domain/rag"
	"github.com/pyassist/backend/internal/infrastructure/log"
)

// DefaultTopK 默认检索条数
const DefaultTopK = 3

// MetadataKeys 元数据中问题与答案的字段名
type MetadataKeys struct {
	Question string
	Answer   string
}

// DefaultMetadataKeys FAQ 数据集使用的字段名
var DefaultMetadataKeys = MetadataKeys{Question: "pregunta", Answer: "respuesta"}

// Retriever 向量化查询并在固定命名空间中检索最近邻
type Retriever struct {
	embedder  domainRAG.Embedder
	index     domainRAG.VectorIndex
	namespace string
	keys      MetadataKeys
	logger    *slog.Logger
}

// NewRetriever 创建检索器
func NewRetriever(embedder domainRAG.Embedder, index domainRAG.VectorIndex, namespace string, keys MetadataKeys) *Retriever {
	if keys.Question == "" || keys.Answer == "" {
		keys = DefaultMetadataKeys
	}
	return &Retriever{
		embedder:  embedder,
		index:     index,
		namespace: namespace,
		keys:      keys,
		logger:    log.NewModuleLogger("rag", "retriever"),
	}
}

// Retrieve 返回至多 k 条命中，按相似度降序；不足 k 条时返回全部，不视为错误
// 向量化或索引查询失败一律归为 ErrRetrieval 向上传递，不降级为“无上下文”
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]domainRAG.Match, error) {
	if k <= 0 {
		k = DefaultTopK
	}

	r.logger.Debug("Retrieving context",
		"query_len", len(query),
		"namespace", r.namespace,
		"top_k", k,
	)

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		r.logger.Error("Failed to embed query", "error", err)
		return nil, chat.Wrap(chat.ErrRetrieval, fmt.Errorf("embed query: %w", err))
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: embedder returned an empty vector", chat.ErrRetrieval)
	}

	points, err := r.index.Query(ctx, vector, r.namespace, k)
	if err != nil {
		r.logger.Error("Failed to query vector index", "error", err)
		return nil, chat.Wrap(chat.ErrRetrieval, fmt.Errorf("query index: %w", err))
	}

	matches := make([]domainRAG.Match, 0, len(points))
	for _, p := range points {
		matches = append(matches, domainRAG.Match{
			ID:       p.ID,
			Question: metadataString(p.Metadata, r.keys.Question),
			Answer:   metadataString(p.Metadata, r.keys.Answer),
			Score:    p.Score,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > k {
		matches = matches[:k]
	}

	r.logger.Info("Context retrieved",
		"matches", len(matches),
		"vector_dim", len(vector),
	)

	return matches, nil
}

// metadataString 读取元数据字段，非字符串值按 fmt 格式化
func metadataString(metadata map[string]any, key string) string {
	v, ok := metadata[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
