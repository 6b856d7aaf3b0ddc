package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	domainRAG "github.com/pyassist/backend/internal/domain/rag"
	"github.com/pyassist/backend/internal/infrastructure/log"
)

// DefaultIngestBatchSize 每批向量化与写入的问答对数量
const DefaultIngestBatchSize = 100

// BatchEmbedder 批量向量化
type BatchEmbedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// DimensionProber 可探测实际输出维度的向量化器
type DimensionProber interface {
	ProbeDimension(ctx context.Context) (int, error)
}

// IngestOptions 一次入库的参数
type IngestOptions struct {
	Namespace string
	// Dimension 重建索引时使用的向量维度
	Dimension uint64
	// Recreate 入库前删除并重建索引
	Recreate  bool
	BatchSize int
}

// Ingestor 将 FAQ 问答对写入向量索引
type Ingestor struct {
	embedder BatchEmbedder
	index    domainRAG.IndexProvisioner
	keys     MetadataKeys
	logger   *slog.Logger
}

// NewIngestor 创建入库器
func NewIngestor(embedder BatchEmbedder, index domainRAG.IndexProvisioner, keys MetadataKeys) *Ingestor {
	return &Ingestor{
		embedder: embedder,
		index:    index,
		keys:     keys,
		logger:   log.NewModuleLogger("rag", "ingestor"),
	}
}

// Ingest 写入问答对，缺少向量的条目用问题文本向量化；返回写入条数
func (i *Ingestor) Ingest(ctx context.Context, pairs []domainRAG.FAQPair, opts IngestOptions) (int, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultIngestBatchSize
	}

	if opts.Recreate {
		if err := i.checkDimension(ctx, opts.Dimension); err != nil {
			return 0, err
		}
		if err := i.index.Recreate(ctx, opts.Dimension); err != nil {
			return 0, fmt.Errorf("failed to recreate index: %w", err)
		}
		i.logger.Info("Index recreated", "dimension", opts.Dimension)
	}

	written := 0
	for start := 0; start < len(pairs); start += opts.BatchSize {
		end := min(start+opts.BatchSize, len(pairs))
		points, err := i.toPoints(ctx, pairs[start:end])
		if err != nil {
			return written, err
		}
		if err := i.index.Upsert(ctx, opts.Namespace, points); err != nil {
			return written, fmt.Errorf("failed to upsert batch %d-%d: %w", start, end, err)
		}
		written += len(points)
		i.logger.Debug("Batch upserted", "from", start, "to", end)
	}

	i.logger.Info("Upsert complete", "namespace", opts.Namespace, "points", written)
	return written, nil
}

// checkDimension 重建前确认向量化器输出维度与索引一致，不一致时不动索引
func (i *Ingestor) checkDimension(ctx context.Context, want uint64) error {
	prober, ok := i.embedder.(DimensionProber)
	if !ok || want == 0 {
		return nil
	}
	got, err := prober.ProbeDimension(ctx)
	if err != nil {
		return err
	}
	if uint64(got) != want {
		return fmt.Errorf("embedder produces %d-dimensional vectors but index dimension is %d", got, want)
	}
	return nil
}

func (i *Ingestor) toPoints(ctx context.Context, pairs []domainRAG.FAQPair) ([]domainRAG.Point, error) {
	points := make([]domainRAG.Point, len(pairs))
	var (
		missing []int
		texts   []string
	)

	for idx, pair := range pairs {
		id := pair.ID
		if id == "" {
			id = uuid.NewString()
		}
		metadata := make(map[string]any, len(pair.Metadata))
		for k, v := range pair.Metadata {
			metadata[k] = v
		}
		points[idx] = domainRAG.Point{ID: id, Vector: pair.Values, Metadata: metadata}

		if len(pair.Values) == 0 {
			question := strings.TrimSpace(pair.Metadata[i.keys.Question])
			if question == "" {
				return nil, fmt.Errorf("pair %q has neither values nor a %q field", id, i.keys.Question)
			}
			missing = append(missing, idx)
			texts = append(texts, question)
		}
	}

	if len(texts) == 0 {
		return points, nil
	}
	vectors, err := i.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed questions: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(texts))
	}
	for n, idx := range missing {
		points[idx].Vector = vectors[n]
	}
	return points, nil
}
