package vector

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pinecone-io/go-pinecone/v3/pinecone"
	"github.com/pyassist/backend/internal/domain/rag"
	"github.com/pyassist/backend/internal/infrastructure/log"
	"google.golang.org/protobuf/types/known/structpb"
)

// pineconeConn 单个命名空间连接上用到的方法
type pineconeConn interface {
	QueryByVectorValues(ctx context.Context, in *pinecone.QueryByVectorValuesRequest) (*pinecone.QueryVectorsResponse, error)
	UpsertVectors(ctx context.Context, in []*pinecone.Vector) (uint32, error)
	DeleteAllVectorsInNamespace(ctx context.Context) error
	Close() error
}

// PineconeIndex 基于 Pinecone 的向量索引，命名空间对应 Pinecone namespace
type PineconeIndex struct {
	dial   func(namespace string) (pineconeConn, error)
	host   string
	logger *slog.Logger

	mu    sync.Mutex
	conns map[string]pineconeConn
	// namespaces Recreate 时需要清空的命名空间
	namespaces []string
}

// NewPineconeIndex 创建 Pinecone 索引；host 为索引的数据面地址
func NewPineconeIndex(apiKey, host string, namespaces ...string) (*PineconeIndex, error) {
	client, err := pinecone.NewClient(pinecone.NewClientParams{ApiKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create pinecone client: %w", err)
	}
	dial := func(namespace string) (pineconeConn, error) {
		return client.Index(pinecone.NewIndexConnParams{Host: host, Namespace: namespace})
	}
	return newPineconeIndex(dial, host, namespaces...), nil
}

func newPineconeIndex(dial func(string) (pineconeConn, error), host string, namespaces ...string) *PineconeIndex {
	return &PineconeIndex{
		dial:       dial,
		host:       host,
		logger:     log.NewModuleLogger("vector", "pinecone"),
		conns:      make(map[string]pineconeConn),
		namespaces: namespaces,
	}
}

func (p *PineconeIndex) conn(namespace string) (pineconeConn, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.conns[namespace]; ok {
		return c, nil
	}
	c, err := p.dial(namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to pinecone index %s: %w", p.host, err)
	}
	p.conns[namespace] = c
	return c, nil
}

// Query 查询最近邻并带回元数据
func (p *PineconeIndex) Query(ctx context.Context, vector []float32, namespace string, topK int) ([]rag.ScoredPoint, error) {
	c, err := p.conn(namespace)
	if err != nil {
		return nil, err
	}

	resp, err := c.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
		Vector:          vector,
		TopK:            uint32(topK),
		IncludeMetadata: true,
	})
	if err != nil {
		p.logger.ErrorContext(ctx, "Failed to query pinecone", "namespace", namespace, "error", err)
		return nil, fmt.Errorf("failed to query pinecone: %w", err)
	}

	points := make([]rag.ScoredPoint, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		if m == nil || m.Vector == nil {
			continue
		}
		var metadata map[string]any
		if m.Vector.Metadata != nil {
			metadata = m.Vector.Metadata.AsMap()
		}
		points = append(points, rag.ScoredPoint{
			ID:       m.Vector.Id,
			Metadata: metadata,
			Score:    m.Score,
		})
	}

	p.logger.DebugContext(ctx, "Pinecone search completed",
		"namespace", namespace,
		"hits_count", len(points),
	)
	return points, nil
}

// Recreate 清空已知命名空间中的向量；索引本身（维度、度量）在 Pinecone 控制台管理
func (p *PineconeIndex) Recreate(ctx context.Context, dimension uint64) error {
	for _, ns := range p.namespaces {
		c, err := p.conn(ns)
		if err != nil {
			return err
		}
		if err := c.DeleteAllVectorsInNamespace(ctx); err != nil {
			return fmt.Errorf("failed to clear namespace %s: %w", ns, err)
		}
		p.logger.Info("Namespace cleared", "namespace", ns, "dimension", dimension)
	}
	return nil
}

// Upsert 写入向量
func (p *PineconeIndex) Upsert(ctx context.Context, namespace string, points []rag.Point) error {
	if len(points) == 0 {
		return nil
	}
	c, err := p.conn(namespace)
	if err != nil {
		return err
	}

	vectors := make([]*pinecone.Vector, 0, len(points))
	for _, pt := range points {
		metadata, err := structpb.NewStruct(pt.Metadata)
		if err != nil {
			return fmt.Errorf("point %s: invalid metadata: %w", pt.ID, err)
		}
		values := pt.Vector
		vectors = append(vectors, &pinecone.Vector{
			Id:       pt.ID,
			Values:   &values,
			Metadata: metadata,
		})
	}

	count, err := c.UpsertVectors(ctx, vectors)
	if err != nil {
		return fmt.Errorf("failed to upsert vectors: %w", err)
	}

	p.logger.Info("Vectors upserted", "namespace", namespace, "count", count)
	return nil
}

// Close 关闭所有连接
func (p *PineconeIndex) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for ns, c := range p.conns {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(p.conns, ns)
	}
	return firstErr
}

var (
	_ rag.VectorIndex      = (*PineconeIndex)(nil)
	_ rag.IndexProvisioner = (*PineconeIndex)(nil)
)
