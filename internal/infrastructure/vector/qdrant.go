package vector

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"github.com/pyassist/backend/internal/domain/rag"
	"github.com/pyassist/backend/internal/infrastructure/log"
	"github.com/qdrant/go-client/qdrant"
)

// Payload 中保留的字段
const (
	NamespaceField = "namespace"
	// SourceIDField 原始 ID（Qdrant 点 ID 只能是整数或 UUID）
	SourceIDField = "faq_id"
)

// faqIDSpace 非数字、非 UUID 的原始 ID 通过 SHA1 映射到此命名空间下的 UUID
var faqIDSpace = uuid.MustParse("6f1c8a52-3f0b-4f52-9a43-2b8f1d7e0c11")

// qdrantAPI Qdrant 客户端中用到的方法，便于测试替换
type qdrantAPI interface {
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	DeleteCollection(ctx context.Context, collectionName string) error
	Close() error
}

// QdrantIndex 基于 Qdrant 集合的向量索引，命名空间通过 payload 过滤实现
type QdrantIndex struct {
	client     qdrantAPI
	collection string
	logger     *slog.Logger
}

// NewQdrantIndex 连接 Qdrant（gRPC）
func NewQdrantIndex(host string, port int, apiKey, collection string) (*QdrantIndex, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to qdrant: %w", err)
	}
	return newQdrantIndex(client, collection), nil
}

func newQdrantIndex(client qdrantAPI, collection string) *QdrantIndex {
	return &QdrantIndex{
		client:     client,
		collection: collection,
		logger:     log.NewModuleLogger("vector", "qdrant"),
	}
}

// Query 查询最近邻，只返回指定命名空间的点
func (q *QdrantIndex) Query(ctx context.Context, vector []float32, namespace string, topK int) ([]rag.ScoredPoint, error) {
	limit := uint64(topK)
	req := &qdrant.QueryPoints{
		CollectionName: q.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if namespace != "" {
		req.Filter = &qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch(NamespaceField, namespace)},
		}
	}

	hits, err := q.client.Query(ctx, req)
	if err != nil {
		q.logger.ErrorContext(ctx, "Failed to query qdrant",
			"collection", q.collection,
			"error", err,
		)
		return nil, fmt.Errorf("failed to query qdrant: %w", err)
	}

	points := make([]rag.ScoredPoint, 0, len(hits))
	for _, hit := range hits {
		points = append(points, toScoredPoint(hit))
	}

	q.logger.DebugContext(ctx, "Qdrant search completed",
		"collection", q.collection,
		"namespace", namespace,
		"hits_count", len(points),
	)
	return points, nil
}

// Recreate 删除并重建集合（余弦距离）
func (q *QdrantIndex) Recreate(ctx context.Context, dimension uint64) error {
	exists, err := q.client.CollectionExists(ctx, q.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection %s: %w", q.collection, err)
	}
	if exists {
		if err := q.client.DeleteCollection(ctx, q.collection); err != nil {
			return fmt.Errorf("failed to delete collection %s: %w", q.collection, err)
		}
		q.logger.Info("Collection deleted", "collection", q.collection)
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", q.collection, err)
	}

	q.logger.Info("Collection created",
		"collection", q.collection,
		"dimension", dimension,
	)
	return nil
}

// Upsert 写入点，payload 中附加命名空间与原始 ID
func (q *QdrantIndex) Upsert(ctx context.Context, namespace string, points []rag.Point) error {
	if len(points) == 0 {
		return nil
	}

	structs := make([]*qdrant.PointStruct, 0, len(points))
	for _, p := range points {
		payload := make(map[string]any, len(p.Metadata)+2)
		for k, v := range p.Metadata {
			payload[k] = v
		}
		payload[NamespaceField] = namespace
		payload[SourceIDField] = p.ID

		value, err := qdrant.TryValueMap(payload)
		if err != nil {
			return fmt.Errorf("point %s: invalid metadata: %w", p.ID, err)
		}

		structs = append(structs, &qdrant.PointStruct{
			Id:      pointID(p.ID),
			Vectors: qdrant.NewVectors(p.Vector...),
			Payload: value,
		})
	}

	wait := true
	if _, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collection,
		Wait:           &wait,
		Points:         structs,
	}); err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	q.logger.Info("Points upserted",
		"collection", q.collection,
		"namespace", namespace,
		"count", len(structs),
	)
	return nil
}

// Close 关闭连接
func (q *QdrantIndex) Close() error {
	return q.client.Close()
}

// pointID 数字 ID 直接使用，UUID 原样使用，其他字符串映射为确定性的 UUID
func pointID(id string) *qdrant.PointId {
	if n, err := strconv.ParseUint(id, 10, 64); err == nil {
		return qdrant.NewIDNum(n)
	}
	if u, err := uuid.Parse(id); err == nil {
		return qdrant.NewIDUUID(u.String())
	}
	return qdrant.NewIDUUID(uuid.NewSHA1(faqIDSpace, []byte(id)).String())
}

func toScoredPoint(hit *qdrant.ScoredPoint) rag.ScoredPoint {
	metadata := make(map[string]any, len(hit.GetPayload()))
	for k, v := range hit.GetPayload() {
		metadata[k] = valueToAny(v)
	}

	id, _ := metadata[SourceIDField].(string)
	if id == "" {
		id = formatPointID(hit.GetId())
	}

	return rag.ScoredPoint{
		ID:       id,
		Metadata: metadata,
		Score:    hit.GetScore(),
	}
}

func formatPointID(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	if u := id.GetUuid(); u != "" {
		return u
	}
	return strconv.FormatUint(id.GetNum(), 10)
}

// valueToAny 将 qdrant.Value 转为 Go 值
func valueToAny(v *qdrant.Value) any {
	if v == nil {
		return nil
	}
	switch kind := v.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return kind.StringValue
	case *qdrant.Value_IntegerValue:
		return kind.IntegerValue
	case *qdrant.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrant.Value_BoolValue:
		return kind.BoolValue
	case *qdrant.Value_StructValue:
		out := make(map[string]any, len(kind.StructValue.GetFields()))
		for k, fv := range kind.StructValue.GetFields() {
			out[k] = valueToAny(fv)
		}
		return out
	case *qdrant.Value_ListValue:
		values := kind.ListValue.GetValues()
		out := make([]any, 0, len(values))
		for _, lv := range values {
			out = append(out, valueToAny(lv))
		}
		return out
	default:
		return nil
	}
}

var (
	_ rag.VectorIndex      = (*QdrantIndex)(nil)
	_ rag.IndexProvisioner = (*QdrantIndex)(nil)
)
