package vector

import (
	"context"
	"errors"
	"testing"

	"github.com/pyassist/backend/internal/domain/rag"
	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQdrant struct {
	hits     []*qdrant.ScoredPoint
	queryErr error
	exists   bool

	queries []*qdrant.QueryPoints
	upserts []*qdrant.UpsertPoints
	created []*qdrant.CreateCollection
	deleted []string
	closed  bool
}

func (f *fakeQdrant) Query(ctx context.Context, req *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error) {
	f.queries = append(f.queries, req)
	return f.hits, f.queryErr
}

func (f *fakeQdrant) Upsert(ctx context.Context, req *qdrant.UpsertPoints) (*qdrant.UpdateResult, error) {
	f.upserts = append(f.upserts, req)
	return &qdrant.UpdateResult{}, nil
}

func (f *fakeQdrant) CollectionExists(ctx context.Context, name string) (bool, error) {
	return f.exists, nil
}

func (f *fakeQdrant) CreateCollection(ctx context.Context, req *qdrant.CreateCollection) error {
	f.created = append(f.created, req)
	return nil
}

func (f *fakeQdrant) DeleteCollection(ctx context.Context, name string) error {
	f.deleted = append(f.deleted, name)
	return nil
}

func (f *fakeQdrant) Close() error {
	f.closed = true
	return nil
}

func TestQdrantIndex_Query(t *testing.T) {
	fake := &fakeQdrant{hits: []*qdrant.ScoredPoint{
		{
			Id:    qdrant.NewIDNum(7),
			Score: 0.91,
			Payload: qdrant.NewValueMap(map[string]any{
				"pregunta":    "¿Qué es un set?",
				"respuesta":   "Una colección sin duplicados",
				SourceIDField: "faq-7",
				"votes":       3,
			}),
		},
		{
			Id:      qdrant.NewIDUUID("0d8f3a4e-1c2b-4d5e-8f90-123456789abc"),
			Score:   0.5,
			Payload: qdrant.NewValueMap(map[string]any{"pregunta": "q"}),
		},
	}}
	index := newQdrantIndex(fake, "dense-index")

	points, err := index.Query(context.Background(), []float32{0.1, 0.2}, "example", 3)
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, "faq-7", points[0].ID)
	assert.Equal(t, float32(0.91), points[0].Score)
	assert.Equal(t, "¿Qué es un set?", points[0].Metadata["pregunta"])
	assert.Equal(t, int64(3), points[0].Metadata["votes"])
	assert.Equal(t, "0d8f3a4e-1c2b-4d5e-8f90-123456789abc", points[1].ID)

	require.Len(t, fake.queries, 1)
	req := fake.queries[0]
	assert.Equal(t, "dense-index", req.CollectionName)
	assert.Equal(t, uint64(3), *req.Limit)
	require.NotNil(t, req.Filter)
	require.Len(t, req.Filter.Must, 1)
	assert.Equal(t, NamespaceField, req.Filter.Must[0].GetField().GetKey())
	assert.Equal(t, "example", req.Filter.Must[0].GetField().GetMatch().GetKeyword())
}

func TestQdrantIndex_QueryWithoutNamespace(t *testing.T) {
	fake := &fakeQdrant{}
	_, err := newQdrantIndex(fake, "c").Query(context.Background(), []float32{1}, "", 3)
	require.NoError(t, err)
	assert.Nil(t, fake.queries[0].Filter)
}

func TestQdrantIndex_QueryError(t *testing.T) {
	fake := &fakeQdrant{queryErr: errors.New("unavailable")}
	_, err := newQdrantIndex(fake, "c").Query(context.Background(), []float32{1}, "example", 3)
	assert.Error(t, err)
}

func TestQdrantIndex_Recreate(t *testing.T) {
	fake := &fakeQdrant{exists: true}
	index := newQdrantIndex(fake, "dense-index")

	require.NoError(t, index.Recreate(context.Background(), 1536))
	assert.Equal(t, []string{"dense-index"}, fake.deleted)
	require.Len(t, fake.created, 1)
	params := fake.created[0].GetVectorsConfig().GetParams()
	assert.Equal(t, uint64(1536), params.GetSize())
	assert.Equal(t, qdrant.Distance_Cosine, params.GetDistance())

	fresh := &fakeQdrant{}
	require.NoError(t, newQdrantIndex(fresh, "dense-index").Recreate(context.Background(), 8))
	assert.Empty(t, fresh.deleted)
	assert.Len(t, fresh.created, 1)
}

func TestQdrantIndex_Upsert(t *testing.T) {
	fake := &fakeQdrant{}
	index := newQdrantIndex(fake, "dense-index")

	err := index.Upsert(context.Background(), "example", []rag.Point{
		{ID: "12", Vector: []float32{1, 0}, Metadata: map[string]any{"pregunta": "a", "respuesta": "b"}},
		{ID: "faq-x", Vector: []float32{0, 1}, Metadata: map[string]any{"pregunta": "c"}},
	})
	require.NoError(t, err)

	require.Len(t, fake.upserts, 1)
	points := fake.upserts[0].Points
	require.Len(t, points, 2)
	assert.Equal(t, uint64(12), points[0].Id.GetNum())
	assert.NotEmpty(t, points[1].Id.GetUuid())
	assert.Equal(t, "example", points[0].Payload[NamespaceField].GetStringValue())
	assert.Equal(t, "faq-x", points[1].Payload[SourceIDField].GetStringValue())
	assert.Equal(t, "a", points[0].Payload["pregunta"].GetStringValue())

	require.NoError(t, index.Upsert(context.Background(), "example", nil))
	assert.Len(t, fake.upserts, 1, "empty batch is a no-op")
}

func TestPointID_Deterministic(t *testing.T) {
	assert.Equal(t, pointID("faq-x").GetUuid(), pointID("faq-x").GetUuid())
	assert.NotEqual(t, pointID("faq-x").GetUuid(), pointID("faq-y").GetUuid())
	assert.Equal(t, "0d8f3a4e-1c2b-4d5e-8f90-123456789abc", pointID("0d8f3a4e-1c2b-4d5e-8f90-123456789abc").GetUuid())
}
