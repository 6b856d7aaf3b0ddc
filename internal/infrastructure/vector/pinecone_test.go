package vector

import (
	"context"
	"errors"
	"testing"

	"github.com/pinecone-io/go-pinecone/v3/pinecone"
	"github.com/pyassist/backend/internal/domain/rag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

type fakePinecone struct {
	resp     *pinecone.QueryVectorsResponse
	err      error
	requests []*pinecone.QueryByVectorValuesRequest
	upserted []*pinecone.Vector
	cleared  int
	closed   bool
}

func (f *fakePinecone) QueryByVectorValues(ctx context.Context, in *pinecone.QueryByVectorValuesRequest) (*pinecone.QueryVectorsResponse, error) {
	f.requests = append(f.requests, in)
	return f.resp, f.err
}

func (f *fakePinecone) UpsertVectors(ctx context.Context, in []*pinecone.Vector) (uint32, error) {
	f.upserted = append(f.upserted, in...)
	return uint32(len(in)), nil
}

func (f *fakePinecone) DeleteAllVectorsInNamespace(ctx context.Context) error {
	f.cleared++
	return nil
}

func (f *fakePinecone) Close() error {
	f.closed = true
	return nil
}

func TestPineconeIndex_Query(t *testing.T) {
	md, err := structpb.NewStruct(map[string]any{"pregunta": "¿Qué es PEP 8?", "respuesta": "Guía de estilo"})
	require.NoError(t, err)

	fake := &fakePinecone{resp: &pinecone.QueryVectorsResponse{
		Matches: []*pinecone.ScoredVector{
			{Vector: &pinecone.Vector{Id: "3", Metadata: md}, Score: 0.88},
			nil,
		},
	}}

	var dialed []string
	index := newPineconeIndex(func(ns string) (pineconeConn, error) {
		dialed = append(dialed, ns)
		return fake, nil
	}, "dense-index.pinecone.io")

	for i := 0; i < 2; i++ {
		points, err := index.Query(context.Background(), []float32{0.1}, "example", 3)
		require.NoError(t, err)
		require.Len(t, points, 1)
		assert.Equal(t, "3", points[0].ID)
		assert.Equal(t, "¿Qué es PEP 8?", points[0].Metadata["pregunta"])
		assert.Equal(t, float32(0.88), points[0].Score)
	}

	assert.Equal(t, []string{"example"}, dialed, "connections are reused per namespace")
	assert.Equal(t, uint32(3), fake.requests[0].TopK)
	assert.True(t, fake.requests[0].IncludeMetadata)

	require.NoError(t, index.Close())
	assert.True(t, fake.closed)
}

func TestPineconeIndex_Errors(t *testing.T) {
	index := newPineconeIndex(func(string) (pineconeConn, error) {
		return nil, errors.New("no such host")
	}, "h")
	_, err := index.Query(context.Background(), []float32{1}, "example", 3)
	assert.Error(t, err)

	failing := newPineconeIndex(func(string) (pineconeConn, error) {
		return &fakePinecone{err: errors.New("unauthorized")}, nil
	}, "h")
	_, err = failing.Query(context.Background(), []float32{1}, "example", 3)
	assert.Error(t, err)
}

func TestPineconeIndex_Provision(t *testing.T) {
	fake := &fakePinecone{}
	index := newPineconeIndex(func(string) (pineconeConn, error) { return fake, nil }, "h", "example")

	require.NoError(t, index.Recreate(context.Background(), 1536))
	assert.Equal(t, 1, fake.cleared)

	require.NoError(t, index.Upsert(context.Background(), "example", []rag.Point{
		{ID: "1", Vector: []float32{1, 2}, Metadata: map[string]any{"pregunta": "a"}},
	}))
	require.Len(t, fake.upserted, 1)
	assert.Equal(t, "1", fake.upserted[0].Id)
	assert.Equal(t, []float32{1, 2}, *fake.upserted[0].Values)
	assert.Equal(t, "a", fake.upserted[0].Metadata.AsMap()["pregunta"])
}
