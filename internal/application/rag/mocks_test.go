package rag

import (
	"context"
	"sync"

	"github.com/pyassist/backend/internal/domain/chat"
	domainRAG "github.com/pyassist/backend/internal/domain/rag"
	"github.com/stretchr/testify/mock"
)

// MockEmbedder 模拟 Embedder
type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

// MockVectorIndex 模拟 VectorIndex
type MockVectorIndex struct {
	mock.Mock
}

func (m *MockVectorIndex) Query(ctx context.Context, vector []float32, namespace string, topK int) ([]domainRAG.ScoredPoint, error) {
	args := m.Called(ctx, vector, namespace, topK)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domainRAG.ScoredPoint), args.Error(1)
}

// MockLanguageModel 模拟 LanguageModel
type MockLanguageModel struct {
	mock.Mock
}

func (m *MockLanguageModel) Complete(ctx context.Context, messages chat.History) (string, error) {
	args := m.Called(ctx, messages)
	return args.String(0), args.Error(1)
}

// MockRetriever 模拟 ContextRetriever
type MockRetriever struct {
	mock.Mock
}

func (m *MockRetriever) Retrieve(ctx context.Context, query string, k int) ([]domainRAG.Match, error) {
	args := m.Called(ctx, query, k)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domainRAG.Match), args.Error(1)
}

// fakeTracker 内存运行记录
type fakeTracker struct {
	mu   sync.Mutex
	runs []*fakeRun
	err  error
}

func (f *fakeTracker) StartRun(ctx context.Context, name string) (Run, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	run := &fakeRun{name: name, params: map[string]any{}}
	f.runs = append(f.runs, run)
	return run, nil
}

type fakeRun struct {
	name   string
	params map[string]any
	status string
}

func (r *fakeRun) ID() string                     { return "run-1" }
func (r *fakeRun) LogParam(key string, value any) { r.params[key] = value }
func (r *fakeRun) End(ctx context.Context, status string) error {
	r.status = status
	return nil
}

type fixedCounter int

func (c fixedCounter) CountTokens(string) int { return int(c) }
