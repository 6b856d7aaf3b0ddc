package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/pyassist/backend/internal/domain/audio"
	"github.com/pyassist/backend/internal/domain/chat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, "success", Outcome(nil))
	assert.Equal(t, "retrieval", Outcome(chat.Wrap(chat.ErrRetrieval, errors.New("boom"))))
	assert.Equal(t, "timeout", Outcome(fmt.Errorf("%w: %w", chat.ErrGeneration, context.DeadlineExceeded)))
	assert.Equal(t, "decode", Outcome(audio.ErrDecode))
	assert.Equal(t, "unknown", Outcome(errors.New("other")))
}

func TestMetrics_Observers(t *testing.T) {
	// 每次 NewMetrics 使用独立 Registry，可重复创建
	m := NewMetrics()
	_ = NewMetrics()

	m.ObserveRetrieval(0.2, 3, nil)
	m.ObserveRetrieval(0.1, 0, chat.ErrRetrieval)
	m.ObserveGeneration("rag", 1.5, nil)
	m.ObserveGeneration("direct", 0.5, chat.ErrGeneration)
	m.ObserveTranscription(0.3, 1.0, nil)
	m.RecordHTTPRequest("POST", "/api/v1/chat_with_history", 200, 0.4)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RetrievalRequests.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RetrievalRequests.WithLabelValues("retrieval")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GenerationRequests.WithLabelValues("rag", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GenerationRequests.WithLabelValues("direct", "generation")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TranscriptionRequests.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("POST", "/api/v1/chat_with_history", "200")))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.ObserveGeneration("rag", 1, nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `pyassist_generation_requests_total{branch="rag",outcome="success"} 1`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
