package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	appRAG "github.com/pyassist/backend/internal/application/rag"
	"github.com/pyassist/backend/internal/application/transcribe"
	"github.com/pyassist/backend/internal/domain/chat"
	domainRAG "github.com/pyassist/backend/internal/domain/rag"
	"github.com/pyassist/backend/internal/infrastructure/config"
	"github.com/pyassist/backend/internal/infrastructure/metrics"
	"github.com/pyassist/backend/internal/interfaces/http/handler"
	"github.com/pyassist/backend/internal/interfaces/http/middleware"
	"github.com/pyassist/backend/internal/interfaces/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type echoChat struct{}

func (echoChat) ChatWithHistory(_ context.Context, history chat.History) (*appRAG.ChatResponse, error) {
	query, err := chat.QueryText(history)
	if err != nil {
		return nil, err
	}
	return &appRAG.ChatResponse{Response: "eco: " + query, Branch: appRAG.BranchRetrieval}, nil
}

type slowChat struct{}

func (slowChat) ChatWithHistory(ctx context.Context, _ chat.History) (*appRAG.ChatResponse, error) {
	<-ctx.Done()
	return nil, chat.Wrap(chat.ErrGeneration, ctx.Err())
}

type silentTranscriber struct{}

func (silentTranscriber) Transcribe(context.Context, string) (*transcribe.Response, error) {
	return &transcribe.Response{Text: ""}, nil
}

type emptySearcher struct{}

func (emptySearcher) Retrieve(context.Context, string, int) ([]domainRAG.Match, error) {
	return nil, nil
}

func newTestServer(t *testing.T, chatSvc handler.ChatService, timeout time.Duration) (*HTTPServer, *metrics.Metrics) {
	t.Helper()
	cfg := &config.ServerConfig{HTTPAddr: ":0", RequestTimeout: timeout}
	m := metrics.NewMetrics()
	srv := NewServer(
		cfg,
		handler.NewChatHandler(chatSvc),
		handler.NewTranscribeHandler(silentTranscriber{}, cfg),
		handler.NewFAQHandler(emptySearcher{}),
		handler.NewRunHandler(nil),
		m,
		mcp.NewServer(chatSvc, silentTranscriber{}, emptySearcher{}, cfg),
	)
	return srv, m
}

func post(srv *HTTPServer, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestServer_Routes(t *testing.T) {
	srv, _ := newTestServer(t, echoChat{}, time.Minute)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))

	w = post(srv, "/chat_with_history", `{"chat_history":[{"role":"user","content":"hola"}]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"response":"eco: hola","branch":"rag"}`, w.Body.String())

	w = post(srv, "/api/v1/chat_with_history", `{"chat_history":[{"role":"user","content":"hola"}]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"eco: hola"`)

	w = post(srv, "/api/v1/chat_with_history", `{"chat_history":[{"role":"assistant","content":"hola"}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post(srv, "/transcribe", `{"recording_path":"silence.wav"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"text":""}`, w.Body.String())
}

func TestServer_Windows1252Body(t *testing.T) {
	srv, _ := newTestServer(t, echoChat{}, time.Minute)

	w := post(srv, "/chat_with_history", "{\"chat_history\":[{\"role\":\"user\",\"content\":\"\xbfQu\xe9 es?\"}]}")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "¿Qué es?")
}

func TestServer_Timeout(t *testing.T) {
	srv, _ := newTestServer(t, slowChat{}, 20*time.Millisecond)

	w := post(srv, "/api/v1/chat_with_history", `{"chat_history":[{"role":"user","content":"hola"}]}`)
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}

func TestServer_Metrics(t *testing.T) {
	srv, _ := newTestServer(t, echoChat{}, time.Minute)
	post(srv, "/chat_with_history", `{"chat_history":[{"role":"user","content":"hola"}]}`)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var found bool
	for _, line := range strings.Split(w.Body.String(), "\n") {
		if strings.HasPrefix(line, "pyassist_http_requests_total") && strings.Contains(line, `route="/chat_with_history"`) {
			found = true
		}
	}
	assert.True(t, found, "http request counter should include the chat route")
}

func TestServer_Swagger(t *testing.T) {
	srv, _ := newTestServer(t, echoChat{}, time.Minute)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/chat_with_history")
}
